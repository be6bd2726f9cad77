package neurite

import (
	"fmt"

	"github.com/jshaw/neurite/internal/geom"
	"github.com/jshaw/neurite/internal/index"
	"github.com/jshaw/neurite/internal/morph"
)

// verifyConnectivity checks whether the arbor reaches the soma and, when it
// does not, grafts it onto the most plausible anchor on another arbor. Three
// terminal outcomes: connected directly, reconnected onto another arbor, or
// left untouched when no candidate exists.
func (e *Engine) verifyConnectivity(m *morph.Morphology, a *morph.Arbor, nextID func() int, rep *Report) {
	// Apical dendrites are soma-attached by digitizing convention, so they
	// bypass the distance test entirely.
	if a.Type == morph.ApicalDendriteSample {
		setConnected(a, true)
		return
	}

	first := a.FirstSample()
	if first.DistanceTo(m.Soma.Centroid)-m.Soma.MeanRadius <= somaAttachmentSlack {
		setConnected(a, true)
		return
	}

	candidates := reconnectionCandidates(m, a)
	target, ok := e.findGraftTarget(m, a, candidates)
	if !ok {
		// Never corrupt geometry when no safe repair is known.
		rep.add(Event{
			Kind:   EventUnresolved,
			Arbor:  a.Label,
			Detail: "disconnected from soma but no reconnection candidate exists; left as loaded",
		})
		return
	}

	setConnected(a, false)
	if first.Point == target.Sample.Point && first.Radius == target.Sample.Radius*graftRadiusScale {
		// Already grafted onto this anchor by an earlier pass.
		return
	}
	first.Point = target.Sample.Point
	first.Radius = target.Sample.Radius * graftRadiusScale
	rep.add(Event{
		Kind:      EventReconnected,
		Arbor:     a.Label,
		SectionID: a.Root.ID,
		Detail: fmt.Sprintf("grafted onto %q section %d sample %d at distance %.3f",
			target.Arbor.Label, target.Section.ID, target.Sample.ID, target.Distance),
	})

	// The graft can stretch or crowd the root's first segment past the
	// section policies; re-apply them now so a repeat pass finds no work.
	if samples, inserted := geom.Resample(a.Root.Samples, e.resampleStep, nextID); inserted > 0 {
		a.Root.Samples = samples
		rep.add(Event{Kind: EventResampled, Arbor: a.Label, SectionID: a.Root.ID, Count: inserted})
	}
	if samples, removed := geom.Dedupe(a.Root.Samples, e.dupThreshold); removed > 0 {
		a.Root.Samples = samples
		rep.add(Event{Kind: EventDeduplicated, Arbor: a.Label, SectionID: a.Root.ID, Count: removed})
	}
}

// reconnectionCandidates returns the arbors a disconnected arbor may graft
// onto: dendrites for the axon, and the apical plus sibling basals for a
// basal dendrite. An axon is never a graft target.
func reconnectionCandidates(m *morph.Morphology, a *morph.Arbor) []*morph.Arbor {
	var out []*morph.Arbor
	if m.Apical != nil && m.Apical != a {
		out = append(out, m.Apical)
	}
	for _, b := range m.BasalDendrites {
		if b != nil && b != a {
			out = append(out, b)
		}
	}
	return out
}

// findGraftTarget picks the anchor sample for a disconnected arbor.
// Proximal-region intersections take priority over pure distance: an arbor
// already poking through a dendrite near the soma grafts onto that dendrite,
// not onto whichever sample happens to be globally nearest. Only with no
// intersection does the nearest sample across all candidates win.
func (e *Engine) findGraftTarget(m *morph.Morphology, a *morph.Arbor, candidates []*morph.Arbor) (index.Hit, bool) {
	if len(candidates) == 0 {
		return index.Hit{}, false
	}
	first := a.FirstSample()

	if m.Apical != nil && m.Apical != a && index.ProximalIntersects(a, m.Apical, proximalWindow) {
		if hit, ok := index.Nearest(first.Point, []*morph.Arbor{m.Apical}); ok {
			return hit, true
		}
	}
	for _, b := range m.BasalDendrites {
		if b == nil || b == a {
			continue
		}
		if a.Type == morph.BasalDendriteSample &&
			index.MaxProximalRadius(a, proximalWindow) >= index.MaxProximalRadius(b, proximalWindow) {
			// Of two overlapping basals, only the thinner yields; the
			// thicker never grafts back, so the pair cannot swap roots.
			continue
		}
		if index.ProximalIntersects(a, b, proximalWindow) {
			if hit, ok := index.Nearest(first.Point, []*morph.Arbor{b}); ok {
				return hit, true
			}
		}
	}

	return index.Nearest(first.Point, candidates)
}

// setConnected records the connectivity outcome on the arbor and its root
// section.
func setConnected(a *morph.Arbor, connected bool) {
	a.ConnectedToSoma = connected
	a.Root.ConnectedToSoma = connected
}
