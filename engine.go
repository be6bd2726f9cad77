package neurite

import (
	"fmt"

	"github.com/jshaw/neurite/internal/geom"
	"github.com/jshaw/neurite/internal/morph"
)

// BranchingMethod selects how the engine picks the primary child at a
// bifurcation.
type BranchingMethod int

const (
	// BranchingAngles classifies children by angular deviation from the
	// parent's terminal direction.
	BranchingAngles BranchingMethod = iota
	// BranchingRadii classifies the child with the largest starting radius
	// as primary.
	BranchingRadii
)

// String returns the flag-friendly name of the method.
func (m BranchingMethod) String() string {
	if m == BranchingRadii {
		return "radii"
	}
	return "angles"
}

// Defaults for the engine's numeric policies, in morphology length units
// (microns for the usual tracing formats).
const (
	DefaultDuplicateThreshold = 1.0
	DefaultResampleStep       = 1.0
)

const (
	// somaAttachmentSlack is how far past the soma surface a first sample
	// may sit and still count as attached.
	somaAttachmentSlack = 2.0

	// graftRadiusScale halves the grafted first sample's radius. Empirically
	// chosen: a full-radius graft bulges visibly at the junction when the
	// mesh is extruded.
	graftRadiusScale = 0.5

	// proximalWindow is how many leading root-section samples form an
	// arbor's proximal region for intersection tests.
	proximalWindow = 10

	// arborIDStride spaces the fresh-sample ID ranges handed to each arbor,
	// so resampling assigns the same IDs whether arbors run serially or in
	// parallel.
	arborIDStride = 1 << 20
)

// Engine runs the morphology repair pipeline: branch labeling, within-soma
// sample removal, resampling, duplicate removal, and soma-connectivity
// repair. A single Engine may repair many morphologies; each Repair call
// assumes exclusive ownership of its morphology for the duration.
type Engine struct {
	branching    BranchingMethod
	dupThreshold float64
	resampleStep float64
	parallel     bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithBranchingMethod selects the primary-child classification method.
func WithBranchingMethod(m BranchingMethod) Option {
	return func(e *Engine) { e.branching = m }
}

// WithDuplicateThreshold sets the consecutive-sample distance below which
// samples are merged.
func WithDuplicateThreshold(d float64) Option {
	return func(e *Engine) { e.dupThreshold = d }
}

// WithResampleStep sets the target segment length for resampling. Segments
// are never split below the step, so thresholds up to the step cannot fight
// the resampler.
func WithResampleStep(step float64) Option {
	return func(e *Engine) { e.resampleStep = step }
}

// WithParallel controls whether the per-arbor phases run on a worker pool.
// Connectivity repair reads other arbors' samples and therefore always runs
// after every arbor has finished its local phases, in both modes. Default
// true.
func WithParallel(parallel bool) Option {
	return func(e *Engine) { e.parallel = parallel }
}

// New creates an Engine with the given options.
func New(opts ...Option) *Engine {
	e := &Engine{
		branching:    BranchingAngles,
		dupThreshold: DefaultDuplicateThreshold,
		resampleStep: DefaultResampleStep,
		parallel:     true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Repair brings the morphology into a geometrically and topologically
// consistent, mesh-ready state, mutating it in place. Per arbor, in order:
// label branches, strip within-soma samples from the root section, resample
// every section, merge near-duplicate samples; then, once all arbors are
// done, verify and repair soma connectivity.
//
// The returned Report enumerates every change. The error return is reserved
// for input-contract violations (empty sections, broken parent links,
// cycles); data-quality problems are recovered per arbor and reported as
// warnings instead.
func (e *Engine) Repair(m *morph.Morphology) (*Report, error) {
	if err := morph.Validate(m); err != nil {
		return nil, fmt.Errorf("repair: %w", err)
	}

	rep := &Report{}
	if m.Axon == nil {
		rep.add(Event{Kind: EventWarning, Detail: "morphology has no axon"})
	}
	if len(m.BasalDendrites) == 0 {
		rep.add(Event{Kind: EventWarning, Detail: "morphology has no basal dendrites"})
	}

	arbors := m.Arbors()
	idBase := m.MaxSampleID() + 1

	var reports []*Report
	if e.parallel {
		reports = e.repairArborsParallel(m.Soma, arbors, idBase)
	} else {
		reports = make([]*Report, len(arbors))
		for i, a := range arbors {
			reports[i] = e.repairArbor(m.Soma, a, newIDCounter(idBase+i*arborIDStride))
		}
	}
	for _, r := range reports {
		rep.merge(r)
	}

	// Connectivity runs strictly after every arbor's local phases: it reads
	// other arbors' (now final) samples to pick reconnection targets. It
	// mints IDs from its own range, past every local-phase range, so both
	// execution modes number graft-stretch samples identically.
	connectID := newIDCounter(idBase + len(arbors)*arborIDStride)
	for _, a := range arbors {
		e.verifyConnectivity(m, a, connectID, rep)
	}
	return rep, nil
}

// repairArbor runs the local phases for one arbor and returns that arbor's
// slice of the report.
func (e *Engine) repairArbor(soma *morph.Soma, a *morph.Arbor, nextID func() int) *Report {
	rep := &Report{}
	e.labelBranches(a)
	e.stripSomaSamples(soma, a, rep)
	e.resampleSections(a, nextID, rep)
	e.dedupeSections(a, rep)
	return rep
}

// stripSomaSamples removes root-section samples that lie inside the soma
// sphere; they would self-intersect the soma mesh. The filter never
// descends below the root: deeper sections legitimately curve back near the
// soma. If every sample is inside, the section is left unchanged and a
// structural-defect warning is reported instead.
func (e *Engine) stripSomaSamples(soma *morph.Soma, a *morph.Arbor, rep *Report) {
	root := a.Root
	kept := make([]*morph.Sample, 0, len(root.Samples))
	for _, s := range root.Samples {
		if !soma.Contains(s.Point) {
			kept = append(kept, s)
		}
	}
	removed := len(root.Samples) - len(kept)
	if removed == 0 {
		return
	}
	if len(kept) == 0 {
		rep.add(Event{
			Kind:      EventWarning,
			Arbor:     a.Label,
			SectionID: root.ID,
			Detail:    "every root sample lies inside the soma; section left unchanged",
		})
		return
	}
	root.Samples = kept
	rep.add(Event{
		Kind:      EventSomaSamplesRemoved,
		Arbor:     a.Label,
		SectionID: root.ID,
		Count:     removed,
	})
}

// resampleSections applies the arc-length resampling policy to every section
// of the arbor, root to leaves.
func (e *Engine) resampleSections(a *morph.Arbor, nextID func() int, rep *Report) {
	for _, sec := range a.Sections() {
		samples, inserted := geom.Resample(sec.Samples, e.resampleStep, nextID)
		if inserted == 0 {
			continue
		}
		sec.Samples = samples
		rep.add(Event{Kind: EventResampled, Arbor: a.Label, SectionID: sec.ID, Count: inserted})
	}
}

// dedupeSections merges near-duplicate consecutive samples in every section,
// root to leaves.
func (e *Engine) dedupeSections(a *morph.Arbor, rep *Report) {
	for _, sec := range a.Sections() {
		samples, removed := geom.Dedupe(sec.Samples, e.dupThreshold)
		if removed == 0 {
			continue
		}
		sec.Samples = samples
		rep.add(Event{Kind: EventDeduplicated, Arbor: a.Label, SectionID: sec.ID, Count: removed})
	}
}

// newIDCounter mints fresh sample IDs starting at start.
func newIDCounter(start int) func() int {
	next := start
	return func() int {
		id := next
		next++
		return id
	}
}
