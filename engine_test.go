package neurite

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/jshaw/neurite/internal/morph"
)

// newSample builds a sample at (x, y, z).
func newSample(id int, x, y, z, radius float64, typ SampleType) *Sample {
	return &Sample{ID: id, Point: r3.Vec{X: x, Y: y, Z: z}, Radius: radius, Type: typ}
}

// newArbor builds a single-section arbor.
func newArbor(t *testing.T, label string, sectionID int, typ SampleType, samples ...*Sample) *Arbor {
	t.Helper()
	a, err := BuildArbor(label, []SectionRecord{
		{ID: sectionID, ParentID: -1, Type: typ, Samples: samples},
	})
	require.NoError(t, err)
	return a
}

// soma5 is a radius-5 soma at the origin.
func soma5() *Soma {
	return &Soma{MeanRadius: 5}
}

func kinds(events []Event) []EventKind {
	out := make([]EventKind, len(events))
	for i, e := range events {
		out[i] = e.Kind
	}
	return out
}

func eventsOf(rep *Report, kind EventKind) []Event {
	var out []Event
	for _, e := range rep.Events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

func TestNew_Defaults(t *testing.T) {
	t.Parallel()
	e := New()
	assert.Equal(t, BranchingAngles, e.branching)
	assert.Equal(t, DefaultDuplicateThreshold, e.dupThreshold)
	assert.Equal(t, DefaultResampleStep, e.resampleStep)
	assert.True(t, e.parallel)

	e = New(
		WithBranchingMethod(BranchingRadii),
		WithDuplicateThreshold(0.5),
		WithResampleStep(2),
		WithParallel(false),
	)
	assert.Equal(t, BranchingRadii, e.branching)
	assert.Equal(t, 0.5, e.dupThreshold)
	assert.Equal(t, 2.0, e.resampleStep)
	assert.False(t, e.parallel)
}

func TestRepair_RejectsMalformedTree(t *testing.T) {
	t.Parallel()
	axon := newArbor(t, "Axon", 1, AxonSample, newSample(1, 10, 0, 0, 1, AxonSample))
	axon.Root.Samples = nil // loader bug: empty section
	m := &Morphology{Soma: soma5(), Axon: axon}

	_, err := New().Repair(m)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no samples")
}

// TestRepair_DisconnectedAxonScenario is the canonical synthetic case: a
// radius-5 soma, an axon starting at distance 20 (clearly disconnected), and
// a basal dendrite whose first sample sits inside the soma.
func TestRepair_DisconnectedAxonScenario(t *testing.T) {
	t.Parallel()
	for _, parallel := range []bool{true, false} {
		name := "serial"
		if parallel {
			name = "parallel"
		}
		t.Run(name, func(t *testing.T) {
			axon := newArbor(t, "Axon", 1, AxonSample,
				newSample(1, 20, 0, 0, 1, AxonSample),
				newSample(2, 25, 0, 0, 1, AxonSample),
			)
			dendrite := newArbor(t, "Basal Dendrite 1", 2, BasalDendriteSample,
				newSample(3, 0, 4, 0, 2, BasalDendriteSample), // inside the soma
				newSample(4, 0, 6, 0, 2, BasalDendriteSample),
			)
			m := &Morphology{Soma: soma5(), Axon: axon, BasalDendrites: []*Arbor{dendrite}}

			rep, err := New(WithParallel(parallel)).Repair(m)
			require.NoError(t, err)

			// Dendrite root lost its within-soma sample and now starts at
			// the formerly-second sample.
			require.Len(t, dendrite.Root.Samples, 1)
			assert.Equal(t, 4, dendrite.Root.Samples[0].ID)
			assert.True(t, dendrite.ConnectedToSoma)

			removed := eventsOf(rep, EventSomaSamplesRemoved)
			require.Len(t, removed, 1)
			assert.Equal(t, "Basal Dendrite 1", removed[0].Arbor)
			assert.Equal(t, 1, removed[0].Count)

			// Axon grafted onto the nearest dendrite sample: same point,
			// half the target's radius, logically re-rooted off the soma.
			first := axon.FirstSample()
			assert.Equal(t, r3.Vec{Y: 6}, first.Point)
			assert.Equal(t, 1.0, first.Radius)
			assert.False(t, axon.ConnectedToSoma)
			assert.False(t, axon.Root.ConnectedToSoma)

			grafts := eventsOf(rep, EventReconnected)
			require.Len(t, grafts, 1)
			assert.Equal(t, "Axon", grafts[0].Arbor)
			assert.Contains(t, grafts[0].Detail, `"Basal Dendrite 1"`)
		})
	}
}

func TestRepair_InvariantsHold(t *testing.T) {
	t.Parallel()
	axon := newArbor(t, "Axon", 1, AxonSample,
		newSample(1, 4.5, 0, 0, 1, AxonSample), // inside the soma
		newSample(2, 6, 0, 0, 1, AxonSample),
		newSample(3, 6.2, 0, 0, 1, AxonSample), // near-duplicate
		newSample(4, 30, 0, 0, 1, AxonSample),  // long segment, resampled
	)
	dendrite := newArbor(t, "Basal Dendrite 1", 2, BasalDendriteSample,
		newSample(5, 0, 6, 0, 2, BasalDendriteSample),
		newSample(6, 0, 20, 0, 2, BasalDendriteSample),
	)
	m := &Morphology{Soma: soma5(), Axon: axon, BasalDendrites: []*Arbor{dendrite}}

	rep, err := New().Repair(m)
	require.NoError(t, err)
	assert.NotEmpty(t, eventsOf(rep, EventSomaSamplesRemoved))
	assert.NotEmpty(t, eventsOf(rep, EventResampled))
	assert.NotEmpty(t, eventsOf(rep, EventDeduplicated))

	for _, a := range m.Arbors() {
		for _, sec := range a.Sections() {
			// Non-emptying invariant.
			require.NotEmpty(t, sec.Samples)
		}
		// Soma-exclusion invariant on root sections.
		for _, s := range a.Root.Samples {
			assert.GreaterOrEqual(t, s.DistanceTo(m.Soma.Centroid), m.Soma.MeanRadius,
				"arbor %s sample %d inside soma", a.Label, s.ID)
		}
	}
}

// A second pass must find nothing to do: grafting re-applies the section
// policies to the root it rewrote, so even the stretched first segment is
// subdivided before Repair returns.
func TestRepair_SecondPassIsFixedPoint(t *testing.T) {
	t.Parallel()
	axon := newArbor(t, "Axon", 1, AxonSample,
		newSample(1, 40, 0, 0, 1, AxonSample),
		newSample(2, 45, 0, 0, 1, AxonSample),
	)
	dendrite := newArbor(t, "Basal Dendrite 1", 2, BasalDendriteSample,
		newSample(3, 0, 6, 0, 2, BasalDendriteSample),
		newSample(4, 30, 0, 0, 2, BasalDendriteSample),
	)
	m := &Morphology{Soma: soma5(), Axon: axon, BasalDendrites: []*Arbor{dendrite}}

	e := New()
	first, err := e.Repair(m)
	require.NoError(t, err)
	require.Len(t, eventsOf(first, EventReconnected), 1)
	graftedPoint := axon.FirstSample().Point
	graftedRadius := axon.FirstSample().Radius

	// The graft moved the axon's first sample far from its neighbor; the
	// same pass must have resampled that segment, leaving none over-long.
	for _, sec := range axon.Sections() {
		for i := 1; i < len(sec.Samples); i++ {
			assert.LessOrEqual(t, sec.Samples[i-1].DistanceTo(sec.Samples[i].Point), 2*DefaultResampleStep,
				"over-long segment survived the pass that created it")
		}
	}

	second, err := e.Repair(m)
	require.NoError(t, err)
	assert.Empty(t, second.Events, "second pass reported changes:\n%s", second)

	// The graft is stable.
	assert.Equal(t, graftedPoint, axon.FirstSample().Point)
	assert.Equal(t, graftedRadius, axon.FirstSample().Radius)
	assert.False(t, axon.ConnectedToSoma)
}

func TestRepair_ParallelMatchesSerial(t *testing.T) {
	t.Parallel()
	build := func(t *testing.T) *Morphology {
		axon := newArbor(t, "Axon", 1, AxonSample,
			newSample(1, 20, 0, 0, 1, AxonSample),
			newSample(2, 33, 0, 0, 1, AxonSample),
		)
		b1 := newArbor(t, "Basal Dendrite 1", 2, BasalDendriteSample,
			newSample(3, 0, 4, 0, 2, BasalDendriteSample),
			newSample(4, 0, 6, 0, 2, BasalDendriteSample),
			newSample(5, 0, 26, 0, 2, BasalDendriteSample),
		)
		b2 := newArbor(t, "Basal Dendrite 2", 3, BasalDendriteSample,
			newSample(6, 0, 0, 6, 1, BasalDendriteSample),
			newSample(7, 0, 0.4, 6.2, 1, BasalDendriteSample),
			newSample(8, 0, 0, 19, 1, BasalDendriteSample),
		)
		apical := newArbor(t, "Apical Dendrite", 4, ApicalDendriteSample,
			newSample(9, 0, -6, 0, 3, ApicalDendriteSample),
			newSample(10, 0, -28, 0, 3, ApicalDendriteSample),
		)
		return &Morphology{
			Soma:           soma5(),
			Axon:           axon,
			BasalDendrites: []*Arbor{b1, b2},
			Apical:         apical,
		}
	}

	serialM := build(t)
	serialRep, err := New(WithParallel(false)).Repair(serialM)
	require.NoError(t, err)

	parallelM := build(t)
	parallelRep, err := New(WithParallel(true)).Repair(parallelM)
	require.NoError(t, err)

	assert.Equal(t, serialRep.Events, parallelRep.Events)

	// Canonical SWC output must be byte-identical, sample IDs included.
	var serialOut, parallelOut strings.Builder
	require.NoError(t, WriteSWC(&serialOut, serialM))
	require.NoError(t, WriteSWC(&parallelOut, parallelM))
	assert.Equal(t, serialOut.String(), parallelOut.String())
}

func TestRepair_ApicalAlwaysConnected(t *testing.T) {
	t.Parallel()
	apical := newArbor(t, "Apical Dendrite", 1, ApicalDendriteSample,
		newSample(1, 100, 0, 0, 3, ApicalDendriteSample),
		newSample(2, 101, 0, 0, 3, ApicalDendriteSample),
	)
	m := &Morphology{Soma: soma5(), Apical: apical}

	rep, err := New().Repair(m)
	require.NoError(t, err)

	// Far beyond any distance test, yet connected by convention.
	assert.True(t, apical.ConnectedToSoma)
	assert.Empty(t, eventsOf(rep, EventReconnected))
	assert.Empty(t, eventsOf(rep, EventUnresolved))
}

func TestRepair_UnresolvedWhenNoCandidates(t *testing.T) {
	t.Parallel()
	axon := newArbor(t, "Axon", 1, AxonSample,
		newSample(1, 20, 0, 0, 1, AxonSample),
		newSample(2, 21, 0, 0, 1, AxonSample),
	)
	m := &Morphology{Soma: soma5(), Axon: axon}

	rep, err := New().Repair(m)
	require.NoError(t, err)

	unresolved := eventsOf(rep, EventUnresolved)
	require.Len(t, unresolved, 1)
	assert.Equal(t, "Axon", unresolved[0].Arbor)

	// Original first sample untouched.
	assert.Equal(t, r3.Vec{X: 20}, axon.FirstSample().Point)
	assert.Equal(t, 1.0, axon.FirstSample().Radius)
}

func TestRepair_MissingArborWarnings(t *testing.T) {
	t.Parallel()
	dendrite := newArbor(t, "Basal Dendrite 1", 1, BasalDendriteSample,
		newSample(1, 0, 6, 0, 2, BasalDendriteSample),
		newSample(2, 0, 8, 0, 2, BasalDendriteSample),
	)
	m := &Morphology{Soma: soma5(), BasalDendrites: []*Arbor{dendrite}}

	rep, err := New().Repair(m)
	require.NoError(t, err)

	warnings := rep.Warnings()
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Detail, "no axon")

	m2 := &Morphology{Soma: soma5(), Axon: newArbor(t, "Axon", 1, AxonSample,
		newSample(1, 0, 6, 0, 1, AxonSample), newSample(2, 0, 8, 0, 1, AxonSample))}
	rep2, err := New().Repair(m2)
	require.NoError(t, err)
	require.Len(t, rep2.Warnings(), 1)
	assert.Contains(t, rep2.Warnings()[0].Detail, "no basal dendrites")
}

func TestRepair_AllSamplesInsideSomaIsStructuralDefect(t *testing.T) {
	t.Parallel()
	axon := newArbor(t, "Axon", 1, AxonSample,
		newSample(1, 1, 0, 0, 1, AxonSample),
		newSample(2, 3, 0, 0, 1, AxonSample),
	)
	dendrite := newArbor(t, "Basal Dendrite 1", 2, BasalDendriteSample,
		newSample(3, 0, 6, 0, 2, BasalDendriteSample),
		newSample(4, 0, 8, 0, 2, BasalDendriteSample),
	)
	m := &Morphology{Soma: soma5(), Axon: axon, BasalDendrites: []*Arbor{dendrite}}

	rep, err := New().Repair(m)
	require.NoError(t, err)

	// The filter aborted rather than emptying the section.
	assert.Len(t, axon.Root.Samples, 2)
	assert.Empty(t, eventsOf(rep, EventSomaSamplesRemoved))

	var found bool
	for _, w := range rep.Warnings() {
		if strings.Contains(w.Detail, "inside the soma") {
			found = true
		}
	}
	assert.True(t, found, "expected structural-defect warning, report:\n%s", rep)
}

// The thinner of two overlapping basal dendrites grafts onto the thicker,
// never the reverse, regardless of input order.
func TestRepair_ThinnerBasalYieldsToThicker(t *testing.T) {
	t.Parallel()
	build := func(t *testing.T, swap bool) (*Morphology, *Arbor, *Arbor) {
		// Thin A floats disconnected, its proximal region overlapping
		// thick B, which is attached to the soma.
		thin := newArbor(t, "Basal Dendrite A", 1, BasalDendriteSample,
			newSample(1, 20, 0, 0, 2, BasalDendriteSample),
			newSample(2, 24, 0, 0, 2, BasalDendriteSample),
		)
		thick := newArbor(t, "Basal Dendrite B", 2, BasalDendriteSample,
			newSample(3, 0, 6, 0, 4, BasalDendriteSample),
			newSample(4, 21, 0, 0, 4, BasalDendriteSample),
		)
		basals := []*Arbor{thin, thick}
		if swap {
			basals = []*Arbor{thick, thin}
		}
		return &Morphology{Soma: soma5(), BasalDendrites: basals}, thin, thick
	}

	for _, swap := range []bool{false, true} {
		m, thin, thick := build(t, swap)
		// Coarse step: keep the traced samples as-is so the proximal
		// intersection, not post-resample distances, picks the anchor.
		rep, err := New(WithResampleStep(25)).Repair(m)
		require.NoError(t, err)

		grafts := eventsOf(rep, EventReconnected)
		require.Len(t, grafts, 1, "report:\n%s", rep)
		assert.Equal(t, "Basal Dendrite A", grafts[0].Arbor)
		assert.Contains(t, grafts[0].Detail, `"Basal Dendrite B"`)

		assert.False(t, thin.ConnectedToSoma)
		assert.True(t, thick.ConnectedToSoma)
		// Grafted onto thick's intersecting sample with halved radius.
		assert.Equal(t, r3.Vec{X: 21}, thin.FirstSample().Point)
		assert.Equal(t, 2.0, thin.FirstSample().Radius)
	}
}

func TestLabelBranches_AnglesLargestDeviationIsPrimary(t *testing.T) {
	t.Parallel()
	// Root heads along +x; one child continues straight, the other turns
	// 90 degrees. The angle method marks the turning child primary.
	straight := morph.SectionRecord{ID: 2, ParentID: 1, Type: AxonSample, Samples: []*Sample{
		newSample(3, 12, 0, 0, 1, AxonSample),
		newSample(4, 14, 0, 0, 1, AxonSample),
	}}
	turning := morph.SectionRecord{ID: 3, ParentID: 1, Type: AxonSample, Samples: []*Sample{
		newSample(5, 10, 2, 0, 1, AxonSample),
		newSample(6, 10, 4, 0, 1, AxonSample),
	}}
	root := morph.SectionRecord{ID: 1, ParentID: -1, Type: AxonSample, Samples: []*Sample{
		newSample(1, 8, 0, 0, 1, AxonSample),
		newSample(2, 10, 0, 0, 1, AxonSample),
	}}
	a, err := BuildArbor("Axon", []morph.SectionRecord{root, straight, turning})
	require.NoError(t, err)

	New().labelBranches(a)

	require.Len(t, a.Root.Children, 2)
	assert.False(t, a.Root.Children[0].IsPrimary, "straight child marked primary")
	assert.True(t, a.Root.Children[1].IsPrimary, "turning child not marked primary")
	assert.Equal(t, 1, a.Root.BranchingOrder)
	assert.Equal(t, 2, a.Root.Children[0].BranchingOrder)
	assert.Equal(t, 2, a.Root.Children[1].BranchingOrder)
}

func TestLabelBranches_RadiiThickestIsPrimary(t *testing.T) {
	t.Parallel()
	thin := morph.SectionRecord{ID: 2, ParentID: 1, Type: AxonSample, Samples: []*Sample{
		newSample(3, 12, 0, 0, 0.5, AxonSample),
	}}
	thick := morph.SectionRecord{ID: 3, ParentID: 1, Type: AxonSample, Samples: []*Sample{
		newSample(4, 10, 2, 0, 2, AxonSample),
	}}
	root := morph.SectionRecord{ID: 1, ParentID: -1, Type: AxonSample, Samples: []*Sample{
		newSample(1, 8, 0, 0, 1, AxonSample),
		newSample(2, 10, 0, 0, 1, AxonSample),
	}}
	a, err := BuildArbor("Axon", []morph.SectionRecord{root, thin, thick})
	require.NoError(t, err)

	New(WithBranchingMethod(BranchingRadii)).labelBranches(a)

	assert.False(t, a.Root.Children[0].IsPrimary)
	assert.True(t, a.Root.Children[1].IsPrimary)
}

func TestLabelBranches_TieBreaksToLowerSectionID(t *testing.T) {
	t.Parallel()
	// Equal radii: the lower section ID wins.
	c1 := morph.SectionRecord{ID: 5, ParentID: 1, Type: AxonSample, Samples: []*Sample{
		newSample(3, 12, 0, 0, 1, AxonSample),
	}}
	c2 := morph.SectionRecord{ID: 4, ParentID: 1, Type: AxonSample, Samples: []*Sample{
		newSample(4, 10, 2, 0, 1, AxonSample),
	}}
	root := morph.SectionRecord{ID: 1, ParentID: -1, Type: AxonSample, Samples: []*Sample{
		newSample(1, 8, 0, 0, 1, AxonSample),
		newSample(2, 10, 0, 0, 1, AxonSample),
	}}
	a, err := BuildArbor("Axon", []morph.SectionRecord{root, c1, c2})
	require.NoError(t, err)

	New(WithBranchingMethod(BranchingRadii)).labelBranches(a)

	// Children attach in record order: section 5 first, then section 4.
	assert.False(t, a.Root.Children[0].IsPrimary)
	assert.True(t, a.Root.Children[1].IsPrimary)
}

func TestReport_Rendering(t *testing.T) {
	t.Parallel()
	rep := &Report{}
	assert.Equal(t, "no changes\n", rep.String())

	rep.add(Event{Kind: EventDeduplicated, Arbor: "Axon", SectionID: 3, Count: 2})
	rep.add(Event{Kind: EventWarning, Detail: "morphology has no axon"})

	out := rep.String()
	assert.Contains(t, out, `deduplicated arbor="Axon" section=3 count=2`)
	assert.Contains(t, out, "warning (morphology has no axon)")
	assert.Equal(t, 1, rep.Mutations())
	assert.Len(t, rep.Warnings(), 1)
}
