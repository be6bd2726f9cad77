package morph

import "gonum.org/v1/gonum/spatial/r3"

// Soma holds the cell body: a centroid, the mean radius of its digitized
// profile, and the raw profile points. The repair engine treats it as
// read-only, using it only as the reference frame for connectivity checks.
type Soma struct {
	Centroid      r3.Vec
	MeanRadius    float64
	ProfilePoints []r3.Vec
}

// Contains reports whether p lies strictly inside the soma sphere.
func (s *Soma) Contains(p r3.Vec) bool {
	return r3.Norm(r3.Sub(p, s.Centroid)) < s.MeanRadius
}

// Morphology aggregates a soma and the arbors digitized from one neuron.
// Axon and Apical may be nil and BasalDendrites may be empty; a repair pass
// works with whatever is present.
type Morphology struct {
	Soma           *Soma
	Axon           *Arbor
	BasalDendrites []*Arbor
	Apical         *Arbor
}

// Arbors returns the present arbors in deterministic order: axon, basal
// dendrites in input order, then the apical dendrite.
func (m *Morphology) Arbors() []*Arbor {
	var out []*Arbor
	if m.Axon != nil {
		out = append(out, m.Axon)
	}
	for _, b := range m.BasalDendrites {
		if b != nil {
			out = append(out, b)
		}
	}
	if m.Apical != nil {
		out = append(out, m.Apical)
	}
	return out
}

// MaxSampleID returns the largest sample ID present in the morphology, so
// callers can mint fresh IDs that do not collide with loaded ones.
func (m *Morphology) MaxSampleID() int {
	max := 0
	for _, a := range m.Arbors() {
		for _, sec := range a.Sections() {
			for _, s := range sec.Samples {
				if s.ID > max {
					max = s.ID
				}
			}
		}
	}
	return max
}
