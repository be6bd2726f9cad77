package morph

import "gonum.org/v1/gonum/spatial/r3"

// Section is an ordered run of samples between two branch points (or between
// the arbor origin and the first branch point). Sections form the nodes of an
// arbor tree: Parent is nil for the root, and Children holds the sections
// that bifurcate off this one, in input order.
type Section struct {
	ID       int
	Samples  []*Sample
	Parent   *Section
	Children []*Section
	Type     SampleType

	// BranchingOrder is 1 for the root section and parent+1 below it.
	BranchingOrder int

	// IsPrimary marks the child that most nearly continues its parent,
	// per the engine's configured branching method.
	IsPrimary bool

	// ConnectedToSoma is set on root sections during connectivity repair.
	ConnectedToSoma bool
}

// HasParent reports whether the section is below the arbor root.
func (s *Section) HasParent() bool {
	return s.Parent != nil
}

// FirstSample returns the first sample, or nil for an empty section.
func (s *Section) FirstSample() *Sample {
	if len(s.Samples) == 0 {
		return nil
	}
	return s.Samples[0]
}

// LastSample returns the last sample, or nil for an empty section.
func (s *Section) LastSample() *Sample {
	if len(s.Samples) == 0 {
		return nil
	}
	return s.Samples[len(s.Samples)-1]
}

// LeadingDirection is the unit vector from the first sample toward the
// second. Sections with fewer than two samples have no direction and return
// the zero vector.
func (s *Section) LeadingDirection() r3.Vec {
	if len(s.Samples) < 2 {
		return r3.Vec{}
	}
	return r3.Unit(r3.Sub(s.Samples[1].Point, s.Samples[0].Point))
}

// TrailingDirection is the unit vector from the second-to-last sample toward
// the last, i.e. the direction the section is heading as it reaches its
// terminal branch point.
func (s *Section) TrailingDirection() r3.Vec {
	if len(s.Samples) < 2 {
		return r3.Vec{}
	}
	n := len(s.Samples)
	return r3.Unit(r3.Sub(s.Samples[n-1].Point, s.Samples[n-2].Point))
}

// Walk visits the section and every descendant in pre-order.
func (s *Section) Walk(fn func(*Section)) {
	fn(s)
	for _, child := range s.Children {
		child.Walk(fn)
	}
}
