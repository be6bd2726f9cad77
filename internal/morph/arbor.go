package morph

// Arbor is one rooted tree of sections: an axon, a basal dendrite, or an
// apical dendrite. Label is a pass-through identifier the host uses to
// correlate repair events with scene objects.
type Arbor struct {
	Root  *Section
	Label string
	Type  SampleType

	// ConnectedToSoma is false when the arbor was re-rooted onto another
	// arbor during connectivity repair.
	ConnectedToSoma bool
}

// Sections returns every section of the arbor in pre-order.
func (a *Arbor) Sections() []*Section {
	if a == nil || a.Root == nil {
		return nil
	}
	var out []*Section
	a.Root.Walk(func(s *Section) { out = append(out, s) })
	return out
}

// FirstSample returns the first sample of the root section, or nil when the
// arbor is empty.
func (a *Arbor) FirstSample() *Sample {
	if a == nil || a.Root == nil {
		return nil
	}
	return a.Root.FirstSample()
}

// SampleCount returns the total number of samples across all sections.
func (a *Arbor) SampleCount() int {
	n := 0
	for _, sec := range a.Sections() {
		n += len(sec.Samples)
	}
	return n
}
