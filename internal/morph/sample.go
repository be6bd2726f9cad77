package morph

import "gonum.org/v1/gonum/spatial/r3"

// SampleType identifies which neuronal structure a sample was digitized from.
// The set is closed: every tracing point belongs to exactly one of these.
type SampleType int

const (
	SomaSample SampleType = iota
	AxonSample
	BasalDendriteSample
	ApicalDendriteSample
)

// String returns the conventional name for the sample type.
func (t SampleType) String() string {
	switch t {
	case SomaSample:
		return "soma"
	case AxonSample:
		return "axon"
	case BasalDendriteSample:
		return "basal-dendrite"
	case ApicalDendriteSample:
		return "apical-dendrite"
	}
	return "unknown"
}

// Sample is a single digitized point on a neuronal skeleton: a position, the
// tracing radius at that position, and the structure it belongs to. The ID is
// stable for the lifetime of a repair pass; Point and Radius are mutated by
// resampling and reconnection.
type Sample struct {
	ID     int
	Point  r3.Vec
	Radius float64
	Type   SampleType
}

// DistanceTo returns the Euclidean distance from the sample to p.
func (s *Sample) DistanceTo(p r3.Vec) float64 {
	return r3.Norm(r3.Sub(s.Point, p))
}
