// Package geom holds the numeric sample-level utilities the repair engine
// applies per section: uniform arc-length resampling and near-duplicate
// removal. Both operate on sample slices only and never see the tree.
package geom

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/jshaw/neurite/internal/morph"
)

// Distance returns the Euclidean distance between two samples.
func Distance(a, b *morph.Sample) float64 {
	return r3.Norm(r3.Sub(a.Point, b.Point))
}

// Lerp linearly interpolates between two points.
func Lerp(a, b r3.Vec, t float64) r3.Vec {
	return r3.Add(a, r3.Scale(t, r3.Sub(b, a)))
}

// PolylineLength returns the total arc length of the sample chain.
func PolylineLength(samples []*morph.Sample) float64 {
	total := 0.0
	for i := 1; i < len(samples); i++ {
		total += Distance(samples[i-1], samples[i])
	}
	return total
}
