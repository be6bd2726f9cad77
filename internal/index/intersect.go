package index

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/jshaw/neurite/internal/morph"
)

// proximalSamples returns up to n samples from the start of the arbor's root
// section — the region near the soma where grafting decisions are made.
func proximalSamples(a *morph.Arbor, n int) []*morph.Sample {
	if a == nil || a.Root == nil {
		return nil
	}
	samples := a.Root.Samples
	if len(samples) > n {
		samples = samples[:n]
	}
	return samples
}

// ProximalIntersects reports whether the proximal regions of two arbors
// geometrically overlap: some pair of samples sits closer than the sum of
// their radii, meaning the extruded tubes would interpenetrate.
func ProximalIntersects(a, b *morph.Arbor, n int) bool {
	for _, sa := range proximalSamples(a, n) {
		for _, sb := range proximalSamples(b, n) {
			if r3.Norm(r3.Sub(sa.Point, sb.Point)) < sa.Radius+sb.Radius {
				return true
			}
		}
	}
	return false
}

// MaxProximalRadius returns the largest sample radius in the arbor's
// proximal region. Used to decide which of two overlapping basal dendrites
// yields: the thinner one grafts onto the thicker, never the reverse.
func MaxProximalRadius(a *morph.Arbor, n int) float64 {
	max := 0.0
	for _, s := range proximalSamples(a, n) {
		if s.Radius > max {
			max = s.Radius
		}
	}
	return max
}
