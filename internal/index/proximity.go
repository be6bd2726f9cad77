// Package index provides the geometric searches connectivity repair relies
// on: nearest-sample lookup across candidate arbors and radius-aware
// proximal-region intersection tests. Searches are brute force — whole
// morphologies carry at most a few thousand samples — and deterministic, so
// repair output is reproducible across runs.
package index

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/jshaw/neurite/internal/morph"
)

// Hit is a nearest-sample result with back-references to the owning section
// and arbor.
type Hit struct {
	Sample   *morph.Sample
	Section  *morph.Section
	Arbor    *morph.Arbor
	Distance float64
}

// Nearest scans every sample of every candidate arbor and returns the one
// closest to p. Exact distance ties break toward the lowest (section ID,
// sample ID) pair, independent of candidate order. The second return value
// is false only when the candidate set holds no samples.
func Nearest(p r3.Vec, candidates []*morph.Arbor) (Hit, bool) {
	var best Hit
	found := false
	for _, arbor := range candidates {
		if arbor == nil {
			continue
		}
		for _, sec := range arbor.Sections() {
			for _, s := range sec.Samples {
				d := r3.Norm(r3.Sub(s.Point, p))
				if !found || d < best.Distance ||
					(d == best.Distance && lowerKey(sec, s, best.Section, best.Sample)) {
					best = Hit{Sample: s, Section: sec, Arbor: arbor, Distance: d}
					found = true
				}
			}
		}
	}
	return best, found
}

// lowerKey reports whether (sec, s) sorts before the current best hit.
func lowerKey(sec *morph.Section, s *morph.Sample, bestSec *morph.Section, bestSample *morph.Sample) bool {
	if sec.ID != bestSec.ID {
		return sec.ID < bestSec.ID
	}
	return s.ID < bestSample.ID
}
