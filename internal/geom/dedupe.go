package geom

import "github.com/jshaw/neurite/internal/morph"

// Dedupe removes interior samples that crowd their predecessor to within
// threshold. Endpoints win over interior samples: the first sample is always
// kept (it anchors the section's connectivity), and when the final sample is
// crowded the interior samples backing onto it are dropped instead, so the
// section keeps its full length. When only the two endpoints remain and they
// themselves are closer than the threshold, the chain collapses to the first
// sample alone; a section is never emptied.
//
// The returned count is the number of samples removed.
func Dedupe(samples []*morph.Sample, threshold float64) ([]*morph.Sample, int) {
	if threshold <= 0 || len(samples) < 2 {
		return samples, 0
	}

	kept := make([]*morph.Sample, 0, len(samples))
	kept = append(kept, samples[0])
	for i := 1; i < len(samples)-1; i++ {
		if Distance(kept[len(kept)-1], samples[i]) >= threshold {
			kept = append(kept, samples[i])
		}
	}

	last := samples[len(samples)-1]
	for len(kept) > 1 && Distance(kept[len(kept)-1], last) < threshold {
		kept = kept[:len(kept)-1]
	}
	if len(kept) == 1 && Distance(kept[0], last) < threshold {
		// Two-endpoint degenerate chain: keep only the anchor sample.
		return kept, len(samples) - 1
	}
	kept = append(kept, last)
	return kept, len(samples) - len(kept)
}
