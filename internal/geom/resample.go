package geom

import "github.com/jshaw/neurite/internal/morph"

// Resample subdivides over-long segments so the section meshes cleanly under
// bevel extrusion. It is insertion-only: existing samples keep their exact
// positions, so the first and last samples are always preserved and a second
// pass at the same step is a no-op. A segment is split only when it is longer
// than twice the step, into equal parts no shorter than the step; that floor
// keeps freshly inserted samples out of reach of duplicate removal at any
// threshold up to the step.
//
// New samples interpolate position and radius linearly and draw IDs from
// nextID. The returned count is the number of samples inserted.
func Resample(samples []*morph.Sample, step float64, nextID func() int) ([]*morph.Sample, int) {
	if step <= 0 || len(samples) < 2 {
		return samples, 0
	}

	out := make([]*morph.Sample, 0, len(samples))
	inserted := 0
	for i := 1; i < len(samples); i++ {
		a, b := samples[i-1], samples[i]
		out = append(out, a)

		length := Distance(a, b)
		if length <= 2*step {
			continue
		}
		parts := int(length / step) // parts >= 2, each in [step, 2*step)
		for k := 1; k < parts; k++ {
			t := float64(k) / float64(parts)
			out = append(out, &morph.Sample{
				ID:     nextID(),
				Point:  Lerp(a.Point, b.Point, t),
				Radius: a.Radius + t*(b.Radius-a.Radius),
				Type:   a.Type,
			})
			inserted++
		}
	}
	out = append(out, samples[len(samples)-1])
	return out, inserted
}
