// Package swc reads and writes morphologies in the SWC interchange format:
// one sample per line as "id type x y z radius parent", with '#' comments.
// Type codes follow the standard convention — 1 soma, 2 axon, 3 basal
// dendrite, 4 apical dendrite.
package swc

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"

	"github.com/jshaw/neurite/internal/morph"
)

const (
	typeSoma   = 1
	typeAxon   = 2
	typeBasal  = 3
	typeApical = 4
)

type rawSample struct {
	id      int
	typ     int
	point   r3.Vec
	radius  float64
	parent  int
	line    int
	childn  []int
}

// Parse reads an SWC stream and assembles a linked Morphology: soma geometry
// from the type-1 samples, and one arbor per tracing root, split into
// sections at branch points. Malformed lines and broken parent references
// fail with line-numbered diagnostics.
func Parse(r io.Reader) (*morph.Morphology, error) {
	samples, order, err := scan(r)
	if err != nil {
		return nil, err
	}

	soma, err := buildSoma(samples, order)
	if err != nil {
		return nil, err
	}

	// Children in ascending ID order so section numbering is reproducible.
	var roots []int
	for _, id := range order {
		s := samples[id]
		if s.typ == typeSoma {
			continue
		}
		if s.parent < 0 {
			roots = append(roots, id)
			continue
		}
		parent, ok := samples[s.parent]
		if !ok {
			return nil, fmt.Errorf("swc: line %d: sample %d references missing parent %d", s.line, s.id, s.parent)
		}
		if parent.typ == typeSoma {
			roots = append(roots, id)
			continue
		}
		parent.childn = append(parent.childn, id)
	}
	for _, s := range samples {
		sort.Ints(s.childn)
	}

	m := &morph.Morphology{Soma: soma}
	basalN := 0
	for _, rootID := range roots {
		root := samples[rootID]
		var label string
		switch root.typ {
		case typeAxon:
			if m.Axon != nil {
				return nil, fmt.Errorf("swc: line %d: morphology has more than one axon root", root.line)
			}
			label = "Axon"
		case typeApical:
			if m.Apical != nil {
				return nil, fmt.Errorf("swc: line %d: morphology has more than one apical dendrite root", root.line)
			}
			label = "Apical Dendrite"
		case typeBasal:
			basalN++
			label = fmt.Sprintf("Basal Dendrite %d", basalN)
		default:
			return nil, fmt.Errorf("swc: line %d: unsupported sample type %d", root.line, root.typ)
		}

		arbor, err := buildArbor(label, root, samples)
		if err != nil {
			return nil, err
		}
		// Tracings attach arbors to the soma by construction; repair may
		// re-root them later.
		arbor.ConnectedToSoma = true
		arbor.Root.ConnectedToSoma = true
		switch root.typ {
		case typeAxon:
			m.Axon = arbor
		case typeApical:
			m.Apical = arbor
		default:
			m.BasalDendrites = append(m.BasalDendrites, arbor)
		}
	}

	// Every non-soma sample must have landed in some arbor; leftovers mean
	// a parent cycle or a subtree hanging off nothing.
	placed := 0
	for _, a := range m.Arbors() {
		placed += a.SampleCount()
	}
	nonSoma := 0
	for _, s := range samples {
		if s.typ != typeSoma {
			nonSoma++
		}
	}
	if placed != nonSoma {
		return nil, fmt.Errorf("swc: %d samples unreachable from any root (cycle or detached subtree)", nonSoma-placed)
	}
	return m, nil
}

// scan tokenizes the stream into raw samples, keyed and ordered by ID.
func scan(r io.Reader) (map[int]*rawSample, []int, error) {
	samples := make(map[int]*rawSample)
	var order []int

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 7 {
			return nil, nil, fmt.Errorf("swc: line %d: expected 7 fields, got %d", lineNo, len(fields))
		}

		var s rawSample
		s.line = lineNo
		var err error
		if s.id, err = strconv.Atoi(fields[0]); err != nil {
			return nil, nil, fmt.Errorf("swc: line %d: bad sample id %q", lineNo, fields[0])
		}
		if s.typ, err = strconv.Atoi(fields[1]); err != nil {
			return nil, nil, fmt.Errorf("swc: line %d: bad type %q", lineNo, fields[1])
		}
		coords := make([]float64, 4)
		for i, f := range fields[2:6] {
			if coords[i], err = strconv.ParseFloat(f, 64); err != nil {
				return nil, nil, fmt.Errorf("swc: line %d: bad value %q", lineNo, f)
			}
		}
		s.point = r3.Vec{X: coords[0], Y: coords[1], Z: coords[2]}
		s.radius = coords[3]
		if s.radius < 0 {
			return nil, nil, fmt.Errorf("swc: line %d: negative radius", lineNo)
		}
		if s.parent, err = strconv.Atoi(fields[6]); err != nil {
			return nil, nil, fmt.Errorf("swc: line %d: bad parent id %q", lineNo, fields[6])
		}
		if _, dup := samples[s.id]; dup {
			return nil, nil, fmt.Errorf("swc: line %d: duplicate sample id %d", lineNo, s.id)
		}
		samples[s.id] = &s
		order = append(order, s.id)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("swc: read: %w", err)
	}
	if len(samples) == 0 {
		return nil, nil, fmt.Errorf("swc: no samples")
	}
	return samples, order, nil
}

// buildSoma derives the soma reference frame from the type-1 samples:
// centroid and mean radius across the digitized profile.
func buildSoma(samples map[int]*rawSample, order []int) (*morph.Soma, error) {
	var xs, ys, zs, radii []float64
	var profile []r3.Vec
	for _, id := range order {
		s := samples[id]
		if s.typ != typeSoma {
			continue
		}
		xs = append(xs, s.point.X)
		ys = append(ys, s.point.Y)
		zs = append(zs, s.point.Z)
		radii = append(radii, s.radius)
		profile = append(profile, s.point)
	}
	if len(profile) == 0 {
		return nil, fmt.Errorf("swc: no soma samples (type 1)")
	}
	soma := &morph.Soma{
		Centroid:      r3.Vec{X: stat.Mean(xs, nil), Y: stat.Mean(ys, nil), Z: stat.Mean(zs, nil)},
		MeanRadius:    stat.Mean(radii, nil),
		ProfilePoints: profile,
	}
	if soma.MeanRadius <= 0 {
		return nil, fmt.Errorf("swc: soma mean radius %g is not positive", soma.MeanRadius)
	}
	return soma, nil
}

// buildArbor converts the sample tree under root into section records —
// one section per unbranched run — and links them.
func buildArbor(label string, root *rawSample, samples map[int]*rawSample) (*morph.Arbor, error) {
	var records []morph.SectionRecord
	nextSection := 1

	// (startSample, parentSection) pairs still to convert.
	type job struct {
		start   *rawSample
		parent  int
	}
	jobs := []job{{start: root, parent: -1}}
	visited := make(map[int]bool)

	for len(jobs) > 0 {
		j := jobs[0]
		jobs = jobs[1:]

		rec := morph.SectionRecord{
			ID:       nextSection,
			ParentID: j.parent,
			Type:     sampleType(root.typ),
		}
		nextSection++

		cur := j.start
		for {
			if visited[cur.id] {
				return nil, fmt.Errorf("swc: sample %d appears in more than one path (cycle)", cur.id)
			}
			visited[cur.id] = true
			rec.Samples = append(rec.Samples, &morph.Sample{
				ID:     cur.id,
				Point:  cur.point,
				Radius: cur.radius,
				Type:   sampleType(root.typ),
			})
			if len(cur.childn) != 1 {
				break
			}
			cur = samples[cur.childn[0]]
		}
		for _, childID := range cur.childn {
			jobs = append(jobs, job{start: samples[childID], parent: rec.ID})
		}
		records = append(records, rec)
	}

	return morph.BuildArbor(label, records)
}

// sampleType maps an SWC type code to the closed enum. Callers reject
// unsupported codes before conversion.
func sampleType(code int) morph.SampleType {
	switch code {
	case typeAxon:
		return morph.AxonSample
	case typeBasal:
		return morph.BasalDendriteSample
	case typeApical:
		return morph.ApicalDendriteSample
	}
	return morph.SomaSample
}
