package swc

import (
	"bufio"
	"fmt"
	"io"

	"github.com/jshaw/neurite/internal/morph"
)

// Write re-emits the morphology as SWC text with deterministic, dense sample
// renumbering: the soma collapses to a single type-1 sample at its centroid,
// and arbors follow in the morphology's canonical order. Arbors that were
// grafted onto another arbor during repair have no soma attachment, so their
// first sample is written as a root (parent -1).
func Write(w io.Writer, m *morph.Morphology) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "# id type x y z radius parent")
	const somaID = 1
	writeSample(bw, somaID, typeSoma, m.Soma.Centroid.X, m.Soma.Centroid.Y, m.Soma.Centroid.Z, m.Soma.MeanRadius, -1)

	nextID := somaID + 1
	for _, a := range m.Arbors() {
		parent := somaID
		if !a.ConnectedToSoma {
			parent = -1
		}
		nextID = writeSection(bw, a.Root, typeCode(a.Type), parent, nextID)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("swc: write: %w", err)
	}
	return nil
}

// writeSection emits a section's samples and recurses into its children.
// Returns the next free sample ID.
func writeSection(w io.Writer, sec *morph.Section, code, parent, nextID int) int {
	last := parent
	for _, s := range sec.Samples {
		writeSample(w, nextID, code, s.Point.X, s.Point.Y, s.Point.Z, s.Radius, last)
		last = nextID
		nextID++
	}
	for _, child := range sec.Children {
		nextID = writeSection(w, child, code, last, nextID)
	}
	return nextID
}

func writeSample(w io.Writer, id, code int, x, y, z, radius float64, parent int) {
	fmt.Fprintf(w, "%d %d %g %g %g %g %d\n", id, code, x, y, z, radius, parent)
}

// typeCode maps the closed enum back to SWC type codes.
func typeCode(t morph.SampleType) int {
	switch t {
	case morph.AxonSample:
		return typeAxon
	case morph.BasalDendriteSample:
		return typeBasal
	case morph.ApicalDendriteSample:
		return typeApical
	}
	return typeSoma
}
