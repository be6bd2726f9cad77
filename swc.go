package neurite

import (
	"io"

	"github.com/jshaw/neurite/internal/swc"
)

// ReadSWC parses an SWC tracing into a linked Morphology ready for Repair.
func ReadSWC(r io.Reader) (*Morphology, error) {
	return swc.Parse(r)
}

// WriteSWC re-emits a (typically repaired) morphology as SWC text with
// deterministic sample renumbering.
func WriteSWC(w io.Writer, m *Morphology) error {
	return swc.Write(w, m)
}
