package neurite

import (
	"fmt"
	"strings"
)

// EventKind classifies a single repair event.
type EventKind string

const (
	// EventSomaSamplesRemoved — samples inside the soma stripped from a
	// root section.
	EventSomaSamplesRemoved EventKind = "soma-samples-removed"
	// EventResampled — samples inserted to satisfy the segment-length policy.
	EventResampled EventKind = "resampled"
	// EventDeduplicated — near-duplicate samples merged away.
	EventDeduplicated EventKind = "deduplicated"
	// EventReconnected — a disconnected arbor grafted onto another arbor.
	EventReconnected EventKind = "reconnected"
	// EventUnresolved — a disconnected arbor with no reconnection candidate,
	// left untouched.
	EventUnresolved EventKind = "unresolved"
	// EventWarning — a non-fatal condition: a missing arbor or a mutation
	// aborted to avoid emptying a section.
	EventWarning EventKind = "warning"
)

// Event records one change (or warning) made during a repair pass.
type Event struct {
	Kind      EventKind `json:"kind"`
	Arbor     string    `json:"arbor,omitempty"`
	SectionID int       `json:"section_id,omitempty"`
	Count     int       `json:"count,omitempty"`
	Detail    string    `json:"detail,omitempty"`
}

// String renders the event as a single human-readable line.
func (e Event) String() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.Arbor != "" {
		fmt.Fprintf(&b, " arbor=%q", e.Arbor)
	}
	if e.SectionID != 0 {
		fmt.Fprintf(&b, " section=%d", e.SectionID)
	}
	if e.Count != 0 {
		fmt.Fprintf(&b, " count=%d", e.Count)
	}
	if e.Detail != "" {
		fmt.Fprintf(&b, " (%s)", e.Detail)
	}
	return b.String()
}

// Report enumerates every change a repair pass made to a morphology, in a
// deterministic order. The host decides how to render it; the engine never
// logs on its own.
type Report struct {
	Events []Event
}

func (r *Report) add(e Event) {
	r.Events = append(r.Events, e)
}

func (r *Report) merge(other *Report) {
	r.Events = append(r.Events, other.Events...)
}

// Mutations returns how many events describe actual geometry or topology
// changes, excluding warnings and unresolved diagnoses.
func (r *Report) Mutations() int {
	n := 0
	for _, e := range r.Events {
		switch e.Kind {
		case EventWarning, EventUnresolved:
		default:
			n++
		}
	}
	return n
}

// Warnings returns only the warning and unresolved events.
func (r *Report) Warnings() []Event {
	var out []Event
	for _, e := range r.Events {
		if e.Kind == EventWarning || e.Kind == EventUnresolved {
			out = append(out, e)
		}
	}
	return out
}

// String renders the report one event per line.
func (r *Report) String() string {
	if len(r.Events) == 0 {
		return "no changes\n"
	}
	var b strings.Builder
	for _, e := range r.Events {
		b.WriteString(e.String())
		b.WriteByte('\n')
	}
	return b.String()
}
