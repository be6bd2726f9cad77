package store

import "time"

// Run is one invocation of batch repair over a file or directory.
type Run struct {
	ID              int64
	Root            string
	StartedAt       time.Time
	FinishedAt      *time.Time
	MorphologyCount int
}

// Morphology is one repaired file within a run. Status is "repaired" when
// the pass completed (possibly with warnings) and "failed" when the file
// could not be loaded or violated the engine's input contract.
type Morphology struct {
	ID        int64
	RunID     int64
	Path      string
	Status    string
	Mutations int
	Warnings  int
}

const (
	StatusRepaired = "repaired"
	StatusFailed   = "failed"
)

// Event mirrors one engine report event, attached to the morphology it came
// from.
type Event struct {
	ID           int64
	MorphologyID int64
	Kind         string
	Arbor        string
	SectionID    int
	Count        int
	Detail       string
}

// EventWithPath is an Event joined with its morphology's file path, for
// run-wide listings.
type EventWithPath struct {
	Event
	Path string
}
