package main

// CLIResult is the top-level JSON envelope for all commands.
type CLIResult struct {
	Command    string `json:"command"`
	Results    any    `json:"results"`
	TotalCount *int   `json:"total_count,omitempty"`
	Error      string `json:"error,omitempty"`
}

// CLIRun is a JSON-friendly repair run.
type CLIRun struct {
	ID              int64  `json:"id"`
	Root            string `json:"root"`
	StartedAt       string `json:"started_at"`
	FinishedAt      string `json:"finished_at,omitempty"`
	MorphologyCount int    `json:"morphology_count"`
}

// CLIEvent is a JSON-friendly repair event.
type CLIEvent struct {
	Path      string `json:"path,omitempty"`
	Kind      string `json:"kind"`
	Arbor     string `json:"arbor,omitempty"`
	SectionID int    `json:"section_id,omitempty"`
	Count     int    `json:"count,omitempty"`
	Detail    string `json:"detail,omitempty"`
}

// CLIRepairFile is one file's outcome within a repair run.
type CLIRepairFile struct {
	Path      string     `json:"path"`
	Status    string     `json:"status"`
	Mutations int        `json:"mutations"`
	Warnings  int        `json:"warnings"`
	Error     string     `json:"error,omitempty"`
	Events    []CLIEvent `json:"events,omitempty"`
}
