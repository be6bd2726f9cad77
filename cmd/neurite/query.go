package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/jshaw/neurite"
	"github.com/jshaw/neurite/internal/filter"
	"github.com/jshaw/neurite/internal/store"
	"github.com/spf13/cobra"
)

// --- Helpers ---

// openCatalog opens an existing catalog from the --db flag path (or default).
func openCatalog() (*store.Store, error) {
	dbPath := resolveDBPath()
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("catalog not found: %s (run 'neurite repair' first)", dbPath)
	}
	return store.NewStore(dbPath)
}

// openCatalogForWrite opens the catalog, creating the file and schema as
// needed.
func openCatalogForWrite() (*store.Store, error) {
	dbPath := resolveDBPath()
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	s, err := store.NewStore(dbPath)
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// outputResult marshals a CLIResult to stdout in the selected format.
func outputResult(result CLIResult) error {
	if flagFormat == "text" {
		return outputResultText(result)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// outputError writes an error in the selected format and returns it so RunE
// can propagate it to Cobra. In JSON mode the error is written to stdout as a
// CLIResult envelope. In text mode it goes to stderr.
func outputError(command string, err error) error {
	errorHandled = true
	if flagFormat == "text" {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return err
	}
	result := CLIResult{
		Command: command,
		Error:   err.Error(),
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(result)
	return err
}

func runToCLI(r *store.Run) CLIRun {
	out := CLIRun{
		ID:              r.ID,
		Root:            r.Root,
		StartedAt:       r.StartedAt.Format(time.RFC3339),
		MorphologyCount: r.MorphologyCount,
	}
	if r.FinishedAt != nil {
		out.FinishedAt = r.FinishedAt.Format(time.RFC3339)
	}
	return out
}

func eventToCLI(e neurite.Event, path string) CLIEvent {
	return CLIEvent{
		Path:      path,
		Kind:      string(e.Kind),
		Arbor:     e.Arbor,
		SectionID: e.SectionID,
		Count:     e.Count,
		Detail:    e.Detail,
	}
}

// --- Commands ---

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List repair runs, most recent first",
	Args:  cobra.NoArgs,
	RunE:  runRuns,
}

func runRuns(cmd *cobra.Command, args []string) error {
	s, err := openCatalog()
	if err != nil {
		return outputError("runs", err)
	}
	defer s.Close()

	runs, err := s.Runs()
	if err != nil {
		return outputError("runs", err)
	}

	cliRuns := make([]CLIRun, len(runs))
	for i, r := range runs {
		cliRuns[i] = runToCLI(r)
	}

	total := len(cliRuns)
	return outputResult(CLIResult{
		Command:    "runs",
		Results:    cliRuns,
		TotalCount: &total,
	})
}

var flagWhere string

var eventsCmd = &cobra.Command{
	Use:   "events [run-id]",
	Short: "List a run's repair events",
	Long: `Lists every repair event of a run (the latest run when no ID is given).
--where filters with a Risor expression over the fields kind, arbor, section,
count, detail, and path, e.g.:

  neurite events --where 'kind == "reconnected"'
  neurite events 3 --where 'arbor == "Axon" && count > 2'`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEvents,
}

func init() {
	eventsCmd.Flags().StringVar(&flagWhere, "where", "", "Risor expression to filter events")
}

func runEvents(cmd *cobra.Command, args []string) error {
	s, err := openCatalog()
	if err != nil {
		return outputError("events", err)
	}
	defer s.Close()

	runID, err := resolveRunID(s, args)
	if err != nil {
		return outputError("events", err)
	}

	events, err := s.EventsByRun(runID)
	if err != nil {
		return outputError("events", err)
	}

	expr := filter.New(flagWhere)
	ctx := context.Background()
	cliEvents := make([]CLIEvent, 0, len(events))
	for _, e := range events {
		ok, err := expr.Match(ctx, map[string]any{
			"kind":    e.Kind,
			"arbor":   e.Arbor,
			"section": e.SectionID,
			"count":   e.Count,
			"detail":  e.Detail,
			"path":    e.Path,
		})
		if err != nil {
			return outputError("events", err)
		}
		if !ok {
			continue
		}
		cliEvents = append(cliEvents, CLIEvent{
			Path:      e.Path,
			Kind:      e.Kind,
			Arbor:     e.Arbor,
			SectionID: e.SectionID,
			Count:     e.Count,
			Detail:    e.Detail,
		})
	}

	total := len(cliEvents)
	return outputResult(CLIResult{
		Command:    "events",
		Results:    cliEvents,
		TotalCount: &total,
	})
}

// resolveRunID parses the optional run-id argument, defaulting to the latest
// run.
func resolveRunID(s *store.Store, args []string) (int64, error) {
	if len(args) > 0 {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || id <= 0 {
			return 0, fmt.Errorf("invalid run id %q: must be a positive integer", args[0])
		}
		return id, nil
	}
	latest, err := s.LatestRun()
	if err != nil {
		return 0, err
	}
	if latest == nil {
		return 0, fmt.Errorf("catalog has no runs (run 'neurite repair' first)")
	}
	return latest.ID, nil
}
