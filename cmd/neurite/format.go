package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
)

// formatRunsText formats CLIRun results as aligned columns.
func formatRunsText(w io.Writer, runs []CLIRun) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tROOT\tSTARTED\tFINISHED\tMORPHOLOGIES")
	for _, r := range runs {
		finished := r.FinishedAt
		if finished == "" {
			finished = "-"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\n",
			r.ID, r.Root, r.StartedAt, finished, r.MorphologyCount)
	}
	tw.Flush()
}

// formatEventsText formats CLIEvent results as aligned columns.
func formatEventsText(w io.Writer, events []CLIEvent) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PATH\tKIND\tARBOR\tSECTION\tCOUNT\tDETAIL")
	for _, e := range events {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\n",
			e.Path, e.Kind, e.Arbor, e.SectionID, e.Count, e.Detail)
	}
	tw.Flush()
}

// formatRepairText formats per-file repair outcomes as aligned columns.
func formatRepairText(w io.Writer, files []CLIRepairFile) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PATH\tSTATUS\tMUTATIONS\tWARNINGS")
	for _, f := range files {
		status := f.Status
		if f.Error != "" {
			status = fmt.Sprintf("%s (%s)", f.Status, f.Error)
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n", f.Path, status, f.Mutations, f.Warnings)
	}
	tw.Flush()
}

// outputResultText dispatches to the appropriate text formatter based on the
// result type. It writes to os.Stdout.
func outputResultText(result CLIResult) error {
	w := io.Writer(os.Stdout)

	switch v := result.Results.(type) {
	case []CLIRun:
		formatRunsText(w, v)
	case []CLIEvent:
		formatEventsText(w, v)
	case []CLIRepairFile:
		formatRepairText(w, v)
	case nil:
		// No output for nil results.
	default:
		return fmt.Errorf("unsupported result type for text format: %T", v)
	}
	return nil
}

// validFormats lists accepted values for --format.
var validFormats = []string{"json", "text"}

// validateFormat checks that the --format flag value is recognized.
func validateFormat(format string) error {
	for _, f := range validFormats {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("invalid format %q: must be %s", format, strings.Join(validFormats, " or "))
}
