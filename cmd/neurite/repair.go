package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/jshaw/neurite"
	"github.com/jshaw/neurite/internal/store"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	flagBranching    string
	flagDupThreshold float64
	flagStep         float64
	flagOut          string
	flagSerial       bool
	flagJobs         int
)

var repairCmd = &cobra.Command{
	Use:   "repair [path]",
	Short: "Repair one SWC file or every SWC file under a directory",
	Long:  "Loads each morphology, runs the repair pipeline, and writes the result back (or under --out). Outcomes and repair events are recorded as a run in the catalog. Defaults to the current directory.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRepair,
}

func init() {
	repairCmd.Flags().StringVar(&flagBranching, "branching", "angles", "primary-child classification: angles|radii")
	repairCmd.Flags().Float64Var(&flagDupThreshold, "dup-threshold", neurite.DefaultDuplicateThreshold, "merge consecutive samples closer than this distance")
	repairCmd.Flags().Float64Var(&flagStep, "step", neurite.DefaultResampleStep, "target segment length for resampling")
	repairCmd.Flags().StringVar(&flagOut, "out", "", "write repaired files under this directory instead of in place")
	repairCmd.Flags().BoolVar(&flagSerial, "serial", false, "repair arbors and files one at a time")
	repairCmd.Flags().IntVar(&flagJobs, "jobs", 0, "max files repaired concurrently (default: number of CPUs)")
}

func runRepair(cmd *cobra.Command, args []string) error {
	start := time.Now()

	branching, err := parseBranching(flagBranching)
	if err != nil {
		return outputError("repair", err)
	}

	arg := "."
	if len(args) > 0 {
		arg = args[0]
	}
	target, err := filepath.Abs(arg)
	if err != nil {
		return outputError("repair", fmt.Errorf("resolving path %q: %w", arg, err))
	}
	files, root, err := collectSWCFiles(target)
	if err != nil {
		return outputError("repair", err)
	}

	s, err := openCatalogForWrite()
	if err != nil {
		return outputError("repair", err)
	}
	defer s.Close()

	runID, err := s.InsertRun(target, start)
	if err != nil {
		return outputError("repair", err)
	}

	engine := neurite.New(
		neurite.WithBranchingMethod(branching),
		neurite.WithDuplicateThreshold(flagDupThreshold),
		neurite.WithResampleStep(flagStep),
		neurite.WithParallel(!flagSerial),
	)

	// Repair files on a worker pool; results keep the input order so the
	// catalog commit below is deterministic.
	results := make([]fileResult, len(files))
	g := new(errgroup.Group)
	g.SetLimit(repairJobs(len(files)))
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			results[i] = repairFile(engine, path, root)
			return nil
		})
	}
	// Workers only write their own slot and never fail.
	_ = g.Wait()

	// Commit serially, in input order.
	repaired := 0
	cliFiles := make([]CLIRepairFile, 0, len(results))
	for _, res := range results {
		status := store.StatusRepaired
		if res.err != nil {
			status = store.StatusFailed
		} else {
			repaired++
		}
		m := &store.Morphology{
			RunID:     runID,
			Path:      res.path,
			Status:    status,
			Mutations: res.mutations,
			Warnings:  res.warnings,
		}
		if _, err := s.InsertMorphology(m); err != nil {
			return outputError("repair", err)
		}
		if err := s.InsertEvents(m.ID, storeEvents(res.events)); err != nil {
			return outputError("repair", err)
		}
		cliFiles = append(cliFiles, res.toCLI())
	}
	if err := s.FinishRun(runID, time.Now(), len(files)); err != nil {
		return outputError("repair", err)
	}

	fmt.Fprintf(os.Stderr, "Repaired %d of %d morphologies in %s (run %d)\n",
		repaired, len(files), time.Since(start).Round(time.Millisecond), runID)
	fmt.Fprintf(os.Stderr, "Catalog: %s\n", resolveDBPath())

	total := len(cliFiles)
	return outputResult(CLIResult{
		Command:    "repair",
		Results:    cliFiles,
		TotalCount: &total,
	})
}

// fileResult is one file's outcome, produced on the worker pool.
type fileResult struct {
	path      string
	mutations int
	warnings  int
	events    []neurite.Event
	err       error
}

func (r fileResult) toCLI() CLIRepairFile {
	out := CLIRepairFile{
		Path:      r.path,
		Status:    store.StatusRepaired,
		Mutations: r.mutations,
		Warnings:  r.warnings,
	}
	if r.err != nil {
		out.Status = store.StatusFailed
		out.Error = r.err.Error()
	}
	for _, e := range r.events {
		out.Events = append(out.Events, eventToCLI(e, ""))
	}
	return out
}

// repairFile loads, repairs, and rewrites a single morphology. Failures are
// returned in the result rather than aborting the run: one corrupt tracing
// must not stop a batch.
func repairFile(engine *neurite.Engine, path, root string) fileResult {
	res := fileResult{path: path}

	f, err := os.Open(path)
	if err != nil {
		res.err = err
		return res
	}
	m, err := neurite.ReadSWC(f)
	f.Close()
	if err != nil {
		res.err = fmt.Errorf("loading %s: %w", path, err)
		return res
	}

	rep, err := engine.Repair(m)
	if err != nil {
		res.err = fmt.Errorf("repairing %s: %w", path, err)
		return res
	}
	res.mutations = rep.Mutations()
	res.warnings = len(rep.Warnings())
	res.events = rep.Events

	dest, err := outPath(path, root)
	if err != nil {
		res.err = err
		return res
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		res.err = fmt.Errorf("creating %s: %w", filepath.Dir(dest), err)
		return res
	}
	out, err := os.Create(dest)
	if err != nil {
		res.err = err
		return res
	}
	if err := neurite.WriteSWC(out, m); err != nil {
		out.Close()
		res.err = fmt.Errorf("writing %s: %w", dest, err)
		return res
	}
	if err := out.Close(); err != nil {
		res.err = err
	}
	return res
}

// collectSWCFiles expands the target into the sorted list of files to repair.
// For a single file the target itself is the list; for a directory every
// *.swc file below it is included. The returned root is the directory output
// paths are made relative to.
func collectSWCFiles(target string) (files []string, root string, err error) {
	info, err := os.Stat(target)
	if err != nil {
		return nil, "", fmt.Errorf("path not found: %s", target)
	}
	if !info.IsDir() {
		return []string{target}, filepath.Dir(target), nil
	}
	err = filepath.WalkDir(target, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".swc") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, "", fmt.Errorf("walking %s: %w", target, err)
	}
	if len(files) == 0 {
		return nil, "", fmt.Errorf("no .swc files under %s", target)
	}
	sort.Strings(files)
	return files, target, nil
}

// outPath maps an input file to its destination: the file itself when --out
// is unset, otherwise the same relative layout under the output directory.
func outPath(path, root string) (string, error) {
	if flagOut == "" {
		return path, nil
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", fmt.Errorf("relativizing %s: %w", path, err)
	}
	return filepath.Join(flagOut, rel), nil
}

// repairJobs returns the worker pool size for n files.
func repairJobs(n int) int {
	if flagSerial {
		return 1
	}
	jobs := flagJobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	if jobs > n {
		jobs = n
	}
	if jobs < 1 {
		jobs = 1
	}
	return jobs
}

func parseBranching(name string) (neurite.BranchingMethod, error) {
	switch name {
	case "angles":
		return neurite.BranchingAngles, nil
	case "radii":
		return neurite.BranchingRadii, nil
	default:
		return 0, fmt.Errorf("invalid branching method %q: must be angles or radii", name)
	}
}

// storeEvents converts report events to catalog rows.
func storeEvents(events []neurite.Event) []*store.Event {
	out := make([]*store.Event, len(events))
	for i, e := range events {
		out[i] = &store.Event{
			Kind:      string(e.Kind),
			Arbor:     e.Arbor,
			SectionID: e.SectionID,
			Count:     e.Count,
			Detail:    e.Detail,
		}
	}
	return out
}
