// Package neurite repairs digitized neuronal morphology skeletons: the soma,
// axon, and dendrite trees traced from microscopy stacks. Raw tracings
// routinely carry defects that break downstream mesh generation — samples
// buried inside the soma, wildly uneven sample spacing, near-duplicate
// points, and whole arbors floating disconnected from the cell body. The
// engine brings a loaded morphology into a canonical, mesh-ready state and
// reports every change it made.
//
// # Pipeline
//
// Repair runs a fixed sequence per arbor:
//
//  1. Label branches: at each branch point, classify one child as the
//     primary continuation (by angle or by radius).
//  2. Strip within-soma samples from the arbor's root section.
//  3. Resample every section to a uniform arc-length policy.
//  4. Merge near-duplicate consecutive samples.
//
// Once every arbor has finished those local phases, soma connectivity is
// verified for all arbors: a disconnected axon or basal dendrite is grafted
// onto the nearest plausible anchor sample on another arbor, with
// radius-aware intersection tests taking priority over raw distance.
//
// # Usage
//
// Create an Engine, load a morphology, and repair it in place:
//
//	e := neurite.New(neurite.WithBranchingMethod(neurite.BranchingAngles))
//
//	f, err := os.Open("cell.swc")
//	if err != nil { ... }
//	m, err := neurite.ReadSWC(f)
//	if err != nil { ... }
//
//	report, err := e.Repair(m)
//	if err != nil { ... }
//	fmt.Print(report)
//
// The error return is reserved for malformed input trees (cycles, orphaned
// parents, empty sections); data-quality problems never fail the pass — they
// are repaired or reported as warnings in the [Report].
//
// # Determinism
//
// Repair is deterministic: nearest-sample ties break by (section ID, sample
// ID), fresh sample IDs are allocated per arbor in fixed ranges, and the
// report is ordered by arbor regardless of worker scheduling. Repair is also
// a fixed point: a second pass over the same morphology reports no changes,
// because grafted sections are resampled and deduplicated again before the
// pass returns.
package neurite
