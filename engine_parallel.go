package neurite

import (
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/jshaw/neurite/internal/morph"
)

// repairArborsParallel runs the local repair phases for independent arbors
// on a worker pool. Arbors never touch each other's sections during these
// phases, and each gets its own ID range, so the result is identical to the
// serial path — including the report, which is merged in arbor order, not
// completion order.
func (e *Engine) repairArborsParallel(soma *morph.Soma, arbors []*morph.Arbor, idBase int) []*Report {
	reports := make([]*Report, len(arbors))
	if len(arbors) == 0 {
		return reports
	}

	g := new(errgroup.Group)
	g.SetLimit(min(runtime.NumCPU(), len(arbors)))
	for i, a := range arbors {
		i, a := i, a
		g.Go(func() error {
			reports[i] = e.repairArbor(soma, a, newIDCounter(idBase+i*arborIDStride))
			return nil
		})
	}
	// Workers only write their own slot and never fail.
	_ = g.Wait()

	return reports
}
