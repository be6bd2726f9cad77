package neurite

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/jshaw/neurite/internal/morph"
)

// labelBranches walks the arbor top-down assigning branching orders and
// marking exactly one child per branch point as primary — the continuation
// the mesh builder later bridges smoothly into its parent. Connectivity
// repair also relies on the labels when choosing graft anchors.
func (e *Engine) labelBranches(a *morph.Arbor) {
	root := a.Root
	root.BranchingOrder = 1
	root.IsPrimary = true
	e.labelChildren(root)
}

func (e *Engine) labelChildren(sec *morph.Section) {
	for _, child := range sec.Children {
		child.BranchingOrder = sec.BranchingOrder + 1
		child.IsPrimary = false
	}
	switch len(sec.Children) {
	case 0:
	case 1:
		sec.Children[0].IsPrimary = true
	default:
		e.pickPrimary(sec).IsPrimary = true
	}
	for _, child := range sec.Children {
		e.labelChildren(child)
	}
}

// pickPrimary selects the primary child among two or more.
//
// Angles method: the child whose leading direction deviates MOST from the
// parent's terminal direction wins. This matches the digitizing convention
// the mesh-bridging stage was built against, counterintuitive as it reads;
// see DESIGN.md before changing it. Radii method: the child with the largest
// starting radius wins. Either way, ties break toward the lower section ID.
func (e *Engine) pickPrimary(sec *morph.Section) *morph.Section {
	best := sec.Children[0]
	bestScore := e.childScore(sec, best)
	for _, child := range sec.Children[1:] {
		score := e.childScore(sec, child)
		if score > bestScore || (score == bestScore && child.ID < best.ID) {
			best = child
			bestScore = score
		}
	}
	return best
}

// childScore returns the quantity pickPrimary maximizes for a child.
func (e *Engine) childScore(parent, child *morph.Section) float64 {
	if e.branching == BranchingRadii {
		if first := child.FirstSample(); first != nil {
			return first.Radius
		}
		return 0
	}
	return angleBetween(parent.TrailingDirection(), child.LeadingDirection())
}

// angleBetween returns the angle between two unit vectors in radians.
// Degenerate (zero) directions score as a right angle.
func angleBetween(a, b r3.Vec) float64 {
	dot := r3.Dot(a, b)
	if dot > 1 {
		dot = 1
	}
	if dot < -1 {
		dot = -1
	}
	return math.Acos(dot)
}
