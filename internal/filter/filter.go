// Package filter evaluates Risor expressions against repair events, backing
// the CLI's --where flag. Each event's fields are exposed as globals, so
// expressions read naturally:
//
//	kind == "reconnected" && arbor == "Axon"
//	count > 2 || section == 7
package filter

import (
	"context"
	"fmt"

	"github.com/risor-io/risor"
)

// Expr is a compiled-enough filter: the expression source, validated lazily
// on first use.
type Expr struct {
	src string
}

// New wraps a Risor expression. An empty expression matches everything.
func New(src string) *Expr {
	return &Expr{src: src}
}

// Match evaluates the expression with the given globals and returns the
// boolean result. Non-boolean results and evaluation failures are errors:
// a filter that cannot decide must not silently drop events.
func (x *Expr) Match(ctx context.Context, globals map[string]any) (bool, error) {
	if x == nil || x.src == "" {
		return true, nil
	}
	opts := make([]risor.Option, 0, len(globals))
	for name, val := range globals {
		opts = append(opts, risor.WithGlobal(name, val))
	}
	result, err := risor.Eval(ctx, x.src, opts...)
	if err != nil {
		return false, fmt.Errorf("filter: expression %q: %w", x.src, err)
	}
	b, ok := result.Interface().(bool)
	if !ok {
		return false, fmt.Errorf("filter: expression %q: result is %s, want bool", x.src, result.Type())
	}
	return b, nil
}
