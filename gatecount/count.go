package gatecount

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/bloq-labs/bloqflow"
)

// ErrUnknownCost marks a leaf bloq with no cost model: not Costed, no call
// graph, no decomposition.
var ErrUnknownCost = errors.New("gatecount: no cost model for bloq")

// Costed is the leaf-cost capability: a bloq that knows its own gate cost
// directly. Checked by interface assertion, like the graph-layer
// capabilities.
type Costed interface {
	Complexity() Complexity
}

// BloqCount is one child entry of a declarative call graph: the callee and
// how many times the parent invokes it.
type BloqCount struct {
	Bloq  bloqflow.Bloq
	Count int64
}

// CallGraphBloq is the declarative-cost capability: a bloq that states its
// callees and multiplicities without building the full decomposition graph.
// The declaration should agree with Decompose totals; that agreement is a
// tested property, not an enforced one.
type CallGraphBloq interface {
	CallGraph() []BloqCount
}

// Counter computes complexities with a shared memo. Bloqs are comparable
// values, so the memo keys on the bloq itself: two structurally equal bloqs
// share one entry. Safe for concurrent use.
type Counter struct {
	mu   sync.RWMutex
	memo map[bloqflow.Bloq]Complexity
}

// NewCounter returns an empty counter.
func NewCounter() *Counter {
	return &Counter{memo: make(map[bloqflow.Bloq]Complexity)}
}

// Count returns the total complexity of b. Resolution order: memo, Costed,
// CallGraphBloq, Decompose. Structural bloqs (split/join/alloc/free) and
// adjoint wrappers cost nothing of their own; the adjoint of a bloq costs
// the same as the bloq.
func (c *Counter) Count(b bloqflow.Bloq) (Complexity, error) {
	c.mu.RLock()
	cached, ok := c.memo[b]
	c.mu.RUnlock()
	if ok {
		return cached, nil
	}

	total, err := c.compute(b)
	if err != nil {
		return Complexity{}, err
	}

	c.mu.Lock()
	c.memo[b] = total
	c.mu.Unlock()
	return total, nil
}

func (c *Counter) compute(b bloqflow.Bloq) (Complexity, error) {
	switch v := b.(type) {
	case bloqflow.Split, bloqflow.Join, bloqflow.Allocate, bloqflow.Free:
		return Complexity{}, nil
	case bloqflow.Adjoint:
		return c.Count(v.Inner)
	}

	if costed, ok := b.(Costed); ok {
		return costed.Complexity(), nil
	}

	if cg, ok := b.(CallGraphBloq); ok {
		var total Complexity
		for _, bc := range cg.CallGraph() {
			child, err := c.Count(bc.Bloq)
			if err != nil {
				return Complexity{}, err
			}
			total = total.Add(child.Mul(bc.Count))
		}
		return total, nil
	}

	if bloqflow.SupportsDecompose(b) {
		cb, err := bloqflow.DecomposeBloq(b)
		if err != nil {
			return Complexity{}, err
		}
		var total Complexity
		for _, bi := range cb.Instances() {
			child, err := c.Count(bi.Bloq)
			if err != nil {
				return Complexity{}, err
			}
			total = total.Add(child)
		}
		return total, nil
	}

	return Complexity{}, fmt.Errorf("%w: %s", ErrUnknownCost, b)
}

// CountAll resolves several roots concurrently over the shared memo. The
// result slice is index-aligned with bloqs; the first error cancels the
// remaining work.
func (c *Counter) CountAll(ctx context.Context, bloqs []bloqflow.Bloq) ([]Complexity, error) {
	out := make([]Complexity, len(bloqs))
	g, ctx := errgroup.WithContext(ctx)
	for i, b := range bloqs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			total, err := c.Count(b)
			if err != nil {
				return err
			}
			out[i] = total
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Count is the convenience form: a throwaway counter for a single root.
func Count(b bloqflow.Bloq) (Complexity, error) {
	return NewCounter().Count(b)
}
