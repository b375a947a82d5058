package gatecount

import "github.com/bloq-labs/bloqflow"

// Edge is one parent-child link of the call graph with its multiplicity.
type Edge struct {
	Parent bloqflow.Bloq
	Child  bloqflow.Bloq
	Count  int64
}

// CallGraph returns the full multiplicity graph rooted at root, breadth
// first, each parent expanded once. Children come from the declarative
// CallGraphBloq capability when present, otherwise from counting instances
// in the decomposition. Bloqs with neither contribute no edges.
func (c *Counter) CallGraph(root bloqflow.Bloq) ([]Edge, error) {
	var edges []Edge
	visited := map[bloqflow.Bloq]bool{root: true}
	queue := []bloqflow.Bloq{root}

	for len(queue) > 0 {
		parent := queue[0]
		queue = queue[1:]

		children, err := callees(parent)
		if err != nil {
			return nil, err
		}
		for _, bc := range children {
			edges = append(edges, Edge{Parent: parent, Child: bc.Bloq, Count: bc.Count})
			if !visited[bc.Bloq] {
				visited[bc.Bloq] = true
				queue = append(queue, bc.Bloq)
			}
		}
	}
	return edges, nil
}

// Leaves returns the terminal bloqs of the call graph with their total
// multiplicities, in first-reached order. A leaf is any bloq that produces
// no call-graph children.
func (c *Counter) Leaves(root bloqflow.Bloq) ([]BloqCount, error) {
	totals := make(map[bloqflow.Bloq]int64)
	var order []bloqflow.Bloq

	var walk func(b bloqflow.Bloq, mult int64) error
	walk = func(b bloqflow.Bloq, mult int64) error {
		children, err := callees(b)
		if err != nil {
			return err
		}
		if len(children) == 0 {
			if _, seen := totals[b]; !seen {
				order = append(order, b)
			}
			totals[b] += mult
			return nil
		}
		for _, bc := range children {
			if err := walk(bc.Bloq, mult*bc.Count); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(root, 1); err != nil {
		return nil, err
	}

	out := make([]BloqCount, 0, len(order))
	for _, b := range order {
		out = append(out, BloqCount{Bloq: b, Count: totals[b]})
	}
	return out, nil
}

// callees resolves one bloq's direct children with multiplicities.
func callees(b bloqflow.Bloq) ([]BloqCount, error) {
	switch b.(type) {
	case bloqflow.Split, bloqflow.Join, bloqflow.Allocate, bloqflow.Free:
		return nil, nil
	}

	if cg, ok := b.(CallGraphBloq); ok {
		return cg.CallGraph(), nil
	}

	if !bloqflow.SupportsDecompose(b) {
		return nil, nil
	}
	cb, err := bloqflow.DecomposeBloq(b)
	if err != nil {
		return nil, err
	}

	counts := make(map[bloqflow.Bloq]int64)
	var order []bloqflow.Bloq
	for _, bi := range cb.Instances() {
		if _, seen := counts[bi.Bloq]; !seen {
			order = append(order, bi.Bloq)
		}
		counts[bi.Bloq]++
	}
	out := make([]BloqCount, 0, len(order))
	for _, child := range order {
		out = append(out, BloqCount{Bloq: child, Count: counts[child]})
	}
	return out, nil
}
