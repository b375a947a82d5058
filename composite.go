package bloqflow

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// CompositeBloq is an immutable wiring diagram of bloq instances: an
// unordered collection of connections plus the signature describing its own
// external ports. It is produced by Builder.Finalize and never mutated
// afterwards, so completed graphs are safe to share across goroutines.
//
// CompositeBloq itself satisfies Bloq, so a finished graph can be placed
// inside a larger graph like any other operation.
type CompositeBloq struct {
	cxns []Connection
	sig  Signature
}

// NewCompositeBloq assembles a graph directly from connections and a
// signature. No validation is performed; hand-built graphs should be handed
// to Validate. The Builder is the supported construction path.
func NewCompositeBloq(cxns []Connection, sig Signature) *CompositeBloq {
	return &CompositeBloq{cxns: append([]Connection(nil), cxns...), sig: sig}
}

// Signature returns the graph's external port declaration.
func (c *CompositeBloq) Signature() Signature {
	return c.sig
}

// Connections returns the graph's connections. The returned slice is a copy.
func (c *CompositeBloq) Connections() []Connection {
	return append([]Connection(nil), c.cxns...)
}

func (c *CompositeBloq) String() string {
	return "CompositeBloq"
}

// Decompose returns the graph itself: a composite is its own one-level
// decomposition.
func (c *CompositeBloq) Decompose() (*CompositeBloq, error) {
	return c, nil
}

// Instances returns the distinct bloq instances appearing in any connection,
// in first-seen order over the connection list.
func (c *CompositeBloq) Instances() []BloqInstance {
	seen := make(map[BloqInstance]bool)
	var out []BloqInstance
	add := func(n Node) {
		if bi, ok := n.(BloqInstance); ok && !seen[bi] {
			seen[bi] = true
			out = append(out, bi)
		}
	}
	for _, cxn := range c.cxns {
		add(cxn.Left.Binst)
		add(cxn.Right.Binst)
	}
	return out
}

// FinalSoquets returns, per output register name, the producer soquets
// feeding the right boundary, flattened row-major. This is the terminal
// argument set for replaying the graph through a Builder.
func (c *CompositeBloq) FinalSoquets() Soqs {
	out := make(Soqs)
	for _, reg := range c.sig.Rights() {
		out[reg.Name] = make([]Soquet, reg.NumWires())
	}
	for _, cxn := range c.cxns {
		if cxn.Right.Binst == Node(RightDangle) {
			out[cxn.Right.Reg.Name][flatIndex(cxn.Right.Reg, cxn.Right.Idx)] = cxn.Left
		}
	}
	return out
}

// nodeGraph is the derived instance graph: adjacency over bloq instances
// plus the two boundary sentinels.
type nodeGraph struct {
	nodes []Node // insertion order: LeftDangle, instances as seen, RightDangle
	preds map[Node][]Node
	succs map[Node][]Node
}

func (c *CompositeBloq) buildNodeGraph() *nodeGraph {
	g := &nodeGraph{
		preds: make(map[Node][]Node),
		succs: make(map[Node][]Node),
	}
	seen := make(map[Node]bool)
	addNode := func(n Node) {
		if !seen[n] {
			seen[n] = true
			g.nodes = append(g.nodes, n)
		}
	}
	addNode(Node(LeftDangle))
	edgeSeen := make(map[[2]Node]bool)
	for _, cxn := range c.cxns {
		from, to := cxn.Left.Binst, cxn.Right.Binst
		addNode(from)
		addNode(to)
		key := [2]Node{from, to}
		if edgeSeen[key] {
			continue
		}
		edgeSeen[key] = true
		g.succs[from] = append(g.succs[from], to)
		g.preds[to] = append(g.preds[to], from)
	}
	addNode(Node(RightDangle))
	return g
}

// nodeLess orders nodes deterministically: LeftDangle first, instances by
// sequence index, RightDangle last.
func nodeLess(a, b Node) bool {
	rank := func(n Node) int {
		switch v := n.(type) {
		case Dangling:
			if v == LeftDangle {
				return -1
			}
			return 1
		case BloqInstance:
			return 0
		}
		return 0
	}
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return ra < rb
	}
	ia, aok := a.(BloqInstance)
	ib, bok := b.(BloqInstance)
	if aok && bok {
		return ia.I < ib.I
	}
	return false
}

// Generations returns the nodes layered in topological generation order via
// Kahn's algorithm: every node appears in the first generation after all of
// its predecessors. The boundary sentinels bound the layering. Returns
// ErrCycleDetected when the connection set admits no topological order.
func (c *CompositeBloq) Generations() ([][]Node, error) {
	g := c.buildNodeGraph()

	inDegree := make(map[Node]int, len(g.nodes))
	for _, n := range g.nodes {
		inDegree[n] = len(g.preds[n])
	}

	var frontier []Node
	for _, n := range g.nodes {
		if inDegree[n] == 0 {
			frontier = append(frontier, n)
		}
	}

	var generations [][]Node
	processed := 0
	for len(frontier) > 0 {
		sort.Slice(frontier, func(i, j int) bool { return nodeLess(frontier[i], frontier[j]) })
		generations = append(generations, frontier)
		processed += len(frontier)

		var next []Node
		for _, n := range frontier {
			for _, succ := range g.succs[n] {
				inDegree[succ]--
				if inDegree[succ] == 0 {
					next = append(next, succ)
				}
			}
		}
		frontier = next
	}

	if processed != len(g.nodes) {
		return nil, fmt.Errorf("%w: %d of %d nodes unreachable from a topological order",
			ErrCycleDetected, len(g.nodes)-processed, len(g.nodes))
	}
	return generations, nil
}

// NodeConnections pairs one instance with its incoming and outgoing
// connections, each ordered by the instance's own register declaration.
type NodeConnections struct {
	Binst BloqInstance
	Preds []Connection
	Succs []Connection
}

// IterByNode yields every instance in topological generation order together
// with its predecessor and successor connections. The sequence is finite,
// restartable and deterministic for a given connection set; ties inside a
// generation break by instance index.
func (c *CompositeBloq) IterByNode() ([]NodeConnections, error) {
	generations, err := c.Generations()
	if err != nil {
		return nil, err
	}

	predsOf := make(map[Node][]Connection)
	succsOf := make(map[Node][]Connection)
	for _, cxn := range c.cxns {
		succsOf[cxn.Left.Binst] = append(succsOf[cxn.Left.Binst], cxn)
		predsOf[cxn.Right.Binst] = append(predsOf[cxn.Right.Binst], cxn)
	}

	var out []NodeConnections
	for _, gen := range generations {
		for _, n := range gen {
			bi, ok := n.(BloqInstance)
			if !ok {
				continue
			}
			sig := bi.Bloq.Signature()
			preds := append([]Connection(nil), predsOf[n]...)
			succs := append([]Connection(nil), succsOf[n]...)
			sortByRegister(preds, sig.Lefts(), true)
			sortByRegister(succs, sig.Rights(), false)
			out = append(out, NodeConnections{Binst: bi, Preds: preds, Succs: succs})
		}
	}
	return out, nil
}

// NodeSoquets pairs one instance with its input soquets (the upstream
// producer endpoints, keyed by this instance's input register names) and the
// output soquets it produced.
type NodeSoquets struct {
	Binst BloqInstance
	Ins   Soqs
	Outs  Soqs
}

// IterBySoquet yields every instance in topological generation order with
// the soquets flowing in and out of it. This is the replay primitive behind
// AddFrom, flattening and Copy.
func (c *CompositeBloq) IterBySoquet() ([]NodeSoquets, error) {
	byNode, err := c.IterByNode()
	if err != nil {
		return nil, err
	}

	out := make([]NodeSoquets, 0, len(byNode))
	for _, nc := range byNode {
		ins := make(Soqs)
		for _, reg := range nc.Binst.Bloq.Signature().Lefts() {
			ins[reg.Name] = make([]Soquet, reg.NumWires())
		}
		for _, cxn := range nc.Preds {
			ins[cxn.Right.Reg.Name][flatIndex(cxn.Right.Reg, cxn.Right.Idx)] = cxn.Left
		}

		outs := make(Soqs)
		for _, reg := range nc.Binst.Bloq.Signature().Rights() {
			for _, idx := range reg.wireIndices() {
				outs[reg.Name] = append(outs[reg.Name], Soquet{Binst: nc.Binst, Reg: reg, Idx: idx})
			}
		}
		out = append(out, NodeSoquets{Binst: nc.Binst, Ins: ins, Outs: outs})
	}
	return out, nil
}

// flatIndex converts a shape index tuple to its row-major flat position.
func flatIndex(reg Register, idx []int) int {
	if len(idx) == 0 {
		return 0
	}
	flat := 0
	for d, v := range idx {
		flat = flat*reg.Shape[d] + v
	}
	return flat
}

// sortByRegister orders connections by the position of their endpoint within
// regs (plus the shape index). rightEndpoint selects which endpoint of each
// connection belongs to the node being ordered.
func sortByRegister(cxns []Connection, regs []Register, rightEndpoint bool) {
	pos := make(map[string]int, len(regs))
	for i, r := range regs {
		pos[r.Name] = i
	}
	rank := func(cxn Connection) (int, int) {
		var s Soquet
		if rightEndpoint {
			s = cxn.Right
		} else {
			s = cxn.Left
		}
		return pos[s.Reg.Name], flatIndex(s.Reg, s.Idx)
	}
	sort.SliceStable(cxns, func(i, j int) bool {
		ri, fi := rank(cxns[i])
		rj, fj := rank(cxns[j])
		if ri != rj {
			return ri < rj
		}
		return fi < fj
	})
}

// DebugText renders the connection structure grouped by node in topological
// order: one block per instance listing incoming then outgoing wires,
// generations separated by a dashed rule. The output is deterministic and
// doubles as a golden format in tests.
func (c *CompositeBloq) DebugText() string {
	generations, err := c.Generations()
	if err != nil {
		return fmt.Sprintf("<invalid graph: %v>", err)
	}

	predsOf := make(map[Node][]Connection)
	succsOf := make(map[Node][]Connection)
	for _, cxn := range c.cxns {
		succsOf[cxn.Left.Binst] = append(succsOf[cxn.Left.Binst], cxn)
		predsOf[cxn.Right.Binst] = append(predsOf[cxn.Right.Binst], cxn)
	}

	var blocks []string
	for _, gen := range generations {
		var sb strings.Builder
		empty := true
		for _, n := range gen {
			bi, ok := n.(BloqInstance)
			if !ok {
				continue
			}
			if !empty {
				sb.WriteByte('\n')
			}
			empty = false
			sig := bi.Bloq.Signature()

			sb.WriteString(bi.String())
			preds := append([]Connection(nil), predsOf[n]...)
			succs := append([]Connection(nil), succsOf[n]...)
			sortByRegister(preds, sig.Lefts(), true)
			sortByRegister(succs, sig.Rights(), false)
			for _, cxn := range preds {
				sb.WriteString("\n  ")
				sb.WriteString(cxn.Left.String())
				sb.WriteString(" -> ")
				sb.WriteString(cxn.Right.shortString())
			}
			for _, cxn := range succs {
				sb.WriteString("\n  ")
				sb.WriteString(cxn.Left.shortString())
				sb.WriteString(" -> ")
				sb.WriteString(cxn.Right.String())
			}
		}
		if !empty {
			blocks = append(blocks, sb.String())
		}
	}
	return strings.Join(blocks, "\n--------------------\n")
}

// Copy rebuilds the graph through a fresh Builder, renumbering instances
// from zero. The copy is a distinct value with identical structure.
func (c *CompositeBloq) Copy() (*CompositeBloq, error) {
	bb, initial := FromSignature(c.sig)
	soqMap := newSoqMap()
	for name, soqs := range danglingSoquets(c.sig, false) {
		for i, old := range soqs {
			soqMap.set(old, initial[name][i])
		}
	}
	for _, ns := range mustIterBySoquet(c) {
		newOuts, err := bb.Add(ns.Binst.Bloq, soqMap.apply(ns.Ins))
		if err != nil {
			return nil, err
		}
		soqMap.zip(ns.Outs, newOuts)
	}
	return bb.Finalize(soqMap.apply(c.FinalSoquets()))
}

// Adjoint returns the reverse of the graph: every connection flipped, every
// instance replaced by its adjoint, and the signature's sides reversed.
// Instance indices are preserved, so the adjoint of the adjoint is
// structurally identical to the original.
func (c *CompositeBloq) Adjoint() *CompositeBloq {
	flipped := make([]Connection, len(c.cxns))
	for i, cxn := range c.cxns {
		flipped[i] = Connection{
			Left:  flipSoquet(cxn.Right),
			Right: flipSoquet(cxn.Left),
		}
	}

	regs := c.sig.Registers()
	rev := make([]Register, len(regs))
	for i, r := range regs {
		rev[i] = reverseSide(r)
	}
	return NewCompositeBloq(flipped, MustSignature(rev...))
}

// flipSoquet maps a soquet of the forward graph onto the adjoint graph:
// boundary sentinels swap, instance bloqs become their adjoints, and the
// register is rebound positionally on the adjointed bloq's opposite side.
func flipSoquet(s Soquet) Soquet {
	switch n := s.Binst.(type) {
	case Dangling:
		flipped := RightDangle
		if n == RightDangle {
			flipped = LeftDangle
		}
		return Soquet{Binst: flipped, Reg: reverseSide(s.Reg), Idx: s.Idx}
	case BloqInstance:
		adj := MakeAdjoint(n.Bloq)
		adjInst := BloqInstance{Bloq: adj, I: n.I}

		// Inputs of the original correspond positionally to outputs of the
		// adjoint and vice versa.
		var from, to []Register
		if s.Reg.Side.IsLeft() && !s.Reg.Side.IsRight() {
			from, to = n.Bloq.Signature().Lefts(), adj.Signature().Rights()
		} else if s.Reg.Side.IsRight() && !s.Reg.Side.IsLeft() {
			from, to = n.Bloq.Signature().Rights(), adj.Signature().Lefts()
		} else {
			// Thru registers keep their name and side on the adjoint.
			reg, err := adj.Signature().Get(s.Reg.Name)
			if err != nil {
				reg = s.Reg
			}
			return Soquet{Binst: adjInst, Reg: reg, Idx: s.Idx}
		}
		for i, r := range from {
			if r.Equals(s.Reg) && i < len(to) {
				return Soquet{Binst: adjInst, Reg: to[i], Idx: s.Idx}
			}
		}
		return Soquet{Binst: adjInst, Reg: reverseSide(s.Reg), Idx: s.Idx}
	}
	return s
}

// mustIterBySoquet is IterBySoquet for graphs already known to be acyclic.
func mustIterBySoquet(c *CompositeBloq) []NodeSoquets {
	out, err := c.IterBySoquet()
	if err != nil {
		panic(err)
	}
	return out
}

// FlattenOnce returns a new graph with every instance satisfying pred
// replaced by its one-level decomposition, spliced in with AddFrom
// semantics. Instances that do not satisfy pred, and instances without a
// decomposition, are re-added untouched. The receiver is never modified.
func (c *CompositeBloq) FlattenOnce(pred func(BloqInstance) bool) (*CompositeBloq, error) {
	out, _, err := c.flattenOnce(pred)
	return out, err
}

func (c *CompositeBloq) flattenOnce(pred func(BloqInstance) bool) (*CompositeBloq, int, error) {
	nodes, err := c.IterBySoquet()
	if err != nil {
		return nil, 0, err
	}

	bb, initial := FromSignature(c.sig)
	soqMap := newSoqMap()
	for name, soqs := range danglingSoquets(c.sig, false) {
		for i, old := range soqs {
			soqMap.set(old, initial[name][i])
		}
	}

	flattened := 0
	for _, ns := range nodes {
		ins := soqMap.apply(ns.Ins)
		var newOuts Soqs
		if pred(ns.Binst) && SupportsDecompose(ns.Binst.Bloq) {
			newOuts, err = bb.AddFrom(ns.Binst.Bloq, ins)
			switch {
			case err == nil:
				flattened++
			case errors.Is(err, ErrUnsupportedDecomposition):
				// Decomposable in type but not at runtime (e.g. a generic
				// Adjoint around a leaf): re-add the node untouched. AddFrom
				// fails before mutating the builder, so the retry is clean.
				newOuts, err = bb.Add(ns.Binst.Bloq, ins)
				if err != nil {
					return nil, 0, err
				}
			default:
				return nil, 0, err
			}
		} else {
			newOuts, err = bb.Add(ns.Binst.Bloq, ins)
			if err != nil {
				return nil, 0, err
			}
		}
		soqMap.zip(ns.Outs, newOuts)
	}

	out, err := bb.Finalize(soqMap.apply(c.FinalSoquets()))
	if err != nil {
		return nil, 0, err
	}
	return out, flattened, nil
}

// flattenMaxIters caps Flatten's fixpoint loop against predicates that never
// clear.
const flattenMaxIters = 1_000

// Flatten repeatedly applies FlattenOnce until no instance satisfies pred.
// When an instance keeps satisfying pred but exposes no decomposition, the
// fixpoint cannot be reached and Flatten fails with
// ErrUnsupportedDecomposition after the first stalled pass.
func (c *CompositeBloq) Flatten(pred func(BloqInstance) bool) (*CompositeBloq, error) {
	cur := c
	for i := 0; i < flattenMaxIters; i++ {
		var remaining []BloqInstance
		for _, bi := range cur.Instances() {
			if pred(bi) {
				remaining = append(remaining, bi)
			}
		}
		if len(remaining) == 0 {
			return cur, nil
		}

		next, flattened, err := cur.flattenOnce(pred)
		if err != nil {
			return nil, err
		}
		if flattened == 0 {
			return nil, fmt.Errorf("%w: %s satisfies the flatten predicate but cannot decompose",
				ErrUnsupportedDecomposition, remaining[0].Bloq)
		}
		cur = next
	}
	return nil, fmt.Errorf("flatten did not reach a fixpoint after %d passes", flattenMaxIters)
}

// soqMap tracks old-soquet to new-soquet rewrites while a graph is replayed
// through a fresh Builder.
type soqMap struct {
	m map[string]Soquet
}

func newSoqMap() *soqMap {
	return &soqMap{m: make(map[string]Soquet)}
}

func (sm *soqMap) set(old, repl Soquet) {
	sm.m[old.Key()] = repl
}

// apply rewrites every mapped soquet in soqs, leaving unmapped ones as-is.
func (sm *soqMap) apply(soqs Soqs) Soqs {
	out := make(Soqs, len(soqs))
	for name, list := range soqs {
		mapped := make([]Soquet, len(list))
		for i, s := range list {
			if repl, ok := sm.m[s.Key()]; ok {
				mapped[i] = repl
			} else {
				mapped[i] = s
			}
		}
		out[name] = mapped
	}
	return out
}

// zip records old->new pairs register by register.
func (sm *soqMap) zip(old, fresh Soqs) {
	for name, oldList := range old {
		freshList := fresh[name]
		for i := range oldList {
			if i < len(freshList) {
				sm.set(oldList[i], freshList[i])
			}
		}
	}
}

// Ensure interface compliance at compile time.
var (
	_ Bloq         = (*CompositeBloq)(nil)
	_ Decomposable = (*CompositeBloq)(nil)
)
