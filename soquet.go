package bloqflow

import (
	"fmt"
	"strconv"
	"strings"
)

// Node is a vertex of the composite graph: either a BloqInstance or one of
// the two dangling boundary sentinels. Implementations are comparable value
// types so nodes can key maps directly.
type Node interface {
	fmt.Stringer
	isGraphNode()
}

// Dangling marks one of the two graph boundaries. The exported singletons
// LeftDangle and RightDangle are the only values.
type Dangling struct {
	name string
}

// The two boundary sentinels. LeftDangle owns the graph's external input
// soquets, RightDangle its external outputs.
var (
	LeftDangle  = Dangling{name: "LeftDangle"}
	RightDangle = Dangling{name: "RightDangle"}
)

func (d Dangling) String() string { return d.name }
func (Dangling) isGraphNode()     {}

// BloqInstance identifies one placement of a bloq in a graph: the bloq value
// plus a sequence index unique within the graph under construction. Two
// instances of an identical bloq are distinct nodes.
type BloqInstance struct {
	Bloq Bloq
	I    int
}

func (bi BloqInstance) String() string {
	return fmt.Sprintf("%s<%d>", bi.Bloq, bi.I)
}

func (BloqInstance) isGraphNode() {}

// Soquet identifies one concrete wire endpoint: the owning node, the register
// it belongs to, and, for shaped registers, an index tuple into the shape.
// Immutable value type; equality is structural via Equals.
type Soquet struct {
	Binst Node
	Reg   Register
	Idx   []int
}

// Equals reports structural equality of two soquets.
func (s Soquet) Equals(o Soquet) bool {
	if s.Binst != o.Binst || !s.Reg.Equals(o.Reg) {
		return false
	}
	if len(s.Idx) != len(o.Idx) {
		return false
	}
	for i := range s.Idx {
		if s.Idx[i] != o.Idx[i] {
			return false
		}
	}
	return true
}

// Key returns a stable structural identity string, used wherever soquets key
// maps or sets.
func (s Soquet) Key() string {
	var sb strings.Builder
	if s.Binst != nil {
		sb.WriteString(s.Binst.String())
	}
	sb.WriteByte('|')
	sb.WriteString(s.Reg.key())
	sb.WriteByte('|')
	sb.WriteString(idxString(s.Idx))
	return sb.String()
}

// String renders the soquet in its full form, e.g. "LeftDangle.q" or
// "CNOT<2>.target[0]".
func (s Soquet) String() string {
	return s.Binst.String() + "." + s.shortString()
}

// shortString renders the soquet relative to its owning node: the register
// name plus any shape index.
func (s Soquet) shortString() string {
	return s.Reg.Name + idxString(s.Idx)
}

func idxString(idx []int) string {
	if len(idx) == 0 {
		return ""
	}
	parts := make([]string, len(idx))
	for i, v := range idx {
		parts[i] = strconv.Itoa(v)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// Connection is a directed edge between two soquets: the wire produced at
// Left is consumed at Right.
type Connection struct {
	Left  Soquet
	Right Soquet
}

func (c Connection) String() string {
	return c.Left.String() + " -> " + c.Right.String()
}

// Equals reports structural equality of two connections.
func (c Connection) Equals(o Connection) bool {
	return c.Left.Equals(o.Left) && c.Right.Equals(o.Right)
}

// Soqs maps register names to the soquets bound to them. Unshaped registers
// bind a single-element slice; shaped registers bind their wires flattened
// row-major. It is the argument and return currency of Builder.Add, AddFrom
// and Finalize.
type Soqs map[string][]Soquet

// One returns the single soquet bound to name. It panics when the name is
// absent or binds more than one wire; use the map directly for shaped
// registers.
func (s Soqs) One(name string) Soquet {
	soqs, ok := s[name]
	if !ok {
		panic(fmt.Sprintf("bloqflow: no soquet bound to `%s`", name))
	}
	if len(soqs) != 1 {
		panic(fmt.Sprintf("bloqflow: `%s` binds %d soquets, want 1", name, len(soqs)))
	}
	return soqs[0]
}

// clone returns a shallow copy with copied slices.
func (s Soqs) clone() Soqs {
	out := make(Soqs, len(s))
	for k, v := range s {
		out[k] = append([]Soquet(nil), v...)
	}
	return out
}

// danglingSoquets enumerates the boundary soquets implied by a signature:
// the LeftDangle soquets of its input-capable registers when right is false,
// or the RightDangle soquets of its output-capable registers when right is
// true.
func danglingSoquets(sig Signature, right bool) Soqs {
	out := make(Soqs)
	var regs []Register
	var binst Node
	if right {
		regs = sig.Rights()
		binst = RightDangle
	} else {
		regs = sig.Lefts()
		binst = LeftDangle
	}
	for _, reg := range regs {
		for _, idx := range reg.wireIndices() {
			out[reg.Name] = append(out[reg.Name], Soquet{Binst: binst, Reg: reg, Idx: idx})
		}
	}
	return out
}
