package bloqflow

import "fmt"

// Structural bookkeeping bloqs. They carry no computational content but
// appear in the graph as ordinary instances, so wire-width changes and
// ancilla lifecycle are subject to the same linearity rules as everything
// else.

// Split fans a single n-bit wire out into n unit-width wires. The input and
// output ports share the name "split": an n-bit left register and a shaped
// (n,) right register of unit wires.
type Split struct {
	N int
}

func (s Split) Signature() Signature {
	return MustSignature(
		Register{Name: "split", Bitsize: s.N, Side: SideLeft},
		Register{Name: "split", Bitsize: 1, Shape: []int{s.N}, Side: SideRight},
	)
}

func (s Split) String() string {
	return fmt.Sprintf("Split(n=%d)", s.N)
}

// Adjoint of a split is the matching join.
func (s Split) Adjoint() Bloq {
	return Join{N: s.N}
}

// Join fuses n ordered unit-width wires into a single n-bit wire. The
// reverse of Split.
type Join struct {
	N int
}

func (j Join) Signature() Signature {
	return MustSignature(
		Register{Name: "join", Bitsize: 1, Shape: []int{j.N}, Side: SideLeft},
		Register{Name: "join", Bitsize: j.N, Side: SideRight},
	)
}

func (j Join) String() string {
	return fmt.Sprintf("Join(n=%d)", j.N)
}

func (j Join) Adjoint() Bloq {
	return Split{N: j.N}
}

// Allocate produces a fresh n-bit ancilla wire with no left-boundary origin.
type Allocate struct {
	N int
}

func (a Allocate) Signature() Signature {
	return MustSignature(Register{Name: "alloc", Bitsize: a.N, Side: SideRight})
}

func (a Allocate) String() string {
	return fmt.Sprintf("Allocate(n=%d)", a.N)
}

func (a Allocate) Adjoint() Bloq {
	return Free{N: a.N}
}

// Free consumes an n-bit wire with no right-boundary destination. The wire
// is assumed clean; the graph layer does not model its state.
type Free struct {
	N int
}

func (f Free) Signature() Signature {
	return MustSignature(Register{Name: "free", Bitsize: f.N, Side: SideLeft})
}

func (f Free) String() string {
	return fmt.Sprintf("Free(n=%d)", f.N)
}

func (f Free) Adjoint() Bloq {
	return Allocate{N: f.N}
}

// Ensure interface compliance at compile time.
var (
	_ Adjointable = Split{}
	_ Adjointable = Join{}
	_ Adjointable = Allocate{}
	_ Adjointable = Free{}
)
