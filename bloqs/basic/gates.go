// Package basic provides the standard gate bloqs: single-qubit Cliffords and
// non-Cliffords, the controlled gates, and small composites built from them.
// Every gate is a comparable value type with a leaf cost; composites carry
// both a decomposition and a declarative call graph.
package basic

import (
	"fmt"

	"github.com/bloq-labs/bloqflow"
	"github.com/bloq-labs/bloqflow/gatecount"
)

// XGate is the Pauli X (bit flip).
type XGate struct{}

func (XGate) Signature() bloqflow.Signature {
	return bloqflow.MustSignature(bloqflow.Reg("q", 1))
}

func (XGate) String() string { return "X" }

func (XGate) Complexity() gatecount.Complexity {
	return gatecount.Complexity{Clifford: 1}
}

// X is self-inverse.
func (g XGate) Adjoint() bloqflow.Bloq { return g }

// TGate is the T gate or its inverse, the costly non-Clifford primitive.
type TGate struct {
	IsAdjoint bool
}

func (TGate) Signature() bloqflow.Signature {
	return bloqflow.MustSignature(bloqflow.Reg("q", 1))
}

func (g TGate) String() string {
	if g.IsAdjoint {
		return "T†"
	}
	return "T"
}

func (TGate) Complexity() gatecount.Complexity {
	return gatecount.Complexity{T: 1}
}

func (g TGate) Adjoint() bloqflow.Bloq {
	return TGate{IsAdjoint: !g.IsAdjoint}
}

// ZPow is Z raised to an arbitrary exponent: a rotation about the Z axis by
// Exponent half-turns.
type ZPow struct {
	Exponent float64
}

func (ZPow) Signature() bloqflow.Signature {
	return bloqflow.MustSignature(bloqflow.Reg("q", 1))
}

func (g ZPow) String() string {
	return fmt.Sprintf("Z**%g", g.Exponent)
}

func (ZPow) Complexity() gatecount.Complexity {
	return gatecount.Complexity{Rotations: 1}
}

func (g ZPow) Adjoint() bloqflow.Bloq {
	return ZPow{Exponent: -g.Exponent}
}

// CNOT is the controlled-X gate.
type CNOT struct{}

func (CNOT) Signature() bloqflow.Signature {
	return bloqflow.MustSignature(
		bloqflow.Reg("ctrl", 1),
		bloqflow.Reg("target", 1),
	)
}

func (CNOT) String() string { return "CNOT" }

func (CNOT) Complexity() gatecount.Complexity {
	return gatecount.Complexity{Clifford: 1}
}

func (g CNOT) Adjoint() bloqflow.Bloq { return g }

// Toffoli is the doubly-controlled X gate: a (2,)-shaped control register
// plus one target wire.
type Toffoli struct{}

func (Toffoli) Signature() bloqflow.Signature {
	return bloqflow.MustSignature(
		bloqflow.Register{Name: "ctrl", Bitsize: 1, Shape: []int{2}, Side: bloqflow.SideThru},
		bloqflow.Reg("target", 1),
	)
}

func (Toffoli) String() string { return "Toffoli" }

func (Toffoli) Complexity() gatecount.Complexity {
	return gatecount.Complexity{T: 4}
}

func (g Toffoli) Adjoint() bloqflow.Bloq { return g }

// Ensure interface compliance at compile time.
var (
	_ bloqflow.Adjointable = XGate{}
	_ bloqflow.Adjointable = TGate{}
	_ bloqflow.Adjointable = ZPow{}
	_ bloqflow.Adjointable = CNOT{}
	_ bloqflow.Adjointable = Toffoli{}
	_ gatecount.Costed     = XGate{}
	_ gatecount.Costed     = TGate{}
	_ gatecount.Costed     = ZPow{}
	_ gatecount.Costed     = CNOT{}
	_ gatecount.Costed     = Toffoli{}
)
