package bloqflow

import (
	"errors"
	"fmt"
)

// Bloq is the fundamental unit of a quantum program: a named operation with a
// fixed register signature. Bloqs are opaque to the graph layer; optional
// capabilities (decomposition, adjoint, cost contributions) are discovered by
// interface assertion.
//
// Implementations must be immutable comparable value types: instance
// deduplication, call-graph multiplicities and map keys all rely on
// structural equality of the bloq value itself.
type Bloq interface {
	// Signature returns the bloq's register signature. Pure and
	// deterministic.
	Signature() Signature

	// String renders the bloq for diagnostics and debug dumps, e.g.
	// "CNOT" or "Split(n=3)".
	String() string
}

// Decomposable is implemented by bloqs that can expand into a composite
// graph of sub-bloqs.
type Decomposable interface {
	Bloq

	// Decompose returns the one-level decomposition. The returned graph's
	// boundary registers must match the bloq's own signature.
	Decompose() (*CompositeBloq, error)
}

// Adjointable is implemented by bloqs with a bespoke reverse/inverse view.
// Bloqs without it get the generic Adjoint wrapper from MakeAdjoint.
type Adjointable interface {
	Bloq

	// Adjoint returns the reverse operation.
	Adjoint() Bloq
}

// DecomposeBloq returns the one-level decomposition of b. A CompositeBloq
// decomposes to itself; other bloqs must implement Decomposable or the call
// fails with ErrUnsupportedDecomposition.
func DecomposeBloq(b Bloq) (*CompositeBloq, error) {
	if cb, ok := b.(*CompositeBloq); ok {
		return cb, nil
	}
	if d, ok := b.(Decomposable); ok {
		return d.Decompose()
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedDecomposition, b)
}

// SupportsDecompose reports whether DecomposeBloq can succeed for b without
// computing the full decomposition, by probing the capability. A bloq whose
// Decompose itself returns ErrUnsupportedDecomposition is only discovered on
// the actual call.
func SupportsDecompose(b Bloq) bool {
	if _, ok := b.(*CompositeBloq); ok {
		return true
	}
	_, ok := b.(Decomposable)
	return ok
}

// MakeAdjoint returns the adjoint of b: the bloq's own Adjoint when it
// implements Adjointable, otherwise a generic wrapper that reverses the
// signature and, when b is decomposable, the decomposition.
func MakeAdjoint(b Bloq) Bloq {
	if a, ok := b.(Adjointable); ok {
		return a.Adjoint()
	}
	if w, ok := b.(Adjoint); ok {
		// Adjoint of an adjoint is the original.
		return w.Inner
	}
	return Adjoint{Inner: b}
}

// Adjoint is the generic reverse view of a bloq: left and right boundaries
// swap, and the decomposition (when present) runs backwards.
type Adjoint struct {
	Inner Bloq
}

// Signature returns the inner signature with every register's side reversed,
// order preserved.
func (a Adjoint) Signature() Signature {
	inner := a.Inner.Signature().Registers()
	regs := make([]Register, len(inner))
	for i, r := range inner {
		regs[i] = reverseSide(r)
	}
	return MustSignature(regs...)
}

func (a Adjoint) String() string {
	return fmt.Sprintf("Adjoint(%s)", a.Inner)
}

// Decompose returns the reversed decomposition of the inner bloq.
func (a Adjoint) Decompose() (*CompositeBloq, error) {
	cb, err := DecomposeBloq(a.Inner)
	if err != nil {
		if errors.Is(err, ErrUnsupportedDecomposition) {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedDecomposition, a)
		}
		return nil, err
	}
	return cb.Adjoint(), nil
}

// Adjoint satisfies Adjointable by unwrapping.
func (a Adjoint) Adjoint() Bloq {
	return a.Inner
}

func reverseSide(r Register) Register {
	switch r.Side {
	case SideLeft:
		r.Side = SideRight
	case SideRight:
		r.Side = SideLeft
	}
	r.Shape = append([]int(nil), r.Shape...)
	return r
}

// Ensure interface compliance at compile time.
var (
	_ Bloq         = Adjoint{}
	_ Decomposable = Adjoint{}
	_ Adjointable  = Adjoint{}
)
