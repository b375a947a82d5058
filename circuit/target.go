package circuit

import (
	"errors"
	"fmt"

	"github.com/bloq-labs/bloqflow"
	"github.com/bloq-labs/bloqflow/bloqs/basic"
)

// ErrUnsupportedGate marks a bloq the target cannot translate: no native
// gate, no decomposition to recurse into.
var ErrUnsupportedGate = errors.New("circuit: no gate translation for bloq")

// Target implements bloqflow.Exporter against a Circuit. It owns qubit-id
// allocation: Allocate bloqs draw fresh ids (reusing freed ones), Free bloqs
// retire them. Bloqs without a native gate are decomposed and exported
// recursively.
type Target struct {
	c        Circuit
	nextID   int
	freeList []int
}

// NewTarget returns a target with an empty circuit. firstID is the first
// qubit id handed to Allocate bloqs; callers binding external registers to
// ids 0..n-1 should pass n.
func NewTarget(firstID int) *Target {
	return &Target{nextID: firstID}
}

// Circuit returns the accumulated circuit.
func (t *Target) Circuit() *Circuit {
	return &t.c
}

// Export translates a whole composite graph, binding its input registers to
// qubit ids counted up from zero in signature order, and returns the target
// for chaining.
func Export(cb *bloqflow.CompositeBloq) (*Target, error) {
	bindings := make(map[string][]int)
	next := 0
	for _, reg := range cb.Signature().Lefts() {
		ids := make([]int, reg.TotalBits())
		for i := range ids {
			ids[i] = next
			next++
		}
		bindings[reg.Name] = ids
	}
	t := NewTarget(next)
	if _, err := cb.ToCircuit(t, bindings); err != nil {
		return nil, err
	}
	return t, nil
}

// ExportBloq appends one bloq's native gate to the circuit and reports the
// qubits carrying each output register.
func (t *Target) ExportBloq(b bloqflow.Bloq, qubits map[string][]int) (map[string][]int, error) {
	switch v := b.(type) {
	case bloqflow.Split:
		return map[string][]int{"split": qubits["split"]}, nil
	case bloqflow.Join:
		return map[string][]int{"join": qubits["join"]}, nil
	case bloqflow.Allocate:
		return map[string][]int{"alloc": t.alloc(v.N)}, nil
	case bloqflow.Free:
		t.release(qubits["free"])
		return map[string][]int{}, nil

	case basic.XGate:
		t.c.Append("x", qubits["q"][0])
		return passThrough(b, qubits), nil
	case basic.TGate:
		gate := "t"
		if v.IsAdjoint {
			gate = "tdg"
		}
		t.c.Append(gate, qubits["q"][0])
		return passThrough(b, qubits), nil
	case basic.ZPow:
		t.c.Append(fmt.Sprintf("rz(%g*pi)", v.Exponent), qubits["q"][0])
		return passThrough(b, qubits), nil
	case basic.CNOT:
		t.c.Append("cx", qubits["ctrl"][0], qubits["target"][0])
		return passThrough(b, qubits), nil
	case basic.Toffoli:
		t.c.Append("ccx", qubits["ctrl"][0], qubits["ctrl"][1], qubits["target"][0])
		return passThrough(b, qubits), nil
	case basic.Swap:
		t.c.Append("swap", qubits["x"][0], qubits["y"][0])
		return passThrough(b, qubits), nil
	}

	// No native gate: recurse through the decomposition with the same
	// bindings.
	if bloqflow.SupportsDecompose(b) {
		cb, err := bloqflow.DecomposeBloq(b)
		if err != nil {
			return nil, err
		}
		return cb.ToCircuit(t, qubits)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedGate, b)
}

// passThrough binds every output register to the qubits of the same-named
// input, the identity wiring of a thru-only gate.
func passThrough(b bloqflow.Bloq, qubits map[string][]int) map[string][]int {
	out := make(map[string][]int)
	for _, reg := range b.Signature().Rights() {
		out[reg.Name] = qubits[reg.Name]
	}
	return out
}

func (t *Target) alloc(n int) []int {
	ids := make([]int, 0, n)
	for len(ids) < n && len(t.freeList) > 0 {
		ids = append(ids, t.freeList[0])
		t.freeList = t.freeList[1:]
	}
	for len(ids) < n {
		ids = append(ids, t.nextID)
		t.nextID++
	}
	return ids
}

func (t *Target) release(ids []int) {
	t.freeList = append(t.freeList, ids...)
}

var _ bloqflow.Exporter = (*Target)(nil)
