package circuit

import (
	"errors"
	"strings"
	"testing"

	"github.com/bloq-labs/bloqflow"
	"github.com/bloq-labs/bloqflow/bloqs/basic"
)

func TestCircuit_MomentPacking(t *testing.T) {
	var c Circuit
	if m := c.Append("x", 0); m != 0 {
		t.Errorf("first op moment = %d, want 0", m)
	}
	// Disjoint qubits share the moment.
	if m := c.Append("x", 1); m != 0 {
		t.Errorf("parallel op moment = %d, want 0", m)
	}
	// A two-qubit gate waits for both lines.
	if m := c.Append("cx", 0, 1); m != 1 {
		t.Errorf("cx moment = %d, want 1", m)
	}
	if c.Depth() != 2 || c.NumQubits() != 2 {
		t.Errorf("Depth()/NumQubits() = %d/%d, want 2/2", c.Depth(), c.NumQubits())
	}
}

func TestCircuit_Diagram(t *testing.T) {
	var c Circuit
	c.Append("x", 0)
	c.Append("cx", 0, 1)

	want := `q0: -X--*--
q1: ----CX-`
	if got := c.Diagram(); got != want {
		t.Errorf("Diagram() =\n%s\nwant:\n%s", got, want)
	}
}

func TestCircuit_ToQASM(t *testing.T) {
	var c Circuit
	c.Append("t", 0)
	c.Append("rz(0.5*pi)", 1)
	c.Append("cx", 0, 1)

	qasm := c.ToQASM()
	for _, line := range []string{
		"OPENQASM 2.0;",
		"qreg q[2];",
		"t q[0];",
		"rz(0.5*pi) q[1];",
		"cx q[0], q[1];",
	} {
		if !strings.Contains(qasm, line) {
			t.Errorf("ToQASM() missing %q:\n%s", line, qasm)
		}
	}
}

func decompose(t *testing.T, b bloqflow.Bloq) *bloqflow.CompositeBloq {
	t.Helper()
	cb, err := bloqflow.DecomposeBloq(b)
	if err != nil {
		t.Fatalf("DecomposeBloq(%s) error = %v", b, err)
	}
	return cb
}

func TestExport_Swap(t *testing.T) {
	target, err := Export(decompose(t, basic.Swap{}))
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	ops := target.Circuit().Ops()
	if len(ops) != 3 {
		t.Fatalf("len(Ops()) = %d, want 3", len(ops))
	}
	wantQubits := [][]int{{0, 1}, {1, 0}, {0, 1}}
	for i, op := range ops {
		if op.Gate != "cx" || op.Moment != i {
			t.Errorf("op %d = %v, want serialized cx", i, op)
		}
		if op.Qubits[0] != wantQubits[i][0] || op.Qubits[1] != wantQubits[i][1] {
			t.Errorf("op %d qubits = %v, want %v", i, op.Qubits, wantQubits[i])
		}
	}
}

func TestExport_HammingWeightPhase(t *testing.T) {
	target, err := Export(decompose(t, basic.HammingWeightPhase{N: 3, Exponent: 0.5}))
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	ops := target.Circuit().Ops()
	if len(ops) != 3 {
		t.Fatalf("len(Ops()) = %d, want 3 rotations", len(ops))
	}
	for _, op := range ops {
		if op.Gate != "rz(0.5*pi)" {
			t.Errorf("op = %v, want rz(0.5*pi)", op)
		}
		// Split keeps the wires independent: every rotation fits moment 0.
		if op.Moment != 0 {
			t.Errorf("op %v not packed into moment 0", op)
		}
	}
}

func TestExport_RecursesThroughComposites(t *testing.T) {
	// A graph holding an unexpanded Swap instance: the target has no native
	// swap-of-registers translation path other than recursing into it.
	bb := bloqflow.NewBuilder()
	x, err := bb.AddRegister("x", 1)
	if err != nil {
		t.Fatalf("AddRegister() error = %v", err)
	}
	y, err := bb.AddRegister("y", 1)
	if err != nil {
		t.Fatalf("AddRegister() error = %v", err)
	}
	outs, err := bb.Add(nestedSwap{}, bloqflow.Soqs{"x": {x}, "y": {y}})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	cb, err := bb.Finalize(bloqflow.Soqs{"x": {outs.One("x")}, "y": {outs.One("y")}})
	if err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	target, err := Export(cb)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	ops := target.Circuit().Ops()
	if len(ops) != 3 {
		t.Errorf("len(Ops()) = %d, want the three spliced CNOTs", len(ops))
	}
}

func TestExport_AllocatesAncilla(t *testing.T) {
	bb := bloqflow.NewBuilder()
	q, err := bb.AddRegister("q", 1)
	if err != nil {
		t.Fatalf("AddRegister() error = %v", err)
	}
	anc, err := bb.Allocate(1)
	if err != nil {
		t.Fatalf("Allocate() error = %v", err)
	}
	outs, err := bb.Add(basic.CNOT{}, bloqflow.Soqs{"ctrl": {q}, "target": {anc}})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := bb.Free(outs.One("target")); err != nil {
		t.Fatalf("Free() error = %v", err)
	}
	cb, err := bb.Finalize(bloqflow.Soqs{"q": {outs.One("ctrl")}})
	if err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	target, err := Export(cb)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	ops := target.Circuit().Ops()
	if len(ops) != 1 || ops[0].Gate != "cx" {
		t.Fatalf("Ops() = %v, want one cx", ops)
	}
	// The ancilla line is allocated after the bound input register.
	if ops[0].Qubits[0] != 0 || ops[0].Qubits[1] != 1 {
		t.Errorf("cx qubits = %v, want [0 1]", ops[0].Qubits)
	}
}

func TestTarget_AncillaReuse(t *testing.T) {
	target := NewTarget(0)
	first := target.alloc(2)
	if first[0] != 0 || first[1] != 1 {
		t.Fatalf("alloc(2) = %v, want [0 1]", first)
	}
	target.release(first[:1])
	second := target.alloc(2)
	// The freed id comes back before a fresh one is minted.
	if second[0] != 0 || second[1] != 2 {
		t.Errorf("alloc(2) after release = %v, want [0 2]", second)
	}
}

func TestExport_UnsupportedGate(t *testing.T) {
	bb := bloqflow.NewBuilder()
	q, err := bb.AddRegister("q", 1)
	if err != nil {
		t.Fatalf("AddRegister() error = %v", err)
	}
	outs, err := bb.Add(mystery{}, bloqflow.Soqs{"q": {q}})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	cb, err := bb.Finalize(bloqflow.Soqs{"q": {outs.One("q")}})
	if err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	_, err = Export(cb)
	if !errors.Is(err, ErrUnsupportedGate) {
		t.Errorf("Export() error = %v, want ErrUnsupportedGate", err)
	}
}

// nestedSwap defers entirely to Swap's decomposition.
type nestedSwap struct{}

func (nestedSwap) Signature() bloqflow.Signature {
	return basic.Swap{}.Signature()
}

func (nestedSwap) String() string { return "NestedSwap" }

func (nestedSwap) Decompose() (*bloqflow.CompositeBloq, error) {
	return basic.Swap{}.Decompose()
}

// mystery has no gate translation and no decomposition.
type mystery struct{}

func (mystery) Signature() bloqflow.Signature {
	return bloqflow.MustSignature(bloqflow.Reg("q", 1))
}

func (mystery) String() string { return "Mystery" }
