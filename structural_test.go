package bloqflow

import (
	"errors"
	"testing"
)

func TestSplit_Signature(t *testing.T) {
	sig := Split{N: 5}.Signature()
	left, err := sig.GetLeft("split")
	if err != nil {
		t.Fatalf("GetLeft() error = %v", err)
	}
	if left.Bitsize != 5 || len(left.Shape) != 0 {
		t.Errorf("left port = %+v, want unshaped 5-bit register", left)
	}
	right, err := sig.GetRight("split")
	if err != nil {
		t.Fatalf("GetRight() error = %v", err)
	}
	if right.Bitsize != 1 || right.NumWires() != 5 {
		t.Errorf("right port = %+v, want five unit wires", right)
	}
}

func TestStructural_AdjointPairs(t *testing.T) {
	tests := []struct {
		bloq Adjointable
		want Bloq
	}{
		{Split{N: 4}, Join{N: 4}},
		{Join{N: 4}, Split{N: 4}},
		{Allocate{N: 7}, Free{N: 7}},
		{Free{N: 7}, Allocate{N: 7}},
	}
	for _, tt := range tests {
		if got := tt.bloq.Adjoint(); got != tt.want {
			t.Errorf("%v.Adjoint() = %v, want %v", tt.bloq, got, tt.want)
		}
	}
}

func TestBuilder_SplitRejectsUnitWire(t *testing.T) {
	bb := NewBuilder()
	q, err := bb.AddRegister("q", 1)
	if err != nil {
		t.Fatalf("AddRegister() error = %v", err)
	}
	_, err = bb.Split(q)
	if !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("Split() error = %v, want ErrShapeMismatch", err)
	}
}

func TestBuilder_JoinRejectsEmpty(t *testing.T) {
	bb := NewBuilder()
	_, err := bb.Join(nil)
	if !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("Join(nil) error = %v, want ErrShapeMismatch", err)
	}
}

func TestBuilder_JoinRejectsWideWires(t *testing.T) {
	bb := NewBuilder()
	q, err := bb.AddRegister("q", 2)
	if err != nil {
		t.Fatalf("AddRegister() error = %v", err)
	}
	_, err = bb.Join([]Soquet{q})
	if !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("Join() error = %v, want ErrShapeMismatch", err)
	}
}

func TestBuilder_SplitJoinRoundTrip(t *testing.T) {
	bb := NewBuilder()
	reg, err := bb.AddRegister("reg", 3)
	if err != nil {
		t.Fatalf("AddRegister() error = %v", err)
	}
	wires, err := bb.Split(reg)
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	if len(wires) != 3 {
		t.Fatalf("len(Split()) = %d, want 3", len(wires))
	}
	joined, err := bb.Join(wires)
	if err != nil {
		t.Fatalf("Join() error = %v", err)
	}
	if joined.Reg.Bitsize != 3 {
		t.Errorf("joined bitsize = %d, want 3", joined.Reg.Bitsize)
	}
	cbloq, err := bb.Finalize(Soqs{"reg": {joined}})
	if err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	if err := Validate(cbloq); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestBuilder_AllocSplitJoinFree(t *testing.T) {
	// The canonical ancilla lifecycle: one 10-bit allocation split into unit
	// wires and re-fused before release. One connection for the allocation,
	// ten through the split/join middle, one for the free: twelve total.
	bb := NewBuilder()
	anc, err := bb.Allocate(10)
	if err != nil {
		t.Fatalf("Allocate() error = %v", err)
	}
	wires, err := bb.Split(anc)
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	fused, err := bb.Join(wires)
	if err != nil {
		t.Fatalf("Join() error = %v", err)
	}
	if err := bb.Free(fused); err != nil {
		t.Fatalf("Free() error = %v", err)
	}
	cbloq, err := bb.Finalize(nil)
	if err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	if got := len(cbloq.Connections()); got != 12 {
		t.Errorf("len(Connections()) = %d, want 12", got)
	}
	if got := len(cbloq.Signature().Registers()); got != 0 {
		t.Errorf("len(Registers()) = %d, want 0 for a closed graph", got)
	}
	if err := Validate(cbloq); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestBuilder_FreeConsumesSoquet(t *testing.T) {
	bb := NewBuilder()
	anc, err := bb.Allocate(1)
	if err != nil {
		t.Fatalf("Allocate() error = %v", err)
	}
	if err := bb.Free(anc); err != nil {
		t.Fatalf("Free() error = %v", err)
	}
	if err := bb.Free(anc); !errors.Is(err, ErrUnavailableSoquet) {
		t.Errorf("second Free() error = %v, want ErrUnavailableSoquet", err)
	}
}
