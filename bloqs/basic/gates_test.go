package basic

import (
	"testing"

	"github.com/bloq-labs/bloqflow"
	"github.com/bloq-labs/bloqflow/gatecount"
)

func TestGate_Strings(t *testing.T) {
	tests := []struct {
		bloq bloqflow.Bloq
		want string
	}{
		{XGate{}, "X"},
		{TGate{}, "T"},
		{TGate{IsAdjoint: true}, "T†"},
		{ZPow{Exponent: 0.5}, "Z**0.5"},
		{CNOT{}, "CNOT"},
		{Toffoli{}, "Toffoli"},
		{Swap{}, "Swap"},
		{HammingWeightPhase{N: 4}, "HammingWeightPhase(n=4)"},
	}
	for _, tt := range tests {
		if got := tt.bloq.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestGate_Adjoints(t *testing.T) {
	if got := (TGate{}).Adjoint(); got != (TGate{IsAdjoint: true}) {
		t.Errorf("T.Adjoint() = %v", got)
	}
	if got := (TGate{IsAdjoint: true}).Adjoint(); got != (TGate{}) {
		t.Errorf("T†.Adjoint() = %v", got)
	}
	if got := (ZPow{Exponent: 0.25}).Adjoint(); got != (ZPow{Exponent: -0.25}) {
		t.Errorf("ZPow.Adjoint() = %v", got)
	}
	for _, g := range []bloqflow.Adjointable{XGate{}, CNOT{}, Toffoli{}, Swap{}} {
		if got := g.Adjoint(); got != g.(bloqflow.Bloq) {
			t.Errorf("%v.Adjoint() = %v, want self", g, got)
		}
	}
}

func TestGate_Costs(t *testing.T) {
	tests := []struct {
		bloq bloqflow.Bloq
		want gatecount.Complexity
	}{
		{XGate{}, gatecount.Complexity{Clifford: 1}},
		{TGate{}, gatecount.Complexity{T: 1}},
		{ZPow{Exponent: 0.1}, gatecount.Complexity{Rotations: 1}},
		{CNOT{}, gatecount.Complexity{Clifford: 1}},
		{Toffoli{}, gatecount.Complexity{T: 4}},
		{Swap{}, gatecount.Complexity{Clifford: 3}},
		{HammingWeightPhase{N: 5, Exponent: 0.5}, gatecount.Complexity{Rotations: 5}},
	}
	for _, tt := range tests {
		got, err := gatecount.Count(tt.bloq)
		if err != nil {
			t.Fatalf("Count(%s) error = %v", tt.bloq, err)
		}
		if got != tt.want {
			t.Errorf("Count(%s) = %v, want %v", tt.bloq, got, tt.want)
		}
	}
}

func TestSwap_Decomposition(t *testing.T) {
	cb, err := bloqflow.ValidateDecomposition(Swap{})
	if err != nil {
		t.Fatalf("ValidateDecomposition() error = %v", err)
	}
	instances := cb.Instances()
	if len(instances) != 3 {
		t.Fatalf("len(Instances()) = %d, want 3", len(instances))
	}
	for _, bi := range instances {
		if _, ok := bi.Bloq.(CNOT); !ok {
			t.Errorf("instance %v is not a CNOT", bi)
		}
	}
	// The middle CNOT is reversed.
	if instances[1].I != 1 {
		t.Errorf("instances out of order: %v", instances)
	}
}

func TestHammingWeightPhase_Decomposition(t *testing.T) {
	cb, err := bloqflow.ValidateDecomposition(HammingWeightPhase{N: 3, Exponent: 0.5})
	if err != nil {
		t.Fatalf("ValidateDecomposition() error = %v", err)
	}
	if got := len(cb.Instances()); got != 5 {
		t.Errorf("len(Instances()) = %d, want split + 3 rotations + join", got)
	}
}

// decomposedComplexity sums leaf costs over a bloq's decomposition,
// bypassing its declarative call graph.
func decomposedComplexity(t *testing.T, b bloqflow.Decomposable) gatecount.Complexity {
	t.Helper()
	cb, err := b.Decompose()
	if err != nil {
		t.Fatalf("Decompose() error = %v", err)
	}
	var total gatecount.Complexity
	for _, bi := range cb.Instances() {
		child, err := gatecount.Count(bi.Bloq)
		if err != nil {
			t.Fatalf("Count(%s) error = %v", bi.Bloq, err)
		}
		total = total.Add(child)
	}
	return total
}

func TestCallGraph_AgreesWithDecomposition(t *testing.T) {
	bloqs := []interface {
		bloqflow.Bloq
		bloqflow.Decomposable
		gatecount.CallGraphBloq
	}{
		Swap{},
		HammingWeightPhase{N: 4, Exponent: 0.25},
	}
	for _, b := range bloqs {
		declared, err := gatecount.Count(b)
		if err != nil {
			t.Fatalf("Count(%s) error = %v", b, err)
		}
		if got := decomposedComplexity(t, b); got != declared {
			t.Errorf("%s: declared cost %v, decomposition cost %v", b, declared, got)
		}
	}
}

func TestAdjoint_DecompositionValidates(t *testing.T) {
	cb, err := bloqflow.DecomposeBloq(Swap{})
	if err != nil {
		t.Fatalf("DecomposeBloq() error = %v", err)
	}
	if err := bloqflow.Validate(cb.Adjoint()); err != nil {
		t.Errorf("Validate(adjoint) error = %v", err)
	}
}
