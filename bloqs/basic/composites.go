package basic

import (
	"fmt"

	"github.com/bloq-labs/bloqflow"
	"github.com/bloq-labs/bloqflow/gatecount"
)

// Swap exchanges two wires via the three-CNOT identity.
type Swap struct{}

func (Swap) Signature() bloqflow.Signature {
	return bloqflow.MustSignature(
		bloqflow.Reg("x", 1),
		bloqflow.Reg("y", 1),
	)
}

func (Swap) String() string { return "Swap" }

func (g Swap) Adjoint() bloqflow.Bloq { return g }

func (g Swap) Decompose() (*bloqflow.CompositeBloq, error) {
	bb, initial := bloqflow.FromSignature(g.Signature())
	x, y := initial.One("x"), initial.One("y")

	for i := 0; i < 3; i++ {
		ctrl, target := x, y
		if i == 1 {
			ctrl, target = y, x
		}
		outs, err := bb.Add(CNOT{}, bloqflow.Soqs{"ctrl": {ctrl}, "target": {target}})
		if err != nil {
			return nil, err
		}
		if i == 1 {
			y, x = outs.One("ctrl"), outs.One("target")
		} else {
			x, y = outs.One("ctrl"), outs.One("target")
		}
	}
	return bb.Finalize(bloqflow.Soqs{"x": {x}, "y": {y}})
}

func (Swap) CallGraph() []gatecount.BloqCount {
	return []gatecount.BloqCount{
		{Bloq: CNOT{}, Count: 3},
	}
}

// HammingWeightPhase phases an n-bit register by its Hamming weight: each
// wire picks up a Z**Exponent rotation, so the accumulated phase is
// proportional to the number of set bits.
type HammingWeightPhase struct {
	N        int
	Exponent float64
}

func (g HammingWeightPhase) Signature() bloqflow.Signature {
	return bloqflow.MustSignature(bloqflow.Reg("x", g.N))
}

func (g HammingWeightPhase) String() string {
	return fmt.Sprintf("HammingWeightPhase(n=%d)", g.N)
}

func (g HammingWeightPhase) Adjoint() bloqflow.Bloq {
	return HammingWeightPhase{N: g.N, Exponent: -g.Exponent}
}

func (g HammingWeightPhase) Decompose() (*bloqflow.CompositeBloq, error) {
	bb, initial := bloqflow.FromSignature(g.Signature())
	wires, err := bb.Split(initial.One("x"))
	if err != nil {
		return nil, err
	}
	for i := range wires {
		outs, err := bb.Add(ZPow{Exponent: g.Exponent}, bloqflow.Soqs{"q": {wires[i]}})
		if err != nil {
			return nil, err
		}
		wires[i] = outs.One("q")
	}
	fused, err := bb.Join(wires)
	if err != nil {
		return nil, err
	}
	return bb.Finalize(bloqflow.Soqs{"x": {fused}})
}

func (g HammingWeightPhase) CallGraph() []gatecount.BloqCount {
	return []gatecount.BloqCount{
		{Bloq: bloqflow.Split{N: g.N}, Count: 1},
		{Bloq: ZPow{Exponent: g.Exponent}, Count: int64(g.N)},
		{Bloq: bloqflow.Join{N: g.N}, Count: 1},
	}
}

// Ensure interface compliance at compile time.
var (
	_ bloqflow.Decomposable   = Swap{}
	_ gatecount.CallGraphBloq = Swap{}
	_ bloqflow.Decomposable   = HammingWeightPhase{}
	_ gatecount.CallGraphBloq = HammingWeightPhase{}
)
