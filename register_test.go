package bloqflow

import (
	"errors"
	"testing"
)

func TestRegister_NumWires(t *testing.T) {
	tests := []struct {
		name string
		reg  Register
		want int
	}{
		{"unshaped", Reg("q", 4), 1},
		{"vector", Register{Name: "q", Bitsize: 1, Shape: []int{5}, Side: SideThru}, 5},
		{"matrix", Register{Name: "q", Bitsize: 2, Shape: []int{2, 3}, Side: SideThru}, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.reg.NumWires(); got != tt.want {
				t.Errorf("NumWires() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRegister_TotalBits(t *testing.T) {
	reg := Register{Name: "q", Bitsize: 2, Shape: []int{2, 3}, Side: SideThru}
	if got := reg.TotalBits(); got != 12 {
		t.Errorf("TotalBits() = %d, want 12", got)
	}
}

func TestRegister_WireIndices(t *testing.T) {
	reg := Register{Name: "q", Bitsize: 1, Shape: []int{2, 3}, Side: SideThru}
	idxs := reg.wireIndices()
	if len(idxs) != 6 {
		t.Fatalf("len(wireIndices()) = %d, want 6", len(idxs))
	}
	// Row-major order.
	want := [][]int{{0, 0}, {0, 1}, {0, 2}, {1, 0}, {1, 1}, {1, 2}}
	for i := range want {
		if len(idxs[i]) != 2 || idxs[i][0] != want[i][0] || idxs[i][1] != want[i][1] {
			t.Errorf("wireIndices()[%d] = %v, want %v", i, idxs[i], want[i])
		}
	}
}

func TestNewSignature_PreservesOrder(t *testing.T) {
	sig := MustSignature(Reg("q1", 1), Reg("q2", 2), Reg("q3", 3))
	regs := sig.Registers()
	if len(regs) != 3 {
		t.Fatalf("len(Registers()) = %d, want 3", len(regs))
	}
	for i, name := range []string{"q1", "q2", "q3"} {
		if regs[i].Name != name {
			t.Errorf("Registers()[%d].Name = %q, want %q", i, regs[i].Name, name)
		}
	}
}

func TestNewSignature_DuplicateName(t *testing.T) {
	_, err := NewSignature(Reg("q", 1), Reg("q", 2))
	if !errors.Is(err, ErrDuplicateRegister) {
		t.Errorf("NewSignature() error = %v, want ErrDuplicateRegister", err)
	}
}

func TestNewSignature_SplitNameAllowed(t *testing.T) {
	// Same name on opposite boundaries is legal: this is how Split declares
	// its ports.
	sig, err := NewSignature(
		Register{Name: "reg", Bitsize: 3, Side: SideLeft},
		Register{Name: "reg", Bitsize: 1, Shape: []int{3}, Side: SideRight},
	)
	if err != nil {
		t.Fatalf("NewSignature() error = %v", err)
	}
	if len(sig.Lefts()) != 1 || len(sig.Rights()) != 1 {
		t.Errorf("Lefts()/Rights() = %d/%d, want 1/1", len(sig.Lefts()), len(sig.Rights()))
	}
}

func TestNewSignature_ThruConflictsWithLeft(t *testing.T) {
	_, err := NewSignature(
		Reg("q", 1),
		Register{Name: "q", Bitsize: 1, Side: SideLeft},
	)
	if !errors.Is(err, ErrDuplicateRegister) {
		t.Errorf("NewSignature() error = %v, want ErrDuplicateRegister", err)
	}
}

func TestSignature_LeftsRights(t *testing.T) {
	sig := MustSignature(
		Register{Name: "in", Bitsize: 2, Side: SideLeft},
		Reg("thru", 1),
		Register{Name: "out", Bitsize: 2, Side: SideRight},
	)
	lefts := sig.Lefts()
	if len(lefts) != 2 || lefts[0].Name != "in" || lefts[1].Name != "thru" {
		t.Errorf("Lefts() = %v", lefts)
	}
	rights := sig.Rights()
	if len(rights) != 2 || rights[0].Name != "thru" || rights[1].Name != "out" {
		t.Errorf("Rights() = %v", rights)
	}
}

func TestSignature_Get(t *testing.T) {
	sig := MustSignature(Reg("q1", 1), Reg("q2", 2))

	reg, err := sig.Get("q2")
	if err != nil {
		t.Fatalf("Get(q2) error = %v", err)
	}
	if reg.Bitsize != 2 {
		t.Errorf("Get(q2).Bitsize = %d, want 2", reg.Bitsize)
	}

	_, err = sig.Get("missing")
	if !errors.Is(err, ErrRegisterNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrRegisterNotFound", err)
	}
}

func TestSignature_GetLeftGetRight(t *testing.T) {
	sig := MustSignature(
		Register{Name: "reg", Bitsize: 3, Side: SideLeft},
		Register{Name: "reg", Bitsize: 1, Shape: []int{3}, Side: SideRight},
	)
	left, err := sig.GetLeft("reg")
	if err != nil {
		t.Fatalf("GetLeft() error = %v", err)
	}
	if left.Bitsize != 3 {
		t.Errorf("GetLeft().Bitsize = %d, want 3", left.Bitsize)
	}
	right, err := sig.GetRight("reg")
	if err != nil {
		t.Fatalf("GetRight() error = %v", err)
	}
	if right.Bitsize != 1 || len(right.Shape) != 1 {
		t.Errorf("GetRight() = %+v, want unit-width shaped register", right)
	}

	_, err = sig.GetRight("other")
	if !errors.Is(err, ErrRegisterNotFound) {
		t.Errorf("GetRight(other) error = %v, want ErrRegisterNotFound", err)
	}
}

func TestSignature_Equals(t *testing.T) {
	a := MustSignature(Reg("q1", 1), Reg("q2", 2))
	b := MustSignature(Reg("q1", 1), Reg("q2", 2))
	c := MustSignature(Reg("q2", 2), Reg("q1", 1))

	if !a.Equals(b) {
		t.Error("identical signatures should be equal")
	}
	if a.Equals(c) {
		t.Error("order matters: reordered signature should not be equal")
	}
}

func TestNewSignature_RejectsBadShape(t *testing.T) {
	for _, shape := range [][]int{{0}, {2, 0}, {-1}} {
		reg := Register{Name: "t", Bitsize: 1, Shape: shape, Side: SideThru}
		if _, err := NewSignature(reg); err == nil {
			t.Errorf("NewSignature() accepted shape %v", shape)
		}
	}
}
