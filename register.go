package bloqflow

import (
	"fmt"
	"strconv"
	"strings"
)

// Side declares which boundary of a bloq a register faces.
type Side string

const (
	// SideLeft registers are input-only: consumed by the bloq, never produced.
	SideLeft Side = "left"

	// SideRight registers are output-only: produced by the bloq.
	SideRight Side = "right"

	// SideThru registers appear on both boundaries under the same name.
	SideThru Side = "thru"
)

// IsLeft reports whether the side faces the input boundary.
func (s Side) IsLeft() bool {
	return s == SideLeft || s == SideThru
}

// IsRight reports whether the side faces the output boundary.
func (s Side) IsRight() bool {
	return s == SideRight || s == SideThru
}

// Register describes one named, typed wire port group on a bloq.
//
// A register with a Shape is a multi-dimensional array of parallel wires,
// flattened row-major wherever individual wires are addressed. Bitsize is the
// width of each wire in the group.
type Register struct {
	Name    string
	Bitsize int
	Shape   []int
	Side    Side
}

// Reg returns a through-register with the given name and bitsize.
func Reg(name string, bitsize int) Register {
	return Register{Name: name, Bitsize: bitsize, Side: SideThru}
}

// NumWires returns the number of individual wires in the register: the
// product of the shape dimensions, or 1 for an unshaped register.
func (r Register) NumWires() int {
	n := 1
	for _, d := range r.Shape {
		n *= d
	}
	return n
}

// TotalBits returns the total bit-width across all wires of the register.
func (r Register) TotalBits() int {
	return r.NumWires() * r.Bitsize
}

// Equals reports structural equality of two registers.
func (r Register) Equals(o Register) bool {
	if r.Name != o.Name || r.Bitsize != o.Bitsize || r.Side != o.Side {
		return false
	}
	if len(r.Shape) != len(o.Shape) {
		return false
	}
	for i := range r.Shape {
		if r.Shape[i] != o.Shape[i] {
			return false
		}
	}
	return true
}

// key returns a stable structural identity string for map use.
func (r Register) key() string {
	var sb strings.Builder
	sb.WriteString(r.Name)
	sb.WriteByte('/')
	sb.WriteString(strconv.Itoa(r.Bitsize))
	sb.WriteByte('/')
	sb.WriteString(string(r.Side))
	for _, d := range r.Shape {
		sb.WriteByte(',')
		sb.WriteString(strconv.Itoa(d))
	}
	return sb.String()
}

// wireIndices enumerates the index tuples of the register's shape in
// row-major order. An unshaped register yields a single nil index.
func (r Register) wireIndices() [][]int {
	if len(r.Shape) == 0 {
		return [][]int{nil}
	}
	out := make([][]int, 0, r.NumWires())
	idx := make([]int, len(r.Shape))
	for {
		out = append(out, append([]int(nil), idx...))
		d := len(idx) - 1
		for d >= 0 {
			idx[d]++
			if idx[d] < r.Shape[d] {
				break
			}
			idx[d] = 0
			d--
		}
		if d < 0 {
			return out
		}
	}
}

// Signature is the ordered sequence of registers declared by one bloq.
// Register order is significant for positional export but not for named
// lookup. A name may appear at most once per boundary: two registers may
// share a name only if one is left-only and the other right-only.
type Signature struct {
	regs []Register
}

// NewSignature builds a signature from the given registers, preserving order.
// It returns ErrDuplicateRegister when a name appears twice on one boundary.
func NewSignature(regs ...Register) (Signature, error) {
	seenLeft := make(map[string]bool)
	seenRight := make(map[string]bool)
	for _, r := range regs {
		if r.Bitsize < 1 {
			return Signature{}, fmt.Errorf("register `%s` has non-positive bitsize %d", r.Name, r.Bitsize)
		}
		for _, d := range r.Shape {
			if d < 1 {
				return Signature{}, fmt.Errorf("register `%s` has non-positive shape dimension %d", r.Name, d)
			}
		}
		if r.Side.IsLeft() {
			if seenLeft[r.Name] {
				return Signature{}, fmt.Errorf("%w: `%s` appears twice on the left boundary", ErrDuplicateRegister, r.Name)
			}
			seenLeft[r.Name] = true
		}
		if r.Side.IsRight() {
			if seenRight[r.Name] {
				return Signature{}, fmt.Errorf("%w: `%s` appears twice on the right boundary", ErrDuplicateRegister, r.Name)
			}
			seenRight[r.Name] = true
		}
	}
	return Signature{regs: append([]Register(nil), regs...)}, nil
}

// MustSignature is like NewSignature but panics on error. Intended for
// signatures built from compile-time constants.
func MustSignature(regs ...Register) Signature {
	sig, err := NewSignature(regs...)
	if err != nil {
		panic(err)
	}
	return sig
}

// Registers returns the registers in declaration order.
func (s Signature) Registers() []Register {
	return append([]Register(nil), s.regs...)
}

// Len returns the number of registers.
func (s Signature) Len() int {
	return len(s.regs)
}

// Lefts returns the input-capable registers in declaration order.
func (s Signature) Lefts() []Register {
	var out []Register
	for _, r := range s.regs {
		if r.Side.IsLeft() {
			out = append(out, r)
		}
	}
	return out
}

// Rights returns the output-capable registers in declaration order.
func (s Signature) Rights() []Register {
	var out []Register
	for _, r := range s.regs {
		if r.Side.IsRight() {
			out = append(out, r)
		}
	}
	return out
}

// Get looks up a register by name. When the name appears on both boundaries
// as split registers, the first declared wins; use GetLeft or GetRight for a
// boundary-specific lookup.
func (s Signature) Get(name string) (Register, error) {
	for _, r := range s.regs {
		if r.Name == name {
			return r, nil
		}
	}
	return Register{}, fmt.Errorf("%w: `%s`", ErrRegisterNotFound, name)
}

// GetLeft looks up an input-capable register by name.
func (s Signature) GetLeft(name string) (Register, error) {
	for _, r := range s.regs {
		if r.Name == name && r.Side.IsLeft() {
			return r, nil
		}
	}
	return Register{}, fmt.Errorf("%w: `%s` on the left boundary", ErrRegisterNotFound, name)
}

// GetRight looks up an output-capable register by name.
func (s Signature) GetRight(name string) (Register, error) {
	for _, r := range s.regs {
		if r.Name == name && r.Side.IsRight() {
			return r, nil
		}
	}
	return Register{}, fmt.Errorf("%w: `%s` on the right boundary", ErrRegisterNotFound, name)
}

// Equals reports whether two signatures declare the same registers in the
// same order.
func (s Signature) Equals(o Signature) bool {
	if len(s.regs) != len(o.regs) {
		return false
	}
	for i := range s.regs {
		if !s.regs[i].Equals(o.regs[i]) {
			return false
		}
	}
	return true
}
