package circuit

import (
	"fmt"
	"strings"
)

// Diagram renders the circuit as an ASCII grid: one row per qubit, one
// column per moment. Multi-qubit gates show their controls as filled dots
// and the gate label on the target (last) qubit.
func (c *Circuit) Diagram() string {
	depth := c.Depth()
	if depth == 0 || c.numQubits == 0 {
		return ""
	}

	cells := make([][]string, c.numQubits)
	widths := make([]int, depth)
	for q := range cells {
		cells[q] = make([]string, depth)
	}
	for _, op := range c.ops {
		label := strings.ToUpper(baseName(op.Gate))
		for i, q := range op.Qubits {
			text := label
			if len(op.Qubits) > 1 && i < len(op.Qubits)-1 {
				text = "*"
			}
			cells[q][op.Moment] = text
			if len(text) > widths[op.Moment] {
				widths[op.Moment] = len(text)
			}
		}
	}

	var sb strings.Builder
	for q := 0; q < c.numQubits; q++ {
		fmt.Fprintf(&sb, "q%d: ", q)
		for m := 0; m < depth; m++ {
			text := cells[q][m]
			pad := widths[m] - len(text)
			sb.WriteString("-")
			if text == "" {
				sb.WriteString(strings.Repeat("-", widths[m]))
			} else {
				sb.WriteString(text)
				sb.WriteString(strings.Repeat("-", pad))
			}
			sb.WriteString("-")
		}
		if q < c.numQubits-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// baseName strips a parameter suffix, e.g. "rz(0.5*pi)" -> "rz".
func baseName(gate string) string {
	if i := strings.IndexByte(gate, '('); i >= 0 {
		return gate[:i]
	}
	return gate
}

// ToQASM renders the circuit as OpenQASM 2.0, moment by moment. Gate names
// are emitted as-is, so exporters must use qelib identifiers.
func (c *Circuit) ToQASM() string {
	var sb strings.Builder
	sb.WriteString("OPENQASM 2.0;\n")
	sb.WriteString("include \"qelib1.inc\";\n\n")
	fmt.Fprintf(&sb, "qreg q[%d];\n\n", max(c.numQubits, 1))

	for moment := 0; moment < c.Depth(); moment++ {
		for _, op := range c.ops {
			if op.Moment != moment {
				continue
			}
			args := make([]string, len(op.Qubits))
			for i, q := range op.Qubits {
				args[i] = fmt.Sprintf("q[%d]", q)
			}
			fmt.Fprintf(&sb, "%s %s;\n", op.Gate, strings.Join(args, ", "))
		}
	}
	return sb.String()
}
