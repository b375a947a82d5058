// Package circuit is the concrete export target for composite graphs: a
// moment-scheduled gate list over integer qubit ids. Gates are packed ASAP:
// each appended op lands in the earliest moment after the last op touching
// any of its qubits. The package renders to an ASCII diagram and to OpenQASM
// 2.0.
package circuit

import "fmt"

// Op is one placed gate: a QASM-style lowercase name, the qubits it acts on
// (controls first, target last), and its moment in the timeline.
type Op struct {
	Gate   string
	Qubits []int
	Moment int
}

func (o Op) String() string {
	return fmt.Sprintf("%s %v @%d", o.Gate, o.Qubits, o.Moment)
}

// Circuit accumulates ops. The zero value is ready to use.
type Circuit struct {
	ops       []Op
	numQubits int
	frontier  map[int]int // per qubit: first free moment
}

// Append schedules one gate on the given qubits in the earliest moment where
// all of them are free, and returns that moment.
func (c *Circuit) Append(gate string, qubits ...int) int {
	if c.frontier == nil {
		c.frontier = make(map[int]int)
	}
	moment := 0
	for _, q := range qubits {
		if c.frontier[q] > moment {
			moment = c.frontier[q]
		}
		if q+1 > c.numQubits {
			c.numQubits = q + 1
		}
	}
	for _, q := range qubits {
		c.frontier[q] = moment + 1
	}
	c.ops = append(c.ops, Op{Gate: gate, Qubits: append([]int(nil), qubits...), Moment: moment})
	return moment
}

// Ops returns the placed gates in append order. The slice is a copy.
func (c *Circuit) Ops() []Op {
	return append([]Op(nil), c.ops...)
}

// NumQubits returns the number of qubit lines, the highest touched id plus
// one.
func (c *Circuit) NumQubits() int {
	return c.numQubits
}

// Depth returns the number of moments.
func (c *Circuit) Depth() int {
	depth := 0
	for _, op := range c.ops {
		if op.Moment+1 > depth {
			depth = op.Moment + 1
		}
	}
	return depth
}
