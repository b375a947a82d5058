// Package gatecount estimates the gate-level resource cost of a bloq by
// walking its decomposition hierarchy. Leaf costs come from the Costed
// capability, declarative multiplicities from CallGraphBloq, and everything
// else from decomposing and summing over instances. Results are memoized per
// Counter.
package gatecount

import "fmt"

// Complexity is a coarse gate-cost vector: T gates, Clifford gates and
// arbitrary-angle rotations are the three buckets fault-tolerant estimates
// care about.
type Complexity struct {
	T         int64
	Clifford  int64
	Rotations int64
}

// Add returns the element-wise sum.
func (c Complexity) Add(o Complexity) Complexity {
	return Complexity{
		T:         c.T + o.T,
		Clifford:  c.Clifford + o.Clifford,
		Rotations: c.Rotations + o.Rotations,
	}
}

// Mul returns the cost scaled by a call count.
func (c Complexity) Mul(k int64) Complexity {
	return Complexity{
		T:         c.T * k,
		Clifford:  c.Clifford * k,
		Rotations: c.Rotations * k,
	}
}

// IsZero reports whether all buckets are empty.
func (c Complexity) IsZero() bool {
	return c == Complexity{}
}

func (c Complexity) String() string {
	return fmt.Sprintf("T: %d, Clifford: %d, Rotations: %d", c.T, c.Clifford, c.Rotations)
}
