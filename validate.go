package bloqflow

import "fmt"

// Validation suite: pure structural checks over a CompositeBloq. The Builder
// enforces all of these eagerly, so the suite exists for graphs assembled by
// hand (tests, deserialization) and as defense in depth. Re-running any
// check on a valid graph never raises.

// CheckRegistersMatchParent verifies that a bloq's decomposition declares
// exactly the bloq's own signature, order included.
func CheckRegistersMatchParent(b Bloq) error {
	cb, err := DecomposeBloq(b)
	if err != nil {
		return err
	}
	if !cb.Signature().Equals(b.Signature()) {
		return fmt.Errorf("%w: parent registers of %s do not match its decomposition", ErrSignatureMismatch, b)
	}
	return nil
}

// CheckRegistersMatchDangling verifies that the boundary soquets appearing
// in connections are exactly those implied by the graph's declared
// signature: no missing ports, no undeclared ones.
func CheckRegistersMatchDangling(c *CompositeBloq) error {
	for _, right := range []bool{false, true} {
		want := make(map[string]Soquet)
		for _, soqs := range danglingSoquets(c.Signature(), right) {
			for _, soq := range soqs {
				want[soq.Key()] = soq
			}
		}

		got := make(map[string]Soquet)
		for _, cxn := range c.Connections() {
			var soq Soquet
			if right {
				soq = cxn.Right
			} else {
				soq = cxn.Left
			}
			d, ok := soq.Binst.(Dangling)
			if !ok {
				continue
			}
			// A dangle on the wrong end of a connection is caught by
			// CheckConnectionsCompatible.
			if (!right && d != LeftDangle) || (right && d != RightDangle) {
				continue
			}
			got[soq.Key()] = soq
		}

		for key, soq := range got {
			if _, ok := want[key]; !ok {
				return fmt.Errorf("%w: %s does not match the registers of the bloq", ErrSignatureMismatch, soq)
			}
		}
		for key, soq := range want {
			if _, ok := got[key]; !ok {
				return fmt.Errorf("%w: declared port %s never appears in a connection", ErrSignatureMismatch, soq)
			}
		}
	}
	return nil
}

// CheckConnectionsCompatible verifies that both endpoints of every
// connection carry equal bit-widths and face compatible directions: the left
// endpoint must be output-capable on its node, the right input-capable.
func CheckConnectionsCompatible(c *CompositeBloq) error {
	for _, cxn := range c.Connections() {
		if cxn.Left.Reg.Bitsize != cxn.Right.Reg.Bitsize {
			return fmt.Errorf("%w: bitsizes are incompatible for %s", ErrShapeMismatch, cxn)
		}
		if !producerCapable(cxn.Left) {
			return fmt.Errorf("%w: %s cannot produce a wire", ErrShapeMismatch, cxn.Left)
		}
		if !consumerCapable(cxn.Right) {
			return fmt.Errorf("%w: %s cannot consume a wire", ErrShapeMismatch, cxn.Right)
		}
	}
	return nil
}

// producerCapable reports whether the soquet can sit on the left of a
// connection: an instance output, or a graph input port.
func producerCapable(s Soquet) bool {
	switch n := s.Binst.(type) {
	case Dangling:
		return n == LeftDangle && s.Reg.Side.IsLeft()
	case BloqInstance:
		return s.Reg.Side.IsRight()
	}
	return false
}

// consumerCapable reports whether the soquet can sit on the right of a
// connection: an instance input, or a graph output port.
func consumerCapable(s Soquet) bool {
	switch n := s.Binst.(type) {
	case Dangling:
		return n == RightDangle && s.Reg.Side.IsRight()
	case BloqInstance:
		return s.Reg.Side.IsLeft()
	}
	return false
}

// CheckSoquetsBelongToRegisters verifies that every endpoint's register
// actually exists on its owning node's signature, with shape indices in
// range.
func CheckSoquetsBelongToRegisters(c *CompositeBloq) error {
	check := func(s Soquet) error {
		var sig Signature
		switch n := s.Binst.(type) {
		case Dangling:
			sig = c.Signature()
		case BloqInstance:
			sig = n.Bloq.Signature()
		}
		found := false
		for _, reg := range sig.Registers() {
			if reg.Equals(s.Reg) {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%w: %s's register doesn't exist on its bloq", ErrMissingRegister, s)
		}
		if len(s.Idx) != len(s.Reg.Shape) {
			return fmt.Errorf("%w: %s has index rank %d for shape rank %d",
				ErrMissingRegister, s, len(s.Idx), len(s.Reg.Shape))
		}
		for d, v := range s.Idx {
			if v < 0 || v >= s.Reg.Shape[d] {
				return fmt.Errorf("%w: %s index out of range in dimension %d", ErrMissingRegister, s, d)
			}
		}
		return nil
	}

	for _, cxn := range c.Connections() {
		if err := check(cxn.Left); err != nil {
			return err
		}
		if err := check(cxn.Right); err != nil {
			return err
		}
	}
	return nil
}

// CheckSoquetsUsedExactlyOnce verifies linearity: every non-boundary soquet
// is produced by exactly one connection and consumed by exactly one
// connection. No wire is cloned, dropped, or double-fed.
func CheckSoquetsUsedExactlyOnce(c *CompositeBloq) error {
	produced := make(map[string]Soquet)
	consumed := make(map[string]Soquet)
	for _, cxn := range c.Connections() {
		key := cxn.Left.Key()
		if _, ok := produced[key]; ok {
			return fmt.Errorf("%w: %s had already been produced by a different bloq", ErrLinearityViolation, cxn.Left)
		}
		produced[key] = cxn.Left

		key = cxn.Right.Key()
		if _, ok := consumed[key]; ok {
			return fmt.Errorf("%w: %s had already been consumed by a different bloq", ErrLinearityViolation, cxn.Right)
		}
		consumed[key] = cxn.Right
	}

	// Completeness: every port of every instance must appear.
	for _, bi := range c.Instances() {
		sig := bi.Bloq.Signature()
		for _, reg := range sig.Rights() {
			for _, idx := range reg.wireIndices() {
				soq := Soquet{Binst: bi, Reg: reg, Idx: idx}
				if _, ok := produced[soq.Key()]; !ok {
					return fmt.Errorf("%w: %s is left dangling mid-graph", ErrLinearityViolation, soq)
				}
			}
		}
		for _, reg := range sig.Lefts() {
			for _, idx := range reg.wireIndices() {
				soq := Soquet{Binst: bi, Reg: reg, Idx: idx}
				if _, ok := consumed[soq.Key()]; !ok {
					return fmt.Errorf("%w: input %s is never fed by a connection", ErrLinearityViolation, soq)
				}
			}
		}
	}
	return nil
}

// Validate runs the full structural suite over a graph: boundary registers,
// connection compatibility, register membership, linearity, and the
// existence of a topological order.
func Validate(c *CompositeBloq) error {
	if err := CheckRegistersMatchDangling(c); err != nil {
		return err
	}
	if err := CheckConnectionsCompatible(c); err != nil {
		return err
	}
	if err := CheckSoquetsBelongToRegisters(c); err != nil {
		return err
	}
	if err := CheckSoquetsUsedExactlyOnce(c); err != nil {
		return err
	}
	if _, err := c.Generations(); err != nil {
		return err
	}
	return nil
}

// ValidateDecomposition decomposes b, checks the boundary against b's own
// signature, validates the resulting graph, and returns it.
func ValidateDecomposition(b Bloq) (*CompositeBloq, error) {
	if err := CheckRegistersMatchParent(b); err != nil {
		return nil, err
	}
	cb, err := DecomposeBloq(b)
	if err != nil {
		return nil, err
	}
	if err := Validate(cb); err != nil {
		return nil, err
	}
	return cb, nil
}
