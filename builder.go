package bloqflow

import (
	"fmt"
	"sort"
)

// Builder assembles a CompositeBloq incrementally while enforcing the
// linear-wire discipline: every soquet it hands out is available until
// consumed exactly once, and every consumption is checked eagerly. Partial
// graphs are never exposed; Finalize produces the immutable result.
//
// A Builder is a sequential, single-writer object. Concurrent use of one
// Builder is undefined; finished CompositeBloq values are freely shared.
type Builder struct {
	i         int
	cxns      []Connection
	available *soqSet
	regs      []Register
	growth    bool
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithFixedSignature forbids register growth: AddRegister fails, and
// Finalize rejects extra outputs and dangling soquets instead of silently
// widening the output signature. Used when replaying a decomposition whose
// boundary is already declared.
func WithFixedSignature() BuilderOption {
	return func(b *Builder) { b.growth = false }
}

// WithRegisterGrowth re-enables register growth on a builder created via
// FromSignature.
func WithRegisterGrowth() BuilderOption {
	return func(b *Builder) { b.growth = true }
}

// NewBuilder returns an empty builder. Register growth is enabled: input
// ports are declared with AddRegister, and unconsumed soquets at Finalize
// become output ports automatically.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{available: newSoqSet(), growth: true}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// FromSignature returns a builder whose ports are pre-declared by sig,
// together with the initial left-dangling soquets per input register name.
// Register growth is disabled by default so a decomposition cannot
// accidentally widen its parent's boundary.
func FromSignature(sig Signature, opts ...BuilderOption) (*Builder, Soqs) {
	b := &Builder{available: newSoqSet(), regs: sig.Registers()}
	for _, opt := range opts {
		opt(b)
	}
	initial := danglingSoquets(sig, false)
	for _, name := range sortedNames(initial) {
		for _, soq := range initial[name] {
			b.available.add(soq)
		}
	}
	return b, initial
}

// signature returns the builder's current (possibly still growing) port
// declaration.
func (b *Builder) signature() Signature {
	return MustSignature(b.regs...)
}

// AddRegister declares a new external through-port of the given bitsize and
// returns its available left-dangling soquet. Fails with
// ErrDuplicateRegister on a name collision and with ErrUnexpectedArg when
// the builder's signature is fixed.
func (b *Builder) AddRegister(name string, bitsize int) (Soquet, error) {
	soqs, err := b.AddRegisterFromSpec(Reg(name, bitsize))
	if err != nil {
		return Soquet{}, err
	}
	return soqs[0], nil
}

// AddRegisterFromSpec declares a new external port with an explicit side and
// shape, returning the available left-dangling soquets (nil for a right-only
// register).
func (b *Builder) AddRegisterFromSpec(reg Register) ([]Soquet, error) {
	if !b.growth {
		return nil, fmt.Errorf("%w: cannot add register `%s` to a fixed-signature builder",
			ErrUnexpectedArg, reg.Name)
	}
	if _, err := NewSignature(append(append([]Register(nil), b.regs...), reg)...); err != nil {
		return nil, err
	}
	b.regs = append(b.regs, reg)

	if !reg.Side.IsLeft() {
		return nil, nil
	}
	var out []Soquet
	for _, idx := range reg.wireIndices() {
		soq := Soquet{Binst: LeftDangle, Reg: reg, Idx: idx}
		b.available.add(soq)
		out = append(out, soq)
	}
	return out, nil
}

// Add applies one bloq to the given input soquets. Each input register of
// the bloq consumes exactly one available soquet per wire; fresh output
// soquets are returned keyed by the bloq's output register names.
//
// Validation is complete before any state changes: a failed Add leaves the
// builder untouched.
func (b *Builder) Add(bloq Bloq, ins Soqs) (Soqs, error) {
	sig := bloq.Signature()
	binst := BloqInstance{Bloq: bloq, I: b.i}

	newCxns, consumed, err := b.checkInputs(bloq.String(), sig.Lefts(), ins,
		func(reg Register, idx []int) Soquet {
			return Soquet{Binst: binst, Reg: reg, Idx: idx}
		})
	if err != nil {
		return nil, err
	}

	// Commit.
	b.i++
	for _, soq := range consumed {
		b.available.remove(soq)
	}
	b.cxns = append(b.cxns, newCxns...)

	outs := make(Soqs)
	for _, reg := range sig.Rights() {
		for _, idx := range reg.wireIndices() {
			soq := Soquet{Binst: binst, Reg: reg, Idx: idx}
			b.available.add(soq)
			outs[reg.Name] = append(outs[reg.Name], soq)
		}
	}
	return outs, nil
}

// checkInputs validates a set of caller-supplied soquets against the given
// registers without mutating builder state. It returns the connections to
// record and the soquets to mark consumed.
func (b *Builder) checkInputs(subject string, regs []Register, ins Soqs,
	rightEndpoint func(Register, []int) Soquet) ([]Connection, []Soquet, error) {

	known := make(map[string]bool, len(regs))
	for _, reg := range regs {
		known[reg.Name] = true
	}
	var extras []string
	for name := range ins {
		if !known[name] {
			extras = append(extras, name)
		}
	}
	if len(extras) > 0 {
		sort.Strings(extras)
		return nil, nil, fmt.Errorf("%w: %s does not accept Soquets: %v", ErrUnexpectedArg, subject, extras)
	}

	var newCxns []Connection
	var consumed []Soquet
	inCall := make(map[string]bool)
	for _, reg := range regs {
		soqs, ok := ins[reg.Name]
		if !ok {
			return nil, nil, fmt.Errorf("%w: %s requires a Soquet named `%s`", ErrMissingArg, subject, reg.Name)
		}
		if len(soqs) != reg.NumWires() {
			return nil, nil, fmt.Errorf("%w: `%s.%s` expects %d wires, got %d",
				ErrShapeMismatch, subject, reg.Name, reg.NumWires(), len(soqs))
		}
		for k, idx := range reg.wireIndices() {
			in := soqs[k]
			key := in.Key()
			if !b.available.has(in) || inCall[key] {
				return nil, nil, fmt.Errorf("%w: %s is not an available Soquet for `%s.%s`",
					ErrUnavailableSoquet, in, subject, reg.Name)
			}
			inCall[key] = true
			consumed = append(consumed, in)
			newCxns = append(newCxns, Connection{Left: in, Right: rightEndpoint(reg, idx)})
		}
	}
	return newCxns, consumed, nil
}

// AddFrom splices an entire sub-graph into the builder: the bloq's
// decomposition (or the composite itself) is replayed connection by
// connection with fresh instance indices, its left boundary rewired to the
// caller-supplied soquets, topological order preserved. Returns the
// sub-graph's final soquets mapped into the builder's namespace.
func (b *Builder) AddFrom(bloq Bloq, ins Soqs) (Soqs, error) {
	cb, err := DecomposeBloq(bloq)
	if err != nil {
		return nil, err
	}

	subject := bloq.String()
	lefts := cb.Signature().Lefts()
	known := make(map[string]bool, len(lefts))
	for _, reg := range lefts {
		known[reg.Name] = true
	}
	var extras []string
	for name := range ins {
		if !known[name] {
			extras = append(extras, name)
		}
	}
	if len(extras) > 0 {
		sort.Strings(extras)
		return nil, fmt.Errorf("%w: %s does not accept Soquets: %v", ErrUnexpectedArg, subject, extras)
	}

	soqMap := newSoqMap()
	for _, reg := range lefts {
		soqs, ok := ins[reg.Name]
		if !ok {
			return nil, fmt.Errorf("%w: %s requires a Soquet named `%s`", ErrMissingArg, subject, reg.Name)
		}
		if len(soqs) != reg.NumWires() {
			return nil, fmt.Errorf("%w: `%s.%s` expects %d wires, got %d",
				ErrShapeMismatch, subject, reg.Name, reg.NumWires(), len(soqs))
		}
		for k, idx := range reg.wireIndices() {
			soqMap.set(Soquet{Binst: LeftDangle, Reg: reg, Idx: idx}, soqs[k])
		}
	}

	nodes, err := cb.IterBySoquet()
	if err != nil {
		return nil, err
	}
	for _, ns := range nodes {
		newOuts, err := b.Add(ns.Binst.Bloq, soqMap.apply(ns.Ins))
		if err != nil {
			return nil, err
		}
		soqMap.zip(ns.Outs, newOuts)
	}
	return soqMap.apply(cb.FinalSoquets()), nil
}

// Split fans one multi-bit soquet out into its unit-width wires, in order.
// The Split bloq appears in the graph as an ordinary instance.
func (b *Builder) Split(soq Soquet) ([]Soquet, error) {
	n := soq.Reg.Bitsize
	if n < 2 {
		return nil, fmt.Errorf("%w: split expects a multi-bit soquet, got bitsize %d", ErrShapeMismatch, n)
	}
	outs, err := b.Add(Split{N: n}, Soqs{"split": {soq}})
	if err != nil {
		return nil, err
	}
	return outs["split"], nil
}

// Join fuses an ordered flat sequence of unit-width soquets into a single
// soquet of their combined width.
func (b *Builder) Join(soqs []Soquet) (Soquet, error) {
	if len(soqs) == 0 {
		return Soquet{}, fmt.Errorf("%w: join expects at least one soquet", ErrShapeMismatch)
	}
	for _, s := range soqs {
		if s.Reg.Bitsize != 1 {
			return Soquet{}, fmt.Errorf("%w: join expects unit-width soquets, got bitsize %d for %s",
				ErrShapeMismatch, s.Reg.Bitsize, s)
		}
	}
	outs, err := b.Add(Join{N: len(soqs)}, Soqs{"join": append([]Soquet(nil), soqs...)})
	if err != nil {
		return Soquet{}, err
	}
	return outs["join"][0], nil
}

// Allocate produces a fresh available n-bit ancilla soquet with no
// left-boundary origin.
func (b *Builder) Allocate(n int) (Soquet, error) {
	outs, err := b.Add(Allocate{N: n}, Soqs{})
	if err != nil {
		return Soquet{}, err
	}
	return outs["alloc"][0], nil
}

// Free consumes an ancilla soquet; the wire gets no right-boundary
// destination.
func (b *Builder) Free(soq Soquet) error {
	_, err := b.Add(Free{N: soq.Reg.Bitsize}, Soqs{"free": {soq}})
	return err
}

// Finalize consumes the declared output ports from the available soquets and
// freezes the graph. Under the default configuration, extra named outputs
// and any still-available soquets silently become additional right-boundary
// registers: the graph discovers clean ancilla outputs automatically. With
// WithFixedSignature, extras fail with ErrUnexpectedArg and leftovers with
// ErrLinearityViolation.
func (b *Builder) Finalize(outs Soqs) (*CompositeBloq, error) {
	if outs == nil {
		outs = Soqs{}
	}
	const subject = "Finalizing"

	sig := b.signature()
	rights := sig.Rights()
	known := make(map[string]bool, len(rights))
	for _, reg := range rights {
		known[reg.Name] = true
	}
	var extras []string
	for name := range outs {
		if !known[name] {
			extras = append(extras, name)
		}
	}
	sort.Strings(extras)
	if len(extras) > 0 && !b.growth {
		return nil, fmt.Errorf("%w: %s does not accept Soquets: %v", ErrUnexpectedArg, subject, extras)
	}

	var newCxns []Connection
	var newRegs []Register
	inCall := make(map[string]bool)

	consume := func(in Soquet, reg Register, idx []int) error {
		key := in.Key()
		if !b.available.has(in) || inCall[key] {
			return fmt.Errorf("%w: %s is not an available Soquet for `%s`",
				ErrUnavailableSoquet, in, Soquet{Binst: RightDangle, Reg: reg, Idx: idx})
		}
		inCall[key] = true
		newCxns = append(newCxns, Connection{Left: in, Right: Soquet{Binst: RightDangle, Reg: reg, Idx: idx}})
		return nil
	}

	for _, reg := range rights {
		soqs, ok := outs[reg.Name]
		if !ok {
			return nil, fmt.Errorf("%w: %s requires a Soquet named `%s`", ErrMissingArg, subject, reg.Name)
		}
		if len(soqs) != reg.NumWires() {
			return nil, fmt.Errorf("%w: `%s.%s` expects %d wires, got %d",
				ErrShapeMismatch, subject, reg.Name, reg.NumWires(), len(soqs))
		}
		for k, idx := range reg.wireIndices() {
			if err := consume(soqs[k], reg, idx); err != nil {
				return nil, err
			}
		}
	}

	// Extra named outputs grow the signature by one register each, matching
	// the supplied soquets' widths.
	rightNames := make(map[string]bool, len(rights))
	for _, reg := range rights {
		rightNames[reg.Name] = true
	}
	for _, name := range extras {
		soqs := outs[name]
		reg, err := inferRegister(name, soqs)
		if err != nil {
			return nil, err
		}
		if rightNames[name] {
			return nil, fmt.Errorf("%w: `%s` already declared on the right boundary", ErrDuplicateRegister, name)
		}
		rightNames[name] = true
		newRegs = append(newRegs, reg)
		for k, idx := range reg.wireIndices() {
			if err := consume(soqs[k], reg, idx); err != nil {
				return nil, err
			}
		}
	}

	// Any soquet still available is promoted to a new output port, grouped by
	// register name in production order; a group of two or more same-named
	// soquets (e.g. unconsumed Split outputs) becomes one shaped register.
	// This asymmetry with strict input checking is what lets clean ancillae
	// surface without an explicit Free.
	var leftoverNames []string
	leftovers := make(map[string][]Soquet)
	for _, soq := range b.available.list() {
		if inCall[soq.Key()] {
			continue
		}
		if !b.growth {
			return nil, fmt.Errorf("%w: %s left dangling at finalize", ErrLinearityViolation, soq)
		}
		name := soq.Reg.Name
		if _, ok := leftovers[name]; !ok {
			if rightNames[name] {
				return nil, fmt.Errorf("%w: cannot promote dangling %s, `%s` already declared on the right boundary",
					ErrDuplicateRegister, soq, name)
			}
			rightNames[name] = true
			leftoverNames = append(leftoverNames, name)
		}
		leftovers[name] = append(leftovers[name], soq)
	}
	for _, name := range leftoverNames {
		soqs := leftovers[name]
		reg, err := inferRegister(name, soqs)
		if err != nil {
			return nil, err
		}
		newRegs = append(newRegs, reg)
		for k, idx := range reg.wireIndices() {
			inCall[soqs[k].Key()] = true
			newCxns = append(newCxns, Connection{Left: soqs[k], Right: Soquet{Binst: RightDangle, Reg: reg, Idx: idx}})
		}
	}

	finalRegs := append(append([]Register(nil), b.regs...), newRegs...)
	finalSig, err := NewSignature(finalRegs...)
	if err != nil {
		return nil, err
	}

	// Commit.
	b.regs = finalRegs
	for key := range inCall {
		b.available.removeKey(key)
	}
	b.cxns = append(b.cxns, newCxns...)
	return NewCompositeBloq(b.cxns, finalSig), nil
}

// inferRegister derives an output register from the soquets bound to an
// undeclared finalize name: a single soquet yields an unshaped register, a
// flat sequence of same-width soquets a (n,)-shaped one.
func inferRegister(name string, soqs []Soquet) (Register, error) {
	if len(soqs) == 0 {
		return Register{}, fmt.Errorf("%w: `%s` binds no soquets", ErrShapeMismatch, name)
	}
	bitsize := soqs[0].Reg.Bitsize
	for _, s := range soqs[1:] {
		if s.Reg.Bitsize != bitsize {
			return Register{}, fmt.Errorf("%w: `%s` binds soquets of mixed bitsize", ErrShapeMismatch, name)
		}
	}
	reg := Register{Name: name, Bitsize: bitsize, Side: SideRight}
	if len(soqs) > 1 {
		reg.Shape = []int{len(soqs)}
	}
	return reg, nil
}

func sortedNames(soqs Soqs) []string {
	names := make([]string, 0, len(soqs))
	for name := range soqs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// soqSet is an insertion-ordered set of soquets keyed by structural
// identity. Iteration order of list() is production order, which keeps
// auto-promoted output registers deterministic.
type soqSet struct {
	order []Soquet
	m     map[string]Soquet
}

func newSoqSet() *soqSet {
	return &soqSet{m: make(map[string]Soquet)}
}

func (s *soqSet) add(soq Soquet) {
	key := soq.Key()
	if _, ok := s.m[key]; ok {
		return
	}
	s.m[key] = soq
	s.order = append(s.order, soq)
}

func (s *soqSet) has(soq Soquet) bool {
	_, ok := s.m[soq.Key()]
	return ok
}

func (s *soqSet) remove(soq Soquet) {
	delete(s.m, soq.Key())
}

func (s *soqSet) removeKey(key string) {
	delete(s.m, key)
}

// list returns the live members in insertion order.
func (s *soqSet) list() []Soquet {
	out := make([]Soquet, 0, len(s.m))
	for _, soq := range s.order {
		if _, ok := s.m[soq.Key()]; ok {
			out = append(out, soq)
		}
	}
	return out
}
