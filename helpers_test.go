package bloqflow

// Test bloqs shared across the package tests. All are comparable value
// types, as the Bloq contract requires.

// cnot is a two-wire test gate with no decomposition.
type cnot struct{}

func (cnot) Signature() Signature {
	return MustSignature(Reg("control", 1), Reg("target", 1))
}

func (cnot) String() string { return "CNOT" }

// flip is a single-wire test gate with no decomposition.
type flip struct{}

func (flip) Signature() Signature {
	return MustSignature(Reg("q", 1))
}

func (flip) String() string { return "Flip" }

// atom is a single-wire leaf used inside decompositions.
type atom struct{}

func (atom) Signature() Signature {
	return MustSignature(Reg("stuff", 1))
}

func (atom) String() string { return "Atom" }

// twoCNOT decomposes into two crossed CNOTs.
type twoCNOT struct{}

func (twoCNOT) Signature() Signature {
	return MustSignature(Reg("q1", 1), Reg("q2", 1))
}

func (twoCNOT) String() string { return "TwoCNOT" }

func (b twoCNOT) Decompose() (*CompositeBloq, error) {
	bb, initial := FromSignature(b.Signature())
	q1, q2 := initial.One("q1"), initial.One("q2")
	outs, err := bb.Add(cnot{}, Soqs{"control": {q1}, "target": {q2}})
	if err != nil {
		return nil, err
	}
	outs, err = bb.Add(cnot{}, Soqs{"control": {outs.One("target")}, "target": {outs.One("control")}})
	if err != nil {
		return nil, err
	}
	return bb.Finalize(Soqs{"q1": {outs.One("control")}, "q2": {outs.One("target")}})
}

// serial decomposes into three atoms chained on one wire.
type serial struct{}

func (serial) Signature() Signature {
	return MustSignature(Reg("stuff", 1))
}

func (serial) String() string { return "Serial" }

func (b serial) Decompose() (*CompositeBloq, error) {
	bb, initial := FromSignature(b.Signature())
	stuff := initial.One("stuff")
	for i := 0; i < 3; i++ {
		outs, err := bb.Add(atom{}, Soqs{"stuff": {stuff}})
		if err != nil {
			return nil, err
		}
		stuff = outs.One("stuff")
	}
	return bb.Finalize(Soqs{"stuff": {stuff}})
}

// parallel decomposes into a split, three parallel atoms, and a join.
type parallel struct{}

func (parallel) Signature() Signature {
	return MustSignature(Reg("stuff", 3))
}

func (parallel) String() string { return "Parallel" }

func (b parallel) Decompose() (*CompositeBloq, error) {
	bb, initial := FromSignature(b.Signature())
	wires, err := bb.Split(initial.One("stuff"))
	if err != nil {
		return nil, err
	}
	for i := range wires {
		outs, err := bb.Add(atom{}, Soqs{"stuff": {wires[i]}})
		if err != nil {
			return nil, err
		}
		wires[i] = outs.One("stuff")
	}
	joined, err := bb.Join(wires)
	if err != nil {
		return nil, err
	}
	return bb.Finalize(Soqs{"stuff": {joined}})
}

// multiCNOT exercises a shaped register: one control fanned across a (2, 3)
// target array.
type multiCNOT struct{}

func (multiCNOT) Signature() Signature {
	return MustSignature(
		Reg("control", 1),
		Register{Name: "target", Bitsize: 1, Shape: []int{2, 3}, Side: SideThru},
	)
}

func (multiCNOT) String() string { return "MultiCNOT" }

func (b multiCNOT) Decompose() (*CompositeBloq, error) {
	bb, initial := FromSignature(b.Signature())
	control := initial.One("control")
	targets := initial["target"]
	for i := range targets {
		outs, err := bb.Add(cnot{}, Soqs{"control": {control}, "target": {targets[i]}})
		if err != nil {
			return nil, err
		}
		control = outs.One("control")
		targets[i] = outs.One("target")
	}
	return bb.Finalize(Soqs{"control": {control}, "target": targets})
}

// crossedCNOTConnections hand-builds the two-crossed-CNOT graph without a
// Builder, for exercising the validation suite on raw connection sets.
func crossedCNOTConnections() ([]Connection, Signature) {
	sig := MustSignature(Reg("q1", 1), Reg("q2", 1))
	q1, q2 := sig.Registers()[0], sig.Registers()[1]
	control, _ := cnot{}.Signature().Get("control")
	target, _ := cnot{}.Signature().Get("target")
	binst1 := BloqInstance{Bloq: cnot{}, I: 1}
	binst2 := BloqInstance{Bloq: cnot{}, I: 2}
	cxns := []Connection{
		{Left: Soquet{Binst: LeftDangle, Reg: q1}, Right: Soquet{Binst: binst1, Reg: control}},
		{Left: Soquet{Binst: LeftDangle, Reg: q2}, Right: Soquet{Binst: binst1, Reg: target}},
		{Left: Soquet{Binst: binst1, Reg: control}, Right: Soquet{Binst: binst2, Reg: target}},
		{Left: Soquet{Binst: binst1, Reg: target}, Right: Soquet{Binst: binst2, Reg: control}},
		{Left: Soquet{Binst: binst2, Reg: control}, Right: Soquet{Binst: RightDangle, Reg: q1}},
		{Left: Soquet{Binst: binst2, Reg: target}, Right: Soquet{Binst: RightDangle, Reg: q2}},
	}
	return cxns, sig
}
