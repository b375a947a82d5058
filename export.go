package bloqflow

import "fmt"

// Exporter is implemented by external circuit targets. The graph layer calls
// ExportBloq once per instance in topological order; the target appends its
// native representation of the bloq and reports which qubits carry each
// output register afterwards.
//
// The qubits map binds each input register name to its flattened qubit ids:
// NumWires x Bitsize ints per register, row-major. The returned map uses the
// same layout for the bloq's output registers. Targets allocate fresh ids
// for Allocate-style bloqs (registers with no input side) and may retire ids
// consumed by Free-style bloqs.
type Exporter interface {
	ExportBloq(b Bloq, qubits map[string][]int) (map[string][]int, error)
}

// ToCircuit exports the graph by walking instances in topological order and
// translating each through target. bindings supplies the concrete qubit ids
// for every input register; the returned map holds the qubit ids carrying
// each output register once the whole graph has been appended. Purely a
// translation: the graph is not mutated.
func (c *CompositeBloq) ToCircuit(target Exporter, bindings map[string][]int) (map[string][]int, error) {
	// Qubits carried by each produced soquet, keyed by structural identity.
	carry := make(map[string][]int)

	for _, reg := range c.Signature().Lefts() {
		qubits, ok := bindings[reg.Name]
		if !ok {
			return nil, fmt.Errorf("%w: no qubit binding for input register `%s`", ErrMissingArg, reg.Name)
		}
		if len(qubits) != reg.TotalBits() {
			return nil, fmt.Errorf("%w: register `%s` needs %d qubits, got %d",
				ErrShapeMismatch, reg.Name, reg.TotalBits(), len(qubits))
		}
		for k, idx := range reg.wireIndices() {
			soq := Soquet{Binst: LeftDangle, Reg: reg, Idx: idx}
			carry[soq.Key()] = qubits[k*reg.Bitsize : (k+1)*reg.Bitsize]
		}
	}

	nodes, err := c.IterBySoquet()
	if err != nil {
		return nil, err
	}
	for _, ns := range nodes {
		sig := ns.Binst.Bloq.Signature()

		ins := make(map[string][]int)
		for _, reg := range sig.Lefts() {
			var qubits []int
			for _, producer := range ns.Ins[reg.Name] {
				got, ok := carry[producer.Key()]
				if !ok {
					return nil, fmt.Errorf("%w: no qubits carried into %s.%s", ErrMissingRegister, ns.Binst, reg.Name)
				}
				qubits = append(qubits, got...)
			}
			ins[reg.Name] = qubits
		}

		outs, err := target.ExportBloq(ns.Binst.Bloq, ins)
		if err != nil {
			return nil, fmt.Errorf("exporting %s: %w", ns.Binst, err)
		}

		for _, reg := range sig.Rights() {
			qubits, ok := outs[reg.Name]
			if !ok {
				return nil, fmt.Errorf("%w: target returned no qubits for %s.%s", ErrMissingRegister, ns.Binst, reg.Name)
			}
			if len(qubits) != reg.TotalBits() {
				return nil, fmt.Errorf("%w: target returned %d qubits for %s.%s, want %d",
					ErrShapeMismatch, len(qubits), ns.Binst, reg.Name, reg.TotalBits())
			}
			for k, soq := range ns.Outs[reg.Name] {
				carry[soq.Key()] = qubits[k*reg.Bitsize : (k+1)*reg.Bitsize]
			}
		}
	}

	final := make(map[string][]int)
	finals := c.FinalSoquets()
	for _, reg := range c.Signature().Rights() {
		var qubits []int
		for _, producer := range finals[reg.Name] {
			got, ok := carry[producer.Key()]
			if !ok {
				return nil, fmt.Errorf("%w: no qubits carried into output register `%s`", ErrMissingRegister, reg.Name)
			}
			qubits = append(qubits, got...)
		}
		final[reg.Name] = qubits
	}
	return final, nil
}
