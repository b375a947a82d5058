// Package loader loads YAML circuit programs and compiles them into
// composite graphs through the Builder, resolving bloq names against a
// registry. A program declares named registers, a sequence of ops wiring
// named variables through bloq ports, and optionally which variables feed
// the outputs.
package loader

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/bloq-labs/bloqflow"
	"github.com/bloq-labs/bloqflow/registry"
)

// Program is the parsed YAML form of a circuit program.
type Program struct {
	Name      string        `yaml:"name"`
	Registers []RegisterDef `yaml:"registers"`
	Ops       []OpDef       `yaml:"ops"`
	// Outputs maps declared register names to the variables feeding them at
	// the end. When empty, every register is fed by its own variable.
	Outputs map[string]string `yaml:"outputs,omitempty"`
}

// RegisterDef declares one external register and seeds a variable of the
// same name.
type RegisterDef struct {
	Name    string `yaml:"name"`
	Bitsize int    `yaml:"bitsize"`
}

// OpDef is one bloq application. Wires binds the bloq's input register
// names to variables; Out binds its output register names to the variables
// that will carry the fresh wires. Out may be omitted for a register whose
// name and wire count match an input register: its input variables are
// rebound in place.
type OpDef struct {
	Bloq   string              `yaml:"bloq"`
	Params map[string]any      `yaml:"params,omitempty"`
	Wires  map[string][]string `yaml:"wires,omitempty"`
	Out    map[string][]string `yaml:"out,omitempty"`
}

// Parse decodes a YAML program without compiling it.
func Parse(data []byte) (*Program, error) {
	var p Program
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	return &p, nil
}

// Load reads and parses a program file.
func Load(path string) (*Program, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path from caller
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
	return Parse(data)
}

// LoadAndCompile is the unified entry point: read, parse, validate against
// the registry, and compile to a composite graph.
func LoadAndCompile(path string, reg *registry.Registry) (*bloqflow.CompositeBloq, *Program, error) {
	p, err := Load(path)
	if err != nil {
		return nil, nil, err
	}
	cb, err := p.Compile(reg)
	if err != nil {
		return nil, nil, err
	}
	return cb, p, nil
}

// Compile validates the program against reg and replays it through a
// Builder. Static problems (unknown bloqs, unknown variables, arity
// mismatches) are collected into a DiagnosticError; wire-discipline
// violations surface as Builder errors.
func (p *Program) Compile(reg *registry.Registry) (*bloqflow.CompositeBloq, error) {
	if diags := p.validate(reg); hasErrors(diags) {
		return nil, &DiagnosticError{Diagnostics: diags}
	}

	bb := bloqflow.NewBuilder()
	env := make(map[string]bloqflow.Soquet, len(p.Registers))
	for _, rd := range p.Registers {
		soq, err := bb.AddRegister(rd.Name, rd.Bitsize)
		if err != nil {
			return nil, err
		}
		env[rd.Name] = soq
	}

	for i, op := range p.Ops {
		b, err := reg.Build(op.Bloq, op.Params)
		if err != nil {
			return nil, fmt.Errorf("op %d: %w", i, err)
		}
		sig := b.Signature()

		ins := make(bloqflow.Soqs)
		for _, r := range sig.Lefts() {
			vars := op.Wires[r.Name]
			soqs := make([]bloqflow.Soquet, len(vars))
			for k, v := range vars {
				soqs[k] = env[v]
			}
			ins[r.Name] = soqs
		}

		outs, err := bb.Add(b, ins)
		if err != nil {
			return nil, fmt.Errorf("op %d (%s): %w", i, op.Bloq, err)
		}

		for _, r := range sig.Rights() {
			vars, err := op.outVars(r)
			if err != nil {
				return nil, fmt.Errorf("op %d (%s): %w", i, op.Bloq, err)
			}
			for k, v := range vars {
				env[v] = outs[r.Name][k]
			}
		}
	}

	finals := make(bloqflow.Soqs)
	for _, rd := range p.Registers {
		v := rd.Name
		if mapped, ok := p.Outputs[rd.Name]; ok {
			v = mapped
		}
		finals[rd.Name] = []bloqflow.Soquet{env[v]}
	}
	return bb.Finalize(finals)
}

// outVars resolves the variables carrying one output register: the explicit
// Out binding, or the same-named input variables when the wire counts line
// up.
func (op OpDef) outVars(r bloqflow.Register) ([]string, error) {
	if vars, ok := op.Out[r.Name]; ok {
		if len(vars) != r.NumWires() {
			return nil, fmt.Errorf("out %q binds %d variables, want %d", r.Name, len(vars), r.NumWires())
		}
		return vars, nil
	}
	if vars, ok := op.Wires[r.Name]; ok && len(vars) == r.NumWires() {
		return vars, nil
	}
	return nil, fmt.Errorf("no out binding for register %q", r.Name)
}
