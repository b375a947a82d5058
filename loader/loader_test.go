package loader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/bloq-labs/bloqflow"
	"github.com/bloq-labs/bloqflow/gatecount"
	"github.com/bloq-labs/bloqflow/registry"
)

const twoGateProgram = `
name: crossed-pair
registers:
  - name: x
    bitsize: 1
  - name: y
    bitsize: 1
ops:
  - bloq: x
    wires: {q: [x]}
  - bloq: cnot
    wires: {ctrl: [x], target: [y]}
`

const splitJoinProgram = `
name: phase-middle-wire
registers:
  - name: reg
    bitsize: 2
ops:
  - bloq: split
    params: {n: 2}
    wires: {split: [reg]}
    out: {split: [a, b]}
  - bloq: t
    wires: {q: [a]}
  - bloq: join
    params: {n: 2}
    wires: {join: [a, b]}
    out: {join: [reg]}
`

func compile(t *testing.T, src string) *bloqflow.CompositeBloq {
	t.Helper()
	p, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	cb, err := p.Compile(registry.Global())
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	return cb
}

func TestCompile_TwoGateProgram(t *testing.T) {
	cb := compile(t, twoGateProgram)
	if got := len(cb.Instances()); got != 2 {
		t.Errorf("len(Instances()) = %d, want 2", got)
	}
	if err := bloqflow.Validate(cb); err != nil {
		t.Errorf("Validate() error = %v", err)
	}

	lefts := cb.Signature().Lefts()
	if len(lefts) != 2 || lefts[0].Name != "x" || lefts[1].Name != "y" {
		t.Errorf("Lefts() = %v, want x then y", lefts)
	}
}

func TestCompile_SplitJoinProgram(t *testing.T) {
	cb := compile(t, splitJoinProgram)
	if err := bloqflow.Validate(cb); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	total, err := gatecount.Count(cb)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if total != (gatecount.Complexity{T: 1}) {
		t.Errorf("Count() = %v, want T: 1", total)
	}
}

func TestCompile_UnknownBloq(t *testing.T) {
	src := `
registers: [{name: x, bitsize: 1}]
ops:
  - bloq: hadamard_tower
    wires: {q: [x]}
`
	p, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	_, err = p.Compile(registry.Global())
	assertDiagnostic(t, err, CodeUnknownBloq)
}

func TestCompile_UnknownVariable(t *testing.T) {
	src := `
registers: [{name: x, bitsize: 1}]
ops:
  - bloq: x
    wires: {q: [ghost]}
`
	p, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	_, err = p.Compile(registry.Global())
	assertDiagnostic(t, err, CodeUnknownVariable)
}

func TestCompile_BadWiring(t *testing.T) {
	src := `
registers:
  - {name: x, bitsize: 1}
  - {name: y, bitsize: 1}
ops:
  - bloq: cnot
    wires: {ctrl: [x]}
`
	p, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	_, err = p.Compile(registry.Global())
	assertDiagnostic(t, err, CodeBadWiring)
}

func TestCompile_DuplicateRegister(t *testing.T) {
	src := `
registers:
  - {name: x, bitsize: 1}
  - {name: x, bitsize: 2}
`
	p, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	_, err = p.Compile(registry.Global())
	assertDiagnostic(t, err, CodeDuplicateRegister)
}

func TestCompile_StaleVariable(t *testing.T) {
	// The second op consumes x, which was already consumed and rebound to
	// x2. Static validation cannot see this; the Builder rejects it.
	src := `
registers: [{name: x, bitsize: 1}]
ops:
  - bloq: x
    wires: {q: [x]}
    out: {q: [x2]}
  - bloq: x
    wires: {q: [x]}
outputs: {x: x2}
`
	p, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	_, err = p.Compile(registry.Global())
	if !errors.Is(err, bloqflow.ErrUnavailableSoquet) {
		t.Errorf("Compile() error = %v, want ErrUnavailableSoquet", err)
	}
}

func TestCompile_OutputsMapping(t *testing.T) {
	src := `
registers: [{name: x, bitsize: 1}]
ops:
  - bloq: t
    wires: {q: [x]}
    out: {q: [phased]}
outputs: {x: phased}
`
	cb := compile(t, src)
	if err := bloqflow.Validate(cb); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoadAndCompile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "program.yaml")
	if err := os.WriteFile(path, []byte(twoGateProgram), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cb, p, err := LoadAndCompile(path, registry.Global())
	if err != nil {
		t.Fatalf("LoadAndCompile() error = %v", err)
	}
	if p.Name != "crossed-pair" {
		t.Errorf("Name = %q, want crossed-pair", p.Name)
	}
	if got := len(cb.Instances()); got != 2 {
		t.Errorf("len(Instances()) = %d, want 2", got)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Load() should fail for a missing file")
	}
}

func assertDiagnostic(t *testing.T, err error, code string) {
	t.Helper()
	var de *DiagnosticError
	if !errors.As(err, &de) {
		t.Fatalf("error = %v, want a DiagnosticError", err)
	}
	for _, d := range de.Diagnostics {
		if d.Code == code {
			return
		}
	}
	t.Errorf("diagnostics %v missing code %s", de.Diagnostics, code)
}
