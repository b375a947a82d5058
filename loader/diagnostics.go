package loader

import (
	"fmt"

	"github.com/bloq-labs/bloqflow/registry"
)

// Severity of a diagnostic.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Diagnostic is one static problem found in a program. Op is the index of
// the offending op, or -1 for program-level problems.
type Diagnostic struct {
	Severity Severity
	Code     string
	Message  string
	Op       int
}

func (d Diagnostic) String() string {
	if d.Op >= 0 {
		return fmt.Sprintf("%s %s: op %d: %s", d.Severity, d.Code, d.Op, d.Message)
	}
	return fmt.Sprintf("%s %s: %s", d.Severity, d.Code, d.Message)
}

// DiagnosticError wraps validation diagnostics as an error.
type DiagnosticError struct {
	Diagnostics []Diagnostic
}

func (e *DiagnosticError) Error() string {
	errs := errorsOnly(e.Diagnostics)
	if len(errs) == 1 {
		return fmt.Sprintf("validation error: %s", errs[0])
	}
	return fmt.Sprintf("%d validation errors (first: %s)", len(errs), errs[0])
}

func errorsOnly(diags []Diagnostic) []Diagnostic {
	var out []Diagnostic
	for _, d := range diags {
		if d.Severity == SeverityError {
			out = append(out, d)
		}
	}
	return out
}

func hasErrors(diags []Diagnostic) bool {
	return len(errorsOnly(diags)) > 0
}

// Diagnostic codes.
const (
	CodeDuplicateRegister = "P-001"
	CodeBadRegister       = "P-002"
	CodeUnknownBloq       = "P-003"
	CodeBadParams         = "P-004"
	CodeUnknownVariable   = "P-005"
	CodeBadWiring         = "P-006"
	CodeUnknownOutput     = "P-007"
)

// validate collects the static problems a compile would hit, without
// touching a Builder.
func (p *Program) validate(reg *registry.Registry) []Diagnostic {
	var diags []Diagnostic
	report := func(op int, code, format string, args ...any) {
		diags = append(diags, Diagnostic{
			Severity: SeverityError,
			Code:     code,
			Message:  fmt.Sprintf(format, args...),
			Op:       op,
		})
	}

	vars := make(map[string]bool)
	seen := make(map[string]bool)
	for _, rd := range p.Registers {
		if seen[rd.Name] {
			report(-1, CodeDuplicateRegister, "register %q declared twice", rd.Name)
		}
		seen[rd.Name] = true
		if rd.Name == "" || rd.Bitsize < 1 {
			report(-1, CodeBadRegister, "register %q needs a name and bitsize >= 1", rd.Name)
		}
		vars[rd.Name] = true
	}

	for i, op := range p.Ops {
		if !reg.Has(op.Bloq) {
			report(i, CodeUnknownBloq, "no bloq registered as %q", op.Bloq)
			continue
		}
		b, err := reg.Build(op.Bloq, op.Params)
		if err != nil {
			report(i, CodeBadParams, "%v", err)
			continue
		}
		sig := b.Signature()

		for _, r := range sig.Lefts() {
			bound := op.Wires[r.Name]
			if len(bound) != r.NumWires() {
				report(i, CodeBadWiring, "register %q of %s needs %d wires, got %d",
					r.Name, op.Bloq, r.NumWires(), len(bound))
			}
			for _, v := range bound {
				if !vars[v] {
					report(i, CodeUnknownVariable, "variable %q is not defined", v)
				}
			}
		}
		for name := range op.Wires {
			if _, err := sig.GetLeft(name); err != nil {
				report(i, CodeBadWiring, "%s has no input register %q", op.Bloq, name)
			}
		}

		for _, r := range sig.Rights() {
			out, err := op.outVars(r)
			if err != nil {
				report(i, CodeBadWiring, "%v", err)
				continue
			}
			for _, v := range out {
				vars[v] = true
			}
		}
	}

	for name, v := range p.Outputs {
		if !seen[name] {
			report(-1, CodeUnknownOutput, "outputs names unknown register %q", name)
		}
		if !vars[v] {
			report(-1, CodeUnknownOutput, "outputs references undefined variable %q", v)
		}
	}
	return diags
}

var _ error = (*DiagnosticError)(nil)
