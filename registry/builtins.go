package registry

import (
	"fmt"

	"github.com/bloq-labs/bloqflow"
	"github.com/bloq-labs/bloqflow/bloqs/basic"
)

// intParam reads an integer parameter, tolerating the numeric types YAML
// decoding produces.
func intParam(params map[string]any, name string, def int) (int, error) {
	v, ok := params[name]
	if !ok {
		return def, nil
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n == float64(int(n)) {
			return int(n), nil
		}
	}
	return 0, fmt.Errorf("parameter %q: want an integer, got %v (%T)", name, v, v)
}

func floatParam(params map[string]any, name string, def float64) (float64, error) {
	v, ok := params[name]
	if !ok {
		return def, nil
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	}
	return 0, fmt.Errorf("parameter %q: want a number, got %v (%T)", name, v, v)
}

func boolParam(params map[string]any, name string, def bool) (bool, error) {
	v, ok := params[name]
	if !ok {
		return def, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("parameter %q: want a bool, got %v (%T)", name, v, v)
	}
	return b, nil
}

// registerBuiltins registers all built-in bloqflow bloq types.
// Called once by Global() during singleton initialization.
func registerBuiltins(r *Registry) {
	r.Register(BloqDef{
		Name:        "x",
		Description: "Pauli X gate",
		New: func(map[string]any) (bloqflow.Bloq, error) {
			return basic.XGate{}, nil
		},
	})

	r.Register(BloqDef{
		Name:        "t",
		Description: "T gate, or its inverse with adjoint: true",
		Params:      []string{"adjoint"},
		New: func(params map[string]any) (bloqflow.Bloq, error) {
			adj, err := boolParam(params, "adjoint", false)
			if err != nil {
				return nil, err
			}
			return basic.TGate{IsAdjoint: adj}, nil
		},
	})

	r.Register(BloqDef{
		Name:        "zpow",
		Description: "Z raised to an arbitrary exponent",
		Params:      []string{"exponent"},
		New: func(params map[string]any) (bloqflow.Bloq, error) {
			exp, err := floatParam(params, "exponent", 1)
			if err != nil {
				return nil, err
			}
			return basic.ZPow{Exponent: exp}, nil
		},
	})

	r.Register(BloqDef{
		Name:        "cnot",
		Description: "Controlled-X gate",
		New: func(map[string]any) (bloqflow.Bloq, error) {
			return basic.CNOT{}, nil
		},
	})

	r.Register(BloqDef{
		Name:        "toffoli",
		Description: "Doubly-controlled X gate",
		New: func(map[string]any) (bloqflow.Bloq, error) {
			return basic.Toffoli{}, nil
		},
	})

	r.Register(BloqDef{
		Name:        "swap",
		Description: "Two-wire swap (three CNOTs)",
		New: func(map[string]any) (bloqflow.Bloq, error) {
			return basic.Swap{}, nil
		},
	})

	r.Register(BloqDef{
		Name:        "hamming_weight_phase",
		Description: "Phase an n-bit register by its Hamming weight",
		Params:      []string{"n", "exponent"},
		New: func(params map[string]any) (bloqflow.Bloq, error) {
			n, err := intParam(params, "n", 0)
			if err != nil {
				return nil, err
			}
			if n < 1 {
				return nil, fmt.Errorf("parameter %q: want n >= 1, got %d", "n", n)
			}
			exp, err := floatParam(params, "exponent", 1)
			if err != nil {
				return nil, err
			}
			return basic.HammingWeightPhase{N: n, Exponent: exp}, nil
		},
	})

	r.Register(BloqDef{
		Name:        "split",
		Description: "Fan an n-bit wire out into unit wires",
		Params:      []string{"n"},
		New: func(params map[string]any) (bloqflow.Bloq, error) {
			n, err := intParam(params, "n", 0)
			if err != nil {
				return nil, err
			}
			if n < 2 {
				return nil, fmt.Errorf("parameter %q: want n >= 2, got %d", "n", n)
			}
			return bloqflow.Split{N: n}, nil
		},
	})

	r.Register(BloqDef{
		Name:        "join",
		Description: "Fuse n unit wires into one n-bit wire",
		Params:      []string{"n"},
		New: func(params map[string]any) (bloqflow.Bloq, error) {
			n, err := intParam(params, "n", 0)
			if err != nil {
				return nil, err
			}
			if n < 2 {
				return nil, fmt.Errorf("parameter %q: want n >= 2, got %d", "n", n)
			}
			return bloqflow.Join{N: n}, nil
		},
	})

	r.Register(BloqDef{
		Name:        "alloc",
		Description: "Allocate an n-bit ancilla wire",
		Params:      []string{"n"},
		New: func(params map[string]any) (bloqflow.Bloq, error) {
			n, err := intParam(params, "n", 1)
			if err != nil {
				return nil, err
			}
			return bloqflow.Allocate{N: n}, nil
		},
	})

	r.Register(BloqDef{
		Name:        "free",
		Description: "Release an n-bit ancilla wire",
		Params:      []string{"n"},
		New: func(params map[string]any) (bloqflow.Bloq, error) {
			n, err := intParam(params, "n", 1)
			if err != nil {
				return nil, err
			}
			return bloqflow.Free{N: n}, nil
		},
	})
}
