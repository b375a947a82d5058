package bloqflow

import "errors"

// Graph construction and validation errors.
//
// The Builder raises these eagerly while a graph is being assembled; the
// validation suite raises the same kinds when checking graphs that were put
// together by hand. Callers match on the sentinel with errors.Is and read the
// wrapped message for the offending soquet or register.
var (
	// ErrUnavailableSoquet reports a soquet that is not currently available:
	// it was never produced, it has already been consumed, or it belongs to a
	// different instance or register than the caller declared.
	ErrUnavailableSoquet = errors.New("soquet not available")

	// ErrMissingArg reports a required input or output name that was omitted
	// from Add or Finalize.
	ErrMissingArg = errors.New("missing required soquet argument")

	// ErrUnexpectedArg reports an extra, unrecognized name supplied to Add or
	// Finalize.
	ErrUnexpectedArg = errors.New("unexpected soquet argument")

	// ErrSignatureMismatch reports a decomposition whose boundary registers do
	// not match the operator's own declared signature.
	ErrSignatureMismatch = errors.New("signature mismatch")

	// ErrShapeMismatch reports connected endpoints with incompatible
	// bit-widths or wire counts.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrMissingRegister reports an endpoint referencing a register absent
	// from its owning node's signature.
	ErrMissingRegister = errors.New("register missing from owning node")

	// ErrLinearityViolation reports a soquet produced or consumed more than
	// once, or left dangling mid-graph.
	ErrLinearityViolation = errors.New("linearity violation")

	// ErrUnsupportedDecomposition reports a decomposition request on a bloq
	// that does not support one.
	ErrUnsupportedDecomposition = errors.New("bloq does not support decomposition")

	// ErrRegisterNotFound reports a lookup for a register name absent from a
	// signature.
	ErrRegisterNotFound = errors.New("register not found")

	// ErrDuplicateRegister reports a register name collision within one
	// signature.
	ErrDuplicateRegister = errors.New("duplicate register")

	// ErrCycleDetected reports a connection set that has no topological order.
	ErrCycleDetected = errors.New("cycle detected in graph")
)
