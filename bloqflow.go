// Package bloqflow models quantum computations as composable graphs of
// quantum operations ("bloqs") and provides the tools to build, validate,
// decompose, and analyze those graphs for resource estimation.
//
// The core is the composite-graph engine: Register/Signature describe the
// typed wire ports of a bloq, Soquet and Connection form the wire-level edge
// model between bloq instances and the two dangling boundary sentinels, the
// Builder constructs graphs incrementally while enforcing the linear-wire
// discipline (every wire produced and consumed exactly once), and
// CompositeBloq is the immutable result supporting traversal, flattening,
// validation and circuit export.
//
// Concrete gate definitions live in bloqs/basic, resource counting in
// gatecount, the moment-scheduled export target in circuit, and the YAML
// program loader in loader:
//
//	import "github.com/bloq-labs/bloqflow"
//	import "github.com/bloq-labs/bloqflow/bloqs/basic"
//	import "github.com/bloq-labs/bloqflow/gatecount"
package bloqflow
