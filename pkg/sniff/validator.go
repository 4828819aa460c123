// Package sniff holds the validator fan-out (Sniffer) that feeds a byte
// stream to every live candidate-dialect state machine in parallel,
// evicting any whose invariants are violated, and collects the
// survivors' finalized dialects.
package sniff

import "github.com/nullbyte-dev/csv2asv/pkg/dialect"

// Validator is the capability set a candidate-dialect state machine
// must implement.
type Validator interface {
	// TryProcessChunk advances the state machine over chunk. A non-nil
	// error means the hypothesis is no longer viable; the caller evicts
	// the validator and never calls it again.
	TryProcessChunk(chunk []byte) error

	// Finalize collapses accumulated state into a Dialect. ok is false
	// when the validator, despite surviving the whole stream, does not
	// represent a usable dialect (e.g. every column turned out empty).
	Finalize() (d dialect.Dialect, ok bool)

	// Label identifies the hypothesis for diagnostics only.
	Label() string
}
