package singlebyte

import "errors"

// Structural violations: detector-local, never propagated to a caller —
// they only ever cause eviction from the sniffer.
var (
	errCellTooLong     = errors.New("cell value too long")
	errInconsistentRow = errors.New("inconsistent row length")
	errTooManyColumns  = errors.New("too many columns (first row)")
	errMissingColumn   = errors.New("inconsistent row length (missing column)")
	errOnlyOneColumn   = errors.New("only one column found")
)
