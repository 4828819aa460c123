// Package pipeline drives the two full passes over a source file that
// dialect detection and normalization require: a detect pass that fans
// every seeded validator out over the stream, and a normalize pass that
// replays the stream through the winning dialect.
package pipeline

import (
	"io"

	"github.com/nullbyte-dev/csv2asv/pkg/csverr"
	"github.com/nullbyte-dev/csv2asv/pkg/dialect"
	"github.com/nullbyte-dev/csv2asv/pkg/normalize"
	"github.com/nullbyte-dev/csv2asv/pkg/sniff"
	"github.com/nullbyte-dev/csv2asv/pkg/sniff/keyvalue"
	"github.com/nullbyte-dev/csv2asv/pkg/sniff/singlebyte"
)

// EvictHook forwards the Sniffer's per-validator eviction diagnostics to
// a caller-supplied logger (see cmd/csv2asv, which wires this to the
// standard log package for verbose output only).
type EvictHook func(label string, err error)

// Sniff builds the full seeded validator set (every SingleByte
// hypothesis plus the one KeyValue hypothesis) and runs the detection
// pass against src. It returns every surviving dialect, unordered.
func Sniff(src io.Reader, hasHeaders *bool, onEvict EvictHook) ([]dialect.Dialect, error) {
	validators := singlebyte.Seed(hasHeaders)
	validators = append(validators, keyvalue.Seed())

	sniffer := sniff.New(validators)
	sniffer.OnEvict = sniff.EvictHook(onEvict)

	if err := sniffer.Process(src); err != nil {
		return nil, err
	}

	return sniffer.Dialects(), nil
}

// Select picks the winning dialect from a set of survivors under
// Dialect's total order. It returns csverr.ErrNoDialect when candidates
// is empty.
func Select(candidates []dialect.Dialect) (dialect.Dialect, error) {
	best, ok := dialect.Max(candidates)
	if !ok {
		return dialect.Dialect{}, csverr.ErrNoDialect
	}
	return best, nil
}

// Normalize replays src through d's own state machine, writing ASV to
// dst.
func Normalize(d dialect.Dialect, src io.Reader, dst io.Writer) error {
	switch d.Kind {
	case dialect.KindSingleByte:
		return normalize.NewSingleByteNormalizer(d.SingleByte).Normalize(src, dst)
	case dialect.KindKeyValue:
		return normalize.NewKeyValueNormalizer(d.KeyValue).Normalize(src, dst)
	default:
		return csverr.ErrNoDialect
	}
}

// Run drives the full two-pass pipeline: detect over src, pick the
// winner, rewind src, and normalize into dst. src must be an
// io.ReadSeeker — a plain io.Reader (e.g. a pipe) cannot support the
// required second pass and Run reports csverr.ErrNotSeekable instead of
// attempting it.
func Run(src io.ReadSeeker, dst io.Writer, hasHeaders *bool, onEvict EvictHook) (dialect.Dialect, error) {
	candidates, err := Sniff(src, hasHeaders, onEvict)
	if err != nil {
		return dialect.Dialect{}, err
	}

	winner, err := Select(candidates)
	if err != nil {
		return dialect.Dialect{}, err
	}

	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return dialect.Dialect{}, csverr.ErrNotSeekable
	}

	if err := Normalize(winner, src, dst); err != nil {
		return dialect.Dialect{}, err
	}

	return winner, nil
}
