package sniff

import (
	"io"

	"github.com/nullbyte-dev/csv2asv/pkg/dialect"
)

// ChunkSize is the fixed detection-pass chunk size: the stream is read
// in fixed-size chunks of 1 MiB.
const ChunkSize = 1 << 20 // 1 MiB

// EvictHook, if set on a Sniffer, is called once per evicted validator
// with its label and the error that caused eviction. It exists purely
// for diagnostic logging and never affects which dialects survive.
type EvictHook func(label string, err error)

// Sniffer holds every live candidate-dialect validator and advances them
// together over a byte stream.
type Sniffer struct {
	validators []Validator
	OnEvict    EvictHook
}

// New builds a Sniffer from the given seed validators.
func New(validators []Validator) *Sniffer {
	return &Sniffer{validators: validators}
}

// Process reads r in fixed ChunkSize chunks, feeding each chunk to every
// live validator and evicting any that return an error. It stops early
// once the live set is empty. An I/O read failure (anything other than
// io.EOF) aborts the pass and is returned to the caller.
func (s *Sniffer) Process(r io.Reader) error {
	buf := make([]byte, ChunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			s.processChunk(buf[:n])
		}
		if len(s.validators) == 0 {
			return nil
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
	}
}

func (s *Sniffer) processChunk(chunk []byte) {
	live := s.validators[:0]
	for _, v := range s.validators {
		if err := v.TryProcessChunk(chunk); err != nil {
			if s.OnEvict != nil {
				s.OnEvict(v.Label(), err)
			}
			continue
		}
		live = append(live, v)
	}
	s.validators = live
}

// Dialects consumes the sniffer's surviving validators and returns their
// finalized dialects.
func (s *Sniffer) Dialects() []dialect.Dialect {
	out := make([]dialect.Dialect, 0, len(s.validators))
	for _, v := range s.validators {
		if d, ok := v.Finalize(); ok {
			out = append(out, d)
		}
	}
	s.validators = nil
	return out
}
