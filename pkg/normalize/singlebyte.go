// Package normalize implements the second pipeline pass: replaying the
// original byte stream through the winning dialect's own state machine
// to emit ASV (0x1F field separator, 0x1E record separator).
package normalize

import (
	"bufio"
	"bytes"
	"io"

	"github.com/nullbyte-dev/csv2asv/pkg/dialect"
)

const chunkSize = 16 * 1024 * 1024 // 16 MiB

const (
	fieldSep  = 0x1F
	recordSep = 0x1E
)

const noHeaderPlaceholder = "__NO_HEADER__\x1f"

// SingleByteNormalizer replays a stream against a winning SingleByte
// dialect, writing ASV to w.
type SingleByteNormalizer struct {
	d *dialect.SingleByte

	w *bufio.Writer

	escapeActive  bool
	quoteActive   bool
	currentColumn int
	prevCharWasCR bool
	isFirstRow    bool
}

// NewSingleByteNormalizer builds a normalizer for d.
func NewSingleByteNormalizer(d *dialect.SingleByte) *SingleByteNormalizer {
	return &SingleByteNormalizer{d: d, isFirstRow: true}
}

// Normalize streams r through the dialect's state machine, writing ASV
// output to w.
func (n *SingleByteNormalizer) Normalize(r io.Reader, w io.Writer) error {
	n.w = bufio.NewWriterSize(w, 64*1024)

	if n.d.Header == nil {
		header := bytes.Repeat([]byte(noHeaderPlaceholder), len(n.d.EmptyColumns))
		if len(header) > 0 {
			header[len(header)-1] = recordSep
		}
		if _, err := n.w.Write(header); err != nil {
			return err
		}
	}

	buf := make([]byte, chunkSize)
	for {
		nRead, err := r.Read(buf)
		if nRead > 0 {
			if perr := n.processChunk(buf[:nRead]); perr != nil {
				return perr
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if nRead == 0 {
			break
		}
	}

	return n.w.Flush()
}

func (n *SingleByteNormalizer) processChunk(chunk []byte) error {
	for _, c := range chunk {
		if n.d.HasEscapedLineBreaks {
			consumed, err := n.tryEscape(c)
			if err != nil {
				return err
			}
			if consumed {
				continue
			}
		}
		if n.d.HasQuotedLineBreaks {
			consumed, err := n.tryQuote(c)
			if err != nil {
				return err
			}
			if consumed {
				continue
			}
		}

		consumed, err := n.tryNextRow(c)
		if err != nil {
			return err
		}
		if consumed {
			continue
		}

		if !n.d.HasEscapedLineBreaks {
			consumed, err := n.tryEscape(c)
			if err != nil {
				return err
			}
			if consumed {
				continue
			}
		}
		if !n.d.HasQuotedLineBreaks {
			consumed, err := n.tryQuote(c)
			if err != nil {
				return err
			}
			if consumed {
				continue
			}
		}

		consumed, err = n.tryNextField(c)
		if err != nil {
			return err
		}
		if consumed {
			continue
		}

		if err := n.tryNextChar(c); err != nil {
			return err
		}
	}
	return nil
}

func (n *SingleByteNormalizer) tryEscape(c byte) (bool, error) {
	if n.escapeActive {
		n.escapeActive = false
		if err := n.w.WriteByte(c); err != nil {
			return false, err
		}
		return true, nil
	}
	if n.d.EscapeChar != nil && c == *n.d.EscapeChar {
		n.escapeActive = true
		return true, nil
	}
	return false, nil
}

func (n *SingleByteNormalizer) tryQuote(c byte) (bool, error) {
	if n.d.QuoteChar == nil {
		return false, nil
	}
	wasActive := n.quoteActive
	if c == *n.d.QuoteChar {
		n.quoteActive = !n.quoteActive
		return true, nil
	}
	if wasActive {
		if err := n.w.WriteByte(c); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

func (n *SingleByteNormalizer) tryNextRow(c byte) (bool, error) {
	isBreak := false
	if n.d.RecordTerminator.Kind == dialect.TerminatorByte {
		isBreak = c == n.d.RecordTerminator.Byte
	} else {
		switch {
		case c == '\r':
			n.prevCharWasCR = true
			return true, nil
		case c == '\n' && n.prevCharWasCR:
			n.prevCharWasCR = false
			isBreak = true
		default:
			n.prevCharWasCR = false
			isBreak = false
		}
	}

	if isBreak {
		if err := n.endRow(); err != nil {
			return false, err
		}
	}
	return isBreak, nil
}

func (n *SingleByteNormalizer) tryNextField(c byte) (bool, error) {
	if c != n.d.FieldSeparator {
		return false, nil
	}
	if err := n.endField(); err != nil {
		return false, err
	}
	return true, nil
}

func (n *SingleByteNormalizer) tryNextChar(c byte) error {
	if n.isFirstRow && !n.shouldEmitCurrentColumn() {
		return nil
	}
	return n.w.WriteByte(c)
}

func (n *SingleByteNormalizer) shouldEmitCurrentColumn() bool {
	if n.currentColumn >= len(n.d.EmptyColumns) {
		return false
	}
	return !n.d.EmptyColumns[n.currentColumn]
}

func (n *SingleByteNormalizer) endField() error {
	n.quoteActive = false
	n.escapeActive = false

	shouldEmit := n.shouldEmitCurrentColumn()
	n.currentColumn++

	if n.currentColumn == len(n.d.EmptyColumns) {
		return nil
	}
	if shouldEmit {
		return n.w.WriteByte(fieldSep)
	}
	return nil
}

func (n *SingleByteNormalizer) endRow() error {
	if err := n.endField(); err != nil {
		return err
	}
	n.prevCharWasCR = false
	n.currentColumn = 0
	n.isFirstRow = false
	return n.w.WriteByte(recordSep)
}
