package normalize

import (
	"bufio"
	"io"

	"github.com/nullbyte-dev/csv2asv/pkg/dialect"
)

const keyValueHeader = "login\x1fpassword\x1e"

// KeyValueNormalizer replays a stream against a winning KeyValue
// dialect, writing ASV to w. Unlike SingleByte the header is a fixed
// constant, not derived from the data.
type KeyValueNormalizer struct {
	d *dialect.KeyValue

	w *bufio.Writer

	currentColumn int
}

func NewKeyValueNormalizer(d *dialect.KeyValue) *KeyValueNormalizer {
	return &KeyValueNormalizer{d: d}
}

func (n *KeyValueNormalizer) Normalize(r io.Reader, w io.Writer) error {
	n.w = bufio.NewWriterSize(w, 64*1024)

	if _, err := n.w.WriteString(keyValueHeader); err != nil {
		return err
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

func (n *KeyValueNormalizer) processChunk(chunk []byte) error {
	for _, c := range chunk {
		consumed, err := n.tryNextRow(c)
		if err != nil {
			return err
		}
		if consumed {
			continue
		}

		consumed, err = n.tryNextField(c)
		if err != nil {
			return err
		}
		if consumed {
			continue
		}

		if err := n.w.WriteByte(c); err != nil {
			return err
		}
	}
	return nil
}

func (n *KeyValueNormalizer) tryNextRow(c byte) (bool, error) {
	switch c {
	case '\r':
		return true, nil
	case '\n':
		if err := n.endRow(); err != nil {
			return false, err
		}
		return true, nil
	default:
		return false, nil
	}
}

// tryNextField only consumes the first separator byte of a row; any later
// one (a broken 3+-column row) is left to be written through literally.
func (n *KeyValueNormalizer) tryNextField(c byte) (bool, error) {
	if c != n.d.FieldSeparator || n.currentColumn != 0 {
		return false, nil
	}
	if err := n.endField(); err != nil {
		return false, err
	}
	return true, nil
}

// endField emits the field separator only once per row, on the transition
// from the first column to the second.
func (n *KeyValueNormalizer) endField() error {
	if n.currentColumn == 0 {
		if err := n.w.WriteByte(fieldSep); err != nil {
			return err
		}
		n.currentColumn = 1
	}
	return nil
}

func (n *KeyValueNormalizer) endRow() error {
	n.currentColumn = 0
	return n.w.WriteByte(recordSep)
}
