// Package keyvalue implements the KeyValue dialect family's detector: a
// single fixed-separator (':') line validator.
package keyvalue

import (
	"errors"

	"github.com/nullbyte-dev/csv2asv/pkg/csverr"
	"github.com/nullbyte-dev/csv2asv/pkg/dialect"
)

const maxCellBytes = 512
const allBrokenAbortThreshold = 10000

var (
	errOnlyOneColumn = errors.New("only one column found")
	errCellTooLong   = errors.New("cell value too long")
	errAllBroken     = errors.New("10k rows analyzed, 3+ columns detected")
)

// Validator is the sole KeyValue hypothesis — unlike SingleByte there is
// nothing to seed, make() always returns exactly one validator with
// field_separator fixed to ':'.
type Validator struct {
	fieldSeparator byte

	brokenRows int

	currentRow      int
	currentCol      int
	currentCellByte int
	currentByte     int64
}

// Seed builds the sole KeyValue hypothesis: a single validator, field
// separator fixed to ':'.
func Seed() *Validator {
	return &Validator{fieldSeparator: ':'}
}

func (v *Validator) Label() string { return "keyvalue(sep=':')" }

func (v *Validator) TryProcessChunk(chunk []byte) error {
	for pos, c := range chunk {
		if err := v.tryProcessByte(c); err != nil {
			return csverr.NewStructural(err.Error(), v.currentRow, v.currentCol, v.currentByte, chunk, pos)
		}
		v.currentByte++
	}
	return nil
}

func (v *Validator) tryProcessByte(c byte) error {
	consumed, err := v.tryNextRow(c)
	if err != nil {
		return err
	}
	if consumed {
		return nil
	}

	consumed, err = v.tryNextField(c)
	if err != nil {
		return err
	}
	if consumed {
		return nil
	}

	return v.tryNextChar(c)
}

// tryNextRow silently consumes '\r' (never ending anything on it) and
// ends the row on '\n'.
func (v *Validator) tryNextRow(c byte) (bool, error) {
	switch c {
	case '\r':
		return true, nil
	case '\n':
		if err := v.endRow(); err != nil {
			return false, err
		}
		return true, nil
	default:
		return false, nil
	}
}

func (v *Validator) tryNextField(c byte) (bool, error) {
	if c != v.fieldSeparator {
		return false, nil
	}
	v.endField()
	return true, nil
}

func (v *Validator) tryNextChar(byte) error {
	v.currentCellByte++
	if v.currentCellByte > maxCellBytes {
		return errCellTooLong
	}
	return nil
}

func (v *Validator) endField() {
	v.currentCellByte = 0
	v.currentCol++
}

// endRow: a row with no separator at all is fatal; a row with more than
// one separator (3+ columns) is merely "broken" and counted, not
// rejected, unless broken rows have made up the entire stream seen so
// far past the 10k-row threshold.
func (v *Validator) endRow() error {
	if v.currentCol == 0 {
		return errOnlyOneColumn
	}
	if v.currentCol != 1 {
		v.brokenRows++
	}

	v.currentCol = 0
	v.currentRow++

	if v.brokenRows == v.currentRow && v.brokenRows > allBrokenAbortThreshold {
		return errAllBroken
	}
	return nil
}

// Finalize builds the dialect record for a surviving hypothesis: it only
// survives if strictly more than half of the rows seen were clean
// key:value pairs.
func (v *Validator) Finalize() (dialect.Dialect, bool) {
	if v.brokenRows*2 >= v.currentRow {
		return dialect.Dialect{}, false
	}
	d := &dialect.KeyValue{
		FieldSeparator: v.fieldSeparator,
		TotalRows:      v.currentRow,
	}
	return dialect.FromKeyValue(d), true
}
