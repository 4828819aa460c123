// Package singlebyte implements the SingleByte dialect family's detector:
// a per-byte state machine seeded into many candidate hypotheses (quote
// char, escape char, field separator, record terminator, quoted-line-break
// tolerance).
package singlebyte

import (
	"fmt"

	"github.com/nullbyte-dev/csv2asv/pkg/csverr"
	"github.com/nullbyte-dev/csv2asv/pkg/dialect"
)

const maxCellBytes = 10 * 1024 * 1024
const maxColumns = 5000

// Validator is one candidate SingleByte dialect hypothesis. Its exported
// methods implement sniff.Validator.
type Validator struct {
	label string

	// configuration, fixed for the validator's lifetime
	quoteChar           *byte
	escapeChar          *byte
	fieldSeparator      byte
	recordTerminator    dialect.RecordTerminator
	hasQuotedLineBreaks bool
	hasHeadersUser      *bool

	// per-byte machine state
	quoteActive   bool
	escapeActive  bool
	prevCharWasCR bool

	currentCellIsNumeric bool
	currentCellIsAscii   bool
	currentCellByte      int

	currentRow  int
	currentCol  int
	currentByte int64

	hasEscapedLineBreaks bool

	fieldSeparatorIsTerminator bool

	firstRow       [][]byte
	asciiColumns   []bool
	numericColumns []bool
	colMinLen      []int
	colMaxLen      []int
}

func newValidator(c seedConfig) *Validator {
	v := &Validator{
		quoteChar:           c.quoteChar,
		escapeChar:          c.escapeChar,
		fieldSeparator:      c.fieldSeparator,
		recordTerminator:    c.recordTerminator,
		hasQuotedLineBreaks: c.hasQuotedLineBreaks,
		hasHeadersUser:      c.hasHeadersUser,
	}
	v.pushFirstRowCell()
	return v
}

func (v *Validator) Label() string { return v.label }

// TryProcessChunk feeds chunk through the per-byte machine, byte by
// byte. Any structural violation evicts the validator — the returned
// error carries a 256-byte window of chunk around the offending byte
// for diagnostics only.
func (v *Validator) TryProcessChunk(chunk []byte) error {
	for pos, c := range chunk {
		if err := v.tryProcessByte(c); err != nil {
			return csverr.NewStructural(err.Error(), v.currentRow, v.currentCol, v.currentByte, chunk, pos)
		}
		v.currentByte++
	}
	return nil
}

// tryProcessByte dispatches a single byte through the state machine's
// fall-through chain, in order: escape, then quote, then row-terminator,
// then field-separator, then ordinary character.
func (v *Validator) tryProcessByte(c byte) error {
	consumed, err := v.tryEscape(c)
	if err != nil {
		return err
	}
	if consumed {
		if !v.hasEscapedLineBreaks {
			if _, err := v.tryNextRow(c); err != nil {
				return err
			}
		}
		return nil
	}

	consumed = v.tryQuote(c)
	if consumed {
		if !v.hasQuotedLineBreaks {
			if _, err := v.tryNextRow(c); err != nil {
				return err
			}
		}
		return nil
	}

	consumed, err = v.tryNextRow(c)
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

// tryEscape: an armed escape consumes the next byte literally, without
// adding it to any cell — escaped/quoted content is never captured,
// only ordinary bytes feed the header/stats arrays.
func (v *Validator) tryEscape(c byte) (bool, error) {
	if v.escapeActive {
		v.escapeActive = false
		return true, nil
	}
	if v.escapeChar != nil && c == *v.escapeChar {
		v.escapeActive = true
		return true, nil
	}
	return false, nil
}

// tryQuote toggles quote state on a matching quote byte and returns
// whether the quote was active BEFORE this byte (the opening quote byte
// therefore falls through to ordinary handling, while every byte
// strictly inside the quoted span, including the closing quote, is
// swallowed).
func (v *Validator) tryQuote(c byte) bool {
	if v.quoteChar == nil {
		return false
	}
	wasActive := v.quoteActive
	if c == *v.quoteChar {
		v.quoteActive = !v.quoteActive
	}
	return wasActive
}

func (v *Validator) tryNextRow(c byte) (bool, error) {
	if v.recordTerminator.Kind == dialect.TerminatorByte {
		if c != v.recordTerminator.Byte {
			return false, nil
		}
		if err := v.endRow(); err != nil {
			return false, err
		}
		return true, nil
	}

	switch {
	case c == '\r':
		v.prevCharWasCR = true
		return true, nil
	case c == '\n' && v.prevCharWasCR:
		v.prevCharWasCR = false
		if err := v.endRow(); err != nil {
			return false, err
		}
		return true, nil
	default:
		v.prevCharWasCR = false
		return false, nil
	}
}

func (v *Validator) tryNextField(c byte) (bool, error) {
	if c != v.fieldSeparator {
		return false, nil
	}
	if err := v.endField(); err != nil {
		return false, err
	}
	return true, nil
}

func (v *Validator) tryNextChar(c byte) error {
	if v.currentRow == 0 {
		v.pushFirstRowChar(c)
	}
	if c < '0' || c > '9' {
		v.currentCellIsNumeric = false
	}
	if c >= 0x80 {
		v.currentCellIsAscii = false
	}
	v.currentCellByte++
	if v.currentCellByte > maxCellBytes {
		return errCellTooLong
	}
	return nil
}

// endField: for row 0 it grows firstRow by one column (the just-finished
// column's captured bytes stay put, and an overlong header row is
// rejected); for later rows it folds the cell's numeric/ascii/length
// facts into the column vectors, rejecting a row that introduces a
// column firstRow never saw.
func (v *Validator) endField() error {
	if v.currentRow != 0 {
		if v.currentCol == len(v.asciiColumns) {
			return errInconsistentRow
		}
		v.asciiColumns[v.currentCol] = v.asciiColumns[v.currentCol] && v.currentCellIsAscii
		v.numericColumns[v.currentCol] = v.numericColumns[v.currentCol] && v.currentCellIsNumeric
		if v.currentCellByte < v.colMinLen[v.currentCol] {
			v.colMinLen[v.currentCol] = v.currentCellByte
		}
		if v.currentCellByte > v.colMaxLen[v.currentCol] {
			v.colMaxLen[v.currentCol] = v.currentCellByte
		}
	} else {
		v.pushFirstRowCell()
		if v.currentCol >= maxColumns {
			return errTooManyColumns
		}
	}

	v.quoteActive = false
	v.escapeActive = false
	v.currentCellIsAscii = true
	v.currentCellIsNumeric = true
	v.currentCellByte = 0
	v.currentCol++
	return nil
}

// endRow: row width is checked against firstRow's column count (except
// for row 0, which is still being measured), and a row with a single
// column is rejected outright.
func (v *Validator) endRow() error {
	if v.currentRow != 0 && v.currentCol != len(v.firstRow)-1 {
		return errMissingColumn
	}
	if v.currentCol == 0 {
		return errOnlyOneColumn
	}

	wasFirstRow := v.currentRow == 0
	if err := v.endField(); err != nil {
		return err
	}
	if wasFirstRow {
		v.popFirstRowCell()
	}

	v.prevCharWasCR = false
	v.currentCol = 0
	v.currentRow++
	return nil
}

func (v *Validator) pushFirstRowChar(c byte) {
	last := len(v.firstRow) - 1
	v.firstRow[last] = append(v.firstRow[last], c)
}

func (v *Validator) pushFirstRowCell() {
	v.firstRow = append(v.firstRow, nil)
	v.asciiColumns = append(v.asciiColumns, true)
	v.numericColumns = append(v.numericColumns, true)
	v.colMinLen = append(v.colMinLen, int(^uint(0)>>1))
	v.colMaxLen = append(v.colMaxLen, 0)
}

func (v *Validator) popFirstRowCell() {
	if len(v.firstRow) == 0 {
		return
	}
	v.firstRow = v.firstRow[:len(v.firstRow)-1]
	v.asciiColumns = v.asciiColumns[:len(v.asciiColumns)-1]
	v.numericColumns = v.numericColumns[:len(v.numericColumns)-1]
	v.colMinLen = v.colMinLen[:len(v.colMinLen)-1]
	v.colMaxLen = v.colMaxLen[:len(v.colMaxLen)-1]
}

// checkFieldSeparatorIsTerminator: when every row's last column is both
// nameless and always empty, the file actually uses the field separator
// as its true terminator and the phantom trailing column is dropped.
func (v *Validator) checkFieldSeparatorIsTerminator() {
	n := len(v.colMaxLen)
	if n == 0 {
		return
	}
	last := n - 1
	if v.colMaxLen[last] == 0 && len(v.firstRow[last]) == 0 {
		v.fieldSeparatorIsTerminator = true
		v.popFirstRowCell()
	}
}

// Finalize builds the dialect record for a surviving hypothesis. A
// validator with every column empty never represents a usable dialect.
func (v *Validator) Finalize() (dialect.Dialect, bool) {
	v.checkFieldSeparatorIsTerminator()

	if len(v.colMaxLen) == 0 {
		return dialect.Dialect{}, false
	}

	emptyColumns := make([]bool, len(v.colMaxLen))
	allEmpty := true
	for i, m := range v.colMaxLen {
		emptyColumns[i] = m == 0
		if m != 0 {
			allEmpty = false
		}
	}
	if allEmpty {
		return dialect.Dialect{}, false
	}

	numericColumns := append([]bool(nil), v.numericColumns...)

	header := v.tryGetHeaders()
	totalRows := v.currentRow
	if header != nil && totalRows > 0 {
		totalRows--
	}

	d := &dialect.SingleByte{
		Header:                     header,
		FieldSeparator:             v.fieldSeparator,
		QuoteChar:                  v.quoteChar,
		EscapeChar:                 v.escapeChar,
		EmptyColumns:               emptyColumns,
		NumericColumns:             numericColumns,
		RecordTerminator:           v.recordTerminator,
		FieldSeparatorIsTerminator: v.fieldSeparatorIsTerminator,
		HasEscapedLineBreaks:       v.hasEscapedLineBreaks,
		HasQuotedLineBreaks:        v.hasQuotedLineBreaks,
		TotalRows:                  totalRows,
	}
	return dialect.FromSingleByte(d), true
}

func labelFor(c seedConfig) string {
	quote := "-"
	if c.quoteChar != nil {
		quote = string(*c.quoteChar)
	}
	escape := "-"
	if c.escapeChar != nil {
		escape = string(*c.escapeChar)
	}
	sep := c.fieldSeparator
	return fmt.Sprintf("singlebyte(sep=%q quote=%s escape=%s term=%s hqlb=%v)",
		sep, quote, escape, c.recordTerminator.String(), c.hasQuotedLineBreaks)
}
