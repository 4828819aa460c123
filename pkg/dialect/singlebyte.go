package dialect

import "unicode/utf8"

// SingleByte is the immutable record produced by finalizing a
// SingleByteValidator (see pkg/sniff/singlebyte).
type SingleByte struct {
	// Header is the ordered sequence of column names, or nil if no
	// header row was detected.
	Header []string

	FieldSeparator byte
	// QuoteChar and EscapeChar are nil when the dialect hypothesis has
	// no quoting/escaping enabled.
	QuoteChar  *byte
	EscapeChar *byte

	// EmptyColumns[i] is true iff column i was empty in every data row.
	EmptyColumns []bool
	// NumericColumns[i] is true iff column i held only ASCII digits in
	// every data row.
	NumericColumns []bool

	RecordTerminator RecordTerminator

	// FieldSeparatorIsTerminator is true when every row ends with a
	// trailing separator, producing a phantom last column that was
	// popped during finalize.
	FieldSeparatorIsTerminator bool
	HasEscapedLineBreaks       bool
	HasQuotedLineBreaks        bool

	// TotalRows is the count of data rows consumed, excluding the
	// header row if one was detected.
	TotalRows int
}

// numericNonEmptyColumns counts columns that are numeric in every data
// row and are not entirely empty — signal 3 of the ranking order.
func numericNonEmptyColumns(d *SingleByte) int {
	n := 0
	for i, numeric := range d.NumericColumns {
		if !numeric {
			continue
		}
		if i < len(d.EmptyColumns) && d.EmptyColumns[i] {
			continue
		}
		n++
	}
	return n
}

// hasLongHeader reports whether any header cell exceeds 100 Unicode
// characters (signal 6 of the ordering).
func hasLongHeader(d *SingleByte) bool {
	for _, h := range d.Header {
		if utf8.RuneCountInString(h) > 100 {
			return true
		}
	}
	return false
}

// lessSingleByte implements the nine-signal total order used to rank
// surviving SingleByte hypotheses. Ranking picks the maximum under this
// order, so lessSingleByte(a, b) true means b wins a head-to-head
// comparison.
func lessSingleByte(a, b *SingleByte) bool {
	// 1. header presence: has_header > no_header
	aHdr, bHdr := a.Header != nil, b.Header != nil
	if aHdr != bHdr {
		return !aHdr
	}

	// 2. field_separator_is_terminator: true is greater
	if a.FieldSeparatorIsTerminator != b.FieldSeparatorIsTerminator {
		return !a.FieldSeparatorIsTerminator
	}

	// 3. more numeric-and-non-empty columns is greater
	aNum, bNum := numericNonEmptyColumns(a), numericNonEmptyColumns(b)
	if aNum != bNum {
		return aNum < bNum
	}

	// 4. has_escaped_line_breaks: false is greater
	if a.HasEscapedLineBreaks != b.HasEscapedLineBreaks {
		return a.HasEscapedLineBreaks
	}

	// 5. has_quoted_line_breaks: false is greater
	if a.HasQuotedLineBreaks != b.HasQuotedLineBreaks {
		return a.HasQuotedLineBreaks
	}

	// 6. long-header avoidance: no long header is greater
	aLong, bLong := hasLongHeader(a), hasLongHeader(b)
	if aLong != bLong {
		return aLong
	}

	// 7. more total_rows is greater
	if a.TotalRows != b.TotalRows {
		return a.TotalRows < b.TotalRows
	}

	// 8. CRLF is greater than any other terminator
	aCRLF := a.RecordTerminator.Kind == TerminatorCRLF
	bCRLF := b.RecordTerminator.Kind == TerminatorCRLF
	if aCRLF != bCRLF {
		return !aCRLF
	}

	// 9. otherwise equal
	return false
}
