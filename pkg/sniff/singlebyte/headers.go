package singlebyte

import (
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
)

// knownHeaders is the fixed header vocabulary: any decoded first row
// containing one of these strings is assumed to be a header regardless
// of the other heuristics below.
var knownHeaders = map[string]bool{
	"email":          true,
	"id":             true,
	"full_name":      true,
	"phone_number":   true,
	"address":        true,
	"phone":          true,
	"password":       true,
	"first_name":     true,
	"fio":            true,
	"адрес":          true,
	"date_of_birth":  true,
	"time":           true,
	"status":         true,
	"city":           true,
	"admin":          true,
	"country":        true,
	"created_at":     true,
	"gender":         true,
	"instagram":      true,
	"ip":             true,
	"last_name":      true,
	"lastname":       true,
	"vip":            true,
	"work":           true,
	"телефон":        true,
}

// tryGetHeaders returns nil whenever the first row cannot be decoded to
// text at all, when the caller forced headers off, or when none of the
// header heuristics fire.
func (v *Validator) tryGetHeaders() []string {
	header, ok := decodeFirstRow(v.firstRow)
	if !ok {
		return nil
	}

	if v.hasHeadersUser != nil {
		if *v.hasHeadersUser {
			return header
		}
		return nil
	}

	for _, h := range header {
		if knownHeaders[h] {
			return header
		}
	}

	for colID, h := range header {
		colMin, colMax := v.colMinLen[colID], v.colMaxLen[colID]
		l := len(h)
		if l < colMin || l > colMax {
			return header
		}
	}

	for colID, isAscii := range v.asciiColumns {
		if isAscii && !isASCIIBytes(v.firstRow[colID]) {
			return header
		}
	}

	for colID, isNumeric := range v.numericColumns {
		if isNumeric && !allASCIIDigits(header[colID]) {
			return header
		}
	}

	return nil
}

// decodeFirstRow decodes every captured cell as UTF-8, falling back to
// charset sniffing for cells that aren't valid UTF-8 on their own. A
// single undecodable cell fails the whole row, all or nothing.
func decodeFirstRow(firstRow [][]byte) ([]string, bool) {
	out := make([]string, len(firstRow))
	for i, raw := range firstRow {
		if utf8.Valid(raw) {
			out[i] = string(raw)
			continue
		}
		decoded, ok := decodeNonUTF8(raw)
		if !ok {
			return nil, false
		}
		out[i] = decoded
	}
	return out, true
}

func decodeNonUTF8(raw []byte) (string, bool) {
	var enc encoding.Encoding
	enc, _, _ = charset.DetermineEncoding(raw, "")
	if enc == nil {
		return "", false
	}
	decoded, err := enc.NewDecoder().Bytes(raw)
	if err != nil || !utf8.Valid(decoded) {
		return "", false
	}
	return string(decoded), true
}

func isASCIIBytes(b []byte) bool {
	for _, c := range b {
		if c >= 0x80 {
			return false
		}
	}
	return true
}

func allASCIIDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
