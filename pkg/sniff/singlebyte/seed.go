package singlebyte

import (
	"fmt"

	"github.com/nullbyte-dev/csv2asv/pkg/dialect"
	"github.com/nullbyte-dev/csv2asv/pkg/sniff"
)

// seedConfig is the fixed configuration half of a Validator — the part
// that make() clones and mutates across its expansion stages, before any
// byte has been seen.
type seedConfig struct {
	quoteChar           *byte
	escapeChar          *byte
	fieldSeparator      byte
	recordTerminator    dialect.RecordTerminator
	hasQuotedLineBreaks bool
	hasHeadersUser      *bool
}

// expand doubles cfgs: every existing entry survives unmodified, and a
// mutated clone of it is appended.
func expand(cfgs []seedConfig, mutate func(*seedConfig)) []seedConfig {
	out := make([]seedConfig, len(cfgs), len(cfgs)*2)
	copy(out, cfgs)
	for _, c := range cfgs {
		mutate(&c)
		out = append(out, c)
	}
	return out
}

// expandValues is expand's multi-value form, used for quote_char,
// field_separator and record_terminator, each of which fans every
// existing entry out across several candidate values.
func expandValues[T any](cfgs []seedConfig, values []T, mutate func(*seedConfig, T)) []seedConfig {
	out := make([]seedConfig, len(cfgs), len(cfgs)*(1+len(values)))
	copy(out, cfgs)
	for _, c := range cfgs {
		for _, val := range values {
			c2 := c
			mutate(&c2, val)
			out = append(out, c2)
		}
	}
	return out
}

// Seed reproduces make()'s hypothesis expansion verbatim, including its
// back-to-back has_quoted_line_breaks stage (a likely upstream bug, left
// as-is rather than silently fixed), then de-duplicates the result: the
// two identical stages leave three copies of the has_quoted_line_breaks=
// true branch instead of one, which collapse back down to a single
// reachable hypothesis.
func Seed(hasHeaders *bool) []sniff.Validator {
	cfgs := []seedConfig{{
		recordTerminator: dialect.CRLF,
		hasHeadersUser:   hasHeaders,
	}}

	cfgs = expand(cfgs, func(c *seedConfig) { c.hasQuotedLineBreaks = true })
	cfgs = expand(cfgs, func(c *seedConfig) { c.hasQuotedLineBreaks = true })

	backslash := byte('\\')
	cfgs = expand(cfgs, func(c *seedConfig) { c.escapeChar = &backslash })

	cfgs = expandValues(cfgs, []byte{'"', '\''}, func(c *seedConfig, q byte) {
		qq := q
		c.quoteChar = &qq
	})

	cfgs = expandValues(cfgs, []byte{'\t', ',', ';', '|', ':'}, func(c *seedConfig, sep byte) {
		c.fieldSeparator = sep
	})

	cfgs = expandValues(cfgs, []dialect.RecordTerminator{dialect.ByteTerminator('\n')}, func(c *seedConfig, t dialect.RecordTerminator) {
		c.recordTerminator = t
	})

	cfgs = dedupeConfigs(cfgs)

	validators := make([]sniff.Validator, 0, len(cfgs))
	for _, c := range cfgs {
		v := newValidator(c)
		v.label = labelFor(c)
		validators = append(validators, v)
	}
	return validators
}

func dedupeConfigs(cfgs []seedConfig) []seedConfig {
	seen := make(map[string]struct{}, len(cfgs))
	out := make([]seedConfig, 0, len(cfgs))
	for _, c := range cfgs {
		key := configKey(c)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return out
}

func configKey(c seedConfig) string {
	quote := "-"
	if c.quoteChar != nil {
		quote = string(*c.quoteChar)
	}
	escape := "-"
	if c.escapeChar != nil {
		escape = string(*c.escapeChar)
	}
	headers := "nil"
	if c.hasHeadersUser != nil {
		headers = fmt.Sprintf("%v", *c.hasHeadersUser)
	}
	return fmt.Sprintf("%s|%s|%q|%s|%v|%s", quote, escape, c.fieldSeparator, c.recordTerminator.String(), c.hasQuotedLineBreaks, headers)
}
