// Package spreadsheet maps entity records to and from tabular sheets with
// localized headers, and encodes those tables as xlsx or csv files.
package spreadsheet

import (
	"strings"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// Table is a decoded sheet: one header row followed by data rows. Rows may
// be shorter than Headers; missing cells read as empty.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Records pairs every data row with the headers.
func (t Table) Records() []Row {
	out := make([]Row, 0, len(t.Rows))
	for _, cells := range t.Rows {
		out = append(out, NewRow(t.Headers, cells))
	}
	return out
}

// Row is one data row keyed by normalized header.
type Row map[string]string

// NewRow builds a Row from parallel header and cell slices. Blank headers are
// ignored; on duplicate headers the first non-empty cell wins.
func NewRow(headers, cells []string) Row {
	row := make(Row, len(headers))
	for i, h := range headers {
		key := NormalizeHeader(h)
		if key == "" {
			continue
		}
		var cell string
		if i < len(cells) {
			cell = cells[i]
		}
		if existing, ok := row[key]; ok && strings.TrimSpace(existing) != "" {
			continue
		}
		row[key] = cell
	}
	return row
}

// NormalizeHeader folds compatibility and full-width forms, trims and
// lower-cases a header so "ｐＨ值 " and "pH值" compare equal.
func NormalizeHeader(h string) string {
	h = norm.NFKC.String(h)
	h = width.Fold.String(h)
	return strings.ToLower(strings.TrimSpace(h))
}

// Resolver extracts one field value from a row.
type Resolver func(Row) (string, bool)

// ByHeader matches the localized header. Blank cells do not match.
func ByHeader(header string) Resolver {
	key := NormalizeHeader(header)
	return func(r Row) (string, bool) {
		v := strings.TrimSpace(r[key])
		return v, v != ""
	}
}

// ByName matches the first canonical field name with a non-blank cell.
func ByName(names ...string) Resolver {
	keys := make([]string, len(names))
	for i, n := range names {
		keys[i] = NormalizeHeader(n)
	}
	return func(r Row) (string, bool) {
		for _, k := range keys {
			if v := strings.TrimSpace(r[k]); v != "" {
				return v, true
			}
		}
		return "", false
	}
}

// Fallback always matches with v.
func Fallback(v string) Resolver {
	return func(Row) (string, bool) { return v, true }
}

// Resolve returns the value of the first matching resolver, or "".
func Resolve(row Row, resolvers ...Resolver) string {
	for _, r := range resolvers {
		if v, ok := r(row); ok {
			return v
		}
	}
	return ""
}

// SplitList splits a list cell on ASCII or full-width commas, trimming tokens
// and dropping empty ones.
func SplitList(cell string) []string {
	fields := strings.FieldsFunc(cell, func(r rune) bool { return r == ',' || r == '，' })
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// JoinList is the inverse of SplitList.
func JoinList(items []string) string {
	return strings.Join(items, ",")
}
