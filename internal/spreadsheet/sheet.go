package spreadsheet

import (
	"fmt"
	"strings"
	"time"

	"github.com/dell121212/laberaer/pkg/domain"
)

// TimestampLayout renders timestamps the way zh-CN spreadsheets show them.
const TimestampLayout = "2006/1/2 15:04:05"

// China Standard Time; fixed so rendering does not depend on tzdata.
var cst = time.FixedZone("CST", 8*60*60)

// FormatTimestamp renders t in China Standard Time. The zero time renders empty.
func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(cst).Format(TimestampLayout)
}

// Column maps one record field to a sheet column.
type Column[T any] struct {
	// Header is the localized header written on export.
	Header string
	// Names are canonical field names accepted on import.
	Names []string
	// Default applies when neither the header nor a name matches.
	Default string
	// Example is the template value.
	Example string
	// ExportOnly columns are written but never read back.
	ExportOnly bool
	Get        func(T) string
	Set        func(*T, string) error
}

// Resolvers returns the ordered field resolution chain: localized header,
// canonical names, default.
func (c Column[T]) Resolvers() []Resolver {
	return []Resolver{ByHeader(c.Header), ByName(c.Names...), Fallback(c.Default)}
}

func (c Column[T]) importable() bool { return !c.ExportOnly && c.Set != nil }

// Draft is a parsed record together with its 1-based data row.
type Draft[T any] struct {
	Row   int
	Value T
}

// Sheet describes the tabular form of one entity type.
type Sheet[T any] struct {
	Entity  domain.EntityType
	Label   string
	Columns []Column[T]
}

// Headers returns every header in column order.
func (s Sheet[T]) Headers() []string {
	out := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		out[i] = c.Header
	}
	return out
}

// Export renders records as a table, one row per record in input order.
func (s Sheet[T]) Export(records []T) Table {
	t := Table{Headers: s.Headers(), Rows: make([][]string, 0, len(records))}
	for _, rec := range records {
		row := make([]string, len(s.Columns))
		for i, c := range s.Columns {
			row[i] = c.Get(rec)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// Template returns the importable headers with exactly one example row.
func (s Sheet[T]) Template() Table {
	var t Table
	var example []string
	for _, c := range s.Columns {
		if !c.importable() {
			continue
		}
		t.Headers = append(t.Headers, c.Header)
		example = append(example, c.Example)
	}
	t.Rows = [][]string{example}
	return t
}

// Parse resolves every importable column of each row into a draft and
// validates it. Invalid rows are reported and skipped; the rest are returned
// in row order.
func (s Sheet[T]) Parse(rows []Row) ([]Draft[T], []domain.RowError) {
	var drafts []Draft[T]
	var rowErrs []domain.RowError
	for i, row := range rows {
		index := i + 1
		value, err := s.parseRow(row)
		if err != nil {
			rowErrs = append(rowErrs, domain.RowError{Row: index, Reason: err.Error()})
			continue
		}
		drafts = append(drafts, Draft[T]{Row: index, Value: value})
	}
	return drafts, rowErrs
}

func (s Sheet[T]) parseRow(row Row) (T, error) {
	var value T
	var problems []string
	for _, c := range s.Columns {
		if !c.importable() {
			continue
		}
		if err := c.Set(&value, Resolve(row, c.Resolvers()...)); err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", c.Header, err))
		}
	}
	if len(problems) > 0 {
		return value, fmt.Errorf("%s", strings.Join(problems, "; "))
	}
	if err := domain.Validate(s.Entity, value); err != nil {
		return value, err
	}
	return value, nil
}

// Text builds a plain string column.
func Text[T any](header string, names []string, field func(*T) *string) Column[T] {
	return Column[T]{
		Header: header,
		Names:  names,
		Get:    func(rec T) string { return *field(&rec) },
		Set: func(rec *T, v string) error {
			*field(rec) = v
			return nil
		},
	}
}

// List builds a comma-joined list column.
func List[T any](header string, names []string, field func(*T) *[]string) Column[T] {
	return Column[T]{
		Header: header,
		Names:  names,
		Get:    func(rec T) string { return JoinList(*field(&rec)) },
		Set: func(rec *T, v string) error {
			*field(rec) = SplitList(v)
			return nil
		},
	}
}

// Timestamp builds an export-only timestamp column.
func Timestamp[T any](header string, field func(T) time.Time) Column[T] {
	return Column[T]{
		Header:     header,
		ExportOnly: true,
		Get:        func(rec T) string { return FormatTimestamp(field(rec)) },
	}
}

// Enum is a closed set of canonical values with localized labels.
type Enum struct {
	values []string
	labels map[string]string
}

// NewEnum pairs canonical values with labels: NewEnum("liquid", "液体", ...).
func NewEnum(pairs ...string) Enum {
	e := Enum{labels: make(map[string]string, len(pairs)/2)}
	for i := 0; i+1 < len(pairs); i += 2 {
		e.values = append(e.values, pairs[i])
		e.labels[pairs[i]] = pairs[i+1]
	}
	return e
}

// Label returns the localized label; unknown values pass through.
func (e Enum) Label(v string) string {
	if l, ok := e.labels[v]; ok {
		return l
	}
	return v
}

// Parse accepts a canonical value or a label, ignoring case and width.
func (e Enum) Parse(s string) (string, error) {
	key := NormalizeHeader(s)
	for _, v := range e.values {
		if key == NormalizeHeader(v) || key == NormalizeHeader(e.labels[v]) {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown value %q", s)
}
