package spreadsheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Format names a spreadsheet file format.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// ErrUnsupportedFormat rejects file types no codec handles.
var ErrUnsupportedFormat = errors.New("spreadsheet: unsupported file format")

// Codec converts tables to and from file bytes.
type Codec interface {
	Encode(Table) ([]byte, error)
	Decode([]byte) (Table, error)
	Format() Format
	ContentType() string
}

// ForFormat returns the codec for a format name such as "xlsx".
func ForFormat(name string) (Codec, error) {
	switch Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), "."))) {
	case FormatXLSX, "":
		return XLSX{}, nil
	case FormatCSV:
		return CSV{}, nil
	case "xls":
		return nil, fmt.Errorf("%w: legacy .xls workbooks, save the file as .xlsx", ErrUnsupportedFormat)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
}

// ForFilename selects the codec by file extension.
func ForFilename(name string) (Codec, error) {
	ext := filepath.Ext(name)
	if ext == "" {
		return nil, fmt.Errorf("%w: %s has no extension", ErrUnsupportedFormat, name)
	}
	return ForFormat(ext)
}

// XLSX reads and writes the first worksheet of an Office Open XML workbook.
type XLSX struct {
	// SheetName names the written worksheet; empty keeps excelize's default.
	SheetName string
}

func (XLSX) Format() Format      { return FormatXLSX }
func (XLSX) ContentType() string { return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" }

func (x XLSX) Encode(t Table) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	sheet := f.GetSheetName(0)
	if x.SheetName != "" && x.SheetName != sheet {
		if err := f.SetSheetName(sheet, x.SheetName); err != nil {
			return nil, fmt.Errorf("name sheet: %w", err)
		}
		sheet = x.SheetName
	}
	rows := append([][]string{t.Headers}, t.Rows...)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		values := make([]any, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func (XLSX) Decode(b []byte) (Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(b))
	if err != nil {
		return Table{}, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Table{}, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return Table{}, fmt.Errorf("read %s: %w", sheets[0], err)
	}
	return tableFrom(rows), nil
}

// CSV reads and writes comma separated UTF-8 text. Encode prefixes a byte
// order mark so spreadsheet programs detect the encoding.
type CSV struct{}

const bom = "\ufeff"

func (CSV) Format() Format      { return FormatCSV }
func (CSV) ContentType() string { return "text/csv; charset=utf-8" }

func (CSV) Encode(t Table) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(bom)
	w := csv.NewWriter(&buf)
	if err := w.Write(t.Headers); err != nil {
		return nil, err
	}
	if err := w.WriteAll(t.Rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (CSV) Decode(b []byte) (Table, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(b, []byte(bom))))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return Table{}, fmt.Errorf("read csv: %w", err)
	}
	return tableFrom(rows), nil
}

// tableFrom splits off the header row and drops blank data rows.
func tableFrom(rows [][]string) Table {
	if len(rows) == 0 {
		return Table{}
	}
	t := Table{Headers: rows[0]}
	for _, row := range rows[1:] {
		if blank(row) {
			continue
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
