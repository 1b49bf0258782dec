// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package csvio implements the delimited file format used by the bulk
// import/export tools: comma-separated fields with double-quote quoting
// and doubled-quote escaping, plus semicolon-joined list fields. The
// parser is deliberately forgiving — blank lines are skipped, short
// rows are padded, unknown columns pass through untouched.
package csvio

import (
	"fmt"
	"io"
	"strings"
)

// Record is one parsed data row keyed by the header columns.
// Row is the 1-based data row number, header excluded, used to key
// validation messages back to the uploaded file.
type Record struct {
	Row    int
	Fields map[string]string
}

// Get returns the value of a column, or "" when the column is absent.
func (r Record) Get(column string) string {
	return r.Fields[column]
}

// Parse reads a delimited file: the first non-blank record is the
// header, every following non-blank record becomes a Record keyed by
// header column. Rows shorter than the header read as empty strings
// for the missing columns; extra cells are dropped.
func Parse(r io.Reader) (header []string, records []Record, err error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("read csv: %w", err)
	}

	rows, err := splitRecords(string(data))
	if err != nil {
		return nil, nil, err
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("csv file has no header row")
	}

	header = rows[0]
	for i, cells := range rows[1:] {
		fields := make(map[string]string, len(header))
		for c, name := range header {
			if c < len(cells) {
				fields[name] = cells[c]
			} else {
				fields[name] = ""
			}
		}
		records = append(records, Record{Row: i + 1, Fields: fields})
	}
	return header, records, nil
}

// splitRecords walks the input once, tracking quote state so commas
// and newlines inside quoted fields do not split. Doubled quotes
// inside a quoted field decode to one literal quote.
func splitRecords(input string) ([][]string, error) {
	var (
		rows     [][]string
		fields   []string
		field    strings.Builder
		inQuotes bool
		hasData  bool // current record saw any non-empty content
	)

	flushField := func() {
		fields = append(fields, field.String())
		if field.Len() > 0 {
			hasData = true
		}
		field.Reset()
	}
	flushRecord := func() {
		flushField()
		if hasData {
			rows = append(rows, fields)
		}
		fields = nil
		hasData = false
	}

	runes := []rune(input)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		switch {
		case ch == '"':
			if inQuotes {
				if i+1 < len(runes) && runes[i+1] == '"' {
					// Doubled quote inside a quoted field.
					field.WriteRune('"')
					i++
				} else {
					inQuotes = false
				}
			} else {
				inQuotes = true
				hasData = true // quoted empty string still counts as content
			}
		case ch == ',' && !inQuotes:
			flushField()
		case (ch == '\n' || ch == '\r') && !inQuotes:
			if ch == '\r' && i+1 < len(runes) && runes[i+1] == '\n' {
				i++
			}
			flushRecord()
		default:
			field.WriteRune(ch)
		}
	}
	if inQuotes {
		return nil, fmt.Errorf("unterminated quoted field")
	}
	flushRecord()

	return rows, nil
}

// Escape wraps a field in double quotes when it contains a comma,
// quote, or newline, doubling any embedded quotes.
func Escape(field string) string {
	if !strings.ContainsAny(field, ",\"\n\r") {
		return field
	}
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}

// Write serializes a header and rows in the import-compatible format.
func Write(w io.Writer, header []string, rows [][]string) error {
	var b strings.Builder
	writeRow := func(cells []string) {
		for i, cell := range cells {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(Escape(cell))
		}
		b.WriteByte('\n')
	}

	writeRow(header)
	for _, row := range rows {
		writeRow(row)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// SplitList splits a semicolon-joined multi-value field, trimming
// whitespace and dropping empty entries.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ";") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// JoinList joins list values with semicolons for export.
func JoinList(values []string) string {
	return strings.Join(values, ";")
}
