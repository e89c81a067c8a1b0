package csv

import (
	"strings"
	"unicode/utf8"

	"github.com/shapestone/shape-core/pkg/ast"
)

// Render converts an AST node to CSV bytes in the default dialect.
//
// The node should be the result of Parse() or ParseReader().
//
// Rendering handles:
//   - Quoting of fields containing the delimiter, quotes or line breaks
//   - Escaping of quotes (doubled in the default dialect)
//   - Preservation of empty fields
//   - Consistent line endings (LF)
//
// Example:
//
//	node, _ := csv.Parse("name,age\nAlice,30\nBob,25\n")
//	bytes, _ := csv.Render(node)
//	// bytes: name,age\nAlice,30\nBob,25\n
func Render(node ast.SchemaNode) ([]byte, error) {
	return RenderWithOptions(node, DefaultWriterOptions())
}

// RenderWithOptions converts an AST node to CSV bytes with custom options.
func RenderWithOptions(node ast.SchemaNode, opts WriterOptions) ([]byte, error) {
	records, err := NodeToRecords(node)
	if err != nil {
		return nil, err
	}
	return RenderRows(records, opts)
}

// RenderRows encodes rows so that decoding the output with opts.Dialect
// yields the same rows.
//
// Example:
//
//	out, _ := csv.RenderRows([][]string{{"a", "b,c"}}, csv.DefaultWriterOptions())
//	// out: a,"b,c"\n
func RenderRows(rows [][]string, opts WriterOptions) ([]byte, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	var buf []byte
	for _, row := range rows {
		buf = AppendRow(buf, row, opts)
	}
	if buf == nil {
		buf = []byte{}
	}
	return buf, nil
}

// AppendRow appends one encoded row and its line terminator to dst.
// opts is assumed valid.
func AppendRow(dst []byte, row []string, opts WriterOptions) []byte {
	d := opts.Dialect
	for i, field := range row {
		if i > 0 {
			dst = utf8.AppendRune(dst, d.Delimiter)
		}
		// A row holding one empty field would read back as a blank line.
		if len(row) == 1 && field == "" {
			dst = utf8.AppendRune(dst, d.Quote)
			dst = utf8.AppendRune(dst, d.Quote)
			continue
		}
		dst = AppendField(dst, field, d)
	}
	if opts.UseCRLF {
		return append(dst, '\r', '\n')
	}
	return append(dst, '\n')
}

// AppendField appends field to dst, quoted if it contains the delimiter,
// the quote or escape character, or a line break.
//
// With a doubled-quote dialect a quote inside the field is written twice.
// Otherwise quote and escape characters are preceded by the escape character.
func AppendField(dst []byte, field string, d Dialect) []byte {
	if !needsQuoting(field, d) {
		return append(dst, field...)
	}

	esc := d.EscapeChar()
	dst = utf8.AppendRune(dst, d.Quote)
	for _, ch := range field {
		if ch == d.Quote || ch == esc {
			dst = utf8.AppendRune(dst, esc)
		}
		dst = utf8.AppendRune(dst, ch)
	}
	return utf8.AppendRune(dst, d.Quote)
}

func needsQuoting(field string, d Dialect) bool {
	return strings.ContainsAny(field, "\r\n") ||
		strings.ContainsRune(field, d.Delimiter) ||
		strings.ContainsRune(field, d.Quote) ||
		strings.ContainsRune(field, d.EscapeChar())
}
