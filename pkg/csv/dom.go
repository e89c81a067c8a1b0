package csv

import (
	"fmt"

	"github.com/shapestone/shape-core/pkg/ast"
)

// Document is an in-memory CSV file: optional headers and data records.
// All setter methods return *Document to enable method chaining.
//
//	doc := csv.NewDocument().
//		SetHeaders([]string{"name", "age"}).
//		AddRecord([]string{"Alice", "30"})
//	out, _ := doc.CSV()
type Document struct {
	dialect Dialect
	headers []string
	records [][]string
}

// Record represents a single row in a CSV file.
// It provides access to field values by index or by header name.
type Record struct {
	fields  []string
	headers []string // Reference to document headers for name-based access
}

// NewDocument creates a new empty Document in the default dialect.
func NewDocument() *Document {
	return &Document{dialect: DefaultDialect()}
}

// ParseDocument parses a CSV string in the default dialect.
// All rows become data records; call UseFirstRowAsHeaders to promote the
// first one.
func ParseDocument(input string) (*Document, error) {
	return ParseDocumentWithDialect(input, DefaultDialect())
}

// ParseDocumentWithDialect parses a CSV string in the given dialect. The
// dialect is kept and used again by CSV.
func ParseDocumentWithDialect(input string, d Dialect) (*Document, error) {
	records, err := ReadAll(input, d)
	if err != nil {
		return nil, err
	}
	return &Document{dialect: d, records: records}, nil
}

// Dialect returns the dialect used to render the document.
func (d *Document) Dialect() Dialect {
	return d.dialect
}

// SetDialect changes the dialect used to render the document.
func (d *Document) SetDialect(dialect Dialect) *Document {
	d.dialect = dialect
	return d
}

// SetHeaders sets the column headers used by Record.GetByName.
func (d *Document) SetHeaders(headers []string) *Document {
	d.headers = headers
	return d
}

// UseFirstRowAsHeaders removes the first record and makes it the headers.
// It does nothing on a document without records.
func (d *Document) UseFirstRowAsHeaders() *Document {
	if len(d.records) == 0 {
		return d
	}
	d.headers = d.records[0]
	d.records = d.records[1:]
	return d
}

// AddRecord adds a data record (row) to the document.
func (d *Document) AddRecord(fields []string) *Document {
	d.records = append(d.records, fields)
	return d
}

// Headers returns the column headers, or nil if none have been set.
func (d *Document) Headers() []string {
	return d.headers
}

// Records returns all data records.
func (d *Document) Records() []Record {
	records := make([]Record, len(d.records))
	for i, fields := range d.records {
		records[i] = Record{fields: fields, headers: d.headers}
	}
	return records
}

// RecordCount returns the number of data records, not counting headers.
func (d *Document) RecordCount() int {
	return len(d.records)
}

// GetRecord returns the record at the 0-based index, or false if the index
// is out of bounds.
func (d *Document) GetRecord(index int) (Record, bool) {
	if index < 0 || index >= len(d.records) {
		return Record{}, false
	}
	return Record{fields: d.records[index], headers: d.headers}, true
}

// CSV renders the headers, if set, followed by all records.
func (d *Document) CSV() (string, error) {
	opts := WriterOptions{Dialect: d.dialect}
	if err := opts.Validate(); err != nil {
		return "", err
	}
	var buf []byte
	if len(d.headers) > 0 {
		buf = AppendRow(buf, d.headers, opts)
	}
	for _, record := range d.records {
		buf = AppendRow(buf, record, opts)
	}
	return string(buf), nil
}

// ToAST converts the Document to an AST ArrayDataNode, headers first.
func (d *Document) ToAST() (*ast.ArrayDataNode, error) {
	rows := d.records
	if len(d.headers) > 0 {
		rows = append([][]string{d.headers}, d.records...)
	}
	node, err := RecordsToNode(rows)
	if err != nil {
		return nil, err
	}
	return node.(*ast.ArrayDataNode), nil
}

// FromAST creates a Document from an AST file node. Every row becomes a
// data record.
func FromAST(node ast.SchemaNode) (*Document, error) {
	if _, ok := node.(*ast.ArrayDataNode); !ok {
		return nil, fmt.Errorf("expected *ast.ArrayDataNode, got %T", node)
	}
	records, err := NodeToRecords(node)
	if err != nil {
		return nil, err
	}
	return &Document{dialect: DefaultDialect(), records: records}, nil
}

// Get gets the field value at the specified 0-based index.
// Returns ("", false) if the index is out of bounds.
func (r Record) Get(index int) (string, bool) {
	if index < 0 || index >= len(r.fields) {
		return "", false
	}
	return r.fields[index], true
}

// GetByName gets the field value by header name.
// Returns ("", false) if the header name is not found or if no headers are set.
//
// Example:
//
//	record, _ := doc.GetRecord(0)
//	name, ok := record.GetByName("name")
func (r Record) GetByName(name string) (string, bool) {
	for i, header := range r.headers {
		if header == name {
			return r.Get(i)
		}
	}
	return "", false
}

// Fields returns a copy of the field values in the record.
func (r Record) Fields() []string {
	fields := make([]string, len(r.fields))
	copy(fields, r.fields)
	return fields
}

// Len returns the number of fields in the record.
func (r Record) Len() int {
	return len(r.fields)
}
