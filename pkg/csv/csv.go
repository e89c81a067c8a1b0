// Package csv provides streaming CSV decoding and AST generation.
//
// The core of the package is ChunkParser, a resumable RFC 4180 decoder that
// accepts input in fragments of any size and emits each row as soon as its
// terminator has been seen. Quoted fields may span fragments, as may a CRLF
// pair or a multi-byte UTF-8 sequence. Splitting the input differently never
// changes the rows produced.
//
// On top of ChunkParser the package offers whole-document helpers that build
// Shape's unified AST, a Scanner that reads records incrementally from an
// io.Reader, a dialect-aware renderer and a dialect Sniffer.
//
// # Thread Safety
//
// The package-level functions are safe for concurrent use; each call creates
// its own parser. A ChunkParser or Scanner must be used by one goroutine.
//
//	// Safe: Concurrent parsing
//	go func() { csv.Parse(input1) }()
//	go func() { csv.Parse(input2) }()
//
// # Parsing APIs
//
//   - Parse(string) - Parses a CSV document held in memory
//   - ParseReader(io.Reader) - Parses from a reader in fixed-size chunks
//   - ReadAll(string, Dialect) - Returns rows as [][]string
//   - NewChunkParser(Dialect) - Push-style decoding of caller-supplied chunks
//   - NewScanner(io.Reader) - Pull-style record iteration
//
// # Example usage with Parse:
//
//	node, err := csv.Parse("name,age\nAlice,30\nBob,25")
//	if err != nil {
//	    // handle error
//	}
//	// node is now a *ast.ArrayDataNode representing the CSV data
package csv

import (
	"errors"
	"fmt"
	"io"

	"github.com/shapestone/shape-core/pkg/ast"
)

// DefaultChunkSize is the number of bytes read per chunk by the reader-based
// functions and by Scanner.
const DefaultChunkSize = 64 * 1024

// Parse parses CSV format into an AST from a string using the default dialect.
//
// Returns an ast.ArrayDataNode representing the parsed CSV:
//   - *ast.ArrayDataNode for the file (array of records)
//   - Each record is an *ast.ArrayDataNode of fields
//   - Each field is an *ast.LiteralNode containing a string value
//
// Example:
//
//	node, err := csv.Parse("name,age\nAlice,30\nBob,25")
//	arrayNode := node.(*ast.ArrayDataNode)
//	records := arrayNode.Elements()
//	// records[0] is the header row
//	// records[1] is the first data row
func Parse(input string) (ast.SchemaNode, error) {
	return ParseWithDialect(input, DefaultDialect())
}

// ParseWithDialect parses CSV format into an AST from a string.
//
// Example:
//
//	node, err := csv.ParseWithDialect("name\tage\nAlice\t30", csv.TSV)
func ParseWithDialect(input string, d Dialect) (ast.SchemaNode, error) {
	records, err := ReadAll(input, d)
	if err != nil {
		return nil, err
	}
	return RecordsToNode(records)
}

// ParseReader parses CSV format into an AST from an io.Reader using the
// default dialect. Input is consumed in chunks of DefaultChunkSize bytes.
//
// Example parsing from a file:
//
//	file, err := os.Open("data.csv")
//	if err != nil {
//	    // handle error
//	}
//	defer file.Close()
//
//	node, err := csv.ParseReader(file)
func ParseReader(reader io.Reader) (ast.SchemaNode, error) {
	return ParseReaderWithDialect(reader, DefaultDialect())
}

// ParseReaderWithDialect parses CSV format into an AST from an io.Reader.
func ParseReaderWithDialect(reader io.Reader, d Dialect) (ast.SchemaNode, error) {
	var records [][]string
	err := decodeReader(reader, d, DefaultChunkSize, func(rows [][]string) error {
		records = append(records, rows...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return RecordsToNode(records)
}

// ReadAll decodes a complete document and returns its rows.
//
// Example:
//
//	rows, err := csv.ReadAll("a;b\n1;2\n", csv.Dialect{Delimiter: ';', Quote: '"'})
//	// rows is [][]string{{"a", "b"}, {"1", "2"}}
func ReadAll(input string, d Dialect) ([][]string, error) {
	p, err := NewChunkParser(d)
	if err != nil {
		return nil, err
	}
	res, err := p.ProcessChunk(input)
	if err != nil {
		return nil, err
	}
	rows := res.Rows
	last, err := p.Finalize()
	if err != nil {
		return nil, err
	}
	if last != nil {
		rows = append(rows, last)
	}
	return rows, nil
}

// Format returns the format identifier for this parser.
// Returns "CSV" to identify this as the CSV data format parser.
func Format() string {
	return "CSV"
}

// Validate checks if the input string is valid CSV in the default dialect.
//
// Returns nil if the input is valid CSV, or a *ParseError locating the
// problem:
//
//	if err := csv.Validate(input); err != nil {
//	    fmt.Println("Invalid CSV:", err)
//	}
func Validate(input string) error {
	_, err := ReadAll(input, DefaultDialect())
	return err
}

// ValidateReader checks if the input from an io.Reader is valid CSV in the
// default dialect. Rows are discarded as they are decoded, so memory use does
// not grow with the input.
func ValidateReader(reader io.Reader) error {
	return decodeReader(reader, DefaultDialect(), DefaultChunkSize, func([][]string) error {
		return nil
	})
}

// decodeReader feeds reader to a fresh parser in chunks of size bytes and
// hands every batch of completed rows to fn.
func decodeReader(reader io.Reader, d Dialect, size int, fn func([][]string) error) error {
	p, err := NewChunkParser(d)
	if err != nil {
		return err
	}

	buf := make([]byte, size)
	for {
		n, readErr := reader.Read(buf)
		if n > 0 {
			res, err := p.ProcessBytes(buf[:n])
			if err != nil {
				return err
			}
			if len(res.Rows) > 0 {
				if err := fn(res.Rows); err != nil {
					return err
				}
			}
		}
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return fmt.Errorf("csv: read input: %w", readErr)
		}
	}

	last, err := p.Finalize()
	if err != nil {
		return err
	}
	if last != nil {
		return fn([][]string{last})
	}
	return nil
}
