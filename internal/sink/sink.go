// Package sink writes decoded rows in the output formats of csvchunk.
//
// Every format is written as a stream: rows are encoded as they arrive and
// nothing is held back except a write buffer, which Close flushes. Close
// never closes the underlying writer.
package sink

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/fxamacker/cbor/v2"

	"github.com/shapestone/shape-csvstream/pkg/csv"
)

// Sink consumes rows in input order.
type Sink interface {
	// WriteRows encodes a batch of rows. The sink does not retain rows.
	WriteRows(rows [][]string) error
	// Flush writes buffered rows without a trailer. Use it instead of
	// Close when the input failed part way.
	Flush() error
	// Close writes any trailer and flushes buffered output.
	Close() error
}

// Format names an output encoding.
type Format string

const (
	// FormatJSON writes one JSON value per line.
	FormatJSON Format = "json"
	// FormatCBOR writes a CBOR sequence (RFC 8742), one item per row.
	FormatCBOR Format = "cbor"
	// FormatCSV re-encodes rows as CSV.
	FormatCSV Format = "csv"
	// FormatDigest writes a single BLAKE3 digest line over all rows.
	FormatDigest Format = "digest"
)

// Options configures a sink.
type Options struct {
	// Dialect and CRLF control FormatCSV output.
	Dialect csv.Dialect
	CRLF    bool

	// Header makes the first row name the fields of later rows. JSON and
	// CBOR then write each row as a map; CSV and digest ignore it.
	Header bool

	// Name labels the digest line, usually with the input path.
	Name string
}

// New returns a sink for format writing to w.
func New(format Format, w io.Writer, opts Options) (Sink, error) {
	bw := bufio.NewWriter(w)
	switch format {
	case FormatJSON:
		return &jsonSink{bw: bw, enc: json.NewEncoder(bw), keys: newKeyer(opts.Header)}, nil
	case FormatCBOR:
		return &cborSink{bw: bw, enc: cborEncMode.NewEncoder(bw), keys: newKeyer(opts.Header)}, nil
	case FormatCSV:
		wo := csv.WriterOptions{Dialect: opts.Dialect, UseCRLF: opts.CRLF}
		if err := wo.Validate(); err != nil {
			return nil, err
		}
		return &csvSink{bw: bw, opts: wo}, nil
	case FormatDigest:
		return newDigestSink(bw, opts.Name), nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

// cborEncMode uses Core Deterministic Encoding (RFC 8949 §4.2) so equal rows
// always produce equal bytes.
var cborEncMode cbor.EncMode

func init() {
	var err error
	cborEncMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("sink: CBOR encoder initialization failed: " + err.Error())
	}
}

// keyer turns rows into maps once a header row has been seen.
type keyer struct {
	enabled bool
	header  []string
}

func newKeyer(enabled bool) *keyer {
	return &keyer{enabled: enabled}
}

// value returns what to encode for row, or ok == false for the header row
// itself. Fields past the end of the header are keyed by 1-based position.
func (k *keyer) value(row []string) (v any, ok bool) {
	if !k.enabled {
		return row, true
	}
	if k.header == nil {
		k.header = append([]string{}, row...)
		return nil, false
	}
	m := make(map[string]string, len(row))
	for i, field := range row {
		key := strconv.Itoa(i + 1)
		if i < len(k.header) {
			key = k.header[i]
		}
		m[key] = field
	}
	return m, true
}

type jsonSink struct {
	bw   *bufio.Writer
	enc  *json.Encoder
	keys *keyer
}

func (s *jsonSink) WriteRows(rows [][]string) error {
	for _, row := range rows {
		v, ok := s.keys.value(row)
		if !ok {
			continue
		}
		if err := s.enc.Encode(v); err != nil {
			return fmt.Errorf("json: %w", err)
		}
	}
	return nil
}

func (s *jsonSink) Flush() error {
	return s.bw.Flush()
}

func (s *jsonSink) Close() error {
	return s.bw.Flush()
}

type cborSink struct {
	bw   *bufio.Writer
	enc  *cbor.Encoder
	keys *keyer
}

func (s *cborSink) WriteRows(rows [][]string) error {
	for _, row := range rows {
		v, ok := s.keys.value(row)
		if !ok {
			continue
		}
		if err := s.enc.Encode(v); err != nil {
			return fmt.Errorf("cbor: %w", err)
		}
	}
	return nil
}

func (s *cborSink) Flush() error {
	return s.bw.Flush()
}

func (s *cborSink) Close() error {
	return s.bw.Flush()
}

type csvSink struct {
	bw   *bufio.Writer
	opts csv.WriterOptions
	buf  []byte
}

func (s *csvSink) WriteRows(rows [][]string) error {
	for _, row := range rows {
		s.buf = csv.AppendRow(s.buf[:0], row, s.opts)
		if _, err := s.bw.Write(s.buf); err != nil {
			return err
		}
	}
	return nil
}

func (s *csvSink) Flush() error {
	return s.bw.Flush()
}

func (s *csvSink) Close() error {
	return s.bw.Flush()
}
