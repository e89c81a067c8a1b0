package csv

import (
	"errors"
	"fmt"
	"io"
)

// Scanner provides a streaming interface for reading CSV records one at a time.
// It reads the underlying io.Reader in fixed-size chunks and decodes each
// chunk as it arrives, so memory use is bounded by the chunk size and the
// largest record rather than by the input.
//
// Example usage:
//
//	file, _ := os.Open("data.csv")
//	defer file.Close()
//
//	scanner := csv.NewScanner(file).SetHasHeaders(true)
//	for scanner.Scan() {
//	    record := scanner.Record()
//	    name, _ := record.GetByName("name")
//	    fmt.Println(name)
//	}
//	if err := scanner.Err(); err != nil {
//	    // handle error
//	}
type Scanner struct {
	reader     io.Reader
	dialect    Dialect
	chunkSize  int
	hasHeaders bool

	parser  *ChunkParser
	buf     []byte
	headers []string
	pending [][]string
	current []string
	done    bool
	err     error
}

// NewScanner creates a new Scanner that reads CSV from the given io.Reader
// using the default dialect and DefaultChunkSize.
// By default, the scanner assumes no headers. Use SetHasHeaders(true) to treat
// the first row as headers.
func NewScanner(reader io.Reader) *Scanner {
	return &Scanner{
		reader:    reader,
		dialect:   DefaultDialect(),
		chunkSize: DefaultChunkSize,
	}
}

// SetDialect sets the dialect used to decode the input. It has no effect
// once scanning has started.
// Returns the Scanner for method chaining.
func (s *Scanner) SetDialect(d Dialect) *Scanner {
	s.dialect = d
	return s
}

// SetChunkSize sets how many bytes are read from the reader at a time.
// Values below 1 restore DefaultChunkSize. It has no effect once scanning
// has started.
// Returns the Scanner for method chaining.
func (s *Scanner) SetChunkSize(n int) *Scanner {
	if n < 1 {
		n = DefaultChunkSize
	}
	s.chunkSize = n
	return s
}

// SetHasHeaders sets whether the first row should be treated as headers.
// If true, the first row will be used as column names for GetByName() access.
// Returns the Scanner for method chaining.
//
// Example:
//
//	scanner := csv.NewScanner(reader).SetHasHeaders(true)
func (s *Scanner) SetHasHeaders(hasHeaders bool) *Scanner {
	s.hasHeaders = hasHeaders
	return s
}

// SetReuseRecord is accepted so code written against earlier versions of
// this package keeps compiling. It has no effect: the decoder hands out a
// fresh slice for every row, so a Record never shares memory with another
// and stays valid after the next Scan.
// Returns the Scanner for method chaining.
func (s *Scanner) SetReuseRecord(bool) *Scanner {
	return s
}

// Scan advances the scanner to the next record.
// It returns false when there are no more records or an error occurs.
// After Scan returns false, the Err method will return any error that occurred.
func (s *Scanner) Scan() bool {
	if s.err != nil {
		return false
	}
	if s.parser == nil {
		p, err := NewChunkParser(s.dialect)
		if err != nil {
			s.err = err
			return false
		}
		s.parser = p
		s.buf = make([]byte, s.chunkSize)
	}

	for {
		if len(s.pending) > 0 {
			row := s.pending[0]
			s.pending[0] = nil
			s.pending = s.pending[1:]
			if s.hasHeaders && s.headers == nil {
				s.headers = row
				continue
			}
			s.current = row
			return true
		}
		if s.done {
			s.current = nil
			return false
		}
		if err := s.fill(); err != nil {
			s.err = err
			s.current = nil
			return false
		}
	}
}

// fill reads one chunk and queues the rows it completes. At end of input it
// finalizes the parser.
func (s *Scanner) fill() error {
	n, readErr := s.reader.Read(s.buf)
	if n > 0 {
		res, err := s.parser.ProcessBytes(s.buf[:n])
		if err != nil {
			return err
		}
		s.pending = append(s.pending, res.Rows...)
	}

	switch {
	case errors.Is(readErr, io.EOF):
		s.done = true
		last, err := s.parser.Finalize()
		if err != nil {
			return err
		}
		if last != nil {
			s.pending = append(s.pending, last)
		}
	case readErr != nil:
		return fmt.Errorf("csv: read input: %w", readErr)
	}
	return nil
}

// Record returns the current record.
// This should only be called after Scan() returns true. The Record may be
// kept after later calls to Scan.
func (s *Scanner) Record() Record {
	if s.current == nil {
		return Record{fields: []string{}, headers: s.headers}
	}
	return Record{fields: s.current, headers: s.headers}
}

// Err returns the error, if any, that was encountered during scanning.
// It returns nil if no error occurred or at EOF.
func (s *Scanner) Err() error {
	return s.err
}

// Headers returns the column headers if SetHasHeaders(true) was called.
// Returns nil until the header row has been scanned.
func (s *Scanner) Headers() []string {
	return s.headers
}
