package csv

import (
	"github.com/shapestone/shape-csvstream/internal/chunkparser"
)

// ParseError represents a parsing error with position information.
// Lines and columns are 1-indexed; columns count characters.
//
// Use errors.As to recover it from any error returned by this package:
//
//	var perr *csv.ParseError
//	if errors.As(err, &perr) {
//	    fmt.Println(perr.Line, perr.Column)
//	}
type ParseError = chunkparser.ParseError

// DataAfterClosingQuoteError carries the character that followed a closing
// quote. It matches ErrDataAfterClosingQuote.
type DataAfterClosingQuoteError = chunkparser.DataAfterClosingQuoteError

// Decoding errors. Every error returned by a parser wraps one of these.
var (
	// ErrUnclosedQuote indicates input ended inside a quoted field.
	ErrUnclosedQuote = chunkparser.ErrUnclosedQuote

	// ErrDataAfterClosingQuote indicates a character other than a delimiter,
	// line terminator or quote followed a closing quote.
	ErrDataAfterClosingQuote = chunkparser.ErrDataAfterClosingQuote

	// ErrUnexpectedEOF indicates input ended right after an escape character.
	ErrUnexpectedEOF = chunkparser.ErrUnexpectedEOF

	// ErrEncoding indicates a field was not valid UTF-8.
	ErrEncoding = chunkparser.ErrInvalidUTF8

	// ErrFinished indicates input was offered to a finalized or failed parser.
	ErrFinished = chunkparser.ErrFinished
)

// OptionsError represents an invalid dialect or writer configuration.
type OptionsError struct {
	Field   string
	Message string
}

func (e *OptionsError) Error() string {
	return "csv: invalid " + e.Field + ": " + e.Message
}
