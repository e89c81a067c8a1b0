package chunkparser

import (
	"errors"
	"fmt"
)

var (
	// ErrUnclosedQuote is returned when input ends inside a quoted field.
	ErrUnclosedQuote = errors.New("unclosed quoted field")

	// ErrDataAfterClosingQuote matches every *DataAfterClosingQuoteError.
	ErrDataAfterClosingQuote = errors.New("data after closing quote")

	// ErrUnexpectedEOF is returned when input ends right after an escape character.
	ErrUnexpectedEOF = errors.New("unexpected end of input after escape character")

	// ErrInvalidUTF8 is returned when a completed field is not valid UTF-8.
	ErrInvalidUTF8 = errors.New("field is not valid UTF-8")

	// ErrFinished is returned when input is offered to a parser that has
	// already been finalized or has failed.
	ErrFinished = errors.New("parser is finished")
)

// DataAfterClosingQuoteError reports the character found right after a
// closing quote.
type DataAfterClosingQuoteError struct {
	Char rune
}

func (e *DataAfterClosingQuoteError) Error() string {
	return fmt.Sprintf("%v: %q", ErrDataAfterClosingQuote, e.Char)
}

// Is makes errors.Is(err, ErrDataAfterClosingQuote) hold.
func (e *DataAfterClosingQuoteError) Is(target error) bool {
	return target == ErrDataAfterClosingQuote
}

// ParseError wraps an engine error with the position at which it was detected.
// Lines and columns are 1-indexed; columns count characters, not bytes.
type ParseError struct {
	// StartLine is the line on which the failing record started.
	StartLine int
	// Line is the line of the offending character.
	Line int
	// Column is the column of the offending character.
	Column int
	// Err is the underlying error.
	Err error
}

// Error returns a formatted error message with position information.
func (e *ParseError) Error() string {
	if e.StartLine == e.Line {
		return fmt.Sprintf("parse error on line %d, column %d: %v", e.Line, e.Column, e.Err)
	}
	return fmt.Sprintf("parse error on line %d (started line %d), column %d: %v",
		e.Line, e.StartLine, e.Column, e.Err)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}
