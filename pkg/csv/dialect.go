package csv

import (
	"github.com/shapestone/shape-csvstream/internal/chunkparser"
)

// Dialect selects the delimiter, quote and escape characters of the input.
//
// An Escape of 0 means a literal quote inside a quoted field is written by
// doubling it, as in RFC 4180. Any other Escape makes the next character
// literal, inside or outside quotes.
type Dialect struct {
	// Delimiter separates fields. Default: ','
	Delimiter rune
	// Quote opens and closes quoted fields. Default: '"'
	Quote rune
	// Escape is the escape character, or 0 for doubled quotes.
	Escape rune
}

// Common dialects.
var (
	// TSV separates fields with tabs.
	TSV = Dialect{Delimiter: '\t', Quote: '"'}
	// PSV separates fields with pipes.
	PSV = Dialect{Delimiter: '|', Quote: '"'}
	// BackslashEscaped is comma-separated with backslash escapes.
	BackslashEscaped = Dialect{Delimiter: ',', Quote: '"', Escape: '\\'}
)

// DefaultDialect returns the RFC 4180 dialect.
func DefaultDialect() Dialect {
	return Dialect{Delimiter: ',', Quote: '"'}
}

// EscapeChar returns the effective escape character.
func (d Dialect) EscapeChar() rune {
	if d.Escape == 0 {
		return d.Quote
	}
	return d.Escape
}

// Validate reports whether the dialect can be parsed unambiguously.
// It returns an *OptionsError describing the first problem found.
func (d Dialect) Validate() error {
	if d.Delimiter == 0 {
		return &OptionsError{Field: "Delimiter", Message: "delimiter is required"}
	}
	if d.Quote == 0 {
		return &OptionsError{Field: "Quote", Message: "quote is required"}
	}
	if err := d.engine().Validate(); err != nil {
		return &OptionsError{Field: "Dialect", Message: err.Error()}
	}
	return nil
}

func (d Dialect) engine() chunkparser.Dialect {
	return chunkparser.Dialect{
		Delimiter: d.Delimiter,
		Quote:     d.Quote,
		Escape:    d.EscapeChar(),
	}
}

// WriterOptions configures CSV writing behavior.
type WriterOptions struct {
	// Dialect controls the delimiter and how special characters are quoted.
	Dialect Dialect

	// UseCRLF controls whether to use \r\n (true) or \n (false) as the line terminator.
	// Default: false (use \n)
	UseCRLF bool
}

// DefaultWriterOptions returns the default writer configuration.
func DefaultWriterOptions() WriterOptions {
	return WriterOptions{
		Dialect: DefaultDialect(),
		UseCRLF: false,
	}
}

// Validate checks if the writer options are valid.
func (o WriterOptions) Validate() error {
	return o.Dialect.Validate()
}
