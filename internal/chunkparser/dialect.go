package chunkparser

import (
	"fmt"
	"unicode/utf8"
)

// Dialect describes the characters that parameterize the grammar.
//
// The engine itself accepts any assignment of runes. When two roles share a
// rune, classification applies a fixed precedence: CR and LF first, then the
// delimiter, then the quote, then the escape. Callers that want degenerate
// configurations rejected validate at the public API boundary.
type Dialect struct {
	Delimiter rune
	Quote     rune
	Escape    rune
}

// DefaultDialect returns the RFC 4180 dialect: comma delimiter and
// doubled-quote escaping.
func DefaultDialect() Dialect {
	return Dialect{
		Delimiter: ',',
		Quote:     '"',
		Escape:    '"',
	}
}

// Validate reports the first conflict that would make the grammar ambiguous:
// a role bound to CR, LF or an invalid rune, or a delimiter shared with the
// quote or escape character.
func (d Dialect) Validate() error {
	roles := []struct {
		name string
		r    rune
	}{
		{"delimiter", d.Delimiter},
		{"quote", d.Quote},
		{"escape", d.Escape},
	}
	for _, role := range roles {
		switch {
		case role.r == '\r' || role.r == '\n':
			return fmt.Errorf("%s cannot be a line terminator", role.name)
		case role.r == utf8.RuneError || !utf8.ValidRune(role.r):
			return fmt.Errorf("%s %q is not a valid character", role.name, role.r)
		}
	}
	if d.Delimiter == d.Quote {
		return fmt.Errorf("delimiter and quote are both %q", d.Delimiter)
	}
	if d.Delimiter == d.Escape {
		return fmt.Errorf("delimiter and escape are both %q", d.Delimiter)
	}
	return nil
}

// UsesDoubledQuote reports whether a literal quote inside a quoted field is
// written by doubling it, with no separate escape character.
func (d Dialect) UsesDoubledQuote() bool {
	return d.Escape == d.Quote
}
