package csv

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	sniffDelimiters = []rune{',', '\t', ';', '|'}
	sniffQuotes     = []rune{'"', '\''}

	headerPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`),       // snake_case or identifier
		regexp.MustCompile(`^[a-zA-Z]+[A-Z][a-zA-Z]*$`),      // camelCase
		regexp.MustCompile(`^[A-Z][a-z]+([ ][A-Z][a-z]+)*$`), // Title Case
	}
	datePatterns = []*regexp.Regexp{
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`),
		regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`),
	}
)

// Sniffer detects the dialect of a CSV sample and guesses whether its first
// row is a header. The sample may be cut anywhere, even inside a quoted
// field.
//
//	s := csv.NewSniffer(sample)
//	scanner := csv.NewScanner(r).SetDialect(s.Dialect()).SetHasHeaders(s.HasHeader())
type Sniffer struct {
	sample    string
	dialect   Dialect
	rows      [][]string
	hasHeader bool
	analyzed  bool
}

// NewSniffer creates a new Sniffer with a sample of CSV data.
// For best results, provide at least 2-3 lines of data.
func NewSniffer(sample string) *Sniffer {
	return &Sniffer{sample: sample}
}

func (s *Sniffer) analyze() {
	if s.analyzed {
		return
	}
	s.dialect, s.rows = s.detectDialect()
	s.hasHeader = detectHeader(s.rows)
	s.analyzed = true
}

// Dialect returns the detected dialect. It falls back to DefaultDialect when
// no candidate decodes the sample into consistent multi-field rows.
func (s *Sniffer) Dialect() Dialect {
	s.analyze()
	return s.dialect
}

// DetectDelimiter returns the detected field delimiter.
// Common delimiters checked: comma, tab, semicolon, pipe.
func (s *Sniffer) DetectDelimiter() rune {
	return s.Dialect().Delimiter
}

// HasHeader returns true if the first row appears to be a header.
func (s *Sniffer) HasHeader() bool {
	s.analyze()
	return s.hasHeader
}

// detectDialect decodes the sample with every candidate dialect and keeps
// the one whose rows agree best on a field count above one. Ties go to the
// double quote and then to the wider split.
func (s *Sniffer) detectDialect() (Dialect, [][]string) {
	best := DefaultDialect()
	var bestRows [][]string
	bestScore, bestWidth := 0, 0

	for _, quote := range sniffQuotes {
		for _, delim := range sniffDelimiters {
			d := Dialect{Delimiter: delim, Quote: quote}
			rows, ok := sampleRows(s.sample, d)
			if !ok {
				continue
			}
			score, width := consistency(rows)
			// A wider split only wins a tie under the same quote character.
			if score > bestScore || (score == bestScore && width > bestWidth && quote == best.Quote) {
				best, bestRows = d, rows
				bestScore, bestWidth = score, width
			}
		}
	}

	if bestRows == nil {
		rows, _ := sampleRows(s.sample, best)
		return best, rows
	}
	return best, bestRows
}

// sampleRows decodes sample with d. A sample that ends inside a quoted field
// still decodes; the unfinished record is dropped.
func sampleRows(sample string, d Dialect) ([][]string, bool) {
	p, err := NewChunkParser(d)
	if err != nil {
		return nil, false
	}
	res, err := p.ProcessChunk(sample)
	if err != nil {
		return nil, false
	}
	rows := res.Rows
	if last, err := p.Finalize(); err == nil && last != nil {
		rows = append(rows, last)
	}
	return rows, true
}

// consistency returns a score in [0, 1000] for the share of rows having the
// most common field count, and that count. Single-field rows score zero.
func consistency(rows [][]string) (score, width int) {
	if len(rows) == 0 {
		return 0, 0
	}
	counts := make(map[int]int)
	for _, row := range rows {
		counts[len(row)]++
	}
	modal := 0
	for w, n := range counts {
		if n > counts[modal] || (n == counts[modal] && w > modal) {
			modal = w
		}
	}
	if modal < 2 {
		return 0, modal
	}
	return counts[modal] * 1000 / len(rows), modal
}

// detectHeader reports whether more fields of the first row look like names
// than like data. A lone row is never a header.
func detectHeader(rows [][]string) bool {
	if len(rows) < 2 || len(rows[0]) == 0 {
		return false
	}

	headerScore := 0
	dataScore := 0
	for _, field := range rows[0] {
		field = strings.TrimSpace(field)
		if isLikelyHeader(field) {
			headerScore++
		}
		if isLikelyData(field) {
			dataScore++
		}
	}
	return headerScore > dataScore
}

// isLikelyHeader checks if a field looks like a header name.
func isLikelyHeader(s string) bool {
	if s == "" || isNumeric(s) {
		return false
	}
	for _, pattern := range headerPatterns {
		if pattern.MatchString(s) {
			return true
		}
	}
	return false
}

// isLikelyData checks if a field looks like data rather than a header.
func isLikelyData(s string) bool {
	if s == "" {
		return false
	}
	if isNumeric(s) || strings.Contains(s, "@") {
		return true
	}
	for _, pattern := range datePatterns {
		if pattern.MatchString(s) {
			return true
		}
	}
	return false
}

// isNumeric checks if a string represents a decimal number.
func isNumeric(s string) bool {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "-")
	if s == "" {
		return false
	}

	hasDot := false
	for _, ch := range s {
		if ch == '.' {
			if hasDot {
				return false
			}
			hasDot = true
		} else if !unicode.IsDigit(ch) {
			return false
		}
	}
	return s != "."
}
