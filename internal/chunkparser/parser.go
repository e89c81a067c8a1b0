// Package chunkparser implements the streaming CSV decoding engine.
//
// A Parser consumes text in caller-sized chunks and yields every row completed
// by each chunk. Fields and rows that straddle chunk boundaries are carried in
// the parser's own builders, as is a carriage return whose paired line feed
// arrives in the next chunk. Feeding any split of an input yields the same rows
// as feeding it whole.
//
// A Parser is not safe for concurrent use. Run one Parser per independent input.
package chunkparser

import (
	"unicode/utf8"
)

// ChunkResult holds the rows completed by one ProcessChunk call.
type ChunkResult struct {
	// Rows are the rows completed during the call, in input order.
	Rows [][]string
	// Leftover is the text after the last record terminator of the call: the
	// part of the chunk already held internally for the next row. It is
	// informational and must not be fed back to the parser.
	Leftover string
}

// Parser is the chunk driver. Construct it with New.
type Parser struct {
	dialect Dialect
	cur     Cursor
	// pendingCR is set while the last character seen was a CR that ended a
	// record. It survives chunk boundaries.
	pendingCR bool

	field fieldBuilder
	row   rowBuilder

	// carry holds an incomplete UTF-8 sequence at the end of a ProcessBytes chunk.
	carry []byte

	rows     [][]string
	boundary bool

	line       int
	column     int
	afterCR    bool
	recordLine int

	err error
}

// New returns a Parser positioned at the start of input.
func New(d Dialect) *Parser {
	return &Parser{
		dialect:    d,
		cur:        Cursor{State: StartOfField},
		field:      newFieldBuilder(),
		row:        newRowBuilder(),
		line:       1,
		recordLine: 1,
	}
}

// Dialect returns the dialect the parser was built with.
func (p *Parser) Dialect() Dialect {
	return p.dialect
}

// State returns the current machine state.
func (p *Parser) State() State {
	return p.cur.State
}

// PendingCR reports whether the parser is waiting to see if a CR is followed by LF.
func (p *Parser) PendingCR() bool {
	return p.pendingCR
}

// Position returns the 1-indexed line and column of the next character.
func (p *Parser) Position() (line, column int) {
	return p.line, p.column + 1
}

// ProcessChunk decodes the next fragment of input. On error no rows are
// returned and the parser stays failed: every later call returns the same error.
func (p *Parser) ProcessChunk(chunk string) (ChunkResult, error) {
	if err := p.begin(); err != nil {
		return ChunkResult{}, err
	}

	cut := 0
	for i := 0; i < len(chunk); {
		ch, size := utf8.DecodeRuneInString(chunk[i:])
		invalid := ch == utf8.RuneError && size == 1
		if err := p.feed(ch, invalid, chunk[i]); err != nil {
			return ChunkResult{}, err
		}
		i += size
		if p.boundary {
			cut = i
		}
	}

	return p.end(chunk[cut:]), nil
}

// ProcessBytes is the byte-oriented variant of ProcessChunk. A multi-byte
// UTF-8 sequence split across chunks is reassembled; bytes that are not
// valid UTF-8 make the enclosing field fail with ErrInvalidUTF8.
func (p *Parser) ProcessBytes(chunk []byte) (ChunkResult, error) {
	if err := p.begin(); err != nil {
		return ChunkResult{}, err
	}

	data := chunk
	if len(p.carry) > 0 {
		data = append(p.carry, chunk...)
	}

	cut, i := 0, 0
	for i < len(data) && utf8.FullRune(data[i:]) {
		ch, size := utf8.DecodeRune(data[i:])
		invalid := ch == utf8.RuneError && size == 1
		if err := p.feed(ch, invalid, data[i]); err != nil {
			return ChunkResult{}, err
		}
		i += size
		if p.boundary {
			cut = i
		}
	}

	result := p.end(string(data[cut:i]))
	p.carry = append(p.carry[:0], data[i:]...)
	return result, nil
}

// Finalize signals the end of input. It returns the last row if one was
// pending, or nil. The parser is Finished afterwards, whatever the outcome.
// Input that ends inside a multi-byte UTF-8 sequence fails with
// ErrInvalidUTF8 before any other end-of-input check.
func (p *Parser) Finalize() ([]string, error) {
	if err := p.begin(); err != nil {
		return nil, err
	}

	// A truncated multi-byte sequence at end of input is an encoding error
	// whatever state the machine is in. The position is that of its first byte.
	if len(p.carry) > 0 {
		p.carry = p.carry[:0]
		return nil, p.fail(ErrInvalidUTF8)
	}
	p.rows = nil

	step, err := Transition(p.cur, 0, true, p.dialect)
	p.cur = Cursor{State: Finished}
	p.pendingCR = false
	if err != nil {
		return nil, p.fail(err)
	}

	flush := step.Action.Kind == CommitRow
	if step.Action.Kind == NoOp && p.row.pending() {
		// A trailing delimiter leaves fields pending in StartOfField.
		flush = true
	}
	if !flush {
		return nil, nil
	}

	row, ok, err := p.commitRow()
	if err != nil {
		return nil, p.fail(err)
	}
	if !ok {
		return nil, nil
	}
	return row, nil
}

func (p *Parser) begin() error {
	if p.err != nil {
		return p.err
	}
	if p.cur.State == Finished {
		return ErrFinished
	}
	p.rows = nil
	return nil
}

func (p *Parser) end(leftover string) ChunkResult {
	rows := p.rows
	p.rows = nil
	return ChunkResult{Rows: rows, Leftover: leftover}
}

// feed runs one character through the machine and applies the resulting action.
// raw is the first byte of the character, used when invalid is set.
func (p *Parser) feed(ch rune, invalid bool, raw byte) error {
	p.boundary = false
	prev := p.cur.State

	step, err := Transition(p.cur, ch, false, p.dialect)
	if err != nil {
		return p.fail(err)
	}
	if prev == EndOfRecord {
		p.pendingCR = false
		if step.Action.Kind == NoOp && step.Next.State == StartOfField {
			p.boundary = true
		}
	}

	switch step.Action.Kind {
	case AppendChar:
		if invalid && step.Action.Char == ch {
			p.field.appendByte(raw)
		} else {
			p.field.appendRune(step.Action.Char)
		}
	case CommitField:
		if err := p.commitField(); err != nil {
			return p.fail(err)
		}
	case CommitRow:
		row, ok, err := p.commitRow()
		if err != nil {
			return p.fail(err)
		}
		if ok {
			p.rows = append(p.rows, row)
		}
		p.boundary = true
	case NoOp:
		if step.Next.State == InQuotedField {
			p.field.markQuoted()
		}
	}

	p.cur = step.Next
	if p.cur.State == EndOfRecord {
		if ch == '\r' {
			p.pendingCR = true
		} else {
			p.cur = Cursor{State: StartOfField}
		}
	}

	p.advance(ch)
	if p.boundary {
		p.recordLine = p.line
	}
	return nil
}

func (p *Parser) commitField() error {
	s, quoted, err := p.field.commit()
	if err != nil {
		return err
	}
	p.row.commitField(s, quoted)
	return nil
}

func (p *Parser) commitRow() ([]string, bool, error) {
	if err := p.commitField(); err != nil {
		return nil, false, err
	}
	row, ok := p.row.commitRow()
	return row, ok, nil
}

func (p *Parser) advance(ch rune) {
	switch ch {
	case '\n':
		if p.afterCR {
			p.afterCR = false
			return
		}
		p.line++
		p.column = 0
	case '\r':
		p.line++
		p.column = 0
		p.afterCR = true
	default:
		p.column++
		p.afterCR = false
	}
}

// fail records err, wrapped with the current position, as the parser's
// terminal error.
func (p *Parser) fail(err error) error {
	if err == ErrFinished {
		return err
	}
	p.rows = nil
	p.cur = Cursor{State: Finished}
	p.err = &ParseError{
		StartLine: p.recordLine,
		Line:      p.line,
		Column:    p.column + 1,
		Err:       err,
	}
	return p.err
}
