package chunkparser

import "fmt"

// State is the tag of the decoder's finite-state machine.
type State uint8

const (
	StartOfField State = iota
	InUnquotedField
	InQuotedField
	QuoteSeen
	EscapeSeen
	EndOfRecord
	Finished
	numStates
)

var stateNames = [numStates]string{
	StartOfField:    "StartOfField",
	InUnquotedField: "InUnquotedField",
	InQuotedField:   "InQuotedField",
	QuoteSeen:       "QuoteSeen",
	EscapeSeen:      "EscapeSeen",
	EndOfRecord:     "EndOfRecord",
	Finished:        "Finished",
}

// String returns the state name.
func (s State) String() string {
	if s < numStates {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", s)
}

// ActionKind is what the driver does with the character that produced a step.
type ActionKind uint8

const (
	NoOp ActionKind = iota
	AppendChar
	CommitField
	CommitRow
)

// String returns the action name.
func (k ActionKind) String() string {
	switch k {
	case NoOp:
		return "NoOp"
	case AppendChar:
		return "AppendChar"
	case CommitField:
		return "CommitField"
	case CommitRow:
		return "CommitRow"
	default:
		return fmt.Sprintf("ActionKind(%d)", k)
	}
}

// Action is an ActionKind plus the character to append for AppendChar.
type Action struct {
	Kind ActionKind
	Char rune
}

// Cursor is the machine position. Resume is only meaningful while State is
// EscapeSeen: it names the field state the escaped character returns to.
type Cursor struct {
	State  State
	Resume State
}

// Step is the result of one transition.
type Step struct {
	Next   Cursor
	Action Action
}

// charClass partitions input characters for the transition table.
type charClass uint8

const (
	classDelimiter charClass = iota
	classQuote
	classEscape // only when Escape != Quote
	classCR
	classLF
	classEOI
	classOther
)

func classify(ch rune, eoi bool, d Dialect) charClass {
	switch {
	case eoi:
		return classEOI
	case ch == '\r':
		return classCR
	case ch == '\n':
		return classLF
	case ch == d.Delimiter:
		return classDelimiter
	case ch == d.Quote:
		return classQuote
	case ch == d.Escape:
		return classEscape
	default:
		return classOther
	}
}

func to(s State, kind ActionKind, ch rune) Step {
	return Step{Next: Cursor{State: s}, Action: Action{Kind: kind, Char: ch}}
}

func escapeFrom(origin State) Step {
	return Step{Next: Cursor{State: EscapeSeen, Resume: origin}}
}

// Transition maps the current cursor and the next character to the next
// cursor and the action to apply. eoi signals end of input, in which case ch
// is ignored. It is total over every (state, character class) pair.
func Transition(cur Cursor, ch rune, eoi bool, d Dialect) (Step, error) {
	class := classify(ch, eoi, d)

	switch cur.State {
	case StartOfField:
		return startOfField(class, ch), nil

	case InUnquotedField:
		switch class {
		case classDelimiter:
			return to(StartOfField, CommitField, 0), nil
		case classEscape:
			return escapeFrom(InUnquotedField), nil
		case classCR, classLF:
			return to(EndOfRecord, CommitRow, 0), nil
		case classEOI:
			return to(Finished, CommitRow, 0), nil
		default:
			// A quote past the start of an unquoted field is literal data.
			return to(InUnquotedField, AppendChar, ch), nil
		}

	case InQuotedField:
		switch class {
		case classQuote:
			return to(QuoteSeen, NoOp, 0), nil
		case classEscape:
			return escapeFrom(InQuotedField), nil
		case classEOI:
			return Step{}, ErrUnclosedQuote
		default:
			return to(InQuotedField, AppendChar, ch), nil
		}

	case QuoteSeen:
		switch class {
		case classDelimiter:
			return to(StartOfField, CommitField, 0), nil
		case classQuote:
			return to(InQuotedField, AppendChar, d.Quote), nil
		case classCR, classLF:
			return to(EndOfRecord, CommitRow, 0), nil
		case classEOI:
			return to(Finished, CommitRow, 0), nil
		default:
			return Step{}, &DataAfterClosingQuoteError{Char: ch}
		}

	case EscapeSeen:
		if class == classEOI {
			return Step{}, ErrUnexpectedEOF
		}
		resume := cur.Resume
		if resume != InQuotedField {
			resume = InUnquotedField
		}
		return to(resume, AppendChar, ch), nil

	case EndOfRecord:
		switch class {
		case classLF:
			// Second half of a CRLF pair.
			return to(StartOfField, NoOp, 0), nil
		case classEOI:
			return to(StartOfField, NoOp, 0), nil
		default:
			return startOfField(class, ch), nil
		}

	case Finished:
		return Step{}, ErrFinished
	}

	return Step{}, fmt.Errorf("chunkparser: unknown state %v", cur.State)
}

func startOfField(class charClass, ch rune) Step {
	switch class {
	case classDelimiter:
		return to(StartOfField, CommitField, 0)
	case classQuote:
		return to(InQuotedField, NoOp, 0)
	case classEscape:
		return escapeFrom(InUnquotedField)
	case classCR, classLF:
		return to(EndOfRecord, CommitRow, 0)
	case classEOI:
		return to(Finished, NoOp, 0)
	default:
		return to(InUnquotedField, AppendChar, ch)
	}
}
