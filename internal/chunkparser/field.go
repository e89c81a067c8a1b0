package chunkparser

import "unicode/utf8"

const initialFieldCapacity = 256

// fieldBuilder accumulates the bytes of one field. The buffer is reset by
// length only, so its capacity settles at the largest field seen.
type fieldBuilder struct {
	buf    []byte
	quoted bool
}

func newFieldBuilder() fieldBuilder {
	return fieldBuilder{buf: make([]byte, 0, initialFieldCapacity)}
}

func (f *fieldBuilder) appendRune(r rune) {
	if r < utf8.RuneSelf {
		f.buf = append(f.buf, byte(r))
		return
	}
	f.buf = utf8.AppendRune(f.buf, r)
}

// appendByte appends a raw byte that did not decode as UTF-8. commit reports it.
func (f *fieldBuilder) appendByte(b byte) {
	f.buf = append(f.buf, b)
}

// markQuoted records that the field was opened with a quote character.
func (f *fieldBuilder) markQuoted() {
	f.quoted = true
}

// commit returns the field and whether it was quoted, then resets the builder.
func (f *fieldBuilder) commit() (string, bool, error) {
	quoted := f.quoted
	f.quoted = false
	if !utf8.Valid(f.buf) {
		f.buf = f.buf[:0]
		return "", quoted, ErrInvalidUTF8
	}
	s := string(f.buf)
	f.buf = f.buf[:0]
	return s, quoted, nil
}

