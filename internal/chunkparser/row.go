package chunkparser

import "slices"

const initialRowCapacity = 16

// rowBuilder accumulates the fields of one row. Like fieldBuilder, it keeps
// its backing array across rows.
type rowBuilder struct {
	fields []string
	// explicit is set when any field of the row was quoted, which keeps a
	// lone "" line from being taken for a blank line.
	explicit bool
}

func newRowBuilder() rowBuilder {
	return rowBuilder{fields: make([]string, 0, initialRowCapacity)}
}

func (r *rowBuilder) commitField(field string, quoted bool) {
	r.fields = append(r.fields, field)
	if quoted {
		r.explicit = true
	}
}

func (r *rowBuilder) pending() bool {
	return len(r.fields) > 0
}

// commitRow returns a copy of the accumulated fields and resets the builder.
// Blank lines, a single unquoted empty field, report ok == false.
func (r *rowBuilder) commitRow() (row []string, ok bool) {
	blank := len(r.fields) == 0 || (len(r.fields) == 1 && r.fields[0] == "" && !r.explicit)
	if !blank {
		row = slices.Clone(r.fields)
	}
	clear(r.fields)
	r.fields = r.fields[:0]
	r.explicit = false
	return row, !blank
}
