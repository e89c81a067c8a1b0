package csv_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/shapestone/shape-csvstream/pkg/csv"
)

// feed runs chunks through a fresh default-dialect parser and collects every
// row, including the one returned by Finalize.
func feed(t *testing.T, chunks ...string) [][]string {
	t.Helper()
	p, err := csv.NewChunkParser(csv.DefaultDialect())
	if err != nil {
		t.Fatal(err)
	}
	var rows [][]string
	for _, c := range chunks {
		res, err := p.ProcessChunk(c)
		if err != nil {
			t.Fatalf("ProcessChunk(%q) error = %v", c, err)
		}
		rows = append(rows, res.Rows...)
	}
	last, err := p.Finalize()
	if err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	if last != nil {
		rows = append(rows, last)
	}
	return rows
}

func TestChunkParser_SplitInput(t *testing.T) {
	tests := []struct {
		name   string
		chunks []string
		want   [][]string
	}{
		{
			name:   "quoted field split across chunks",
			chunks: []string{"id,name\n1,\"Jo", "hn Doe\"\n2,Jane\n"},
			want:   [][]string{{"id", "name"}, {"1", "John Doe"}, {"2", "Jane"}},
		},
		{
			name:   "CRLF split across chunks",
			chunks: []string{"a,b\r", "\nc,d\r\n"},
			want:   [][]string{{"a", "b"}, {"c", "d"}},
		},
		{
			name:   "doubled quote split across chunks",
			chunks: []string{`"say "`, `"hi"""` + "\n"},
			want:   [][]string{{`say "hi"`}},
		},
		{
			name:   "row completed by finalize",
			chunks: []string{"x,y"},
			want:   [][]string{{"x", "y"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := feed(t, tt.chunks...)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("rows = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestChunkParser_RowsPerChunk(t *testing.T) {
	p, err := csv.NewChunkParser(csv.DefaultDialect())
	if err != nil {
		t.Fatal(err)
	}

	res, err := p.ProcessChunk("id,name\n1,\"Jo")
	if err != nil {
		t.Fatal(err)
	}
	if want := [][]string{{"id", "name"}}; !reflect.DeepEqual(res.Rows, want) {
		t.Errorf("first chunk rows = %q, want %q", res.Rows, want)
	}
	if res.Leftover != "1,\"Jo" {
		t.Errorf("first chunk Leftover = %q", res.Leftover)
	}

	res, err = p.ProcessChunk("hn\"\n")
	if err != nil {
		t.Fatal(err)
	}
	if want := [][]string{{"1", "John"}}; !reflect.DeepEqual(res.Rows, want) {
		t.Errorf("second chunk rows = %q, want %q", res.Rows, want)
	}
	if res.Leftover != "" {
		t.Errorf("second chunk Leftover = %q, want empty", res.Leftover)
	}
}

func TestChunkParser_ProcessBytes(t *testing.T) {
	p, err := csv.NewChunkParser(csv.DefaultDialect())
	if err != nil {
		t.Fatal(err)
	}
	input := []byte("naïve,ok\n")
	var rows [][]string
	for i := range input {
		res, err := p.ProcessBytes(input[i : i+1])
		if err != nil {
			t.Fatal(err)
		}
		rows = append(rows, res.Rows...)
	}
	if _, err := p.Finalize(); err != nil {
		t.Fatal(err)
	}
	if want := [][]string{{"naïve", "ok"}}; !reflect.DeepEqual(rows, want) {
		t.Errorf("rows = %q, want %q", rows, want)
	}
}

func TestChunkParser_Errors(t *testing.T) {
	t.Run("unclosed quote at finalize", func(t *testing.T) {
		p, _ := csv.NewChunkParser(csv.DefaultDialect())
		if _, err := p.ProcessChunk("Start,\"Unclosed field"); err != nil {
			t.Fatal(err)
		}
		_, err := p.Finalize()
		if !errors.Is(err, csv.ErrUnclosedQuote) {
			t.Fatalf("Finalize() error = %v, want ErrUnclosedQuote", err)
		}
	})

	t.Run("escape at end of input", func(t *testing.T) {
		p, _ := csv.NewChunkParser(csv.BackslashEscaped)
		if _, err := p.ProcessChunk(`a,b\`); err != nil {
			t.Fatal(err)
		}
		_, err := p.Finalize()
		if !errors.Is(err, csv.ErrUnexpectedEOF) {
			t.Fatalf("Finalize() error = %v, want ErrUnexpectedEOF", err)
		}
	})

	t.Run("error is sticky", func(t *testing.T) {
		p, _ := csv.NewChunkParser(csv.DefaultDialect())
		_, first := p.ProcessChunk("ok\n\"bad\"x\n")
		if !errors.Is(first, csv.ErrDataAfterClosingQuote) {
			t.Fatalf("error = %v", first)
		}
		res, again := p.ProcessChunk("more\n")
		if again != first {
			t.Errorf("second error = %v, want %v", again, first)
		}
		if len(res.Rows) != 0 {
			t.Errorf("rows after failure = %q", res.Rows)
		}
		if _, err := p.Finalize(); err != first {
			t.Errorf("Finalize() error = %v, want %v", err, first)
		}
	})

	t.Run("input after finalize", func(t *testing.T) {
		p, _ := csv.NewChunkParser(csv.DefaultDialect())
		if _, err := p.Finalize(); err != nil {
			t.Fatal(err)
		}
		if _, err := p.ProcessChunk("a\n"); !errors.Is(err, csv.ErrFinished) {
			t.Errorf("ProcessChunk() after Finalize error = %v, want ErrFinished", err)
		}
	})
}

func TestChunkParser_Position(t *testing.T) {
	p, _ := csv.NewChunkParser(csv.DefaultDialect())
	if _, err := p.ProcessChunk("ab\r\ncd"); err != nil {
		t.Fatal(err)
	}
	line, col := p.Position()
	if line != 2 || col != 3 {
		t.Errorf("Position() = %d:%d, want 2:3", line, col)
	}
}

func TestNewChunkParser_RejectsDegenerateDialects(t *testing.T) {
	bad := []csv.Dialect{
		{Delimiter: ',', Quote: ','},
		{Delimiter: '\n', Quote: '"'},
		{Delimiter: ',', Quote: '"', Escape: ','},
		{Delimiter: 0, Quote: '"'},
		{Delimiter: ',', Quote: 0},
	}
	for _, d := range bad {
		if _, err := csv.NewChunkParser(d); err == nil {
			t.Errorf("NewChunkParser(%+v) succeeded, want error", d)
		}
	}
}
