package csv_test

import (
	"reflect"
	"testing"

	"github.com/shapestone/shape-csvstream/pkg/csv"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple", "name,age\nAlice,30\n", "name,age\nAlice,30\n"},
		{"adds final newline", "a,b", "a,b\n"},
		{"quotes commas", "\"a,b\",c\n", "\"a,b\",c\n"},
		{"doubles quotes", `"say ""hi"""` + "\n", `"say ""hi"""` + "\n"},
		{"quotes newlines", "\"a\nb\"\n", "\"a\nb\"\n"},
		{"keeps empty fields", "a,,c\n", "a,,c\n"},
		{"keeps quoted empty row", "\"\"\n", "\"\"\n"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node, err := csv.Parse(tt.input)
			if err != nil {
				t.Fatal(err)
			}
			out, err := csv.Render(node)
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			if string(out) != tt.want {
				t.Errorf("Render() = %q, want %q", out, tt.want)
			}
		})
	}
}

func TestRenderWithOptions(t *testing.T) {
	node, err := csv.RecordsToNode([][]string{{"a", "b\tc"}, {"1", "2"}})
	if err != nil {
		t.Fatal(err)
	}
	out, err := csv.RenderWithOptions(node, csv.WriterOptions{Dialect: csv.TSV, UseCRLF: true})
	if err != nil {
		t.Fatal(err)
	}
	want := "a\t\"b\tc\"\r\n1\t2\r\n"
	if string(out) != want {
		t.Errorf("RenderWithOptions() = %q, want %q", out, want)
	}
}

func TestAppendField(t *testing.T) {
	tests := []struct {
		name    string
		field   string
		dialect csv.Dialect
		want    string
	}{
		{"plain", "abc", csv.DefaultDialect(), "abc"},
		{"empty", "", csv.DefaultDialect(), ""},
		{"delimiter", "a,b", csv.DefaultDialect(), `"a,b"`},
		{"quote doubled", `a"b`, csv.DefaultDialect(), `"a""b"`},
		{"CR", "a\rb", csv.DefaultDialect(), "\"a\rb\""},
		{"other delimiter not quoted", "a,b", csv.TSV, "a,b"},
		{"backslash escapes quote", `a"b`, csv.BackslashEscaped, `"a\"b"`},
		{"backslash escapes itself", `a\b`, csv.BackslashEscaped, `"a\\b"`},
		{"single quote dialect", "it's", csv.Dialect{Delimiter: ',', Quote: '\''}, "'it''s'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(csv.AppendField(nil, tt.field, tt.dialect))
			if got != tt.want {
				t.Errorf("AppendField(%q) = %q, want %q", tt.field, got, tt.want)
			}
		})
	}
}

func TestRenderRows_RoundTrip(t *testing.T) {
	rows := [][]string{
		{"plain", "", "with,comma"},
		{`"quoted"`, "line\nbreak", "cr\rhere"},
		{`back\slash`, "tab\there", "pipe|here"},
		{""},
		{"ünïcödé", "日本語", "emoji 🎉"},
	}
	dialects := map[string]csv.Dialect{
		"default":   csv.DefaultDialect(),
		"tsv":       csv.TSV,
		"psv":       csv.PSV,
		"backslash": csv.BackslashEscaped,
		"semicolon": {Delimiter: ';', Quote: '\''},
	}

	for name, d := range dialects {
		for _, crlf := range []bool{false, true} {
			opts := csv.WriterOptions{Dialect: d, UseCRLF: crlf}
			out, err := csv.RenderRows(rows, opts)
			if err != nil {
				t.Fatalf("%s: RenderRows() error = %v", name, err)
			}
			got, err := csv.ReadAll(string(out), d)
			if err != nil {
				t.Fatalf("%s: ReadAll(%q) error = %v", name, out, err)
			}
			if !reflect.DeepEqual(got, rows) {
				t.Errorf("%s crlf=%v: round trip = %q, want %q", name, crlf, got, rows)
			}
		}
	}
}

func TestRenderRows_InvalidDialect(t *testing.T) {
	_, err := csv.RenderRows([][]string{{"a"}}, csv.WriterOptions{Dialect: csv.Dialect{Delimiter: '\n', Quote: '"'}})
	if err == nil {
		t.Fatal("RenderRows() with invalid dialect succeeded")
	}
}
