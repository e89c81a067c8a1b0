package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shapestone/shape-csvstream/pkg/csv"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	d, err := cfg.CSVDialect()
	if err != nil {
		t.Fatal(err)
	}
	if d != csv.DefaultDialect() {
		t.Errorf("CSVDialect() = %+v, want default", d)
	}
	if cfg.Input.ChunkSize != csv.DefaultChunkSize {
		t.Errorf("ChunkSize = %d", cfg.Input.ChunkSize)
	}
}

func TestLoadFile_YAML(t *testing.T) {
	path := writeFile(t, "dialect.yaml", `
dialect:
  delimiter: ";"
  quote: "'"
  escape: "\\"
input:
  chunk_size: 4096
  encoding: windows-1252
output:
  format: csv
  delimiter: tab
  crlf: true
`)
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	d, err := cfg.CSVDialect()
	if err != nil {
		t.Fatal(err)
	}
	if want := (csv.Dialect{Delimiter: ';', Quote: '\'', Escape: '\\'}); d != want {
		t.Errorf("CSVDialect() = %+v, want %+v", d, want)
	}
	if cfg.Input.ChunkSize != 4096 || cfg.Input.Encoding != "windows-1252" {
		t.Errorf("Input = %+v", cfg.Input)
	}
	out, err := cfg.OutputDialect()
	if err != nil {
		t.Fatal(err)
	}
	if out.Delimiter != '\t' || !cfg.Output.CRLF {
		t.Errorf("OutputDialect() = %+v, CRLF = %v", out, cfg.Output.CRLF)
	}
}

func TestLoadFile_JSONC(t *testing.T) {
	path := writeFile(t, "dialect.jsonc", `{
  // pipe separated export
  "dialect": {"delimiter": "|", "quote": "\""},
  "output": {"format": "digest",},
}`)
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	d, _ := cfg.CSVDialect()
	if d.Delimiter != '|' || d.EscapeChar() != '"' {
		t.Errorf("CSVDialect() = %+v", d)
	}
	if cfg.Output.Format != "digest" {
		t.Errorf("Format = %q", cfg.Output.Format)
	}
	// Unset keys keep their defaults.
	if cfg.Input.ChunkSize != csv.DefaultChunkSize {
		t.Errorf("ChunkSize = %d, want default", cfg.Input.ChunkSize)
	}
}

func TestLoadFile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		want    []string
	}{
		{"unknown extension", "dialect.toml", "x = 1", []string{"unsupported config extension"}},
		{"bad yaml", "bad.yaml", "dialect: [", []string{"bad.yaml"}},
		{
			name:    "multiple problems",
			file:    "multi.yaml",
			content: "dialect:\n  delimiter: ab\ninput:\n  chunk_size: 0\noutput:\n  format: xml\n",
			want: []string{
				"dialect.delimiter must be a single character",
				"input.chunk_size must be positive",
				"output.format must be one of",
			},
		},
		{
			name:    "ambiguous dialect",
			file:    "same.yml",
			content: "dialect:\n  delimiter: '\"'\n",
			want:    []string{"delimiter and quote"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFile(writeFile(t, tt.file, tt.content))
			if err == nil {
				t.Fatal("LoadFile() succeeded, want error")
			}
			for _, w := range tt.want {
				if !strings.Contains(err.Error(), w) {
					t.Errorf("error %q does not mention %q", err, w)
				}
			}
		})
	}

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadFile(filepath.Join(t.TempDir(), "none.yaml")); err == nil {
			t.Fatal("LoadFile() of missing file succeeded")
		}
	})
}

func TestLoad_Env(t *testing.T) {
	path := writeFile(t, "env.yaml", "dialect:\n  delimiter: tab\n")
	t.Setenv(EnvVar, path)

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Dialect.Delimiter != "tab" {
		t.Errorf("Delimiter = %q, want tab from %s", cfg.Dialect.Delimiter, EnvVar)
	}

	t.Setenv(EnvVar, "")
	cfg, err = Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Dialect.Delimiter != "," {
		t.Errorf("Load() without file should return defaults, got %q", cfg.Dialect.Delimiter)
	}
}

func TestParseChar(t *testing.T) {
	tests := []struct {
		in      string
		want    rune
		wantErr bool
	}{
		{",", ',', false},
		{"tab", '\t', false},
		{"TAB", '\t', false},
		{`\t`, '\t', false},
		{"\t", '\t', false},
		{"§", '§', false},
		{"pipe", '|', false},
		{"", 0, true},
		{"ab", 0, true},
		{"\xff", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseChar("x", tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseChar(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseChar(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
