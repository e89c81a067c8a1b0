// Package config loads csvchunk settings from a file.
//
// The file is chosen by the --dialect-file flag or, failing that, the
// CSVCHUNK_DIALECT environment variable. Files ending in .yaml or .yml are
// read as YAML; .json and .jsonc files are read as JSON with comments and
// trailing commas allowed. Command-line flags override file values.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/shapestone/shape-csvstream/pkg/csv"
)

// EnvVar names the environment variable holding the config file path.
const EnvVar = "CSVCHUNK_DIALECT"

// Formats accepted by Output.Format.
var Formats = []string{"json", "cbor", "csv", "digest"}

// Config holds every setting csvchunk can read from a file.
type Config struct {
	// Dialect describes the input.
	Dialect DialectConfig `yaml:"dialect" json:"dialect"`

	// Input controls how input bytes are read.
	Input InputConfig `yaml:"input" json:"input"`

	// Output controls how rows are written.
	Output OutputConfig `yaml:"output" json:"output"`
}

// DialectConfig spells each dialect character as a one-character string.
// The names "tab", "comma", "semicolon", "pipe" and "none" are also accepted.
type DialectConfig struct {
	Delimiter string `yaml:"delimiter" json:"delimiter"`
	Quote     string `yaml:"quote" json:"quote"`
	// Escape defaults to doubled quotes when empty or "none".
	Escape string `yaml:"escape" json:"escape"`
}

// InputConfig controls how input bytes are read.
type InputConfig struct {
	// ChunkSize is the number of bytes handed to the parser at a time.
	// Default: 65536
	ChunkSize int `yaml:"chunk_size" json:"chunk_size"`

	// Encoding is the character set of the input after decompression.
	// Default: utf-8
	Encoding string `yaml:"encoding" json:"encoding"`
}

// OutputConfig controls how rows are written.
type OutputConfig struct {
	// Format is one of json, cbor, csv or digest.
	// Default: json
	Format string `yaml:"format" json:"format"`

	// Delimiter is the field delimiter used by the csv format.
	// Default: the input delimiter
	Delimiter string `yaml:"delimiter" json:"delimiter"`

	// CRLF terminates csv output rows with \r\n.
	CRLF bool `yaml:"crlf" json:"crlf"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Dialect: DialectConfig{Delimiter: ",", Quote: `"`},
		Input:   InputConfig{ChunkSize: csv.DefaultChunkSize, Encoding: "utf-8"},
		Output:  OutputConfig{Format: "json"},
	}
}

// Load reads the file named by path, or by the CSVCHUNK_DIALECT environment
// variable when path is empty. With neither set it returns Default().
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvVar)
	}
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile reads a YAML or JSONC file over the defaults and validates the
// result.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	cfg := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	case ".json", ".jsonc":
		err = json.Unmarshal(jsonc.ToJSON(data), cfg)
	default:
		return nil, fmt.Errorf("%s: unsupported config extension %q (want .yaml, .yml, .json or .jsonc)", path, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks every field and reports all problems at once.
func (c *Config) Validate() error {
	var errs []error

	if _, err := c.CSVDialect(); err != nil {
		errs = append(errs, err)
	}
	if c.Input.ChunkSize < 1 {
		errs = append(errs, fmt.Errorf("input.chunk_size must be positive, got %d", c.Input.ChunkSize))
	}
	if !slices.Contains(Formats, c.Output.Format) {
		errs = append(errs, fmt.Errorf("output.format must be one of: %v", Formats))
	}
	if c.Output.Delimiter != "" {
		if _, err := ParseChar("output.delimiter", c.Output.Delimiter); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// CSVDialect converts the dialect section to a validated csv.Dialect.
func (c *Config) CSVDialect() (csv.Dialect, error) {
	var d csv.Dialect
	var err error
	if d.Delimiter, err = ParseChar("dialect.delimiter", c.Dialect.Delimiter); err != nil {
		return csv.Dialect{}, err
	}
	if d.Quote, err = ParseChar("dialect.quote", c.Dialect.Quote); err != nil {
		return csv.Dialect{}, err
	}
	if c.Dialect.Escape != "" && c.Dialect.Escape != "none" {
		if d.Escape, err = ParseChar("dialect.escape", c.Dialect.Escape); err != nil {
			return csv.Dialect{}, err
		}
	}
	if err := d.Validate(); err != nil {
		return csv.Dialect{}, err
	}
	return d, nil
}

// OutputDialect returns the dialect for csv output: the input dialect with
// the output delimiter substituted when one is set.
func (c *Config) OutputDialect() (csv.Dialect, error) {
	d, err := c.CSVDialect()
	if err != nil {
		return csv.Dialect{}, err
	}
	if c.Output.Delimiter != "" {
		if d.Delimiter, err = ParseChar("output.delimiter", c.Output.Delimiter); err != nil {
			return csv.Dialect{}, err
		}
	}
	if err := d.Validate(); err != nil {
		return csv.Dialect{}, err
	}
	return d, nil
}

var charNames = map[string]rune{
	"tab":       '\t',
	"comma":     ',',
	"semicolon": ';',
	"pipe":      '|',
	"space":     ' ',
}

// ParseChar converts a one-character string or a character name to a rune.
// Flag values go through the same conversion as file values.
func ParseChar(field, s string) (rune, error) {
	if r, ok := charNames[strings.ToLower(s)]; ok {
		return r, nil
	}
	if s == `\t` {
		return '\t', nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if s == "" || size != len(s) || r == utf8.RuneError {
		return 0, fmt.Errorf("%s must be a single character, got %q", field, s)
	}
	return r, nil
}
