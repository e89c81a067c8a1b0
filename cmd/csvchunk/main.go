package main

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/shapestone/shape-csvstream/internal/config"
	"github.com/shapestone/shape-csvstream/internal/sink"
	"github.com/shapestone/shape-csvstream/internal/source"
	"github.com/shapestone/shape-csvstream/pkg/csv"
)

// version is set at link time with -ldflags "-X main.version=...".
var version = "dev"

// debugEnv forces debug logging when set to a non-empty value.
const debugEnv = "CSVCHUNK_DEBUG"

// sniffSampleSize is how much of each input --sniff looks at.
const sniffSampleSize = 64 * 1024

const (
	exitDecode = 1
	exitUsage  = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		var coder interface{ ExitCode() int }
		if errors.As(err, &coder) {
			os.Exit(coder.ExitCode())
		}
		os.Exit(1)
	}
}

// exitError carries the process exit status for an error.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }
func (e *exitError) ExitCode() int { return e.code }

func usageError(format string, args ...any) error {
	return &exitError{code: exitUsage, err: fmt.Errorf(format, args...)}
}

// flags holds raw flag values. Dialect and output settings are applied over
// the loaded config only when the flag was given.
type flags struct {
	delimiter    string
	quote        string
	escape       string
	dialectFile  string
	sniff        bool
	chunkSize    int
	encoding     string
	compression  string
	format       string
	outDelimiter string
	crlf         bool
	header       bool
	jobs         int
	logLevel     string
}

func newFlagSet(f *flags) *pflag.FlagSet {
	def := config.Default()
	flagSet := pflag.NewFlagSet("csvchunk", pflag.ContinueOnError)
	flagSet.StringVarP(&f.delimiter, "delimiter", "d", def.Dialect.Delimiter, "field delimiter (a character, or tab, comma, semicolon, pipe)")
	flagSet.StringVarP(&f.quote, "quote", "q", def.Dialect.Quote, "quote character")
	flagSet.StringVarP(&f.escape, "escape", "e", "none", `escape character inside quotes ("none" for doubled quotes)`)
	flagSet.StringVar(&f.dialectFile, "dialect-file", "", "YAML or JSONC settings file (default: $"+config.EnvVar+")")
	flagSet.BoolVar(&f.sniff, "sniff", false, "guess delimiter and quote from the start of each input")
	flagSet.IntVar(&f.chunkSize, "chunk-size", def.Input.ChunkSize, "bytes handed to the parser per chunk")
	flagSet.StringVar(&f.encoding, "encoding", def.Input.Encoding, "input character set (utf-8, latin1, windows-1252, utf-16le, ...)")
	flagSet.StringVar(&f.compression, "compression", "auto", "input compression: auto, none, zstd or lz4")
	flagSet.StringVarP(&f.format, "format", "f", def.Output.Format, "output format: "+strings.Join(config.Formats, ", "))
	flagSet.StringVar(&f.outDelimiter, "out-delimiter", "", "delimiter for csv output (default: the input delimiter)")
	flagSet.BoolVar(&f.crlf, "crlf", false, "end csv output rows with CRLF")
	flagSet.BoolVar(&f.header, "header", false, "treat the first row as field names (json and cbor write objects)")
	flagSet.IntVarP(&f.jobs, "jobs", "j", runtime.GOMAXPROCS(0), "inputs decoded at once")
	flagSet.StringVar(&f.logLevel, "log-level", "warn", "debug, info, warn or error (default debug when $"+debugEnv+" is set)")
	flagSet.BoolP("help", "h", false, "show help")
	flagSet.Bool("version", false, "print the version and exit")
	return flagSet
}

// job is the validated settings shared by every input.
type job struct {
	dialect     csv.Dialect
	sniff       bool
	outDelim    rune
	chunkSize   int
	encoding    string
	compression source.Compression
	format      sink.Format
	crlf        bool
	header      bool
	jobs        int
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) > 0 && args[0] == "--version" {
		fmt.Fprintf(stdout, "csvchunk %s\n", version)
		return nil
	}

	var f flags
	flagSet := newFlagSet(&f)
	flagSet.SetOutput(io.Discard)
	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			printHelp(stderr, flagSet)
			return nil
		}
		return &exitError{code: exitUsage, err: err}
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(stderr, flagSet)
		return nil
	}
	if v, _ := flagSet.GetBool("version"); v {
		fmt.Fprintf(stdout, "csvchunk %s\n", version)
		return nil
	}

	logger, err := newLogger(stderr, f.logLevel)
	if err != nil {
		return err
	}

	j, err := buildJob(flagSet, &f)
	if err != nil {
		return err
	}

	inputs := flagSet.Args()
	if len(inputs) == 0 {
		inputs = []string{source.Stdin}
	}
	logger.Debug("starting",
		"inputs", len(inputs),
		"jobs", j.jobs,
		"format", j.format,
		"chunk_size", j.chunkSize,
	)

	failed, err := decodeAll(ctx, logger, j, inputs, stdout)
	if err != nil {
		return err
	}
	if failed > 0 {
		return &exitError{code: exitDecode, err: fmt.Errorf("%d of %d inputs failed to decode", failed, len(inputs))}
	}
	return nil
}

func printHelp(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(w, `csvchunk decodes CSV in fixed-size chunks.

Usage:
  csvchunk [flags] [file...]

With no file, or when file is -, standard input is read.

Examples:
  # JSON lines from a compressed export
  csvchunk data.csv.zst

  # Semicolon-separated Latin-1 input, re-encoded as comma CSV
  csvchunk -d semicolon --encoding latin1 -f csv --out-delimiter comma in.csv

  # Check that chunking does not change the decoded rows
  csvchunk -f digest --chunk-size 1 in.csv
  csvchunk -f digest --chunk-size 65536 in.csv

Flags:
`)
	flagSet.SetOutput(w)
	flagSet.PrintDefaults()
}

// newLogger returns a text logger when w is a terminal and a JSON logger
// otherwise.
func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if os.Getenv(debugEnv) != "" {
		lvl = slog.LevelDebug
	} else if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, usageError("invalid --log-level %q", level)
	}

	options := &slog.HandlerOptions{Level: lvl}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return slog.New(slog.NewTextHandler(w, options)), nil
	}
	return slog.New(slog.NewJSONHandler(w, options)), nil
}

// buildJob loads the config file and applies the flags that were set.
func buildJob(flagSet *pflag.FlagSet, f *flags) (*job, error) {
	cfg, err := config.Load(f.dialectFile)
	if err != nil {
		return nil, &exitError{code: exitUsage, err: err}
	}

	if flagSet.Changed("delimiter") {
		cfg.Dialect.Delimiter = f.delimiter
	}
	if flagSet.Changed("quote") {
		cfg.Dialect.Quote = f.quote
	}
	if flagSet.Changed("escape") {
		cfg.Dialect.Escape = f.escape
	}
	if flagSet.Changed("chunk-size") {
		cfg.Input.ChunkSize = f.chunkSize
	}
	if flagSet.Changed("encoding") {
		cfg.Input.Encoding = f.encoding
	}
	if flagSet.Changed("format") {
		cfg.Output.Format = f.format
	}
	if flagSet.Changed("out-delimiter") {
		cfg.Output.Delimiter = f.outDelimiter
	}
	if flagSet.Changed("crlf") {
		cfg.Output.CRLF = f.crlf
	}
	if err := cfg.Validate(); err != nil {
		return nil, &exitError{code: exitUsage, err: err}
	}

	j := &job{
		sniff:     f.sniff,
		chunkSize: cfg.Input.ChunkSize,
		encoding:  cfg.Input.Encoding,
		format:    sink.Format(cfg.Output.Format),
		crlf:      cfg.Output.CRLF,
		header:    f.header,
		jobs:      f.jobs,
	}
	if j.dialect, err = cfg.CSVDialect(); err != nil {
		return nil, &exitError{code: exitUsage, err: err}
	}
	if cfg.Output.Delimiter != "" {
		if j.outDelim, err = config.ParseChar("output.delimiter", cfg.Output.Delimiter); err != nil {
			return nil, &exitError{code: exitUsage, err: err}
		}
	}
	if _, err := source.LookupEncoding(j.encoding); err != nil {
		return nil, &exitError{code: exitUsage, err: err}
	}
	if j.compression, err = source.ParseCompression(f.compression); err != nil {
		return nil, &exitError{code: exitUsage, err: err}
	}
	if j.jobs < 1 {
		return nil, usageError("--jobs must be at least 1, got %d", j.jobs)
	}
	return j, nil
}

// decodeAll decodes every input and writes the output in input order. It
// returns the number of inputs that failed, and an error only when stdout
// cannot be written.
func decodeAll(ctx context.Context, logger *slog.Logger, j *job, inputs []string, stdout io.Writer) (int, error) {
	failed := 0
	report := func(name string, err error) {
		failed++
		attrs := []any{"input", name, "error", err}
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			attrs = append(attrs, "line", perr.Line, "column", perr.Column)
		}
		logger.Error("decode failed", attrs...)
	}

	if j.jobs == 1 || len(inputs) == 1 {
		for _, name := range inputs {
			if err := decodeInput(ctx, logger, j, name, stdout); err != nil {
				if ctx.Err() != nil {
					return failed, ctx.Err()
				}
				report(name, err)
			}
		}
		return failed, nil
	}

	// Each input is decoded into its own buffer so output keeps input order.
	outputs := make([]bytes.Buffer, len(inputs))
	errs := make([]error, len(inputs))
	var group errgroup.Group
	group.SetLimit(j.jobs)
	for i, name := range inputs {
		group.Go(func() error {
			errs[i] = decodeInput(ctx, logger, j, name, &outputs[i])
			return nil
		})
	}
	group.Wait()

	if err := ctx.Err(); err != nil {
		return failed, err
	}
	for i, name := range inputs {
		if _, err := outputs[i].WriteTo(stdout); err != nil {
			return failed, fmt.Errorf("writing output: %w", err)
		}
		if errs[i] != nil {
			report(name, errs[i])
		}
	}
	return failed, nil
}

// decodeInput streams one input through its own parser into w.
func decodeInput(ctx context.Context, logger *slog.Logger, j *job, name string, w io.Writer) error {
	in, err := source.Open(name, source.Options{Compression: j.compression, Encoding: j.encoding})
	if err != nil {
		return err
	}
	defer in.Close()

	var r io.Reader = in
	dialect := j.dialect
	if j.sniff {
		br := bufio.NewReaderSize(in, sniffSampleSize)
		sample, err := br.Peek(sniffSampleSize)
		if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
			return err
		}
		dialect = csv.NewSniffer(string(sample)).Dialect()
		logger.Info("sniffed dialect",
			"input", name,
			"delimiter", string(dialect.Delimiter),
			"quote", string(dialect.Quote),
		)
		r = br
	}

	parser, err := csv.NewChunkParser(dialect)
	if err != nil {
		return err
	}

	outDialect := dialect
	if j.outDelim != 0 {
		outDialect.Delimiter = j.outDelim
	}
	out, err := sink.New(j.format, w, sink.Options{
		Dialect: outDialect,
		CRLF:    j.crlf,
		Header:  j.header,
		Name:    name,
	})
	if err != nil {
		return err
	}

	rows, chunks := 0, 0
	err = source.Chunks(ctx, r, j.chunkSize, func(chunk []byte) error {
		result, err := parser.ProcessBytes(chunk)
		if err != nil {
			return err
		}
		chunks++
		rows += len(result.Rows)
		logger.Debug("chunk",
			"input", name,
			"chunk", chunks,
			"bytes", len(chunk),
			"rows", len(result.Rows),
			"leftover", len(result.Leftover),
		)
		return out.WriteRows(result.Rows)
	})
	if err == nil {
		var last []string
		if last, err = parser.Finalize(); err == nil && last != nil {
			rows++
			err = out.WriteRows([][]string{last})
		}
	}
	if err != nil {
		out.Flush()
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	logger.Info("decoded",
		"input", name,
		"compression", in.Compression.String(),
		"chunks", chunks,
		"rows", rows,
	)
	return nil
}
