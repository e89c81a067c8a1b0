// Package source opens csvchunk inputs and delivers them as byte chunks.
//
// An input may be zstd or lz4 compressed, detected by file extension or
// magic bytes, and may be in a legacy character set, which is transcoded to
// UTF-8 before it reaches the parser.
package source

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Stdin is the input name that reads standard input.
const Stdin = "-"

// Compression identifies how an input is compressed.
type Compression uint8

const (
	// CompressionAuto detects compression from the name and leading bytes.
	CompressionAuto Compression = iota
	// CompressionNone reads the input as is.
	CompressionNone
	// CompressionZstd reads a zstd stream.
	CompressionZstd
	// CompressionLZ4 reads an lz4 frame stream.
	CompressionLZ4
)

var (
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
	lz4Magic  = []byte{0x04, 0x22, 0x4d, 0x18}
)

// String returns the human-readable name of a compression.
func (c Compression) String() string {
	switch c {
	case CompressionAuto:
		return "auto"
	case CompressionNone:
		return "none"
	case CompressionZstd:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("unknown(%d)", c)
	}
}

// ParseCompression parses a compression from its string representation.
func ParseCompression(name string) (Compression, error) {
	switch strings.ToLower(name) {
	case "", "auto":
		return CompressionAuto, nil
	case "none":
		return CompressionNone, nil
	case "zstd", "zst":
		return CompressionZstd, nil
	case "lz4":
		return CompressionLZ4, nil
	default:
		return 0, fmt.Errorf("unknown compression: %q", name)
	}
}

// DetectCompression picks a compression from the input name, falling back
// to the magic number at the start of head.
func DetectCompression(name string, head []byte) Compression {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".zst", ".zstd":
		return CompressionZstd
	case ".lz4":
		return CompressionLZ4
	}
	switch {
	case bytes.HasPrefix(head, zstdMagic):
		return CompressionZstd
	case bytes.HasPrefix(head, lz4Magic):
		return CompressionLZ4
	}
	return CompressionNone
}

// Options controls how an input is decoded.
type Options struct {
	// Compression defaults to CompressionAuto.
	Compression Compression
	// Encoding names the character set; see LookupEncoding.
	Encoding string
}

// LookupEncoding returns the decoder for a character set name. The default,
// "utf-8", passes bytes through untouched apart from a leading byte order
// mark, so malformed UTF-8 still reaches the parser and is reported there.
func LookupEncoding(name string) (transform.Transformer, error) {
	var enc encoding.Encoding
	switch strings.ToLower(strings.ReplaceAll(name, "_", "-")) {
	case "", "utf-8", "utf8":
		return unicode.BOMOverride(transform.Nop), nil
	case "iso-8859-1", "latin1", "latin-1":
		enc = charmap.ISO8859_1
	case "iso-8859-15", "latin9":
		enc = charmap.ISO8859_15
	case "windows-1252", "cp1252":
		enc = charmap.Windows1252
	case "utf-16le":
		enc = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
	case "utf-16be":
		enc = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	case "utf-16":
		enc = unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM)
	default:
		return nil, fmt.Errorf("unknown encoding: %q", name)
	}
	return enc.NewDecoder(), nil
}

// Input is an opened, decoded input stream.
type Input struct {
	// Name is the path the input was opened from, or "-" for stdin.
	Name string
	// Compression is the compression that was detected or requested.
	Compression Compression

	r       io.Reader
	closers []io.Closer
}

// Open opens path, or stdin when path is "-", and wraps it per opts.
func Open(path string, opts Options) (*Input, error) {
	if path == Stdin {
		return NewInput(Stdin, os.Stdin, opts)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	in, err := NewInput(path, f, opts)
	if err != nil {
		f.Close()
		return nil, err
	}
	in.closers = append(in.closers, f)
	return in, nil
}

// NewInput wraps r, which came from name, per opts. The caller keeps
// ownership of r.
func NewInput(name string, r io.Reader, opts Options) (*Input, error) {
	tr, err := LookupEncoding(opts.Encoding)
	if err != nil {
		return nil, err
	}

	in := &Input{Name: name, Compression: opts.Compression}
	br := bufio.NewReader(r)
	if in.Compression == CompressionAuto {
		head, err := br.Peek(len(zstdMagic))
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		in.Compression = DetectCompression(name, head)
	}

	var raw io.Reader = br
	switch in.Compression {
	case CompressionZstd:
		dec, err := zstd.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("%s: zstd: %w", name, err)
		}
		rc := dec.IOReadCloser()
		in.closers = append(in.closers, rc)
		raw = rc
	case CompressionLZ4:
		raw = lz4.NewReader(br)
	}

	in.r = transform.NewReader(raw, tr)
	return in, nil
}

// Read reads decoded UTF-8 bytes.
func (in *Input) Read(p []byte) (int, error) {
	return in.r.Read(p)
}

// Close releases the decompressor and the underlying file, if any.
func (in *Input) Close() error {
	var errs []error
	for _, c := range in.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	in.closers = nil
	return errors.Join(errs...)
}

// Chunks reads r in chunks of size bytes and calls fn with each one. Every
// chunk except the last is exactly size bytes. The slice passed to fn is
// reused by the next call. Chunks stops early when ctx is done or fn fails.
func Chunks(ctx context.Context, r io.Reader, size int, fn func([]byte) error) error {
	if size < 1 {
		return fmt.Errorf("chunk size must be positive, got %d", size)
	}
	buf := make([]byte, size)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := io.ReadFull(r, buf)
		if n > 0 {
			if ferr := fn(buf[:n]); ferr != nil {
				return ferr
			}
		}
		switch {
		case err == nil:
		case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
			return nil
		default:
			return err
		}
	}
}
