// Csvchunk decodes CSV files in fixed-size chunks and writes the rows as
// JSON lines, a CBOR sequence, re-encoded CSV or a BLAKE3 row digest.
//
// Each input gets its own parser, so several files can be decoded at once
// with --jobs; their output is still written in argument order. Inputs may
// be zstd or lz4 compressed and may use a legacy character set (--encoding).
// The dialect comes from flags, from a YAML or JSONC file named by
// --dialect-file or CSVCHUNK_DIALECT, or from --sniff, which guesses it from
// the start of each input.
//
// The digest format prints one line per input:
//
//	<blake3 hex>  <rows>  <name>
//
// and is the same for every --chunk-size, which makes it a quick check that
// the decoder does not depend on where chunks happen to be cut.
//
// Exit status is 0 on success, 1 when any input failed to decode and 2 for
// invalid flags or configuration.
package main
