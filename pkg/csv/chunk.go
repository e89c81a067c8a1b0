package csv

import (
	"github.com/shapestone/shape-csvstream/internal/chunkparser"
)

// ChunkResult holds the rows completed by one call to ProcessChunk or
// ProcessBytes.
type ChunkResult struct {
	// Rows are the rows completed by the call, in input order.
	Rows [][]string
	// Leftover is the chunk text after its last record terminator. That text
	// is already held by the parser; Leftover is for diagnostics only and
	// must not be submitted again.
	Leftover string
}

// ChunkParser decodes CSV delivered in arbitrary fragments.
//
// Feed fragments in order with ProcessChunk, then call Finalize once the
// input is exhausted. The rows produced are the same however the input is
// split. A ChunkParser is not safe for concurrent use; use one per input.
//
//	p, err := csv.NewChunkParser(csv.DefaultDialect())
//	if err != nil {
//	    // invalid dialect
//	}
//	for chunk := range chunks {
//	    result, err := p.ProcessChunk(chunk)
//	    if err != nil {
//	        // decoding failed; the parser is finished
//	    }
//	    consume(result.Rows)
//	}
//	last, err := p.Finalize()
type ChunkParser struct {
	engine *chunkparser.Parser
}

// NewChunkParser returns a parser for the given dialect. It fails with an
// *OptionsError if the dialect is ambiguous.
func NewChunkParser(d Dialect) (*ChunkParser, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &ChunkParser{engine: chunkparser.New(d.engine())}, nil
}

// ProcessChunk decodes the next fragment of input and returns the rows it
// completed. Once a call fails, the parser is finished and every later call
// returns the same error.
func (p *ChunkParser) ProcessChunk(chunk string) (ChunkResult, error) {
	res, err := p.engine.ProcessChunk(chunk)
	return ChunkResult(res), err
}

// ProcessBytes is like ProcessChunk for raw bytes. A UTF-8 sequence split
// between two calls is reassembled before decoding.
func (p *ChunkParser) ProcessBytes(chunk []byte) (ChunkResult, error) {
	res, err := p.engine.ProcessBytes(chunk)
	return ChunkResult(res), err
}

// Finalize signals the end of input and returns the last row, or nil if
// none was pending. After Finalize the parser accepts no more input.
func (p *ChunkParser) Finalize() ([]string, error) {
	return p.engine.Finalize()
}

// Position returns the line and column of the next character to be decoded.
func (p *ChunkParser) Position() (line, column int) {
	return p.engine.Position()
}
