package extract

import (
	"strings"
	"unicode"
)

// ChunkOptions are the by-title chunking thresholds, in characters.
type ChunkOptions struct {
	// MaxCharacters is the hard cap on a text unit.
	MaxCharacters int
	// NewAfterNChars closes a chunk once it reaches this size.
	NewAfterNChars int
	// CombineTextUnderNChars merges a section this small into the next one.
	CombineTextUnderNChars int
}

// DefaultChunkOptions returns the thresholds the pipeline was tuned with.
func DefaultChunkOptions() ChunkOptions {
	return ChunkOptions{
		MaxCharacters:          4000,
		NewAfterNChars:         3800,
		CombineTextUnderNChars: 2000,
	}
}

// normalized clamps the thresholds into a consistent order.
func (o ChunkOptions) normalized() ChunkOptions {
	defaults := DefaultChunkOptions()
	if o.MaxCharacters <= 0 {
		o.MaxCharacters = defaults.MaxCharacters
	}
	if o.NewAfterNChars <= 0 || o.NewAfterNChars > o.MaxCharacters {
		o.NewAfterNChars = o.MaxCharacters
	}
	if o.CombineTextUnderNChars < 0 {
		o.CombineTextUnderNChars = 0
	}
	if o.CombineTextUnderNChars > o.NewAfterNChars {
		o.CombineTextUnderNChars = o.NewAfterNChars
	}
	return o
}

// textElement is one piece of prose in document order.
type textElement struct {
	text      string
	title     bool
	page      int
	elementID string
}

// textChunk is a finished text unit.
type textChunk struct {
	text      string
	page      int
	elementID string
}

// chunker accumulates text elements into by-title chunks.
type chunker struct {
	opts    ChunkOptions
	parts   []string
	size    int
	page    int
	element string
	out     []textChunk
}

func newChunker(opts ChunkOptions) *chunker {
	return &chunker{opts: opts.normalized()}
}

// add places an element into the current chunk, closing chunks as the
// thresholds require. A title starts a new section unless the current one is
// still small enough to be combined.
func (c *chunker) add(el textElement) {
	text := strings.TrimSpace(el.text)
	if text == "" {
		return
	}

	if el.title && c.size >= c.opts.CombineTextUnderNChars {
		c.flush()
	}

	for _, piece := range splitText(text, c.opts.MaxCharacters) {
		if c.size > 0 && c.size+len(piece)+2 > c.opts.MaxCharacters {
			c.flush()
		}
		if c.size == 0 {
			c.page = el.page
			c.element = el.elementID
		}
		c.parts = append(c.parts, piece)
		c.size += len(piece)
		if len(c.parts) > 1 {
			c.size += 2
		}
		if c.size >= c.opts.NewAfterNChars {
			c.flush()
		}
	}
}

// flush closes the current chunk, if any.
func (c *chunker) flush() {
	if c.size == 0 {
		return
	}
	c.out = append(c.out, textChunk{
		text:      strings.Join(c.parts, "\n\n"),
		page:      c.page,
		elementID: c.element,
	})
	c.parts = nil
	c.size = 0
}

// drain flushes and returns the chunks produced so far.
func (c *chunker) drain() []textChunk {
	c.flush()
	out := c.out
	c.out = nil
	return out
}

// splitText cuts text into pieces of at most max bytes, preferring whitespace
// boundaries and never splitting a UTF-8 sequence.
func splitText(text string, max int) []string {
	var pieces []string
	for len(text) > max {
		cut := max
		for cut > 0 && !isRuneStart(text[cut]) {
			cut--
		}
		if ws := strings.LastIndexFunc(text[:cut], unicode.IsSpace); ws > 0 {
			cut = ws
		}
		if cut == 0 {
			cut = max
		}
		pieces = append(pieces, strings.TrimSpace(text[:cut]))
		text = strings.TrimSpace(text[cut:])
	}
	if text != "" {
		pieces = append(pieces, text)
	}
	return pieces
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
