package transcript

import (
	"strings"
	"unicode"
)

// Boundary selects the coarsest break the chunker will look for before
// falling back to finer ones.
type Boundary int

const (
	// BoundaryParagraph prefers blank-line breaks, then sentences, then words.
	BoundaryParagraph Boundary = iota
	// BoundarySentence prefers sentence ends, then words.
	BoundarySentence
	// BoundaryWord only splits on whitespace.
	BoundaryWord
)

// ChunkOptions configures transcript chunking. Sizes are measured in runes.
type ChunkOptions struct {
	MaxSize  int
	Overlap  int
	Boundary Boundary
}

// DefaultChunkOptions returns options sized for a long-context text model
func DefaultChunkOptions() ChunkOptions {
	return ChunkOptions{
		MaxSize:  80000,
		Overlap:  0,
		Boundary: BoundaryParagraph,
	}
}

// Chunk is one bounded segment of a transcript.
//
// Text is the segment as sent for analysis. Its first Overlap runes repeat
// the tail of the previous chunk; Body returns the rest. Start and End are
// rune offsets of the body in the original transcript, so splitting can
// resume from any chunk's End.
type Chunk struct {
	Index   int
	Text    string
	Overlap int
	Start   int
	End     int
}

// Body returns the chunk text without the leading overlap.
func (c Chunk) Body() string {
	return string([]rune(c.Text)[c.Overlap:])
}

// Chunker splits transcripts into segments that each fit MaxSize.
type Chunker struct {
	opts ChunkOptions
}

// NewChunker creates a chunker. A non-positive MaxSize uses the default and
// the overlap is clamped to a quarter of MaxSize.
func NewChunker(opts ChunkOptions) *Chunker {
	if opts.MaxSize <= 0 {
		opts.MaxSize = DefaultChunkOptions().MaxSize
	}
	if opts.Overlap < 0 {
		opts.Overlap = 0
	}
	if opts.Overlap > opts.MaxSize/4 {
		opts.Overlap = opts.MaxSize / 4
	}
	return &Chunker{opts: opts}
}

// MaxSize returns the configured segment ceiling.
func (c *Chunker) MaxSize() int {
	return c.opts.MaxSize
}

// Split chunks the whole transcript. A transcript at or under MaxSize comes
// back as exactly one chunk.
func (c *Chunker) Split(text string) []Chunk {
	return c.SplitFrom(text, 0, 0)
}

// SplitFrom resumes chunking at rune offset start, numbering chunks from
// index. Passing the End and Index+1 of an already processed chunk yields
// the same remaining chunks Split would have produced.
func (c *Chunker) SplitFrom(text string, start, index int) []Chunk {
	runes := []rune(text)
	if start < 0 {
		start = 0
	}
	if start >= len(runes) {
		if start == 0 {
			return []Chunk{{Index: index}}
		}
		return nil
	}

	var chunks []Chunk
	pos := start
	for pos < len(runes) {
		prefix := c.overlapPrefix(runes, pos)
		budget := c.opts.MaxSize - len(prefix)

		end := len(runes)
		if end-pos > budget {
			end = c.cut(runes, pos, pos+budget)
		}

		chunks = append(chunks, Chunk{
			Index:   index,
			Text:    string(prefix) + string(runes[pos:end]),
			Overlap: len(prefix),
			Start:   pos,
			End:     end,
		})
		index++
		pos = end
	}
	return chunks
}

// overlapPrefix returns up to Overlap runes preceding pos, trimmed forward
// to a word start so the repeated context never begins mid-word.
func (c *Chunker) overlapPrefix(runes []rune, pos int) []rune {
	if c.opts.Overlap == 0 || pos == 0 {
		return nil
	}
	from := pos - c.opts.Overlap
	if from < 0 {
		from = 0
	}
	for from > 0 && from < pos && !unicode.IsSpace(runes[from-1]) {
		from++
	}
	if from >= pos {
		return nil
	}
	return runes[from:pos]
}

// cut picks a split point in (pos, limit]. The break whitespace stays with
// the earlier chunk so bodies concatenate back to the original text.
func (c *Chunker) cut(runes []rune, pos, limit int) int {
	// Avoid tiny leading chunks when a break sits right at the start.
	floor := pos + (limit-pos)/2

	if c.opts.Boundary <= BoundaryParagraph {
		if at := lastParagraphBreak(runes, floor, limit); at > 0 {
			return at
		}
	}
	if c.opts.Boundary <= BoundarySentence {
		if at := lastSentenceBreak(runes, floor, limit); at > 0 {
			return at
		}
	}
	if at := lastSpace(runes, pos, limit); at > 0 {
		return at
	}
	// A single token longer than the limit has no break to honour.
	return limit
}

func lastParagraphBreak(runes []rune, floor, limit int) int {
	for i := limit - 1; i > floor; i-- {
		if runes[i] == '\n' && runes[i-1] == '\n' {
			return skipSpace(runes, i+1, limit)
		}
	}
	return 0
}

func lastSentenceBreak(runes []rune, floor, limit int) int {
	for i := limit - 1; i > floor; i-- {
		if unicode.IsSpace(runes[i]) && isSentenceEnd(runes[i-1]) {
			return skipSpace(runes, i, limit)
		}
	}
	return 0
}

func lastSpace(runes []rune, pos, limit int) int {
	for i := limit - 1; i > pos; i-- {
		if unicode.IsSpace(runes[i]) {
			return skipSpace(runes, i, limit)
		}
	}
	return 0
}

// skipSpace advances past a whitespace run without crossing limit.
func skipSpace(runes []rune, i, limit int) int {
	for i < limit && unicode.IsSpace(runes[i]) {
		i++
	}
	return i
}

func isSentenceEnd(r rune) bool {
	return strings.ContainsRune(".!?…", r)
}

// Join reassembles chunk bodies into the original transcript.
func Join(chunks []Chunk) string {
	var b strings.Builder
	for _, c := range chunks {
		b.WriteString(c.Body())
	}
	return b.String()
}
