package chunker

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"docrag/internal/domain"
)

// Separators in descending priority: paragraph break, line break, word
// boundary. A raw character cut is the last resort.
var separators = []string{"\n\n", "\n", " "}

// WindowChunker splits page text into overlapping chunks of at most size
// characters, preferring to cut at the latest highest-priority separator
// that fits within the size budget.
type WindowChunker struct {
	size    int
	overlap int
}

// NewWindowChunker creates a chunker. Overlap must be strictly smaller
// than size so every window makes forward progress.
func NewWindowChunker(size, overlap int) (*WindowChunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("chunk overlap must be in [0, size), got %d with size %d", overlap, size)
	}
	return &WindowChunker{size: size, overlap: overlap}, nil
}

// Chunk splits the pages of one document into ordered chunks. The sequence
// index runs across the whole document so chunk IDs "{docID}_{seq}" are
// unique within it and stable across re-reads of the same input.
func (c *WindowChunker) Chunk(docID, source string, pages []domain.Page) []domain.Chunk {
	var chunks []domain.Chunk
	seq := 0

	for _, page := range pages {
		for _, text := range c.split(page.Text) {
			chunks = append(chunks, domain.Chunk{
				ID:     fmt.Sprintf("%s_%d", docID, seq),
				DocID:  docID,
				Source: source,
				Page:   page.Number,
				Seq:    seq,
				Text:   text,
			})
			seq++
		}
	}

	return chunks
}

// split applies the sliding window to a single page's text.
func (c *WindowChunker) split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var pieces []string
	start := 0

	for start < len(text) {
		if len(text)-start <= c.size {
			pieces = append(pieces, text[start:])
			break
		}

		end := start + c.size
		cut := end
		for _, sep := range separators {
			// A boundary within overlap of the window start cannot leave
			// the next chunk any shared characters, so fall down the
			// separator priority list instead of cutting there.
			if i := strings.LastIndex(text[start:end], sep); i > 0 && i+len(sep) > c.overlap {
				cut = start + i + len(sep)
				break
			}
		}

		if cut == end {
			// Raw cut: back off so a multibyte rune is never split.
			for cut > start && !utf8.RuneStart(text[cut]) {
				cut--
			}
			if cut == start {
				cut = end
			}
		}

		pieces = append(pieces, text[start:cut])

		next := cut - c.overlap
		for next > start && !utf8.RuneStart(text[next]) {
			next--
		}
		if next <= start {
			// The cut landed within overlap of the window start (short
			// leading segment). Clamp so adjacent chunks still share at
			// least one character while the window advances.
			next = start + 1
			for next < cut && !utf8.RuneStart(text[next]) {
				next++
			}
		}
		start = next
	}

	return pieces
}
