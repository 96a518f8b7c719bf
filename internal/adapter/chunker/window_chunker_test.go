package chunker

import (
	"fmt"
	"strings"
	"testing"

	"docrag/internal/domain"
)

func TestNewWindowChunkerValidation(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		overlap int
		wantErr bool
	}{
		{"valid", 1000, 200, false},
		{"zero overlap", 100, 0, false},
		{"zero size", 0, 0, true},
		{"negative overlap", 100, -1, true},
		{"overlap equals size", 100, 100, true},
		{"overlap exceeds size", 100, 150, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewWindowChunker(tt.size, tt.overlap)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewWindowChunker(%d, %d) error = %v, wantErr %v", tt.size, tt.overlap, err, tt.wantErr)
			}
		})
	}
}

func TestChunkBoundaryPriority(t *testing.T) {
	c, err := NewWindowChunker(10, 2)
	if err != nil {
		t.Fatal(err)
	}

	pages := []domain.Page{{Text: "Alpha. Beta. Gamma.", Number: 1}}
	chunks := c.Chunk("doc1", "test.pdf", pages)

	want := []string{"Alpha. ", ". Beta. ", ". Gamma."}
	if len(chunks) != len(want) {
		t.Fatalf("expected %d chunks, got %d", len(want), len(chunks))
	}
	for i, w := range want {
		if chunks[i].Text != w {
			t.Errorf("chunk %d: expected %q, got %q", i, w, chunks[i].Text)
		}
		if chunks[i].Seq != i {
			t.Errorf("chunk %d: expected Seq=%d, got %d", i, i, chunks[i].Seq)
		}
		if chunks[i].ID != fmt.Sprintf("doc1_%d", i) {
			t.Errorf("chunk %d: unexpected ID %q", i, chunks[i].ID)
		}
		if chunks[i].Page != 1 {
			t.Errorf("chunk %d: expected Page=1, got %d", i, chunks[i].Page)
		}
	}
}

func TestChunkSizeInvariant(t *testing.T) {
	c, err := NewWindowChunker(50, 10)
	if err != nil {
		t.Fatal(err)
	}

	text := strings.Repeat("the quick brown fox jumps over the lazy dog. ", 20)
	chunks := c.Chunk("doc1", "test.pdf", []domain.Page{{Text: text, Number: 1}})

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for _, chunk := range chunks {
		if len(chunk.Text) > 50 {
			t.Errorf("chunk %s exceeds size budget: %d chars", chunk.ID, len(chunk.Text))
		}
		if chunk.Text == "" {
			t.Errorf("chunk %s is empty", chunk.ID)
		}
	}
}

func TestChunkOverlapProgress(t *testing.T) {
	c, err := NewWindowChunker(40, 8)
	if err != nil {
		t.Fatal(err)
	}

	text := strings.Repeat("alpha beta gamma delta epsilon zeta ", 15)
	chunks := c.Chunk("doc1", "test.pdf", []domain.Page{{Text: text, Number: 1}})

	for i := 1; i < len(chunks); i++ {
		prev, cur := chunks[i-1].Text, chunks[i].Text

		// Adjacent chunks share a suffix/prefix of up to overlap chars.
		shared := 0
		for n := 1; n <= len(prev) && n <= len(cur); n++ {
			if strings.HasSuffix(prev, cur[:n]) {
				shared = n
			}
		}
		if shared == 0 {
			t.Errorf("chunks %d and %d share no overlap", i-1, i)
		}
		if shared >= len(cur) {
			t.Errorf("chunk %d entirely contained in predecessor (no progress)", i)
		}
	}
}

func TestChunkShortHeadingKeepsOverlap(t *testing.T) {
	c, err := NewWindowChunker(40, 8)
	if err != nil {
		t.Fatal(err)
	}

	// A paragraph break closer to the window start than the overlap must
	// not become a cut point: the heading merges into the first chunk and
	// every adjacent pair still shares characters.
	text := "Title\n\n" + strings.Repeat("the quick brown fox jumps over the lazy dog. ", 5)
	chunks := c.Chunk("doc1", "test.pdf", []domain.Page{{Text: text, Number: 1}})

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	if !strings.HasPrefix(chunks[0].Text, "Title\n\n") {
		t.Errorf("heading not merged into first chunk: %q", chunks[0].Text)
	}
	if len(chunks[0].Text) <= 8 {
		t.Errorf("first chunk degenerated to the heading alone: %q", chunks[0].Text)
	}

	for i := 1; i < len(chunks); i++ {
		prev, cur := chunks[i-1].Text, chunks[i].Text
		shared := 0
		for n := 1; n <= len(prev) && n <= len(cur); n++ {
			if strings.HasSuffix(prev, cur[:n]) {
				shared = n
			}
		}
		if shared == 0 {
			t.Errorf("chunks %d and %d share zero characters:\n%q\n%q", i-1, i, prev, cur)
		}
	}
}

func TestChunkIdempotent(t *testing.T) {
	c, err := NewWindowChunker(30, 5)
	if err != nil {
		t.Fatal(err)
	}

	pages := []domain.Page{
		{Text: "First paragraph.\n\nSecond paragraph here.\nThird line.", Number: 1},
		{Text: "Another page with some more text to split.", Number: 2},
	}

	first := c.Chunk("doc1", "test.pdf", pages)
	second := c.Chunk("doc1", "test.pdf", pages)

	if len(first) != len(second) {
		t.Fatalf("chunk counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("chunk %d differs between runs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestChunkIDUniqueness(t *testing.T) {
	c, err := NewWindowChunker(20, 4)
	if err != nil {
		t.Fatal(err)
	}

	pages := []domain.Page{
		{Text: strings.Repeat("one two three four five ", 10), Number: 1},
		{Text: strings.Repeat("six seven eight nine ten ", 10), Number: 2},
	}
	chunks := c.Chunk("doc1", "test.pdf", pages)

	seen := make(map[string]bool)
	for _, chunk := range chunks {
		if seen[chunk.ID] {
			t.Errorf("duplicate chunk ID: %s", chunk.ID)
		}
		seen[chunk.ID] = true
	}
}

func TestChunkEmptyPages(t *testing.T) {
	c, err := NewWindowChunker(100, 20)
	if err != nil {
		t.Fatal(err)
	}

	if chunks := c.Chunk("doc1", "test.pdf", nil); len(chunks) != 0 {
		t.Errorf("expected no chunks for zero pages, got %d", len(chunks))
	}

	pages := []domain.Page{
		{Text: "", Number: 1},
		{Text: "   \n\t  ", Number: 2},
	}
	if chunks := c.Chunk("doc1", "test.pdf", pages); len(chunks) != 0 {
		t.Errorf("expected no chunks for blank pages, got %d", len(chunks))
	}
}

func TestChunkParagraphBoundaryPreferred(t *testing.T) {
	c, err := NewWindowChunker(30, 4)
	if err != nil {
		t.Fatal(err)
	}

	text := "Short intro.\n\nA second paragraph that keeps going past the budget."
	chunks := c.Chunk("doc1", "test.pdf", []domain.Page{{Text: text, Number: 1}})

	if len(chunks) < 2 {
		t.Fatalf("expected at least 2 chunks, got %d", len(chunks))
	}
	if !strings.HasSuffix(chunks[0].Text, "\n\n") {
		t.Errorf("expected first cut at paragraph break, got %q", chunks[0].Text)
	}
}

func TestChunkMultibyteSafe(t *testing.T) {
	c, err := NewWindowChunker(10, 2)
	if err != nil {
		t.Fatal(err)
	}

	// No spaces or newlines forces raw cuts through multibyte runes.
	text := strings.Repeat("日本語テキスト", 5)
	chunks := c.Chunk("doc1", "test.pdf", []domain.Page{{Text: text, Number: 1}})

	for _, chunk := range chunks {
		if !strings.Contains(text, chunk.Text) {
			t.Errorf("chunk %q is not a substring of the input (split rune?)", chunk.Text)
		}
		for _, r := range chunk.Text {
			if r == '�' {
				t.Errorf("chunk %q contains a replacement rune", chunk.Text)
			}
		}
	}
}
