package extract

import "testing"

func TestChunkPagesProducesOverlap(t *testing.T) {
	pages := []RawPage{{Page: 1, Text: repeatRunes('a', 100) + repeatRunes('b', 100)}}
	chunks := ChunkPages(pages, "doc1", "org1", 2024, 100, 20, "")
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	if chunks[0].ChunkID != "doc1_p1_c0" {
		t.Fatalf("unexpected chunk id %s", chunks[0].ChunkID)
	}
	for _, c := range chunks {
		if len(c.SHA256) != 64 {
			t.Fatalf("expected 64-char sha256, got %d", len(c.SHA256))
		}
	}
}

func TestChunkPagesSkipsEmptyPages(t *testing.T) {
	pages := []RawPage{{Page: 1, Text: "   "}, {Page: 2, Text: "real content here"}}
	chunks := ChunkPages(pages, "doc1", "org1", 2024, 1600, 200, "")
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Page != 2 {
		t.Fatalf("expected page 2, got %d", chunks[0].Page)
	}
}

func TestPageFromOffset(t *testing.T) {
	if got := PageFromOffset(0, 1000); got != 1 {
		t.Fatalf("got %d, want 1", got)
	}
	if got := PageFromOffset(2500, 1000); got != 3 {
		t.Fatalf("got %d, want 3", got)
	}
}

func repeatRunes(r rune, n int) string {
	out := make([]rune, n)
	for i := range out {
		out[i] = r
	}
	return string(out)
}
