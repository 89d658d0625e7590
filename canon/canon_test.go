package canon

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMarshalSortsKeys(t *testing.T) {
	type rec struct {
		Zeta  string `json:"zeta"`
		Alpha int    `json:"alpha"`
	}
	out, err := Marshal(rec{Zeta: "z", Alpha: 1})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"alpha":1,"zeta":"z"}`
	if string(out) != want {
		t.Fatalf("got %s, want %s", out, want)
	}
}

func TestMarshalDeterministicAcrossMapOrdering(t *testing.T) {
	a := map[string]interface{}{"b": 2, "a": 1, "c": 3}
	b := map[string]interface{}{"c": 3, "b": 2, "a": 1}
	outA, err := Marshal(a)
	if err != nil {
		t.Fatalf("Marshal a: %v", err)
	}
	outB, err := Marshal(b)
	if err != nil {
		t.Fatalf("Marshal b: %v", err)
	}
	if string(outA) != string(outB) {
		t.Fatalf("expected identical canonical bytes, got %s vs %s", outA, outB)
	}
}

func TestHashStable(t *testing.T) {
	rec := map[string]interface{}{"x": 1, "y": "hello"}
	h1, err := Hash(rec)
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	h2, err := Hash(rec)
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if h1 != h2 {
		t.Fatalf("hash not stable: %s != %s", h1, h2)
	}
	if len(h1) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(h1))
	}
}

func TestHashStringMatchesHashBytes(t *testing.T) {
	s := "some evidence text"
	if HashString(s) != HashBytes([]byte(s)) {
		t.Fatalf("HashString and HashBytes diverged")
	}
}

func TestHashFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.txt")
	content := []byte("acquired document body")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	hash, size, err := HashFile(path)
	if err != nil {
		t.Fatalf("HashFile: %v", err)
	}
	if size != int64(len(content)) {
		t.Fatalf("got size %d, want %d", size, len(content))
	}
	if hash != HashBytes(content) {
		t.Fatalf("HashFile hash mismatch")
	}
}
