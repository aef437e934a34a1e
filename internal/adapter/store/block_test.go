package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeTestBlock(t *testing.T, dir, name string, entries []TermPosting) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := WriteBlock(path, entries); err != nil {
		t.Fatalf("WriteBlock: %v", err)
	}
	return path
}

func readAllBlock(t *testing.T, path string) []TermPosting {
	t.Helper()
	r, err := OpenBlock(path)
	if err != nil {
		t.Fatalf("OpenBlock: %v", err)
	}
	defer r.Close()

	var out []TermPosting
	for r.Valid() {
		out = append(out, TermPosting{
			Term: append([]byte(nil), r.Term()...),
			Docs: append([]uint32(nil), r.Docs()...),
		})
		if err := r.Next(); err != nil {
			t.Fatalf("Next: %v", err)
		}
	}
	return out
}

func TestBlock_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	entries := []TermPosting{
		{Term: []byte("ant"), Docs: []uint32{0, 3, 7}},
		{Term: []byte("bee"), Docs: []uint32{1}},
		{Term: []byte("cat"), Docs: []uint32{0, 1, 2, 3}},
	}
	path := writeTestBlock(t, dir, "block_0000.blk", entries)

	got := readAllBlock(t, path)
	if diff := cmp.Diff(entries, got); diff != "" {
		t.Errorf("block round trip (-want +got):\n%s", diff)
	}

	// No stray .tmp left behind.
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temp file still present: %v", err)
	}
}

func TestBlock_Empty(t *testing.T) {
	dir := t.TempDir()
	path := writeTestBlock(t, dir, "block_0000.blk", nil)
	r, err := OpenBlock(path)
	if err != nil {
		t.Fatalf("OpenBlock: %v", err)
	}
	defer r.Close()
	if r.Valid() {
		t.Error("empty block reader should start invalid")
	}
}

func TestBlock_BadMagic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.blk")
	if err := os.WriteFile(path, []byte("NOPE\x00\x00\x00\x00"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := OpenBlock(path); err == nil {
		t.Error("expected error for bad magic")
	}
}
