package store

import (
	"os"
	"path/filepath"
	"testing"
)

// writeMinimalIndex creates a valid three-artifact index with one term.
func writeMinimalIndex(t *testing.T, dir string) {
	t.Helper()
	blk := filepath.Join(dir, "b.blk")
	if err := WriteBlock(blk, []TermPosting{
		{Term: []byte("hello"), Docs: []uint32{0}},
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := MergeBlocks([]string{blk},
		filepath.Join(dir, LexiconName), filepath.Join(dir, PostingsName)); err != nil {
		t.Fatal(err)
	}
	db := NewDocsBuilder()
	db.Add("doc zero", "http://example.com/0")
	if err := db.WriteTo(filepath.Join(dir, DocsName)); err != nil {
		t.Fatal(err)
	}
}

func TestReader_OpenValidatesMagic(t *testing.T) {
	dir := t.TempDir()
	writeMinimalIndex(t, dir)

	if _, err := Open(dir); err != nil {
		t.Fatalf("Open on valid index: %v", err)
	}

	// Corrupt each artifact's magic in turn.
	for _, name := range []string{DocsName, LexiconName, PostingsName} {
		path := filepath.Join(dir, name)
		buf, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		bad := append([]byte("XXXX"), buf[4:]...)
		if err := os.WriteFile(path, bad, 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := Open(dir); err == nil {
			t.Errorf("Open succeeded with corrupt %s", name)
		}
		if err := os.WriteFile(path, buf, 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestReader_OpenValidatesVersion(t *testing.T) {
	dir := t.TempDir()
	writeMinimalIndex(t, dir)

	path := filepath.Join(dir, LexiconName)
	buf, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	buf[4] = 9 // version
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(dir); err == nil {
		t.Error("Open succeeded with wrong version")
	}
}

func TestReader_PostingsBoundsCheck(t *testing.T) {
	dir := t.TempDir()

	// Hand-build a lexicon whose record points past the postings file.
	var lex lexBuilder
	lex.add([]byte("ghost"), 1<<20, 10)
	if err := lex.writeTo(filepath.Join(dir, LexiconName)); err != nil {
		t.Fatal(err)
	}
	if _, err := MergeBlocks(nil, filepath.Join(dir, "unused.bin"),
		filepath.Join(dir, PostingsName)); err != nil {
		t.Fatal(err)
	}
	db := NewDocsBuilder()
	db.Add("d", "u")
	if err := db.WriteTo(filepath.Join(dir, DocsName)); err != nil {
		t.Fatal(err)
	}

	r, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	idx, ok := r.FindTerm([]byte("ghost"))
	if !ok {
		t.Fatal("ghost not found")
	}
	if got := r.Postings(idx); got != nil {
		t.Errorf("out-of-bounds postings = %v, want nil", got)
	}
}

func TestReader_Fingerprint(t *testing.T) {
	dir := t.TempDir()
	writeMinimalIndex(t, dir)
	r, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	if r.Fingerprint() == "" {
		t.Error("empty fingerprint")
	}
}

func TestReader_MissingFiles(t *testing.T) {
	if _, err := Open(t.TempDir()); err == nil {
		t.Error("Open succeeded on empty directory")
	}
}
