package fs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestFindBlocks(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "block_0001.blk"))
	touch(t, filepath.Join(dir, "block_0000.blk"))
	touch(t, filepath.Join(dir, "notes.txt"))
	touch(t, filepath.Join(dir, "block_0000.blk.tmp"))

	got, err := FindBlocks(dir)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		filepath.Join(dir, "block_0000.blk"),
		filepath.Join(dir, "block_0001.blk"),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("blocks (-want +got):\n%s", diff)
	}
}

func TestFindTextFiles_Recursive(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.txt"))
	touch(t, filepath.Join(dir, "sub", "b.txt"))
	touch(t, filepath.Join(dir, "sub", "c.bin"))

	got, err := FindTextFiles(dir)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		filepath.Join(dir, "a.txt"),
		filepath.Join(dir, "sub", "b.txt"),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("text files (-want +got):\n%s", diff)
	}
}
