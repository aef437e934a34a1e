package store

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMergeUnion(t *testing.T) {
	tests := []struct {
		a, b, want []uint32
	}{
		{nil, nil, []uint32{}},
		{[]uint32{1, 2}, nil, []uint32{1, 2}},
		{nil, []uint32{3}, []uint32{3}},
		{[]uint32{1, 3, 5}, []uint32{2, 3, 6}, []uint32{1, 2, 3, 5, 6}},
		{[]uint32{1, 1, 2}, []uint32{1, 2}, []uint32{1, 2}},
		{[]uint32{1, 2, 3}, []uint32{1, 2, 3}, []uint32{1, 2, 3}},
	}
	for _, tt := range tests {
		got := mergeUnion(tt.a, tt.b)
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("mergeUnion(%v, %v) (-want +got):\n%s", tt.a, tt.b, diff)
		}
	}
}

// buildIndex merges the given blocks plus a docs artifact and opens the
// result.
func buildIndex(t *testing.T, blocks [][]TermPosting, docs int) (*Reader, MergeStats) {
	t.Helper()
	dir := t.TempDir()

	var paths []string
	for i, entries := range blocks {
		name := filepath.Join(dir, "block_"+string(rune('a'+i))+".blk")
		if err := WriteBlock(name, entries); err != nil {
			t.Fatalf("WriteBlock: %v", err)
		}
		paths = append(paths, name)
	}

	stats, err := MergeBlocks(paths,
		filepath.Join(dir, LexiconName), filepath.Join(dir, PostingsName))
	if err != nil {
		t.Fatalf("MergeBlocks: %v", err)
	}

	db := NewDocsBuilder()
	for i := 0; i < docs; i++ {
		db.Add("title", "url")
	}
	if err := db.WriteTo(filepath.Join(dir, DocsName)); err != nil {
		t.Fatalf("docs WriteTo: %v", err)
	}

	r, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return r, stats
}

func TestMergeBlocks_UnionsEqualTerms(t *testing.T) {
	blocks := [][]TermPosting{
		{
			{Term: []byte("ant"), Docs: []uint32{0, 2}},
			{Term: []byte("cat"), Docs: []uint32{1}},
		},
		{
			{Term: []byte("ant"), Docs: []uint32{3}},
			{Term: []byte("bee"), Docs: []uint32{4}},
		},
		{
			{Term: []byte("ant"), Docs: []uint32{2, 5}}, // overlap with block 0
		},
	}
	r, stats := buildIndex(t, blocks, 6)

	if stats.TermCount != 3 {
		t.Fatalf("TermCount = %d, want 3", stats.TermCount)
	}

	wantTerms := []string{"ant", "bee", "cat"}
	for i, w := range wantTerms {
		if got := string(r.Term(i)); got != w {
			t.Errorf("Term(%d) = %q, want %q", i, got, w)
		}
	}

	idx, ok := r.FindTerm([]byte("ant"))
	if !ok {
		t.Fatal("ant not found")
	}
	want := []uint32{0, 2, 3, 5}
	if diff := cmp.Diff(want, r.Postings(idx)); diff != "" {
		t.Errorf("ant postings (-want +got):\n%s", diff)
	}
	if r.Df(idx) != uint32(len(want)) {
		t.Errorf("df = %d, want %d", r.Df(idx), len(want))
	}

	if _, ok := r.FindTerm([]byte("dog")); ok {
		t.Error("found term that was never indexed")
	}
}

func TestMergeBlocks_SingleBlockEqualsInput(t *testing.T) {
	entries := []TermPosting{
		{Term: []byte("alpha"), Docs: []uint32{0}},
		{Term: []byte("beta"), Docs: []uint32{0, 1}},
	}
	r, stats := buildIndex(t, [][]TermPosting{entries}, 2)

	if stats.TermCount != 2 {
		t.Fatalf("TermCount = %d, want 2", stats.TermCount)
	}
	for i, e := range entries {
		if got := string(r.Term(i)); got != string(e.Term) {
			t.Errorf("Term(%d) = %q, want %q", i, got, e.Term)
		}
		if diff := cmp.Diff(e.Docs, r.Postings(i)); diff != "" {
			t.Errorf("Postings(%d) (-want +got):\n%s", i, diff)
		}
	}
}

func TestMergeBlocks_NoBlocks(t *testing.T) {
	r, stats := buildIndex(t, nil, 1)
	if stats.TermCount != 0 {
		t.Fatalf("TermCount = %d, want 0", stats.TermCount)
	}
	if r.TermCount() != 0 {
		t.Errorf("reader TermCount = %d, want 0", r.TermCount())
	}
	if _, ok := r.FindTerm([]byte("anything")); ok {
		t.Error("found term in empty lexicon")
	}
}

func TestMergeBlocks_LexiconSorted(t *testing.T) {
	blocks := [][]TermPosting{
		{
			{Term: []byte("a"), Docs: []uint32{0}},
			{Term: []byte("ab"), Docs: []uint32{0}},
			{Term: []byte("b"), Docs: []uint32{0}},
		},
		{
			{Term: []byte("aa"), Docs: []uint32{1}},
			{Term: []byte("b"), Docs: []uint32{1}},
		},
	}
	r, _ := buildIndex(t, blocks, 2)

	prev := []byte(nil)
	for i := 0; i < int(r.TermCount()); i++ {
		cur := r.Term(i)
		if prev != nil && string(prev) >= string(cur) {
			t.Fatalf("lexicon not strictly sorted: %q then %q", prev, cur)
		}
		prev = append(prev[:0], cur...)
	}
}
