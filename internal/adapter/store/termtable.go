package store

import (
	"bytes"
	"sort"
)

// termSlot is one open-addressed slot. Term bytes live in the table's arena
// and are addressed by offset so rehashing never copies strings.
type termSlot struct {
	hash uint64
	off  uint32
	len  uint16
	post []uint32
}

// termSlotBytes approximates the in-memory footprint of one slot for the
// flush-threshold accounting.
const termSlotBytes = 40

// TermTable maps stems to in-progress posting lists. Open addressing with
// linear probing; doubles at 70% load.
type TermTable struct {
	slots   []termSlot
	used    int
	arena   []byte
	postCap int64 // sum of posting-list capacities, in entries
}

// NewTermTable creates a table with the given initial capacity, rounded up
// to a power of two.
func NewTermTable(initialCap int) *TermTable {
	cap := 1
	for cap < initialCap {
		cap <<= 1
	}
	return &TermTable{slots: make([]termSlot, cap)}
}

// Len returns the number of distinct terms currently held.
func (t *TermTable) Len() int { return t.used }

// Insert ensures an entry for term and appends docID to its posting list.
// Callers feed documents in increasing id order, so appending keeps every
// list strictly increasing; a repeated tail id is dropped.
func (t *TermTable) Insert(term []byte, docID uint32) {
	if len(term) == 0 {
		return
	}
	s := t.getOrCreate(term)
	if n := len(s.post); n == 0 || s.post[n-1] < docID {
		old := cap(s.post)
		s.post = append(s.post, docID)
		t.postCap += int64(cap(s.post) - old)
	}
}

// Postings returns the current list for term, or nil. Test helper.
func (t *TermTable) Postings(term []byte) []uint32 {
	h := fnv1a(term)
	mask := uint64(len(t.slots) - 1)
	pos := h & mask
	for {
		s := &t.slots[pos]
		if s.hash == 0 {
			return nil
		}
		if s.hash == h && int(s.len) == len(term) &&
			bytes.Equal(t.arena[s.off:s.off+uint32(s.len)], term) {
			return s.post
		}
		pos = (pos + 1) & mask
	}
}

func (t *TermTable) getOrCreate(term []byte) *termSlot {
	t.maybeGrow()

	h := fnv1a(term)
	mask := uint64(len(t.slots) - 1)
	pos := h & mask
	for {
		s := &t.slots[pos]
		if s.hash == 0 {
			off := uint32(len(t.arena))
			t.arena = append(t.arena, term...)
			*s = termSlot{hash: h, off: off, len: uint16(len(term))}
			t.used++
			return s
		}
		if s.hash == h && int(s.len) == len(term) &&
			bytes.Equal(t.arena[s.off:s.off+uint32(s.len)], term) {
			return s
		}
		pos = (pos + 1) & mask
	}
}

func (t *TermTable) maybeGrow() {
	if t.used*10 < len(t.slots)*7 {
		return
	}
	old := t.slots
	t.slots = make([]termSlot, len(old)*2)
	t.used = 0
	mask := uint64(len(t.slots) - 1)
	for i := range old {
		if old[i].hash == 0 {
			continue
		}
		pos := old[i].hash & mask
		for t.slots[pos].hash != 0 {
			pos = (pos + 1) & mask
		}
		t.slots[pos] = old[i]
		t.used++
	}
}

// ApproxBytes estimates the table's memory footprint: slot storage, arena
// bytes, and posting-list capacities. The builder flushes a block when this
// crosses its memory limit.
func (t *TermTable) ApproxBytes() uint64 {
	return uint64(len(t.slots))*termSlotBytes +
		uint64(len(t.arena)) +
		uint64(t.postCap)*4
}

// TermPosting is one (term, posting list) pair handed to the block writer.
type TermPosting struct {
	Term []byte
	Docs []uint32
}

// Snapshot collects all live entries sorted by term bytes. Term slices
// alias the arena and posting slices alias the table; both are only valid
// until the next Clear.
func (t *TermTable) Snapshot() []TermPosting {
	out := make([]TermPosting, 0, t.used)
	for i := range t.slots {
		s := &t.slots[i]
		if s.hash == 0 {
			continue
		}
		out = append(out, TermPosting{
			Term: t.arena[s.off : s.off+uint32(s.len)],
			Docs: s.post,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i].Term, out[j].Term) < 0
	})
	return out
}

// Clear drops every entry and resets the arena, keeping slot storage so the
// next block starts with the same capacity.
func (t *TermTable) Clear() {
	for i := range t.slots {
		t.slots[i] = termSlot{}
	}
	t.used = 0
	t.arena = t.arena[:0]
	t.postCap = 0
}
