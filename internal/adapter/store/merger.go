package store

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"sort"
)

// MergeStats summarises a finished merge.
type MergeStats struct {
	TermCount     uint32
	AvgTermLen    float64
	PostingsBytes uint64
}

// lexBuilder accumulates lexicon records plus the term string pool.
type lexBuilder struct {
	recs       []lexRecMem
	pool       []byte
	sumTermLen uint64
}

type lexRecMem struct {
	termOff     uint64
	termLen     uint16
	df          uint32
	postingsOff uint64
	postingsLen uint32
}

func (l *lexBuilder) add(term []byte, postingsOff uint64, postingsLen uint32) {
	l.recs = append(l.recs, lexRecMem{
		termOff:     uint64(len(l.pool)),
		termLen:     uint16(len(term)),
		df:          postingsLen,
		postingsOff: postingsOff,
		postingsLen: postingsLen,
	})
	l.pool = append(l.pool, term...)
	l.sumTermLen += uint64(len(term))
}

func (l *lexBuilder) term(r lexRecMem) []byte {
	return l.pool[r.termOff : r.termOff+uint64(r.termLen)]
}

func (l *lexBuilder) avgTermLen() float64 {
	if len(l.recs) == 0 {
		return 0
	}
	return float64(l.sumTermLen) / float64(len(l.recs))
}

func (l *lexBuilder) writeTo(path string) error {
	// The merge emits terms in order already; sorting again is idempotent
	// and keeps the on-disk invariant independent of the input blocks.
	sort.SliceStable(l.recs, func(i, j int) bool {
		return bytes.Compare(l.term(l.recs[i]), l.term(l.recs[j])) < 0
	})

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("creating lexicon artifact: %w", err)
	}
	w := bufio.NewWriterSize(f, 1<<20)

	hdr := make([]byte, lexHeaderSize)
	copy(hdr[0:4], lexMagic)
	binary.LittleEndian.PutUint32(hdr[4:8], FormatVersion)
	binary.LittleEndian.PutUint32(hdr[8:12], uint32(len(l.recs)))
	binary.LittleEndian.PutUint64(hdr[12:20], uint64(len(l.pool)))
	if _, err := w.Write(hdr); err != nil {
		f.Close()
		return fmt.Errorf("writing lexicon header: %w", err)
	}

	var rec [lexRecSize]byte
	for _, r := range l.recs {
		binary.LittleEndian.PutUint64(rec[0:8], r.termOff)
		binary.LittleEndian.PutUint16(rec[8:10], r.termLen)
		binary.LittleEndian.PutUint16(rec[10:12], 0) // flags
		binary.LittleEndian.PutUint32(rec[12:16], r.df)
		binary.LittleEndian.PutUint64(rec[16:24], r.postingsOff)
		binary.LittleEndian.PutUint32(rec[24:28], r.postingsLen)
		binary.LittleEndian.PutUint32(rec[28:32], 0) // reserved
		if _, err := w.Write(rec[:]); err != nil {
			f.Close()
			return fmt.Errorf("writing lexicon record: %w", err)
		}
	}
	if _, err := w.Write(l.pool); err != nil {
		f.Close()
		return fmt.Errorf("writing term pool: %w", err)
	}

	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("flushing lexicon artifact: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("syncing lexicon artifact: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing lexicon artifact: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("renaming lexicon artifact: %w", err)
	}
	return nil
}

// mergeUnion merges two sorted id lists, dropping duplicates.
func mergeUnion(a, b []uint32) []uint32 {
	out := make([]uint32, 0, len(a)+len(b))
	i, j := 0, 0
	push := func(v uint32) {
		if n := len(out); n == 0 || out[n-1] != v {
			out = append(out, v)
		}
	}
	for i < len(a) && j < len(b) {
		switch x, y := a[i], b[j]; {
		case x == y:
			push(x)
			i++
			j++
		case x < y:
			push(x)
			i++
		default:
			push(y)
			j++
		}
	}
	for ; i < len(a); i++ {
		push(a[i])
	}
	for ; j < len(b); j++ {
		push(b[j])
	}
	return out
}

// MergeBlocks runs the k-way merge over the given block files, producing
// the lexicon and postings artifacts. Every reader is opened up front; at
// each step the smallest current term is picked, all equal terms across
// readers are union-merged, and the combined list is appended to the
// postings file. With no blocks at all it writes header-only artifacts.
func MergeBlocks(blockPaths []string, lexPath, postPath string) (MergeStats, error) {
	var stats MergeStats

	readers := make([]*BlockReader, 0, len(blockPaths))
	defer func() {
		for _, r := range readers {
			r.Close()
		}
	}()
	for _, p := range blockPaths {
		r, err := OpenBlock(p)
		if err != nil {
			return stats, err
		}
		readers = append(readers, r)
	}

	pf, err := os.Create(postPath)
	if err != nil {
		return stats, fmt.Errorf("creating postings artifact: %w", err)
	}
	pw := bufio.NewWriterSize(pf, 1<<20)

	hdr := make([]byte, postHeaderSize)
	copy(hdr[0:4], postMagic)
	binary.LittleEndian.PutUint32(hdr[4:8], FormatVersion)
	if _, err := pw.Write(hdr); err != nil {
		pf.Close()
		return stats, fmt.Errorf("writing postings header: %w", err)
	}
	cursor := uint64(postHeaderSize)

	var lex lexBuilder
	var scratch [4]byte

	for {
		minIdx := -1
		for i, r := range readers {
			if !r.Valid() {
				continue
			}
			if minIdx < 0 || bytes.Compare(r.Term(), readers[minIdx].Term()) < 0 {
				minIdx = i
			}
		}
		if minIdx < 0 {
			break
		}

		cur := append([]byte(nil), readers[minIdx].Term()...)
		merged := append([]uint32(nil), readers[minIdx].Docs()...)
		if err := readers[minIdx].Next(); err != nil {
			pf.Close()
			return stats, err
		}

		for _, r := range readers {
			if !r.Valid() || !bytes.Equal(r.Term(), cur) {
				continue
			}
			merged = mergeUnion(merged, r.Docs())
			if err := r.Next(); err != nil {
				pf.Close()
				return stats, err
			}
		}

		off := cursor
		for _, id := range merged {
			binary.LittleEndian.PutUint32(scratch[:], id)
			if _, err := pw.Write(scratch[:]); err != nil {
				pf.Close()
				return stats, fmt.Errorf("writing postings: %w", err)
			}
		}
		cursor += uint64(len(merged)) * 4

		lex.add(cur, off, uint32(len(merged)))
	}

	if err := pw.Flush(); err != nil {
		pf.Close()
		return stats, fmt.Errorf("flushing postings artifact: %w", err)
	}
	if err := pf.Sync(); err != nil {
		pf.Close()
		return stats, fmt.Errorf("syncing postings artifact: %w", err)
	}
	if err := pf.Close(); err != nil {
		return stats, fmt.Errorf("closing postings artifact: %w", err)
	}

	if err := lex.writeTo(lexPath); err != nil {
		return stats, err
	}

	stats.TermCount = uint32(len(lex.recs))
	stats.AvgTermLen = lex.avgTermLen()
	stats.PostingsBytes = cursor
	return stats, nil
}
