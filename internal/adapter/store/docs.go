package store

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"
)

type docRec struct {
	titleOff uint64
	titleLen uint32
	urlOff   uint64
	urlLen   uint32
}

// DocsBuilder accumulates (title, url) pairs in manifest order and writes
// the documents artifact. Append-only; the returned ids are dense and
// zero-based.
type DocsBuilder struct {
	recs []docRec
	pool []byte
}

// NewDocsBuilder creates an empty builder.
func NewDocsBuilder() *DocsBuilder {
	return &DocsBuilder{}
}

// Add records one document and returns its id.
func (d *DocsBuilder) Add(title, url string) uint32 {
	id := uint32(len(d.recs))
	r := docRec{
		titleOff: uint64(len(d.pool)),
		titleLen: uint32(len(title)),
	}
	d.pool = append(d.pool, title...)
	r.urlOff = uint64(len(d.pool))
	r.urlLen = uint32(len(url))
	d.pool = append(d.pool, url...)
	d.recs = append(d.recs, r)
	return id
}

// Len returns the number of documents added so far.
func (d *DocsBuilder) Len() int { return len(d.recs) }

// WriteTo writes docs.bin at path (via a .tmp rename).
func (d *DocsBuilder) WriteTo(path string) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("creating docs artifact: %w", err)
	}
	w := bufio.NewWriterSize(f, 1<<20)

	hdr := make([]byte, docsHeaderSize)
	copy(hdr[0:4], docsMagic)
	binary.LittleEndian.PutUint32(hdr[4:8], FormatVersion)
	binary.LittleEndian.PutUint32(hdr[8:12], uint32(len(d.recs)))
	binary.LittleEndian.PutUint64(hdr[12:20], uint64(len(d.pool)))
	if _, err := w.Write(hdr); err != nil {
		f.Close()
		return fmt.Errorf("writing docs header: %w", err)
	}

	var rec [docRecSize]byte
	for _, r := range d.recs {
		binary.LittleEndian.PutUint64(rec[0:8], r.titleOff)
		binary.LittleEndian.PutUint32(rec[8:12], r.titleLen)
		binary.LittleEndian.PutUint64(rec[12:20], r.urlOff)
		binary.LittleEndian.PutUint32(rec[20:24], r.urlLen)
		if _, err := w.Write(rec[:]); err != nil {
			f.Close()
			return fmt.Errorf("writing doc record: %w", err)
		}
	}
	if _, err := w.Write(d.pool); err != nil {
		f.Close()
		return fmt.Errorf("writing docs string pool: %w", err)
	}

	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("flushing docs artifact: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("syncing docs artifact: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing docs artifact: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("renaming docs artifact: %w", err)
	}
	return nil
}
