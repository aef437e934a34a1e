package store

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// WriteBlock serialises a sorted term-table snapshot as one block file.
// It writes to a .tmp file first and renames on success, so a crash never
// leaves a half-written .blk behind for the merger to trip over.
func WriteBlock(path string, entries []TermPosting) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("creating block file: %w", err)
	}

	w := bufio.NewWriterSize(f, 1<<20)
	var scratch [8]byte

	copy(scratch[:4], blockMagic)
	binary.LittleEndian.PutUint32(scratch[4:8], uint32(len(entries)))
	if _, err := w.Write(scratch[:8]); err != nil {
		f.Close()
		return fmt.Errorf("writing block header: %w", err)
	}

	for _, e := range entries {
		binary.LittleEndian.PutUint16(scratch[0:2], uint16(len(e.Term)))
		binary.LittleEndian.PutUint32(scratch[2:6], uint32(len(e.Docs)))
		if _, err := w.Write(scratch[:6]); err != nil {
			f.Close()
			return fmt.Errorf("writing block record: %w", err)
		}
		if _, err := w.Write(e.Term); err != nil {
			f.Close()
			return fmt.Errorf("writing block term: %w", err)
		}
		for _, id := range e.Docs {
			binary.LittleEndian.PutUint32(scratch[0:4], id)
			if _, err := w.Write(scratch[:4]); err != nil {
				f.Close()
				return fmt.Errorf("writing block postings: %w", err)
			}
		}
	}

	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("flushing block file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("syncing block file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing block file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("renaming block file: %w", err)
	}
	return nil
}

// BlockReader streams one block file record by record for the k-way merge.
// After OpenBlock it is positioned on the first record; Next advances.
type BlockReader struct {
	f         *os.File
	r         *bufio.Reader
	remaining uint32
	term      []byte
	docs      []uint32
	valid     bool
}

// OpenBlock opens a block file, validates its header, and loads the first
// record.
func OpenBlock(path string) (*BlockReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening block: %w", err)
	}
	br := &BlockReader{f: f, r: bufio.NewReaderSize(f, 1<<20)}

	var hdr [blockHeaderSize]byte
	if _, err := io.ReadFull(br.r, hdr[:]); err != nil {
		f.Close()
		return nil, fmt.Errorf("reading block header of %s: %w", path, err)
	}
	if string(hdr[:4]) != blockMagic {
		f.Close()
		return nil, fmt.Errorf("bad block magic in %s", path)
	}
	br.remaining = binary.LittleEndian.Uint32(hdr[4:8])

	if err := br.Next(); err != nil {
		f.Close()
		return nil, err
	}
	return br, nil
}

// Valid reports whether the reader is positioned on a record.
func (b *BlockReader) Valid() bool { return b.valid }

// Term returns the current term bytes, valid until the next advance.
func (b *BlockReader) Term() []byte { return b.term }

// Docs returns the current posting list, valid until the next advance.
func (b *BlockReader) Docs() []uint32 { return b.docs }

// Next advances to the following record; past the last record the reader
// becomes invalid.
func (b *BlockReader) Next() error {
	b.valid = false
	if b.remaining == 0 {
		return nil
	}

	var hdr [6]byte
	if _, err := io.ReadFull(b.r, hdr[:]); err != nil {
		return fmt.Errorf("reading block record header: %w", err)
	}
	termLen := binary.LittleEndian.Uint16(hdr[0:2])
	df := binary.LittleEndian.Uint32(hdr[2:6])

	if cap(b.term) < int(termLen) {
		b.term = make([]byte, termLen)
	}
	b.term = b.term[:termLen]
	if _, err := io.ReadFull(b.r, b.term); err != nil {
		return fmt.Errorf("reading block term: %w", err)
	}

	if cap(b.docs) < int(df) {
		b.docs = make([]uint32, df)
	}
	b.docs = b.docs[:df]
	raw := make([]byte, 4*df)
	if _, err := io.ReadFull(b.r, raw); err != nil {
		return fmt.Errorf("reading block postings: %w", err)
	}
	for i := range b.docs {
		b.docs[i] = binary.LittleEndian.Uint32(raw[4*i:])
	}

	b.remaining--
	b.valid = true
	return nil
}

// Close releases the underlying file.
func (b *BlockReader) Close() error {
	if b.f == nil {
		return nil
	}
	err := b.f.Close()
	b.f = nil
	b.valid = false
	return err
}
