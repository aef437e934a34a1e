package store

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
)

// Reader loads the three index artifacts into memory and serves lookups
// for the whole query session. Files are read once and closed; Doc and Term
// hand out views into the owned buffers, Postings decodes a fresh slice.
type Reader struct {
	docCount  uint32
	termCount uint32

	docRecs []byte
	docPool []byte

	lexRecs  []byte
	termPool []byte

	postBuf []byte

	fingerprint string
}

// Open loads docs.bin, lexicon.bin and postings.bin from dir, validating
// magic and version of each.
func Open(dir string) (*Reader, error) {
	r := &Reader{}

	docsPath := filepath.Join(dir, DocsName)
	lexPath := filepath.Join(dir, LexiconName)
	postPath := filepath.Join(dir, PostingsName)

	docsBuf, err := os.ReadFile(docsPath)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", DocsName, err)
	}
	if len(docsBuf) < docsHeaderSize || string(docsBuf[0:4]) != docsMagic ||
		binary.LittleEndian.Uint32(docsBuf[4:8]) != FormatVersion {
		return nil, fmt.Errorf("bad %s: wrong magic or version", DocsName)
	}
	r.docCount = binary.LittleEndian.Uint32(docsBuf[8:12])
	recEnd := docsHeaderSize + int(r.docCount)*docRecSize
	if recEnd > len(docsBuf) {
		return nil, fmt.Errorf("bad %s: truncated records", DocsName)
	}
	r.docRecs = docsBuf[docsHeaderSize:recEnd]
	r.docPool = docsBuf[recEnd:]

	lexBuf, err := os.ReadFile(lexPath)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", LexiconName, err)
	}
	if len(lexBuf) < lexHeaderSize || string(lexBuf[0:4]) != lexMagic ||
		binary.LittleEndian.Uint32(lexBuf[4:8]) != FormatVersion {
		return nil, fmt.Errorf("bad %s: wrong magic or version", LexiconName)
	}
	r.termCount = binary.LittleEndian.Uint32(lexBuf[8:12])
	recEnd = lexHeaderSize + int(r.termCount)*lexRecSize
	if recEnd > len(lexBuf) {
		return nil, fmt.Errorf("bad %s: truncated records", LexiconName)
	}
	r.lexRecs = lexBuf[lexHeaderSize:recEnd]
	r.termPool = lexBuf[recEnd:]

	postBuf, err := os.ReadFile(postPath)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", PostingsName, err)
	}
	if len(postBuf) < postHeaderSize || string(postBuf[0:4]) != postMagic ||
		binary.LittleEndian.Uint32(postBuf[4:8]) != FormatVersion {
		return nil, fmt.Errorf("bad %s: wrong magic or version", PostingsName)
	}
	r.postBuf = postBuf

	if fi, err := os.Stat(lexPath); err == nil {
		r.fingerprint = fmt.Sprintf("%d-%d", fi.Size(), fi.ModTime().UnixNano())
	}

	return r, nil
}

// DocCount returns the number of documents in the index.
func (r *Reader) DocCount() uint32 { return r.docCount }

// TermCount returns the number of lexicon terms.
func (r *Reader) TermCount() uint32 { return r.termCount }

// Fingerprint identifies this index build for cache invalidation.
func (r *Reader) Fingerprint() string { return r.fingerprint }

// Doc returns the title and url byte views for a document id, or nils when
// the id is out of range.
func (r *Reader) Doc(id uint32) (title, url []byte) {
	if id >= r.docCount {
		return nil, nil
	}
	rec := r.docRecs[int(id)*docRecSize:]
	titleOff := binary.LittleEndian.Uint64(rec[0:8])
	titleLen := binary.LittleEndian.Uint32(rec[8:12])
	urlOff := binary.LittleEndian.Uint64(rec[12:20])
	urlLen := binary.LittleEndian.Uint32(rec[20:24])
	if titleOff+uint64(titleLen) > uint64(len(r.docPool)) ||
		urlOff+uint64(urlLen) > uint64(len(r.docPool)) {
		return nil, nil
	}
	return r.docPool[titleOff : titleOff+uint64(titleLen)],
		r.docPool[urlOff : urlOff+uint64(urlLen)]
}

// Term returns the term bytes of lexicon record i.
func (r *Reader) Term(i int) []byte {
	rec := r.lexRecs[i*lexRecSize:]
	off := binary.LittleEndian.Uint64(rec[0:8])
	n := binary.LittleEndian.Uint16(rec[8:10])
	return r.termPool[off : off+uint64(n)]
}

// Df returns the document frequency recorded for lexicon record i.
func (r *Reader) Df(i int) uint32 {
	rec := r.lexRecs[i*lexRecSize:]
	return binary.LittleEndian.Uint32(rec[12:16])
}

// FindTerm binary-searches the lexicon for a stem, returning its record
// index.
func (r *Reader) FindTerm(stem []byte) (int, bool) {
	lo, hi := 0, int(r.termCount)
	for lo < hi {
		mid := lo + (hi-lo)/2
		switch c := bytes.Compare(stem, r.Term(mid)); {
		case c == 0:
			return mid, true
		case c < 0:
			hi = mid
		default:
			lo = mid + 1
		}
	}
	return 0, false
}

// Postings decodes the posting list of lexicon record i into a fresh slice.
// A record whose extent falls outside the postings file yields nil.
func (r *Reader) Postings(i int) []uint32 {
	rec := r.lexRecs[i*lexRecSize:]
	off := binary.LittleEndian.Uint64(rec[16:24])
	n := binary.LittleEndian.Uint32(rec[24:28])
	if n == 0 {
		return nil
	}
	end := off + uint64(n)*4
	if end > uint64(len(r.postBuf)) {
		return nil
	}
	out := make([]uint32, n)
	raw := r.postBuf[off:end]
	for k := range out {
		out[k] = binary.LittleEndian.Uint32(raw[4*k:])
	}
	return out
}
