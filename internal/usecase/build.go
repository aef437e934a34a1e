package usecase

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"findex/internal/adapter/analyzer"
	"findex/internal/adapter/fs"
	"findex/internal/adapter/store"
	"findex/internal/domain"
	"findex/internal/port"
)

const (
	// readBufSize is the per-file read chunk during tokenisation.
	readBufSize = 1 << 20
	// manifestLineMax bounds one manifest line.
	manifestLineMax = 1 << 20

	termTableInitialCap = 1 << 14
	docSetCap           = 1 << 17
)

// BuildOptions configures one index build.
type BuildOptions struct {
	ManifestPath string
	CorpusDir    string
	OutDir       string
	MemMB        uint64
	ReportMB     uint64

	// OnReport fires every ReportMB MiB of corpus bytes consumed.
	OnReport func(BuildReport)
	// OnFlush fires after each block spill.
	OnFlush func(path string, terms int)
	// Progress fires after every document.
	Progress port.Progress
}

// BuildReport is a snapshot of a running build.
type BuildReport struct {
	Docs         uint32
	Bytes        uint64
	Tokens       uint64
	AvgUnique    float64
	TermsInBlock int
	MemBytes     uint64
	Elapsed      float64
}

// BuildUseCase drives the whole build: manifest in, three artifacts out.
type BuildUseCase struct {
	tokenizer *analyzer.Tokenizer
	stemmer   *analyzer.PorterStemmer
	logger    *slog.Logger
}

// NewBuildUseCase creates a builder sharing the given stemmer with the
// query side.
func NewBuildUseCase(stemmer *analyzer.PorterStemmer) *BuildUseCase {
	return &BuildUseCase{
		tokenizer: analyzer.NewTokenizer(),
		stemmer:   stemmer,
		logger:    slog.Default().With("component", "build"),
	}
}

// Run reads the manifest, tokenises each document into the in-memory term
// table, spills sorted blocks whenever the table's footprint crosses the
// memory limit, and finishes with the k-way merge. Flushes only ever happen
// between documents, so a single document never spans two blocks.
func (u *BuildUseCase) Run(opts BuildOptions) (domain.BuildStats, error) {
	var stats domain.BuildStats
	start := time.Now()

	if opts.MemMB == 0 {
		opts.MemMB = 512
	}
	if opts.ReportMB == 0 {
		opts.ReportMB = 200
	}
	memLimit := opts.MemMB << 20
	reportStep := opts.ReportMB << 20

	blocksDir := filepath.Join(opts.OutDir, store.BlocksDirName)
	if err := os.MkdirAll(blocksDir, 0o755); err != nil {
		return stats, fmt.Errorf("creating output directory: %w", err)
	}

	mf, err := os.Open(opts.ManifestPath)
	if err != nil {
		return stats, fmt.Errorf("opening manifest: %w", err)
	}
	defer mf.Close()

	docs := store.NewDocsBuilder()
	tt := store.NewTermTable(termTableInitialCap)
	dset := store.NewDocTermSet(docSetCap)

	flush := func() error {
		path := filepath.Join(blocksDir, fmt.Sprintf("block_%04d.blk", stats.Blocks))
		terms := tt.Len()
		if err := store.WriteBlock(path, tt.Snapshot()); err != nil {
			return err
		}
		tt.Clear()
		stats.Blocks++
		if opts.OnFlush != nil {
			opts.OnFlush(path, terms)
		}
		return nil
	}

	nextReport := reportStep
	readBuf := make([]byte, readBufSize)

	sc := bufio.NewScanner(mf)
	sc.Buffer(make([]byte, 64*1024), manifestLineMax)
	for sc.Scan() {
		rec, ok := fs.ParseManifestLine(sc.Text())
		if !ok {
			continue
		}

		docID := docs.Add(rec.Title, rec.URL)
		txtPath := filepath.Join(opts.CorpusDir, rec.DocID+".txt")
		if err := u.processDoc(txtPath, docID, tt, dset, readBuf, &stats); err != nil {
			u.logger.Warn("cannot read document", "path", txtPath, "err", err)
		}
		stats.Docs++

		if opts.Progress != nil {
			opts.Progress(stats.Docs, stats.TotalBytes, stats.TotalTokens)
		}
		if opts.OnReport != nil && stats.TotalBytes >= nextReport {
			opts.OnReport(BuildReport{
				Docs:         stats.Docs,
				Bytes:        stats.TotalBytes,
				Tokens:       stats.TotalTokens,
				AvgUnique:    stats.AvgUniqueTermsPerDoc(),
				TermsInBlock: tt.Len(),
				MemBytes:     tt.ApproxBytes(),
				Elapsed:      time.Since(start).Seconds(),
			})
			nextReport += reportStep
		}

		if tt.ApproxBytes() >= memLimit && tt.Len() > 0 {
			if err := flush(); err != nil {
				return stats, err
			}
		}
	}
	if err := sc.Err(); err != nil {
		return stats, fmt.Errorf("reading manifest: %w", err)
	}

	if tt.Len() > 0 {
		if err := flush(); err != nil {
			return stats, err
		}
	}

	if err := docs.WriteTo(filepath.Join(opts.OutDir, store.DocsName)); err != nil {
		return stats, err
	}

	blocks, err := fs.FindBlocks(blocksDir)
	if err != nil {
		return stats, fmt.Errorf("listing blocks: %w", err)
	}
	lexPath := filepath.Join(opts.OutDir, store.LexiconName)
	postPath := filepath.Join(opts.OutDir, store.PostingsName)
	fmt.Printf("[MERGE] blocks -> %s and %s\n", lexPath, postPath)
	merged, err := store.MergeBlocks(blocks, lexPath, postPath)
	if err != nil {
		return stats, err
	}
	stats.Terms = merged.TermCount

	fmt.Printf("[INDEX STATS] term_count=%d avg_term_len=%.3f postings_bytes=%d\n",
		merged.TermCount, merged.AvgTermLen, merged.PostingsBytes)

	stats.Elapsed = time.Since(start).Seconds()
	return stats, nil
}

// processDoc streams one corpus file through the tokenizer. Each token is
// stemmed; the per-doc set ensures a (stem, doc) pair reaches the term
// table once. A missing file is the caller's warning, not an error: the
// document keeps its docs.bin slot either way.
func (u *BuildUseCase) processDoc(
	path string,
	docID uint32,
	tt *store.TermTable,
	dset *store.DocTermSet,
	readBuf []byte,
	stats *domain.BuildStats,
) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dset.Reset()

	emit := func(tok []byte) {
		stats.TotalTokens++
		stem := u.stemmer.Stem(tok)
		if !dset.ContainsOrAdd(stem) {
			tt.Insert(stem, docID)
			stats.UniqueTermsSum++
		}
	}

	for {
		n, err := f.Read(readBuf)
		if n > 0 {
			stats.TotalBytes += uint64(n)
			u.tokenizer.Write(readBuf[:n], emit)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			u.tokenizer.Flush(emit)
			return err
		}
	}
	u.tokenizer.Flush(emit)
	return nil
}
