package usecase

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"findex/internal/adapter/analyzer"
	"findex/internal/adapter/fs"
)

// ZipfOptions configures a term-frequency pass.
type ZipfOptions struct {
	Dir      string
	OutDir   string
	Top      int
	ReportMB uint64

	// OnReport fires every ReportMB MiB of input.
	OnReport func(ZipfProgress)
}

// ZipfProgress is a snapshot of a running frequency pass.
type ZipfProgress struct {
	Files       uint32
	Bytes       uint64
	Tokens      uint64
	UniqueTerms int
	Elapsed     float64
}

// ZipfEntry is one stem with its total occurrence count.
type ZipfEntry struct {
	Term  string
	Count uint64
}

// ZipfResult is the ranked frequency table.
type ZipfResult struct {
	Files   uint32
	Bytes   uint64
	Tokens  uint64
	Terms   int
	Top     []ZipfEntry
	CSVPath string
	Elapsed float64
}

// ZipfUseCase counts stem frequencies across a corpus and writes the full
// ranked table as CSV for plotting.
type ZipfUseCase struct {
	tokenizer *analyzer.Tokenizer
	stemmer   *analyzer.PorterStemmer
	logger    *slog.Logger
}

// NewZipfUseCase creates the frequency pass.
func NewZipfUseCase(stemmer *analyzer.PorterStemmer) *ZipfUseCase {
	return &ZipfUseCase{
		tokenizer: analyzer.NewTokenizer(),
		stemmer:   stemmer,
		logger:    slog.Default().With("component", "zipf"),
	}
}

// Run tokenises every .txt file under opts.Dir, counts stems, and writes
// <OutDir>/zipf.csv with rank,count,term rows in descending count order.
func (u *ZipfUseCase) Run(opts ZipfOptions) (ZipfResult, error) {
	var res ZipfResult
	start := time.Now()

	if opts.Top <= 0 {
		opts.Top = 20
	}
	if opts.ReportMB == 0 {
		opts.ReportMB = 200
	}
	reportStep := opts.ReportMB << 20
	nextReport := reportStep
	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return res, fmt.Errorf("creating output directory: %w", err)
	}

	files, err := fs.FindTextFiles(opts.Dir)
	if err != nil {
		return res, fmt.Errorf("walking corpus: %w", err)
	}

	counts := make(map[string]uint64)
	buf := make([]byte, readBufSize)
	emit := func(tok []byte) {
		res.Tokens++
		counts[string(u.stemmer.Stem(tok))]++
	}

	for _, path := range files {
		f, err := os.Open(path)
		if err != nil {
			u.logger.Warn("cannot open corpus file", "path", path, "err", err)
			continue
		}
		for {
			n, rerr := f.Read(buf)
			if n > 0 {
				res.Bytes += uint64(n)
				u.tokenizer.Write(buf[:n], emit)

				if opts.OnReport != nil && res.Bytes >= nextReport {
					opts.OnReport(ZipfProgress{
						Files:       res.Files,
						Bytes:       res.Bytes,
						Tokens:      res.Tokens,
						UniqueTerms: len(counts),
						Elapsed:     time.Since(start).Seconds(),
					})
					nextReport += reportStep
				}
			}
			if rerr == io.EOF {
				break
			}
			if rerr != nil {
				u.logger.Warn("read failed", "path", path, "err", rerr)
				break
			}
		}
		u.tokenizer.Flush(emit)
		f.Close()
		res.Files++
	}

	ranked := make([]ZipfEntry, 0, len(counts))
	for term, count := range counts {
		ranked = append(ranked, ZipfEntry{Term: term, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Term < ranked[j].Term
	})
	res.Terms = len(ranked)

	csvPath := filepath.Join(opts.OutDir, "zipf.csv")
	cf, err := os.Create(csvPath)
	if err != nil {
		return res, fmt.Errorf("creating %s: %w", csvPath, err)
	}
	w := bufio.NewWriter(cf)
	fmt.Fprintln(w, "rank,count,term")
	for i, e := range ranked {
		fmt.Fprintf(w, "%d,%d,%s\n", i+1, e.Count, e.Term)
	}
	if err := w.Flush(); err != nil {
		cf.Close()
		return res, fmt.Errorf("writing %s: %w", csvPath, err)
	}
	if err := cf.Close(); err != nil {
		return res, fmt.Errorf("closing %s: %w", csvPath, err)
	}
	res.CSVPath = csvPath

	top := opts.Top
	if top > len(ranked) {
		top = len(ranked)
	}
	res.Top = ranked[:top]
	res.Elapsed = time.Since(start).Seconds()
	return res, nil
}
