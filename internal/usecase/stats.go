package usecase

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"findex/internal/adapter/analyzer"
	"findex/internal/adapter/fs"
)

// StatsOptions configures a corpus statistics pass.
type StatsOptions struct {
	Dir      string
	ReportMB uint64
	Stem     bool

	// OnReport fires every ReportMB MiB of input.
	OnReport func(StatsReport)
}

// StatsReport carries running or final corpus statistics.
type StatsReport struct {
	Files      uint32
	Bytes      uint64
	Tokens     uint64
	TokenBytes uint64
	StemBytes  uint64
	Elapsed    float64
}

// AvgTokenLen is the mean token length in bytes.
func (r StatsReport) AvgTokenLen() float64 {
	if r.Tokens == 0 {
		return 0
	}
	return float64(r.TokenBytes) / float64(r.Tokens)
}

// AvgStemLen is the mean stem length in bytes; zero unless stemming ran.
func (r StatsReport) AvgStemLen() float64 {
	if r.Tokens == 0 {
		return 0
	}
	return float64(r.StemBytes) / float64(r.Tokens)
}

// StatsUseCase walks a corpus directory and measures the token stream —
// the tokenizer and stemmer exercised on their own, without building
// anything.
type StatsUseCase struct {
	tokenizer *analyzer.Tokenizer
	stemmer   *analyzer.PorterStemmer
	logger    *slog.Logger
}

// NewStatsUseCase creates the statistics pass.
func NewStatsUseCase(stemmer *analyzer.PorterStemmer) *StatsUseCase {
	return &StatsUseCase{
		tokenizer: analyzer.NewTokenizer(),
		stemmer:   stemmer,
		logger:    slog.Default().With("component", "stats"),
	}
}

// Run tokenises every .txt file under opts.Dir, recursively.
func (u *StatsUseCase) Run(opts StatsOptions) (StatsReport, error) {
	var rep StatsReport
	start := time.Now()

	if opts.ReportMB == 0 {
		opts.ReportMB = 50
	}
	reportStep := opts.ReportMB << 20
	nextReport := reportStep

	files, err := fs.FindTextFiles(opts.Dir)
	if err != nil {
		return rep, fmt.Errorf("walking corpus: %w", err)
	}

	buf := make([]byte, readBufSize)
	emit := func(tok []byte) {
		rep.Tokens++
		rep.TokenBytes += uint64(len(tok))
		if opts.Stem {
			rep.StemBytes += uint64(len(u.stemmer.Stem(tok)))
		}
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
				rep.Bytes += uint64(n)
				u.tokenizer.Write(buf[:n], emit)

				if opts.OnReport != nil && rep.Bytes >= nextReport {
					rep.Elapsed = time.Since(start).Seconds()
					opts.OnReport(rep)
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
		rep.Files++
	}

	rep.Elapsed = time.Since(start).Seconds()
	return rep, nil
}
