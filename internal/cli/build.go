package cli

import (
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"findex/internal/adapter/analyzer"
	"findex/internal/usecase"
)

var (
	buildManifest string
	buildCorpus   string
	buildOut      string
	buildMemMB    uint64
	buildReportMB uint64
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the inverted index from a manifest and corpus",
	Long: `Build reads the JSON-lines manifest, tokenises each document's .txt
file, and writes docs.bin, lexicon.bin and postings.bin into the output
directory. Intermediate sorted blocks are spilled to <out>/blocks/ whenever
the in-memory table crosses the memory budget, then merged.

Examples:
  findex build --manifest manifest.jsonl --corpus ./corpus
  findex build --manifest m.jsonl --corpus ./corpus --out ./out --mem-mb 256`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().StringVar(&buildManifest, "manifest", "", "manifest .jsonl file (required)")
	buildCmd.Flags().StringVar(&buildCorpus, "corpus", "", "corpus directory with <doc_id>.txt files (required)")
	buildCmd.Flags().StringVar(&buildOut, "out", "out", "output directory")
	buildCmd.Flags().Uint64Var(&buildMemMB, "mem-mb", 0, "term-table memory budget in MiB before a block spill")
	buildCmd.Flags().Uint64Var(&buildReportMB, "report-mb", 0, "progress report interval in MiB of corpus")
}

func runBuild(cmd *cobra.Command, args []string) error {
	if buildManifest == "" {
		return usageErrorf("missing required --manifest")
	}
	if buildCorpus == "" {
		return usageErrorf("missing required --corpus")
	}

	cfg := GetConfig()
	memMB := cfg.Index.MemMB
	if cmd.Flags().Changed("mem-mb") {
		memMB = buildMemMB
	}
	reportMB := cfg.Index.ReportMB
	if cmd.Flags().Changed("report-mb") {
		reportMB = buildReportMB
	}

	bar := progressbar.NewOptions64(-1,
		progressbar.OptionSetDescription("indexing"),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSpinnerType(14),
	)

	uc := usecase.NewBuildUseCase(analyzer.NewPorterStemmer())
	stats, err := uc.Run(usecase.BuildOptions{
		ManifestPath: buildManifest,
		CorpusDir:    buildCorpus,
		OutDir:       buildOut,
		MemMB:        memMB,
		ReportMB:     reportMB,
		Progress: func(docs uint32, bytes, tokens uint64) {
			bar.Set64(int64(bytes))
		},
		OnReport: func(r usecase.BuildReport) {
			speed := 0.0
			if r.Elapsed > 0 {
				speed = float64(r.Bytes) / 1024.0 / r.Elapsed
			}
			fmt.Printf("\n[PROGRESS] docs=%d bytes=%d (%.1f KB) tokens=%d avg_unique_terms/doc=%.1f terms_in_block=%d time=%.2f sec speed=%.1f KB/s mem=%d MB\n",
				r.Docs, r.Bytes, float64(r.Bytes)/1024.0, r.Tokens,
				r.AvgUnique, r.TermsInBlock, r.Elapsed, speed, r.MemBytes>>20)
		},
		OnFlush: func(path string, terms int) {
			fmt.Printf("\n[FLUSH] writing %s terms=%d\n", path, terms)
		},
	})
	if err != nil {
		return err
	}
	bar.Finish()

	speed := 0.0
	if stats.Elapsed > 0 {
		speed = float64(stats.TotalBytes) / 1024.0 / stats.Elapsed
	}
	fmt.Printf("\n[DONE] docs=%d total_bytes=%d (%.1f KB) total_tokens=%d avg_unique_terms/doc=%.1f blocks=%d terms=%d time=%.2f sec speed=%.1f KB/s\n",
		stats.Docs, stats.TotalBytes, float64(stats.TotalBytes)/1024.0,
		stats.TotalTokens, stats.AvgUniqueTermsPerDoc(), stats.Blocks,
		stats.Terms, stats.Elapsed, speed)
	return nil
}
