package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"findex/internal/adapter/analyzer"
	"findex/internal/usecase"
)

var (
	zipfDir      string
	zipfOut      string
	zipfTop      int
	zipfReportMB uint64
)

var zipfCmd = &cobra.Command{
	Use:   "zipf",
	Short: "Stem frequency table over a corpus directory",
	Long: `Zipf counts stem frequencies across every .txt file under a directory
and writes the full ranked table to <out>/zipf.csv for plotting. The top
terms are printed.

Examples:
  findex zipf --dir ./corpus
  findex zipf --dir ./corpus --out ./zipf_out --top 50`,
	Args: cobra.NoArgs,
	RunE: runZipf,
}

func init() {
	rootCmd.AddCommand(zipfCmd)
	zipfCmd.Flags().StringVar(&zipfDir, "dir", "", "corpus directory (required)")
	zipfCmd.Flags().StringVar(&zipfOut, "out", "./zipf_out", "output directory")
	zipfCmd.Flags().IntVar(&zipfTop, "top", 20, "number of top terms to print")
	zipfCmd.Flags().Uint64Var(&zipfReportMB, "report-mb", 200, "progress report interval in MiB")
}

func runZipf(cmd *cobra.Command, args []string) error {
	if zipfDir == "" {
		return usageErrorf("missing required --dir")
	}

	uc := usecase.NewZipfUseCase(analyzer.NewPorterStemmer())
	res, err := uc.Run(usecase.ZipfOptions{
		Dir:      zipfDir,
		OutDir:   zipfOut,
		Top:      zipfTop,
		ReportMB: zipfReportMB,
		OnReport: func(p usecase.ZipfProgress) {
			speed := 0.0
			if p.Elapsed > 0 {
				speed = float64(p.Bytes) / 1024.0 / p.Elapsed
			}
			fmt.Printf("[PROGRESS] files=%d bytes=%d (%.1f KB) tokens=%d uniq_terms=%d time=%.3f sec speed=%.1f KB/s\n",
				p.Files, p.Bytes, float64(p.Bytes)/1024.0, p.Tokens,
				p.UniqueTerms, p.Elapsed, speed)
		},
	})
	if err != nil {
		return err
	}

	fmt.Printf("files=%d bytes=%d tokens=%d distinct_terms=%d time=%.3f sec\n",
		res.Files, res.Bytes, res.Tokens, res.Terms, res.Elapsed)
	for i, e := range res.Top {
		fmt.Printf("%4d. %-24s %d\n", i+1, e.Term, e.Count)
	}
	fmt.Printf("table written to %s\n", res.CSVPath)
	return nil
}
