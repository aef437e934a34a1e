package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"findex/internal/adapter/analyzer"
	"findex/internal/usecase"
)

var (
	statsDir      string
	statsReportMB uint64
	statsStem     bool
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Tokenisation statistics over a corpus directory",
	Long: `Stats tokenises every .txt file under a directory (recursively) and
reports byte, token and average-length figures without building anything.
With --stem each token also runs through the stemmer.

Examples:
  findex stats --dir ./corpus
  findex stats --dir ./corpus --stem --report-mb 100`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().StringVar(&statsDir, "dir", "", "corpus directory (required)")
	statsCmd.Flags().Uint64Var(&statsReportMB, "report-mb", 50, "progress report interval in MiB")
	statsCmd.Flags().BoolVar(&statsStem, "stem", false, "also stem every token")
}

func printStatsReport(label string, r usecase.StatsReport, stem bool) {
	speed := 0.0
	if r.Elapsed > 0 {
		speed = float64(r.Bytes) / 1024.0 / r.Elapsed
	}
	line := fmt.Sprintf("%s files=%d bytes=%d (%.1f KB) tokens=%d avg_token_len=%.3f",
		label, r.Files, r.Bytes, float64(r.Bytes)/1024.0, r.Tokens, r.AvgTokenLen())
	if stem {
		line += fmt.Sprintf(" avg_stem_len=%.3f", r.AvgStemLen())
	}
	fmt.Printf("%s time=%.3f sec speed=%.1f KB/s\n", line, r.Elapsed, speed)
}

func runStats(cmd *cobra.Command, args []string) error {
	if statsDir == "" {
		return usageErrorf("missing required --dir")
	}

	uc := usecase.NewStatsUseCase(analyzer.NewPorterStemmer())
	rep, err := uc.Run(usecase.StatsOptions{
		Dir:      statsDir,
		ReportMB: statsReportMB,
		Stem:     statsStem,
		OnReport: func(r usecase.StatsReport) {
			printStatsReport("[PROGRESS]", r, statsStem)
		},
	})
	if err != nil {
		return err
	}
	printStatsReport("[FINAL]", rep, statsStem)
	return nil
}
