package cli

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"findex/internal/adapter/analyzer"
	"findex/internal/adapter/cache"
	"findex/internal/adapter/store"
	"findex/internal/port"
	"findex/internal/usecase"
)

// queryLineMax bounds one query line read from stdin.
const queryLineMax = 8192

var (
	searchIndexDir  string
	searchLimit     uint32
	searchOffset    uint32
	searchStatsOnly bool
	searchDocCount  bool
	searchCache     bool
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Evaluate boolean queries from stdin against an index",
	Long: `Search loads the three index artifacts into memory and evaluates one
boolean expression per stdin line. Operators: && (and), || (or), ! (not),
parentheses; adjacent terms are implicitly and-ed. Results are printed as
id<TAB>title<TAB>url lines followed by a [STATS] summary.

Examples:
  echo 'cat && dog' | findex search --index ./out
  findex search --index ./out --limit 10 --offset 20 < queries.txt`,
	Args: cobra.NoArgs,
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringVar(&searchIndexDir, "index", "./out", "index directory")
	searchCmd.Flags().Uint32Var(&searchLimit, "limit", 0, "maximum results to print per query")
	searchCmd.Flags().Uint32Var(&searchOffset, "offset", 0, "results to skip per query")
	searchCmd.Flags().BoolVar(&searchStatsOnly, "stats-only", false, "print only the [STATS] line")
	searchCmd.Flags().BoolVar(&searchDocCount, "print-doccount", false, "print the document count and exit")
	searchCmd.Flags().BoolVar(&searchCache, "cache", false, "persist evaluated queries in <index>/cache.db")
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	limit := cfg.Search.Limit
	if cmd.Flags().Changed("limit") {
		limit = searchLimit
	}
	offset := cfg.Search.Offset
	if cmd.Flags().Changed("offset") {
		offset = searchOffset
	}

	idx, err := store.Open(searchIndexDir)
	if err != nil {
		return fmt.Errorf("index load failed: %w", err)
	}

	if searchDocCount {
		fmt.Println(idx.DocCount())
		return nil
	}

	var qc port.Cache
	if searchCache || cfg.Search.Cache.Enabled {
		c, err := cache.Open(cfg.CachePath(searchIndexDir), idx.Fingerprint())
		if err != nil {
			slog.Warn("query cache unavailable", "err", err)
		} else {
			qc = c
			defer c.Close()
		}
	}

	search := usecase.NewSearchUseCase(idx, analyzer.NewPorterStemmer(), qc)

	sc := bufio.NewScanner(os.Stdin)
	sc.Buffer(make([]byte, queryLineMax), queryLineMax)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r\n")
		if usecase.IsBlank(line) {
			continue
		}

		res := search.Execute(line)

		shown := uint32(0)
		if searchStatsOnly {
			if offset < uint32(len(res.IDs)) {
				left := uint32(len(res.IDs)) - offset
				shown = left
				if shown > limit {
					shown = limit
				}
			}
		} else {
			for i := offset; i < uint32(len(res.IDs)) && shown < limit; i++ {
				id := res.IDs[i]
				if id >= search.DocCount() {
					continue
				}
				title, url := search.Doc(id)
				fmt.Printf("%d\t%s\t%s\n", id, title, url)
				shown++
			}
		}

		fmt.Printf("[STATS] query=\"%s\" hits=%d shown=%d offset=%d time=%.6f sec\n",
			res.Query, len(res.IDs), shown, offset, res.Elapsed)
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("reading queries: %w", err)
	}
	return nil
}
