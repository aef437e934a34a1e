package usecase

import (
	"time"

	"findex/internal/adapter/analyzer"
	"findex/internal/adapter/retriever"
	"findex/internal/adapter/store"
	"findex/internal/domain"
	"findex/internal/port"
)

// SearchUseCase evaluates boolean query lines against an opened index.
type SearchUseCase struct {
	idx    *store.Reader
	parser *retriever.Parser
	eval   *retriever.Evaluator
	cache  port.Cache
}

// NewSearchUseCase wires the parser and evaluator around idx. cache may be
// nil to evaluate every query from scratch.
func NewSearchUseCase(idx *store.Reader, stemmer *analyzer.PorterStemmer, cache port.Cache) *SearchUseCase {
	return &SearchUseCase{
		idx:    idx,
		parser: retriever.NewParser(stemmer),
		eval:   retriever.NewEvaluator(idx),
		cache:  cache,
	}
}

// DocCount exposes the index's document count.
func (u *SearchUseCase) DocCount() uint32 { return u.idx.DocCount() }

// Doc returns display fields for a document id.
func (u *SearchUseCase) Doc(id uint32) (title, url []byte) { return u.idx.Doc(id) }

// Execute parses and evaluates one query line. Malformed queries are not
// errors; they evaluate to whatever survives the tolerant parser.
func (u *SearchUseCase) Execute(line string) domain.QueryResult {
	start := time.Now()

	if u.cache != nil {
		if ids, ok := u.cache.Get(line); ok {
			return domain.QueryResult{
				Query:   line,
				IDs:     ids,
				Elapsed: time.Since(start).Seconds(),
				Cached:  true,
			}
		}
	}

	ids := u.eval.Eval(u.parser.Parse(line))

	if u.cache != nil {
		// Best effort; a failed write only costs the next lookup.
		_ = u.cache.Put(line, ids)
	}

	return domain.QueryResult{
		Query:   line,
		IDs:     ids,
		Elapsed: time.Since(start).Seconds(),
	}
}

// IsBlank reports whether a query line holds only spaces and tabs and
// should be skipped without a stats line.
func IsBlank(line string) bool {
	for i := 0; i < len(line); i++ {
		if line[i] != ' ' && line[i] != '\t' {
			return false
		}
	}
	return true
}
