// Package analyzer exposes the query façade over the lexer engine: single
// translation queries, cross-product queries over alternative pairings, and
// parallel bulk analysis of whole translation sets.
package analyzer

import (
	"context"
	"runtime"
	"sync"

	"github.com/tac-tics/spectra-lexer/internal/keys"
	"github.com/tac-tics/spectra-lexer/internal/lexer"
	"github.com/tac-tics/spectra-lexer/internal/rules"
)

// Pair is one raw (stroke notation, word) translation.
type Pair struct {
	Keys string `yaml:"keys" json:"keys"`
	Word string `yaml:"word" json:"word"`
}

// Analyzer wraps a lexer over an immutable repository. It is safe for
// concurrent use: queries share only read-only state.
type Analyzer struct {
	lexer *lexer.Lexer
}

// New builds an Analyzer over a validated repository.
func New(repo *rules.Repository) *Analyzer {
	return &Analyzer{lexer: lexer.New(repo)}
}

// Query analyzes a single translation. Raw stroke notation is cleansed
// best-effort first; malformed notation degrades to a partial or empty key
// set rather than failing. When needAllKeys is set, only decompositions
// accounting for every key are considered, and the synthetic fallback is
// returned if none exists.
func (a *Analyzer) Query(rawKeys, word string, needAllKeys bool) lexer.Decomposition {
	k := keys.Cleanse(rawKeys)
	var opts []lexer.QueryOption
	if needAllKeys {
		opts = append(opts, lexer.NeedAllKeys())
	}
	return a.lexer.Query(k, word, opts...)
}

// QueryCross evaluates every pairing from keysList x words and returns the
// single best decomposition across all of them, under the same total order
// a single query uses. It is used when a word has several plausible stroke
// encodings and the caller wants the best-fitting pair. With no pairings the
// fallback is built from the first key set and word supplied, so even a
// one-sided input degrades to an informative result.
func (a *Analyzer) QueryCross(keysList, words []string) lexer.Decomposition {
	var fbKeys keys.KeySet
	if len(keysList) > 0 {
		fbKeys = keys.Cleanse(keysList[0])
	}
	var fbWord string
	if len(words) > 0 {
		fbWord = words[0]
	}
	var union []lexer.Result
	for _, raw := range keysList {
		k := keys.Cleanse(raw)
		for _, w := range words {
			union = append(union, a.lexer.Results(k, w)...)
		}
	}
	return lexer.BestResult(union, fbKeys, fbWord)
}

// BulkOption configures a bulk query.
type BulkOption func(*bulkConfig)

type bulkConfig struct {
	workers   int
	filterIn  func(Pair) bool
	filterOut func(lexer.Decomposition) bool
}

// WithWorkers sets the fan-out width. Defaults to GOMAXPROCS.
func WithWorkers(n int) BulkOption {
	return func(c *bulkConfig) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithFilterIn skips translations for which fn returns false before any
// computation happens.
func WithFilterIn(fn func(Pair) bool) BulkOption {
	return func(c *bulkConfig) { c.filterIn = fn }
}

// WithFilterOut discards computed decompositions for which fn returns
// false.
func WithFilterOut(fn func(lexer.Decomposition) bool) BulkOption {
	return func(c *bulkConfig) { c.filterOut = fn }
}

// QueryBulk analyzes every pair with need-all-keys forced on, fanned out
// across a worker pool. Pairs are mutually independent: each worker shares
// only the immutable repository index, so no synchronization exists beyond
// result collection, and result order is unspecified.
//
// The algorithm itself has no timeout; ctx is the caller's external
// deadline and is only observed between pairs, never inside a search. An
// empty pair set returns an empty slice.
func (a *Analyzer) QueryBulk(ctx context.Context, pairs []Pair, opts ...BulkOption) []lexer.Decomposition {
	cfg := bulkConfig{workers: runtime.GOMAXPROCS(0)}
	for _, opt := range opts {
		opt(&cfg)
	}

	in := make(chan Pair)
	out := make(chan lexer.Decomposition)

	var wg sync.WaitGroup
	for w := 0; w < cfg.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range in {
				d := a.Query(p.Keys, p.Word, true)
				if cfg.filterOut != nil && !cfg.filterOut(d) {
					continue
				}
				out <- d
			}
		}()
	}

	go func() {
		defer close(in)
		for _, p := range pairs {
			if cfg.filterIn != nil && !cfg.filterIn(p) {
				continue
			}
			select {
			case in <- p:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(out)
	}()

	results := make([]lexer.Decomposition, 0, len(pairs))
	for d := range out {
		results = append(results, d)
	}
	return results
}
