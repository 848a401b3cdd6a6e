// Package lexer implements the steno lexer search engine: a backtracking
// enumeration of candidate decompositions of a (keys, word) translation,
// pruned against the best complete decomposition found so far and ranked
// into a single best explanation.
//
// The search runs over an explicit LIFO stack of frames rather than native
// recursion, so stack depth and exploration order stay controllable and
// testable even on pathological rule sets. A single query is strictly
// sequential and runs to exhaustion; the only shared state is the immutable
// rule index built at construction, so any number of queries may run
// concurrently against one Lexer.
package lexer

import (
	"strings"

	"github.com/tac-tics/spectra-lexer/internal/keys"
	"github.com/tac-tics/spectra-lexer/internal/rules"
)

// Lexer holds the immutable matcher index for a loaded repository.
type Lexer struct {
	matcher *matcher
}

// New builds a Lexer over repo. The repository must already be validated;
// the lexer itself never re-checks rule integrity.
func New(repo *rules.Repository) *Lexer {
	return &Lexer{matcher: newMatcher(repo)}
}

// QueryOption configures a single query.
type QueryOption func(*queryConfig)

type queryConfig struct {
	needAllKeys bool
	prune       bool
}

// NeedAllKeys suppresses partial maps: only decompositions that account for
// every key are kept as candidates. Bulk analysis forces this on to avoid
// retaining low-confidence results at scale.
func NeedAllKeys() QueryOption {
	return func(c *queryConfig) { c.needAllKeys = true }
}

// WithoutPruning disables the space-left bound and enumerates the search
// space exhaustively. Pruning affects performance only, never the selected
// result; this option exists so tests can verify exactly that.
func WithoutPruning() QueryOption {
	return func(c *queryConfig) { c.prune = false }
}

// Query returns the best decomposition of word under the given keys, or the
// synthetic whole-span fallback when the search produces nothing. Identical
// inputs always yield the identical decomposition.
func (l *Lexer) Query(k keys.KeySet, word string, opts ...QueryOption) Decomposition {
	return BestResult(l.Results(k, word, opts...), k, word)
}

// Results runs the search and returns every candidate in LIFO exploration
// order. Exposed so cross-product queries can rank a union of result sets.
func (l *Lexer) Results(k keys.KeySet, word string, opts ...QueryOption) []Result {
	cfg := queryConfig{prune: true}
	for _, opt := range opts {
		opt(&cfg)
	}
	return l.search(k, word, cfg)
}

// frame is the backtracking engine's unit of work. Frames are produced and
// consumed only inside search and never escape it.
type frame struct {
	keys    keys.KeySet   // keys not yet matched
	word    string        // remaining word suffix, lowercased
	ptr     int           // index of the suffix within the full word
	letters int           // letters matched so far
	rmap    rules.RuleMap // rules matched so far
}

// search enumerates candidate rule maps for the translation keys -> word.
//
// Every pushed frame strictly shrinks the remaining key set (a matched
// rule's keys are non-empty by load-time validation), so the search always
// terminates. Candidates are explored fewest-keys-first, which raises the
// best-letters bound quickly and makes the space-left prune aggressive.
func (l *Lexer) search(full keys.KeySet, word string, cfg queryConfig) []Result {
	var results []Result
	bestLetters := 0

	// Sentence beginnings and proper names must still match, so the word
	// is folded to lowercase for the whole search.
	stack := []frame{{keys: full, word: strings.ToLower(word)}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if len(f.rmap) > 0 && (f.keys.IsEmpty() || !cfg.needAllKeys) {
			results = append(results, Result{Map: f.rmap, Remaining: f.keys, Keys: full, Word: word})
		}
		if f.keys.IsEmpty() {
			// A complete decomposition: raise the pruning bound and back
			// up; there are no keys left to expand with.
			if f.letters > bestLetters {
				bestLetters = f.letters
			}
			continue
		}

		// How many letters this path can still skip and tie the best map.
		spaceLeft := len(f.word) - (bestLetters - f.letters)

		for _, r := range l.matcher.candidates(f.keys, f.word, full) {
			// First occurrence of the rule's letters; the offset is also
			// the number of characters this match would skip.
			i := strings.Index(f.word, r.Letters)
			if i < 0 {
				continue
			}
			if cfg.prune && spaceLeft < i {
				continue
			}
			matched := len(r.Letters)
			next := make(rules.RuleMap, len(f.rmap), len(f.rmap)+1)
			copy(next, f.rmap)
			next = append(next, rules.MapItem{Rule: r, Start: f.ptr + i, Length: matched})
			advance := i + matched
			stack = append(stack, frame{
				keys:    f.keys.Without(r.Keys),
				word:    f.word[advance:],
				ptr:     f.ptr + advance,
				letters: f.letters + matched,
				rmap:    next,
			})
		}
	}
	return results
}
