package lexer

import (
	"github.com/tac-tics/spectra-lexer/internal/keys"
	"github.com/tac-tics/spectra-lexer/internal/rules"
)

// Result is one candidate decomposition produced by the search, wrapped
// with everything ranking needs: the rule map, the keys still unmatched at
// the moment it was produced, and the original translation.
type Result struct {
	Map       rules.RuleMap
	Remaining keys.KeySet
	Keys      keys.KeySet
	Word      string
}

// Complete reports whether the map accounts for every key in the stroke.
func (r Result) Complete() bool { return r.Remaining.IsEmpty() }

// Letters returns the total matched letter count.
func (r Result) Letters() int { return r.Map.Letters() }

// Decomposition is the selected explanation of one translation, exposed to
// downstream consumers (rendering, indexing). Unmatched holds the keys the
// map failed to account for; it equals the full key set on a fallback.
type Decomposition struct {
	Keys      keys.KeySet   `json:"keys"`
	Word      string        `json:"word"`
	Map       rules.RuleMap `json:"map"`
	Unmatched keys.KeySet   `json:"unmatched,omitempty"`
}

// Complete reports whether every key of the original stroke is explained.
func (d Decomposition) Complete() bool { return d.Unmatched.IsEmpty() }

// Fallback reports whether this is the synthetic whole-span decomposition
// returned when no rule-based explanation was found.
func (d Decomposition) Fallback() bool {
	return len(d.Map) == 1 && rules.IsUnmatched(d.Map[0].Rule)
}

// BestResult selects the single best decomposition from candidate results
// under a deterministic total order: complete maps outrank incomplete ones,
// then higher matched-letter count, then fewer map items, then earliest
// produced. An empty results sequence yields the synthetic whole-span
// fallback over fallbackKeys/fallbackWord, never an error.
func BestResult(results []Result, fallbackKeys keys.KeySet, fallbackWord string) Decomposition {
	if len(results) == 0 {
		return fallback(fallbackKeys, fallbackWord)
	}
	best := results[0]
	for _, r := range results[1:] {
		if better(r, best) {
			best = r
		}
	}
	return Decomposition{
		Keys:      best.Keys,
		Word:      best.Word,
		Map:       best.Map,
		Unmatched: best.Remaining,
	}
}

// better reports whether a strictly outranks b. Ties keep b, so scanning
// results in production order makes the earliest-produced candidate win.
func better(a, b Result) bool {
	if ac, bc := a.Complete(), b.Complete(); ac != bc {
		return ac
	}
	if al, bl := a.Letters(), b.Letters(); al != bl {
		return al > bl
	}
	return len(a.Map) < len(b.Map)
}

// fallback builds the synthetic single-item decomposition spanning the
// whole word, marking every key unmatched.
func fallback(k keys.KeySet, word string) Decomposition {
	return Decomposition{
		Keys:      k,
		Word:      word,
		Map:       rules.RuleMap{{Rule: rules.Unmatched(k), Start: 0, Length: len(word)}},
		Unmatched: k,
	}
}
