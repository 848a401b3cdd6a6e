// Package rules defines the immutable rule repository: named steno rules,
// their classification flags, and the rule maps that describe how a compound
// rule decomposes into smaller ones.
//
// A Repository is built once from externally supplied definitions and
// validated for internal consistency at load time. After Load returns, the
// repository is never mutated; queries share it by reference without
// locking.
package rules

import (
	"encoding/json"

	"github.com/tac-tics/spectra-lexer/internal/keys"
)

// Flag classifies a rule. The legal vocabulary is closed: any flag outside
// it fails validation at load time.
type Flag string

const (
	// FlagReference marks a primitive rule used only as a building block
	// of other rules; reference rules are skipped when indexing examples.
	FlagReference Flag = "reference"

	// FlagStroke restricts a rule to matching a whole stroke at a stroke
	// boundary.
	FlagStroke Flag = "stroke"

	// FlagWord restricts a rule to matching a whole whitespace-delimited
	// word.
	FlagWord Flag = "word"

	// FlagRare marks an uncommon mapping, kept for ranking diagnostics.
	FlagRare Flag = "rare"

	// FlagInversion marks a rule whose keys sound out of steno order.
	FlagInversion Flag = "inversion"

	// FlagUnordered marks a rule whose keys carry no ordering constraint.
	FlagUnordered Flag = "unordered"

	// FlagBrief marks an arbitrary abbreviation with no phonetic content.
	FlagBrief Flag = "brief"
)

// legalFlags is the closed flag vocabulary.
var legalFlags = map[Flag]bool{
	FlagReference: true,
	FlagStroke:    true,
	FlagWord:      true,
	FlagRare:      true,
	FlagInversion: true,
	FlagUnordered: true,
	FlagBrief:     true,
}

// Rule is a named unit mapping a key pattern to a letter pattern. Rules are
// immutable after load and shared read-only across queries.
type Rule struct {
	ID      string
	Keys    keys.KeySet
	Letters string
	Flags   []Flag
	// Children, when non-empty, decomposes this rule into smaller rules.
	// Child offsets index into this rule's Letters.
	Children RuleMap
}

// Is reports whether the rule carries flag f.
func (r *Rule) Is(f Flag) bool {
	for _, have := range r.Flags {
		if have == f {
			return true
		}
	}
	return false
}

// MapItem locates one rule within a parent word: Start and Length index
// into the word's letters, not its keys.
type MapItem struct {
	Rule   *Rule
	Start  int
	Length int
}

// MarshalJSON flattens the item to its rule's identity rather than the full
// rule graph; compound rules reference other rules and serializing them
// inline would balloon (or never terminate on self-referential sets).
func (m MapItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Rule    string `json:"rule"`
		Keys    string `json:"keys"`
		Letters string `json:"letters"`
		Start   int    `json:"start"`
		Length  int    `json:"length"`
	}{
		Rule:    m.Rule.ID,
		Keys:    m.Rule.Keys.String(),
		Letters: m.Rule.Letters,
		Start:   m.Start,
		Length:  m.Length,
	})
}

// RuleMap is an ordered decomposition of a word into rule-explained spans,
// sorted by increasing Start.
type RuleMap []MapItem

// Letters returns the total number of letters the map explains.
func (m RuleMap) Letters() int {
	n := 0
	for _, item := range m {
		n += item.Length
	}
	return n
}

// Keys returns the concatenated key count consumed by the map's rules.
func (m RuleMap) Keys() int {
	n := 0
	for _, item := range m {
		n += item.Rule.Keys.Count()
	}
	return n
}

// unmatchedID names the synthetic marker rule used when no decomposition
// explains a translation.
const unmatchedID = "??"

// Unmatched builds the synthetic fallback rule spanning unexplained keys.
func Unmatched(k keys.KeySet) *Rule {
	return &Rule{ID: unmatchedID, Keys: k}
}

// IsUnmatched reports whether r is the synthetic fallback marker.
func IsUnmatched(r *Rule) bool { return r != nil && r.ID == unmatchedID }

// Repository is the immutable collection of loaded rules.
type Repository struct {
	byID    map[string]*Rule
	ordered []*Rule // definition order, for deterministic iteration
}

// Rule looks up a rule by ID.
func (repo *Repository) Rule(id string) (*Rule, bool) {
	r, ok := repo.byID[id]
	return r, ok
}

// All returns every rule in definition order. The returned slice is shared;
// callers must not modify it.
func (repo *Repository) All() []*Rule { return repo.ordered }

// Len returns the number of rules.
func (repo *Repository) Len() int { return len(repo.ordered) }
