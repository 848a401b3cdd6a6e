package lexer

import (
	"sort"
	"strings"

	"github.com/tac-tics/spectra-lexer/internal/keys"
	"github.com/tac-tics/spectra-lexer/internal/rules"
)

// matcher indexes a repository for candidate lookup during the search. It
// is built once per Lexer and never mutated afterward, so concurrent
// queries share it freely.
//
// Three indexes, mirroring how rules are allowed to consume keys:
//
//   - a rune trie over each rule's ordered keys, for ordinary rules that
//     consume a prefix of the remaining keys;
//   - a by-stroke table for rules flagged "stroke", which match only when
//     the rule's whole key set is the next stroke;
//   - a by-word table for rules flagged "word", which match only a whole
//     whitespace-delimited word.
//
// Center keys (vowels and star) are unordered within their stroke: the trie
// walks only ordered keys and each stored rule carries its center-key
// requirement as a subset check against the first remaining stroke.
type matcher struct {
	root     *trieNode
	byStroke map[keys.KeySet]*rules.Rule
	byWord   map[string][]*rules.Rule
}

type trieNode struct {
	children map[rune]*trieNode
	rules    []trieRule
}

type trieRule struct {
	rule      *rules.Rule
	unordered string // center keys the first stroke must still hold
}

func newMatcher(repo *rules.Repository) *matcher {
	m := &matcher{
		root:     &trieNode{},
		byStroke: make(map[keys.KeySet]*rules.Rule),
		byWord:   make(map[string][]*rules.Rule),
	}
	for _, r := range repo.All() {
		switch {
		case r.Is(rules.FlagStroke):
			// Keyed by the rule's whole key set: a stroke rule fires only
			// when its entire pattern is the next stroke, so a pattern
			// spanning a separator can never fire.
			m.byStroke[r.Keys] = r
		case r.Is(rules.FlagWord):
			m.byWord[r.Letters] = append(m.byWord[r.Letters], r)
		default:
			m.insert(r)
		}
	}
	return m
}

// splitStroke divides a stroke's canonical keys into the ordered walk
// sequence and the unordered center-key set.
func splitStroke(stroke keys.KeySet) (ordered, unordered string) {
	var ob, ub strings.Builder
	for _, r := range stroke {
		if keys.IsUnordered(r) {
			ub.WriteRune(r)
		} else {
			ob.WriteRune(r)
		}
	}
	return ob.String(), ub.String()
}

// walkSequence is the trie path for a key set: the first stroke's ordered
// keys, then any further strokes literally (they are already canonical).
func walkSequence(k keys.KeySet) (path, unordered string) {
	first := k.FirstStroke()
	ordered, unordered := splitStroke(first)
	if len(first) < len(k) {
		ordered += string(k[len(first):])
	}
	return ordered, unordered
}

func (m *matcher) insert(r *rules.Rule) {
	path, unordered := walkSequence(r.Keys)
	node := m.root
	for _, c := range path {
		if node.children == nil {
			node.children = make(map[rune]*trieNode)
		}
		next := node.children[c]
		if next == nil {
			next = &trieNode{}
			node.children[c] = next
		}
		node = next
	}
	node.rules = append(node.rules, trieRule{rule: r, unordered: unordered})
}

// candidates returns every rule that could legally match next, ordered
// fewest-keys-first so the search discovers dense maps early. Every
// returned rule's letter pattern is guaranteed to occur somewhere in
// remainingWord; locating where is the engine's job.
func (m *matcher) candidates(remaining keys.KeySet, remainingWord string, full keys.KeySet) []*rules.Rule {
	var out []*rules.Rule

	// Special matchers first: whole-stroke and whole-word rules fire only
	// at their respective boundaries.
	if atStrokeBoundary(remaining, full) {
		if r, ok := m.byStroke[remaining.FirstStroke()]; ok {
			if strings.Contains(remainingWord, r.Letters) {
				out = append(out, r)
			}
		}
	}
	if word, ok := nextWholeWord(remaining, remainingWord, full); ok {
		for _, r := range m.byWord[word] {
			if strings.HasPrefix(string(remaining), string(r.Keys)) {
				out = append(out, r)
			}
		}
	}

	// Trie walk: collect at every node along the remaining ordered keys.
	// Shallower nodes surface first, so the list is already near the
	// fewest-keys-first order; the final stable sort settles rules whose
	// unordered keys change their totals.
	path, unordered := walkSequence(remaining)
	node := m.root
	for i := 0; ; i++ {
		for _, tr := range node.rules {
			if !containsAll(unordered, tr.unordered) {
				continue
			}
			if strings.Contains(remainingWord, tr.rule.Letters) {
				out = append(out, tr.rule)
			}
		}
		if i == len(path) {
			break
		}
		node = node.children[rune(path[i])]
		if node == nil {
			break
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Keys.Count() < out[j].Keys.Count()
	})
	return out
}

// atStrokeBoundary reports whether remaining starts on a fresh stroke: the
// query just started, or everything before the remaining suffix of the full
// key set ended at a separator.
func atStrokeBoundary(remaining, full keys.KeySet) bool {
	if remaining == full {
		return true
	}
	if !strings.HasSuffix(string(full), string(remaining)) {
		return false
	}
	return full[len(full)-len(remaining)-1] == keys.Separator
}

// nextWholeWord returns the whitespace-delimited word at the pointer, if
// the pointer sits at the query start or on a space.
func nextWholeWord(remaining keys.KeySet, remainingWord string, full keys.KeySet) (string, bool) {
	if remaining != full && !strings.HasPrefix(remainingWord, " ") {
		return "", false
	}
	fields := strings.Fields(remainingWord)
	if len(fields) == 0 {
		return "", false
	}
	return fields[0], true
}

// containsAll reports whether every rune of want occurs in have.
func containsAll(have, want string) bool {
	for _, r := range want {
		if !strings.ContainsRune(have, r) {
			return false
		}
	}
	return true
}
