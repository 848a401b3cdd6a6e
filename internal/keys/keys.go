// Package keys implements the canonical key-set representation of a steno
// stroke.
//
// Raw user notation (RTFCRE-style: "TEFT", "TE*S", "-G", "KAT/HROG") is
// cleansed into s-keys: a string of single-rune keys in steno order where
// right-bank keys are stored lowercase so that, for example, left T and
// right T are distinct runes. Strokes are joined by the separator '/'.
//
// Cleansing never fails. Unrecognized runes are dropped and the result
// degrades to a partial or empty key set; downstream callers treat an empty
// set as "nothing to match", not as an error.
package keys

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Separator joins individual strokes within a key set.
const Separator = '/'

// Key banks in canonical steno order. Center keys (vowels and star) are the
// unordered keys: they sit between the banks and may be consumed in any
// order by a match.
const (
	leftBank   = "#STKPWHR"
	centerKeys = "AO*EU"
	rightBank  = "FRPBLGTSDZ" // canonical form is lowercase
)

// canonicalOrder is the full per-stroke ordering of canonical key runes.
const canonicalOrder = leftBank + centerKeys + "frpblgtsdz"

// KeySet is an ordered, duplicate-free sequence of canonical key runes.
// The zero value is the empty set.
type KeySet string

// IsUnordered reports whether r is one of the center keys, which match
// position-independently within their stroke.
func IsUnordered(r rune) bool {
	return strings.ContainsRune(centerKeys, r)
}

// IsIgnorable reports whether r is excluded from parent/child key coverage
// accounting: the stroke separator and the star, which rules routinely
// leave unexplained.
func IsIgnorable(r rune) bool {
	return r == Separator || r == '*'
}

// Cleanse parses raw stroke notation into a canonical KeySet. It never
// fails: unknown runes are dropped, duplicate keys collapse, and each
// stroke's keys are emitted in steno order. Empty strokes vanish.
func Cleanse(raw string) KeySet {
	raw = norm.NFC.String(strings.TrimSpace(raw))
	var strokes []string
	for _, stroke := range strings.Split(raw, string(Separator)) {
		if s := cleanseStroke(stroke); s != "" {
			strokes = append(strokes, s)
		}
	}
	return KeySet(strings.Join(strokes, string(Separator)))
}

// bank parser states, advancing monotonically left to right.
const (
	stateLeft = iota
	stateCenter
	stateRight
)

// cleanseStroke canonicalizes a single stroke. The parse walks a three-state
// machine: left bank until a center key or hyphen appears, then center, then
// right. A rune valid only on the right (such as F or B before any vowel)
// jumps the state forward; anything else unrecognized is dropped.
func cleanseStroke(stroke string) string {
	state := stateLeft
	seen := make(map[rune]bool, len(stroke))
	for _, r := range strings.ToUpper(stroke) {
		switch {
		case r == '-':
			if state < stateRight {
				state = stateRight
			}
		case strings.ContainsRune(centerKeys, r):
			seen[r] = true
			if state < stateCenter {
				state = stateCenter
			}
		case state == stateLeft && strings.ContainsRune(leftBank, r):
			seen[r] = true
		case strings.ContainsRune(rightBank, r):
			seen[unicode.ToLower(r)] = true // lowercase canonical form
			state = stateRight
		}
	}
	if len(seen) == 0 {
		return ""
	}
	var b strings.Builder
	for _, r := range canonicalOrder {
		if seen[r] {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Without returns a new KeySet with the first occurrence of each of other's
// runes removed. It is pure and removes at most the multiset intersection;
// keys in other that are absent from k are ignored. Order of the surviving
// keys is preserved, and a stroke whose keys are all consumed loses its
// separator too.
func (k KeySet) Without(other KeySet) KeySet {
	if other == "" || k == "" {
		return k
	}
	remove := make(map[rune]int, len(other))
	for _, r := range other {
		remove[r]++
	}
	out := make([]rune, 0, len(k))
	for _, r := range k {
		if remove[r] > 0 {
			remove[r]--
			continue
		}
		out = append(out, r)
	}
	return KeySet(out).tidy()
}

// tidy strips separators left dangling after key removal.
func (k KeySet) tidy() KeySet {
	s := strings.Trim(string(k), string(Separator))
	for strings.Contains(s, "//") {
		s = strings.ReplaceAll(s, "//", string(Separator))
	}
	return KeySet(s)
}

// IsEmpty reports whether no keys remain (separators alone count as empty).
func (k KeySet) IsEmpty() bool {
	for _, r := range k {
		if r != Separator {
			return false
		}
	}
	return true
}

// Count returns the number of keys, excluding separators.
func (k KeySet) Count() int {
	n := 0
	for _, r := range k {
		if r != Separator {
			n++
		}
	}
	return n
}

// FirstStroke returns the keys up to the first separator.
func (k KeySet) FirstStroke() KeySet {
	if i := strings.IndexRune(string(k), Separator); i >= 0 {
		return k[:i]
	}
	return k
}

// String returns the canonical s-keys form.
func (k KeySet) String() string { return string(k) }
