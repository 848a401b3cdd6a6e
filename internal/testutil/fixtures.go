// Package testutil provides the canonical fixture rule set shared by tests
// across packages: a small English-flavored steno theory that exercises
// every matcher kind (prefix, unordered vowels, whole stroke, whole word)
// and a compound rule with a child decomposition.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tac-tics/spectra-lexer/internal/rules"
)

// Defs returns the fixture rule definitions. Tests that need a broken rule
// set copy and mutate these.
func Defs() []rules.Def {
	return []rules.Def{
		// Primitive letter rules.
		{ID: "t", Keys: "T-", Letters: "t", Flags: []string{"reference"}},
		{ID: "k_c", Keys: "K-", Letters: "c", Flags: []string{"reference"}},
		{ID: "e", Keys: "E", Letters: "e", Flags: []string{"reference"}},
		{ID: "a", Keys: "A", Letters: "a", Flags: []string{"reference"}},
		{ID: "o", Keys: "O", Letters: "o", Flags: []string{"reference"}},
		{ID: "f_s", Keys: "-F", Letters: "s", Flags: []string{"rare"}},
		{ID: "t_final", Keys: "-T", Letters: "t"},
		{ID: "s_final", Keys: "-S", Letters: "s"},
		{ID: "g_final", Keys: "-G", Letters: "g"},
		// Star carries no letters; it marks irregular strokes.
		{ID: "star", Keys: "*", Letters: ""},
		// Compound rule decomposed into primitives.
		{
			ID: "test_brief", Keys: "TEFT", Letters: "test", Flags: []string{"brief"},
			Children: []rules.ChildDef{
				{Rule: "t", Start: 0, Length: 1},
				{Rule: "e", Start: 1, Length: 1},
				{Rule: "f_s", Start: 2, Length: 1},
				{Rule: "t_final", Start: 3, Length: 1},
			},
		},
		// Whole-stroke and whole-word rules.
		{ID: "dog", Keys: "TKOG", Letters: "dog", Flags: []string{"stroke"}},
		{ID: "cat", Keys: "KAT", Letters: "cat", Flags: []string{"word"}},
	}
}

// Repo loads the fixture definitions, failing the test on any structural
// error.
func Repo(t *testing.T) *rules.Repository {
	t.Helper()
	repo, err := rules.Load(Defs())
	require.NoError(t, err)
	return repo
}

// Translations returns a small dictionary matching the fixture rules.
func Translations() map[string]string {
	return map[string]string{
		"TEFT":     "test",
		"TKOG":     "dog",
		"KAT":      "cat",
		"KAT/TKOG": "cat dog",
	}
}
