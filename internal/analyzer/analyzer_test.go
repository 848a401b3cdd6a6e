package analyzer

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tac-tics/spectra-lexer/internal/lexer"
	"github.com/tac-tics/spectra-lexer/internal/testutil"
)

func fixtureAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	return New(testutil.Repo(t))
}

func TestQuery_CleansesRawNotation(t *testing.T) {
	a := fixtureAnalyzer(t)

	// Lowercase, stray separators, and unknown characters are tolerated.
	d := a.Query("//teft?", "test", false)
	assert.True(t, d.Complete())
	assert.Equal(t, "TEft", d.Keys.String())
}

func TestQuery_MalformedNotationDegrades(t *testing.T) {
	a := fixtureAnalyzer(t)
	d := a.Query("!!!", "test", false)
	assert.True(t, d.Fallback(), "unusable notation yields the fallback, not an error")
}

func TestQueryCross_PicksBestPair(t *testing.T) {
	a := fixtureAnalyzer(t)

	// TEFT explains all four letters of "test"; TE*S at most three. The
	// cross product must settle on the TEFT pairing.
	d := a.QueryCross([]string{"TEFT", "TE*S"}, []string{"test"})
	require.True(t, d.Complete())
	assert.Equal(t, "TEft", d.Keys.String())
	assert.Equal(t, "test", d.Word)
	assert.Equal(t, 4, d.Map.Letters())
}

func TestQueryCross_OrderIndependentChoice(t *testing.T) {
	a := fixtureAnalyzer(t)
	forward := a.QueryCross([]string{"TEFT", "TE*S"}, []string{"test"})
	reversed := a.QueryCross([]string{"TE*S", "TEFT"}, []string{"test"})
	assert.Equal(t, forward.Keys, reversed.Keys, "a strictly better pairing wins from either side")
}

func TestQueryCross_NoPairs(t *testing.T) {
	a := fixtureAnalyzer(t)
	d := a.QueryCross(nil, nil)
	assert.True(t, d.Fallback())

	// One-sided input still seeds the fallback with what was given.
	d = a.QueryCross([]string{"TEFT"}, nil)
	require.True(t, d.Fallback())
	assert.Equal(t, "TEft", d.Keys.String())

	d = a.QueryCross(nil, []string{"test"})
	require.True(t, d.Fallback())
	assert.Equal(t, "test", d.Word)
}

func TestQueryBulk_EmptySet(t *testing.T) {
	a := fixtureAnalyzer(t)
	results := a.QueryBulk(context.Background(), nil)
	require.NotNil(t, results)
	assert.Empty(t, results)
}

func TestQueryBulk_AnalyzesEveryPair(t *testing.T) {
	a := fixtureAnalyzer(t)
	var pairs []Pair
	for k, w := range testutil.Translations() {
		pairs = append(pairs, Pair{Keys: k, Word: w})
	}

	results := a.QueryBulk(context.Background(), pairs, WithWorkers(4))
	require.Len(t, results, len(pairs))

	// Bulk forces all-keys matching: anything kept is complete or the
	// fallback. The fixture translations all decompose fully.
	words := make([]string, len(results))
	for i, d := range results {
		assert.True(t, d.Complete(), "pair %s/%s", d.Keys, d.Word)
		words[i] = d.Word
	}
	sort.Strings(words)
	assert.Equal(t, []string{"cat", "cat dog", "dog", "test"}, words)
}

func TestQueryBulk_Deterministic(t *testing.T) {
	a := fixtureAnalyzer(t)
	var pairs []Pair
	for k, w := range testutil.Translations() {
		pairs = append(pairs, Pair{Keys: k, Word: w})
	}
	byWord := func(ds []lexer.Decomposition) map[string]lexer.Decomposition {
		m := make(map[string]lexer.Decomposition, len(ds))
		for _, d := range ds {
			m[d.Word] = d
		}
		return m
	}
	first := byWord(a.QueryBulk(context.Background(), pairs))
	second := byWord(a.QueryBulk(context.Background(), pairs))
	assert.Equal(t, first, second, "parallel order may vary but each result must not")
}

func TestQueryBulk_Filters(t *testing.T) {
	a := fixtureAnalyzer(t)
	pairs := []Pair{
		{Keys: "TEFT", Word: "test"},
		{Keys: "TKOG", Word: "dog"},
		{Keys: "WR", Word: "zzz"}, // cannot decompose
	}

	// FilterIn skips before computing; FilterOut discards after.
	results := a.QueryBulk(context.Background(), pairs,
		WithWorkers(1),
		WithFilterIn(func(p Pair) bool { return p.Word != "dog" }),
		WithFilterOut(func(d lexer.Decomposition) bool { return !d.Fallback() }),
	)
	require.Len(t, results, 1)
	assert.Equal(t, "test", results[0].Word)
}

func TestQueryBulk_CanceledContext(t *testing.T) {
	a := fixtureAnalyzer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pairs := []Pair{{Keys: "TEFT", Word: "test"}}
	results := a.QueryBulk(ctx, pairs)
	assert.LessOrEqual(t, len(results), len(pairs), "cancellation only stops feeding new pairs")
}

func TestLoadPairs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dict.yaml")
	doc := "TEFT: test\nTKOG: dog\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	pairs, err := LoadPairs(path)
	require.NoError(t, err)
	require.Len(t, pairs, 2)
	assert.True(t, sort.SliceIsSorted(pairs, func(i, j int) bool { return pairs[i].Keys < pairs[j].Keys }))

	_, err = LoadPairs(filepath.Join(dir, "absent.yaml"))
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("- just\n- a\n- list\n"), 0o644))
	_, err = LoadPairs(path)
	assert.Error(t, err, "translations must be a mapping")
}
