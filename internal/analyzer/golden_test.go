package analyzer

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"
)

// Golden snapshots pin the exact serialized shape of decompositions, the
// contract downstream renderers and the index consume.
//
// Regenerate with: go test ./internal/analyzer -update
func TestQuery_GoldenSnapshots(t *testing.T) {
	a := fixtureAnalyzer(t)
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	testCases := []struct {
		name    string
		keys    string
		word    string
		allKeys bool
	}{
		{"complete_brief", "TEFT", "test", false},
		{"fallback", "WR", "zzz", true},
		{"multi_stroke", "KAT/TKOG", "cat dog", true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			d := a.Query(tc.keys, tc.word, tc.allKeys)
			data, err := json.MarshalIndent(d, "", "  ")
			require.NoError(t, err)
			g.Assert(t, tc.name, data)
		})
	}
}
