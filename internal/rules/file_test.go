package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const goodYAML = `
rules:
  - id: t
    keys: T-
    letters: t
    flags: [reference]
  - id: e
    keys: E
    letters: e
  - id: f_s
    keys: -F
    letters: s
  - id: t_final
    keys: -T
    letters: t
  - id: test_brief
    keys: TEFT
    letters: test
    flags: [brief]
    children:
      - {rule: t, start: 0, length: 1}
      - {rule: e, start: 1, length: 1}
      - {rule: f_s, start: 2, length: 1}
      - {rule: t_final, start: 3, length: 1}
`

func TestLoadBytes_YAML(t *testing.T) {
	repo, err := LoadBytes([]byte(goodYAML))
	require.NoError(t, err)
	assert.Equal(t, 5, repo.Len())
}

func TestLoadBytes_JSONIsAcceptedToo(t *testing.T) {
	doc := `{"rules": [{"id": "t", "keys": "T-", "letters": "t"}]}`
	repo, err := LoadBytes([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, 1, repo.Len())
}

func TestLoadBytes_SchemaViolations(t *testing.T) {
	testCases := []struct {
		name string
		doc  string
	}{
		{"missing id", `rules: [{keys: T-, letters: t}]`},
		{"empty id", `rules: [{id: "", keys: T-, letters: t}]`},
		{"negative child start", `
rules:
  - id: t
    keys: T-
    letters: t
  - id: p
    keys: TP
    letters: t
    children: [{rule: t, start: -1, length: 1}]`},
		{"wrong type for keys", `rules: [{id: t, keys: 42, letters: t}]`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadBytes([]byte(tc.doc))
			var structural *StructuralError
			require.ErrorAs(t, err, &structural)
			require.NotEmpty(t, structural.Errors)
			assert.Equal(t, ErrSchema, structural.Errors[0].Code)
		})
	}
}

func TestLoadBytes_Undecodable(t *testing.T) {
	_, err := LoadBytes([]byte("rules: [unclosed"))
	require.Error(t, err)
	assert.False(t, IsStructural(err), "decode failures are not structural errors")
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(goodYAML), 0o644))

	repo, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 5, repo.Len())

	_, err = LoadFile(filepath.Join(dir, "absent.yaml"))
	assert.Error(t, err)
}
