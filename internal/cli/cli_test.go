package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixtureRules = `
rules:
  - id: t
    keys: T-
    letters: t
    flags: [reference]
  - id: e
    keys: E
    letters: e
    flags: [reference]
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

const brokenRules = `
rules:
  - id: t
    keys: T-
    letters: t
    flags: [sparkly]
  - id: t
    keys: "!!!"
    letters: t
`

// runCommand executes the CLI with args and returns stdout and the error.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestValidate_ValidFile(t *testing.T) {
	path := writeFixture(t, "rules.yaml", fixtureRules)
	out, err := runCommand(t, "validate", path)
	require.NoError(t, err)
	assert.Contains(t, out, "5 rules")
	assert.Equal(t, ExitSuccess, GetExitCode(err))
}

func TestValidate_BrokenFile(t *testing.T) {
	path := writeFixture(t, "rules.yaml", brokenRules)
	out, err := runCommand(t, "validate", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "E204", "illegal flag is reported")
	assert.Contains(t, out, "E202", "duplicate id is reported")
}

func TestValidate_MissingFile(t *testing.T) {
	_, err := runCommand(t, "validate", filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestAnalyze_TextOutput(t *testing.T) {
	path := writeFixture(t, "rules.yaml", fixtureRules)
	out, err := runCommand(t, "analyze", path, "TEFT", "test")
	require.NoError(t, err)
	assert.Contains(t, out, "complete")
	assert.Contains(t, out, "test_brief")
}

func TestAnalyze_JSONOutput(t *testing.T) {
	path := writeFixture(t, "rules.yaml", fixtureRules)
	out, err := runCommand(t, "analyze", path, "TEFT", "test", "--format", "json")
	require.NoError(t, err)

	var d struct {
		Keys string `json:"keys"`
		Word string `json:"word"`
		Map  []struct {
			Rule string `json:"rule"`
		} `json:"map"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &d))
	assert.Equal(t, "TEft", d.Keys)
	assert.Equal(t, "test", d.Word)
	require.Len(t, d.Map, 1)
	assert.Equal(t, "test_brief", d.Map[0].Rule)
}

func TestAnalyze_FallbackOutput(t *testing.T) {
	path := writeFixture(t, "rules.yaml", fixtureRules)
	out, err := runCommand(t, "analyze", path, "WR", "zzz", "--all-keys")
	require.NoError(t, err, "no decomposition is degradation, not an error")
	assert.Contains(t, out, "unmatched")
}

func TestBatch_WithIndex(t *testing.T) {
	rulesPath := writeFixture(t, "rules.yaml", fixtureRules)
	dictPath := writeFixture(t, "dict.yaml", "TEFT: test\n")
	dbPath := filepath.Join(t.TempDir(), "examples.db")

	out, err := runCommand(t, "batch", rulesPath, dictPath, "--db", dbPath, "--workers", "2", "--format", "json")
	require.NoError(t, err)

	var summary struct {
		Total    int    `json:"total"`
		Complete int    `json:"complete"`
		RunID    string `json:"run_id"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, 1, summary.Total)
	assert.Equal(t, 1, summary.Complete)
	require.NotEmpty(t, summary.RunID)

	out, err = runCommand(t, "examples", dbPath, "test_brief")
	require.NoError(t, err)
	assert.Contains(t, out, "TEft")
	assert.Contains(t, out, "test")
}

func TestExamples_EmptyIndex(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "examples.db")
	// Opening creates the database; an unknown rule reports no examples.
	out, err := runCommand(t, "batch",
		writeFixture(t, "rules.yaml", fixtureRules),
		writeFixture(t, "dict.yaml", "TEFT: test\n"),
		"--db", dbPath)
	require.NoError(t, err)
	assert.NotEmpty(t, out)

	out, err = runCommand(t, "examples", dbPath, "ghost")
	require.NoError(t, err)
	assert.Contains(t, out, "no examples")
}

func TestRoot_RejectsBadFormat(t *testing.T) {
	_, err := runCommand(t, "validate", "whatever.yaml", "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}
