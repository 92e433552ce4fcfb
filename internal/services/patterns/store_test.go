package patterns

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/legalaid/internal/models"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Formats(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name:    "json",
			file:    "rules.json",
			content: `[{"pattern": "bail", "response": "Bail answer"}, {"pattern": "fir", "response": "FIR answer"}]`,
		},
		{
			name:    "yaml",
			file:    "rules.yaml",
			content: "- pattern: bail\n  response: Bail answer\n- pattern: fir\n  response: FIR answer\n",
		},
		{
			name:    "toml",
			file:    "rules.toml",
			content: "[[patterns]]\npattern = \"bail\"\nresponse = \"Bail answer\"\n\n[[patterns]]\npattern = \"fir\"\nresponse = \"FIR answer\"\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, tt.file, tt.content)
			rules := Load(path, arbor.NewLogger())
			require.Len(t, rules, 2)
			assert.Equal(t, models.PatternRule{Pattern: "bail", Response: "Bail answer"}, rules[0])
			assert.Equal(t, "fir", rules[1].Pattern)
		})
	}
}

func TestLoad_MissingAndMalformed(t *testing.T) {
	dir := t.TempDir()
	logger := arbor.NewLogger()

	assert.Empty(t, Load(filepath.Join(dir, "missing.json"), logger))
	assert.Empty(t, Load(writeFile(t, dir, "bad.json", `{not json`), logger))
	assert.Empty(t, Load(writeFile(t, dir, "object.json", `{"pattern": "bail"}`), logger))
}

func TestLoad_SkipsIncompleteEntries(t *testing.T) {
	path := writeFile(t, t.TempDir(), "rules.json", `[
		{"pattern": "bail"},
		{"response": "orphan"},
		"not an object",
		{"pattern": "  ", "response": "blank pattern"},
		{"pattern": 42, "response": "numeric"},
		{"pattern": "divorce", "response": "Divorce answer"}
	]`)

	rules := Load(path, arbor.NewLogger())
	require.Len(t, rules, 1)
	assert.Equal(t, "divorce", rules[0].Pattern)
}

func TestStore_MatchFirstInOrder(t *testing.T) {
	store := NewStoreFromRules([]models.PatternRule{
		{Pattern: "  BAIL ", Response: "first"},
		{Pattern: "bail", Response: "second"},
		{Pattern: "anticipatory", Response: "third"},
	}, arbor.NewLogger())

	rule, ok := store.Match("what is anticipatory bail")
	require.True(t, ok)
	assert.Equal(t, "first", rule.Response)

	_, ok = store.Match("property dispute")
	assert.False(t, ok)
	assert.Equal(t, 3, store.Len())
}

func TestStore_BlankPatternNeverMatches(t *testing.T) {
	// a blank pattern would be a substring of every query and shadow all later rules
	store := NewStoreFromRules([]models.PatternRule{
		{Pattern: "   ", Response: "catch-all"},
		{Pattern: "", Response: "empty"},
		{Pattern: "bail", Response: "bail answer"},
	}, arbor.NewLogger())

	rule, ok := store.Match("how do i get bail")
	require.True(t, ok)
	assert.Equal(t, "bail answer", rule.Response)

	_, ok = store.Match("property dispute")
	assert.False(t, ok)

	path := writeFile(t, t.TempDir(), "rules.yaml", "- pattern: \"\"\n  response: catch-all\n- pattern: bail\n  response: \"  \"\n")
	assert.Empty(t, Load(path, arbor.NewLogger()), "blank fields are dropped at load")
}

func TestStore_Reload(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "rules.json", `[{"pattern": "bail", "response": "v1"}]`)
	store := NewStore(path, arbor.NewLogger())
	require.Equal(t, 1, store.Len())

	writeFile(t, dir, "rules.json", `[{"pattern": "bail", "response": "v2"}, {"pattern": "fir", "response": "fir"}]`)
	require.NoError(t, store.Reload())
	assert.Equal(t, 2, store.Len())

	writeFile(t, dir, "rules.json", `[broken`)
	assert.Error(t, store.Reload())
	assert.Equal(t, 2, store.Len(), "corrupt file keeps previous rules")

	require.NoError(t, os.Remove(path))
	require.NoError(t, store.Reload())
	assert.Zero(t, store.Len(), "removed file empties the set")
}

func TestStore_Watch(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "rules.json", `[]`)
	store := NewStore(path, arbor.NewLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, store.Watch(ctx))

	writeFile(t, dir, "rules.json", `[{"pattern": "bail", "response": "Bail answer"}]`)

	assert.Eventually(t, func() bool {
		return store.Len() == 1
	}, 5*time.Second, 20*time.Millisecond)
}
