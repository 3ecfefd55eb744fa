// pkg/report/kb_test.go

package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeKB(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kb.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadKnowledgeBase(t *testing.T) {
	kb := LoadKnowledgeBase(writeKB(t, `{
		"InfiniBand": {
			"no connection detected": "Check cabling and switch port.",
			"Port is down": "Verify the link with ibstat."
		},
		"CPU": {
			"exceeds the": "Identify heavy processes with top."
		}
	}`))

	assert.Equal(t, 3, kb.Len())
	assert.Equal(t, "Check cabling and switch port.",
		kb.Suggest("Port active but no connection detected (verified with iblinkinfo)."))
	assert.Equal(t, "Identify heavy processes with top.",
		kb.Suggest("Usage of 91.2% exceeds the 85.0% limit."))
	assert.Empty(t, kb.Suggest("all good here"))
}

func TestSuggestCaseInsensitive(t *testing.T) {
	kb := LoadKnowledgeBase(writeKB(t, `{"c": {"SegFault": "Inspect dmesg for the faulting binary."}}`))

	assert.Equal(t, "Inspect dmesg for the faulting binary.",
		kb.Suggest("kernel: segfault at 0 ip 00007f"))
}

func TestSuggestLongestKeywordWins(t *testing.T) {
	kb := LoadKnowledgeBase(writeKB(t, `{"c": {
		"error": "generic",
		"symbol error": "specific"
	}}`))

	assert.Equal(t, "specific", kb.Suggest("Counters: Symbol Error: 5."))
	assert.Equal(t, "generic", kb.Suggest("an error happened"))
}

func TestLoadKnowledgeBaseDegradesToEmpty(t *testing.T) {
	assert.Equal(t, 0, LoadKnowledgeBase(filepath.Join(t.TempDir(), "missing.json")).Len())
	assert.Equal(t, 0, LoadKnowledgeBase(writeKB(t, "{not json")).Len())
}
