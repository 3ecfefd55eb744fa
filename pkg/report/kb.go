// pkg/report/kb.go

package report

import (
	"encoding/json"
	"os"
	"sort"
	"strings"
)

// KnowledgeBase holds keyword-to-suggestion entries consulted when
// rendering the HTML report. It is loaded once per run and read-only.
type KnowledgeBase struct {
	entries []kbEntry
}

type kbEntry struct {
	keyword    string
	suggestion string
}

// LoadKnowledgeBase reads a JSON resource mapping category to
// {keyword: suggestion}. A missing or malformed file degrades to an empty
// knowledge base; suggestions are an enrichment, never a reason to abort.
func LoadKnowledgeBase(path string) *KnowledgeBase {
	kb := &KnowledgeBase{}

	data, err := os.ReadFile(path)
	if err != nil {
		return kb
	}

	var raw map[string]map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return kb
	}

	for _, keywords := range raw {
		for keyword, suggestion := range keywords {
			if keyword == "" {
				continue
			}
			kb.entries = append(kb.entries, kbEntry{
				keyword:    keyword,
				suggestion: suggestion,
			})
		}
	}

	// Longest keyword first so the most specific entry wins when several
	// keywords occur in the same details text; ties break lexically to
	// keep lookups deterministic across runs.
	sort.Slice(kb.entries, func(i, j int) bool {
		a, b := kb.entries[i].keyword, kb.entries[j].keyword
		if len(a) != len(b) {
			return len(a) > len(b)
		}
		return a < b
	})

	return kb
}

// Len returns the number of loaded entries.
func (kb *KnowledgeBase) Len() int {
	return len(kb.entries)
}

// Suggest returns the suggestion for the first keyword that occurs in
// details, matched case-insensitively as a substring. It returns the empty
// string when nothing matches.
func (kb *KnowledgeBase) Suggest(details string) string {
	lower := strings.ToLower(details)
	for _, e := range kb.entries {
		if strings.Contains(lower, strings.ToLower(e.keyword)) {
			return e.suggestion
		}
	}
	return ""
}
