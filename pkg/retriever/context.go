package retriever

import (
	"fmt"
	"strings"
)

const sourceSeparator = "\n\n---\n\n"

// AssembleContext renders ranked chunks as numbered source blocks:
//
//	Source 1 (https://example.com/a):
//	chunk text
//
// Blocks are separated by a horizontal rule. No matches yield "".
func AssembleContext(matches []Scored) string {
	blocks := make([]string, 0, len(matches))
	for i, m := range matches {
		blocks = append(blocks, fmt.Sprintf("Source %d (%s):\n%s", i+1, m.Record.URL, m.Record.Content))
	}
	return strings.Join(blocks, sourceSeparator)
}

// Sources lists the distinct source URLs of matches in rank order.
func Sources(matches []Scored) []string {
	var sources []string
	seen := make(map[string]bool)
	for _, m := range matches {
		if !seen[m.Record.URL] {
			sources = append(sources, m.Record.URL)
			seen[m.Record.URL] = true
		}
	}
	return sources
}
