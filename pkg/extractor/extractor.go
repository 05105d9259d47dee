// Package extractor turns raw page markup into normalized plain text.
//
// The extractor is tag-blind: it never builds a document tree and keeps
// navigation chrome alongside article text.
package extractor

import (
	"html"
	"regexp"
	"strings"
)

var (
	scriptRe     = regexp.MustCompile(`(?is)<script\b.*?</script\s*>`)
	styleRe      = regexp.MustCompile(`(?is)<style\b.*?</style\s*>`)
	tagRe        = regexp.MustCompile(`<[^>]+>`)
	whitespaceRe = regexp.MustCompile(`[\s\v\p{Zs}\x{0085}\x{2028}\x{2029}\x{FEFF}]+`)
)

// Extract removes script and style blocks with their content, replaces every
// remaining tag with a space, decodes entities and collapses whitespace.
// Unicode spaces count as whitespace, so &nbsp; collapses like a plain space.
func Extract(markup string) string {
	text := scriptRe.ReplaceAllString(markup, "")
	text = styleRe.ReplaceAllString(text, "")
	text = tagRe.ReplaceAllString(text, " ")
	text = html.UnescapeString(text)
	text = whitespaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
