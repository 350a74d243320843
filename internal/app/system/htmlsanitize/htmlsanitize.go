// Package htmlsanitize cleans the HTML produced by the document generators
// before it is returned to the browser-side editor. The LaTeX-to-HTML
// transliteration builds markup from user-entered text, so everything that
// leaves it is treated as untrusted user content.
package htmlsanitize

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	policy     *bluemonday.Policy
	policyOnce sync.Once
)

// getPolicy returns the shared sanitization policy, creating it on first use.
func getPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		policy = bluemonday.UGCPolicy()

		// The generated documents use tables for sign-off and history
		// blocks, plus a few text decorations UGCPolicy drops.
		policy.AllowElements("table", "thead", "tbody", "tfoot", "tr", "th", "td")
		policy.AllowAttrs("colspan", "rowspan").OnElements("th", "td")
		policy.AllowAttrs("class").OnElements("table", "th", "td", "tr", "div", "p", "h1", "h2", "h3")
		policy.AllowElements("u", "s", "sub", "sup", "mark")
	})
	return policy
}

// Sanitize cleans HTML, removing dangerous elements and attributes while
// preserving the formatting the generators emit (headings, lists, tables).
func Sanitize(html string) string {
	if html == "" {
		return ""
	}
	return getPolicy().Sanitize(html)
}

// IsPlainText reports whether content appears to be plain text rather than
// HTML. Valid tags need both < and >, so if either is missing the content
// is treated as plain text.
func IsPlainText(content string) bool {
	if content == "" {
		return true
	}
	return !strings.Contains(content, "<") || !strings.Contains(content, ">")
}
