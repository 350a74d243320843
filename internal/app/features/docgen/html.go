package docgen

import (
	"regexp"
	"strings"

	"github.com/dalemusser/procdoc/internal/app/system/htmlsanitize"
)

// LaTeX-to-HTML is an approximation, not a TeX engine: the browser editor
// only needs something readable that round-trips the known document
// sections. The conversion is an ordered list of pattern substitutions over
// the subset of LaTeX the generator emits; constructs outside that subset
// pass through as text and are neutralized by the sanitizer.

// escape placeholders. Escaped LaTeX specials are parked on control bytes
// before the structural passes so an \& inside a cell is never mistaken for
// a column separator, then restored as HTML entities at the end.
var protectReplacer = strings.NewReplacer(
	`\textbackslash{}`, "\x10",
	`\textasciitilde{}`, "\x11",
	`\textasciicircum{}`, "\x12",
	`\&`, "\x01",
	`\%`, "\x02",
	`\$`, "\x03",
	`\#`, "\x04",
	`\_`, "\x05",
	`\{`, "\x06",
	`\}`, "\x07",
)

var restoreReplacer = strings.NewReplacer(
	"\x10", `\`,
	"\x11", "~",
	"\x12", "^",
	"\x01", "&amp;",
	"\x02", "%",
	"\x03", "$",
	"\x04", "#",
	"\x05", "_",
	"\x06", "{",
	"\x07", "}",
)

// htmlSubs are applied in order; earlier patterns must not produce text a
// later pattern would re-match.
var htmlSubs = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(`(?m)^\\documentclass\{[^}]*\}\s*$`), ""},
	{regexp.MustCompile(`(?m)^\\usepackage(\[[^\]]*\])?\{[^}]*\}\s*$`), ""},
	{regexp.MustCompile(`(?m)^\\(begin|end)\{document\}\s*$`), ""},
	{regexp.MustCompile(`\\section\*?\{([^}]*)\}`), "<h2>$1</h2>"},
	{regexp.MustCompile(`\\subsection\*?\{([^}]*)\}`), "<h3>$1</h3>"},
	{regexp.MustCompile(`\\textbf\{([^}]*)\}`), "<b>$1</b>"},
	{regexp.MustCompile(`\\textit\{([^}]*)\}`), "<i>$1</i>"},
	{regexp.MustCompile(`\\emph\{([^}]*)\}`), "<i>$1</i>"},
	{regexp.MustCompile(`\\underline\{([^}]*)\}`), "<u>$1</u>"},
	{regexp.MustCompile(`\\begin\{itemize\}`), "<ul>"},
	{regexp.MustCompile(`\\end\{itemize\}`), "</ul>"},
	{regexp.MustCompile(`(?m)^\\item\s+(.*)$`), "<li>$1</li>"},
	{regexp.MustCompile(`\\begin\{tabular\}\{[^}]*\}`), "<table>"},
	{regexp.MustCompile(`\\end\{tabular\}`), "</table>"},
	{regexp.MustCompile(`(?m)^\\hline\s*$`), ""},
}

var tableRowRe = regexp.MustCompile(`(?m)^(.+?)\s*\\\\$`)

// LaTeXToHTML converts generated (and possibly hand-edited) LaTeX source
// into sanitized HTML for the in-browser editor.
func LaTeXToHTML(src string) string {
	out := protectReplacer.Replace(src)

	for _, sub := range htmlSubs {
		out = sub.re.ReplaceAllString(out, sub.repl)
	}

	out = convertTableRows(out)

	// Remaining forced line breaks outside tables.
	out = strings.ReplaceAll(out, `\\`, "<br>")

	out = restoreReplacer.Replace(out)
	return htmlsanitize.Sanitize(out)
}

// convertTableRows rewrites "a & b & c \\" lines between <table> and
// </table> markers into <tr><td> rows. Lines outside tables keep their
// trailing \\ for the <br> pass.
func convertTableRows(src string) string {
	lines := strings.Split(src, "\n")
	inTable := false
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.Contains(trimmed, "<table>"):
			inTable = true
		case strings.Contains(trimmed, "</table>"):
			inTable = false
		case inTable:
			m := tableRowRe.FindStringSubmatch(trimmed)
			if m == nil {
				continue
			}
			cells := strings.Split(m[1], "&")
			var row strings.Builder
			row.WriteString("<tr>")
			for _, cell := range cells {
				row.WriteString("<td>")
				row.WriteString(strings.TrimSpace(cell))
				row.WriteString("</td>")
			}
			row.WriteString("</tr>")
			lines[i] = row.String()
		}
	}
	return strings.Join(lines, "\n")
}
