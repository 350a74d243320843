package docgen

import (
	"regexp"
	"strings"

	"github.com/dalemusser/procdoc/internal/domain/models"
)

// ParseLaTeX is the best-effort reverse of GenerateLaTeX: it recovers the
// structured metadata from LaTeX source the user may have edited by hand.
// Only the known sections are extracted; anything else is ignored, and a
// section that no longer parses simply yields an empty field.

var (
	titleRe      = regexp.MustCompile(`\\section\*?\{([^}]*)\}`)
	subsectionRe = regexp.MustCompile(`\\subsection\*?\{([^}]*)\}`)
	boldFieldRe  = regexp.MustCompile(`\\textbf\{([^}]*):\}\s*([^\\\n]*)`)
	itemRe       = regexp.MustCompile(`(?m)^\\item\s+(.*)$`)
	tableRowRe2  = regexp.MustCompile(`(?m)^(.+?)\s*\\\\$`)
)

var unescapeReplacer = strings.NewReplacer(
	`\textbackslash{}`, "\\",
	`\textasciitilde{}`, "~",
	`\textasciicircum{}`, "^",
	`\&`, "&",
	`\%`, "%",
	`\$`, "$",
	`\#`, "#",
	`\_`, "_",
	`\{`, "{",
	`\}`, "}",
)

func unescapeLatex(s string) string {
	return strings.TrimSpace(unescapeReplacer.Replace(s))
}

// ParseLaTeX extracts document metadata from LaTeX source.
func ParseLaTeX(src string) Document {
	var doc Document

	if m := titleRe.FindStringSubmatch(src); m != nil {
		doc.Title = unescapeLatex(m[1])
	}

	sections := splitSections(src)

	if body, ok := sections["Overview"]; ok {
		doc.Process = &models.ProcessDetails{
			Name:        doc.Title,
			Description: unescapeLatex(stripCommands(body)),
		}
	}

	// Owner/manager are bold label lines that live outside any subsection
	// in generated documents, so scan the whole source.
	for _, m := range boldFieldRe.FindAllStringSubmatch(src, -1) {
		label, value := m[1], unescapeLatex(m[2])
		switch label {
		case "Process Owner":
			ensureProcess(&doc).Owner = value
		case "Process Manager":
			ensureProcess(&doc).Manager = value
		}
	}

	if body, ok := sections["Trigger"]; ok {
		trig := &models.TriggerBlock{}
		rest := body
		for _, m := range boldFieldRe.FindAllStringSubmatch(body, -1) {
			if m[1] == "Type" {
				trig.Type = unescapeLatex(m[2])
				rest = strings.Replace(rest, m[0], "", 1)
			}
		}
		trig.Description = unescapeLatex(stripCommands(rest))
		doc.Trigger = trig
	}

	if body, ok := sections["Applicable Standards"]; ok {
		doc.Standards = parseItems(body)
	}
	if body, ok := sections["Key Performance Indicators"]; ok {
		doc.KPIs = parseItems(body)
	}

	if body, ok := sections["Sign-off"]; ok {
		if cells := parseDataRow(body, 4); cells != nil {
			doc.SignOff = &models.SignOffBlock{
				Responsibility: cells[0],
				Name:           cells[1],
				Date:           cells[2],
				Signature:      cells[3],
			}
		}
	}

	if body, ok := sections["Revision History"]; ok {
		if cells := parseDataRow(body, 4); cells != nil {
			doc.History = &models.HistoryBlock{
				Version: cells[0],
				Date:    cells[1],
				Author:  cells[2],
				Changes: cells[3],
			}
		}
	}

	if body, ok := sections["Document Control"]; ok {
		adv := &models.AdvancedDetails{}
		for _, row := range parseAllRows(body, 2) {
			switch row[0] {
			case "Version":
				adv.Version = row[1]
			case "Status":
				adv.Status = row[1]
			case "Classification":
				adv.Classification = row[1]
			case "Effective Date":
				adv.EffectiveDate = row[1]
			case "Review Date":
				adv.ReviewDate = row[1]
			case "Last Modified By":
				adv.LastModifiedBy = row[1]
			}
		}
		doc.Advanced = adv
	}

	return doc
}

// splitSections maps each \subsection heading to the source between it and
// the next heading (or end of document).
func splitSections(src string) map[string]string {
	out := make(map[string]string)
	locs := subsectionRe.FindAllStringSubmatchIndex(src, -1)
	for i, loc := range locs {
		name := unescapeLatex(src[loc[2]:loc[3]])
		end := len(src)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		out[name] = src[loc[1]:end]
	}
	return out
}

// parseItems returns the unescaped \item entries of a section body.
func parseItems(body string) []string {
	var items []string
	for _, m := range itemRe.FindAllStringSubmatch(body, -1) {
		items = append(items, unescapeLatex(m[1]))
	}
	return items
}

// parseDataRow returns the first tabular row with the expected cell count
// that is not the header row (headers contain no escapes and are written by
// the generator, so the first row is the header and the second is data).
func parseDataRow(body string, cells int) []string {
	rows := parseAllRows(body, cells)
	if len(rows) < 2 {
		return nil
	}
	return rows[1]
}

func parseAllRows(body string, cells int) [][]string {
	var rows [][]string
	for _, m := range tableRowRe2.FindAllStringSubmatch(body, -1) {
		line := m[1]
		if strings.HasPrefix(strings.TrimSpace(line), `\`) {
			continue // \hline, \begin, \end
		}
		parts := splitCells(line)
		if len(parts) != cells {
			continue
		}
		row := make([]string, len(parts))
		for i, p := range parts {
			row[i] = unescapeLatex(p)
		}
		rows = append(rows, row)
	}
	return rows
}

// splitCells splits a tabular row on unescaped & separators.
func splitCells(line string) []string {
	protected := strings.ReplaceAll(line, `\&`, "\x01")
	parts := strings.Split(protected, "&")
	for i := range parts {
		parts[i] = strings.ReplaceAll(parts[i], "\x01", `\&`)
	}
	return parts
}

// stripCommands removes any remaining LaTeX commands from free text.
var commandRe = regexp.MustCompile(`\\[a-zA-Z]+\*?(\[[^\]]*\])?(\{[^}]*\})?`)

func stripCommands(s string) string {
	s = commandRe.ReplaceAllString(s, "")
	return strings.TrimSpace(strings.ReplaceAll(s, `\\`, " "))
}

func ensureProcess(doc *Document) *models.ProcessDetails {
	if doc.Process == nil {
		doc.Process = &models.ProcessDetails{Name: doc.Title}
	}
	return doc.Process
}
