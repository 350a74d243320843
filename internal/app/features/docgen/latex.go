package docgen

import (
	"fmt"
	"strings"
)

// latexReplacer escapes the characters LaTeX treats specially in text mode.
// Backslash must map to \textbackslash{} (not \\, which is a line break).
var latexReplacer = strings.NewReplacer(
	"\\", `\textbackslash{}`,
	"&", `\&`,
	"%", `\%`,
	"$", `\$`,
	"#", `\#`,
	"_", `\_`,
	"{", `\{`,
	"}", `\}`,
	"~", `\textasciitilde{}`,
	"^", `\textasciicircum{}`,
)

func escapeLatex(s string) string {
	return latexReplacer.Replace(s)
}

// GenerateLaTeX renders the document metadata as a LaTeX article. The
// section order matches the printed process-document template: overview,
// trigger, standards, KPIs, sign-off table, revision history table,
// document control table.
func GenerateLaTeX(doc Document) string {
	var b strings.Builder

	title := doc.Title
	if title == "" && doc.Process != nil {
		title = doc.Process.Name
	}
	if title == "" {
		title = "Process Document"
	}

	b.WriteString("\\documentclass{article}\n")
	b.WriteString("\\usepackage[margin=1in]{geometry}\n")
	b.WriteString("\\begin{document}\n\n")
	fmt.Fprintf(&b, "\\section*{%s}\n\n", escapeLatex(title))

	if doc.Process != nil {
		if doc.Process.Description != "" {
			b.WriteString("\\subsection*{Overview}\n")
			b.WriteString(escapeLatex(doc.Process.Description))
			b.WriteString("\n\n")
		}
		if doc.Process.Owner != "" {
			fmt.Fprintf(&b, "\\textbf{Process Owner:} %s\\\\\n", escapeLatex(doc.Process.Owner))
		}
		if doc.Process.Manager != "" {
			fmt.Fprintf(&b, "\\textbf{Process Manager:} %s\\\\\n", escapeLatex(doc.Process.Manager))
		}
		if doc.Process.Owner != "" || doc.Process.Manager != "" {
			b.WriteString("\n")
		}
	}

	if doc.Trigger != nil && (doc.Trigger.Type != "" || doc.Trigger.Description != "") {
		b.WriteString("\\subsection*{Trigger}\n")
		if doc.Trigger.Type != "" {
			fmt.Fprintf(&b, "\\textbf{Type:} %s\\\\\n", escapeLatex(doc.Trigger.Type))
		}
		if doc.Trigger.Description != "" {
			b.WriteString(escapeLatex(doc.Trigger.Description))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	writeItemList(&b, "Applicable Standards", doc.Standards)
	writeItemList(&b, "Key Performance Indicators", doc.KPIs)

	if doc.SignOff != nil {
		b.WriteString("\\subsection*{Sign-off}\n")
		b.WriteString("\\begin{tabular}{|l|l|l|l|}\n\\hline\n")
		b.WriteString("Responsibility & Name & Date & Signature \\\\\n\\hline\n")
		fmt.Fprintf(&b, "%s & %s & %s & %s \\\\\n\\hline\n",
			escapeLatex(doc.SignOff.Responsibility),
			escapeLatex(doc.SignOff.Name),
			escapeLatex(doc.SignOff.Date),
			escapeLatex(doc.SignOff.Signature))
		b.WriteString("\\end{tabular}\n\n")
	}

	if doc.History != nil {
		b.WriteString("\\subsection*{Revision History}\n")
		b.WriteString("\\begin{tabular}{|l|l|l|l|}\n\\hline\n")
		b.WriteString("Version & Date & Author & Changes \\\\\n\\hline\n")
		fmt.Fprintf(&b, "%s & %s & %s & %s \\\\\n\\hline\n",
			escapeLatex(doc.History.Version),
			escapeLatex(doc.History.Date),
			escapeLatex(doc.History.Author),
			escapeLatex(doc.History.Changes))
		b.WriteString("\\end{tabular}\n\n")
	}

	if doc.Advanced != nil {
		b.WriteString("\\subsection*{Document Control}\n")
		b.WriteString("\\begin{tabular}{|l|l|}\n\\hline\n")
		writeControlRow(&b, "Version", doc.Advanced.Version)
		writeControlRow(&b, "Status", doc.Advanced.Status)
		writeControlRow(&b, "Classification", doc.Advanced.Classification)
		writeControlRow(&b, "Effective Date", doc.Advanced.EffectiveDate)
		writeControlRow(&b, "Review Date", doc.Advanced.ReviewDate)
		writeControlRow(&b, "Last Modified By", doc.Advanced.LastModifiedBy)
		b.WriteString("\\end{tabular}\n\n")
	}

	b.WriteString("\\end{document}\n")
	return b.String()
}

func writeItemList(b *strings.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\\subsection*{%s}\n\\begin{itemize}\n", heading)
	for _, item := range items {
		fmt.Fprintf(b, "\\item %s\n", escapeLatex(item))
	}
	b.WriteString("\\end{itemize}\n\n")
}

func writeControlRow(b *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(b, "%s & %s \\\\\n\\hline\n", label, escapeLatex(value))
}
