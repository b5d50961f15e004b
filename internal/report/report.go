// Package report renders comparison results as a human-readable
// Markdown report and builds the prompt for the optional LLM analysis.
// Generation is pure: identical diff blocks and statistics always yield
// byte-identical output, with no clock, locale, or environment input,
// so a stored report can be regenerated offline and used as a cache key.
package report

import (
	"fmt"
	"strings"

	"github.com/RobinCoderZhao/pdfcompare/internal/compare"
	"github.com/RobinCoderZhao/pdfcompare/pkg/textmatch"
)

const (
	maxListedBlocks  = 10
	maxPreviewChars  = 200
	maxModifiedChars = 150
)

// severity descriptions keyed by the derived rating.
var severityText = map[compare.Severity]string{
	compare.SeverityHigh: "**High** — The documents differ substantially. This likely represents a " +
		"major revision affecting the overall meaning and structure of the document.",
	compare.SeverityMedium: "**Medium** — Notable differences exist. Specific sections have been " +
		"altered which may affect interpretation of those sections.",
	compare.SeverityLow: "**Low** — Minor differences detected. The documents are largely the same " +
		"with small edits.",
}

// Generate builds the Markdown comparison report: summary statistics,
// the severity assessment, categorized change listings with page
// citations, and a consequence section.
func Generate(blocks []compare.DiffBlock, stats compare.Statistics, nameA, nameB string) string {
	var sb strings.Builder

	sb.WriteString("# PDF Comparison Report\n\n")
	fmt.Fprintf(&sb, "**Document A:** %s\n", nameA)
	fmt.Fprintf(&sb, "**Document B:** %s\n\n", nameB)
	sb.WriteString("---\n\n## Summary Statistics\n\n")
	sb.WriteString("| Metric | Count |\n|--------|-------|\n")
	fmt.Fprintf(&sb, "| Unchanged lines | %d |\n", stats.Unchanged)
	fmt.Fprintf(&sb, "| Inserted lines | %d |\n", stats.Added)
	fmt.Fprintf(&sb, "| Deleted lines | %d |\n", stats.Removed)
	fmt.Fprintf(&sb, "| Modified lines | %d |\n", stats.Modified)
	fmt.Fprintf(&sb, "| **Total changed** | **%d** |\n", stats.Changed())
	fmt.Fprintf(&sb, "| Change percentage | %.1f%% |\n\n", stats.ChangeRatio*100)
	sb.WriteString("---\n\n## Impact Analysis\n\n")

	if stats.Changed() == 0 {
		sb.WriteString("The two documents are **identical** in textual content. No differences found.\n")
		return sb.String()
	}

	severity := stats.Severity()
	fmt.Fprintf(&sb, "**Overall severity:** %s\n\n", severityText[severity])

	var additions, deletions, modifications []compare.DiffBlock
	for _, b := range blocks {
		switch b.Tag {
		case textmatch.Insert:
			additions = append(additions, b)
		case textmatch.Delete:
			deletions = append(deletions, b)
		case textmatch.Replace:
			modifications = append(modifications, b)
		}
	}

	writeAdditions(&sb, additions)
	writeDeletions(&sb, deletions)
	writeModifications(&sb, modifications)
	writeConsequences(&sb, severity, len(additions) > 0, len(deletions) > 0, len(modifications) > 0)

	sb.WriteString("\n---\n*Report generated by PDFCompare.*\n")
	return sb.String()
}

func writeAdditions(sb *strings.Builder, blocks []compare.DiffBlock) {
	if len(blocks) == 0 {
		return
	}
	fmt.Fprintf(sb, "### New Content (%d section(s) added)\n\n", len(blocks))
	sb.WriteString("New content was introduced in Document B that does not appear in Document A. " +
		"This may represent additional clauses, information, or context that changes " +
		"the scope or meaning of the document.\n\n")
	for i, b := range blocks {
		if i == maxListedBlocks {
			fmt.Fprintf(sb, "   *(and %d more…)*\n", len(blocks)-maxListedBlocks)
			break
		}
		preview := truncate(strings.Join(firstN(b.RightLines, 3), " "), maxPreviewChars)
		fmt.Fprintf(sb, "%d. Near line %d%s: *\"%s\"*\n", i+1, b.RightStart+1, pageLabel(b.RightPages), preview)
	}
	sb.WriteString("\n")
}

func writeDeletions(sb *strings.Builder, blocks []compare.DiffBlock) {
	if len(blocks) == 0 {
		return
	}
	fmt.Fprintf(sb, "### Removed Content (%d section(s) deleted)\n\n", len(blocks))
	sb.WriteString("Content present in Document A has been removed in Document B. " +
		"Removed text may eliminate obligations, rights, definitions, or " +
		"qualifications that previously applied.\n\n")
	for i, b := range blocks {
		if i == maxListedBlocks {
			fmt.Fprintf(sb, "   *(and %d more…)*\n", len(blocks)-maxListedBlocks)
			break
		}
		preview := truncate(strings.Join(firstN(b.LeftLines, 3), " "), maxPreviewChars)
		fmt.Fprintf(sb, "%d. Near line %d%s: *\"%s\"*\n", i+1, b.LeftStart+1, pageLabel(b.LeftPages), preview)
	}
	sb.WriteString("\n")
}

func writeModifications(sb *strings.Builder, blocks []compare.DiffBlock) {
	if len(blocks) == 0 {
		return
	}
	fmt.Fprintf(sb, "### Modified Content (%d section(s) changed)\n\n", len(blocks))
	sb.WriteString("Existing text was altered between the two versions. Modifications can " +
		"change meaning, adjust figures, update references, or shift the tone " +
		"of the document.\n\n")
	for i, b := range blocks {
		if i == maxListedBlocks {
			fmt.Fprintf(sb, "   *(and %d more…)*\n", len(blocks)-maxListedBlocks)
			break
		}
		was := truncate(strings.Join(firstN(b.LeftLines, 2), " "), maxModifiedChars)
		now := truncate(strings.Join(firstN(b.RightLines, 2), " "), maxModifiedChars)
		fmt.Fprintf(sb, "%d. Line %d%s:\n", i+1, b.LeftStart+1, pageLabel(b.LeftPages))
		fmt.Fprintf(sb, "   - **Was:** *\"%s\"*\n", was)
		fmt.Fprintf(sb, "   - **Now:** *\"%s\"*\n", now)
	}
	sb.WriteString("\n")
}

func writeConsequences(sb *strings.Builder, severity compare.Severity, added, removed, modified bool) {
	sb.WriteString("---\n\n## Consequences\n\n")
	if removed {
		sb.WriteString("- **Removed content** may eliminate previously established terms, " +
			"conditions, or information. Reviewers should verify that no critical " +
			"clauses were unintentionally dropped.\n")
	}
	if added {
		sb.WriteString("- **Added content** introduces new information or requirements. " +
			"Stakeholders should review these additions for compliance and " +
			"alignment with expectations.\n")
	}
	if modified {
		sb.WriteString("- **Modified sections** could alter the interpretation of existing " +
			"provisions. A careful line-by-line review of changed sections is " +
			"recommended to assess whether the intent has shifted.\n")
	}
	if severity == compare.SeverityHigh {
		sb.WriteString("- Given the **high volume of changes**, a full re-review of " +
			"Document B is advisable rather than relying on a delta review alone.\n")
	}
}

// pageLabel formats a " (page N)" or " (pages N–M)" suffix, or nothing
// when the block has no page information.
func pageLabel(pr *compare.PageRange) string {
	if pr == nil {
		return ""
	}
	if pr.First == pr.Last {
		return fmt.Sprintf(" (page %d)", pr.First)
	}
	return fmt.Sprintf(" (pages %d–%d)", pr.First, pr.Last)
}

func firstN(lines []string, n int) []string {
	if len(lines) > n {
		return lines[:n]
	}
	return lines
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	// Cut on a rune boundary so the ellipsis never splits a character.
	cut := limit
	for cut > 0 && !isRuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "…"
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }
