package report

import (
	"fmt"

	"github.com/RobinCoderZhao/pdfcompare/internal/compare"
)

// SystemPrompt frames the LLM as a document analyst. Sent to every
// provider unchanged.
const SystemPrompt = `You are an expert document analyst. You will receive a unified diff of two PDF documents along with summary statistics. Your task is to produce a detailed Markdown report that:

1. Summarises the nature and volume of changes.
2. For each significant change, explain what was added, removed, or modified and what the likely consequence is for the meaning of the document.
3. Assess overall severity (Low / Medium / High) and explain why.
4. Highlight any changes that could alter legal, financial, or contractual obligations.
5. End with a clear recommendation on whether the changes require further review.

Be precise, cite line numbers when possible, and use professional language.`

// maxPromptChars bounds the user prompt so oversized diffs stay within
// typical model context windows and token budgets.
const maxPromptChars = 80_000

// BuildPrompt assembles the user-role message for the LLM report:
// document names, change statistics, and the unified diff in a fenced
// code block, truncated past maxPromptChars.
func BuildPrompt(unified string, stats compare.Statistics, nameA, nameB string) string {
	prompt := fmt.Sprintf(`## Documents
- **Document A:** %s
- **Document B:** %s

## Change Statistics
- Unchanged lines: %d
- Inserted lines: %d
- Deleted lines: %d
- Modified lines: %d

## Unified Diff
`+"```\n%s\n```\n", nameA, nameB, stats.Unchanged, stats.Added, stats.Removed, stats.Modified, unified)

	if len(prompt) > maxPromptChars {
		prompt = prompt[:maxPromptChars] + "\n\n[... diff truncated for length ...]\n"
	}
	return prompt
}
