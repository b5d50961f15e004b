// Package compare implements the document comparison engine: line-level
// and word-level diffing with page provenance, ignore rules, and summary
// statistics. It is deterministic — the same pair of inputs always
// produces the same blocks and statistics — and holds no state between
// calls, so it is safe to run concurrently for independent requests.
package compare

import (
	"fmt"

	"github.com/RobinCoderZhao/pdfcompare/pkg/textmatch"
)

// Line is one extracted text line tagged with its 1-based source page.
// Lines are produced once by the extractor and never mutated.
type Line struct {
	Text string `json:"text"`
	Page int    `json:"page"`
}

// PageRange is the span of source pages a diff block's lines come from.
type PageRange struct {
	First int `json:"first"`
	Last  int `json:"last"`
}

// WordSpan is one word-level fragment of a replaced line. Spans tagged
// equal or delete concatenate to the original left line; spans tagged
// equal or insert concatenate to the original right line.
type WordSpan struct {
	Text string        `json:"text"`
	Tag  textmatch.Tag `json:"tag"`
}

// DiffBlock describes one contiguous edit region. Start/End indices
// refer to the normalized line sequences (what was actually diffed);
// LeftLines/RightLines carry the original display text for those lines.
// Page ranges are nil when the side is empty and no anchor line exists.
// WordSpans is populated only for replace blocks spanning a single line
// on both sides; multi-line replacements get no word-level refinement.
type DiffBlock struct {
	Tag        textmatch.Tag `json:"tag"`
	LeftStart  int           `json:"left_start"`
	LeftEnd    int           `json:"left_end"`
	RightStart int           `json:"right_start"`
	RightEnd   int           `json:"right_end"`
	LeftLines  []string      `json:"left_lines,omitempty"`
	RightLines []string      `json:"right_lines,omitempty"`
	LeftPages  *PageRange    `json:"left_pages,omitempty"`
	RightPages *PageRange    `json:"right_pages,omitempty"`
	WordSpans  []WordSpan    `json:"word_spans,omitempty"`
}

// Statistics summarizes a comparison. Counts are in normalized lines.
type Statistics struct {
	Added       int     `json:"added"`
	Removed     int     `json:"removed"`
	Modified    int     `json:"modified"`
	Unchanged   int     `json:"unchanged"`
	TotalLeft   int     `json:"total_left"`
	TotalRight  int     `json:"total_right"`
	ChangeRatio float64 `json:"change_ratio"`
}

// Changed returns the total number of changed lines.
func (s Statistics) Changed() int {
	return s.Added + s.Removed + s.Modified
}

// Severity is a coarse rating of how much two documents differ.
type Severity string

const (
	SeverityLow    Severity = "Low"
	SeverityMedium Severity = "Medium"
	SeverityHigh   Severity = "High"
)

// Severity derives the rating from the change ratio. Boundaries are
// inclusive on the lower bound of each tier: ratio 0.05 is already
// Medium and 0.20 is already High.
func (s Statistics) Severity() Severity {
	switch {
	case s.ChangeRatio >= 0.20:
		return SeverityHigh
	case s.ChangeRatio >= 0.05:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// Input holds everything a single comparison needs. The rule set is
// read-only and may be shared across concurrent calls.
type Input struct {
	A     []Line
	B     []Line
	Rules IgnoreRules
	NameA string
	NameB string
}

// Result is the full output of one comparison. Warnings carry
// non-fatal notes from normalization (currently only regex budget
// exhaustion).
type Result struct {
	Blocks   []DiffBlock `json:"diff_blocks"`
	Stats    Statistics  `json:"stats"`
	Unified  string      `json:"unified_diff"`
	Warnings []string    `json:"warnings,omitempty"`
}

// Compare runs the whole pipeline: normalize both sides, diff the
// normalized comparison keys, refine single-line replacements to word
// level, annotate every block with source pages, and accumulate
// statistics. Configuration errors abort before any diff work.
func Compare(in Input) (*Result, error) {
	if err := in.Rules.Validate(); err != nil {
		return nil, err
	}

	normA, warnA, err := Normalize(in.A, in.Rules)
	if err != nil {
		return nil, fmt.Errorf("normalize %s: %w", in.NameA, err)
	}
	normB, warnB, err := Normalize(in.B, in.Rules)
	if err != nil {
		return nil, fmt.Errorf("normalize %s: %w", in.NameB, err)
	}

	pagesA := BuildPageIndex(in.A)
	pagesB := BuildPageIndex(in.B)

	// One opcode stream feeds blocks, statistics and the unified diff.
	// Diffing keys but rendering display text keeps the patch readable
	// without letting it disagree with the block output.
	codes := diffOpcodes(normA, normB)
	blocks, stats := assemble(codes, normA, normB, pagesA, pagesB)

	res := &Result{
		Blocks:  blocks,
		Stats:   stats,
		Unified: renderUnified(codes, displayLines(normA), displayLines(normB), in.NameA, in.NameB),
	}
	res.Warnings = append(res.Warnings, warnA...)
	res.Warnings = append(res.Warnings, warnB...)
	return res, nil
}

func displayLines(norm []NormalizedLine) []string {
	out := make([]string, len(norm))
	for i, n := range norm {
		out[i] = n.Display
	}
	return out
}
