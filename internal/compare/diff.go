package compare

import (
	"fmt"

	"github.com/RobinCoderZhao/pdfcompare/pkg/textmatch"
)

// diffOpcodes runs the matcher over the normalized comparison keys.
// Every output of a comparison (blocks, statistics, unified diff) must
// derive from this one opcode stream so they cannot contradict each other.
func diffOpcodes(normA, normB []NormalizedLine) []textmatch.OpCode {
	keysA := make([]string, len(normA))
	for i, n := range normA {
		keysA[i] = n.Key
	}
	keysB := make([]string, len(normB))
	for i, n := range normB {
		keysB[i] = n.Key
	}

	codes := textmatch.OpCodes(keysA, keysB)
	verifyCoverage(codes, len(keysA), len(keysB))
	return codes
}

// assemble turns the line opcodes into page-annotated diff blocks and
// accumulates statistics. Indices in the returned blocks refer to the
// normalized sequences; page lookups go through each line's original
// index so citations stay correct after filtering rules removed lines.
func assemble(codes []textmatch.OpCode, normA, normB []NormalizedLine, pagesA, pagesB PageIndex) ([]DiffBlock, Statistics) {
	stats := Statistics{TotalLeft: len(normA), TotalRight: len(normB)}
	blocks := make([]DiffBlock, 0, len(codes))

	for _, c := range codes {
		b := DiffBlock{
			Tag:        c.Tag,
			LeftStart:  c.I1,
			LeftEnd:    c.I2,
			RightStart: c.J1,
			RightEnd:   c.J2,
			LeftPages:  pageRange(normA, pagesA, c.I1, c.I2),
			RightPages: pageRange(normB, pagesB, c.J1, c.J2),
		}
		for _, n := range normA[c.I1:c.I2] {
			b.LeftLines = append(b.LeftLines, n.Display)
		}
		for _, n := range normB[c.J1:c.J2] {
			b.RightLines = append(b.RightLines, n.Display)
		}

		switch c.Tag {
		case textmatch.Equal:
			stats.Unchanged += c.I2 - c.I1
		case textmatch.Insert:
			stats.Added += c.J2 - c.J1
		case textmatch.Delete:
			stats.Removed += c.I2 - c.I1
		case textmatch.Replace:
			stats.Modified += max(c.I2-c.I1, c.J2-c.J1)
			if c.I2-c.I1 == 1 && c.J2-c.J1 == 1 {
				b.WordSpans = wordSpans(normA[c.I1].Display, normB[c.J1].Display)
			}
		}
		blocks = append(blocks, b)
	}

	if denom := max(stats.TotalLeft, stats.TotalRight); denom > 0 {
		stats.ChangeRatio = float64(stats.Changed()) / float64(denom)
	}
	return blocks, stats
}

// pageRange computes the source pages for one side of a block. A
// non-empty range cites the pages of its first and last line. An empty
// range (the missing side of a pure insert or delete) anchors to the
// line just before the edit position, or nil at document start.
func pageRange(norm []NormalizedLine, pages PageIndex, start, end int) *PageRange {
	if start < end {
		first := pages.PageOf(norm[start].Index)
		last := pages.PageOf(norm[end-1].Index)
		return &PageRange{First: first, Last: last}
	}
	if start == 0 || len(norm) == 0 {
		return nil
	}
	anchor := start - 1
	if anchor >= len(norm) {
		anchor = len(norm) - 1
	}
	pg := pages.PageOf(norm[anchor].Index)
	return &PageRange{First: pg, Last: pg}
}

// verifyCoverage asserts the opcode tiling invariant. A violation is an
// implementation bug, not an input problem; silently repairing it would
// hand back a diff that does not describe the true inputs, so fail loudly.
func verifyCoverage(codes []textmatch.OpCode, lenA, lenB int) {
	i, j := 0, 0
	for _, c := range codes {
		if c.I1 != i || c.J1 != j || c.I2 < c.I1 || c.J2 < c.J1 {
			panic(fmt.Sprintf("compare: opcode %+v breaks coverage at (%d,%d)", c, i, j))
		}
		i, j = c.I2, c.J2
	}
	if i != lenA || j != lenB {
		panic(fmt.Sprintf("compare: opcodes cover (%d,%d) of (%d,%d)", i, j, lenA, lenB))
	}
}
