package compare

import (
	"fmt"
	"strings"

	"github.com/RobinCoderZhao/pdfcompare/pkg/textmatch"
)

// unifiedContext is the number of unchanged lines shown around each hunk.
const unifiedContext = 3

// UnifiedDiff renders a standard unified-diff string between two line
// slices, suitable for patch export and for the LLM report prompt.
// Lines are written without trailing newlines on the last line.
func UnifiedDiff(a, b []string, nameA, nameB string) string {
	return renderUnified(textmatch.OpCodes(a, b), a, b, nameA, nameB)
}

// renderUnified writes the hunks for a precomputed opcode stream. The
// opcodes may come from diffing a transformed view of a and b; only the
// display slices indexed here appear in the output.
func renderUnified(codes []textmatch.OpCode, a, b []string, nameA, nameB string) string {
	groups := groupOpcodes(codes, unifiedContext)
	if len(groups) == 0 {
		return ""
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "--- %s\n", nameA)
	fmt.Fprintf(&sb, "+++ %s\n", nameB)

	for _, group := range groups {
		first, last := group[0], group[len(group)-1]
		fmt.Fprintf(&sb, "@@ -%s +%s @@\n",
			hunkRange(first.I1, last.I2-first.I1), hunkRange(first.J1, last.J2-first.J1))
		for _, op := range group {
			switch op.Tag {
			case textmatch.Equal:
				for _, l := range a[op.I1:op.I2] {
					sb.WriteString(" " + l + "\n")
				}
			case textmatch.Insert:
				for _, l := range b[op.J1:op.J2] {
					sb.WriteString("+" + l + "\n")
				}
			case textmatch.Delete:
				for _, l := range a[op.I1:op.I2] {
					sb.WriteString("-" + l + "\n")
				}
			case textmatch.Replace:
				for _, l := range a[op.I1:op.I2] {
					sb.WriteString("-" + l + "\n")
				}
				for _, l := range b[op.J1:op.J2] {
					sb.WriteString("+" + l + "\n")
				}
			}
		}
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

// hunkRange formats one side of a hunk header. Ranges are 1-based, but
// an empty range cites the line before the edit without incrementing,
// so an insertion into an empty document reads "@@ -0,0 +1,N @@".
func hunkRange(start, length int) string {
	if length == 0 {
		return fmt.Sprintf("%d,0", start)
	}
	return fmt.Sprintf("%d,%d", start+1, length)
}

// groupOpcodes splits the opcode stream into hunks, trimming equal
// stretches down to ctx lines of context on either side of a change.
// Hunks made of nothing but context (identical inputs) are dropped.
func groupOpcodes(codes []textmatch.OpCode, ctx int) [][]textmatch.OpCode {
	changed := false
	for _, c := range codes {
		if c.Tag != textmatch.Equal {
			changed = true
			break
		}
	}
	if !changed {
		return nil
	}

	trimmed := make([]textmatch.OpCode, 0, len(codes))
	for n, c := range codes {
		if c.Tag != textmatch.Equal {
			trimmed = append(trimmed, c)
			continue
		}
		i1, i2 := c.I1, c.I2
		if n == 0 && i2-i1 > ctx {
			i1 = i2 - ctx
		}
		if n == len(codes)-1 && i2-i1 > ctx {
			i2 = i1 + ctx
		}
		j1 := c.J1 + (i1 - c.I1)
		j2 := c.J1 + (i2 - c.I1)
		trimmed = append(trimmed, textmatch.OpCode{Tag: c.Tag, I1: i1, I2: i2, J1: j1, J2: j2})
	}

	var groups [][]textmatch.OpCode
	var group []textmatch.OpCode
	for _, c := range trimmed {
		if c.Tag == textmatch.Equal && c.I2-c.I1 > ctx*2 {
			group = append(group, textmatch.OpCode{Tag: c.Tag, I1: c.I1, I2: c.I1 + ctx, J1: c.J1, J2: c.J1 + ctx})
			groups = append(groups, group)
			group = []textmatch.OpCode{{Tag: c.Tag, I1: c.I2 - ctx, I2: c.I2, J1: c.J2 - ctx, J2: c.J2}}
			continue
		}
		group = append(group, c)
	}
	if len(group) > 0 {
		groups = append(groups, group)
	}
	return groups
}
