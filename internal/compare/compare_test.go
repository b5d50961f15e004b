package compare

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/RobinCoderZhao/pdfcompare/pkg/textmatch"
)

func mkLines(page int, texts ...string) []Line {
	out := make([]Line, len(texts))
	for i, t := range texts {
		out[i] = Line{Text: t, Page: page}
	}
	return out
}

func TestCompare_WordSpanScenario(t *testing.T) {
	res, err := Compare(Input{
		A:     mkLines(1, "Hello world", "Line two"),
		B:     mkLines(1, "Hello world", "Line 2"),
		NameA: "a.pdf",
		NameB: "b.pdf",
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Blocks) != 2 {
		t.Fatalf("got %d blocks, want 2", len(res.Blocks))
	}
	if res.Blocks[0].Tag != textmatch.Equal {
		t.Fatalf("block 0 tag = %s, want equal", res.Blocks[0].Tag)
	}
	rep := res.Blocks[1]
	if rep.Tag != textmatch.Replace {
		t.Fatalf("block 1 tag = %s, want replace", rep.Tag)
	}
	want := []WordSpan{
		{Text: "Line ", Tag: textmatch.Equal},
		{Text: "two", Tag: textmatch.Delete},
		{Text: "2", Tag: textmatch.Insert},
	}
	if len(rep.WordSpans) != len(want) {
		t.Fatalf("word spans = %+v, want %+v", rep.WordSpans, want)
	}
	for i := range want {
		if rep.WordSpans[i] != want[i] {
			t.Fatalf("span %d = %+v, want %+v", i, rep.WordSpans[i], want[i])
		}
	}
}

func TestCompare_WordSpanRoundTrip(t *testing.T) {
	pairs := [][2]string{
		{"The quick brown fox", "The slow brown fox"},
		{"  leading space", "leading  space"},
		{"tabs\there", "tabs there now"},
		{"entirely different", "completely changed text"},
	}
	for _, p := range pairs {
		spans := wordSpans(p[0], p[1])
		var left, right strings.Builder
		for _, s := range spans {
			if s.Tag == textmatch.Equal || s.Tag == textmatch.Delete {
				left.WriteString(s.Text)
			}
			if s.Tag == textmatch.Equal || s.Tag == textmatch.Insert {
				right.WriteString(s.Text)
			}
		}
		if left.String() != p[0] {
			t.Fatalf("left round trip: %q != %q", left.String(), p[0])
		}
		if right.String() != p[1] {
			t.Fatalf("right round trip: %q != %q", right.String(), p[1])
		}
	}
}

func TestCompare_MultiLineReplaceHasNoWordSpans(t *testing.T) {
	res, err := Compare(Input{
		A: mkLines(1, "anchor", "one", "two"),
		B: mkLines(1, "anchor", "uno", "dos", "tres"),
	})
	if err != nil {
		t.Fatal(err)
	}
	for _, b := range res.Blocks {
		if b.Tag == textmatch.Replace && len(b.WordSpans) > 0 {
			if b.LeftEnd-b.LeftStart != 1 || b.RightEnd-b.RightStart != 1 {
				t.Fatalf("multi-line replace block %+v has word spans", b)
			}
		}
	}
}

func TestCompare_SingleInsertIntoRepeatedLines(t *testing.T) {
	a := make([]Line, 100)
	for i := range a {
		a[i] = Line{Text: "x", Page: 1}
	}
	b := make([]Line, 0, 101)
	b = append(b, a[:50]...)
	b = append(b, Line{Text: "y", Page: 1})
	b = append(b, a[50:]...)

	res, err := Compare(Input{A: a, B: b})
	if err != nil {
		t.Fatal(err)
	}
	inserts := 0
	for _, blk := range res.Blocks {
		switch blk.Tag {
		case textmatch.Insert:
			inserts++
			if blk.RightEnd-blk.RightStart != 1 || blk.RightLines[0] != "y" {
				t.Fatalf("unexpected insert block %+v", blk)
			}
			if blk.RightStart != 50 {
				t.Fatalf("insert at %d, want 50", blk.RightStart)
			}
		case textmatch.Delete, textmatch.Replace:
			t.Fatalf("unexpected %s block %+v", blk.Tag, blk)
		}
	}
	if inserts != 1 {
		t.Fatalf("got %d insert blocks, want 1", inserts)
	}
	if res.Stats.Added != 1 || res.Stats.Unchanged != 100 {
		t.Fatalf("stats = %+v", res.Stats)
	}
}

func TestCompare_HeaderFooterStripKeepsPageCitations(t *testing.T) {
	// 3 pages, 2 lines each; stripping 1 line from the top of every
	// page removes 3 lines but citations must still name real pages.
	var a []Line
	for p := 1; p <= 3; p++ {
		a = append(a, Line{Text: "Confidential Draft", Page: p})
		a = append(a, Line{Text: "body " + strings.Repeat("x", p), Page: p})
	}
	b := append([]Line(nil), a...)
	b[5] = Line{Text: "body changed", Page: 3} // last content line, page 3

	rules := IgnoreRules{StripHeaderFooter: StripHeaderFooter{LinesFromTop: 1}}
	res, err := Compare(Input{A: a, B: b, Rules: rules})
	if err != nil {
		t.Fatal(err)
	}
	if res.Stats.TotalLeft != 3 {
		t.Fatalf("normalized left total = %d, want 3", res.Stats.TotalLeft)
	}
	var replace *DiffBlock
	for i := range res.Blocks {
		if res.Blocks[i].Tag == textmatch.Replace {
			replace = &res.Blocks[i]
		}
	}
	if replace == nil {
		t.Fatal("no replace block found")
	}
	if replace.LeftPages == nil || replace.LeftPages.First != 3 || replace.LeftPages.Last != 3 {
		t.Fatalf("left pages = %+v, want page 3", replace.LeftPages)
	}
}

func TestCompare_StripExceedingPageLengthFails(t *testing.T) {
	rules := IgnoreRules{StripHeaderFooter: StripHeaderFooter{LinesFromTop: 2, LinesFromBottom: 1}}
	_, err := Compare(Input{A: mkLines(1, "a", "b", "c"), B: mkLines(1, "a"), Rules: rules})
	if !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("err = %v, want ErrInvalidConfiguration", err)
	}
}

func TestCompare_OverlongPatternAborts(t *testing.T) {
	rules := IgnoreRules{IgnoreRegex: strings.Repeat("a", 501)}
	_, err := Compare(Input{A: mkLines(1, "a"), B: mkLines(1, "a"), Rules: rules})
	if !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("err = %v, want ErrInvalidConfiguration", err)
	}
}

func TestCompare_InvalidPatternAborts(t *testing.T) {
	_, err := Compare(Input{A: mkLines(1, "a"), B: mkLines(1, "a"), Rules: IgnoreRules{IgnoreRegex: "(unclosed"}})
	if !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("err = %v, want ErrInvalidConfiguration", err)
	}
	if _, err := Compare(Input{A: mkLines(1, "a"), B: mkLines(1, "a"),
		Rules: IgnoreRules{StripHeaderFooter: StripHeaderFooter{LinesFromTop: -1}}}); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("negative strip err = %v, want ErrInvalidConfiguration", err)
	}
}

func TestCompare_EmptySideIsNotAnError(t *testing.T) {
	res, err := Compare(Input{A: nil, B: mkLines(1, "only", "here")})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Blocks) != 1 || res.Blocks[0].Tag != textmatch.Insert {
		t.Fatalf("blocks = %+v, want one insert", res.Blocks)
	}
	if res.Blocks[0].RightPages == nil || res.Blocks[0].RightPages.First != 1 {
		t.Fatalf("right pages = %+v", res.Blocks[0].RightPages)
	}
	if res.Blocks[0].LeftPages != nil {
		t.Fatalf("left pages = %+v, want nil at document start", res.Blocks[0].LeftPages)
	}
}

func TestCompare_Deterministic(t *testing.T) {
	in := Input{
		A:     mkLines(1, "m", "n", "m", "n", "q"),
		B:     mkLines(1, "m", "n", "r", "m", "n"),
		NameA: "a",
		NameB: "b",
	}
	first, err := Compare(in)
	if err != nil {
		t.Fatal(err)
	}
	firstJSON, _ := json.Marshal(first)
	for i := 0; i < 20; i++ {
		again, err := Compare(in)
		if err != nil {
			t.Fatal(err)
		}
		againJSON, _ := json.Marshal(again)
		if string(firstJSON) != string(againJSON) {
			t.Fatalf("run %d differs:\n%s\n%s", i, firstJSON, againJSON)
		}
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	rules := IgnoreRules{
		CollapseWhitespace: true,
		IgnoreCase:         true,
		IgnoreRegex:        `draft.*`,
	}
	lines := []Line{
		{Text: "  Hello   World ", Page: 1},
		{Text: "DRAFT copy", Page: 1},
		{Text: "Second\tline", Page: 2},
	}
	once, _, err := Normalize(lines, rules)
	if err != nil {
		t.Fatal(err)
	}

	renorm := make([]Line, len(once))
	for i, n := range once {
		renorm[i] = Line{Text: n.Key, Page: lines[n.Index].Page}
	}
	twice, _, err := Normalize(renorm, rules)
	if err != nil {
		t.Fatal(err)
	}
	if len(twice) != len(once) {
		t.Fatalf("second pass changed line count: %d -> %d", len(once), len(twice))
	}
	for i := range once {
		if twice[i].Key != once[i].Key {
			t.Fatalf("line %d changed on second pass: %q -> %q", i, once[i].Key, twice[i].Key)
		}
	}
}

func TestNormalize_IndexMapStrictlyIncreasing(t *testing.T) {
	lines := mkLines(1, "keep", "drop me", "keep too", "drop me")
	norm, _, err := Normalize(lines, IgnoreRules{IgnoreRegex: "drop me"})
	if err != nil {
		t.Fatal(err)
	}
	if len(norm) != 2 {
		t.Fatalf("got %d lines, want 2", len(norm))
	}
	prev := -1
	for _, n := range norm {
		if n.Index <= prev {
			t.Fatalf("index map not strictly increasing: %d after %d", n.Index, prev)
		}
		prev = n.Index
	}
	if norm[0].Index != 0 || norm[1].Index != 2 {
		t.Fatalf("index map = [%d %d], want [0 2]", norm[0].Index, norm[1].Index)
	}
}

func TestSeverityBoundaries(t *testing.T) {
	cases := []struct {
		ratio float64
		want  Severity
	}{
		{0.0, SeverityLow},
		{0.049999, SeverityLow},
		{0.05, SeverityMedium},
		{0.199999, SeverityMedium},
		{0.20, SeverityHigh},
		{1.0, SeverityHigh},
	}
	for _, tc := range cases {
		s := Statistics{ChangeRatio: tc.ratio}
		if got := s.Severity(); got != tc.want {
			t.Errorf("Severity(%v) = %s, want %s", tc.ratio, got, tc.want)
		}
	}
}

func TestCompare_UnifiedAgreesWithBlocks(t *testing.T) {
	// Lines that differ only in case are equal under IgnoreCase; the
	// unified diff must agree with the blocks instead of re-diffing the
	// raw text and reporting every line changed.
	res, err := Compare(Input{
		A:     mkLines(1, "HELLO WORLD", "SAME LINE"),
		B:     mkLines(1, "hello world", "same line"),
		Rules: IgnoreRules{IgnoreCase: true},
		NameA: "a.pdf",
		NameB: "b.pdf",
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Stats.Changed() != 0 {
		t.Fatalf("expected no changes, got %+v", res.Stats)
	}
	for _, b := range res.Blocks {
		if b.Tag != textmatch.Equal {
			t.Fatalf("expected only equal blocks, got %s", b.Tag)
		}
	}
	if res.Unified != "" {
		t.Fatalf("unified diff contradicts blocks:\n%s", res.Unified)
	}
}

func TestCompare_UnifiedShowsDisplayText(t *testing.T) {
	// With whitespace collapsed, only the real change appears in the
	// unified diff, and it carries the original (uncollapsed) text.
	res, err := Compare(Input{
		A:     mkLines(1, "alpha   beta", "old line"),
		B:     mkLines(1, "alpha beta", "new line"),
		Rules: IgnoreRules{CollapseWhitespace: true},
		NameA: "a.pdf",
		NameB: "b.pdf",
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Stats.Changed() != 1 {
		t.Fatalf("expected one changed line, got %+v", res.Stats)
	}
	if strings.Contains(res.Unified, "-alpha") || strings.Contains(res.Unified, "+alpha") {
		t.Fatalf("whitespace-only line reported as changed:\n%s", res.Unified)
	}
	if !strings.Contains(res.Unified, " alpha   beta") {
		t.Fatalf("context should carry original display text:\n%s", res.Unified)
	}
	if !strings.Contains(res.Unified, "-old line") || !strings.Contains(res.Unified, "+new line") {
		t.Fatalf("missing the real change:\n%s", res.Unified)
	}
}

func TestUnifiedDiff_EmptyRangeHeaders(t *testing.T) {
	ins := UnifiedDiff(nil, []string{"one", "two"}, "a", "b")
	if !strings.Contains(ins, "@@ -0,0 +1,2 @@") {
		t.Fatalf("insertion into empty document got wrong header:\n%s", ins)
	}
	del := UnifiedDiff([]string{"one", "two"}, nil, "a", "b")
	if !strings.Contains(del, "@@ -1,2 +0,0 @@") {
		t.Fatalf("deletion to empty document got wrong header:\n%s", del)
	}
}

func TestUnifiedDiff(t *testing.T) {
	a := []string{"one", "two", "three", "four", "five", "six", "seven", "eight"}
	b := []string{"one", "two", "three", "four", "five", "six", "seven", "oito"}
	out := UnifiedDiff(a, b, "left.pdf", "right.pdf")
	if !strings.HasPrefix(out, "--- left.pdf\n+++ right.pdf\n") {
		t.Fatalf("missing file header:\n%s", out)
	}
	if !strings.Contains(out, "-eight") || !strings.Contains(out, "+oito") {
		t.Fatalf("missing change lines:\n%s", out)
	}
	if strings.Contains(out, " one") {
		t.Fatalf("context not trimmed to %d lines:\n%s", unifiedContext, out)
	}
	if UnifiedDiff(a, a, "x", "y") != "" {
		t.Fatal("identical inputs should produce an empty diff")
	}
}

func TestCompareMetadata(t *testing.T) {
	a := map[string]string{"title": "Contract v1", "author": "Legal", "pages": "10"}
	b := map[string]string{"title": "Contract v2", "author": "Legal", "producer": "lib"}
	diffs := CompareMetadata(a, b)
	want := []MetadataDiff{
		{Field: "pages", ValueA: "10", ValueB: ""},
		{Field: "producer", ValueA: "", ValueB: "lib"},
		{Field: "title", ValueA: "Contract v1", ValueB: "Contract v2"},
	}
	if len(diffs) != len(want) {
		t.Fatalf("diffs = %+v, want %+v", diffs, want)
	}
	for i := range want {
		if diffs[i] != want[i] {
			t.Fatalf("diff %d = %+v, want %+v", i, diffs[i], want[i])
		}
	}
}

func TestBuildPageIndex(t *testing.T) {
	lines := []Line{{Text: "a", Page: 1}, {Text: "b", Page: 1}, {Text: "c", Page: 2}, {Text: "d", Page: 0}}
	idx := BuildPageIndex(lines)
	want := []int{1, 1, 2, 2}
	for i, w := range want {
		if idx.PageOf(i) != w {
			t.Fatalf("PageOf(%d) = %d, want %d", i, idx.PageOf(i), w)
		}
	}
	if idx.PageOf(99) != 0 {
		t.Fatal("out-of-range lookup should return 0")
	}
}
