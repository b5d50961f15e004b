package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/RobinCoderZhao/pdfcompare/internal/compare"
	"github.com/RobinCoderZhao/pdfcompare/pkg/textmatch"
)

func sampleResult(t *testing.T) ([]compare.DiffBlock, compare.Statistics) {
	t.Helper()
	res, err := compare.Compare(compare.Input{
		A: []compare.Line{
			{Text: "Clause 1: payment due in 30 days", Page: 1},
			{Text: "Clause 2: governed by Dutch law", Page: 1},
			{Text: "Clause 3: confidentiality", Page: 2},
		},
		B: []compare.Line{
			{Text: "Clause 1: payment due in 14 days", Page: 1},
			{Text: "Clause 3: confidentiality", Page: 2},
			{Text: "Clause 4: penalties apply", Page: 2},
		},
		NameA: "contract_v1.pdf",
		NameB: "contract_v2.pdf",
	})
	if err != nil {
		t.Fatal(err)
	}
	return res.Blocks, res.Stats
}

func TestGenerate_Deterministic(t *testing.T) {
	blocks, stats := sampleResult(t)
	first := Generate(blocks, stats, "contract_v1.pdf", "contract_v2.pdf")
	for i := 0; i < 10; i++ {
		if again := Generate(blocks, stats, "contract_v1.pdf", "contract_v2.pdf"); again != first {
			t.Fatalf("run %d produced different output", i)
		}
	}
}

func TestGenerate_Sections(t *testing.T) {
	blocks, stats := sampleResult(t)
	out := Generate(blocks, stats, "contract_v1.pdf", "contract_v2.pdf")

	for _, want := range []string{
		"# PDF Comparison Report",
		"**Document A:** contract_v1.pdf",
		"## Summary Statistics",
		"## Impact Analysis",
		"**Overall severity:**",
		"## Consequences",
		"(page ",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}

func TestGenerate_IdenticalDocuments(t *testing.T) {
	stats := compare.Statistics{Unchanged: 5, TotalLeft: 5, TotalRight: 5}
	out := Generate(nil, stats, "a.pdf", "b.pdf")
	if !strings.Contains(out, "**identical** in textual content") {
		t.Fatalf("identical documents not reported as such:\n%s", out)
	}
	if strings.Contains(out, "## Consequences") {
		t.Fatal("identical documents should not have a consequences section")
	}
}

func TestGenerate_CapsListedBlocks(t *testing.T) {
	var blocks []compare.DiffBlock
	for i := 0; i < 15; i++ {
		blocks = append(blocks, compare.DiffBlock{
			Tag:        textmatch.Insert,
			RightStart: i,
			RightEnd:   i + 1,
			RightLines: []string{"added line"},
		})
	}
	stats := compare.Statistics{Added: 15, TotalRight: 30, ChangeRatio: 0.5}
	out := Generate(blocks, stats, "a", "b")
	if !strings.Contains(out, "(and 5 more…)") {
		t.Fatalf("listing not capped at %d entries:\n%s", maxListedBlocks, out)
	}
}

func TestGenerate_TruncatesPreviews(t *testing.T) {
	long := strings.Repeat("w", 500)
	blocks := []compare.DiffBlock{{
		Tag:       textmatch.Delete,
		LeftLines: []string{long},
		LeftStart: 0,
		LeftEnd:   1,
	}}
	stats := compare.Statistics{Removed: 1, TotalLeft: 1, ChangeRatio: 1}
	out := Generate(blocks, stats, "a", "b")
	if strings.Contains(out, long) {
		t.Fatal("preview was not truncated")
	}
	if !strings.Contains(out, strings.Repeat("w", maxPreviewChars)+"…") {
		t.Fatal("truncated preview missing ellipsis")
	}
}

func TestBuildPrompt(t *testing.T) {
	stats := compare.Statistics{Unchanged: 3, Added: 1, Removed: 2, Modified: 4}
	p := BuildPrompt("--- a\n+++ b\n@@ -1 +1 @@\n-x\n+y", stats, "a.pdf", "b.pdf")
	for _, want := range []string{
		"**Document A:** a.pdf",
		"Unchanged lines: 3",
		"Modified lines: 4",
		"```\n--- a",
	} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBuildPrompt_Truncation(t *testing.T) {
	huge := strings.Repeat("-deleted line\n", 20_000)
	p := BuildPrompt(huge, compare.Statistics{}, "a", "b")
	if len(p) > maxPromptChars+100 {
		t.Fatalf("prompt length %d exceeds budget", len(p))
	}
	if !strings.Contains(p, "[... diff truncated for length ...]") {
		t.Fatal("truncation marker missing")
	}
}

func TestCardRenderer_RenderPNG(t *testing.T) {
	out := filepath.Join(t.TempDir(), "card.png")
	stats := compare.Statistics{Unchanged: 10, Added: 2, Removed: 1, Modified: 3, TotalLeft: 14, TotalRight: 15, ChangeRatio: 0.4}
	if err := NewCardRenderer().RenderPNG(stats, "a.pdf", "b.pdf", out); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(out)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() == 0 {
		t.Fatal("rendered card is empty")
	}
}
