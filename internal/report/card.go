package report

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/fogleman/gg"

	"github.com/RobinCoderZhao/pdfcompare/internal/compare"
)

// CardRenderer renders a comparison summary as a shareable PNG card.
type CardRenderer struct {
	Width     float64
	RowHeight float64
	HeaderH   float64
	FooterH   float64
	PadLeft   float64
	PadRight  float64
	FontSize  float64
	TitleSize float64
	SmallSize float64
}

// NewCardRenderer creates a renderer with 1200px width.
func NewCardRenderer() *CardRenderer {
	return &CardRenderer{
		Width:     1200,
		RowHeight: 56,
		HeaderH:   110,
		FooterH:   64,
		PadLeft:   40,
		PadRight:  40,
		FontSize:  22,
		TitleSize: 30,
		SmallSize: 18,
	}
}

var severityColor = map[compare.Severity]string{
	compare.SeverityLow:    "#3ecf6e",
	compare.SeverityMedium: "#f0b429",
	compare.SeverityHigh:   "#e84a4a",
}

// RenderPNG writes the statistics card for one comparison to outputPath.
func (r *CardRenderer) RenderPNG(stats compare.Statistics, nameA, nameB, outputPath string) error {
	rows := []struct {
		label string
		value string
	}{
		{"Unchanged lines", fmt.Sprintf("%d", stats.Unchanged)},
		{"Inserted lines", fmt.Sprintf("%d", stats.Added)},
		{"Deleted lines", fmt.Sprintf("%d", stats.Removed)},
		{"Modified lines", fmt.Sprintf("%d", stats.Modified)},
		{"Total changed", fmt.Sprintf("%d", stats.Changed())},
		{"Change percentage", fmt.Sprintf("%.1f%%", stats.ChangeRatio*100)},
	}

	height := r.HeaderH + float64(len(rows))*r.RowHeight + r.RowHeight + r.FooterH + 60
	dc := gg.NewContext(int(r.Width), int(height))

	r.drawBackground(dc, height)
	y := r.drawTitle(dc, nameA, nameB)
	y = r.drawSeverityBadge(dc, stats.Severity(), y)

	for i, row := range rows {
		y = r.drawStatRow(dc, row.label, row.value, i%2 == 1, y)
	}

	r.drawFooter(dc, y)
	return dc.SavePNG(outputPath)
}

func (r *CardRenderer) drawBackground(dc *gg.Context, height float64) {
	for y := 0; y < int(height); y++ {
		t := float64(y) / height
		dc.SetColor(color.RGBA{uint8(12 + t*6), uint8(12 + t*6), uint8(28 + t*10), 255})
		dc.DrawRectangle(0, float64(y), r.Width, 1)
		dc.Fill()
	}
}

func (r *CardRenderer) drawTitle(dc *gg.Context, nameA, nameB string) float64 {
	dc.SetColor(hexColor("#1a1a3e"))
	dc.DrawRoundedRectangle(r.PadLeft, 20, r.Width-r.PadLeft-r.PadRight, r.HeaderH, 12)
	dc.Fill()

	dc.SetColor(hexColor("#4a9eff"))
	dc.DrawRectangle(r.PadLeft, 20, 4, r.HeaderH)
	dc.Fill()

	r.loadFont(dc, r.TitleSize)
	dc.SetColor(color.White)
	dc.DrawStringAnchored("PDF Comparison Summary", r.Width/2, 20+r.HeaderH/2-10, 0.5, 0.5)

	r.loadFont(dc, r.SmallSize)
	dc.SetColor(hexColor("#8888aa"))
	subtitle := fmt.Sprintf("%s  vs  %s", shorten(nameA, 40), shorten(nameB, 40))
	dc.DrawStringAnchored(subtitle, r.Width/2, 20+r.HeaderH/2+22, 0.5, 0.5)

	return 20 + r.HeaderH + 16
}

func (r *CardRenderer) drawSeverityBadge(dc *gg.Context, sev compare.Severity, y float64) float64 {
	dc.SetColor(hexColor("#141428"))
	dc.DrawRectangle(r.PadLeft, y, r.Width-r.PadLeft-r.PadRight, r.RowHeight)
	dc.Fill()

	dc.SetColor(hexColor(severityColor[sev]))
	dc.DrawCircle(r.PadLeft+24, y+r.RowHeight/2, 8)
	dc.Fill()

	r.loadFont(dc, r.FontSize)
	dc.SetColor(hexColor("#c0c0d0"))
	dc.DrawString(fmt.Sprintf("Overall severity: %s", sev), r.PadLeft+48, y+r.RowHeight/2+7)

	return y + r.RowHeight
}

func (r *CardRenderer) drawStatRow(dc *gg.Context, label, value string, odd bool, y float64) float64 {
	if odd {
		dc.SetColor(hexColor("#12122a"))
	} else {
		dc.SetColor(hexColor("#0f0f20"))
	}
	dc.DrawRectangle(r.PadLeft, y, r.Width-r.PadLeft-r.PadRight, r.RowHeight)
	dc.Fill()

	r.loadFont(dc, r.SmallSize)
	dc.SetColor(hexColor("#aaaacc"))
	dc.DrawString(label, r.PadLeft+16, y+r.RowHeight/2+6)

	dc.SetColor(color.White)
	tw, _ := dc.MeasureString(value)
	dc.DrawString(value, r.Width-r.PadRight-16-tw, y+r.RowHeight/2+6)

	return y + r.RowHeight
}

func (r *CardRenderer) drawFooter(dc *gg.Context, y float64) {
	y += 16
	dc.SetColor(hexColor("#0a0a16"))
	dc.DrawRoundedRectangle(r.PadLeft, y, r.Width-r.PadLeft-r.PadRight, r.FooterH, 8)
	dc.Fill()

	r.loadFont(dc, 16)
	dc.SetColor(hexColor("#444460"))
	dc.DrawStringAnchored("Generated by PDFCompare", r.Width/2, y+r.FooterH/2+4, 0.5, 0.5)
}

func (r *CardRenderer) loadFont(dc *gg.Context, size float64) {
	// Best effort: fall back to gg's built-in face when no system font
	// is available (headless servers).
	for _, path := range []string{
		"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
		"/System/Library/Fonts/Helvetica.ttc",
	} {
		if err := dc.LoadFontFace(path, size); err == nil {
			return
		}
	}
}

func shorten(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit-1] + "…"
}

func hexColor(hex string) color.Color {
	hex = strings.TrimPrefix(hex, "#")
	var cr, cg, cb uint8
	fmt.Sscanf(hex, "%02x%02x%02x", &cr, &cg, &cb)
	return color.RGBA{cr, cg, cb, 255}
}
