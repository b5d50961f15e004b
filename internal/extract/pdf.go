package extract

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"rsc.io/pdf"

	"github.com/RobinCoderZhao/pdfcompare/internal/compare"
)

// yTolerance groups glyph fragments into the same visual line when
// their baselines are within this many points of each other.
const yTolerance = 2.0

// PDF extracts text lines and metadata from raw PDF bytes. The parser
// panics on some malformed files, so extraction recovers and reports
// those as errors instead.
func PDF(data []byte) (doc *Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = fmt.Errorf("parse pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	doc = &Document{
		Metadata: readInfo(reader),
		Pages:    reader.NumPage(),
	}
	doc.Metadata["page_count"] = strconv.Itoa(doc.Pages)

	for pageNo := 1; pageNo <= reader.NumPage(); pageNo++ {
		page := reader.Page(pageNo)
		if page.V.IsNull() {
			continue
		}
		for _, text := range pageLines(page) {
			doc.Lines = append(doc.Lines, compare.Line{Text: text, Page: pageNo})
		}
	}
	return doc, nil
}

// pageLines reassembles a page's glyph fragments into display lines:
// fragments sharing a baseline (within yTolerance) form one line, read
// left to right, with a space inserted across gaps wider than a third
// of the font size.
func pageLines(page pdf.Page) []string {
	frags := page.Content().Text
	if len(frags) == 0 {
		return nil
	}

	sort.SliceStable(frags, func(i, j int) bool {
		if frags[i].Y != frags[j].Y {
			return frags[i].Y > frags[j].Y // PDF origin is bottom-left
		}
		return frags[i].X < frags[j].X
	})

	var lines []string
	var sb strings.Builder
	lineY := frags[0].Y
	var prevEnd float64

	flush := func() {
		if text := strings.TrimRight(sb.String(), " "); text != "" {
			lines = append(lines, text)
		}
		sb.Reset()
	}

	for _, f := range frags {
		if lineY-f.Y > yTolerance {
			flush()
			lineY = f.Y
			prevEnd = 0
		}
		if sb.Len() > 0 && prevEnd > 0 && f.X-prevEnd > f.FontSize/3 {
			sb.WriteString(" ")
		}
		sb.WriteString(f.S)
		prevEnd = f.X + f.W
	}
	flush()
	return lines
}

// infoFields are the standard Info-dictionary entries surfaced as
// metadata; keys are the lowercase names used in API responses.
var infoFields = map[string]string{
	"Title":        "title",
	"Author":       "author",
	"Subject":      "subject",
	"Creator":      "creator",
	"Producer":     "producer",
	"CreationDate": "creation_date",
	"ModDate":      "mod_date",
}

func readInfo(r *pdf.Reader) map[string]string {
	meta := make(map[string]string, len(infoFields)+1)
	info := r.Trailer().Key("Info")
	for pdfKey, outKey := range infoFields {
		meta[outKey] = sanitizeMetadataValue(info.Key(pdfKey).Text())
	}
	return meta
}

// sanitizeMetadataValue strips characters that could smuggle markup or
// control bytes into API responses rendered by the frontend.
func sanitizeMetadataValue(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '<' || r == '>':
			return -1
		case r < 0x20 && r != '\t':
			return -1
		default:
			return r
		}
	}, s)
}
