package extract

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/RobinCoderZhao/pdfcompare/internal/compare"
)

// skipTags are elements whose text never belongs in the document body.
var skipTags = map[string]bool{
	"script": true, "style": true, "noscript": true,
	"svg": true, "iframe": true, "head": true,
}

// blockTags end the current line when the walker leaves them.
var blockTags = map[string]bool{
	"p": true, "div": true, "li": true, "tr": true, "br": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"table": true, "blockquote": true, "pre": true, "section": true, "article": true,
}

// HTML extracts a single-page document from HTML bytes. Block-level
// elements delimit lines; the <title> element becomes the title
// metadata field.
func HTML(data []byte) (*Document, error) {
	root, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	doc := &Document{
		Metadata: map[string]string{
			"title":      sanitizeMetadataValue(findTitle(root)),
			"page_count": "1",
		},
		Pages: 1,
	}

	var sb strings.Builder
	flush := func() {
		if text := strings.TrimSpace(sb.String()); text != "" {
			doc.Lines = append(doc.Lines, compare.Line{Text: text, Page: 1})
		}
		sb.Reset()
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skipTags[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			if text := strings.Join(strings.Fields(n.Data), " "); text != "" {
				if sb.Len() > 0 {
					sb.WriteString(" ")
				}
				sb.WriteString(text)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && blockTags[n.Data] {
			flush()
		}
	}
	walk(root)
	flush()

	return doc, nil
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" && n.FirstChild != nil {
		return strings.TrimSpace(n.FirstChild.Data)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if title := findTitle(c); title != "" {
			return title
		}
	}
	return ""
}
