// Package extract turns document bytes into the line/page sequences the
// comparison engine consumes. PDF is the primary format; HTML is
// supported as a single-page document for comparing web exports.
package extract

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/RobinCoderZhao/pdfcompare/internal/compare"
)

// ErrUnsupportedFormat marks file types no parser exists for.
var ErrUnsupportedFormat = errors.New("unsupported document type")

// Document is the extraction result for one input file: its text lines
// tagged with 1-based page numbers, plus whatever metadata the format
// carries.
type Document struct {
	Lines    []compare.Line    `json:"lines"`
	Metadata map[string]string `json:"metadata"`
	Pages    int               `json:"pages"`
}

// FromBytes extracts a document, choosing the parser from the file
// name's extension. Unknown extensions are rejected rather than
// guessed at.
func FromBytes(name string, data []byte) (*Document, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return PDF(data)
	case ".html", ".htm":
		return HTML(data)
	default:
		return nil, fmt.Errorf("%w %q (want .pdf or .html)", ErrUnsupportedFormat, filepath.Ext(name))
	}
}
