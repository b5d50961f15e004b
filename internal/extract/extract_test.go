package extract

import (
	"strings"
	"testing"
)

func TestHTML_Lines(t *testing.T) {
	input := `<html><head><title>Terms &amp; Conditions</title>
<script>var x = "not content";</script></head>
<body>
  <h1>Agreement</h1>
  <p>First   paragraph
     spans source lines.</p>
  <ul><li>item one</li><li>item two</li></ul>
</body></html>`

	doc, err := HTML([]byte(input))
	if err != nil {
		t.Fatal(err)
	}
	if doc.Metadata["title"] != "Terms & Conditions" {
		t.Fatalf("title = %q", doc.Metadata["title"])
	}
	if doc.Pages != 1 {
		t.Fatalf("pages = %d, want 1", doc.Pages)
	}

	var texts []string
	for _, l := range doc.Lines {
		if l.Page != 1 {
			t.Fatalf("line %q on page %d, want 1", l.Text, l.Page)
		}
		texts = append(texts, l.Text)
	}
	joined := strings.Join(texts, "|")
	for _, want := range []string{"Agreement", "First paragraph spans source lines.", "item one", "item two"} {
		if !strings.Contains(joined, want) {
			t.Errorf("lines %q missing %q", joined, want)
		}
	}
	if strings.Contains(joined, "not content") {
		t.Errorf("script content leaked into lines: %q", joined)
	}
}

func TestFromBytes_UnsupportedExtension(t *testing.T) {
	if _, err := FromBytes("notes.txt", []byte("plain")); err == nil {
		t.Fatal("expected error for unsupported extension")
	}
}

func TestPDF_Garbage(t *testing.T) {
	if _, err := PDF([]byte("definitely not a pdf")); err == nil {
		t.Fatal("expected error for non-PDF bytes")
	}
}

func TestSanitizeMetadataValue(t *testing.T) {
	if got := sanitizeMetadataValue("<script>alert(1)</script>Hello"); got != "scriptalert(1)/scriptHello" {
		t.Fatalf("got %q", got)
	}
	if got := sanitizeMetadataValue("Value\x00WithNull"); got != "ValueWithNull" {
		t.Fatalf("got %q", got)
	}
}
