package compare

import (
	"strings"
	"unicode"

	"github.com/RobinCoderZhao/pdfcompare/pkg/textmatch"
)

// tokenizeWords splits a line into alternating word and whitespace-run
// tokens. Whitespace runs are tokens in their own right, so joining the
// tokens reproduces the line byte for byte.
func tokenizeWords(s string) []string {
	var tokens []string
	start := 0
	inSpace := false
	for i, r := range s {
		isSpace := unicode.IsSpace(r)
		if i > 0 && isSpace != inSpace {
			tokens = append(tokens, s[start:i])
			start = i
		}
		inSpace = isSpace
	}
	if start < len(s) {
		tokens = append(tokens, s[start:])
	}
	return tokens
}

// wordSpans refines a single-line replacement down to word-level edits
// using the same matcher that produced the line diff. Concatenating the
// equal+delete spans reconstructs left exactly; equal+insert spans
// reconstruct right.
func wordSpans(left, right string) []WordSpan {
	leftToks := tokenizeWords(left)
	rightToks := tokenizeWords(right)

	var spans []WordSpan
	emit := func(text string, tag textmatch.Tag) {
		if text == "" {
			return
		}
		if n := len(spans); n > 0 && spans[n-1].Tag == tag {
			spans[n-1].Text += text
			return
		}
		spans = append(spans, WordSpan{Text: text, Tag: tag})
	}

	for _, op := range textmatch.OpCodes(leftToks, rightToks) {
		switch op.Tag {
		case textmatch.Equal:
			emit(strings.Join(leftToks[op.I1:op.I2], ""), textmatch.Equal)
		case textmatch.Delete:
			emit(strings.Join(leftToks[op.I1:op.I2], ""), textmatch.Delete)
		case textmatch.Insert:
			emit(strings.Join(rightToks[op.J1:op.J2], ""), textmatch.Insert)
		case textmatch.Replace:
			emit(strings.Join(leftToks[op.I1:op.I2], ""), textmatch.Delete)
			emit(strings.Join(rightToks[op.J1:op.J2], ""), textmatch.Insert)
		}
	}
	return spans
}
