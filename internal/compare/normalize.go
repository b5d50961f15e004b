package compare

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ErrInvalidConfiguration marks comparison options that are rejected
// before any diff work starts: an over-long regex pattern, a pattern
// that does not compile, negative header/footer strip counts, or strip
// counts that would consume an entire page.
var ErrInvalidConfiguration = errors.New("invalid comparison configuration")

// MaxPatternLength bounds user-supplied ignore patterns. Bounding the
// pattern size is a cheap mitigation against pathological expressions
// long before they reach the matcher.
const MaxPatternLength = 500

// regexBudget caps the total wall-clock time the ignore pattern may
// spend matching across one document. Go's regexp is guaranteed linear
// in the input, so in practice this never trips; it exists so a future
// engine swap cannot stall a request. When exhausted, the rule stops
// applying to the remaining lines (fail open) and a warning is recorded.
const regexBudget = 2 * time.Second

// StripHeaderFooter drops the first and last N lines of every page
// before comparison, to remove repeated boilerplate.
type StripHeaderFooter struct {
	LinesFromTop    int `json:"lines_from_top" yaml:"lines_from_top"`
	LinesFromBottom int `json:"lines_from_bottom" yaml:"lines_from_bottom"`
}

func (s StripHeaderFooter) enabled() bool {
	return s.LinesFromTop > 0 || s.LinesFromBottom > 0
}

// IgnoreRules configures normalization. Rules apply in a fixed order —
// collapse whitespace, fold case, strip headers/footers, drop regex
// matches — so the result is deterministic regardless of which subset
// is enabled.
type IgnoreRules struct {
	CollapseWhitespace bool              `json:"collapse_whitespace" yaml:"collapse_whitespace"`
	IgnoreCase         bool              `json:"ignore_case" yaml:"ignore_case"`
	StripHeaderFooter  StripHeaderFooter `json:"strip_header_footer" yaml:"strip_header_footer"`
	IgnoreRegex        string            `json:"ignore_regex,omitempty" yaml:"ignore_regex"`
}

// Validate rejects rule sets that must abort the comparison. It covers
// everything checkable without the document; per-page strip bounds are
// checked during Normalize, which still runs before any diffing.
func (r IgnoreRules) Validate() error {
	if len(r.IgnoreRegex) > MaxPatternLength {
		return fmt.Errorf("%w: ignore pattern exceeds %d characters", ErrInvalidConfiguration, MaxPatternLength)
	}
	if r.IgnoreRegex != "" {
		if _, err := regexp.Compile(r.IgnoreRegex); err != nil {
			return fmt.Errorf("%w: ignore pattern does not compile: %v", ErrInvalidConfiguration, err)
		}
	}
	if r.StripHeaderFooter.LinesFromTop < 0 || r.StripHeaderFooter.LinesFromBottom < 0 {
		return fmt.Errorf("%w: header/footer strip counts must not be negative", ErrInvalidConfiguration)
	}
	return nil
}

// NormalizedLine is the comparison view of one source line. Key is the
// text after transforms and is what gets diffed; Display keeps the
// untouched original for rendering; Index is the position in the
// original sequence, which stays valid for page lookup even after
// filtering rules removed neighboring lines.
type NormalizedLine struct {
	Key     string
	Display string
	Index   int
}

// Normalize applies the rule set to a line sequence. The returned
// Index fields form a strictly increasing map from normalized position
// back to original position. Normalizing an already-normalized
// sequence with the same rules is a no-op.
func Normalize(lines []Line, rules IgnoreRules) ([]NormalizedLine, []string, error) {
	if err := rules.Validate(); err != nil {
		return nil, nil, err
	}

	drop, err := headerFooterDrops(lines, rules.StripHeaderFooter)
	if err != nil {
		return nil, nil, err
	}

	var pattern *regexp.Regexp
	if rules.IgnoreRegex != "" {
		// Anchor the validated pattern so a line is dropped only when
		// it matches in full, like the upload form promises.
		pattern = regexp.MustCompile(`\A(?:` + rules.IgnoreRegex + `)\z`)
	}

	var warnings []string
	var spent time.Duration
	budgetBlown := false

	out := make([]NormalizedLine, 0, len(lines))
	for i, line := range lines {
		key := line.Text
		if rules.CollapseWhitespace {
			key = strings.Join(strings.Fields(key), " ")
		}
		if rules.IgnoreCase {
			key = strings.ToLower(key)
		}
		if drop[i] {
			continue
		}
		if pattern != nil && !budgetBlown {
			start := time.Now()
			matched := pattern.MatchString(key)
			spent += time.Since(start)
			if spent > regexBudget {
				budgetBlown = true
				warnings = append(warnings, fmt.Sprintf(
					"ignore pattern exceeded its %s matching budget; remaining lines were not filtered", regexBudget))
			}
			if matched {
				continue
			}
		}
		out = append(out, NormalizedLine{Key: key, Display: line.Text, Index: i})
	}
	return out, warnings, nil
}

// headerFooterDrops marks, per original index, the lines removed by the
// strip rule. Pages are taken as maximal runs of the same page number.
func headerFooterDrops(lines []Line, strip StripHeaderFooter) (map[int]bool, error) {
	drop := make(map[int]bool)
	if !strip.enabled() {
		return drop, nil
	}

	start := 0
	for start < len(lines) {
		end := start + 1
		for end < len(lines) && lines[end].Page == lines[start].Page {
			end++
		}
		pageLen := end - start
		if strip.LinesFromTop+strip.LinesFromBottom >= pageLen {
			return nil, fmt.Errorf("%w: stripping %d+%d lines exceeds page %d length (%d lines)",
				ErrInvalidConfiguration, strip.LinesFromTop, strip.LinesFromBottom, lines[start].Page, pageLen)
		}
		for i := 0; i < strip.LinesFromTop; i++ {
			drop[start+i] = true
		}
		for i := 0; i < strip.LinesFromBottom; i++ {
			drop[end-1-i] = true
		}
		start = end
	}
	return drop, nil
}
