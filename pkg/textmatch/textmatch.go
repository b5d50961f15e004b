// Package textmatch implements sequence matching for text comparison.
// It finds longest contiguous matching blocks between two token sequences
// (Ratcliff/Obershelp) and derives edit opcodes from them, the same way
// Python's difflib does — but with no junk heuristics, so highly repetitive
// documents still produce the true longest match.
//
// The matcher is generic over the token type: the same algorithm serves
// line-level diffing ([]string of lines) and word-level diffing ([]string
// of word and whitespace tokens).
package textmatch

import (
	"fmt"
	"sort"
)

// Tag classifies a single edit operation.
type Tag uint8

const (
	// Equal means the ranges are identical in both sequences.
	Equal Tag = iota
	// Insert means the range exists only in sequence B.
	Insert
	// Delete means the range exists only in sequence A.
	Delete
	// Replace means both ranges are non-empty but differ.
	Replace
)

// String returns the lowercase label for the tag.
func (t Tag) String() string {
	switch t {
	case Equal:
		return "equal"
	case Insert:
		return "insert"
	case Delete:
		return "delete"
	case Replace:
		return "replace"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the tag as its lowercase label.
func (t Tag) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

// UnmarshalJSON decodes a lowercase label back into a tag.
func (t *Tag) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `"equal"`:
		*t = Equal
	case `"insert"`:
		*t = Insert
	case `"delete"`:
		*t = Delete
	case `"replace"`:
		*t = Replace
	default:
		return fmt.Errorf("textmatch: unknown tag %s", data)
	}
	return nil
}

// OpCode describes one edit operation over contiguous ranges of both
// sequences. Ranges use half-open [start, end) indexing. Concatenating
// the opcodes of a full comparison covers [0, len(A)) and [0, len(B))
// exactly once each, in order.
type OpCode struct {
	Tag            Tag
	I1, I2, J1, J2 int
}

// Match is a maximal run A[A:A+Size) == B[B:B+Size).
type Match struct {
	A, B, Size int
}

// Matcher compares two token sequences. It holds no mutable state after
// construction and is safe for concurrent use.
type Matcher[T comparable] struct {
	a, b []T
	b2j  map[T][]int
}

// NewMatcher builds a matcher over a and b. Construction indexes every
// token of b by value, O(len(b)).
func NewMatcher[T comparable](a, b []T) *Matcher[T] {
	m := &Matcher[T]{a: a, b: b, b2j: make(map[T][]int, len(b))}
	for j, tok := range b {
		m.b2j[tok] = append(m.b2j[tok], j)
	}
	return m
}

// longestMatch finds the longest matching block within a[alo:ahi] and
// b[blo:bhi]. Ties break toward the lowest a index, then the lowest b
// index; the i-ascending outer loop and j-ascending posting lists give
// that ordering for free because a candidate only wins on a strictly
// greater length. This tie-break is what makes the whole diff
// deterministic when several longest matches exist.
func (m *Matcher[T]) longestMatch(alo, ahi, blo, bhi int) Match {
	bestI, bestJ, bestSize := alo, blo, 0
	runs := make(map[int]int)
	for i := alo; i < ahi; i++ {
		next := make(map[int]int)
		for _, j := range m.b2j[m.a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := runs[j-1] + 1
			next[j] = k
			if k > bestSize {
				bestI, bestJ, bestSize = i-k+1, j-k+1, k
			}
		}
		runs = next
	}
	return Match{A: bestI, B: bestJ, Size: bestSize}
}

// MatchingBlocks returns all maximal matching blocks in order of their
// position in A, terminated by a zero-size sentinel at (len(a), len(b)).
// Adjacent blocks are coalesced.
func (m *Matcher[T]) MatchingBlocks() []Match {
	type span struct{ alo, ahi, blo, bhi int }
	queue := []span{{0, len(m.a), 0, len(m.b)}}
	var blocks []Match
	for len(queue) > 0 {
		s := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		match := m.longestMatch(s.alo, s.ahi, s.blo, s.bhi)
		if match.Size == 0 {
			continue
		}
		blocks = append(blocks, match)
		if s.alo < match.A && s.blo < match.B {
			queue = append(queue, span{s.alo, match.A, s.blo, match.B})
		}
		if match.A+match.Size < s.ahi && match.B+match.Size < s.bhi {
			queue = append(queue, span{match.A + match.Size, s.ahi, match.B + match.Size, s.bhi})
		}
	}
	sort.Slice(blocks, func(i, j int) bool { return blocks[i].A < blocks[j].A })

	merged := blocks[:0]
	var cur Match
	for _, b := range blocks {
		if cur.Size > 0 && cur.A+cur.Size == b.A && cur.B+cur.Size == b.B {
			cur.Size += b.Size
			continue
		}
		if cur.Size > 0 {
			merged = append(merged, cur)
		}
		cur = b
	}
	if cur.Size > 0 {
		merged = append(merged, cur)
	}
	return append(merged, Match{A: len(m.a), B: len(m.b)})
}

// OpCodes returns the ordered edit operations transforming A into B.
func (m *Matcher[T]) OpCodes() []OpCode {
	var codes []OpCode
	i, j := 0, 0
	for _, b := range m.MatchingBlocks() {
		var tag Tag
		switch {
		case i < b.A && j < b.B:
			tag = Replace
		case i < b.A:
			tag = Delete
		case j < b.B:
			tag = Insert
		}
		if i < b.A || j < b.B {
			codes = append(codes, OpCode{Tag: tag, I1: i, I2: b.A, J1: j, J2: b.B})
		}
		i, j = b.A+b.Size, b.B+b.Size
		if b.Size > 0 {
			codes = append(codes, OpCode{Tag: Equal, I1: b.A, I2: i, J1: b.B, J2: j})
		}
	}
	return codes
}

// Ratio returns a similarity measure in [0, 1]: twice the number of
// matched tokens over the total token count. Identical sequences (and
// two empty sequences) score 1.
func (m *Matcher[T]) Ratio() float64 {
	total := len(m.a) + len(m.b)
	if total == 0 {
		return 1.0
	}
	matched := 0
	for _, b := range m.MatchingBlocks() {
		matched += b.Size
	}
	return 2.0 * float64(matched) / float64(total)
}

// OpCodes is a convenience wrapper constructing a one-shot matcher.
func OpCodes[T comparable](a, b []T) []OpCode {
	return NewMatcher(a, b).OpCodes()
}
