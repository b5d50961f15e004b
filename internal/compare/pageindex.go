package compare

// PageIndex maps an original line index to its 1-based source page in
// O(1), built once per side before diffing.
type PageIndex []int

// BuildPageIndex precomputes the line→page table over the original
// (pre-normalization) line sequence. Lines without a page number
// inherit the page of the preceding line, defaulting to 1, which
// mirrors how extraction tags lines in the first place.
func BuildPageIndex(lines []Line) PageIndex {
	idx := make(PageIndex, len(lines))
	current := 1
	for i, line := range lines {
		if line.Page > 0 {
			current = line.Page
		}
		idx[i] = current
	}
	return idx
}

// PageOf returns the page for an original line index, or 0 when the
// index is out of range.
func (p PageIndex) PageOf(i int) int {
	if i < 0 || i >= len(p) {
		return 0
	}
	return p[i]
}
