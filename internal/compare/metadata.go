package compare

import "sort"

// MetadataDiff is one document-metadata field whose values differ.
type MetadataDiff struct {
	Field  string `json:"field"`
	ValueA string `json:"value_a"`
	ValueB string `json:"value_b"`
}

// CompareMetadata returns the metadata fields that differ between two
// documents, sorted by field name so the output is stable. Fields
// missing on one side compare as the empty string.
func CompareMetadata(a, b map[string]string) []MetadataDiff {
	keys := make(map[string]struct{}, len(a)+len(b))
	for k := range a {
		keys[k] = struct{}{}
	}
	for k := range b {
		keys[k] = struct{}{}
	}

	sorted := make([]string, 0, len(keys))
	for k := range keys {
		sorted = append(sorted, k)
	}
	sort.Strings(sorted)

	var diffs []MetadataDiff
	for _, k := range sorted {
		if a[k] != b[k] {
			diffs = append(diffs, MetadataDiff{Field: k, ValueA: a[k], ValueB: b[k]})
		}
	}
	return diffs
}
