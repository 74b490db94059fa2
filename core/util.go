package core

import "strings"

// MaxInQueryValues is the document store's cap on values per membership ("in") query.
const MaxInQueryValues = 10

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// CleanEmail normalises an email address used as a document key.
func CleanEmail(email string) string {
	return CleanString(email, true /* lower */)
}

// CompactStrings drops blank entries and duplicates, keeping the first occurrence of each value.
// The result is never nil.
func CompactStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = CleanString(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Chunk splits values into consecutive batches of at most `size` elements.
func Chunk(values []string, size int) [][]string {
	if size <= 0 {
		size = MaxInQueryValues
	}
	chunks := make([][]string, 0, (len(values)+size-1)/size)
	for start := 0; start < len(values); start += size {
		end := start + size
		if end > len(values) {
			end = len(values)
		}
		chunks = append(chunks, values[start:end])
	}
	return chunks
}

// SplitList splits a comma-separated string, trimming every item and dropping blanks.
func SplitList(s string) []string {
	var items []string
	for _, item := range strings.Split(s, ",") {
		if item = CleanString(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
