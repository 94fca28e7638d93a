package remotelist

import "strings"

// Filter returns the items whose designated text fields contain term,
// ignoring case. An empty term matches everything. The input slice is not
// modified; the result is always a new slice.
func Filter[T any](items []T, term string, fields []string, text func(T, string) (string, bool)) []T {
	out := make([]T, 0, len(items))
	if term == "" {
		return append(out, items...)
	}
	needle := strings.ToLower(term)
	for _, it := range items {
		if matches(it, needle, fields, text) {
			out = append(out, it)
		}
	}
	return out
}

func matches[T any](it T, needle string, fields []string, text func(T, string) (string, bool)) bool {
	for _, f := range fields {
		v, ok := text(it, f)
		if ok && strings.Contains(strings.ToLower(v), needle) {
			return true
		}
	}
	return false
}
