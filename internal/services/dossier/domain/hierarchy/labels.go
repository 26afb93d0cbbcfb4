package hierarchy

import "strings"

// parseLabel resolves a label in either its short ("TANK") or prefixed
// ("UNIT_TYPE_TANK") form, ignoring case and surrounding whitespace.
func parseLabel[T comparable](value, prefix string, labels map[string]T) (T, bool) {
	var zero T
	trimmed := strings.ToUpper(strings.TrimSpace(value))
	if trimmed == "" {
		return zero, false
	}
	trimmed = strings.TrimPrefix(trimmed, prefix)
	result, ok := labels[trimmed]
	return result, ok
}

// invert builds a label lookup from an enum-to-label table.
func invert[T comparable](table map[T]string) map[string]T {
	out := make(map[string]T, len(table))
	for value, label := range table {
		out[label] = value
	}
	return out
}
