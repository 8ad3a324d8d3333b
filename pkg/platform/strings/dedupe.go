// Package strings provides string manipulation utilities.
package strings

import (
	"strings"
)

// SplitList splits raw on sep, trims each element and drops empty and repeated
// entries. Order of first occurrence is preserved.
//
//	SplitList(" k1:9092, k2:9092,,k1:9092", ",")
//	// Returns: []string{"k1:9092", "k2:9092"}
func SplitList(raw, sep string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return DedupeAndTrim(strings.Split(raw, sep))
}

// DedupeAndTrim removes duplicates and empty strings from a slice,
// trimming whitespace from each element.
func DedupeAndTrim(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	return result
}
