// Package utils holds small helpers shared across packages.
package utils

import "strings"

// ParseCSV splits a comma separated list into trimmed, non-empty values.
// Returns nil when nothing is left.
func ParseCSV(s string) []string {
	var result []string
	for _, v := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
