package db

import "strings"

// Substrings postgres and sqlite use to report duplicate-key failures.
var uniqueViolationMarkers = []string{
	"duplicate key value",
	"UNIQUE constraint failed",
}

// IsUniqueViolation reports whether err looks like a unique constraint
// violation. When constraintName is given, only that constraint counts.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if constraintName != "" {
		return strings.Contains(msg, constraintName)
	}
	for _, marker := range uniqueViolationMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
