package validation

import (
	"strings"
	"time"
)

// IsNotEmpty checks if string is not empty after trimming
func IsNotEmpty(s string) bool {
	return strings.TrimSpace(s) != ""
}

// TrimAndValidate trims string and validates it's not empty
func TrimAndValidate(s string) (string, bool) {
	trimmed := strings.TrimSpace(s)
	return trimmed, trimmed != ""
}

// IsValidTimezone reports whether tz names a loadable IANA zone
func IsValidTimezone(tz string) bool {
	tz, ok := TrimAndValidate(tz)
	if !ok {
		return false
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}
