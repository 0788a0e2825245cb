package utils

import (
	"strconv"
	"strings"
	"time"
)

// Layouts used by the upstream provider.
const (
	DateLayout        = "2006-01-02"
	DateTimeLayout    = "2006-01-02 15:04:05"
	CompactTimeLayout = "20060102T150405"
)

// ParseFloat parses a numeric string defensively. Empty strings and the
// provider's "None"/"-" placeholders yield nil instead of an error.
func ParseFloat(value string) *float64 {
	value = strings.TrimSpace(value)
	if value == "" || value == "None" || value == "-" {
		return nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil
	}
	return &f
}

// ParseInt64 parses an integer string defensively. Values with a fractional
// part are truncated, matching how the provider formats volumes.
func ParseInt64(value string) *int64 {
	f := ParseFloat(value)
	if f == nil {
		return nil
	}
	i := int64(*f)
	return &i
}

// ParseDate parses a YYYY-MM-DD date string.
func ParseDate(value string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(value))
}

// ParseDateTime parses a "YYYY-MM-DD HH:MM:SS" timestamp string.
func ParseDateTime(value string) (time.Time, error) {
	return time.Parse(DateTimeLayout, strings.TrimSpace(value))
}

// ParseCompactTime parses the provider's news timestamp format,
// e.g. "20251229T143000".
func ParseCompactTime(value string) *time.Time {
	t, err := time.Parse(CompactTimeLayout, strings.TrimSpace(value))
	if err != nil {
		return nil
	}
	return &t
}
