package timezone

import (
	"strings"
	"time"
)

var offsetFormats = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05-0700", // Without colon
	"2006-01-02 15:04:05Z07:00",
}

// Provider timestamps are usually airport local time without an offset.
var localFormats = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// Parse reads a provider timestamp. Values without an offset are read as UTC.
func Parse(value string) (time.Time, error) {
	value = strings.TrimSpace(value)

	for _, format := range offsetFormats {
		if t, err := time.Parse(format, value); err == nil {
			return t, nil
		}
	}

	for _, format := range localFormats {
		if t, err := time.Parse(format, value); err == nil {
			return t, nil
		}
	}

	return time.Time{}, &time.ParseError{
		Value:   value,
		Message: "unable to parse time string",
	}
}

// ParseOrZero is Parse with the zero time as the fallback.
func ParseOrZero(value string) time.Time {
	t, err := Parse(value)
	if err != nil {
		return time.Time{}
	}
	return t
}
