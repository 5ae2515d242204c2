package models

import (
	"encoding/json"
	"strings"
	"time"
)

// LocalDate is a calendar date without a zone. Timestamps are truncated to their UTC date.
type LocalDate struct {
	Year  int
	Month time.Month
	Day   int
}

func NewLocalDate(t time.Time) LocalDate {
	year, month, day := t.UTC().Date()
	return LocalDate{year, month, day}
}

// ParseLocalDate accepts YYYY-MM-DD or an RFC 3339 timestamp.
func ParseLocalDate(v string) (LocalDate, error) {
	v = strings.TrimSpace(v)
	if t, err := time.Parse(time.DateOnly, v); err == nil {
		return NewLocalDate(t), nil
	}

	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return LocalDate{}, err
	}
	return NewLocalDate(t), nil
}

func (ld LocalDate) String() string {
	return ld.Time().Format(time.DateOnly)
}

func (ld LocalDate) Time() time.Time {
	return time.Date(ld.Year, ld.Month, ld.Day, 0, 0, 0, 0, time.UTC)
}

func (ld LocalDate) Before(other LocalDate) bool {
	return ld.Time().Before(other.Time())
}

func (ld LocalDate) IsZero() bool {
	return ld == LocalDate{}
}

func (ld LocalDate) MarshalJSON() ([]byte, error) {
	return json.Marshal(ld.String())
}

func (ld *LocalDate) UnmarshalJSON(data []byte) error {
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if strings.TrimSpace(v) == "" {
		*ld = LocalDate{}
		return nil
	}

	parsed, err := ParseLocalDate(v)
	if err != nil {
		return err
	}

	*ld = parsed
	return nil
}
