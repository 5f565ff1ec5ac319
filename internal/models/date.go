package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// DateFormat is the wire format for calendar dates.
const DateFormat = "2006-01-02"

// TimestampFormat is the format used for soft-delete and restore stamps.
const TimestampFormat = "2006-01-02 15:04:05"

// DateOnly is a calendar date without a time component. It serializes as
// yyyy-MM-dd and stores as a SQL date.
type DateOnly struct {
	time.Time
}

// NewDateOnly truncates t to its date component.
func NewDateOnly(t time.Time) DateOnly {
	return DateOnly{Time: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}

// MarshalJSON renders the date as a yyyy-MM-dd string.
func (d DateOnly) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(DateFormat) + `"`), nil
}

// UnmarshalJSON parses a yyyy-MM-dd string.
func (d *DateOnly) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "" || raw == "null" {
		d.Time = time.Time{}
		return nil
	}
	t, err := time.Parse(DateFormat, raw)
	if err != nil {
		return fmt.Errorf("invalid date %q, expected yyyy-MM-dd: %w", raw, err)
	}
	d.Time = t
	return nil
}

// Value implements driver.Valuer.
func (d DateOnly) Value() (driver.Value, error) {
	return d.Time, nil
}

// Scan implements sql.Scanner.
func (d *DateOnly) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		d.Time = time.Time{}
		return nil
	case time.Time:
		*d = NewDateOnly(v)
		return nil
	case []byte:
		return d.parse(string(v))
	case string:
		return d.parse(v)
	default:
		return fmt.Errorf("cannot scan %T into DateOnly", src)
	}
}

func (d *DateOnly) parse(raw string) error {
	if len(raw) > len(DateFormat) {
		raw = raw[:len(DateFormat)]
	}
	t, err := time.Parse(DateFormat, raw)
	if err != nil {
		return fmt.Errorf("scan date %q: %w", raw, err)
	}
	d.Time = t
	return nil
}
