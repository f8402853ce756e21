package model

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04:05"
)

// Date is a calendar day stored as YYYY-MM-DD. The wrapped time is always midnight UTC.
type Date struct{ time.Time }

func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar day t falls on in its own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

func ParseDate(raw string) (Date, error) {
	raw = strings.TrimSpace(raw)
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", raw, err)
	}
	return Date{t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) Before(other Date) bool { return d.Time.Before(other.Time) }
func (d Date) After(other Date) bool  { return d.Time.After(other.Time) }
func (d Date) Equal(other Date) bool  { return d.Time.Equal(other.Time) }

// At combines the day with a wall clock time in loc.
func (d Date) At(c Clock, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	h, m, s := c.Clock()
	return time.Date(d.Year(), d.Month(), d.Day(), h, m, s, 0, loc)
}

func (d *Date) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*d = Date{}
		return nil
	case time.Time:
		*d = DateOf(v)
		return nil
	case string:
		return d.scanText(v)
	case []byte:
		return d.scanText(string(v))
	default:
		return fmt.Errorf("scan date: unsupported type %T", value)
	}
}

func (d *Date) scanText(raw string) error {
	// Drivers may hand back a full timestamp for DATE columns.
	if len(raw) > len(DateLayout) {
		raw = raw[:len(DateLayout)]
	}
	parsed, err := ParseDate(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.String(), nil
}

func (Date) GormDataType() string { return "date" }

func (Date) GormDBDataType(*gorm.DB, *schema.Field) string { return "date" }

// Clock is a time of day stored as HH:MM:SS. A set Clock lives on day 0000-01-01 so that midnight
// is distinguishable from the zero value.
type Clock struct{ time.Time }

func NewClock(hour, minute, second int) Clock {
	return Clock{time.Date(0, time.January, 1, hour, minute, second, 0, time.UTC)}
}

// ParseClock accepts HH:MM and HH:MM:SS.
func ParseClock(raw string) (Clock, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{"15:04", ClockLayout} {
		if t, err := time.Parse(layout, raw); err == nil {
			return NewClock(t.Clock()), nil
		}
	}
	return Clock{}, fmt.Errorf("parse time %q: expected HH:MM", raw)
}

func (c Clock) String() string {
	if c.IsZero() {
		return ""
	}
	return c.Format("15:04")
}

func (c Clock) Before(other Clock) bool { return c.Time.Before(other.Time) }
func (c Clock) After(other Clock) bool  { return c.Time.After(other.Time) }
func (c Clock) Equal(other Clock) bool  { return c.Time.Equal(other.Time) }

func (c *Clock) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*c = Clock{}
		return nil
	case time.Time:
		*c = NewClock(v.Clock())
		return nil
	case string:
		return c.scanText(v)
	case []byte:
		return c.scanText(string(v))
	default:
		return fmt.Errorf("scan time: unsupported type %T", value)
	}
}

func (c *Clock) scanText(raw string) error {
	// Strip fractional seconds and zone suffixes.
	if len(raw) > len(ClockLayout) {
		raw = raw[:len(ClockLayout)]
	}
	parsed, err := ParseClock(raw)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func (c Clock) Value() (driver.Value, error) {
	if c.IsZero() {
		return nil, nil
	}
	return c.Format(ClockLayout), nil
}

// GormDataType must not be "time": gorm reserves that name for timestamps.
func (Clock) GormDataType() string { return "clock" }

func (Clock) GormDBDataType(*gorm.DB, *schema.Field) string { return "time" }
