package weeksheet

import (
	"errors"
	"strings"
	"time"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// AnchorWeekday marks the start of a business week. The anchor date itself is
// the week's Sunday; Monday is the day after it.
const AnchorWeekday = time.Sunday

// ErrNotAnchor is returned for a missing or non-Sunday week start.
var ErrNotAnchor = errors.New("Week start date must be a Sunday")

// DayIndex is a fixed slot in the week: 0=Monday … 6=Sunday.
type DayIndex int

const (
	Monday DayIndex = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// DayNames lists weekday names in DayIndex order.
var DayNames = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// Valid reports whether d is within Monday..Sunday.
func (d DayIndex) Valid() bool { return d >= Monday && d <= Sunday }

func (d DayIndex) String() string {
	if !d.Valid() {
		return "Unknown"
	}
	return DayNames[d]
}

// civil truncates t to a UTC-midnight calendar date.
func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(s))
}

// FormatDate returns "" for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// NormalizeToAnchor moves t back to the closest anchor weekday on or before it.
func NormalizeToAnchor(t time.Time) time.Time {
	d := civil(t)
	back := (int(d.Weekday()) - int(AnchorWeekday) + 7) % 7
	return d.AddDate(0, 0, -back)
}

// IsAnchor reports whether t is set and falls on the anchor weekday.
func IsAnchor(t time.Time) bool {
	return !t.IsZero() && t.Weekday() == AnchorWeekday
}

// ValidateAnchor returns ErrNotAnchor unless t is a set Sunday.
func ValidateAnchor(t time.Time) error {
	if !IsAnchor(t) {
		return ErrNotAnchor
	}
	return nil
}

// DayDate returns the calendar date of day: Monday is anchor+1 through
// Saturday at anchor+6, and Sunday is the anchor itself.
func DayDate(anchor time.Time, day DayIndex) time.Time {
	a := civil(anchor)
	if day == Sunday {
		return a
	}
	return a.AddDate(0, 0, int(day)+1)
}

// DayDates returns the seven dates of the week, indexed Monday..Sunday.
func DayDates(anchor time.Time) [7]time.Time {
	var out [7]time.Time
	for d := Monday; d <= Sunday; d++ {
		out[d] = DayDate(anchor, d)
	}
	return out
}

// DayOf maps a date back to its slot, or false if it lies outside the week.
func DayOf(anchor, date time.Time) (DayIndex, bool) {
	offset := int(civil(date).Sub(civil(anchor)).Hours() / 24)
	switch {
	case offset == 0:
		return Sunday, true
	case offset >= 1 && offset <= 6:
		return DayIndex(offset - 1), true
	default:
		return 0, false
	}
}

// InWeek reports whether date is within [anchor, anchor+6].
func InWeek(anchor, date time.Time) bool {
	_, ok := DayOf(anchor, date)
	return ok
}
