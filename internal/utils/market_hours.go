package utils

import (
	"fmt"
	"time"
	_ "time/tzdata"
)

// SessionTimezone is the trading calendar timezone. Session boundaries and
// slot windows are evaluated in it regardless of the bar's own zone.
const SessionTimezone = "America/New_York"

var sessionLocation = mustLoadLocation(SessionTimezone)

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(fmt.Sprintf("failed to load timezone %s: %v", name, err))
	}

	return loc
}

// SessionLocation returns the trading calendar location.
func SessionLocation() *time.Location {
	return sessionLocation
}

// ToSessionTime converts t into the session timezone.
func ToSessionTime(t time.Time) time.Time {
	return t.In(sessionLocation)
}

// SessionDate is the YYYY-MM-DD trading date of t.
func SessionDate(t time.Time) string {
	return ToSessionTime(t).Format("2006-01-02")
}

// MinuteOfDay is hour*60+minute in the session timezone.
func MinuteOfDay(t time.Time) int {
	local := ToSessionTime(t)

	return local.Hour()*60 + local.Minute()
}

const (
	PremarketOpenMinute = 4 * 60
	RegularOpenMinute   = 9*60 + 30
	RegularCloseMinute  = 16 * 60
	LunchStartMinute    = 12 * 60
	LunchEndMinute      = 13 * 60
)

// IsPremarket reports 04:00 <= t < 09:30.
func IsPremarket(t time.Time) bool {
	m := MinuteOfDay(t)

	return m >= PremarketOpenMinute && m < RegularOpenMinute
}

// IsRegularSession reports 09:30 <= t <= 16:00. The closing minute is included.
func IsRegularSession(t time.Time) bool {
	local := ToSessionTime(t)
	m := local.Hour()*60 + local.Minute()

	if m == RegularCloseMinute {
		return local.Second() == 0 && local.Nanosecond() == 0
	}

	return m >= RegularOpenMinute && m < RegularCloseMinute
}

// MinutesSinceOpen can be negative before the open.
func MinutesSinceOpen(t time.Time) int {
	return MinuteOfDay(t) - RegularOpenMinute
}

// IsLunchHour reports the 12:00-12:59 hour.
func IsLunchHour(t time.Time) bool {
	m := MinuteOfDay(t)

	return m >= LunchStartMinute && m < LunchEndMinute
}

// ParseClock parses "HH:MM" into minutes after midnight.
func ParseClock(value string) (int, error) {
	parsed, err := time.Parse("15:04", value)
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q, expected HH:MM: %w", value, err)
	}

	return parsed.Hour()*60 + parsed.Minute(), nil
}

// Window is a time-of-day range in the session timezone, both ends inclusive.
// A window whose start is after its end wraps past midnight.
type Window struct {
	Start int
	End   int
}

// ParseWindow builds a window from two "HH:MM" values.
func ParseWindow(start, end string) (Window, error) {
	s, err := ParseClock(start)
	if err != nil {
		return Window{}, err
	}

	e, err := ParseClock(end)
	if err != nil {
		return Window{}, err
	}

	return Window{Start: s, End: e}, nil
}

// Contains reports whether t falls in the window.
func (w Window) Contains(t time.Time) bool {
	m := MinuteOfDay(t)

	if w.Start <= w.End {
		return m >= w.Start && m <= w.End
	}

	return m >= w.Start || m <= w.End
}

func (w Window) String() string {
	return fmt.Sprintf("%02d:%02d-%02d:%02d", w.Start/60, w.Start%60, w.End/60, w.End%60)
}
