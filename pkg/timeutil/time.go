package timeutil

import "time"

// DateLayout is the YYYY-MM-DD wire format used for mandate and billing dates
const DateLayout = "2006-01-02"

// Now returns the current time in UTC
// Always use this instead of time.Now() to ensure timezone consistency
func Now() time.Time {
	return time.Now().UTC()
}

// Today returns the current calendar date formatted as YYYY-MM-DD
func Today() string {
	return Now().Format(DateLayout)
}

// DaysFromNow returns the date n days from today formatted as YYYY-MM-DD
func DaysFromNow(n int) string {
	return Now().AddDate(0, 0, n).Format(DateLayout)
}

// ParseDate parses a YYYY-MM-DD date string and returns a UTC time
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// StartOfDay returns the start of the day (midnight) in UTC
func StartOfDay(t time.Time) time.Time {
	year, month, day := t.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
