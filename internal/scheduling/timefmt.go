package scheduling

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"medibook/internal/models"
)

// NormalizeTime converts a stored or requested time-of-day to the canonical
// zero-padded "HH:MM" form. Seconds, fractions and zone suffixes are dropped,
// and full timestamps ("2025-01-01T10:00:00Z", "2025-01-01 10:00:00") keep only
// their clock part. Every time comparison in the service goes through here.
func NormalizeTime(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if i := strings.LastIndexAny(s, "T "); i >= 0 {
		s = s[i+1:]
	}

	parts := strings.SplitN(s, ":", 3)
	if len(parts) < 2 {
		return "", fmt.Errorf("%w: %q", ErrInvalidTime, raw)
	}

	hour, err := parseDigits(parts[0], 1, 2)
	if err != nil || hour > 23 {
		return "", fmt.Errorf("%w: %q", ErrInvalidTime, raw)
	}

	minutePart := parts[1]
	if len(minutePart) > 2 {
		minutePart = minutePart[:2]
	}
	minute, err := parseDigits(minutePart, 2, 2)
	if err != nil || minute > 59 {
		return "", fmt.Errorf("%w: %q", ErrInvalidTime, raw)
	}

	return fmt.Sprintf("%02d:%02d", hour, minute), nil
}

func parseDigits(s string, minLen, maxLen int) (int, error) {
	if len(s) < minLen || len(s) > maxLen {
		return 0, fmt.Errorf("bad length %d", len(s))
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("non-digit %q", r)
		}
	}
	return strconv.Atoi(s)
}

// ClockMinutes returns minutes since midnight for a time-of-day.
func ClockMinutes(raw string) (int, error) {
	norm, err := NormalizeTime(raw)
	if err != nil {
		return 0, err
	}
	h, _ := strconv.Atoi(norm[:2])
	m, _ := strconv.Atoi(norm[3:])
	return h*60 + m, nil
}

// FormatClock renders minutes since midnight as "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ParseDate parses a strict "YYYY-MM-DD" calendar date.
func ParseDate(raw string) (time.Time, error) {
	d, err := time.Parse(models.DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
	}
	return d, nil
}

// Moment combines a date and a time-of-day into an instant in the operating timezone.
func Moment(date, clock string, loc *time.Location) (time.Time, error) {
	d, err := ParseDate(date)
	if err != nil {
		return time.Time{}, err
	}
	minutes, err := ClockMinutes(clock)
	if err != nil {
		return time.Time{}, err
	}
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(d.Year(), d.Month(), d.Day(), minutes/60, minutes%60, 0, 0, loc), nil
}
