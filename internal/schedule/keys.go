// Package schedule decides which puzzle slots exist and makes sure each
// one gets exactly one level, idempotently, across cron runs and backfill
// batches.
package schedule

import (
	"fmt"
	"time"
)

// Cadence names a recurring puzzle slot family.
type Cadence string

const (
	CadenceDaily  Cadence = "daily"
	CadenceWeekly Cadence = "weekly"
)

// ParseCadence validates a cadence string.
func ParseCadence(s string) (Cadence, error) {
	switch Cadence(s) {
	case CadenceDaily, CadenceWeekly:
		return Cadence(s), nil
	}
	return "", fmt.Errorf("unknown cadence %q", s)
}

// DayKey returns the daily cadence key for t in UTC: YYYY-MM-DD.
func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// WeekKey returns the ISO-week cadence key for t in UTC: YYYY-Www.
func WeekKey(t time.Time) string {
	year, week := t.UTC().ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}

// KeyFor picks the cadence key for t.
func KeyFor(c Cadence, t time.Time) string {
	if c == CadenceWeekly {
		return WeekKey(t)
	}
	return DayKey(t)
}

// ParseDay validates a daily cadence key and returns its date.
func ParseDay(key string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", key, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad day key %q: %w", key, err)
	}
	return t, nil
}

// ParseWeek validates a weekly cadence key. The returned time is the
// Monday of that ISO week.
func ParseWeek(key string) (time.Time, error) {
	var year, week int
	if _, err := fmt.Sscanf(key, "%4d-W%2d", &year, &week); err != nil {
		return time.Time{}, fmt.Errorf("bad week key %q", key)
	}
	if week < 1 || week > 53 {
		return time.Time{}, fmt.Errorf("bad week key %q: week out of range", key)
	}

	// January 4th is always in ISO week 1; walk back to its Monday.
	jan4 := time.Date(year, 1, 4, 0, 0, 0, 0, time.UTC)
	monday := jan4.AddDate(0, 0, -(int(jan4.Weekday())+6)%7)
	t := monday.AddDate(0, 0, (week-1)*7)

	if WeekKey(t) != key {
		return time.Time{}, fmt.Errorf("bad week key %q: year has no such week", key)
	}
	return t, nil
}

// ParseKey validates a cadence key against its cadence.
func ParseKey(c Cadence, key string) (time.Time, error) {
	if c == CadenceWeekly {
		return ParseWeek(key)
	}
	return ParseDay(key)
}

// KeysInRange lists every cadence key between from and to inclusive, in
// chronological order. For the weekly cadence duplicate week keys inside
// the range collapse to one.
func KeysInRange(c Cadence, from, to time.Time) []string {
	from, to = from.UTC(), to.UTC()
	if to.Before(from) {
		return nil
	}

	var keys []string
	seen := make(map[string]bool)
	step := 24 * time.Hour
	for t := from; !t.After(to); t = t.Add(step) {
		key := KeyFor(c, t)
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	return keys
}
