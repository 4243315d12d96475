package cron

import (
	"fmt"
	"time"
)

// Schedule decides when a job is next due.
type Schedule interface {
	// Next returns the first activation strictly after t, in t's location.
	Next(t time.Time) time.Time
	String() string
}

type every struct {
	interval time.Duration
}

// Every fires on wall-clock multiples of d, e.g. Every(5*time.Minute) at :00,
// :05, :10.
func Every(d time.Duration) Schedule {
	if d <= 0 {
		d = time.Minute
	}
	return every{interval: d}
}

func (e every) Next(t time.Time) time.Time {
	_, offset := t.Zone()
	shift := time.Duration(offset) * time.Second
	return t.Add(shift).Truncate(e.interval).Add(e.interval).Add(-shift)
}

func (e every) String() string {
	return "every " + e.interval.String()
}

type daily struct {
	hour, minute int
}

// Daily fires once a day at hour:minute.
func Daily(hour, minute int) Schedule {
	return daily{hour: hour, minute: minute}
}

func (d daily) Next(t time.Time) time.Time {
	next := time.Date(t.Year(), t.Month(), t.Day(), d.hour, d.minute, 0, 0, t.Location())
	if !next.After(t) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

func (d daily) String() string {
	return fmt.Sprintf("daily at %02d:%02d", d.hour, d.minute)
}

type weekly struct {
	day          time.Weekday
	hour, minute int
}

// Weekly fires once a week on day at hour:minute.
func Weekly(day time.Weekday, hour, minute int) Schedule {
	return weekly{day: day, hour: hour, minute: minute}
}

func (w weekly) Next(t time.Time) time.Time {
	daysAhead := (int(w.day) - int(t.Weekday()) + 7) % 7
	next := time.Date(t.Year(), t.Month(), t.Day()+daysAhead, w.hour, w.minute, 0, 0, t.Location())
	if !next.After(t) {
		next = next.AddDate(0, 0, 7)
	}
	return next
}

func (w weekly) String() string {
	return fmt.Sprintf("weekly on %s at %02d:%02d", w.day, w.hour, w.minute)
}
