package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// A calendar date without time of day or location.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf returns the date of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses a GTFS date on the form YYYYMMDD.
func ParseDate(s string) (Date, error) {
	if len(s) != 8 {
		return Date{}, fmt.Errorf("%w: '%s' is not YYYYMMDD", ErrInvalidDate, s)
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return Date{}, fmt.Errorf("%w: '%s' is not YYYYMMDD", ErrInvalidDate, s)
		}
	}

	t, err := time.ParseInLocation("20060102", s, time.UTC)
	if err != nil {
		return Date{}, fmt.Errorf("%w: '%s': %v", ErrInvalidDate, s, err)
	}

	return DateOf(t), nil
}

// Midnight UTC on d.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) Weekday() time.Weekday {
	return d.Time().Weekday()
}

func (d Date) Before(o Date) bool {
	return d.Time().Before(o.Time())
}

func (d Date) After(o Date) bool {
	return d.Time().After(o.Time())
}

func (d Date) AddDays(n int) Date {
	return DateOf(d.Time().AddDate(0, 0, n))
}

// YYYYMMDD
func (d Date) String() string {
	return fmt.Sprintf("%04d%02d%02d", d.Year, int(d.Month), d.Day)
}

// Set of days of the week, one bit per time.Weekday.
type Weekdays uint8

func NewWeekdays(days ...time.Weekday) Weekdays {
	var w Weekdays
	for _, d := range days {
		w |= 1 << d
	}
	return w
}

func (w Weekdays) Has(day time.Weekday) bool {
	return w&(1<<day) != 0
}

func (w Weekdays) Days() []time.Weekday {
	days := []time.Weekday{}
	for d := time.Sunday; d <= time.Saturday; d++ {
		if w.Has(d) {
			days = append(days, d)
		}
	}
	return days
}

// Seconds since midnight (noon minus 12h) of the service day. Values
// of 24 hours and above are service continuing past midnight.
type ServiceTime int

// Keeps a ServiceTime within 32 bits.
const maxHour = (math.MaxInt32 - 3599) / 3600

// ParseTime parses H:MM:SS or HH:MM:SS. Hours may exceed 23.
func ParseTime(s string) (ServiceTime, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("%w: found %d parts in '%s'", ErrInvalidTime, len(parts), s)
	}

	if len(parts[0]) == 0 || len(parts[1]) != 2 || len(parts[2]) != 2 {
		return 0, fmt.Errorf("%w: '%s' is not H:MM:SS", ErrInvalidTime, s)
	}

	hms := [3]int{}
	for i, str := range parts {
		for _, c := range str {
			if c < '0' || c > '9' {
				return 0, fmt.Errorf("%w: non-integer in '%s' pos %d", ErrInvalidTime, s, i)
			}
		}
		v, err := strconv.Atoi(str)
		if err != nil {
			return 0, fmt.Errorf("%w: '%s': %v", ErrInvalidTime, s, err)
		}
		hms[i] = v
	}

	if hms[0] > maxHour {
		return 0, fmt.Errorf("%w: hour out of range in '%s'", ErrInvalidTime, s)
	}
	if hms[1] > 59 {
		return 0, fmt.Errorf("%w: invalid minute in '%s'", ErrInvalidTime, s)
	}
	if hms[2] > 59 {
		return 0, fmt.Errorf("%w: invalid second in '%s'", ErrInvalidTime, s)
	}

	return ServiceTime(hms[0]*3600 + hms[1]*60 + hms[2]), nil
}

// FormatTime renders t as zero padded HH:MM:SS. Hours are not
// wrapped, so the result parses back to t.
func FormatTime(t ServiceTime) string {
	h := int(t) / 3600
	m := (int(t) % 3600) / 60
	s := int(t) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func (t ServiceTime) String() string {
	return FormatTime(t)
}

// Clock renders t on a 24 hour clock, for display only.
func (t ServiceTime) Clock() string {
	return FormatTime(t % (24 * 3600))
}

func (t ServiceTime) Duration() time.Duration {
	return time.Duration(t) * time.Second
}
