package gtfs

import (
	"fmt"
	"strings"

	"tidbyt.dev/gtfsview/model"
)

type AgencySummary struct {
	Agency *model.Agency
	Routes int
	Stops  int

	// Zero if the agency has no stops.
	Bounds model.Rectangle
}

// Record counts per table and per agency.
type Description struct {
	Agencies      int
	Stops         int
	Routes        int
	Trips         int
	StopTimes     int
	Shapes        int
	Calendars     int
	CalendarDates int

	PerAgency []AgencySummary
}

func (f *Feed) Describe() Description {
	d := Description{
		Agencies:      len(f.Agencies),
		Stops:         len(f.Stops),
		Routes:        len(f.Routes),
		Trips:         len(f.Trips),
		StopTimes:     len(f.StopTimes),
		Shapes:        len(f.Shapes),
		Calendars:     len(f.Calendars),
		CalendarDates: len(f.CalendarDates),
		PerAgency:     []AgencySummary{},
	}

	for i := range f.Agencies {
		a := &f.Agencies[i]
		stops := f.StopsForAgency(a.ID)
		summary := AgencySummary{
			Agency: a,
			Routes: len(f.RoutesForAgency(a.ID)),
			Stops:  len(stops),
		}
		if bounds, err := StopsBounds(stops); err == nil {
			summary.Bounds = bounds
		}
		d.PerAgency = append(d.PerAgency, summary)
	}

	return d
}

func (d Description) String() string {
	b := &strings.Builder{}

	for _, c := range []struct {
		name  string
		count int
	}{
		{"agencies", d.Agencies},
		{"stops", d.Stops},
		{"routes", d.Routes},
		{"trips", d.Trips},
		{"stop_times", d.StopTimes},
		{"shapes", d.Shapes},
		{"calendars", d.Calendars},
		{"calendar_dates", d.CalendarDates},
	} {
		fmt.Fprintf(b, "%s: %d\n", c.name, c.count)
	}

	for _, s := range d.PerAgency {
		fmt.Fprintf(b, "agency %s (%s): %d routes, %d stops", s.Agency.ID, s.Agency.Name, s.Routes, s.Stops)
		if s.Stops > 0 {
			fmt.Fprintf(b, ", %s", s.Bounds)
		}
		b.WriteString("\n")
	}

	return b.String()
}
