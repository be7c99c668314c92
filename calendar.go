package gtfs

import (
	"tidbyt.dev/gtfsview/model"
)

// ActiveServiceIDs returns the set of service_ids running on date.
//
// A calendar.txt row contributes its service when date falls on one
// of its weekdays (and, with Options.StrictCalendar, within its
// start_date..end_date range). calendar_dates.txt exceptions for the
// exact date are applied on top: added services are included,
// removed ones excluded.
func (f *Feed) ActiveServiceIDs(date model.Date) map[string]bool {
	active := map[string]bool{}

	weekday := date.Weekday()
	for _, c := range f.Calendars {
		if !c.Weekdays.Has(weekday) {
			continue
		}
		if f.opts.StrictCalendar && (date.Before(c.StartDate) || date.After(c.EndDate)) {
			continue
		}
		active[c.ServiceID] = true
	}

	for _, cd := range f.exceptionsByDay[date] {
		switch cd.ExceptionType {
		case model.ExceptionTypeAdd:
			active[cd.ServiceID] = true
		case model.ExceptionTypeRemove:
			delete(active, cd.ServiceID)
		}
	}

	return active
}

// ServiceDates returns the date range covered by the calendar: the
// earliest start_date or exception date, and the latest end_date or
// exception date. ok is false for a feed without any calendar data.
func (f *Feed) ServiceDates() (first model.Date, last model.Date, ok bool) {
	extend := func(d model.Date) {
		if !ok || d.Before(first) {
			first = d
		}
		if !ok || d.After(last) {
			last = d
		}
		ok = true
	}

	for _, c := range f.Calendars {
		extend(c.StartDate)
		extend(c.EndDate)
	}
	for _, cd := range f.CalendarDates {
		extend(cd.Date)
	}

	return first, last, ok
}
