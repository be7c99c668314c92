package gtfs

import (
	"github.com/pkg/errors"

	"tidbyt.dev/gtfsview/model"
)

// View returns the sub-feed of everything reachable from one agency:
// its routes, their trips, the services and shapes those trips
// reference, the trips' stop times and the stops they visit.
//
// The result is an independent Feed with its own indexes, and
// inherits the parent's options.
func (f *Feed) View(agencyID string) (*Feed, error) {
	tables := &model.Tables{}

	for _, a := range f.Agencies {
		if a.ID == agencyID {
			tables.Agencies = append(tables.Agencies, a)
		}
	}
	switch len(tables.Agencies) {
	case 0:
		return nil, errors.Wrapf(ErrAgencyNotFound, "'%s'", agencyID)
	case 1:
	default:
		return nil, errors.Wrapf(ErrAmbiguousAgency, "'%s' matches %d agencies", agencyID, len(tables.Agencies))
	}

	routes := map[string]bool{}
	for _, r := range f.Routes {
		if r.AgencyID == agencyID {
			tables.Routes = append(tables.Routes, r)
			routes[r.ID] = true
		}
	}

	trips := map[string]bool{}
	services := map[string]bool{}
	shapes := map[string]bool{}
	for _, t := range f.Trips {
		if !routes[t.RouteID] {
			continue
		}
		tables.Trips = append(tables.Trips, t)
		trips[t.ID] = true
		services[t.ServiceID] = true
		if t.ShapeID != "" {
			shapes[t.ShapeID] = true
		}
	}

	for _, c := range f.Calendars {
		if services[c.ServiceID] {
			tables.Calendars = append(tables.Calendars, c)
		}
	}

	for _, cd := range f.CalendarDates {
		if services[cd.ServiceID] {
			tables.CalendarDates = append(tables.CalendarDates, cd)
		}
	}

	for _, s := range f.Shapes {
		if shapes[s.ID] {
			tables.Shapes = append(tables.Shapes, s)
		}
	}

	stops := map[string]bool{}
	for _, st := range f.StopTimes {
		if trips[st.TripID] {
			tables.StopTimes = append(tables.StopTimes, st)
			stops[st.StopID] = true
		}
	}

	for _, s := range f.Stops {
		if stops[s.ID] {
			tables.Stops = append(tables.Stops, s)
		}
	}

	return NewFeed(tables, f.opts)
}
