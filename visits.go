package gtfs

import (
	"fmt"
	"sort"

	"tidbyt.dev/gtfsview/model"
)

// A scheduled visit of a running trip to a stop.
type StopVisit struct {
	StopTime *model.StopTime
	Trip     *model.Trip
	Route    *model.Route
	Stop     *model.Stop
}

// E.g. "08:00:00: bus 42 Downtown : Main St".
func (v StopVisit) String() string {
	return fmt.Sprintf(
		"%s: %s %s %s : %s",
		model.FormatTime(v.StopTime.Arrival),
		v.Route.Type,
		v.Route.ShortName,
		v.Trip.Headsign,
		v.Stop.Name,
	)
}

// Every stop visit of the agency's running trips on a date, in
// itinerary order per trip.
func (f *Feed) runningVisits(date model.Date, agencyID string) ([][]StopVisit, error) {
	view, err := f.View(agencyID)
	if err != nil {
		return nil, err
	}

	services := view.ActiveServiceIDs(date)
	routes := view.RoutesForAgency(agencyID)

	trips := [][]StopVisit{}
	for _, trip := range view.RunningTrips(routes, services) {
		route := routes[trip.RouteID]

		visits := []StopVisit{}
		for _, st := range view.StopTimesForTrip(trip.ID) {
			stop, found := view.Stop(st.StopID)
			if !found {
				stop = &model.Stop{ID: st.StopID}
			}
			visits = append(visits, StopVisit{
				StopTime: st,
				Trip:     trip,
				Route:    route,
				Stop:     stop,
			})
		}
		if len(visits) > 0 {
			trips = append(trips, visits)
		}
	}

	return trips, nil
}

// StopVisits returns every stop visit made on date by trips of the
// agency's routes, ordered by arrival time. Ties are broken by trip
// and stop sequence.
func (f *Feed) StopVisits(date model.Date, agencyID string) ([]StopVisit, error) {
	trips, err := f.runningVisits(date, agencyID)
	if err != nil {
		return nil, err
	}

	visits := []StopVisit{}
	for _, tv := range trips {
		visits = append(visits, tv...)
	}

	sort.Slice(visits, func(i, j int) bool {
		a, b := visits[i].StopTime, visits[j].StopTime
		if a.Arrival != b.Arrival {
			return a.Arrival < b.Arrival
		}
		if a.TripID != b.TripID {
			return a.TripID < b.TripID
		}
		return a.StopSequence < b.StopSequence
	})

	return visits, nil
}

type EventKind int

// Order matters: events at the same time are played back in this
// order.
const (
	EventTripStarted EventKind = iota
	EventStopArrival
	EventStopDeparture
	EventTripCompleted
)

func (k EventKind) String() string {
	switch k {
	case EventTripStarted:
		return "trip started"
	case EventStopArrival:
		return "arrival"
	case EventStopDeparture:
		return "departure"
	case EventTripCompleted:
		return "trip completed"
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

type DayEvent struct {
	Time model.ServiceTime
	Kind EventKind

	// Visit.Stop and Visit.StopTime are set for all kinds; for
	// trip events they refer to the first or last stop.
	Visit StopVisit
}

func (e DayEvent) String() string {
	return fmt.Sprintf(
		"%s: %s %s %s %s : %s",
		model.FormatTime(e.Time),
		e.Kind,
		e.Visit.Route.Type,
		e.Visit.Route.ShortName,
		e.Visit.Trip.Headsign,
		e.Visit.Stop.Name,
	)
}

// DayEvents plays back a service day for an agency: each running
// trip starts at its first arrival, arrives at and departs from each
// stop, and completes at its last departure.
func (f *Feed) DayEvents(date model.Date, agencyID string) ([]DayEvent, error) {
	trips, err := f.runningVisits(date, agencyID)
	if err != nil {
		return nil, err
	}

	events := []DayEvent{}
	for _, visits := range trips {
		first, last := visits[0], visits[len(visits)-1]

		events = append(events, DayEvent{first.StopTime.Arrival, EventTripStarted, first})
		for _, v := range visits {
			events = append(events,
				DayEvent{v.StopTime.Arrival, EventStopArrival, v},
				DayEvent{v.StopTime.Departure, EventStopDeparture, v},
			)
		}
		events = append(events, DayEvent{last.StopTime.Departure, EventTripCompleted, last})
	}

	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if a.Time != b.Time {
			return a.Time < b.Time
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		if a.Visit.Trip.ID != b.Visit.Trip.ID {
			return a.Visit.Trip.ID < b.Visit.Trip.ID
		}
		return a.Visit.StopTime.StopSequence < b.Visit.StopTime.StopSequence
	})

	return events, nil
}
