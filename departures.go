package gtfs

import (
	"fmt"
	"sort"
	"time"

	"tidbyt.dev/gtfsview/model"
)

type Departure struct {
	StopID       string
	RouteID      string
	TripID       string
	StopSequence uint32
	Direction    model.Direction
	Time         time.Time
	Headsign     string
}

// Narrows the results of Departures. Zero values match everything.
type DepartureFilter struct {
	RouteID    string
	Directions []model.Direction
	RouteTypes []model.RouteType

	// Maximum number of departures returned.
	Limit int
}

// Location returns the feed's timezone. GTFS requires all agencies in
// a feed to share one.
func (f *Feed) Location() (*time.Location, error) {
	if len(f.Agencies) == 0 {
		return nil, fmt.Errorf("loading timezone: %w", ErrAgencyNotFound)
	}
	location, err := time.LoadLocation(f.Agencies[0].Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone: %w", err)
	}
	return location, nil
}

// Marks a span without upper bound.
const openEnd model.ServiceTime = -1

// This is a helper to translate a time window into a GTFS friendly
// list of time range per service date.
type span struct {
	Date  model.Date
	Start model.ServiceTime
	End   model.ServiceTime
}

func serviceTime(offset time.Duration) model.ServiceTime {
	return model.ServiceTime(offset / time.Second)
}

// Offset of t into the service day whose noon is given. Service days
// start at noon minus 12h, which is an hour past midnight on the day
// clocks fall back, so times before that are clamped to zero.
func sinceServiceStart(noon time.Time, t time.Time) time.Duration {
	d := t.Sub(noon) + 12*time.Hour
	if d < 0 {
		return 0
	}
	return d
}

// Computes list of all time ranges that must be inspected for a GTFS
// stop time lookup. maxTrip is the latest stop time in the feed,
// which bounds how far a service day can reach into the next one.
func rangePerDate(start time.Time, window time.Duration, maxTrip time.Duration) []span {
	end := start.Add(window)

	spans := []span{}

	date := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())

	// XXX: The day after the window can possibly push a departure
	// back into the previous day on DST change. Ignored for now.

	for today := date.AddDate(0, 0, -1); today.Before(end); today = today.AddDate(0, 0, 1) {
		noon := time.Date(today.Year(), today.Month(), today.Day(), 12, 0, 0, 0, today.Location())
		tomorrow := today.AddDate(0, 0, 1)

		s := span{Date: model.DateOf(today), End: openEnd}

		if start.Before(today) {
			// window starts before this day
		} else if start.Before(tomorrow) {
			s.Start = serviceTime(sinceServiceStart(noon, start))
		} else {
			// window starts after this day, only overflow
			// trips are of interest
			x := sinceServiceStart(noon, start)
			if x > maxTrip {
				continue
			}
			s.Start = serviceTime(x)
		}

		if end.Before(tomorrow) {
			s.End = serviceTime(sinceServiceStart(noon, end))
		} else {
			// window ends in the future, possibly during
			// today's overflow trips
			x := sinceServiceStart(noon, end)
			if x <= maxTrip {
				s.End = serviceTime(x)
			}
		}

		spans = append(spans, s)
	}

	return spans
}

// Stops a departure lookup for stopID applies to. A station covers
// all its child stops.
func (f *Feed) departureStops(stopID string) []*model.Stop {
	stop, found := f.stopByID[stopID]
	if !found {
		return nil
	}
	if stop.LocationType == model.LocationTypeStation {
		return f.stopsByParent[stopID]
	}
	return []*model.Stop{stop}
}

// Departures returns departures from a stop, or any stop of a
// station, within [windowStart, windowStart+windowLength]. Results
// are ordered by time and given in windowStart's location.
//
// The last stop of a trip is never a departure.
func (f *Feed) Departures(
	stopID string,
	windowStart time.Time,
	windowLength time.Duration,
	filter DepartureFilter,
) ([]Departure, error) {
	departures := []Departure{}

	// All computations are done in the GTFS timezone
	location, err := f.Location()
	if err != nil {
		return nil, err
	}
	origTz := windowStart.Location()
	startTime := windowStart.In(location)
	endTime := startTime.Add(windowLength)

	directions := map[model.Direction]bool{}
	for _, d := range filter.Directions {
		directions[d] = true
	}
	routeTypes := map[model.RouteType]bool{}
	for _, rt := range filter.RouteTypes {
		routeTypes[rt] = true
	}

	stopTimes := []*model.StopTime{}
	for _, s := range f.departureStops(stopID) {
		stopTimes = append(stopTimes, f.stopTimesByStop[s.ID]...)
	}

	for _, span := range rangePerDate(startTime, windowLength, f.maxDeparture.Duration()) {
		services := f.ActiveServiceIDs(span.Date)
		if len(services) == 0 {
			continue
		}

		// Stop times are relative to noon minus 12h
		noon := time.Date(span.Date.Year, span.Date.Month, span.Date.Day, 12, 0, 0, 0, location)
		base := noon.Add(-12 * time.Hour)

		for _, st := range stopTimes {
			if st.Departure < span.Start {
				continue
			}
			if span.End != openEnd && st.Departure > span.End {
				continue
			}

			trip, found := f.tripByID[st.TripID]
			if !found || !services[trip.ServiceID] {
				continue
			}
			if filter.RouteID != "" && trip.RouteID != filter.RouteID {
				continue
			}
			if len(directions) > 0 && !directions[trip.Direction] {
				continue
			}
			if len(routeTypes) > 0 {
				route, found := f.routeByID[trip.RouteID]
				if !found || !routeTypes[route.Type] {
					continue
				}
			}

			itinerary := f.stopTimesByTrip[trip.ID]
			if st.StopSequence >= itinerary[len(itinerary)-1].StopSequence {
				continue
			}

			departureTime := base.Add(st.Departure.Duration())
			if departureTime.Before(startTime) || departureTime.After(endTime) {
				continue
			}

			headsign := st.Headsign
			if headsign == "" {
				headsign = trip.Headsign
			}

			departures = append(departures, Departure{
				StopID:       st.StopID,
				RouteID:      trip.RouteID,
				TripID:       trip.ID,
				StopSequence: st.StopSequence,
				Direction:    trip.Direction,
				Time:         departureTime.In(origTz),
				Headsign:     headsign,
			})
		}
	}

	sort.SliceStable(departures, func(i, j int) bool {
		if !departures[i].Time.Equal(departures[j].Time) {
			return departures[i].Time.Before(departures[j].Time)
		}
		return departures[i].TripID < departures[j].TripID
	})

	if filter.Limit > 0 && len(departures) > filter.Limit {
		departures = departures[:filter.Limit]
	}

	return departures, nil
}
