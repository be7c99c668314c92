package gtfs

import (
	"sort"

	"tidbyt.dev/gtfsview/model"
)

// Bounds returns the bounding box of every stop and shape point in
// the feed.
func (f *Feed) Bounds() (model.Rectangle, error) {
	points := make([]model.Point, 0, len(f.Stops)+len(f.Shapes))
	for _, s := range f.Stops {
		points = append(points, s.Point)
	}
	for _, s := range f.Shapes {
		points = append(points, s.Point)
	}

	r, ok := model.BoundingBox(points)
	if !ok {
		return model.Rectangle{}, ErrNoCoordinates
	}
	return r, nil
}

// StopsBounds returns the bounding box of a set of stops.
func StopsBounds(stops []*model.Stop) (model.Rectangle, error) {
	points := make([]model.Point, 0, len(stops))
	for _, s := range stops {
		points = append(points, s.Point)
	}

	r, ok := model.BoundingBox(points)
	if !ok {
		return model.Rectangle{}, ErrNoCoordinates
	}
	return r, nil
}

// RoutesForAgency maps route_id to route for all routes operated by
// an agency.
func (f *Feed) RoutesForAgency(agencyID string) map[string]*model.Route {
	routes := map[string]*model.Route{}
	for i := range f.Routes {
		if f.Routes[i].AgencyID == agencyID {
			routes[f.Routes[i].ID] = &f.Routes[i]
		}
	}
	return routes
}

// RunningTrips returns the trips on one of routes whose service is
// among services, in feed order.
func (f *Feed) RunningTrips(routes map[string]*model.Route, services map[string]bool) []*model.Trip {
	trips := []*model.Trip{}
	for i := range f.Trips {
		t := &f.Trips[i]
		if _, found := routes[t.RouteID]; !found {
			continue
		}
		if !services[t.ServiceID] {
			continue
		}
		trips = append(trips, t)
	}
	return trips
}

// StopsForAgency returns the stops visited by any trip on the
// agency's routes, in feed order.
func (f *Feed) StopsForAgency(agencyID string) []*model.Stop {
	routes := f.RoutesForAgency(agencyID)

	visited := map[string]bool{}
	for _, t := range f.Trips {
		if _, found := routes[t.RouteID]; !found {
			continue
		}
		for _, st := range f.stopTimesByTrip[t.ID] {
			visited[st.StopID] = true
		}
	}

	stops := []*model.Stop{}
	for i := range f.Stops {
		if visited[f.Stops[i].ID] {
			stops = append(stops, &f.Stops[i])
		}
	}
	return stops
}

// TripIDsForServiceIDs returns the ids of all trips running on any
// of services, in feed order.
func (f *Feed) TripIDsForServiceIDs(services map[string]bool) []string {
	ids := []string{}
	for _, t := range f.Trips {
		if services[t.ServiceID] {
			ids = append(ids, t.ID)
		}
	}
	return ids
}

// Route types serving a stop, or any of its child stops if it's a
// station.
func (f *Feed) routeTypesAtStop(stop *model.Stop) map[model.RouteType]bool {
	types := map[model.RouteType]bool{}

	stops := []*model.Stop{stop}
	if stop.LocationType == model.LocationTypeStation {
		stops = append(stops, f.stopsByParent[stop.ID]...)
	}

	for _, s := range stops {
		for _, st := range f.stopTimesByStop[s.ID] {
			trip, found := f.tripByID[st.TripID]
			if !found {
				continue
			}
			route, found := f.routeByID[trip.RouteID]
			if !found {
				continue
			}
			types[route.Type] = true
		}
	}

	return types
}

// Returns stops ordered by distance from p.
//
// If limit is >0, at most limit stops are returned.
//
// If types is provided, then only stops along routes of at least one
// of the types are returned. E.g., pass
// []model.RouteType{model.RouteTypeBus} to only receive bus stops.
//
// Only stations and stops _without_ parent station are returned.
func (f *Feed) NearbyStops(p model.Point, limit int, types []model.RouteType) []*model.Stop {
	typeSet := map[model.RouteType]bool{}
	for _, rt := range types {
		typeSet[rt] = true
	}

	stops := []*model.Stop{}
	for i := range f.Stops {
		s := &f.Stops[i]
		if !(s.LocationType == model.LocationTypeStation || s.ParentStation == "") {
			continue
		}

		if len(typeSet) > 0 {
			match := false
			for rt := range f.routeTypesAtStop(s) {
				if typeSet[rt] {
					match = true
					break
				}
			}
			if !match {
				continue
			}
		}

		stops = append(stops, s)
	}

	sort.SliceStable(stops, func(i, j int) bool {
		return model.HaversineDistance(p, stops[i].Point) < model.HaversineDistance(p, stops[j].Point)
	})

	if limit > 0 && len(stops) > limit {
		stops = stops[:limit]
	}

	return stops
}

type RouteDirection struct {
	StopID    string
	RouteID   string
	Direction model.Direction
	Headsigns []string
}

// Returns all routes and direction for a stop
//
// In GTFS, direction and headsign are properties of a trip, and all
// trips belong to some route. To be able to let a user select
// e.g. "Stop 5, Route L, to Canarsie", we need this.
//
// A stop_time headsign overrides the trip's. The last stop of a trip
// is ignored, since nobody departs from it. Results are sorted by
// route and direction, headsigns alphabetically.
func (f *Feed) RouteDirections(stopID string) []RouteDirection {
	type routeDirectionKey struct {
		routeID   string
		direction model.Direction
	}

	headsignSet := map[routeDirectionKey]map[string]bool{}
	for _, st := range f.stopTimesByStop[stopID] {
		sts := f.stopTimesByTrip[st.TripID]
		if st.StopSequence == sts[len(sts)-1].StopSequence {
			continue
		}

		trip, found := f.tripByID[st.TripID]
		if !found {
			continue
		}

		headsign := trip.Headsign
		if st.Headsign != "" {
			headsign = st.Headsign
		}

		k := routeDirectionKey{trip.RouteID, trip.Direction}
		if _, found := headsignSet[k]; !found {
			headsignSet[k] = map[string]bool{}
		}
		headsignSet[k][headsign] = true
	}

	rds := []RouteDirection{}
	for k, hs := range headsignSet {
		rd := RouteDirection{
			StopID:    stopID,
			RouteID:   k.routeID,
			Direction: k.direction,
			Headsigns: []string{},
		}
		for h := range hs {
			rd.Headsigns = append(rd.Headsigns, h)
		}
		sort.Strings(rd.Headsigns)
		rds = append(rds, rd)
	}

	sort.Slice(rds, func(i, j int) bool {
		if rds[i].RouteID != rds[j].RouteID {
			return rds[i].RouteID < rds[j].RouteID
		}
		return rds[i].Direction < rds[j].Direction
	})

	return rds
}
