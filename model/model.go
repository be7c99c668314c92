package model

// Holds all external facing record types and enumerations. Records
// are created in bulk when a feed is loaded and never mutated after.

// Agency ID used when agency.txt omits agency_id, and for routes
// that don't reference an agency.
const DefaultAgencyID = "_"

type LocationType int

const (
	LocationTypeStop LocationType = iota
	LocationTypeStation
)

func (t LocationType) String() string {
	switch t {
	case LocationTypeStop:
		return "stop"
	case LocationTypeStation:
		return "station"
	}
	return "unknown"
}

type WheelchairBoarding int

const (
	WheelchairBoardingUnknown WheelchairBoarding = iota
	WheelchairBoardingPossible
	WheelchairBoardingNone
)

func (w WheelchairBoarding) String() string {
	switch w {
	case WheelchairBoardingPossible:
		return "possible"
	case WheelchairBoardingNone:
		return "none"
	}
	return "unknown"
}

// Values match the route_type codes in routes.txt.
type RouteType int

const (
	RouteTypeTram      RouteType = 0
	RouteTypeSubway    RouteType = 1
	RouteTypeRail      RouteType = 2
	RouteTypeBus       RouteType = 3
	RouteTypeFerry     RouteType = 4
	RouteTypeCableCar  RouteType = 5
	RouteTypeGondola   RouteType = 6
	RouteTypeFunicular RouteType = 7
)

var routeTypeNames = map[RouteType]string{
	RouteTypeTram:      "tram",
	RouteTypeSubway:    "subway",
	RouteTypeRail:      "rail",
	RouteTypeBus:       "bus",
	RouteTypeFerry:     "ferry",
	RouteTypeCableCar:  "cable-car",
	RouteTypeGondola:   "gondola",
	RouteTypeFunicular: "funicular",
}

func (t RouteType) String() string {
	if name, found := routeTypeNames[t]; found {
		return name
	}
	return "unknown"
}

type Direction int

const (
	DirectionUndefined Direction = iota
	DirectionInbound
	DirectionOutbound
)

func (d Direction) String() string {
	switch d {
	case DirectionInbound:
		return "inbound"
	case DirectionOutbound:
		return "outbound"
	}
	return "undefined"
}

// How passengers board or alight at a stop_time (pickup_type and
// drop_off_type).
type VisitType int

const (
	VisitTypeScheduled VisitType = iota
	VisitTypeUnavailable
	VisitTypePhoneAhead
	VisitTypeCoordinateWithDriver
)

func (v VisitType) String() string {
	switch v {
	case VisitTypeUnavailable:
		return "unavailable"
	case VisitTypePhoneAhead:
		return "phone-ahead"
	case VisitTypeCoordinateWithDriver:
		return "coordinate-with-driver"
	}
	return "scheduled"
}

type ExceptionType int

const (
	ExceptionTypeAdd    ExceptionType = 1
	ExceptionTypeRemove ExceptionType = 2
)

func (e ExceptionType) String() string {
	switch e {
	case ExceptionTypeAdd:
		return "add"
	case ExceptionTypeRemove:
		return "remove"
	}
	return "unknown"
}

type Agency struct {
	ID       string
	Name     string
	URL      string
	Timezone string
	Lang     string
	Phone    string
	FareURL  string
}

type Stop struct {
	ID                 string
	Code               string
	Name               string
	Desc               string
	Point              Point
	ZoneID             string
	URL                string
	LocationType       LocationType
	ParentStation      string
	Timezone           string
	WheelchairBoarding WheelchairBoarding
}

type Route struct {
	ID        string
	AgencyID  string
	ShortName string
	LongName  string
	Desc      string
	Type      RouteType
	URL       string
	Color     string
	TextColor string
}

type Trip struct {
	ID        string
	RouteID   string
	ServiceID string
	Headsign  string
	ShortName string
	Direction Direction
	BlockID   string
	ShapeID   string
}

type StopTime struct {
	TripID       string
	StopID       string
	Arrival      ServiceTime
	Departure    ServiceTime
	StopSequence uint32
	Headsign     string
	PickupType   VisitType
	DropOffType  VisitType

	// Nil unless set in the feed.
	ShapeDistTraveled *float64
}

// A single point on a shape's polyline.
type Shape struct {
	ID           string
	Point        Point
	Sequence     uint32
	DistTraveled *float64
}

type Calendar struct {
	ServiceID string
	Weekdays  Weekdays
	StartDate Date
	EndDate   Date
}

type CalendarDate struct {
	ServiceID     string
	Date          Date
	ExceptionType ExceptionType
}

// The raw record collections of one feed, in file order.
type Tables struct {
	Agencies      []Agency
	Stops         []Stop
	Routes        []Route
	Trips         []Trip
	StopTimes     []StopTime
	Shapes        []Shape
	Calendars     []Calendar
	CalendarDates []CalendarDate
}
