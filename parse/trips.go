package parse

import (
	"tidbyt.dev/gtfsview/model"
)

const (
	tripRouteID = iota
	tripServiceID
	tripID
)

const (
	tripHeadsign = iota
	tripShortName
	tripDirectionID
	tripBlockID
	tripShapeID
)

var TripTable = Table[model.Trip]{
	Schema: Schema{
		Table:    "trips.txt",
		Required: []string{"route_id", "service_id", "trip_id"},
		Optional: []Field{
			{Name: "trip_headsign"},
			{Name: "trip_short_name"},
			{Name: "direction_id"},
			{Name: "block_id"},
			{Name: "shape_id"},
		},
	},
	Decode: decodeTrip,
}

var directionCodes = map[string]model.Direction{
	"0": model.DirectionOutbound,
	"1": model.DirectionInbound,
}

func decodeTrip(row Row) (model.Trip, error) {
	return model.Trip{
		ID:        row.Required(tripID),
		RouteID:   row.Required(tripRouteID),
		ServiceID: row.Required(tripServiceID),
		Headsign:  row.Optional(tripHeadsign),
		ShortName: row.Optional(tripShortName),
		Direction: decodeEnumDefault(
			row.Optional(tripDirectionID),
			directionCodes,
			model.DirectionUndefined,
		),
		BlockID: row.Optional(tripBlockID),
		ShapeID: row.Optional(tripShapeID),
	}, nil
}
