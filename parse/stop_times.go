package parse

import (
	"tidbyt.dev/gtfsview/model"
)

const (
	stopTimeTripID = iota
	stopTimeArrival
	stopTimeDeparture
	stopTimeStopID
	stopTimeStopSequence
)

const (
	stopTimeHeadsign = iota
	stopTimePickupType
	stopTimeDropOffType
	stopTimeDistTraveled
)

var StopTimeTable = Table[model.StopTime]{
	Schema: Schema{
		Table:    "stop_times.txt",
		Required: []string{"trip_id", "arrival_time", "departure_time", "stop_id", "stop_sequence"},
		Optional: []Field{
			{Name: "stop_headsign"},
			{Name: "pickup_type"},
			{Name: "drop_off_type"},
			{Name: "shape_dist_traveled", Aliases: []string{"shape_dist_travelled"}},
		},
	},
	Decode: decodeStopTime,
}

var visitTypeCodes = map[string]model.VisitType{
	"0": model.VisitTypeScheduled,
	"1": model.VisitTypeUnavailable,
	"2": model.VisitTypePhoneAhead,
	"3": model.VisitTypeCoordinateWithDriver,
}

func decodeStopTime(row Row) (model.StopTime, error) {
	arrival, err := decodeTime(row.requiredName(stopTimeArrival), row.Required(stopTimeArrival))
	if err != nil {
		return model.StopTime{}, err
	}

	departure, err := decodeTime(row.requiredName(stopTimeDeparture), row.Required(stopTimeDeparture))
	if err != nil {
		return model.StopTime{}, err
	}

	seq, err := decodeSequence(row.requiredName(stopTimeStopSequence), row.Required(stopTimeStopSequence))
	if err != nil {
		return model.StopTime{}, err
	}

	dist, err := decodeDistance(row.optionalName(stopTimeDistTraveled), row.Optional(stopTimeDistTraveled))
	if err != nil {
		return model.StopTime{}, err
	}

	return model.StopTime{
		TripID:       row.Required(stopTimeTripID),
		StopID:       row.Required(stopTimeStopID),
		Arrival:      arrival,
		Departure:    departure,
		StopSequence: seq,
		Headsign:     row.Optional(stopTimeHeadsign),
		PickupType: decodeEnumDefault(
			row.Optional(stopTimePickupType),
			visitTypeCodes,
			model.VisitTypeScheduled,
		),
		DropOffType: decodeEnumDefault(
			row.Optional(stopTimeDropOffType),
			visitTypeCodes,
			model.VisitTypeScheduled,
		),
		ShapeDistTraveled: dist,
	}, nil
}
