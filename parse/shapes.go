package parse

import (
	"tidbyt.dev/gtfsview/model"
)

const (
	shapeID = iota
	shapeLat
	shapeLon
	shapeSequence
)

const (
	shapeDistTraveled = iota
)

var ShapeTable = Table[model.Shape]{
	Schema: Schema{
		Table:    "shapes.txt",
		Required: []string{"shape_id", "shape_pt_lat", "shape_pt_lon", "shape_pt_sequence"},
		Optional: []Field{
			{Name: "shape_dist_traveled", Aliases: []string{"shape_dist_travelled"}},
		},
	},
	Decode: decodeShape,
}

func decodeShape(row Row) (model.Shape, error) {
	point, err := decodePoint(
		row.requiredName(shapeLat), row.Required(shapeLat),
		row.requiredName(shapeLon), row.Required(shapeLon),
	)
	if err != nil {
		return model.Shape{}, err
	}

	seq, err := decodeSequence(row.requiredName(shapeSequence), row.Required(shapeSequence))
	if err != nil {
		return model.Shape{}, err
	}

	dist, err := decodeDistance(row.optionalName(shapeDistTraveled), row.Optional(shapeDistTraveled))
	if err != nil {
		return model.Shape{}, err
	}

	return model.Shape{
		ID:           row.Required(shapeID),
		Point:        point,
		Sequence:     seq,
		DistTraveled: dist,
	}, nil
}
