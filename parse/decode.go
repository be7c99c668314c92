package parse

import (
	"fmt"
	"strconv"

	"github.com/pkg/errors"

	"tidbyt.dev/gtfsview/model"
)

// Shared per-column decoders. Each one names the offending column
// in its error.

func columnError(column string, err error) error {
	return errors.Wrapf(err, "column %s", column)
}

// decodeEnum maps a field code onto its variant. Unknown codes are
// an error.
func decodeEnum[E any](column string, value string, codes map[string]E) (E, error) {
	v, found := codes[value]
	if !found {
		var zero E
		return zero, columnError(column, fmt.Errorf("%w: '%s'", model.ErrInvalidEnumValue, value))
	}
	return v, nil
}

// decodeEnumDefault maps a field code onto its variant, falling back
// to def for blank or unknown codes.
func decodeEnumDefault[E any](value string, codes map[string]E, def E) E {
	if v, found := codes[value]; found {
		return v
	}
	return def
}

func decodeDate(column string, value string) (model.Date, error) {
	d, err := model.ParseDate(value)
	if err != nil {
		return model.Date{}, columnError(column, err)
	}
	return d, nil
}

func decodeTime(column string, value string) (model.ServiceTime, error) {
	t, err := model.ParseTime(value)
	if err != nil {
		return 0, columnError(column, err)
	}
	return t, nil
}

func decodePoint(latColumn string, lat string, lonColumn string, lon string) (model.Point, error) {
	p, err := model.ParsePoint(lat, lon)
	if err != nil {
		return model.Point{}, columnError(latColumn+"/"+lonColumn, err)
	}
	return p, nil
}

func decodeSequence(column string, value string) (uint32, error) {
	seq, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, columnError(column, fmt.Errorf("%w: '%s'", model.ErrInvalidSequenceNumber, value))
	}
	if seq < 0 || seq > int64(^uint32(0)) {
		return 0, columnError(column, fmt.Errorf("%w: %d out of range", model.ErrInvalidSequenceNumber, seq))
	}
	return uint32(seq), nil
}

// decodeDistance returns nil for a blank value.
func decodeDistance(column string, value string) (*float64, error) {
	if value == "" {
		return nil, nil
	}
	d, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, columnError(column, fmt.Errorf("%w: '%s'", model.ErrInvalidDistance, value))
	}
	return &d, nil
}
