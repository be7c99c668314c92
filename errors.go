package gtfs

import "errors"

var (
	ErrAgencyNotFound  = errors.New("agency not found")
	ErrAmbiguousAgency = errors.New("ambiguous agency")
	ErrNoCoordinates   = errors.New("no coordinates")
)
