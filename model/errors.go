package model

import "errors"

// Load time failures. Parsers wrap these with table, line and column
// context; use errors.Is to test for them.
var (
	ErrMissingFile           = errors.New("missing file")
	ErrMissingRequiredColumn = errors.New("missing required column")
	ErrMalformedRow          = errors.New("malformed row")
	ErrInvalidEnumValue      = errors.New("invalid enum value")
	ErrInvalidDate           = errors.New("invalid date")
	ErrInvalidTime           = errors.New("invalid time")
	ErrInvalidCoordinate     = errors.New("invalid coordinate")
	ErrInvalidSequenceNumber = errors.New("invalid sequence number")
	ErrInvalidDistance       = errors.New("invalid distance")
	ErrDuplicateID           = errors.New("duplicate id")
)
