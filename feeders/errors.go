package feeders

import (
	"errors"
)

// Static error definitions for feeders
var (
	ErrInvalidStructure     = errors.New("expected pointer to struct")
	ErrFieldCannotBeSet     = errors.New("field cannot be set")
	ErrFieldConversion      = errors.New("cannot convert value to field type")
	ErrInvalidPropertyPair  = errors.New("invalid property pair, expected key=value or key:value")
	ErrSectionNotAMap       = errors.New("section does not resolve to a mapping")
	ErrDotEnvFileUnreadable = errors.New("cannot read .env file")
)
