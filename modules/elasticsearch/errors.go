package elasticsearch

import "errors"

var (
	ErrNoURIs          = errors.New("at least one elasticsearch uri is required")
	ErrInvalidURI      = errors.New("invalid elasticsearch uri")
	ErrNegativeTimeout = errors.New("elasticsearch timeouts must not be negative")
	ErrClientCreation  = errors.New("failed to create elasticsearch client")
	ErrRequestFailed   = errors.New("elasticsearch request failed")
	ErrResponseDecode  = errors.New("failed to decode elasticsearch response")
)
