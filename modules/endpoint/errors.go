package endpoint

import (
	"errors"
)

// Error definitions
var (
	ErrInvalidBasePath   = errors.New("endpoint: base path must start with '/'")
	ErrInvalidSchedule   = errors.New("endpoint: invalid refresh schedule")
	ErrNegativeDuration  = errors.New("endpoint: durations must not be negative")
	ErrNoShutdownTimeout = errors.New("endpoint: shutdown timeout must be positive")
	ErrServerStarted     = errors.New("endpoint: server already started")
)
