package eshealth

import (
	"errors"
)

// Error definitions
var (
	// ErrRegistryNil is returned when a Registrar is used without a registry
	ErrRegistryNil = errors.New("eshealth: registry is nil")

	// ErrClientNil is returned when an indicator is created without a client
	ErrClientNil = errors.New("eshealth: client is nil")

	// ErrNoSubjectForEventEmission is returned when trying to emit events without a subject
	ErrNoSubjectForEventEmission = errors.New("eshealth: no subject available for event emission")
)
