package eshealth

// Event type constants for health contributor registration.
// Following CloudEvents specification reverse domain notation.
const (
	// EventTypeContributorRegistered is emitted when a contributor is placed in the registry
	EventTypeContributorRegistered = "com.modular.health.contributor.registered"

	// EventTypeContributorSkipped is emitted when evaluation registers nothing
	EventTypeContributorSkipped = "com.modular.health.contributor.skipped"
)
