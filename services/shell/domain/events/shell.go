package events

import (
	"time"

	"github.com/google/uuid"
)

// TopicShellInstallRequested is published by the api process on start-up so
// a worker precaches the shell and prunes stale generations.
const TopicShellInstallRequested = "shell.install_requested"

// InstallRequestedEvent asks a worker to install, then activate, Generation.
// Handlers must be idempotent: the same generation may be requested by every
// api replica.
type InstallRequestedEvent struct {
	EventID     uuid.UUID `json:"event_id"` // Unique publish-time identifier for deduplication
	Version     int       `json:"version"`  // Schema version; increment on breaking changes
	Generation  string    `json:"generation"`
	RequestedBy string    `json:"requested_by"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// NewInstallRequestedEvent stamps a version 1 event for generation.
func NewInstallRequestedEvent(generation, requestedBy string) InstallRequestedEvent {
	return InstallRequestedEvent{
		EventID:     uuid.New(),
		Version:     1,
		Generation:  generation,
		RequestedBy: requestedBy,
		OccurredAt:  time.Now().UTC(),
	}
}
