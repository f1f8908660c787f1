// Package notify publishes fetch completion events to downstream systems.
//
// Notification is best effort: the fetch artifact is already on disk by the
// time an event is published, so callers log delivery failures instead of
// failing the run.
package notify

import (
	"context"

	"github.com/pithecene-io/toggl-fetch/types"
)

// EventTypeFetchCompleted is the discriminant carried by every event.
const EventTypeFetchCompleted = "fetch.completed"

// FetchCompletedEvent is the payload published when a fetch finishes.
// The embedded record's fields are flattened into the JSON body next to
// event_type and tool_version.
type FetchCompletedEvent struct {
	EventType   string `json:"event_type"` // always "fetch.completed"
	ToolVersion string `json:"tool_version"`
	types.FetchRecord
}

// EventFromRecord wraps a completed fetch record as a publishable event.
func EventFromRecord(rec types.FetchRecord) *FetchCompletedEvent {
	return &FetchCompletedEvent{
		EventType:   EventTypeFetchCompleted,
		ToolVersion: types.Version,
		FetchRecord: rec,
	}
}

// Notifier publishes fetch completion events to a downstream system.
type Notifier interface {
	// Publish sends a fetch completion event to the downstream system.
	// Must respect context cancellation and deadlines.
	Publish(ctx context.Context, event *FetchCompletedEvent) error

	// Close releases notifier resources.
	Close() error
}
