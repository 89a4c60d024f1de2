package domain

import "time"

// EventType represents the type of domain event
type EventType string

// Event types
const (
	EventSelectionChanged EventType = "SelectionChanged"
	EventSearchStarted    EventType = "SearchStarted"
	EventSearchCompleted  EventType = "SearchCompleted"
	EventSearchFailed     EventType = "SearchFailed"
	EventConfigLoaded     EventType = "ConfigLoaded"
	EventAppReady         EventType = "AppReady"
)

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	Type() EventType
}

// SelectionChangedEvent is emitted when the chosen location changes.
// Location is nil when the selection was cleared.
type SelectionChangedEvent struct {
	Location *Location
}

func (e SelectionChangedEvent) Type() EventType { return EventSelectionChanged }

// SearchStartedEvent is emitted when a request is sent to the geocoder
type SearchStartedEvent struct {
	RequestID string
	Query     string
}

func (e SearchStartedEvent) Type() EventType { return EventSearchStarted }

// SearchCompletedEvent is emitted when a request returns results
type SearchCompletedEvent struct {
	RequestID string
	Query     string
	Count     int
	Duration  time.Duration
}

func (e SearchCompletedEvent) Type() EventType { return EventSearchCompleted }

// SearchFailedEvent is emitted when a request fails for any reason
type SearchFailedEvent struct {
	RequestID string
	Query     string
	Err       error
}

func (e SearchFailedEvent) Type() EventType { return EventSearchFailed }

// ConfigLoadedEvent is emitted after configuration has been read
type ConfigLoadedEvent struct {
	Path string
}

func (e ConfigLoadedEvent) Type() EventType { return EventConfigLoaded }

// AppReadyEvent is emitted once the UI has started
type AppReadyEvent struct{}

func (e AppReadyEvent) Type() EventType { return EventAppReady }
