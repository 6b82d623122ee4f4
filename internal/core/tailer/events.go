package tailer

import (
	"time"

	"steamwatch/internal/core/model"
)

// EventType defines the type of watcher event.
type EventType string

const (
	EventLine    EventType = "line"
	EventMatched EventType = "matched"
	EventError   EventType = "error"
	EventStopped EventType = "stopped"
)

// Event represents a watcher update for the consumer.
//
// Text carries the raw line for line and match events, Keyword the matched
// keyword, Message the error text or the stop notice. State is set on the
// stopped event only.
type Event struct {
	Type    EventType
	Text    string
	Keyword string
	Message string
	State   model.WatchState
	At      time.Time
}
