package timekeeper

import (
	"time"

	"steamwatch/internal/core/model"
)

// EventType defines the type of TimeKeeper event.
type EventType string

const (
	EventFired EventType = "fired"
)

// Event represents a TimeKeeper update for observers.
type Event struct {
	Type   EventType
	Target model.ScheduleTarget
	At     time.Time
}
