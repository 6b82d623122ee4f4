package model

// WatchState is the lifecycle state of a log watch.
type WatchState string

const (
	WatchIdle             WatchState = "idle"
	WatchRunning          WatchState = "running"
	WatchStoppedByRequest WatchState = "stopped_by_request"
	WatchStoppedByMatch   WatchState = "stopped_by_match"
	WatchStoppedByError   WatchState = "stopped_by_error"
)

// Terminal reports whether no further events follow this state.
func (state WatchState) Terminal() bool {
	switch state {
	case WatchStoppedByRequest, WatchStoppedByMatch, WatchStoppedByError:
		return true
	}
	return false
}

// ScheduleState is the lifecycle state of a scheduled trigger.
type ScheduleState string

const (
	ScheduleUnset     ScheduleState = "unset"
	ScheduleArmed     ScheduleState = "armed"
	ScheduleFired     ScheduleState = "fired"
	ScheduleCancelled ScheduleState = "cancelled"
)
