// Package timekeeper fires a one-shot event when the wall clock reaches a
// target hour and minute.
//
// The clock is polled at a fixed cadence and compared at minute
// granularity. If polling stalls across the whole target minute (for
// example while the machine sleeps) the event never fires for that arm.
// There is no catch-up.
package timekeeper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"steamwatch/internal/core/model"

	"github.com/adhocore/gronx"
)

// ErrAlreadyArmed indicates Arm was called twice on the same TimeKeeper.
var ErrAlreadyArmed = errors.New("timekeeper already armed")

// Config contains runtime options for TimeKeeper.
type Config struct {
	Clock  Clock
	Logger *slog.Logger
}

// TimeKeeper is a single-use state machine: Unset, Armed, then Fired or Cancelled.
type TimeKeeper struct {
	mu      sync.Mutex
	options Config
	state   model.ScheduleState
	target  model.ScheduleTarget

	cancelled bool
}

// New creates a TimeKeeper with the provided options.
func New(options Config) *TimeKeeper {
	if options.Clock == nil {
		options.Clock = SystemClock()
	}
	if options.Logger == nil {
		options.Logger = slog.New(slog.DiscardHandler)
	}
	return &TimeKeeper{
		options: options,
		state:   model.ScheduleUnset,
	}
}

// Arm starts checking the clock every checkInterval. The returned channel
// receives at most one fired event and is closed once the TimeKeeper
// reaches a terminal state. Cancelling ctx has the same effect as Cancel.
func (keeper *TimeKeeper) Arm(ctx context.Context, target model.ScheduleTarget, checkInterval time.Duration) (<-chan Event, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}
	if checkInterval <= 0 {
		return nil, &model.ConfigError{Field: "check interval", Reason: fmt.Sprintf("must be positive, got %s", checkInterval)}
	}

	keeper.mu.Lock()
	if keeper.state != model.ScheduleUnset {
		keeper.mu.Unlock()
		return nil, ErrAlreadyArmed
	}
	keeper.state = model.ScheduleArmed
	keeper.target = target
	keeper.mu.Unlock()

	keeper.options.Logger.Info("schedule armed", "target", target.String(), "interval", checkInterval)

	events := make(chan Event, 1)
	go keeper.run(ctx, keeper.options.Clock.NewTicker(checkInterval), events)
	return events, nil
}

// Cancel prevents any future fired event. Safe for concurrent use and
// idempotent. Once Cancel returns no fired event is sent unless the
// TimeKeeper had already reached the Fired state.
func (keeper *TimeKeeper) Cancel() {
	keeper.mu.Lock()
	keeper.cancelled = true
	keeper.mu.Unlock()
}

// State returns the current state.
func (keeper *TimeKeeper) State() model.ScheduleState {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	return keeper.state
}

// Next returns the next occurrence of target strictly after from.
// It is informational; firing only happens when a check lands in the target minute.
func Next(target model.ScheduleTarget, from time.Time) (time.Time, error) {
	return gronx.NextTickAfter(target.CronExpr(), from, false)
}

func (keeper *TimeKeeper) run(ctx context.Context, ticker Ticker, events chan<- Event) {
	defer close(events)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			keeper.finish(model.ScheduleCancelled)
			return
		case tickTime := <-ticker.Chan():
			if keeper.tick(tickTime, events) {
				return
			}
		}
	}
}

// tick decides under mu, so a Cancel either lands before the decision and
// wins or after the state is already Fired.
func (keeper *TimeKeeper) tick(now time.Time, events chan<- Event) bool {
	keeper.mu.Lock()
	switch {
	case keeper.cancelled:
		keeper.state = model.ScheduleCancelled
	case keeper.target.Matches(now):
		keeper.state = model.ScheduleFired
	default:
		keeper.mu.Unlock()
		return false
	}
	state := keeper.state
	keeper.mu.Unlock()

	keeper.logFinished(state)
	if state == model.ScheduleFired {
		events <- Event{Type: EventFired, Target: keeper.target, At: now}
	}
	return true
}

func (keeper *TimeKeeper) finish(state model.ScheduleState) {
	keeper.mu.Lock()
	keeper.state = state
	keeper.mu.Unlock()
	keeper.logFinished(state)
}

func (keeper *TimeKeeper) logFinished(state model.ScheduleState) {
	keeper.options.Logger.Info("schedule finished", "target", keeper.target.String(), "state", state)
}
