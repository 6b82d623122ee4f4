package timekeeper

import (
	"context"
	"sync"
	"testing"
	"time"

	"steamwatch/internal/core/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// manualClock is its own ticker; ticks are driven by Set.
type manualClock struct {
	mu      sync.Mutex
	now     time.Time
	ticks   chan time.Time
	stopped chan struct{}
	once    sync.Once
}

func newManualClock(now time.Time) *manualClock {
	return &manualClock{
		now:     now,
		ticks:   make(chan time.Time),
		stopped: make(chan struct{}),
	}
}

func (clock *manualClock) Now() time.Time {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	return clock.now
}

func (clock *manualClock) NewTicker(time.Duration) Ticker {
	return clock
}

func (clock *manualClock) Chan() <-chan time.Time {
	return clock.ticks
}

func (clock *manualClock) Stop() {
	clock.once.Do(func() { close(clock.stopped) })
}

// Set moves the clock to now and delivers one tick, unless the ticker was stopped.
func (clock *manualClock) Set(now time.Time) {
	clock.mu.Lock()
	clock.now = now
	clock.mu.Unlock()
	select {
	case clock.ticks <- now:
	case <-clock.stopped:
	case <-time.After(5 * time.Second):
		panic("tick was never consumed")
	}
}

func at(hour, minute, second int) time.Time {
	return time.Date(2026, 10, 18, hour, minute, second, 0, time.Local)
}

func drain(t *testing.T, events <-chan Event) []Event {
	t.Helper()
	var all []Event
	for {
		select {
		case event, ok := <-events:
			if !ok {
				return all
			}
			all = append(all, event)
		case <-time.After(5 * time.Second):
			t.Fatal("event stream did not close")
		}
	}
}

func TestFiresOnceWhenClockWalksThroughTarget(t *testing.T) {
	clock := newManualClock(at(9, 0, 0))
	keeper := New(Config{Clock: clock})
	target := model.ScheduleTarget{Hour: 9, Minute: 5}

	events, err := keeper.Arm(context.Background(), target, 2*time.Second)
	require.NoError(t, err)
	assert.Equal(t, model.ScheduleArmed, keeper.State())

	for minute := 0; minute <= 10; minute++ {
		clock.Set(at(9, minute, 0))
		clock.Set(at(9, minute, 30))
	}

	all := drain(t, events)
	require.Len(t, all, 1)
	assert.Equal(t, EventFired, all[0].Type)
	assert.Equal(t, target, all[0].Target)
	assert.True(t, at(9, 5, 0).Equal(all[0].At), all[0].At.String())
	assert.Equal(t, model.ScheduleFired, keeper.State())
}

func TestNeverFiresWhenClockJumpsOverTarget(t *testing.T) {
	clock := newManualClock(at(9, 0, 0))
	keeper := New(Config{Clock: clock})

	events, err := keeper.Arm(context.Background(), model.ScheduleTarget{Hour: 9, Minute: 5}, 2*time.Second)
	require.NoError(t, err)

	clock.Set(at(9, 3, 0))
	clock.Set(at(9, 4, 58))
	clock.Set(at(9, 6, 1))
	clock.Set(at(9, 7, 0))

	keeper.Cancel()
	clock.Set(at(9, 7, 2))

	assert.Empty(t, drain(t, events))
	assert.Equal(t, model.ScheduleCancelled, keeper.State())
}

func TestCancelBeforeTargetPreventsFire(t *testing.T) {
	clock := newManualClock(at(9, 4, 0))
	keeper := New(Config{Clock: clock})

	events, err := keeper.Arm(context.Background(), model.ScheduleTarget{Hour: 9, Minute: 5}, time.Second)
	require.NoError(t, err)

	keeper.Cancel()
	keeper.Cancel()
	clock.Set(at(9, 5, 0))

	assert.Empty(t, drain(t, events))
	assert.Equal(t, model.ScheduleCancelled, keeper.State())
}

func TestContextCancelDisarms(t *testing.T) {
	clock := newManualClock(at(9, 4, 0))
	keeper := New(Config{Clock: clock})
	ctx, cancel := context.WithCancel(context.Background())

	events, err := keeper.Arm(ctx, model.ScheduleTarget{Hour: 9, Minute: 5}, time.Second)
	require.NoError(t, err)

	cancel()
	assert.Empty(t, drain(t, events))
	assert.Equal(t, model.ScheduleCancelled, keeper.State())
}

func TestArmIsSingleUse(t *testing.T) {
	clock := newManualClock(at(9, 4, 0))
	keeper := New(Config{Clock: clock})
	target := model.ScheduleTarget{Hour: 9, Minute: 5}

	events, err := keeper.Arm(context.Background(), target, time.Second)
	require.NoError(t, err)

	_, err = keeper.Arm(context.Background(), target, time.Second)
	assert.ErrorIs(t, err, ErrAlreadyArmed)

	clock.Set(at(9, 5, 0))
	require.Len(t, drain(t, events), 1)

	_, err = keeper.Arm(context.Background(), target, time.Second)
	assert.ErrorIs(t, err, ErrAlreadyArmed)
}

func TestArmValidatesInputs(t *testing.T) {
	keeper := New(Config{})

	_, err := keeper.Arm(context.Background(), model.ScheduleTarget{Hour: 24}, time.Second)
	assert.True(t, model.IsValidation(err))

	_, err = keeper.Arm(context.Background(), model.ScheduleTarget{Hour: 9, Minute: 5}, 0)
	var configErr *model.ConfigError
	assert.ErrorAs(t, err, &configErr)

	assert.Equal(t, model.ScheduleUnset, keeper.State())
}

func TestNext(t *testing.T) {
	next, err := Next(model.ScheduleTarget{Hour: 9, Minute: 5}, at(8, 0, 0))
	require.NoError(t, err)
	assert.True(t, at(9, 5, 0).Equal(next), next.String())

	next, err = Next(model.ScheduleTarget{Hour: 7, Minute: 30}, at(8, 0, 0))
	require.NoError(t, err)
	assert.True(t, at(7, 30, 0).AddDate(0, 0, 1).Equal(next), next.String())
}

func armedKeeper(target model.ScheduleTarget) *TimeKeeper {
	keeper := New(Config{})
	keeper.state = model.ScheduleArmed
	keeper.target = target
	return keeper
}

func TestCancelBeforeMatchingTickWins(t *testing.T) {
	keeper := armedKeeper(model.ScheduleTarget{Hour: 9, Minute: 5})
	events := make(chan Event, 1)

	keeper.Cancel()
	assert.True(t, keeper.tick(at(9, 5, 0), events))
	assert.Empty(t, events)
	assert.Equal(t, model.ScheduleCancelled, keeper.State())
}

func TestCancelRacingMatchingTickIsConsistent(t *testing.T) {
	for range 200 {
		keeper := armedKeeper(model.ScheduleTarget{Hour: 9, Minute: 5})
		events := make(chan Event, 1)

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			keeper.Cancel()
		}()
		keeper.tick(at(9, 5, 0), events)
		wg.Wait()

		// A cancel that returned first leaves no event; otherwise the state
		// was already Fired when it ran.
		if len(events) == 1 {
			require.Equal(t, model.ScheduleFired, keeper.State())
		} else {
			require.Equal(t, model.ScheduleCancelled, keeper.State())
		}

		// Cancel after the decision never rewrites the terminal state.
		state := keeper.State()
		keeper.Cancel()
		require.Equal(t, state, keeper.State())
	}
}
