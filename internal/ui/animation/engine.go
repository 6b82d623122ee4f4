package animation

import (
	"context"
	"image/color"
	"sync"
	"time"
)

// Config contains animation timing values.
type Config struct {
	Interval time.Duration
	Step     uint8
	Start    color.NRGBA
}

// Engine cycles a color around the hue ring and reports every step.
type Engine struct {
	mu      sync.Mutex
	config  Config
	current color.NRGBA
	update  func(color.NRGBA)
	cancel  context.CancelFunc
	done    chan struct{}
}

// New creates a new animation engine. update runs on the engine goroutine.
func New(config Config, update func(color.NRGBA)) *Engine {
	if config.Interval <= 0 {
		config.Interval = DefaultConfig().Interval
	}
	if config.Step == 0 {
		config.Step = 1
	}
	return &Engine{
		config:  config,
		current: config.Start,
		update:  update,
	}
}

// Start begins cycling until ctx is done or Stop is called. Starting a
// running engine restarts it from the current color.
func (engine *Engine) Start(ctx context.Context) {
	engine.Stop()

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	engine.mu.Lock()
	engine.cancel = cancel
	engine.done = done
	engine.mu.Unlock()

	go func() {
		defer close(done)
		for sleepWithContext(runCtx, engine.config.Interval) {
			engine.update(engine.advance())
		}
	}()
}

// Stop halts the animation and waits for the goroutine to exit.
func (engine *Engine) Stop() {
	engine.mu.Lock()
	cancel, done := engine.cancel, engine.done
	engine.cancel, engine.done = nil, nil
	engine.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

// Current returns the last emitted color.
func (engine *Engine) Current() color.NRGBA {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return engine.current
}

func (engine *Engine) advance() color.NRGBA {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	engine.current = Next(engine.current, engine.config.Step)
	return engine.current
}

func sleepWithContext(ctx context.Context, duration time.Duration) bool {
	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
