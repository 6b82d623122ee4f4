package animation

import (
	"image/color"
	"time"
)

// DefaultConfig returns a full ring every few seconds starting from red.
func DefaultConfig() Config {
	return Config{
		Interval: 20 * time.Millisecond,
		Step:     3,
		Start:    color.NRGBA{R: 255, A: 255},
	}
}
