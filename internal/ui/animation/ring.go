package animation

import "image/color"

// Next advances c one step along the hue ring
// red, yellow, green, cyan, blue, magenta and back to red.
// Colors that are not on the ring are returned unchanged.
func Next(c color.NRGBA, step uint8) color.NRGBA {
	switch {
	case c.R == 255 && c.G < 255 && c.B == 0:
		c.G = up(c.G, step)
	case c.G == 255 && c.R > 0 && c.B == 0:
		c.R = down(c.R, step)
	case c.G == 255 && c.B < 255 && c.R == 0:
		c.B = up(c.B, step)
	case c.B == 255 && c.G > 0 && c.R == 0:
		c.G = down(c.G, step)
	case c.B == 255 && c.R < 255 && c.G == 0:
		c.R = up(c.R, step)
	case c.R == 255 && c.B > 0 && c.G == 0:
		c.B = down(c.B, step)
	}
	return c
}

func up(value, step uint8) uint8 {
	if value > 255-step {
		return 255
	}
	return value + step
}

func down(value, step uint8) uint8 {
	if value < step {
		return 0
	}
	return value - step
}
