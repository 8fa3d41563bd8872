package bramble

import (
	"image/color"
	"math"
)

// ColorWhite is the default background and drawable tint.
var ColorWhite = color.NRGBA{R: 255, G: 255, B: 255, A: 255}

// Rect is an entity's world-space box: position plus size_x, size_y.
type Rect struct {
	X, Y, Width, Height float64
}

// Overlaps is a strict AABB test. Boxes that only touch along an edge do not
// overlap, but a zero-size box strictly inside another one does.
func (r Rect) Overlaps(other Rect) bool {
	return r.X < other.X+other.Width &&
		r.X+r.Width > other.X &&
		r.Y < other.Y+other.Height &&
		r.Y+r.Height > other.Y
}

// clampByte converts a 0..255 channel value to a byte, truncating fractions.
// NaN maps to 0.
func clampByte(v float64) uint8 {
	switch {
	case math.IsNaN(v), v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v)
	}
}

// clampUnit clamps v to [-1, 1]. NaN maps to 0.
func clampUnit(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v < -1:
		return -1
	case v > 1:
		return 1
	default:
		return v
	}
}

// clamp01 clamps v to [0, 1]. NaN maps to 0.
func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
