package bramble

import (
	"math"
	"testing"
)

// --- Rect.Overlaps ---

func TestRectOverlaps(t *testing.T) {
	base := Rect{0, 0, 10, 10}
	tests := []struct {
		name   string
		other  Rect
		expect bool
	}{
		{"overlapping", Rect{5, 5, 10, 10}, true},
		{"fully contained", Rect{2, 2, 2, 2}, true},
		{"containing", Rect{-5, -5, 30, 30}, true},
		{"adjacent right", Rect{10, 0, 10, 10}, false},
		{"adjacent bottom", Rect{0, 10, 10, 10}, false},
		{"disjoint", Rect{20, 20, 10, 10}, false},
		{"zero size inside", Rect{5, 5, 0, 0}, true},
		{"zero size on edge", Rect{10, 5, 0, 0}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.Overlaps(tt.other); got != tt.expect {
				t.Errorf("%v.Overlaps(%v) = %v, want %v", base, tt.other, got, tt.expect)
			}
			if got := tt.other.Overlaps(base); got != tt.expect {
				t.Errorf("%v.Overlaps(%v) = %v, want %v (symmetry)", tt.other, base, got, tt.expect)
			}
		})
	}
}

// --- Clamps ---

func TestClampByte(t *testing.T) {
	tests := []struct {
		in   float64
		want uint8
	}{
		{-1, 0}, {0, 0}, {12.9, 12}, {255, 255}, {300, 255}, {math.NaN(), 0},
	}
	for _, tt := range tests {
		if got := clampByte(tt.in); got != tt.want {
			t.Errorf("clampByte(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestClampUnit(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{-2, -1}, {-0.5, -0.5}, {0.25, 0.25}, {7, 1}, {math.NaN(), 0},
	}
	for _, tt := range tests {
		if got := clampUnit(tt.in); got != tt.want {
			t.Errorf("clampUnit(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestColorWhite(t *testing.T) {
	if ColorWhite.R != 255 || ColorWhite.G != 255 || ColorWhite.B != 255 || ColorWhite.A != 255 {
		t.Errorf("ColorWhite = %v, want opaque white", ColorWhite)
	}
}
