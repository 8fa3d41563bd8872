package bramble

import (
	"fmt"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
	lua "github.com/yuin/gopher-lua"
)

// easings maps the names scripts use to gween easing functions.
var easings = map[string]ease.TweenFunc{
	"linear":      ease.Linear,
	"inQuad":      ease.InQuad,
	"outQuad":     ease.OutQuad,
	"inOutQuad":   ease.InOutQuad,
	"inCubic":     ease.InCubic,
	"outCubic":    ease.OutCubic,
	"inOutCubic":  ease.InOutCubic,
	"inSine":      ease.InSine,
	"outSine":     ease.OutSine,
	"inOutSine":   ease.InOutSine,
	"inBounce":    ease.InBounce,
	"outBounce":   ease.OutBounce,
	"inOutBounce": ease.InOutBounce,
}

// easingByName returns the named easing, or linear for unknown names.
func easingByName(name string) ease.TweenFunc {
	if fn, ok := easings[name]; ok {
		return fn
	}
	return ease.Linear
}

// positionTween animates the x and y fields of an entity table. Call Update
// each frame; the values are written back to the table.
type positionTween struct {
	x, y   *gween.Tween
	target *lua.LTable
	Done   bool
}

// tweenPosition starts a tween from the entity's current local position to
// (toX, toY).
func tweenPosition(e *lua.LTable, toX, toY float64, duration float32, fn ease.TweenFunc) (*positionTween, error) {
	fromX, ok := numberField(e, fieldX)
	if !ok {
		return nil, fmt.Errorf("tween: %s is not a number", fieldX)
	}
	fromY, ok := numberField(e, fieldY)
	if !ok {
		return nil, fmt.Errorf("tween: %s is not a number", fieldY)
	}
	return &positionTween{
		x:      gween.New(float32(fromX), float32(toX), duration, fn),
		y:      gween.New(float32(fromY), float32(toY), duration, fn),
		target: e,
	}, nil
}

// Update advances the tween by dt seconds and writes the position.
func (g *positionTween) Update(dt float32) {
	if g.Done {
		return
	}
	x, doneX := g.x.Update(dt)
	y, doneY := g.y.Update(dt)
	g.target.RawSetString(fieldX, lua.LNumber(x))
	g.target.RawSetString(fieldY, lua.LNumber(y))
	g.Done = doneX && doneY
}
