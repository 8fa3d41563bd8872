package bramble

import (
	"image/color"

	lua "github.com/yuin/gopher-lua"
)

const (
	fieldColor    = "color"
	fieldTweenRef = "_tween"

	defaultLabelText  = "Text Label"
	defaultLabelScale = 32
)

// registerCore installs the built-in components under the core global.
// The drawables are rendering components and draw at the entity's world
// position.
func (r *Runtime) registerCore() {
	L := r.L
	core := L.NewTable()

	rect := r.basicDrawable("Rect2D")
	rect.RawSetString(fieldUpdate, L.NewFunction(r.updateRect2D))
	core.RawSetString("Rect2D", rect)

	label := r.basicDrawable("RudimentaryTextLabel")
	label.RawSetString("text", lua.LString(defaultLabelText))
	label.RawSetString("scale", lua.LNumber(defaultLabelScale))
	label.RawSetString("dx", lua.LNumber(0))
	label.RawSetString("dy", lua.LNumber(0))
	label.RawSetString(fieldUpdate, L.NewFunction(r.updateTextLabel))
	core.RawSetString("RudimentaryTextLabel", label)

	sprite := r.basicDrawable("Sprite")
	sprite.RawSetString(fieldUpdate, L.NewFunction(r.updateSprite))
	core.RawSetString("Sprite", sprite)

	tween := L.NewTable()
	tween.RawSetString(fieldName, lua.LString("Tween"))
	tween.RawSetString("duration", lua.LNumber(1))
	tween.RawSetString("ease", lua.LString("linear"))
	tween.RawSetString("done", lua.LFalse)
	tween.RawSetString(fieldAwake, L.NewFunction(r.awakeTween))
	tween.RawSetString(fieldUpdate, L.NewFunction(r.updateTween))
	core.RawSetString("Tween", tween)

	L.SetGlobal("core", core)
}

// basicDrawable is a rendering component whose awake resets color to white.
func (r *Runtime) basicDrawable(name string) *lua.LTable {
	t := r.L.NewTable()
	t.RawSetString(fieldName, lua.LString(name))
	t.RawSetString(fieldRendering, lua.LTrue)
	t.RawSetString(fieldAwake, r.L.NewFunction(func(L *lua.LState) int {
		comp := L.CheckTable(2)
		comp.RawSetString(fieldColor, colorTable(L, ColorWhite))
		return 0
	}))
	return t
}

func componentColor(comp *lua.LTable) color.NRGBA {
	if c, ok := readColor(comp.RawGetString(fieldColor)); ok {
		return c
	}
	return ColorWhite
}

func (r *Runtime) updateRect2D(L *lua.LState) int {
	e, comp := L.CheckTable(1), L.CheckTable(2)
	b, err := Bounds(e)
	raiseIf(L, err)
	r.backends.Renderer.DrawRect(b.X, b.Y, b.Width, b.Height, componentColor(comp))
	return 0
}

func (r *Runtime) updateTextLabel(L *lua.LState) int {
	e, comp := L.CheckTable(1), L.CheckTable(2)
	x, y, err := WorldPosition(e)
	raiseIf(L, err)
	text := lua.LVAsString(comp.RawGetString("text"))
	size, ok := numberField(comp, "scale")
	if !ok {
		size = defaultLabelScale
	}
	w, h := r.backends.Renderer.DrawText(text, x, y, size, componentColor(comp))
	comp.RawSetString("dx", lua.LNumber(w))
	comp.RawSetString("dy", lua.LNumber(h))
	return 0
}

func (r *Runtime) updateSprite(L *lua.LState) int {
	e, comp := L.CheckTable(1), L.CheckTable(2)
	img, ok := toImage(comp.RawGetString("image"))
	if !ok {
		return 0
	}
	tex, err := img.Texture()
	raiseIf(L, err)
	b, err := Bounds(e)
	raiseIf(L, err)
	r.backends.Renderer.DrawTexture(tex, b.X, b.Y, b.Width, b.Height, componentColor(comp))
	return 0
}

func (r *Runtime) awakeTween(L *lua.LState) int {
	e, comp := L.CheckTable(1), L.CheckTable(2)
	fromX, _ := numberField(e, fieldX)
	fromY, _ := numberField(e, fieldY)
	toX, ok := numberField(comp, "to_x")
	if !ok {
		toX = fromX
	}
	toY, ok := numberField(comp, "to_y")
	if !ok {
		toY = fromY
	}
	duration, ok := numberField(comp, "duration")
	if !ok || duration <= 0 {
		duration = 1
	}
	g, err := tweenPosition(e, toX, toY, float32(duration), easingByName(lua.LVAsString(comp.RawGetString("ease"))))
	raiseIf(L, err)

	ud := L.NewUserData()
	ud.Value = g
	comp.RawSetString(fieldTweenRef, ud)
	comp.RawSetString("done", lua.LFalse)
	return 0
}

func (r *Runtime) updateTween(L *lua.LState) int {
	comp := L.CheckTable(2)
	dt := float32(L.CheckNumber(3))
	ud, ok := comp.RawGetString(fieldTweenRef).(*lua.LUserData)
	if !ok {
		return 0
	}
	g, ok := ud.Value.(*positionTween)
	if !ok {
		return 0
	}
	g.Update(dt)
	comp.RawSetString("done", lua.LBool(g.Done))
	return 0
}
