package bramble

import (
	"image/color"

	lua "github.com/yuin/gopher-lua"
)

// errDied unwinds the script after die() when the exit function returns.
const errDied = "bramble: die called"

func (r *Runtime) registerApp() {
	L := r.L

	r.app = L.NewTable()
	r.app.RawSetString("bg", colorTable(L, ColorWhite))
	L.SetFuncs(r.app, map[string]lua.LGFunction{
		"setMaxFps": r.luaSetMaxFPS,
		"getMaxFps": r.luaGetMaxFPS,
		"setDebug":  r.luaSetDebug,
	})
	L.SetGlobal("app", r.app)

	r.mouse = L.NewTable()
	r.window = L.NewTable()
	r.refreshAmbient()

	L.SetGlobal("Color4", L.NewFunction(luaColor4))
	L.SetGlobal("die", L.NewFunction(r.luaDie))
}

// refreshAmbient updates the mouse and window globals.
func (r *Runtime) refreshAmbient() {
	mx, my := r.backends.Input.CursorPosition()
	r.mouse.RawSetString("x", lua.LNumber(mx))
	r.mouse.RawSetString("y", lua.LNumber(my))
	r.L.SetGlobal("mouse", r.mouse)

	w, h := r.backends.Renderer.Size()
	r.window.RawSetString("x", lua.LNumber(w))
	r.window.RawSetString("y", lua.LNumber(h))
	r.L.SetGlobal("window", r.window)
}

// background reads app.bg, falling back to white when it is not a color.
func (r *Runtime) background() color.NRGBA {
	if c, ok := readColor(r.app.RawGetString("bg")); ok {
		return c
	}
	return ColorWhite
}

func (r *Runtime) luaSetMaxFPS(L *lua.LState) int {
	fps := 0.0
	if n, ok := L.Get(1).(lua.LNumber); ok {
		fps = float64(n)
	}
	r.setMaxFPS(fps)
	return 0
}

func (r *Runtime) luaGetMaxFPS(L *lua.LState) int {
	if r.maxFPS == 0 {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LNumber(r.maxFPS))
	return 1
}

func (r *Runtime) luaSetDebug(L *lua.LState) int {
	r.debug = L.ToBool(1)
	return 0
}

func (r *Runtime) luaDie(L *lua.LState) int {
	code := L.OptInt(1, 1)
	r.die(code)
	L.RaiseError(errDied)
	return 0
}

// luaColor4 builds a color table {r, g, b, a}. Channels are clamped to
// 0..255 and alpha defaults to opaque.
func luaColor4(L *lua.LState) int {
	c := color.NRGBA{
		R: clampByte(float64(L.CheckNumber(1))),
		G: clampByte(float64(L.CheckNumber(2))),
		B: clampByte(float64(L.CheckNumber(3))),
		A: clampByte(float64(L.OptNumber(4, 255))),
	}
	L.Push(colorTable(L, c))
	return 1
}

func colorTable(L *lua.LState, c color.NRGBA) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("r", lua.LNumber(c.R))
	t.RawSetString("g", lua.LNumber(c.G))
	t.RawSetString("b", lua.LNumber(c.B))
	t.RawSetString("a", lua.LNumber(c.A))
	return t
}

// readColor accepts {r=, g=, b=[, a=]} or {r, g, b[, a]}.
func readColor(v lua.LValue) (color.NRGBA, bool) {
	t, ok := v.(*lua.LTable)
	if !ok {
		return color.NRGBA{}, false
	}
	keys := [4]string{"r", "g", "b", "a"}
	var ch [4]float64
	for i, k := range keys {
		val := t.RawGetString(k)
		if val == lua.LNil {
			val = t.RawGetInt(i + 1)
		}
		n, ok := val.(lua.LNumber)
		switch {
		case ok:
			ch[i] = float64(n)
		case i == 3 && val == lua.LNil:
			ch[i] = 255
		default:
			return color.NRGBA{}, false
		}
	}
	return color.NRGBA{R: clampByte(ch[0]), G: clampByte(ch[1]), B: clampByte(ch[2]), A: clampByte(ch[3])}, true
}

// colorArgs reads a color starting at argument n, either as one color table
// or as r, g, b[, a] numbers. Missing arguments yield def.
func colorArgs(L *lua.LState, n int, def color.NRGBA) color.NRGBA {
	switch v := L.Get(n).(type) {
	case *lua.LNilType:
		return def
	case *lua.LTable:
		c, ok := readColor(v)
		if !ok {
			L.ArgError(n, "color table needs numeric r, g, b")
		}
		return c
	default:
		return color.NRGBA{
			R: clampByte(float64(L.CheckNumber(n))),
			G: clampByte(float64(L.CheckNumber(n + 1))),
			B: clampByte(float64(L.CheckNumber(n + 2))),
			A: clampByte(float64(L.OptNumber(n+3, 255))),
		}
	}
}
