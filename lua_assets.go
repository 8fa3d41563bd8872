package bramble

import (
	lua "github.com/yuin/gopher-lua"
)

const (
	imageTypeName = "Image"
	soundTypeName = "Sound"
)

func (r *Runtime) registerAssets() {
	L := r.L

	imt := L.NewTypeMetatable(imageTypeName)
	L.SetField(imt, "__index", L.SetFuncs(L.NewTable(), imageMethods))
	L.SetField(imt, "__tostring", L.NewFunction(userdataToString))
	L.SetField(imt, "__eq", L.NewFunction(userdataEq))

	smt := L.NewTypeMetatable(soundTypeName)
	L.SetField(smt, "__index", L.SetFuncs(L.NewTable(), soundMethods))
	L.SetField(smt, "__tostring", L.NewFunction(userdataToString))
	L.SetField(smt, "__eq", L.NewFunction(userdataEq))

	assets := L.NewTable()
	L.SetFuncs(assets, map[string]lua.LGFunction{
		"loadImage":   r.luaLoadImage,
		"newImage":    r.luaNewImage,
		"loadSound":   r.luaLoadSound,
		"newSound":    r.luaNewSound,
		"unloadImage": r.luaUnloadImage,
		"unloadSound": r.luaUnloadSound,
		"gc":          r.luaAssetsGC,
	})
	L.SetGlobal("assets", assets)
}

func pushImage(L *lua.LState, img *Image) {
	ud := L.NewUserData()
	ud.Value = img
	L.SetMetatable(ud, L.GetTypeMetatable(imageTypeName))
	L.Push(ud)
}

func pushSound(L *lua.LState, snd *Sound) {
	ud := L.NewUserData()
	ud.Value = snd
	L.SetMetatable(ud, L.GetTypeMetatable(soundTypeName))
	L.Push(ud)
}

func checkImage(L *lua.LState, n int) *Image {
	ud := L.CheckUserData(n)
	if img, ok := ud.Value.(*Image); ok {
		return img
	}
	L.ArgError(n, "Image expected")
	return nil
}

func checkSound(L *lua.LState, n int) *Sound {
	ud := L.CheckUserData(n)
	if snd, ok := ud.Value.(*Sound); ok {
		return snd
	}
	L.ArgError(n, "Sound expected")
	return nil
}

// toImage returns the image held by v, if any.
func toImage(v lua.LValue) (*Image, bool) {
	ud, ok := v.(*lua.LUserData)
	if !ok {
		return nil, false
	}
	img, ok := ud.Value.(*Image)
	return img, ok
}

func userdataToString(L *lua.LState) int {
	ud := L.CheckUserData(1)
	if s, ok := ud.Value.(interface{ String() string }); ok {
		L.Push(lua.LString(s.String()))
	} else {
		L.Push(lua.LString("userdata"))
	}
	return 1
}

// userdataEq makes two handles to the same cached resource compare equal.
func userdataEq(L *lua.LState) int {
	a := L.CheckUserData(1)
	b := L.CheckUserData(2)
	L.Push(lua.LBool(a.Value == b.Value))
	return 1
}

func raiseIf(L *lua.LState, err error) {
	if err != nil {
		L.RaiseError("%v", err)
	}
}

// --- assets ---

func (r *Runtime) luaLoadImage(L *lua.LState) int {
	img, err := r.cache.LoadImage(L.CheckString(1))
	raiseIf(L, err)
	pushImage(L, img)
	return 1
}

func (r *Runtime) luaNewImage(L *lua.LState) int {
	w := L.CheckInt(1)
	h := L.CheckInt(2)
	img, err := r.cache.NewImage(w, h, colorArgs(L, 3, ColorWhite))
	raiseIf(L, err)
	pushImage(L, img)
	return 1
}

func (r *Runtime) luaLoadSound(L *lua.LState) int {
	snd, err := r.cache.LoadSound(L.CheckString(1))
	raiseIf(L, err)
	pushSound(L, snd)
	return 1
}

func (r *Runtime) luaNewSound(L *lua.LState) int {
	snd, err := r.cache.NewSound(L.CheckInt(1), L.CheckInt(2), L.CheckInt(3), float64(L.OptNumber(4, 0)))
	raiseIf(L, err)
	pushSound(L, snd)
	return 1
}

func (r *Runtime) luaUnloadImage(L *lua.LState) int {
	if s, ok := L.Get(1).(lua.LString); ok {
		L.Push(lua.LBool(r.cache.UnloadImagePath(string(s))))
		return 1
	}
	checkImage(L, 1).Unload()
	L.Push(lua.LTrue)
	return 1
}

func (r *Runtime) luaUnloadSound(L *lua.LState) int {
	if s, ok := L.Get(1).(lua.LString); ok {
		L.Push(lua.LBool(r.cache.UnloadSoundPath(string(s))))
		return 1
	}
	checkSound(L, 1).Unload()
	L.Push(lua.LTrue)
	return 1
}

func (r *Runtime) luaAssetsGC(L *lua.LState) int {
	images, sounds := r.cache.GC()
	r.log.Debug("asset cache swept", "images", images, "sounds", sounds)
	L.Push(lua.LNumber(images))
	L.Push(lua.LNumber(sounds))
	return 2
}

// --- Image methods ---

var imageMethods = map[string]lua.LGFunction{
	"width": func(L *lua.LState) int {
		w, err := checkImage(L, 1).Width()
		raiseIf(L, err)
		L.Push(lua.LNumber(w))
		return 1
	},
	"height": func(L *lua.LState) int {
		h, err := checkImage(L, 1).Height()
		raiseIf(L, err)
		L.Push(lua.LNumber(h))
		return 1
	},
	"size": func(L *lua.LState) int {
		img := checkImage(L, 1)
		w, err := img.Width()
		raiseIf(L, err)
		h, _ := img.Height()
		L.Push(lua.LNumber(w))
		L.Push(lua.LNumber(h))
		return 2
	},
	"getPixel": func(L *lua.LState) int {
		c, err := checkImage(L, 1).Pixel(L.CheckInt(2), L.CheckInt(3))
		raiseIf(L, err)
		L.Push(colorTable(L, c))
		return 1
	},
	"setPixel": func(L *lua.LState) int {
		img := checkImage(L, 1)
		x, y := L.CheckInt(2), L.CheckInt(3)
		raiseIf(L, img.SetPixel(x, y, colorArgs(L, 4, ColorWhite)))
		return 0
	},
	"fill": func(L *lua.LState) int {
		img := checkImage(L, 1)
		raiseIf(L, img.Fill(colorArgs(L, 2, ColorWhite)))
		return 0
	},
	"upload": func(L *lua.LState) int {
		raiseIf(L, checkImage(L, 1).EnsureUploaded())
		return 0
	},
	"unload": func(L *lua.LState) int {
		checkImage(L, 1).Unload()
		return 0
	},
	"isUnloaded": func(L *lua.LState) int {
		L.Push(lua.LBool(checkImage(L, 1).Unloaded()))
		return 1
	},
}

// --- Sound methods ---

var soundMethods = map[string]lua.LGFunction{
	"sampleRate": func(L *lua.LState) int {
		n, err := checkSound(L, 1).SampleRate()
		raiseIf(L, err)
		L.Push(lua.LNumber(n))
		return 1
	},
	"channels": func(L *lua.LState) int {
		n, err := checkSound(L, 1).Channels()
		raiseIf(L, err)
		L.Push(lua.LNumber(n))
		return 1
	},
	"len": func(L *lua.LState) int {
		n, err := checkSound(L, 1).Len()
		raiseIf(L, err)
		L.Push(lua.LNumber(n))
		return 1
	},
	"getSample": func(L *lua.LState) int {
		v, err := checkSound(L, 1).Sample(L.CheckInt(2))
		raiseIf(L, err)
		L.Push(lua.LNumber(v))
		return 1
	},
	"setSample": func(L *lua.LState) int {
		snd := checkSound(L, 1)
		raiseIf(L, snd.SetSample(L.CheckInt(2), float64(L.CheckNumber(3))))
		return 0
	},
	"upload": func(L *lua.LState) int {
		raiseIf(L, checkSound(L, 1).EnsureUploaded())
		return 0
	},
	"unload": func(L *lua.LState) int {
		checkSound(L, 1).Unload()
		return 0
	},
	"isUnloaded": func(L *lua.LState) int {
		L.Push(lua.LBool(checkSound(L, 1).Unloaded()))
		return 1
	},
}
