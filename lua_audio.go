package bramble

import lua "github.com/yuin/gopher-lua"

// registerAudio installs the audio table. Every call except stop refreshes
// the sound's playback first, so setSample edits are heard on the next play.
func (r *Runtime) registerAudio() {
	L := r.L
	audio := L.NewTable()
	L.SetFuncs(audio, map[string]lua.LGFunction{
		"play":      luaAudioPlay,
		"playOnce":  luaAudioPlayOnce,
		"stop":      luaAudioStop,
		"setVolume": luaAudioSetVolume,
	})
	L.SetGlobal("audio", audio)
}

func luaAudioPlay(L *lua.LState) int {
	pb, err := checkSound(L, 1).Playback()
	raiseIf(L, err)
	loop := L.OptBool(2, false)
	vol := clamp01(float64(L.OptNumber(3, 1)))
	raiseIf(L, pb.Play(loop, vol))
	return 0
}

func luaAudioPlayOnce(L *lua.LState) int {
	pb, err := checkSound(L, 1).Playback()
	raiseIf(L, err)
	raiseIf(L, pb.Play(false, clamp01(float64(L.OptNumber(2, 1)))))
	return 0
}

func luaAudioStop(L *lua.LState) int {
	snd := checkSound(L, 1)
	if snd.playback != nil {
		snd.playback.Stop()
	}
	return 0
}

func luaAudioSetVolume(L *lua.LState) int {
	pb, err := checkSound(L, 1).Playback()
	raiseIf(L, err)
	pb.SetVolume(clamp01(float64(L.CheckNumber(2))))
	return 0
}
