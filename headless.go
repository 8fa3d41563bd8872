package bramble

import (
	"image"
	"image/color"
)

// HeadlessRenderer is a Renderer that draws nothing. It keeps counters so
// smoke runs can report what a frame would have drawn.
type HeadlessRenderer struct {
	Width, Height int

	Clears    int
	Draws     int
	Textures  int
	LastClear color.NRGBA
}

// NewHeadlessRenderer returns a renderer reporting the given backbuffer size.
func NewHeadlessRenderer(w, h int) *HeadlessRenderer {
	return &HeadlessRenderer{Width: w, Height: h}
}

type headlessTexture struct{}

func (headlessTexture) Replace(*image.NRGBA) {}
func (headlessTexture) Dispose()             {}

func (r *HeadlessRenderer) NewTexture(*image.NRGBA) Texture {
	r.Textures++
	return headlessTexture{}
}

func (r *HeadlessRenderer) Clear(c color.NRGBA) {
	r.Clears++
	r.LastClear = c
}

func (r *HeadlessRenderer) DrawTexture(Texture, float64, float64, float64, float64, color.NRGBA) {
	r.Draws++
}

func (r *HeadlessRenderer) DrawRect(float64, float64, float64, float64, color.NRGBA) {
	r.Draws++
}

// DrawText measures with a fixed advance of half the size per rune.
func (r *HeadlessRenderer) DrawText(s string, _, _, size float64, _ color.NRGBA) (float64, float64) {
	r.Draws++
	return float64(len([]rune(s))) * size / 2, size
}

func (r *HeadlessRenderer) Size() (int, int) {
	return r.Width, r.Height
}

// HeadlessAudio validates WAV bytes and returns a silent playback.
type HeadlessAudio struct{}

func (HeadlessAudio) Decode(wav []byte) (Playback, error) {
	if _, err := decodeWAV(wav); err != nil {
		return nil, err
	}
	return &headlessPlayback{volume: 1}, nil
}

type headlessPlayback struct {
	playing bool
	looping bool
	volume  float64
}

func (p *headlessPlayback) Play(loop bool, volume float64) error {
	p.playing, p.looping, p.volume = true, loop, volume
	return nil
}

func (p *headlessPlayback) Stop()                    { p.playing = false }
func (p *headlessPlayback) SetVolume(volume float64) { p.volume = volume }
func (p *headlessPlayback) Close()                   { p.playing = false }

// HeadlessInput reports the pointer at the origin.
type HeadlessInput struct{}

func (HeadlessInput) CursorPosition() (float64, float64) { return 0, 0 }

// NewHeadlessBackends returns backends that draw and play nothing, for
// tests and smoke runs.
func NewHeadlessBackends(w, h int) Backends {
	return Backends{
		Renderer: NewHeadlessRenderer(w, h),
		Audio:    HeadlessAudio{},
		Input:    HeadlessInput{},
	}
}
