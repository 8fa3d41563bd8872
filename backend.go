package bramble

import (
	"image"
	"image/color"
)

// Texture is a renderer-side copy of an image's pixels.
type Texture interface {
	// Replace refreshes the texture contents from pix.
	Replace(pix *image.NRGBA)
	Dispose()
}

// Renderer draws into the frame's backbuffer. All coordinates are in pixels.
type Renderer interface {
	NewTexture(pix *image.NRGBA) Texture
	Clear(c color.NRGBA)
	DrawTexture(t Texture, x, y, w, h float64, tint color.NRGBA)
	DrawRect(x, y, w, h float64, c color.NRGBA)
	// DrawText draws s with its top-left at (x, y) and returns the drawn extent.
	DrawText(s string, x, y, size float64, c color.NRGBA) (w, h float64)
	Size() (w, h int)
}

// Playback is a sound registered with an audio device.
type Playback interface {
	Play(loop bool, volume float64) error
	Stop()
	SetVolume(volume float64)
	Close()
}

// AudioDevice turns encoded WAV bytes into something playable. Decode blocks
// until the device has fully accepted the sound.
type AudioDevice interface {
	Decode(wav []byte) (Playback, error)
}

// InputSource supplies the pointer state exposed to scripts each frame.
type InputSource interface {
	CursorPosition() (x, y float64)
}

// Backends bundles the native collaborators a Runtime drives.
type Backends struct {
	Renderer Renderer
	Audio    AudioDevice
	Input    InputSource
}

// withDefaults fills any missing backend with its headless counterpart.
func (b Backends) withDefaults() Backends {
	if b.Renderer == nil {
		b.Renderer = NewHeadlessRenderer(DefaultWidth, DefaultHeight)
	}
	if b.Audio == nil {
		b.Audio = HeadlessAudio{}
	}
	if b.Input == nil {
		b.Input = HeadlessInput{}
	}
	return b
}
