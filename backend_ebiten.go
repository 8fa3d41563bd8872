package bramble

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/basicfont"
)

// basicGlyphHeight is the pixel height of the built-in debug face.
const basicGlyphHeight = 13

// EbitenBackend renders into an offscreen backbuffer during Update; the game
// loop blits it to the screen in Draw.
type EbitenBackend struct {
	back  *ebiten.Image
	white *ebiten.Image
	face  text.Face
	audio *ebitenAudio

	cursorX, cursorY float64
}

// NewEbitenBackend creates the renderer, audio device and input source for a
// w×h window. sampleRate configures the shared audio context.
func NewEbitenBackend(w, h, sampleRate int) *EbitenBackend {
	white := ebiten.NewImage(1, 1)
	white.Fill(color.White)
	return &EbitenBackend{
		back:  ebiten.NewImage(max(w, 1), max(h, 1)),
		white: white,
		face:  text.NewGoXFace(basicfont.Face7x13),
		audio: newEbitenAudio(sampleRate),
	}
}

// Backends returns the backend bundle for NewRuntime.
func (b *EbitenBackend) Backends() Backends {
	return Backends{Renderer: b, Audio: b.audio, Input: b}
}

// resize reallocates the backbuffer when the layout size changes.
func (b *EbitenBackend) resize(w, h int) {
	w, h = max(w, 1), max(h, 1)
	if bw, bh := b.Size(); bw == w && bh == h {
		return
	}
	b.back.Deallocate()
	b.back = ebiten.NewImage(w, h)
}

// pollInput samples the cursor once per tick.
func (b *EbitenBackend) pollInput() {
	x, y := ebiten.CursorPosition()
	b.cursorX, b.cursorY = float64(x), float64(y)
}

type ebitenTexture struct {
	img *ebiten.Image
}

// Replace uploads new pixel contents. WritePixels takes premultiplied alpha.
func (t *ebitenTexture) Replace(pix *image.NRGBA) {
	buf := make([]byte, len(pix.Pix))
	for i := 0; i < len(buf); i += 4 {
		a := uint16(pix.Pix[i+3])
		buf[i+0] = uint8(uint16(pix.Pix[i+0]) * a / 255)
		buf[i+1] = uint8(uint16(pix.Pix[i+1]) * a / 255)
		buf[i+2] = uint8(uint16(pix.Pix[i+2]) * a / 255)
		buf[i+3] = uint8(a)
	}
	t.img.WritePixels(buf)
}

func (t *ebitenTexture) Dispose() {
	t.img.Deallocate()
}

func (b *EbitenBackend) NewTexture(pix *image.NRGBA) Texture {
	return &ebitenTexture{img: ebiten.NewImageFromImage(pix)}
}

func (b *EbitenBackend) Clear(c color.NRGBA) {
	b.back.Fill(c)
}

func (b *EbitenBackend) DrawTexture(t Texture, x, y, w, h float64, tint color.NRGBA) {
	et, ok := t.(*ebitenTexture)
	if !ok {
		return
	}
	bounds := et.img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(w/float64(bounds.Dx()), h/float64(bounds.Dy()))
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(tint)
	b.back.DrawImage(et.img, op)
}

func (b *EbitenBackend) DrawRect(x, y, w, h float64, c color.NRGBA) {
	if w <= 0 || h <= 0 {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(w, h)
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(c)
	b.back.DrawImage(b.white, op)
}

func (b *EbitenBackend) DrawText(s string, x, y, size float64, c color.NRGBA) (float64, float64) {
	scale := size / basicGlyphHeight
	op := &text.DrawOptions{}
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(c)
	op.LineSpacing = basicGlyphHeight
	text.Draw(b.back, s, b.face, op)
	w, h := text.Measure(s, b.face, basicGlyphHeight)
	return w * scale, h * scale
}

func (b *EbitenBackend) Size() (int, int) {
	r := b.back.Bounds()
	return r.Dx(), r.Dy()
}

func (b *EbitenBackend) CursorPosition() (float64, float64) {
	return b.cursorX, b.cursorY
}
