package bramble

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	xdraw "golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// maxImageSide bounds programmatic image dimensions.
const maxImageSide = 16384

// Image is a CPU-side NRGBA pixel buffer with a lazily created backend
// texture. Mutations only mark it dirty; EnsureUploaded pushes them.
type Image struct {
	path     string
	pix      *image.NRGBA
	renderer Renderer
	texture  Texture
	dirty    bool
	unloaded bool
}

func decodeImage(data []byte) (*image.NRGBA, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if n, ok := src.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n, nil
	}
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(dst, dst.Bounds(), src, b.Min, xdraw.Src)
	return dst, nil
}

func newFilledNRGBA(w, h int, c color.NRGBA) *image.NRGBA {
	pix := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(pix.Pix); i += 4 {
		pix.Pix[i+0] = c.R
		pix.Pix[i+1] = c.G
		pix.Pix[i+2] = c.B
		pix.Pix[i+3] = c.A
	}
	return pix
}

// Path returns the canonical path the image was loaded from, or "" for
// programmatic images.
func (img *Image) Path() string { return img.path }

// Width returns the image width in pixels.
func (img *Image) Width() (int, error) {
	if img.unloaded {
		return 0, ErrUnloaded
	}
	return img.pix.Rect.Dx(), nil
}

// Height returns the image height in pixels.
func (img *Image) Height() (int, error) {
	if img.unloaded {
		return 0, ErrUnloaded
	}
	return img.pix.Rect.Dy(), nil
}

func (img *Image) checkPoint(x, y int) error {
	if img.unloaded {
		return ErrUnloaded
	}
	if !(image.Point{X: x, Y: y}).In(img.pix.Rect) {
		return fmt.Errorf("pixel (%d, %d) in %dx%d image: %w",
			x, y, img.pix.Rect.Dx(), img.pix.Rect.Dy(), ErrOutOfBounds)
	}
	return nil
}

// Pixel returns the color at (x, y).
func (img *Image) Pixel(x, y int) (color.NRGBA, error) {
	if err := img.checkPoint(x, y); err != nil {
		return color.NRGBA{}, err
	}
	return img.pix.NRGBAAt(x, y), nil
}

// SetPixel writes the color at (x, y) and marks the image dirty.
func (img *Image) SetPixel(x, y int, c color.NRGBA) error {
	if err := img.checkPoint(x, y); err != nil {
		return err
	}
	img.pix.SetNRGBA(x, y, c)
	img.dirty = true
	return nil
}

// Fill sets every pixel to c and marks the image dirty.
func (img *Image) Fill(c color.NRGBA) error {
	if img.unloaded {
		return ErrUnloaded
	}
	for i := 0; i < len(img.pix.Pix); i += 4 {
		img.pix.Pix[i+0] = c.R
		img.pix.Pix[i+1] = c.G
		img.pix.Pix[i+2] = c.B
		img.pix.Pix[i+3] = c.A
	}
	img.dirty = true
	return nil
}

// EnsureUploaded creates the backend texture on first use and refreshes it
// when the pixels changed since the last upload.
func (img *Image) EnsureUploaded() error {
	if img.unloaded {
		return ErrUnloaded
	}
	switch {
	case img.texture == nil:
		img.texture = img.renderer.NewTexture(img.pix)
	case img.dirty:
		img.texture.Replace(img.pix)
	}
	img.dirty = false
	return nil
}

// Texture returns the backend texture after ensuring it is current.
func (img *Image) Texture() (Texture, error) {
	if err := img.EnsureUploaded(); err != nil {
		return nil, err
	}
	return img.texture, nil
}

// Unload releases the pixels and the texture. Every holder observes the
// unloaded state; a later LoadImage of the same path reloads in place.
func (img *Image) Unload() {
	if img.texture != nil {
		img.texture.Dispose()
		img.texture = nil
	}
	img.pix = nil
	img.dirty = false
	img.unloaded = true
}

// reload swaps in freshly decoded pixels and resets the flags.
func (img *Image) reload(pix *image.NRGBA) {
	img.pix = pix
	img.texture = nil
	img.dirty = false
	img.unloaded = false
}

// Dirty reports whether the pixels changed since the last upload.
func (img *Image) Dirty() bool { return img.dirty }

// Unloaded reports whether Unload was called.
func (img *Image) Unloaded() bool { return img.unloaded }

func (img *Image) String() string {
	switch {
	case img.unloaded:
		return fmt.Sprintf("Image(unloaded %q)", img.path)
	case img.path != "":
		return fmt.Sprintf("Image(%dx%d %q)", img.pix.Rect.Dx(), img.pix.Rect.Dy(), img.path)
	default:
		return fmt.Sprintf("Image(%dx%d)", img.pix.Rect.Dx(), img.pix.Rect.Dy())
	}
}
