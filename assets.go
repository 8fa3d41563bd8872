package bramble

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"weak"
)

// rootRelativePrefixes mark a script path as relative to the environment root
// rather than to its assets directory.
var rootRelativePrefixes = []string{"./", "../", `.\`, `..\`, "assets/", `assets\`}

// Cache deduplicates path-loaded images and sounds. Entries are weak: the
// cache never keeps a resource alive, and GC sweeps entries whose resource
// was collected.
type Cache struct {
	root     string
	renderer Renderer
	audio    AudioDevice
	guard    exclusive

	images map[string]weak.Pointer[Image]
	sounds map[string]weak.Pointer[Sound]
}

// NewCache creates a cache resolving paths against root.
func NewCache(root string, r Renderer, a AudioDevice) *Cache {
	return &Cache{
		root:     root,
		renderer: r,
		audio:    a,
		images:   make(map[string]weak.Pointer[Image]),
		sounds:   make(map[string]weak.Pointer[Sound]),
	}
}

// Root returns the environment root.
func (c *Cache) Root() string { return c.root }

// Resolve maps a script-supplied path to a filesystem path.
func (c *Cache) Resolve(userPath string) string {
	if filepath.IsAbs(userPath) {
		return filepath.Clean(userPath)
	}
	for _, p := range rootRelativePrefixes {
		if strings.HasPrefix(userPath, p) {
			return filepath.Join(c.root, filepath.FromSlash(strings.ReplaceAll(userPath, `\`, "/")))
		}
	}
	return filepath.Join(c.root, "assets", filepath.FromSlash(strings.ReplaceAll(userPath, `\`, "/")))
}

// cacheKey canonicalizes a resolved path so that different spellings of the
// same file share an entry.
func cacheKey(resolved string) string {
	abs, err := filepath.Abs(resolved)
	if err != nil {
		abs = filepath.Clean(resolved)
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		return real
	}
	return abs
}

// LoadImage returns the cached image for path, loading it on a miss. An
// entry that was unloaded is reloaded in place.
func (c *Cache) LoadImage(path string) (*Image, error) {
	key := cacheKey(c.Resolve(path))

	c.guard.enter("LoadImage")
	defer c.guard.exit()

	if img := c.images[key].Value(); img != nil {
		if !img.unloaded {
			return img, nil
		}
		pix, err := c.readImage(key)
		if err != nil {
			return nil, err
		}
		img.reload(pix)
		return img, nil
	}

	pix, err := c.readImage(key)
	if err != nil {
		return nil, err
	}
	img := &Image{path: key, pix: pix, renderer: c.renderer}
	c.images[key] = weak.Make(img)
	return img, nil
}

func (c *Cache) readImage(key string) (*image.NRGBA, error) {
	data, err := os.ReadFile(key)
	if err != nil {
		return nil, &LoadError{Kind: "image", Path: key, Err: err}
	}
	pix, err := decodeImage(data)
	if err != nil {
		return nil, &LoadError{Kind: "image", Path: key, Err: err}
	}
	return pix, nil
}

// LoadSound returns the cached sound for path, loading it on a miss.
func (c *Cache) LoadSound(path string) (*Sound, error) {
	key := cacheKey(c.Resolve(path))

	c.guard.enter("LoadSound")
	defer c.guard.exit()

	if snd := c.sounds[key].Value(); snd != nil {
		if !snd.unloaded {
			return snd, nil
		}
		p, raw, err := c.readSound(key)
		if err != nil {
			return nil, err
		}
		snd.reload(p, raw)
		return snd, nil
	}

	p, raw, err := c.readSound(key)
	if err != nil {
		return nil, err
	}
	snd := &Sound{path: key, device: c.audio}
	snd.reload(p, raw)
	c.sounds[key] = weak.Make(snd)
	return snd, nil
}

func (c *Cache) readSound(key string) (*pcmData, []byte, error) {
	data, err := os.ReadFile(key)
	if err != nil {
		return nil, nil, &LoadError{Kind: "sound", Path: key, Err: err}
	}
	p, err := decodeWAV(data)
	if err != nil {
		return nil, nil, &LoadError{Kind: "sound", Path: key, Err: err}
	}
	return p, data, nil
}

// NewImage creates an uncached w×h image filled with fill.
func (c *Cache) NewImage(w, h int, fill color.NRGBA) (*Image, error) {
	if w < 0 || h < 0 {
		return nil, fmt.Errorf("new image %dx%d: negative size", w, h)
	}
	if w > maxImageSide || h > maxImageSide {
		return nil, fmt.Errorf("new image %dx%d: exceeds %d pixels per side", w, h, maxImageSide)
	}
	return &Image{pix: newFilledNRGBA(w, h, fill), renderer: c.renderer, dirty: true}, nil
}

// NewSound creates an uncached sound. length is rounded up to a whole number
// of frames and every sample is set to fill clamped to [-1, 1].
func (c *Cache) NewSound(sampleRate, channels, length int, fill float64) (*Sound, error) {
	if sampleRate < 1 {
		return nil, fmt.Errorf("new sound: invalid sample rate %d", sampleRate)
	}
	if channels < 1 {
		return nil, fmt.Errorf("new sound: invalid channel count %d", channels)
	}
	if length < 0 {
		return nil, fmt.Errorf("new sound: negative length %d", length)
	}
	if length > maxSoundSamples {
		return nil, fmt.Errorf("new sound: length %d exceeds %d samples", length, maxSoundSamples)
	}
	if r := length % channels; r != 0 {
		length += channels - r
	}
	samples := make([]float32, length)
	if v := float32(clampUnit(fill)); v != 0 {
		for i := range samples {
			samples[i] = v
		}
	}
	return &Sound{
		sampleRate: sampleRate,
		channels:   channels,
		samples:    samples,
		device:     c.audio,
		dirty:      true,
	}, nil
}

// UnloadImagePath drops the cache entry for path and unloads the image if it
// is still alive. It reports whether an entry existed.
func (c *Cache) UnloadImagePath(path string) bool {
	key := cacheKey(c.Resolve(path))

	c.guard.enter("UnloadImagePath")
	defer c.guard.exit()

	wp, ok := c.images[key]
	if !ok {
		return false
	}
	delete(c.images, key)
	if img := wp.Value(); img != nil {
		img.Unload()
	}
	return true
}

// UnloadSoundPath is UnloadImagePath for sounds.
func (c *Cache) UnloadSoundPath(path string) bool {
	key := cacheKey(c.Resolve(path))

	c.guard.enter("UnloadSoundPath")
	defer c.guard.exit()

	wp, ok := c.sounds[key]
	if !ok {
		return false
	}
	delete(c.sounds, key)
	if snd := wp.Value(); snd != nil {
		snd.Unload()
	}
	return true
}

// GC removes entries whose resource has been collected and returns how many
// image and sound entries were dropped.
func (c *Cache) GC() (images, sounds int) {
	c.guard.enter("GC")
	defer c.guard.exit()

	for k, wp := range c.images {
		if wp.Value() == nil {
			delete(c.images, k)
			images++
		}
	}
	for k, wp := range c.sounds {
		if wp.Value() == nil {
			delete(c.sounds, k)
			sounds++
		}
	}
	return images, sounds
}

// Len returns the number of image and sound entries, dead or alive.
func (c *Cache) Len() (images, sounds int) {
	return len(c.images), len(c.sounds)
}
