package bramble

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	lua "github.com/yuin/gopher-lua"
)

// --- Recording backends ---

type recordingTexture struct {
	replaced int
	disposed bool
}

func (t *recordingTexture) Replace(*image.NRGBA) { t.replaced++ }
func (t *recordingTexture) Dispose()             { t.disposed = true }

// recordingRenderer is a HeadlessRenderer that keeps the textures it made.
type recordingRenderer struct {
	HeadlessRenderer
	textures []*recordingTexture
	rects    []Rect
}

func newRecordingRenderer() *recordingRenderer {
	return &recordingRenderer{HeadlessRenderer: HeadlessRenderer{Width: 320, Height: 240}}
}

func (r *recordingRenderer) NewTexture(*image.NRGBA) Texture {
	t := &recordingTexture{}
	r.textures = append(r.textures, t)
	return t
}

func (r *recordingRenderer) DrawRect(x, y, w, h float64, c color.NRGBA) {
	r.rects = append(r.rects, Rect{X: x, Y: y, Width: w, Height: h})
	r.HeadlessRenderer.DrawRect(x, y, w, h, c)
}

// recordingAudio keeps every byte slice it was asked to decode.
type recordingAudio struct {
	decoded [][]byte
}

func (a *recordingAudio) Decode(wav []byte) (Playback, error) {
	pb, err := HeadlessAudio{}.Decode(wav)
	if err != nil {
		return nil, err
	}
	a.decoded = append(a.decoded, wav)
	return pb, nil
}

type fixedInput struct{ x, y float64 }

func (in fixedInput) CursorPosition() (float64, float64) { return in.x, in.y }

// --- Fixtures ---

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func pngBytes(t *testing.T, w, h int, c color.NRGBA) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, newFilledNRGBA(w, h, c)); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// wavBytes assembles a RIFF/WAVE stream from a fmt description and body.
// extra chunks are inserted between fmt and data.
func wavBytes(format uint16, channels, rate, bits int, body []byte, extra ...[]byte) []byte {
	var buf bytes.Buffer
	var chunks bytes.Buffer

	chunks.WriteString("fmt ")
	_ = binary.Write(&chunks, binary.LittleEndian, uint32(16))
	_ = binary.Write(&chunks, binary.LittleEndian, format)
	_ = binary.Write(&chunks, binary.LittleEndian, uint16(channels))
	_ = binary.Write(&chunks, binary.LittleEndian, uint32(rate))
	_ = binary.Write(&chunks, binary.LittleEndian, uint32(rate*channels*bits/8))
	_ = binary.Write(&chunks, binary.LittleEndian, uint16(channels*bits/8))
	_ = binary.Write(&chunks, binary.LittleEndian, uint16(bits))
	for _, e := range extra {
		chunks.Write(e)
	}
	chunks.WriteString("data")
	_ = binary.Write(&chunks, binary.LittleEndian, uint32(len(body)))
	chunks.Write(body)

	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(4+chunks.Len()))
	buf.WriteString("WAVE")
	buf.Write(chunks.Bytes())
	return buf.Bytes()
}

func pcm16(samples ...int16) []byte {
	out := make([]byte, 2*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}

// newTestScene returns a scene on a fresh Lua state.
func newTestScene(t *testing.T) *Scene {
	t.Helper()
	L := lua.NewState()
	t.Cleanup(L.Close)
	return NewScene(L, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
}

// newTestRuntime writes main.lua (and any extra files) to a temp root and
// starts a runtime on recording backends.
func newTestRuntime(t *testing.T, script string, files map[string][]byte, opts ...Option) (*Runtime, *recordingRenderer, *bytes.Buffer) {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "main.lua"), []byte(script))
	for name, data := range files {
		writeFile(t, filepath.Join(root, name), data)
	}

	logs := &bytes.Buffer{}
	rr := newRecordingRenderer()
	opts = append([]Option{
		WithLogger(slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))),
		WithExitFunc(func(int) {}),
	}, opts...)
	rt, err := NewRuntime(root, DefaultConfig(), Backends{Renderer: rr, Audio: &recordingAudio{}, Input: fixedInput{x: 3, y: 4}}, opts...)
	if err != nil {
		t.Fatalf("NewRuntime: %v", err)
	}
	t.Cleanup(rt.Close)
	if err := rt.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return rt, rr, logs
}

// luaStrings reads a Lua array of strings from a global.
func luaStrings(t *testing.T, L *lua.LState, global string) []string {
	t.Helper()
	tbl, ok := L.GetGlobal(global).(*lua.LTable)
	if !ok {
		t.Fatalf("global %s is not a table", global)
	}
	var out []string
	for i := 1; i <= tbl.Len(); i++ {
		out = append(out, lua.LVAsString(tbl.RawGetInt(i)))
	}
	return out
}
