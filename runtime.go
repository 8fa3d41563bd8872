package bramble

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
)

// Runtime hosts one Lua state, its scene and its asset cache, and advances
// them one frame at a time.
type Runtime struct {
	cfg      Config
	root     string
	L        *lua.LState
	scene    *Scene
	cache    *Cache
	backends Backends
	log      *slog.Logger

	exit       func(code int)
	exited     bool
	exitCode   int
	afterFrame func(frame uint64)
	onMaxFPS   func(fps float64)

	maxFPS float64 // 0 means uncapped
	debug  bool
	frames uint64

	app    *lua.LTable
	mouse  *lua.LTable
	window *lua.LTable
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the runtime logger. The default is built from the config's
// log settings and writes to stderr.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runtime) { r.log = l }
}

// WithExitFunc replaces os.Exit as the target of die().
func WithExitFunc(fn func(code int)) Option {
	return func(r *Runtime) { r.exit = fn }
}

// WithEventSink forwards scene lifecycle events to sink.
func WithEventSink(sink EventSink) Option {
	return func(r *Runtime) { r.scene.SetEventSink(sink) }
}

// WithAfterFrame registers fn to run after every completed frame.
func WithAfterFrame(fn func(frame uint64)) Option {
	return func(r *Runtime) { r.afterFrame = fn }
}

// NewRuntime creates a runtime rooted at root and installs the script API.
// The entry script does not run until Start.
func NewRuntime(root string, cfg Config, b Backends, opts ...Option) (*Runtime, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, &BootstrapError{Stage: "root", Err: err}
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, &BootstrapError{Stage: "root", Err: err}
	}
	if !info.IsDir() {
		return nil, &BootstrapError{Stage: "root", Err: fmt.Errorf("%s is not a directory", abs)}
	}

	b = b.withDefaults()
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	r := &Runtime{
		cfg:      cfg,
		root:     abs,
		L:        L,
		backends: b,
		log:      NewLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr),
		exit:     os.Exit,
		maxFPS:   float64(cfg.TPS),
		debug:    cfg.Debug,
	}
	r.scene = NewScene(L, r.log)
	r.cache = NewCache(abs, b.Renderer, b.Audio)
	for _, opt := range opts {
		opt(r)
	}
	r.scene.log = r.log

	if err := r.openLibs(); err != nil {
		L.Close()
		return nil, &BootstrapError{Stage: "bridge", Err: err}
	}
	r.registerGlobals()
	return r, nil
}

// openLibs loads the safe subset of the standard Lua libraries and confines
// require to the environment root.
func (r *Runtime) openLibs() error {
	for _, lib := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.LoadLibName, lua.OpenPackage},
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
		{lua.CoroutineLibName, lua.OpenCoroutine},
	} {
		if err := r.L.CallByParam(lua.P{
			Fn:      r.L.NewFunction(lib.fn),
			NRet:    0,
			Protect: true,
		}, lua.LString(lib.name)); err != nil {
			return fmt.Errorf("open %s: %w", lib.name, err)
		}
	}

	pkg, ok := r.L.GetGlobal("package").(*lua.LTable)
	if !ok {
		return errors.New("package library missing")
	}
	pkg.RawSetString("path", lua.LString(
		filepath.Join(r.root, "?.lua")+";"+filepath.Join(r.root, "?", "init.lua")))
	pkg.RawSetString("cpath", lua.LString(""))
	r.L.SetGlobal("dofile", lua.LNil)
	r.L.SetGlobal("loadfile", lua.LNil)
	return nil
}

func (r *Runtime) registerGlobals() {
	r.registerApp()
	r.registerScene()
	r.registerAssets()
	r.registerAudio()
	r.registerCore()
}

// Start runs the entry script.
func (r *Runtime) Start() error {
	entry := filepath.Join(r.root, r.cfg.Entry)
	if _, err := os.Stat(entry); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &BootstrapError{Stage: "entry", Err: fmt.Errorf("%s not found", r.cfg.Entry)}
		}
		return &BootstrapError{Stage: "entry", Err: err}
	}
	if err := r.L.DoFile(entry); err != nil && !r.exited {
		return &BootstrapError{Stage: "entry", Err: err}
	}
	r.log.Info("entry script loaded", "entry", r.cfg.Entry, "entities", r.scene.Len())
	return nil
}

// Close releases the Lua state. Resources still referenced from Go stay
// valid until they are collected.
func (r *Runtime) Close() {
	r.L.Close()
}

// Scene returns the runtime's scene.
func (r *Runtime) Scene() *Scene { return r.scene }

// Cache returns the runtime's asset cache.
func (r *Runtime) Cache() *Cache { return r.cache }

// Lua returns the runtime's Lua state.
func (r *Runtime) Lua() *lua.LState { return r.L }

// Logger returns the runtime logger.
func (r *Runtime) Logger() *slog.Logger { return r.log }

// Config returns the configuration the runtime was created with.
func (r *Runtime) Config() Config { return r.cfg }

// Frames returns the number of completed frames.
func (r *Runtime) Frames() uint64 { return r.frames }

// Exited reports whether a script called die, and with which code.
func (r *Runtime) Exited() (code int, ok bool) {
	return r.exitCode, r.exited
}

// MaxFPS returns the requested update rate, or 0 when uncapped.
func (r *Runtime) MaxFPS() float64 { return r.maxFPS }

// OnMaxFPSChange registers the callback that applies app.setMaxFps to the
// game loop.
func (r *Runtime) OnMaxFPSChange(fn func(fps float64)) {
	r.onMaxFPS = fn
}

// SetDebug toggles per-frame stats logging.
func (r *Runtime) SetDebug(on bool) { r.debug = on }

func (r *Runtime) setMaxFPS(fps float64) {
	if math.IsNaN(fps) || math.IsInf(fps, 0) || fps <= 0 {
		fps = 0
	}
	r.maxFPS = fps
	if r.onMaxFPS != nil {
		r.onMaxFPS(fps)
	}
}

// die records the exit and hands the code to the exit function.
func (r *Runtime) die(code int) {
	r.exited = true
	r.exitCode = code
	r.log.Info("script requested exit", "code", code)
	r.exit(code)
}
