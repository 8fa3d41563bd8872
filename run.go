package bramble

import (
	"errors"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// maxFrameDelta caps dt after a stall so scripts never see a huge step.
const maxFrameDelta = 0.25

// RunConfig configures the window opened by Run.
type RunConfig struct {
	Title   string
	Width   int
	Height  int
	ShowFPS bool
}

// game adapts a Runtime to ebiten.Game. Frames render into the backend's
// backbuffer during Update; Draw only presents it.
type game struct {
	rt   *Runtime
	eb   *EbitenBackend
	fps  *fpsOverlay
	last time.Time
}

func (g *game) Update() error {
	now := time.Now()
	dt := 1.0 / float64(ebiten.TPS())
	if ebiten.TPS() == ebiten.SyncWithFPS {
		dt = 1.0 / 60
	}
	if !g.last.IsZero() {
		dt = min(now.Sub(g.last).Seconds(), maxFrameDelta)
	}
	g.last = now

	g.eb.pollInput()
	g.rt.Frame(dt)
	if g.fps != nil {
		g.fps.update(dt, g.rt.Scene().Len())
	}
	if _, exited := g.rt.Exited(); exited {
		return ebiten.Termination
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.DrawImage(g.eb.back, nil)
	if g.fps != nil {
		g.fps.draw(screen)
	}
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.eb.resize(outsideWidth, outsideHeight)
	return outsideWidth, outsideHeight
}

// applyMaxFPS maps app.setMaxFps onto the tick rate. 0 uncaps it.
func applyMaxFPS(fps float64) {
	if fps <= 0 {
		ebiten.SetTPS(ebiten.SyncWithFPS)
		return
	}
	ebiten.SetTPS(max(int(fps+0.5), 1))
}

// Run opens a window and drives rt with eb until the window closes or a
// script calls die. rt must have been created with eb.Backends().
func Run(rt *Runtime, eb *EbitenBackend, cfg RunConfig) error {
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	applyMaxFPS(rt.MaxFPS())
	rt.OnMaxFPSChange(applyMaxFPS)

	g := &game{rt: rt, eb: eb}
	if cfg.ShowFPS {
		g.fps = newFPSOverlay()
	}
	err := ebiten.RunGame(g)
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}
