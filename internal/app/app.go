// Package app wires the window, the scheduler and the viewer together and
// runs the main loop.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/techcore/gpu3d/internal/assets"
	"github.com/techcore/gpu3d/internal/config"
	"github.com/techcore/gpu3d/internal/controls"
	"github.com/techcore/gpu3d/internal/engine/debug"
	"github.com/techcore/gpu3d/internal/engine/input"
	"github.com/techcore/gpu3d/internal/engine/renderer"
	"github.com/techcore/gpu3d/internal/engine/ui2d"
	"github.com/techcore/gpu3d/internal/engine/window"
	"github.com/techcore/gpu3d/internal/gltfload"
	"github.com/techcore/gpu3d/internal/logger"
	"github.com/techcore/gpu3d/internal/loop"
	"github.com/techcore/gpu3d/internal/remote"
	"github.com/techcore/gpu3d/internal/telemetry"
	"github.com/techcore/gpu3d/internal/viewer"
)

var (
	_ controls.Target  = (*viewer.Viewer)(nil)
	_ remote.Target    = (*remoteTarget)(nil)
	_ viewer.Reporter  = (*telemetry.Reporter)(nil)
	_ viewer.Prober    = (*assets.Manager)(nil)
	_ viewer.Loader    = (*gltfload.Loader)(nil)
	_ viewer.Surface   = (*window.Window)(nil)
	_ viewer.Renderer  = (*renderer.Renderer)(nil)
	_ controls.Saver   = (*debug.ScreenshotCapture)(nil)
	_ controls.Display = (*hud)(nil)
	_ viewer.Overlay   = (*hud)(nil)
	_ viewer.Events    = (*windowEvents)(nil)
	_ controlSurface   = (*controls.Controller)(nil)
	_ ui2d.Canvas      = (*ui2d.Renderer)(nil)
)

// idleWait caps how long the loop sleeps when no frame is scheduled.
const idleWait = 16 * time.Millisecond

// background fills frames the panel is drawn on without a scene.
var background = ui2d.Color{R: 0.04, G: 0.04, B: 0.06, A: 1}

// App is the running viewer application.
type App struct {
	cfg *config.Config
	log *zap.Logger

	window   *window.Window
	input    *input.Input
	sched    *loop.Loop
	events   *windowEvents
	hud      *hud
	ui       *ui2d.Renderer
	panel    *panel
	assets   *assets.Manager
	reporter *telemetry.Reporter
	shots    *debug.ScreenshotCapture

	viewer   *viewer.Viewer
	controls *controls.Controller
	remote   *remote.Server

	running bool
	rebuild bool
	redraw  bool
}

// New opens the window and sets the viewer up. A viewer whose setup fails
// is not an error here: it is shown to the user, who may reload it.
func New(cfg *config.Config, release string) (*App, error) {
	a := &App{
		cfg:    cfg,
		log:    logger.Named("app"),
		input:  input.New(),
		sched:  loop.New(),
		events: newWindowEvents(),
		shots:  debug.NewScreenshotCapture(cfg.Controls.ScreenshotDir, "gpu3d"),
	}

	env, err := assets.NewEnvironment(cfg.Assets.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("asset environment: %w", err)
	}
	var cache *assets.Cache
	if cfg.Assets.Cache {
		cache = assets.NewCache()
	}
	assetLog := logger.Named("assets")
	a.assets = assets.NewManager(env,
		&assets.HTTPProber{Timeout: cfg.Assets.ProbeTimeout, Log: assetLog},
		&assets.Fetcher{Log: assetLog},
		cache, assetLog)

	a.reporter, err = telemetry.New(cfg.Telemetry, release)
	if err != nil {
		a.log.Warn("crash reporting disabled", zap.Error(err))
		a.reporter = nil
	}

	a.window, err = window.New(window.Config{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
		HighDPI:    cfg.Window.HighDPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}
	a.hud = newHUD(cfg.Window.Title, a.window.SetTitle)

	ww, wh := a.window.Size()
	if a.ui, err = ui2d.NewRenderer(ww, wh); err != nil {
		a.log.Warn("in-window panel unavailable, using the title bar", zap.Error(err))
		a.ui = nil
	} else {
		a.panel = newPanel(a.ui, a.hud)
	}

	a.buildViewer()

	if cfg.Remote.Enabled {
		a.remote = remote.New(remote.Config{
			Addr:          cfg.Remote.Addr,
			AllowAll:      cfg.Remote.AllowAllOrigins,
			StatsInterval: cfg.Remote.StatsInterval,
		}, &remoteTarget{app: a}, a.sched, logger.Named("remote"))
		go func() {
			if err := a.remote.Start(); err != nil {
				a.log.Error("remote control stopped", zap.Error(err))
			}
		}()
	}

	a.log.Info("application initialized")
	return a, nil
}

// buildViewer creates the viewer and its controller. It runs on the loop
// goroutine.
func (a *App) buildViewer() {
	host := viewer.Host{
		Scheduler:   a.sched,
		Surface:     a.window,
		Renderer:    a.newRenderer,
		Loader:      &gltfload.Loader{Assets: a.assets, Log: logger.Named("gltf")},
		Prober:      a.assets,
		Environment: a.assets.Environment(),
		Events:      a.events,
		Overlay:     a.hud,
		Logger:      logger.Named("viewer"),
	}
	if a.reporter.Enabled() {
		host.Reporter = a.reporter
	}

	a.viewer = viewer.New(viewer.OverridesFromConfig(a.cfg.Viewer).Resolve(), host)
	a.controls = controls.New(a.viewer, a.sched, a.hud, controls.Options{
		StatsInterval: a.cfg.Controls.StatsInterval,
		Saver:         a.shots,
		Reload:        func() { a.rebuild = true },
		Logger:        logger.Named("controls"),
	})
}

func (a *App) newRenderer(rc viewer.RendererConfig) (viewer.Renderer, error) {
	r, err := renderer.New(renderer.Config{
		Width:            rc.Width,
		Height:           rc.Height,
		PixelRatio:       rc.PixelRatio,
		MaxPixelRatio:    rc.MaxPixelRatio,
		Shadows:          rc.Shadows,
		ShadowResolution: 2048,
	}, logger.Named("renderer"))
	if err != nil {
		return nil, err
	}
	return r, nil
}

// rebuildViewer disposes the current viewer and sets up a fresh one.
func (a *App) rebuildViewer() {
	a.rebuild = false
	a.log.Info("rebuilding viewer")
	a.controls.Stop()
	if err := a.viewer.Dispose(); err != nil {
		a.log.Warn("disposing viewer", zap.Error(err))
	}
	a.hud.reset()
	a.buildViewer()
}

// Run drives input, timers and frames until the window closes.
func (a *App) Run() error {
	a.running = true
	a.log.Info("starting main loop")

	for a.running {
		if a.input.Update() {
			break
		}
		for _, ev := range a.input.Events() {
			a.handleEvent(ev)
		}

		now := time.Now()
		a.sched.Advance(now)
		drawn := a.sched.Frame(now)
		if a.present(drawn > 0) {
			a.window.SwapBuffers()
		}

		if err := a.hud.takeError(); err != nil && a.panel == nil {
			a.showSetupError(err)
		}
		if a.rebuild {
			a.rebuildViewer()
		}

		if drawn == 0 {
			a.idle(now)
		}
	}
	return nil
}

// present draws the panel over the frame and reports whether there is
// anything to swap. Without a new scene frame the scene is redrawn first,
// so the panel still responds while the animation is paused.
func (a *App) present(sceneDrawn bool) bool {
	if a.panel == nil {
		return sceneDrawn
	}
	changed := a.hud.takeChanged() || a.redraw
	a.redraw = false
	if !sceneDrawn && !changed {
		return false
	}
	if !sceneDrawn && !a.viewer.Redraw() {
		a.ui.Clear(background)
	}
	a.panel.draw(a.controls, a.viewer.Stats())
	return true
}

func (a *App) handleEvent(ev input.Event) {
	switch ev.Type {
	case input.EventWindowResize:
		if a.ui != nil {
			a.ui.Resize(a.window.Size())
		}
		a.redraw = true
		a.events.fireResize()
	case input.EventVisibility:
		if ev.Visible {
			a.redraw = true
		}
		a.events.fireVisibility(ev.Visible)
	case input.EventMouseMove, input.EventMouseButton:
		if a.panel != nil && a.panel.handle(ev) {
			a.redraw = true
		}
	case input.EventKeyDown:
		if ev.Key == escape {
			a.running = false
			return
		}
		if act := ActionFor(ev.Key); act != controls.ActionNone {
			a.controls.Do(act)
		}
	}
}

// idle sleeps until the next timer when nothing is animating.
func (a *App) idle(now time.Time) {
	wait := idleWait
	if next, ok := a.sched.NextDeadline(); ok {
		if d := next.Sub(now); d < wait {
			wait = d
		}
	}
	if wait > 0 {
		time.Sleep(wait)
	}
}

func (a *App) showSetupError(err error) {
	choice, boxErr := a.window.ShowError("GPU model viewer", fmt.Sprintf("Failed to initialize 3D viewer.\n\n%v", err))
	if boxErr != nil {
		a.log.Warn("cannot show error dialog", zap.Error(boxErr))
		return
	}
	if choice == window.ChoiceReload {
		a.rebuild = true
	}
}

// Close releases everything the application holds.
func (a *App) Close() error {
	a.log.Info("closing application")

	var errs error
	if a.remote != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		errs = multierr.Append(errs, a.remote.Shutdown(ctx))
		cancel()
	}
	if a.controls != nil {
		a.controls.Stop()
	}
	if a.viewer != nil {
		errs = multierr.Append(errs, a.viewer.Dispose())
	}
	if a.assets != nil {
		a.assets.Close()
	}
	if !a.reporter.Flush(2 * time.Second) {
		errs = multierr.Append(errs, errors.New("telemetry: flush timed out"))
	}
	if a.ui != nil {
		a.ui.Close()
	}
	if a.window != nil {
		a.window.Close()
	}
	return errs
}

// remoteTarget exposes whichever viewer is current to the remote API.
type remoteTarget struct {
	app *App
}

func (t *remoteTarget) Stats() viewer.Stats    { return t.app.viewer.Stats() }
func (t *remoteTarget) Pause()                 { t.app.viewer.Pause() }
func (t *remoteTarget) Resume()                { t.app.viewer.Resume() }
func (t *remoteTarget) ResetView()             { t.app.controls.ResetView() }
func (t *remoteTarget) ToggleAutoRotate() bool { return t.app.viewer.ToggleAutoRotate() }
func (t *remoteTarget) ToggleWobble() bool     { return t.app.viewer.ToggleWobble() }
func (t *remoteTarget) SetSpeed(s float64)     { t.app.controls.SetSpeed(s) }

// Reload retries the load, or rebuilds a viewer whose setup failed.
func (t *remoteTarget) Reload() bool {
	if t.app.controls.Basic() {
		t.app.rebuild = true
		return true
	}
	return t.app.viewer.Reload()
}
