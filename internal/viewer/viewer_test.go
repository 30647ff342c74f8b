package viewer

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/techcore/gpu3d/internal/engine/scene"
)

func TestSetRotationSpeedClamps(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{-1, 0},
		{-0.0001, 0},
		{0, 0},
		{0.05, 0.05},
		{0.1, 0.1},
		{0.1001, 0.1},
		{42, 0.1},
		{math.Inf(1), 0.1},
		{math.Inf(-1), 0},
		{math.NaN(), 0},
	}

	h := newHarness(t, newFakeLoader(loadResult{node: testModel()}))
	v := h.start(DefaultConfig())
	for _, tt := range tests {
		if got := v.SetRotationSpeed(tt.in); got != tt.want {
			t.Errorf("SetRotationSpeed(%v) = %v, want %v", tt.in, got, tt.want)
		}
		if v.RotationSpeed() != tt.want {
			t.Errorf("stored speed for %v = %v, want %v", tt.in, v.RotationSpeed(), tt.want)
		}
	}
}

func TestStartLoadsAndRuns(t *testing.T) {
	h := newHarness(t, newFakeLoader(loadResult{node: testModel()}))
	v := h.start(DefaultConfig())

	if v.State() != StateReady {
		t.Fatalf("expected READY after construction, got %v", v.State())
	}
	if h.renderer.cfg.Width != 800 || h.renderer.cfg.Height != 600 || !h.renderer.cfg.Shadows {
		t.Errorf("unexpected renderer config %+v", h.renderer.cfg)
	}
	cam := v.Camera()
	if cam.Aspect != float32(800)/600 || cam.Near != CameraNear || cam.Far != CameraFar {
		t.Errorf("unexpected camera %+v", cam)
	}
	if cam.Position.Z() != DefaultCameraDistance || cam.Position.Y() != CameraHeight {
		t.Errorf("camera position = %v", cam.Position)
	}
	if f := v.Scene().Fog; f == nil || f.Near != FogNear || f.Far != FogFar {
		t.Errorf("unexpected fog %+v", f)
	}
	if len(v.Scene().Lights) != 4 {
		t.Errorf("expected 4 lights, got %d", len(v.Scene().Lights))
	}

	h.until("model", h.settled)

	if v.State() != StateRunning {
		t.Errorf("expected RUNNING, got %v", v.State())
	}
	st := v.Stats()
	if st.Displayed != DisplayModel || st.LoadProgress != 100 || !st.Initialized || !st.Running {
		t.Errorf("unexpected stats %+v", st)
	}
	m := v.Model()
	if m.Position.X() != 0 || m.Scale.X() != DefaultScale {
		t.Errorf("model not normalized: pos %v scale %v", m.Position, m.Scale)
	}
	m.Traverse(func(n *scene.Node) {
		if n.IsMesh() {
			if !n.CastShadow || !n.ReceiveShadow {
				t.Errorf("mesh %s should cast and receive shadows", n.Name)
			}
			if n.Mesh.Material.EnvMapIntensity != 0.5 || !n.Mesh.Material.NeedsUpdate {
				t.Errorf("material of %s not adjusted", n.Name)
			}
		}
	})
	if h.overlay.shown != 1 || h.overlay.hidden != 1 {
		t.Errorf("loading overlay shown %d hidden %d", h.overlay.shown, h.overlay.hidden)
	}
}

func TestPauseResumeIdempotent(t *testing.T) {
	h := newHarness(t, newFakeLoader(loadResult{node: testModel()}))
	v := h.start(DefaultConfig())
	h.until("model", h.settled)

	v.Pause()
	v.Pause()
	if v.Running() || h.loop.PendingFrames() != 0 {
		t.Fatalf("expected loop stopped, pending %d", h.loop.PendingFrames())
	}
	if v.State() != StatePaused {
		t.Errorf("expected PAUSED, got %v", v.State())
	}

	renders := h.renderer.renders
	h.step(frameInterval)
	if h.renderer.renders != renders {
		t.Error("paused viewer rendered")
	}

	v.Resume()
	v.Resume()
	if h.loop.PendingFrames() != 1 {
		t.Fatalf("expected exactly one scheduled frame, got %d", h.loop.PendingFrames())
	}
	if v.State() != StateRunning {
		t.Errorf("expected RUNNING, got %v", v.State())
	}
	h.step(frameInterval)
	if h.renderer.renders != renders+1 {
		t.Errorf("expected one render per frame, got %d", h.renderer.renders-renders)
	}
}

func TestRedrawWhilePaused(t *testing.T) {
	h := newHarness(t, newFakeLoader(loadResult{node: testModel()}))
	v := h.start(DefaultConfig())
	h.until("model", h.settled)
	v.Pause()

	yaw := v.Model().Rotation[1]
	renders := h.renderer.renders
	if !v.Redraw() {
		t.Fatal("paused viewer did not redraw")
	}
	if h.renderer.renders != renders+1 {
		t.Errorf("expected one render, got %d", h.renderer.renders-renders)
	}
	if v.Model().Rotation[1] != yaw || v.Running() {
		t.Error("redraw advanced or restarted the animation")
	}

	h.renderer.renderErr = errors.New("context lost")
	if v.Redraw() {
		t.Error("failed render reported as drawn")
	}
	_ = v.Dispose()
	if v.Redraw() {
		t.Error("disposed viewer redrew")
	}
}

func TestLoadModelWhileLoadingIsNoop(t *testing.T) {
	loader := newFakeLoader()
	h := newHarness(t, loader)
	v := h.start(DefaultConfig())
	h.step(0)

	h.until("fetch", func() bool { return len(loader.calls()) == 1 })
	v.LoadModel()
	v.LoadModel()
	if v.Reload() {
		t.Error("reload should refuse while loading")
	}
	h.step(frameInterval)
	if n := len(loader.calls()); n != 1 {
		t.Fatalf("expected one fetch, got %d", n)
	}

	loader.release <- loadResult{node: testModel()}
	h.until("model", h.settled)
	if n := len(loader.calls()); n != 1 {
		t.Errorf("expected one fetch, got %d", n)
	}
}

func TestLoadFailureShowsPlaceholder(t *testing.T) {
	h := newHarness(t, newFakeLoader(loadResult{err: errNotFound}))
	v := h.start(DefaultConfig())
	h.until("placeholder", h.settled)

	if v.Stats().Displayed != DisplayPlaceholder {
		t.Fatalf("expected placeholder, got %v", v.Stats().Displayed)
	}
	if got := len(v.Scene().Root.Children); got != 1 {
		t.Fatalf("expected exactly one displayed object, got %d", got)
	}
	if v.Scene().Root.Children[0] != v.Model() || v.Model().Name != "placeholder" {
		t.Error("placeholder is not the displayed object")
	}
	if v.State() != StateRunning {
		t.Errorf("expected RUNNING, got %v", v.State())
	}
	if len(h.overlay.errors) != 0 {
		t.Errorf("recovered load failure should not reach the overlay: %v", h.overlay.errors)
	}
	if len(h.reporter.errs) != 1 || !errors.Is(h.reporter.errs[0], errNotFound) {
		t.Errorf("expected the failure to be reported, got %v", h.reporter.errs)
	}
}

func TestLoaderPanicShowsPlaceholder(t *testing.T) {
	h := newHarness(t, newFakeLoader(loadResult{panic: "index out of range [99]"}))
	v := h.start(DefaultConfig())
	h.until("placeholder", h.settled)

	if v.Stats().Displayed != DisplayPlaceholder {
		t.Fatalf("expected placeholder, got %v", v.Stats().Displayed)
	}
	if v.State() != StateRunning {
		t.Errorf("expected RUNNING, got %v", v.State())
	}
	if len(h.reporter.errs) != 1 {
		t.Fatalf("expected one reported error, got %v", h.reporter.errs)
	}
	var le *LoadError
	if !errors.As(h.reporter.errs[0], &le) || !errors.Is(le, ErrLoaderPanic) {
		t.Errorf("expected a LoadError wrapping the panic, got %v", h.reporter.errs[0])
	}
}

func TestLoadFailureKeepsDisplayedModel(t *testing.T) {
	model := testModel()
	h := newHarness(t, newFakeLoader(loadResult{node: model}, loadResult{err: errNotFound}))
	v := h.start(DefaultConfig())
	h.until("model", h.settled)

	if !v.Reload() {
		t.Fatal("reload refused")
	}
	h.until("reload", func() bool { return !v.Stats().Loading })

	if v.Model() != model || v.Stats().Displayed != DisplayModel {
		t.Fatal("working model was replaced")
	}
	if len(v.Scene().Root.Children) != 1 {
		t.Errorf("expected one displayed object, got %d", len(v.Scene().Root.Children))
	}
	if model.Children[0].Mesh.Geometry.Disposed() {
		t.Error("displayed model was released")
	}
	var le *LoadError
	if len(h.overlay.errors) != 1 || !errors.As(h.overlay.errors[0], &le) {
		t.Fatalf("expected one LoadError on the overlay, got %v", h.overlay.errors)
	}
	if v.State() != StateRunning {
		t.Errorf("expected RUNNING, got %v", v.State())
	}
}

func TestReloadReplacesModel(t *testing.T) {
	first, second := testModel(), testModel()
	h := newHarness(t, newFakeLoader(loadResult{node: first}, loadResult{node: second}))
	v := h.start(DefaultConfig())
	h.until("model", h.settled)

	v.Reload()
	h.until("second model", func() bool { return v.Model() == second })

	if !first.Children[0].Mesh.Geometry.Disposed() || !first.Children[0].Mesh.Material.Disposed() {
		t.Error("previous model was not released")
	}
	if len(v.Scene().Root.Children) != 1 {
		t.Errorf("expected one displayed object, got %d", len(v.Scene().Root.Children))
	}
}

func TestDisposeThenControls(t *testing.T) {
	h := newHarness(t, newFakeLoader(loadResult{node: testModel()}))
	v := h.start(DefaultConfig())
	h.until("model", h.settled)
	model := v.Model()

	if err := v.Dispose(); err != nil {
		t.Fatalf("Dispose: %v", err)
	}
	if err := v.Dispose(); err != nil {
		t.Fatalf("second Dispose: %v", err)
	}

	v.Pause()
	v.Resume()
	v.ToggleAutoRotate()
	v.ToggleWobble()
	v.ToggleShadows()
	v.ResetView()
	v.LoadModel()
	v.Reload()
	h.events.fireVisibility(true)
	h.step(time.Second)

	if v.Running() || h.loop.PendingFrames() != 0 {
		t.Error("disposed viewer restarted its loop")
	}
	if v.State() != StateDisposed {
		t.Errorf("expected DISPOSED, got %v", v.State())
	}
	if h.renderer.disposed != 1 {
		t.Errorf("renderer disposed %d times", h.renderer.disposed)
	}
	if h.events.listeners() != 0 {
		t.Errorf("%d listeners still attached", h.events.listeners())
	}
	if !model.Children[0].Mesh.Geometry.Disposed() {
		t.Error("model geometry not released")
	}
	if v.Stats().Initialized {
		t.Error("disposed viewer reports initialized")
	}
	if _, _, _, err := v.Screenshot(); !errors.Is(err, ErrDisposed) {
		t.Errorf("expected ErrDisposed, got %v", err)
	}
}

func TestLocalFileSkipsFetch(t *testing.T) {
	loader := newFakeLoader(loadResult{node: testModel()})
	h := newHarness(t, loader)
	h.host.Environment = fakeEnv{local: true}
	v := h.start(DefaultConfig())
	h.step(0)

	if v.Stats().Displayed != DisplayPlaceholder {
		t.Fatalf("expected placeholder, got %v", v.Stats().Displayed)
	}
	h.step(time.Second)
	if n := len(loader.calls()); n != 0 {
		t.Errorf("expected no fetch, got %d", n)
	}
	if n := h.prober.calls(); n != 0 {
		t.Errorf("expected no probe, got %d", n)
	}
	if len(h.reporter.errs) != 0 {
		t.Errorf("local file mode should not report, got %v", h.reporter.errs)
	}
}

func TestProbeUsesFirstExistingAlternative(t *testing.T) {
	loader := newFakeLoader(loadResult{node: testModel()})
	h := newHarness(t, loader)
	h.prober.exists["alt2.glb"] = true

	cfg := DefaultConfig()
	cfg.ModelPath = "primary.glb"
	cfg.AlternativePaths = []string{"alt1.glb", "alt2.glb"}
	v := h.start(cfg)
	h.until("model", h.settled)

	if got := loader.calls(); len(got) != 1 || got[0] != "alt2.glb" {
		t.Errorf("expected a single load of alt2.glb, got %v", got)
	}
	if h.prober.calls() != 3 {
		t.Errorf("expected 3 probes, got %d", h.prober.calls())
	}
	if v.Stats().Displayed != DisplayModel {
		t.Errorf("expected model, got %v", v.Stats().Displayed)
	}
}

func TestProbeDisabledKeepsConfiguredPath(t *testing.T) {
	loader := newFakeLoader(loadResult{node: testModel()})
	h := newHarness(t, loader)
	h.prober.exists["alt.glb"] = true

	cfg := DefaultConfig()
	cfg.ModelPath = "primary.glb"
	cfg.AlternativePaths = []string{"alt.glb"}
	cfg.ProbeAlternatives = false
	h.start(cfg)
	h.until("model", h.settled)

	if got := loader.calls(); len(got) != 1 || got[0] != "primary.glb" {
		t.Errorf("expected primary.glb, got %v", got)
	}
}

func TestResizeDebounced(t *testing.T) {
	h := newHarness(t, newFakeLoader(loadResult{node: testModel()}))
	v := h.start(DefaultConfig())
	h.until("model", h.settled)
	h.renderer.sizes = nil

	h.surface.w, h.surface.h = 1000, 500
	for i := 0; i < 10; i++ {
		h.events.fireResize()
		h.step(5 * time.Millisecond)
	}
	last := h.now.Add(-5 * time.Millisecond)

	h.step(last.Add(99 * time.Millisecond).Sub(h.now))
	if len(h.renderer.sizes) != 0 {
		t.Fatalf("resize handled before the quiet period ended: %v", h.renderer.sizes)
	}
	h.step(last.Add(ResizeDebounce).Sub(h.now))
	if len(h.renderer.sizes) != 1 {
		t.Fatalf("expected exactly one resize, got %v", h.renderer.sizes)
	}
	if h.renderer.sizes[0] != [2]int{1000, 500} {
		t.Errorf("unexpected size %v", h.renderer.sizes[0])
	}
	if v.Camera().Aspect != 2 {
		t.Errorf("expected aspect 2, got %v", v.Camera().Aspect)
	}
	h.step(time.Second)
	if len(h.renderer.sizes) != 1 {
		t.Errorf("resize ran again: %v", h.renderer.sizes)
	}
}

func TestVisibilityToggleEndsPaused(t *testing.T) {
	h := newHarness(t, newFakeLoader(loadResult{node: testModel()}))
	v := h.start(DefaultConfig())
	h.until("model", h.settled)

	h.events.fireVisibility(false)
	h.events.fireVisibility(true)
	h.events.fireVisibility(false)

	if v.Running() || h.loop.PendingFrames() != 0 {
		t.Fatalf("expected paused loop, pending %d", h.loop.PendingFrames())
	}
	if v.State() != StatePaused {
		t.Errorf("expected PAUSED, got %v", v.State())
	}
	renders := h.renderer.renders
	h.step(frameInterval)
	if h.renderer.renders != renders {
		t.Error("hidden viewer rendered")
	}

	h.events.fireVisibility(true)
	h.events.fireVisibility(true)
	if h.loop.PendingFrames() != 1 {
		t.Errorf("expected one scheduled frame, got %d", h.loop.PendingFrames())
	}
}

func TestSetupFailures(t *testing.T) {
	boom := errors.New("no GL context")
	tests := []struct {
		name       string
		mutate     func(*Host)
		capability string
	}{
		{"no surface", func(h *Host) { h.Surface = nil }, "surface"},
		{"no loader", func(h *Host) { h.Loader = nil }, "loader"},
		{"no renderer", func(h *Host) { h.Renderer = nil }, "renderer"},
		{"renderer error", func(h *Host) {
			h.Renderer = func(RendererConfig) (Renderer, error) { return nil, boom }
		}, "renderer"},
		{"no scheduler", func(h *Host) { h.Scheduler = nil }, "scheduler"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, newFakeLoader(loadResult{node: testModel()}))
			tt.mutate(&h.host)
			v := New(DefaultConfig(), h.host)

			if v.State() != StateFailed {
				t.Fatalf("expected FAILED, got %v", v.State())
			}
			var se *SetupError
			if !errors.As(v.Err(), &se) || se.Capability != tt.capability {
				t.Fatalf("expected SetupError for %s, got %v", tt.capability, v.Err())
			}
			if v.Scene() != nil || v.Camera() != nil {
				t.Error("failed setup kept a partial scene")
			}
			if len(h.overlay.errors) != 1 {
				t.Errorf("expected one overlay error, got %d", len(h.overlay.errors))
			}

			var failed error
			v.OnFailed(func(err error) { failed = err })
			v.OnReady(func() { t.Error("ready fired for a failed viewer") })
			h.step(frameInterval)
			if failed == nil {
				t.Error("OnFailed did not fire")
			}

			v.Resume()
			v.LoadModel()
			if v.Running() || len(h.loader.calls()) != 0 {
				t.Error("failed viewer started work")
			}
			if err := v.Dispose(); err != nil {
				t.Errorf("Dispose: %v", err)
			}
			if v.State() != StateFailed {
				t.Errorf("FAILED is terminal, got %v", v.State())
			}
		})
	}
}

func TestPlaceholderFailureFails(t *testing.T) {
	h := newHarness(t, newFakeLoader(loadResult{err: errNotFound}))
	h.host.Placeholder = func(bool) (*scene.Node, error) { return nil, errors.New("out of memory") }
	v := h.start(DefaultConfig())

	var failed error
	v.OnFailed(func(err error) { failed = err })
	h.until("failure", func() bool { return v.State() == StateFailed })

	var se *SetupError
	if !errors.As(failed, &se) || se.Capability != "placeholder" {
		t.Fatalf("expected placeholder SetupError, got %v", failed)
	}
	if !errors.Is(failed, errNotFound) {
		t.Error("secondary failure should wrap the load error")
	}
	if v.Running() {
		t.Error("failed viewer keeps rendering")
	}
	if len(h.overlay.errors) != 1 {
		t.Errorf("expected one overlay error, got %v", h.overlay.errors)
	}
}

func TestReadyNotification(t *testing.T) {
	h := newHarness(t, newFakeLoader(loadResult{node: testModel()}))
	v := h.start(DefaultConfig())

	calls := 0
	v.OnReady(func() { calls++ })
	select {
	case <-v.Ready():
		t.Fatal("ready before the scheduler ran")
	default:
	}

	h.step(0)
	select {
	case <-v.Ready():
	default:
		t.Fatal("ready channel not closed")
	}
	if calls != 1 {
		t.Errorf("OnReady ran %d times", calls)
	}
	v.OnReady(func() { calls++ })
	if calls != 2 {
		t.Error("late OnReady should run immediately")
	}
}

func TestDisposeDuringLoadDropsResult(t *testing.T) {
	loader := newFakeLoader()
	h := newHarness(t, loader)
	v := h.start(DefaultConfig())
	h.until("fetch", func() bool { return len(loader.calls()) == 1 })

	if err := v.Dispose(); err != nil {
		t.Fatal(err)
	}
	late := testModel()
	loader.release <- loadResult{node: late}
	// The loader may already have returned on the cancelled context.
	for i := 0; i < 20; i++ {
		time.Sleep(time.Millisecond)
		h.step(frameInterval)
	}

	if v.Model() != nil || len(v.Scene().Root.Children) != 0 {
		t.Error("disposed viewer attached a late model")
	}
	if v.Running() {
		t.Error("late result restarted the loop")
	}
	if len(h.overlay.errors) != 0 {
		t.Errorf("late result reached the overlay: %v", h.overlay.errors)
	}
}

func TestLoadProgressMonotonic(t *testing.T) {
	loader := newFakeLoader()
	loader.progress = [][2]int64{{50, 100}, {30, 100}, {60, -1}, {80, 100}, {200, 100}}
	h := newHarness(t, loader)
	v := h.start(DefaultConfig())
	h.until("progress", func() bool { return len(h.overlay.progress) == 3 })

	want := []float64{50, 80, 100}
	for i, p := range h.overlay.progress {
		if p != want[i] {
			t.Errorf("progress[%d] = %v, want %v", i, p, want[i])
		}
	}
	if !v.Stats().Loading || v.Stats().LoadProgress != 100 {
		t.Errorf("unexpected stats %+v", v.Stats())
	}
	loader.release <- loadResult{node: testModel()}
	h.until("model", h.settled)
}

func TestTickRotatesAndWobbles(t *testing.T) {
	h := newHarness(t, newFakeLoader(loadResult{node: testModel()}))
	cfg := DefaultConfig()
	v := h.start(cfg)
	h.until("model", h.settled)

	m := v.Model()
	m.Rotation = [3]float32{}
	for i := 0; i < 10; i++ {
		h.step(frameInterval)
	}
	if got, want := m.Rotation.Y(), float32(10*cfg.RotationSpeed); math.Abs(float64(got-want)) > 1e-5 {
		t.Errorf("yaw = %v, want %v", got, want)
	}
	ms := float64(h.now.Sub(epoch)) / float64(time.Millisecond)
	wantPitch := math.Pi/2 + cfg.WobbleAmplitude*math.Sin(ms*cfg.WobbleSpeed)
	if math.Abs(float64(m.Rotation.X())-wantPitch) > 1e-5 {
		t.Errorf("pitch = %v, want %v", m.Rotation.X(), wantPitch)
	}

	v.ToggleWobble()
	m.Rotation[0] = 0
	h.step(frameInterval)
	if m.Rotation.X() != 0 {
		t.Error("pitch changed with wobble off")
	}

	v.ToggleAutoRotate()
	yaw := m.Rotation.Y()
	h.step(frameInterval)
	if m.Rotation.Y() != yaw {
		t.Error("yaw changed with rotation off")
	}
}

func TestFPSSampling(t *testing.T) {
	h := newHarness(t, newFakeLoader(loadResult{node: testModel()}))
	v := h.start(DefaultConfig())
	h.until("model", h.settled)

	// Step to the start of a sampling window.
	for i := 0; i < 200 && !v.fpsWindow.Equal(h.now); i++ {
		h.step(frameInterval)
	}
	for i := 0; i < 40; i++ {
		h.step(25 * time.Millisecond)
	}
	if fps := v.Stats().FPS; fps != 40 {
		t.Errorf("expected 40 fps, got %d", fps)
	}
}

func TestResetView(t *testing.T) {
	h := newHarness(t, newFakeLoader(loadResult{node: testModel()}))
	v := h.start(DefaultConfig())
	h.until("model", h.settled)

	v.ToggleAutoRotate()
	v.ToggleWobble()
	v.SetRotationSpeed(0.09)
	v.Pause()
	v.Camera().Position = [3]float32{9, 9, 9}
	v.Model().Rotation = [3]float32{1, 2, 3}

	v.ResetView()
	c := v.Controls()
	if !c.AutoRotate || !c.Wobble || v.RotationSpeed() != DefaultRotationSpeed {
		t.Errorf("controls not reset: %+v speed %v", c, v.RotationSpeed())
	}
	if v.Model().Rotation != [3]float32{} {
		t.Errorf("rotation not reset: %v", v.Model().Rotation)
	}
	if v.Camera().Position != [3]float32{0, CameraHeight, DefaultCameraDistance} {
		t.Errorf("camera not reset: %v", v.Camera().Position)
	}
	if !v.Running() {
		t.Error("reset should resume the loop")
	}
}

func TestToggleShadows(t *testing.T) {
	h := newHarness(t, newFakeLoader(loadResult{node: testModel()}))
	v := h.start(DefaultConfig())
	h.until("model", h.settled)

	if v.ToggleShadows() {
		t.Fatal("expected shadows off")
	}
	if len(h.renderer.shadows) != 1 || h.renderer.shadows[0] {
		t.Errorf("renderer not updated: %v", h.renderer.shadows)
	}
	v.Model().Traverse(func(n *scene.Node) {
		if n.IsMesh() && (n.CastShadow || n.ReceiveShadow) {
			t.Errorf("mesh %s still casts shadows", n.Name)
		}
	})
	if v.Scene().ShadowLight() != nil {
		t.Error("main light still casts shadows")
	}
}

func TestRenderErrorKeepsLooping(t *testing.T) {
	h := newHarness(t, newFakeLoader(loadResult{node: testModel()}))
	v := h.start(DefaultConfig())
	h.until("model", h.settled)

	h.renderer.renderErr = errors.New("context lost")
	h.step(frameInterval)
	h.step(frameInterval)
	if !v.Running() {
		t.Error("render error stopped the loop")
	}
}

func TestScreenshot(t *testing.T) {
	h := newHarness(t, newFakeLoader(loadResult{node: testModel()}))
	v := h.start(DefaultConfig())
	h.until("model", h.settled)

	px, w, hgt, err := v.Screenshot()
	if err != nil || w != 2 || hgt != 2 || len(px) != 16 {
		t.Errorf("Screenshot = %d bytes %dx%d, %v", len(px), w, hgt, err)
	}
}
