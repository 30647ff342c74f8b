// Package viewer implements the GPU model viewer lifecycle: setup of the
// scene, loading the model or its placeholder, the render loop and the
// controls exposed to the rest of the application.
//
// A Viewer is not safe for concurrent use. Every method must run on the
// goroutine that drives its loop.Loop; background work reaches the viewer
// only through loop.Post.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/techcore/gpu3d/internal/engine/camera"
	"github.com/techcore/gpu3d/internal/engine/lighting"
	"github.com/techcore/gpu3d/internal/engine/scene"
	"github.com/techcore/gpu3d/internal/loop"
)

// Renderer draws the scene into the drawing surface.
type Renderer interface {
	SetSize(width, height int)
	SetPixelRatio(ratio float64)
	SetShadows(enabled bool)
	Render(s *scene.Scene, cam *camera.Perspective) error
	ReadPixels() ([]byte, int, int, error)
	Dispose() error
}

// RendererConfig is passed to a RendererFactory.
type RendererConfig struct {
	Width, Height int
	PixelRatio    float64
	MaxPixelRatio float64
	Shadows       bool
}

// RendererFactory creates the renderer during setup.
type RendererFactory func(RendererConfig) (Renderer, error)

// Loader fetches and decodes a model. It runs on a background goroutine and
// must not touch the viewer.
type Loader interface {
	Load(ctx context.Context, path string, progress func(loaded, total int64)) (*scene.Node, error)
}

// Prober picks the first candidate path that exists.
type Prober interface {
	Resolve(ctx context.Context, primary string, alternatives []string) string
}

// Environment tells whether network fetches are possible.
type Environment interface {
	LocalFile() bool
}

// Surface is the area the renderer draws into.
type Surface interface {
	Size() (width, height int)
	PixelRatio() float64
}

// Events delivers resize and visibility changes. The returned functions
// remove the listener.
type Events interface {
	OnResize(fn func()) (remove func())
	OnVisibility(fn func(visible bool)) (remove func())
}

// Overlay shows loading and error messages to the user.
type Overlay interface {
	ShowLoading()
	UpdateLoading(percent float64)
	HideLoading()
	ShowError(err error)
}

// Reporter forwards failures to crash reporting.
type Reporter interface {
	Capture(err error, tags map[string]string)
}

// Host holds the collaborators a viewer is set up with. Scheduler, Surface,
// Loader and Renderer are required; the rest are optional.
type Host struct {
	Scheduler   *loop.Loop
	Surface     Surface
	Renderer    RendererFactory
	Loader      Loader
	Prober      Prober
	Environment Environment
	Events      Events
	Overlay     Overlay
	Reporter    Reporter
	Placeholder PlaceholderFunc
	Logger      *zap.Logger
}

// Viewer owns the scene and drives its animation.
type Viewer struct {
	cfg  Config
	host Host
	log  *zap.Logger

	state       State
	initialized bool
	disposed    bool
	setupErr    error

	loading    bool
	progress   float64
	attempt    uint64
	cancelLoad context.CancelFunc

	frameID        loop.FrameID
	frameScheduled bool
	frames         int
	fps            int
	fpsWindow      time.Time
	start          time.Time
	renderFailing  bool

	controls      Controls
	rotationSpeed float64

	scene     *scene.Scene
	camera    *camera.Perspective
	renderer  Renderer
	rig       *lighting.Rig
	model     *scene.Node
	displayed Displayed

	resize  *loop.Debouncer
	detach  []func()
	started bool

	ready          chan struct{}
	onReady        []func()
	onFailed       []func(error)
	readyNotified  bool
	failedNotified bool
}

// New sets the viewer up. It never returns an error: a failed setup leaves
// the viewer FAILED, reported through OnFailed, the overlay and Err.
// On success the ready notification, the first load and the first frame
// happen on the scheduler's next turn.
func New(cfg Config, host Host) *Viewer {
	if host.Logger == nil {
		host.Logger = zap.NewNop()
	}
	if host.Placeholder == nil {
		host.Placeholder = BuildPlaceholder
	}
	v := &Viewer{
		cfg:           cfg,
		host:          host,
		log:           host.Logger,
		state:         StateUninitialized,
		rotationSpeed: ClampRotationSpeed(cfg.RotationSpeed),
		controls: Controls{
			AutoRotate: true,
			Wobble:     true,
			Shadows:    cfg.Shadows,
		},
		ready: make(chan struct{}),
	}
	v.transition(StateSettingUp)

	if err := v.setup(); err != nil {
		v.fail(err)
		if host.Scheduler == nil {
			v.notifyFailed()
		} else {
			host.Scheduler.Post(v.notifyFailed)
		}
		return v
	}

	v.initialized = true
	v.start = host.Scheduler.Now()
	v.fpsWindow = v.start
	v.transition(StateReady)
	v.log.Info("viewer ready",
		zap.String("model", cfg.ModelPath),
		zap.Float64("fov", cfg.FOV),
		zap.Bool("shadows", cfg.Shadows),
	)
	host.Scheduler.Post(v.begin)
	return v
}

// setup builds the scene, camera, renderer and lights. Nothing is kept when
// it fails.
func (v *Viewer) setup() error {
	h := v.host
	switch {
	case h.Scheduler == nil:
		return &SetupError{Capability: "scheduler", Err: ErrMissing}
	case h.Surface == nil:
		return &SetupError{Capability: "surface", Err: ErrMissing}
	case h.Loader == nil:
		return &SetupError{Capability: "loader", Err: ErrMissing}
	case h.Renderer == nil:
		return &SetupError{Capability: "renderer", Err: ErrMissing}
	}

	width, height := h.Surface.Size()

	s := scene.New(scene.Hex(v.cfg.BackgroundColor))
	s.Fog = &scene.Fog{Color: s.Background, Near: FogNear, Far: FogFar}

	cam := camera.NewPerspective(float32(v.cfg.FOV), aspect(width, height), CameraNear, CameraFar)
	cam.Position = mgl32.Vec3{0, CameraHeight, float32(v.cfg.CameraDistance)}
	cam.LookAt(mgl32.Vec3{})

	r, err := h.Renderer(RendererConfig{
		Width:         width,
		Height:        height,
		PixelRatio:    h.Surface.PixelRatio(),
		MaxPixelRatio: v.cfg.MaxPixelRatio,
		Shadows:       v.controls.Shadows,
	})
	if err != nil {
		return &SetupError{Capability: "renderer", Err: err}
	}
	if r == nil {
		return &SetupError{Capability: "renderer", Err: errors.New("factory returned no renderer")}
	}

	rig := lighting.StudioRig(scene.Hex(v.cfg.PrimaryColor), v.controls.Shadows)
	rig.AddTo(s)

	v.scene, v.camera, v.renderer, v.rig = s, cam, r, rig
	v.resize = h.Scheduler.Debounce(ResizeDebounce, v.handleResize)
	if h.Events != nil {
		v.detach = append(v.detach,
			h.Events.OnResize(v.resize.Trigger),
			h.Events.OnVisibility(v.handleVisibility),
		)
	}
	return nil
}

// begin runs once on the scheduler after a successful setup.
func (v *Viewer) begin() {
	if v.disposed || v.started {
		return
	}
	v.started = true
	v.notifyReady()
	v.LoadModel()
	v.Resume()
}

func (v *Viewer) notifyReady() {
	if v.readyNotified || v.failedNotified {
		return
	}
	v.readyNotified = true
	close(v.ready)
	for _, fn := range v.onReady {
		fn()
	}
	v.onReady = nil
}

func (v *Viewer) notifyFailed() {
	if v.failedNotified || v.setupErr == nil {
		return
	}
	v.failedNotified = true
	for _, fn := range v.onFailed {
		fn(v.setupErr)
	}
	v.onFailed = nil
}

// fail moves the viewer to FAILED and surfaces err.
func (v *Viewer) fail(err error) {
	v.setupErr = err
	v.initialized = false
	v.cancelFrame()
	v.transition(StateFailed)
	v.log.Error("viewer failed", zap.Error(err))
	v.overlay().ShowError(err)
	v.report(err, "setup")
}

// Ready is closed once the viewer has finished setup and started.
func (v *Viewer) Ready() <-chan struct{} {
	return v.ready
}

// OnReady registers fn to run when the viewer starts. It runs immediately
// when the viewer has already started.
func (v *Viewer) OnReady(fn func()) {
	switch {
	case v.readyNotified:
		fn()
	case v.setupErr == nil:
		v.onReady = append(v.onReady, fn)
	}
}

// OnFailed registers fn to run when setup, or building the placeholder,
// fails. It runs immediately when the failure was already announced.
func (v *Viewer) OnFailed(fn func(error)) {
	if v.failedNotified {
		fn(v.setupErr)
		return
	}
	v.onFailed = append(v.onFailed, fn)
}

// Err returns the setup or placeholder failure, if any.
func (v *Viewer) Err() error {
	return v.setupErr
}

// State returns the lifecycle state.
func (v *Viewer) State() State {
	return v.state
}

// Config returns the resolved configuration.
func (v *Viewer) Config() Config {
	return v.cfg
}

// Scene returns the scene graph, nil when setup failed.
func (v *Viewer) Scene() *scene.Scene {
	return v.scene
}

// Camera returns the camera, nil when setup failed.
func (v *Viewer) Camera() *camera.Perspective {
	return v.camera
}

// Model returns the displayed object, nil when the slot is empty.
func (v *Viewer) Model() *scene.Node {
	return v.model
}

// Running reports whether a frame is scheduled.
func (v *Viewer) Running() bool {
	return v.frameScheduled
}

// Controls returns the current toggles.
func (v *Viewer) Controls() Controls {
	return v.controls
}

// RotationSpeed returns the yaw increment per frame.
func (v *Viewer) RotationSpeed() float64 {
	return v.rotationSpeed
}

// Stats returns a snapshot of the runtime state.
func (v *Viewer) Stats() Stats {
	return Stats{
		FPS:           v.fps,
		Initialized:   v.initialized,
		Loading:       v.loading,
		LoadProgress:  v.progress,
		State:         v.state,
		Displayed:     v.displayed,
		Running:       v.frameScheduled,
		RotationSpeed: v.rotationSpeed,
		Controls:      v.controls,
	}
}

// Pause stops the render loop. Pausing a stopped loop does nothing.
func (v *Viewer) Pause() {
	if !v.cancelFrame() {
		return
	}
	if v.state == StateRunning {
		v.transition(StatePaused)
	}
	v.log.Debug("animation paused")
}

// Resume restarts the render loop. It does nothing when the loop already
// runs or the viewer is not initialized.
func (v *Viewer) Resume() {
	if v.disposed || !v.initialized || v.frameScheduled {
		return
	}
	v.requestFrame()
	switch v.state {
	case StatePaused, StatePopulated, StatePlaceholder:
		v.transition(StateRunning)
	}
	v.log.Debug("animation resumed")
}

// ToggleAutoRotate flips rotation and returns the new value.
func (v *Viewer) ToggleAutoRotate() bool {
	if v.disposed {
		return v.controls.AutoRotate
	}
	v.controls.AutoRotate = !v.controls.AutoRotate
	return v.controls.AutoRotate
}

// ToggleWobble flips the pitch oscillation and returns the new value.
func (v *Viewer) ToggleWobble() bool {
	if v.disposed {
		return v.controls.Wobble
	}
	v.controls.Wobble = !v.controls.Wobble
	return v.controls.Wobble
}

// ToggleShadows flips shadow casting for the renderer, the main light and
// the displayed object, and returns the new value.
func (v *Viewer) ToggleShadows() bool {
	if v.disposed || !v.initialized {
		return v.controls.Shadows
	}
	v.controls.Shadows = !v.controls.Shadows
	v.renderer.SetShadows(v.controls.Shadows)
	v.rig.Main.CastShadow = v.controls.Shadows
	if v.model != nil {
		setShadows(v.model, v.controls.Shadows)
	}
	return v.controls.Shadows
}

// SetRotationSpeed stores speed clamped to [0, MaxRotationSpeed] and
// returns the stored value.
func (v *Viewer) SetRotationSpeed(speed float64) float64 {
	if v.disposed {
		return v.rotationSpeed
	}
	v.rotationSpeed = ClampRotationSpeed(speed)
	return v.rotationSpeed
}

// ResetView zeroes the model rotation, moves the camera back to its start
// position, re-enables rotation and wobble at the default speed and resumes.
func (v *Viewer) ResetView() {
	if v.disposed || !v.initialized {
		return
	}
	if v.model != nil {
		v.model.Rotation = mgl32.Vec3{}
	}
	v.camera.Position = mgl32.Vec3{0, CameraHeight, float32(v.cfg.CameraDistance)}
	v.camera.LookAt(mgl32.Vec3{})
	v.controls.AutoRotate = true
	v.controls.Wobble = true
	v.rotationSpeed = DefaultRotationSpeed
	v.Resume()
}

// Screenshot draws a frame and returns its RGBA pixels, bottom row first.
func (v *Viewer) Screenshot() ([]byte, int, int, error) {
	if v.disposed {
		return nil, 0, 0, ErrDisposed
	}
	if !v.initialized {
		return nil, 0, 0, fmt.Errorf("screenshot: viewer not initialized")
	}
	if err := v.renderer.Render(v.scene, v.camera); err != nil {
		return nil, 0, 0, fmt.Errorf("screenshot: %w", err)
	}
	return v.renderer.ReadPixels()
}

// Dispose stops the loop, removes listeners and releases every geometry,
// material and the renderer. Only the first call does anything.
func (v *Viewer) Dispose() error {
	if v.disposed {
		return nil
	}
	v.Pause()
	v.disposed = true

	if v.resize != nil {
		v.resize.Stop()
	}
	for _, remove := range v.detach {
		if remove != nil {
			remove()
		}
	}
	v.detach = nil

	if v.cancelLoad != nil {
		v.cancelLoad()
		v.cancelLoad = nil
	}
	v.loading = false

	var err error
	if v.scene != nil {
		geoms, mats := v.scene.Dispose()
		v.log.Debug("scene released", zap.Int("geometries", geoms), zap.Int("materials", mats))
	}
	if v.renderer != nil {
		err = multierr.Append(err, v.renderer.Dispose())
	}
	v.model = nil
	v.displayed = DisplayNone
	v.initialized = false
	if CanTransition(v.state, StateDisposed) {
		v.transition(StateDisposed)
	}
	v.log.Info("viewer disposed")
	return err
}

// transition moves to next, logging transitions the lifecycle forbids.
func (v *Viewer) transition(next State) bool {
	if !CanTransition(v.state, next) {
		v.log.Warn("illegal state transition", zap.Stringer("from", v.state), zap.Stringer("to", next))
		return false
	}
	v.log.Debug("state", zap.Stringer("from", v.state), zap.Stringer("to", next))
	v.state = next
	return true
}

func (v *Viewer) handleVisibility(visible bool) {
	if visible {
		v.Resume()
		return
	}
	v.Pause()
}

func (v *Viewer) handleResize() {
	if v.disposed || !v.initialized {
		return
	}
	width, height := v.host.Surface.Size()
	if width <= 0 || height <= 0 {
		return
	}
	v.camera.SetAspect(aspect(width, height))
	v.renderer.SetPixelRatio(v.host.Surface.PixelRatio())
	v.renderer.SetSize(width, height)
	v.log.Debug("resized", zap.Int("width", width), zap.Int("height", height))
}

func (v *Viewer) overlay() Overlay {
	if v.host.Overlay == nil {
		return nopOverlay{}
	}
	return v.host.Overlay
}

func (v *Viewer) report(err error, stage string) {
	if v.host.Reporter != nil {
		v.host.Reporter.Capture(err, map[string]string{"stage": stage})
	}
}

func aspect(width, height int) float32 {
	if width <= 0 || height <= 0 {
		return 1
	}
	return float32(width) / float32(height)
}

type nopOverlay struct{}

func (nopOverlay) ShowLoading()          {}
func (nopOverlay) UpdateLoading(float64) {}
func (nopOverlay) HideLoading()          {}
func (nopOverlay) ShowError(error)       {}
