package viewer

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/techcore/gpu3d/internal/engine/camera"
	"github.com/techcore/gpu3d/internal/engine/geometry"
	"github.com/techcore/gpu3d/internal/engine/scene"
	"github.com/techcore/gpu3d/internal/loop"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

const frameInterval = 16 * time.Millisecond

type fakeRenderer struct {
	cfg       RendererConfig
	renders   int
	sizes     [][2]int
	ratios    []float64
	shadows   []bool
	disposed  int
	renderErr error
}

func (r *fakeRenderer) SetSize(w, h int)         { r.sizes = append(r.sizes, [2]int{w, h}) }
func (r *fakeRenderer) SetPixelRatio(pr float64) { r.ratios = append(r.ratios, pr) }
func (r *fakeRenderer) SetShadows(enabled bool)  { r.shadows = append(r.shadows, enabled) }
func (r *fakeRenderer) ReadPixels() ([]byte, int, int, error) {
	return make([]byte, 2*2*4), 2, 2, nil
}

func (r *fakeRenderer) Render(*scene.Scene, *camera.Perspective) error {
	r.renders++
	return r.renderErr
}

func (r *fakeRenderer) Dispose() error {
	r.disposed++
	return nil
}

type loadResult struct {
	node  *scene.Node
	err   error
	panic any
}

// fakeLoader answers every Load from results, or with release when results
// is empty, blocking until a value arrives.
type fakeLoader struct {
	mu       sync.Mutex
	paths    []string
	results  []loadResult
	progress [][2]int64
	release  chan loadResult
}

func newFakeLoader(results ...loadResult) *fakeLoader {
	return &fakeLoader{results: results, release: make(chan loadResult, 1)}
}

func (l *fakeLoader) Load(ctx context.Context, path string, progress func(loaded, total int64)) (*scene.Node, error) {
	l.mu.Lock()
	l.paths = append(l.paths, path)
	var res *loadResult
	if len(l.results) > 0 {
		res = &l.results[0]
		l.results = l.results[1:]
	}
	steps := slices.Clone(l.progress)
	l.mu.Unlock()

	for _, p := range steps {
		progress(p[0], p[1])
	}
	if res != nil {
		if res.panic != nil {
			panic(res.panic)
		}
		return res.node, res.err
	}
	select {
	case r := <-l.release:
		return r.node, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (l *fakeLoader) calls() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.paths)
}

// fakeProber resolves to the first candidate in exists.
type fakeProber struct {
	mu     sync.Mutex
	exists map[string]bool
	probed []string
}

func (p *fakeProber) Resolve(_ context.Context, primary string, alternatives []string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, c := range append([]string{primary}, alternatives...) {
		p.probed = append(p.probed, c)
		if p.exists[c] {
			return c
		}
	}
	return primary
}

func (p *fakeProber) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.probed)
}

type fakeSurface struct {
	w, h  int
	ratio float64
}

func (s *fakeSurface) Size() (int, int)    { return s.w, s.h }
func (s *fakeSurface) PixelRatio() float64 { return s.ratio }

type fakeEnv struct{ local bool }

func (e fakeEnv) LocalFile() bool { return e.local }

type fakeEvents struct {
	resize     []func()
	visibility []func(bool)
}

func (e *fakeEvents) OnResize(fn func()) func() {
	i := len(e.resize)
	e.resize = append(e.resize, fn)
	return func() { e.resize[i] = nil }
}

func (e *fakeEvents) OnVisibility(fn func(bool)) func() {
	i := len(e.visibility)
	e.visibility = append(e.visibility, fn)
	return func() { e.visibility[i] = nil }
}

func (e *fakeEvents) fireResize() {
	for _, fn := range e.resize {
		if fn != nil {
			fn()
		}
	}
}

func (e *fakeEvents) fireVisibility(visible bool) {
	for _, fn := range e.visibility {
		if fn != nil {
			fn(visible)
		}
	}
}

func (e *fakeEvents) listeners() int {
	n := 0
	for _, fn := range e.resize {
		if fn != nil {
			n++
		}
	}
	for _, fn := range e.visibility {
		if fn != nil {
			n++
		}
	}
	return n
}

type fakeOverlay struct {
	shown    int
	hidden   int
	progress []float64
	errors   []error
}

func (o *fakeOverlay) ShowLoading()              { o.shown++ }
func (o *fakeOverlay) UpdateLoading(pct float64) { o.progress = append(o.progress, pct) }
func (o *fakeOverlay) HideLoading()              { o.hidden++ }
func (o *fakeOverlay) ShowError(err error)       { o.errors = append(o.errors, err) }

type fakeReporter struct{ errs []error }

func (r *fakeReporter) Capture(err error, _ map[string]string) { r.errs = append(r.errs, err) }

// harness wires a viewer to fakes and drives its loop with a virtual clock.
type harness struct {
	t        *testing.T
	loop     *loop.Loop
	now      time.Time
	renderer *fakeRenderer
	loader   *fakeLoader
	prober   *fakeProber
	surface  *fakeSurface
	events   *fakeEvents
	overlay  *fakeOverlay
	reporter *fakeReporter
	host     Host
	v        *Viewer
}

func newHarness(t *testing.T, loader *fakeLoader) *harness {
	t.Helper()
	h := &harness{
		t:        t,
		loop:     loop.NewAt(epoch),
		now:      epoch,
		renderer: &fakeRenderer{},
		loader:   loader,
		prober:   &fakeProber{exists: map[string]bool{}},
		surface:  &fakeSurface{w: 800, h: 600, ratio: 1},
		events:   &fakeEvents{},
		overlay:  &fakeOverlay{},
		reporter: &fakeReporter{},
	}
	h.host = Host{
		Scheduler: h.loop,
		Surface:   h.surface,
		Renderer: func(cfg RendererConfig) (Renderer, error) {
			h.renderer.cfg = cfg
			return h.renderer, nil
		},
		Loader:      loader,
		Prober:      h.prober,
		Environment: fakeEnv{},
		Events:      h.events,
		Overlay:     h.overlay,
		Reporter:    h.reporter,
	}
	return h
}

func (h *harness) start(cfg Config) *Viewer {
	h.v = New(cfg, h.host)
	h.t.Cleanup(func() { _ = h.v.Dispose() })
	return h.v
}

// step moves the clock by d and runs one scheduler turn plus one frame.
func (h *harness) step(d time.Duration) {
	h.now = h.now.Add(d)
	h.loop.Advance(h.now)
	h.loop.Frame(h.now)
}

// until steps frames until cond holds, failing after two seconds of real time.
func (h *harness) until(what string, cond func() bool) {
	h.t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			h.t.Fatalf("timed out waiting for %s (state %v)", what, h.v.State())
		}
		time.Sleep(time.Millisecond)
		h.step(frameInterval)
	}
}

func (h *harness) settled() bool {
	return !h.v.Stats().Loading && h.v.Stats().Displayed != DisplayNone
}

func testModel() *scene.Node {
	root := scene.NewNode("gpu")
	root.Position[0] = 4
	root.Rotation[2] = 1
	root.Add(scene.NewMesh("board", geometry.Box(1, 1, 1), scene.NewMaterial(scene.Hex(0x00ff00))))
	return root
}

var errNotFound = errors.New("404 not found")
