package viewer

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/techcore/gpu3d/internal/engine/scene"
)

// LoadModel starts loading the model. Only one attempt runs at a time;
// calling it while loading does nothing. In a local-file environment the
// placeholder is shown without any network access.
func (v *Viewer) LoadModel() {
	if v.disposed || !v.initialized || v.loading {
		return
	}
	v.loading = true
	v.progress = 0
	v.attempt++
	if v.state == StateReady {
		v.transition(StateLoading)
	}
	v.overlay().ShowLoading()

	if v.host.Environment != nil && v.host.Environment.LocalFile() {
		v.log.Info("local file environment, skipping model fetch")
		v.loadFailed(&LoadError{Path: v.cfg.ModelPath, Err: ErrLocalFile})
		return
	}

	ctx, cancel := context.Background(), context.CancelFunc(func() {})
	if v.cfg.LoadTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, v.cfg.LoadTimeout)
	}
	v.cancelLoad = cancel

	attempt, cfg, host := v.attempt, v.cfg, v.host
	post := host.Scheduler.Post
	go func() {
		path := cfg.ModelPath
		if host.Prober != nil && cfg.ProbeAlternatives {
			path = host.Prober.Resolve(ctx, path, cfg.AlternativePaths)
		}
		post(func() { v.loadStarted(attempt, path) })

		node, err := safeLoad(ctx, host.Loader, path, func(loaded, total int64) {
			post(func() { v.loadProgress(attempt, loaded, total) })
		})
		post(func() { v.loadFinished(attempt, path, node, err) })
	}()
}

// safeLoad runs l.Load and turns a panic into an error so the attempt still
// finishes and the placeholder can be shown.
func safeLoad(ctx context.Context, l Loader, path string, progress func(loaded, total int64)) (node *scene.Node, err error) {
	defer func() {
		if r := recover(); r != nil {
			node, err = nil, fmt.Errorf("%w: %v", ErrLoaderPanic, r)
		}
	}()
	return l.Load(ctx, path, progress)
}

// Reload retries the model load. It reports whether an attempt started.
func (v *Viewer) Reload() bool {
	if v.disposed || !v.initialized || v.loading {
		return false
	}
	v.log.Info("reloading model")
	v.LoadModel()
	return true
}

func (v *Viewer) current(attempt uint64) bool {
	return !v.disposed && v.loading && attempt == v.attempt
}

func (v *Viewer) loadStarted(attempt uint64, path string) {
	if !v.current(attempt) {
		return
	}
	v.log.Info("loading model", zap.String("path", path))
}

// loadProgress keeps progress monotonic within one attempt and ignores
// unknown totals.
func (v *Viewer) loadProgress(attempt uint64, loaded, total int64) {
	if !v.current(attempt) || total <= 0 {
		return
	}
	pct := min(float64(loaded)/float64(total)*100, 100)
	if pct <= v.progress {
		return
	}
	v.progress = pct
	v.overlay().UpdateLoading(pct)
}

func (v *Viewer) loadFinished(attempt uint64, path string, node *scene.Node, err error) {
	if !v.current(attempt) {
		if node != nil {
			scene.DisposeTree(node)
		}
		v.log.Debug("dropping stale load result", zap.String("path", path), zap.Bool("disposed", v.disposed))
		return
	}
	if v.cancelLoad != nil {
		v.cancelLoad()
		v.cancelLoad = nil
	}
	if err == nil && node == nil {
		err = ErrEmptyModel
	}
	if err != nil {
		v.loadFailed(&LoadError{Path: path, Err: err})
		return
	}

	v.loading = false
	v.progress = 100
	v.prepareModel(node)
	v.display(node, DisplayModel)
	v.overlay().HideLoading()
	v.log.Info("model loaded", zap.String("path", path))
	v.settle(StatePopulated)
}

// loadFailed shows the placeholder when nothing is displayed. A displayed
// model stays and only the error is surfaced.
func (v *Viewer) loadFailed(err *LoadError) {
	v.loading = false
	v.overlay().HideLoading()

	switch v.displayed {
	case DisplayModel:
		v.log.Error("model load failed, keeping displayed model", zap.Error(err))
		v.overlay().ShowError(err)
		v.report(err, "load")
		return
	case DisplayPlaceholder:
		v.log.Warn("model load failed, keeping placeholder", zap.Error(err))
		return
	}

	if errors.Is(err, ErrLocalFile) {
		v.log.Info("showing placeholder model")
	} else {
		v.log.Warn("model load failed, showing placeholder", zap.Error(err))
		v.report(err, "load")
	}

	node, perr := v.host.Placeholder(v.controls.Shadows)
	if perr == nil && node == nil {
		perr = errors.New("placeholder builder returned no scene")
	}
	if perr != nil {
		v.fail(&SetupError{Capability: "placeholder", Err: errors.Join(perr, err)})
		v.notifyFailed()
		return
	}
	v.display(node, DisplayPlaceholder)
	v.settle(StatePlaceholder)
	v.draw()
}

// prepareModel applies shadows and material tweaks and places the model at
// the origin with the configured scale.
func (v *Viewer) prepareModel(node *scene.Node) {
	node.Traverse(func(n *scene.Node) {
		if !n.IsMesh() {
			return
		}
		n.CastShadow = v.controls.Shadows
		n.ReceiveShadow = v.controls.Shadows
		if m := n.Mesh.Material; m != nil {
			m.EnvMapIntensity = 0.5
			m.NeedsUpdate = true
		}
	})
	node.Position = mgl32.Vec3{}
	node.SetScalar(float32(v.cfg.Scale))
	node.Rotation = mgl32.Vec3{}
}

// display puts node in the model slot, releasing what was there.
func (v *Viewer) display(node *scene.Node, kind Displayed) {
	if v.model != nil {
		v.scene.Remove(v.model)
		geoms, mats := scene.DisposeTree(v.model)
		v.log.Debug("released previous model",
			zap.Stringer("kind", v.displayed),
			zap.Int("geometries", geoms),
			zap.Int("materials", mats),
		)
	}
	v.scene.Add(node)
	v.model = node
	v.displayed = kind
}

// settle records the load outcome. The first load passes through
// POPULATED or PLACEHOLDER and on to RUNNING when the loop is scheduled;
// a reload leaves RUNNING or PAUSED as it is.
func (v *Viewer) settle(outcome State) {
	if v.state != StateLoading {
		return
	}
	v.transition(outcome)
	if v.frameScheduled {
		v.transition(StateRunning)
	}
}
