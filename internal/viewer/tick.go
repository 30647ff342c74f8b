package viewer

import (
	"math"
	"time"

	"go.uber.org/zap"
)

func (v *Viewer) requestFrame() {
	if v.frameScheduled {
		return
	}
	v.frameID = v.host.Scheduler.RequestFrame(v.tick)
	v.frameScheduled = true
}

// cancelFrame drops the scheduled frame and reports whether there was one.
func (v *Viewer) cancelFrame() bool {
	if !v.frameScheduled {
		return false
	}
	v.host.Scheduler.CancelFrame(v.frameID)
	v.frameScheduled = false
	return true
}

// tick advances the animation by one frame. Rotation is applied per frame,
// so the angular velocity follows the achieved frame rate.
func (v *Viewer) tick(now time.Time) {
	v.frameScheduled = false
	if v.disposed || !v.initialized {
		return
	}
	v.requestFrame()

	v.frames++
	if elapsed := now.Sub(v.fpsWindow); elapsed >= FPSWindow {
		v.fps = v.frames
		v.frames = 0
		v.fpsWindow = now
		if v.fps < LowFPS {
			v.log.Warn("low frame rate", zap.Int("fps", v.fps))
		}
	}

	if v.model != nil && v.controls.AutoRotate {
		v.model.Rotation[1] += float32(v.rotationSpeed)
		if v.controls.Wobble {
			ms := float64(now.Sub(v.start)) / float64(time.Millisecond)
			v.model.Rotation[0] = float32(math.Pi/2 + v.cfg.WobbleAmplitude*math.Sin(ms*v.cfg.WobbleSpeed))
		}
	}

	v.draw()
}

// Redraw renders the scene as it is, without advancing the animation. It
// reports whether a frame was drawn.
func (v *Viewer) Redraw() bool {
	if v.disposed || !v.initialized {
		return false
	}
	return v.draw()
}

// draw renders one frame, skipping it when the scene is incomplete.
func (v *Viewer) draw() bool {
	if v.renderer == nil || v.scene == nil || v.camera == nil {
		v.log.Debug("render skipped, scene incomplete")
		return false
	}
	if err := v.renderer.Render(v.scene, v.camera); err != nil {
		if !v.renderFailing {
			v.log.Warn("render failed", zap.Error(err))
		}
		v.renderFailing = true
		return false
	}
	v.renderFailing = false
	return true
}
