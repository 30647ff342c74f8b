// Package renderer draws a scene graph with OpenGL.
package renderer

import (
	"errors"
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/techcore/gpu3d/internal/engine/camera"
	"github.com/techcore/gpu3d/internal/engine/renderer/shaders"
	"github.com/techcore/gpu3d/internal/engine/scene"
	"github.com/techcore/gpu3d/internal/engine/shader"
	"github.com/techcore/gpu3d/internal/engine/shadow"
)

// maxLights matches MAX_LIGHTS in phong.frag.
const maxLights = 3

// ErrDisposed is returned when drawing with a disposed renderer.
var ErrDisposed = errors.New("renderer disposed")

// Config holds renderer configuration.
type Config struct {
	Width  int // Logical surface size
	Height int

	PixelRatio    float64 // Display scale of the surface
	MaxPixelRatio float64 // Upper bound applied to PixelRatio; 0 disables the cap

	Shadows          bool
	ShadowResolution int32
}

// Renderer draws scene graphs into the current GL framebuffer.
// IMPORTANT: Must be created AFTER the OpenGL context!
type Renderer struct {
	config Config
	log    *zap.Logger

	phong *shader.Program
	depth *shader.Program

	shadowMap *shadow.Map
	buffers   map[*scene.Geometry]*meshBuffers

	disposed bool
}

// New initializes OpenGL and compiles the shading programs.
func New(cfg Config, log *zap.Logger) (*Renderer, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	r := &Renderer{
		config:  cfg,
		log:     log,
		buffers: make(map[*scene.Geometry]*meshBuffers),
	}

	var err error
	if r.phong, err = shader.Compile("phong", shaders.PhongVertexShader, shaders.PhongFragmentShader); err != nil {
		return nil, err
	}
	if r.depth, err = shader.Compile("depth", shaders.DepthVertexShader, shaders.DepthFragmentShader); err != nil {
		r.phong.Delete()
		return nil, err
	}

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)

	r.SetShadows(cfg.Shadows)
	r.SetSize(cfg.Width, cfg.Height)
	return r, nil
}

// SetSize sets the logical surface size and updates the viewport.
func (r *Renderer) SetSize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	w, h := ViewportSize(width, height, r.config.PixelRatio, r.config.MaxPixelRatio)
	gl.Viewport(0, 0, w, h)
	r.log.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
		zap.Int32("viewport_width", w),
		zap.Int32("viewport_height", h),
	)
}

// SetPixelRatio changes the display scale and recomputes the viewport.
func (r *Renderer) SetPixelRatio(ratio float64) {
	r.config.PixelRatio = ratio
	r.SetSize(r.config.Width, r.config.Height)
}

// SetShadows turns the shadow pass on or off. The shadow map is allocated on
// first use; failing to allocate it leaves shadows off.
func (r *Renderer) SetShadows(enabled bool) {
	r.config.Shadows = enabled
	if !enabled || r.shadowMap.IsValid() {
		return
	}
	sm, err := shadow.NewMap(r.config.ShadowResolution)
	if err != nil {
		r.log.Warn("shadows unavailable", zap.Error(err))
		r.config.Shadows = false
		return
	}
	r.shadowMap = sm
}

// ShadowsEnabled reports whether the shadow pass runs.
func (r *Renderer) ShadowsEnabled() bool {
	return r.config.Shadows && r.shadowMap.IsValid()
}

// Render draws s as seen by cam.
func (r *Renderer) Render(s *scene.Scene, cam *camera.Perspective) error {
	if r.disposed {
		return ErrDisposed
	}
	if s == nil || cam == nil {
		return errors.New("render: scene and camera are required")
	}

	items := s.Meshes()

	lightViewProj := mgl32.Ident4()
	shadowLight := s.ShadowLight()
	shadows := r.ShadowsEnabled() && shadowLight != nil && len(items) > 0
	if shadows {
		lightViewProj = shadow.LightMatrix(shadowLight.Direction(), sceneBounds(items))
		r.depthPass(items, lightViewProj)
	}

	bg := s.Background
	gl.ClearColor(bg.R, bg.G, bg.B, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	gl.Enable(gl.DEPTH_TEST)
	gl.Disable(gl.CULL_FACE)

	p := r.phong
	p.Use()
	p.SetMat4("uView", cam.View())
	p.SetMat4("uProjection", cam.Projection())
	p.SetMat4("uLightViewProj", lightViewProj)
	p.SetVec3("uCameraPos", cam.Position)
	r.setLights(s)

	p.SetBool("uFogEnabled", s.Fog != nil)
	if s.Fog != nil {
		p.SetVec3("uFogColor", s.Fog.Color.Vec3())
		p.SetFloat("uFogNear", s.Fog.Near)
		p.SetFloat("uFogFar", s.Fog.Far)
	}

	p.SetBool("uShadowsEnabled", shadows)
	p.SetInt("uShadowMap", 0)
	if shadows {
		r.shadowMap.BindTexture(gl.TEXTURE0)
	}

	for _, it := range items {
		mat := it.Node.Mesh.Material
		if mat == nil {
			mat = scene.NewMaterial(scene.Hex(0xffffff))
		}
		p.SetMat4("uModel", it.World)
		p.SetMat3("uNormalMatrix", it.World.Mat3().Inv().Transpose())
		p.SetVec3("uColor", mat.Color.Vec3())
		p.SetFloat("uShininess", max(mat.Shininess, 1))
		p.SetFloat("uEnvMapIntensity", mat.EnvMapIntensity)
		p.SetBool("uReceiveShadow", it.Node.ReceiveShadow)
		r.draw(it.Node.Mesh.Geometry)
		mat.NeedsUpdate = false
	}
	gl.BindVertexArray(0)

	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("render: GL error 0x%x", code)
	}
	return nil
}

func (r *Renderer) depthPass(items []scene.DrawItem, lightViewProj mgl32.Mat4) {
	r.shadowMap.Bind()
	r.depth.Use()
	r.depth.SetMat4("uLightViewProj", lightViewProj)
	for _, it := range items {
		if !it.Node.CastShadow {
			continue
		}
		r.depth.SetMat4("uModel", it.World)
		r.draw(it.Node.Mesh.Geometry)
	}
	r.shadowMap.Unbind()
}

func (r *Renderer) setLights(s *scene.Scene) {
	p := r.phong
	var ambient mgl32.Vec3
	count := int32(0)
	shadowIndex := int32(-1)
	for _, l := range s.Lights {
		switch l.Kind {
		case scene.Ambient:
			ambient = ambient.Add(l.Color.Scaled(l.Intensity).Vec3())
		case scene.Directional:
			if count >= maxLights {
				continue
			}
			if l.CastShadow && shadowIndex < 0 {
				shadowIndex = count
			}
			p.SetVec3(fmt.Sprintf("uLightDir[%d]", count), l.Direction())
			p.SetVec3(fmt.Sprintf("uLightColor[%d]", count), l.Color.Scaled(l.Intensity).Vec3())
			count++
		}
	}
	p.SetVec3("uAmbient", ambient)
	p.SetInt("uLightCount", count)
	p.SetInt("uShadowLight", shadowIndex)
}

// ReadPixels returns the RGBA contents of the viewport, bottom row first.
func (r *Renderer) ReadPixels() ([]byte, int, int, error) {
	if r.disposed {
		return nil, 0, 0, ErrDisposed
	}
	w, h := ViewportSize(r.config.Width, r.config.Height, r.config.PixelRatio, r.config.MaxPixelRatio)
	if w <= 0 || h <= 0 {
		return nil, 0, 0, fmt.Errorf("read pixels: empty viewport %dx%d", w, h)
	}
	pixels := make([]byte, int(w)*int(h)*4)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, w, h, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return pixels, int(w), int(h), nil
}

// Dispose releases every GPU resource the renderer created. Further calls do nothing.
func (r *Renderer) Dispose() error {
	if r.disposed {
		return nil
	}
	r.disposed = true
	r.log.Info("disposing renderer", zap.Int("buffers", len(r.buffers)))

	var err error
	for g, b := range r.buffers {
		b.release()
		delete(r.buffers, g)
	}
	if r.shadowMap != nil {
		r.shadowMap.Destroy()
	}
	r.phong.Delete()
	r.depth.Delete()
	if code := gl.GetError(); code != gl.NO_ERROR {
		err = multierr.Append(err, fmt.Errorf("dispose: GL error 0x%x", code))
	}
	return err
}

// ViewportSize scales the logical size by the pixel ratio, capped at maxRatio.
func ViewportSize(width, height int, ratio, maxRatio float64) (int32, int32) {
	ratio = EffectivePixelRatio(ratio, maxRatio)
	return int32(float64(width) * ratio), int32(float64(height) * ratio)
}

// EffectivePixelRatio returns min(ratio, maxRatio), treating non-positive
// ratios as 1 and a non-positive cap as no cap.
func EffectivePixelRatio(ratio, maxRatio float64) float64 {
	if ratio <= 0 {
		ratio = 1
	}
	if maxRatio > 0 && ratio > maxRatio {
		ratio = maxRatio
	}
	return ratio
}

func sceneBounds(items []scene.DrawItem) shadow.Bounds {
	first := true
	var lo, hi mgl32.Vec3
	for _, it := range items {
		gmin, gmax := it.Node.Mesh.Geometry.Bounds()
		for _, c := range corners(gmin, gmax) {
			p := it.World.Mul4x1(c.Vec4(1)).Vec3()
			if first {
				lo, hi, first = p, p, false
				continue
			}
			for i := 0; i < 3; i++ {
				lo[i] = min(lo[i], p[i])
				hi[i] = max(hi[i], p[i])
			}
		}
	}
	return shadow.BoundsFromBox(lo, hi)
}

func corners(lo, hi mgl32.Vec3) [8]mgl32.Vec3 {
	return [8]mgl32.Vec3{
		{lo[0], lo[1], lo[2]}, {hi[0], lo[1], lo[2]}, {lo[0], hi[1], lo[2]}, {hi[0], hi[1], lo[2]},
		{lo[0], lo[1], hi[2]}, {hi[0], lo[1], hi[2]}, {lo[0], hi[1], hi[2]}, {hi[0], hi[1], hi[2]},
	}
}
