// Package scene provides the retained scene graph drawn by the renderer:
// nodes with transforms, meshes built from geometry and material, lights and fog.
package scene

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Color is a linear RGB color with components in [0, 1].
type Color struct {
	R, G, B float32
}

// Hex converts a 0xRRGGBB value into a Color.
func Hex(v uint32) Color {
	return Color{
		R: float32((v>>16)&0xff) / 255,
		G: float32((v>>8)&0xff) / 255,
		B: float32(v&0xff) / 255,
	}
}

// Vec3 returns the color as a vector for uniform upload.
func (c Color) Vec3() mgl32.Vec3 {
	return mgl32.Vec3{c.R, c.G, c.B}
}

// Scaled returns the color multiplied by s.
func (c Color) Scaled(s float32) Color {
	return Color{c.R * s, c.G * s, c.B * s}
}

// Geometry holds indexed triangle data. GPU buffers created for it by a
// renderer are released when the geometry is disposed.
type Geometry struct {
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	Indices   []uint32

	disposed  bool
	onDispose []func(*Geometry)
}

// OnDispose registers fn to run once when the geometry is disposed.
func (g *Geometry) OnDispose(fn func(*Geometry)) {
	g.onDispose = append(g.onDispose, fn)
}

// Dispose releases the geometry. Further calls do nothing.
func (g *Geometry) Dispose() {
	if g.disposed {
		return
	}
	g.disposed = true
	hooks := g.onDispose
	g.onDispose = nil
	for _, fn := range hooks {
		fn(g)
	}
}

// Disposed reports whether Dispose has been called.
func (g *Geometry) Disposed() bool {
	return g.disposed
}

// Bounds returns the axis-aligned box around all positions.
func (g *Geometry) Bounds() (min, max mgl32.Vec3) {
	if len(g.Positions) == 0 {
		return
	}
	min, max = g.Positions[0], g.Positions[0]
	for _, p := range g.Positions[1:] {
		for i := 0; i < 3; i++ {
			if p[i] < min[i] {
				min[i] = p[i]
			}
			if p[i] > max[i] {
				max[i] = p[i]
			}
		}
	}
	return min, max
}

// ComputeFlatNormals fills Normals with one face normal per triangle corner.
// Vertices shared between triangles get the normal of the last triangle.
func (g *Geometry) ComputeFlatNormals() {
	g.Normals = make([]mgl32.Vec3, len(g.Positions))
	for i := 0; i+2 < len(g.Indices); i += 3 {
		a, b, c := g.Indices[i], g.Indices[i+1], g.Indices[i+2]
		if int(a) >= len(g.Positions) || int(b) >= len(g.Positions) || int(c) >= len(g.Positions) {
			continue
		}
		n := g.Positions[b].Sub(g.Positions[a]).Cross(g.Positions[c].Sub(g.Positions[a]))
		if n.Len() > 0 {
			n = n.Normalize()
		}
		g.Normals[a], g.Normals[b], g.Normals[c] = n, n, n
	}
}

// Material is a Blinn-Phong surface description.
type Material struct {
	Color           Color
	Shininess       float32
	EnvMapIntensity float32
	NeedsUpdate     bool

	disposed bool
}

// NewMaterial returns a material with the given color and default shininess.
func NewMaterial(c Color) *Material {
	return &Material{Color: c, Shininess: 30, EnvMapIntensity: 1}
}

// Dispose releases the material. Further calls do nothing.
func (m *Material) Dispose() {
	m.disposed = true
}

// Disposed reports whether Dispose has been called.
func (m *Material) Disposed() bool {
	return m.disposed
}

// Mesh pairs a geometry with the material it is drawn with.
type Mesh struct {
	Geometry *Geometry
	Material *Material
}
