// Package geometry builds procedural primitives for the scene graph.
package geometry

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/techcore/gpu3d/internal/engine/scene"
)

// Box returns an axis-aligned box centered on the origin. Each face has its
// own four vertices so normals stay flat.
func Box(width, height, depth float32) *scene.Geometry {
	hx, hy, hz := width/2, height/2, depth/2

	faces := []struct {
		normal mgl32.Vec3
		corner [4]mgl32.Vec3
	}{
		{mgl32.Vec3{1, 0, 0}, [4]mgl32.Vec3{{hx, -hy, hz}, {hx, -hy, -hz}, {hx, hy, -hz}, {hx, hy, hz}}},
		{mgl32.Vec3{-1, 0, 0}, [4]mgl32.Vec3{{-hx, -hy, -hz}, {-hx, -hy, hz}, {-hx, hy, hz}, {-hx, hy, -hz}}},
		{mgl32.Vec3{0, 1, 0}, [4]mgl32.Vec3{{-hx, hy, hz}, {hx, hy, hz}, {hx, hy, -hz}, {-hx, hy, -hz}}},
		{mgl32.Vec3{0, -1, 0}, [4]mgl32.Vec3{{-hx, -hy, -hz}, {hx, -hy, -hz}, {hx, -hy, hz}, {-hx, -hy, hz}}},
		{mgl32.Vec3{0, 0, 1}, [4]mgl32.Vec3{{-hx, -hy, hz}, {hx, -hy, hz}, {hx, hy, hz}, {-hx, hy, hz}}},
		{mgl32.Vec3{0, 0, -1}, [4]mgl32.Vec3{{hx, -hy, -hz}, {-hx, -hy, -hz}, {-hx, hy, -hz}, {hx, hy, -hz}}},
	}

	g := &scene.Geometry{
		Positions: make([]mgl32.Vec3, 0, 24),
		Normals:   make([]mgl32.Vec3, 0, 24),
		Indices:   make([]uint32, 0, 36),
	}
	for _, f := range faces {
		base := uint32(len(g.Positions))
		for _, c := range f.corner {
			g.Positions = append(g.Positions, c)
			g.Normals = append(g.Normals, f.normal)
		}
		g.Indices = append(g.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return g
}

// Cylinder returns a capped cylinder along the Y axis centered on the origin.
// Fewer than three segments is raised to three.
func Cylinder(radiusTop, radiusBottom, height float32, segments int) *scene.Geometry {
	if segments < 3 {
		segments = 3
	}
	half := height / 2
	g := &scene.Geometry{}

	// Side: a ring of vertices at each end, normals tilted by the slope.
	slope := (radiusBottom - radiusTop) / height
	for i := 0; i <= segments; i++ {
		theta := float64(i) / float64(segments) * 2 * math.Pi
		sin, cos := float32(math.Sin(theta)), float32(math.Cos(theta))
		n := mgl32.Vec3{sin, slope, cos}.Normalize()

		g.Positions = append(g.Positions,
			mgl32.Vec3{radiusTop * sin, half, radiusTop * cos},
			mgl32.Vec3{radiusBottom * sin, -half, radiusBottom * cos},
		)
		g.Normals = append(g.Normals, n, n)
	}
	for i := 0; i < segments; i++ {
		a := uint32(i * 2)
		b := a + 1
		c := a + 2
		d := a + 3
		g.Indices = append(g.Indices, a, b, d, a, d, c)
	}

	addCap(g, radiusTop, half, 1, segments)
	addCap(g, radiusBottom, -half, -1, segments)
	return g
}

func addCap(g *scene.Geometry, radius, y, sign float32, segments int) {
	if radius <= 0 {
		return
	}
	normal := mgl32.Vec3{0, sign, 0}
	center := uint32(len(g.Positions))
	g.Positions = append(g.Positions, mgl32.Vec3{0, y, 0})
	g.Normals = append(g.Normals, normal)

	for i := 0; i <= segments; i++ {
		theta := float64(i) / float64(segments) * 2 * math.Pi
		g.Positions = append(g.Positions, mgl32.Vec3{
			radius * float32(math.Sin(theta)), y, radius * float32(math.Cos(theta)),
		})
		g.Normals = append(g.Normals, normal)
	}
	for i := uint32(0); i < uint32(segments); i++ {
		a, b := center+1+i, center+2+i
		if sign > 0 {
			g.Indices = append(g.Indices, center, a, b)
		} else {
			g.Indices = append(g.Indices, center, b, a)
		}
	}
}
