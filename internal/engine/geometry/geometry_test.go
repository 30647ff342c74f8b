package geometry

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/techcore/gpu3d/internal/engine/scene"
)

// outward checks that every triangle winds counter-clockwise seen from
// outside, using the stored vertex normal as reference.
func outward(t *testing.T, g *scene.Geometry) {
	t.Helper()
	for i := 0; i < len(g.Indices); i += 3 {
		a, b, c := g.Positions[g.Indices[i]], g.Positions[g.Indices[i+1]], g.Positions[g.Indices[i+2]]
		face := b.Sub(a).Cross(c.Sub(a))
		if face.Dot(g.Normals[g.Indices[i]]) <= 0 {
			t.Fatalf("triangle %d winds inward", i/3)
		}
	}
}

func TestBox(t *testing.T) {
	g := Box(2, 0.5, 1.5)

	if len(g.Positions) != 24 || len(g.Normals) != 24 {
		t.Errorf("expected 24 vertices, got %d", len(g.Positions))
	}
	if len(g.Indices) != 36 {
		t.Errorf("expected 36 indices, got %d", len(g.Indices))
	}

	min, max := g.Bounds()
	if !min.ApproxEqual(mgl32.Vec3{-1, -0.25, -0.75}) || !max.ApproxEqual(mgl32.Vec3{1, 0.25, 0.75}) {
		t.Errorf("unexpected bounds %v %v", min, max)
	}
	outward(t, g)
}

func TestCylinder(t *testing.T) {
	g := Cylinder(0.3, 0.3, 0.1, 8)

	// Side ring pairs plus two caps with a center vertex each.
	wantVerts := (8+1)*2 + 2*(8+2)
	if len(g.Positions) != wantVerts {
		t.Errorf("expected %d vertices, got %d", wantVerts, len(g.Positions))
	}
	wantIdx := 8*6 + 2*8*3
	if len(g.Indices) != wantIdx {
		t.Errorf("expected %d indices, got %d", wantIdx, len(g.Indices))
	}

	min, max := g.Bounds()
	if min.Y() != -0.05 || max.Y() != 0.05 {
		t.Errorf("unexpected height bounds %v %v", min, max)
	}
	outward(t, g)
}

func TestCylinderMinimumSegments(t *testing.T) {
	g := Cylinder(1, 1, 1, 1)
	if len(g.Indices) != 3*6+2*3*3 {
		t.Errorf("expected segments raised to 3, got %d indices", len(g.Indices))
	}
}

func TestConeHasNoTopCap(t *testing.T) {
	g := Cylinder(0, 1, 1, 6)
	if len(g.Indices) != 6*6+6*3 {
		t.Errorf("expected only the bottom cap, got %d indices", len(g.Indices))
	}
}
