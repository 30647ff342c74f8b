package shadow

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Bounds is a bounding sphere of the shadowed content.
type Bounds struct {
	Center mgl32.Vec3
	Radius float32
}

// BoundsFromBox returns the sphere enclosing an axis-aligned box.
func BoundsFromBox(min, max mgl32.Vec3) Bounds {
	return Bounds{
		Center: min.Add(max).Mul(0.5),
		Radius: max.Sub(min).Len() / 2,
	}
}

// LightMatrix computes the view-projection of a directional light so that
// the orthographic frustum encloses b. lightDir points towards the light.
func LightMatrix(lightDir mgl32.Vec3, b Bounds) mgl32.Mat4 {
	radius := b.Radius
	if radius <= 0 {
		radius = 1
	}
	dir := lightDir
	if dir.Len() == 0 {
		dir = mgl32.Vec3{0, 1, 0}
	}
	dir = dir.Normalize()

	distance := radius * 2
	eye := b.Center.Add(dir.Mul(distance))

	// Avoid an up vector parallel to the light.
	up := mgl32.Vec3{0, 1, 0}
	if abs32(dir.Y()) > 0.99 {
		up = mgl32.Vec3{0, 0, 1}
	}
	view := mgl32.LookAtV(eye, b.Center, up)

	half := radius * 1.1
	proj := mgl32.Ortho(-half, half, -half, half, 0.1, distance+half)
	return proj.Mul4(view)
}

func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
