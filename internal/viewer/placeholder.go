package viewer

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/techcore/gpu3d/internal/engine/geometry"
	"github.com/techcore/gpu3d/internal/engine/scene"
)

// Placeholder colors.
const (
	placeholderBody      = 0x333333
	placeholderFan       = 0x666666
	placeholderConnector = 0x222222
)

// PlaceholderFunc builds the object shown when the model cannot be loaded.
type PlaceholderFunc func(shadows bool) (*scene.Node, error)

// BuildPlaceholder returns a graphics card stand-in: a flat body, a fan on
// top and three connectors along the front edge.
func BuildPlaceholder(shadows bool) (*scene.Node, error) {
	group := scene.NewNode("placeholder")

	bodyMat := scene.NewMaterial(scene.Hex(placeholderBody))
	bodyMat.Shininess = 100
	body := scene.NewMesh("body", geometry.Box(2, 0.5, 1.5), bodyMat)
	group.Add(body)

	fan := scene.NewMesh("fan", geometry.Cylinder(0.3, 0.3, 0.1, 8), scene.NewMaterial(scene.Hex(placeholderFan)))
	fan.Position = mgl32.Vec3{0, 0.3, 0}
	fan.Rotation[0] = math.Pi / 2
	group.Add(fan)

	connectorGeom := geometry.Box(0.1, 0.1, 0.3)
	connectorMat := scene.NewMaterial(scene.Hex(placeholderConnector))
	for i := 0; i < 3; i++ {
		c := scene.NewMesh(fmt.Sprintf("connector-%d", i), connectorGeom, connectorMat)
		c.Position = mgl32.Vec3{-0.8 + 0.8*float32(i), -0.2, 0.6}
		group.Add(c)
	}

	setShadows(group, shadows)
	return group, nil
}

func setShadows(n *scene.Node, enabled bool) {
	n.Traverse(func(c *scene.Node) {
		if c.IsMesh() {
			c.CastShadow = enabled
			c.ReceiveShadow = enabled
		}
	})
}
