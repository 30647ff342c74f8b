package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// LightKind selects how a light contributes to shading.
type LightKind int

const (
	// Ambient lights every surface evenly.
	Ambient LightKind = iota
	// Directional shines from Position towards the origin.
	Directional
)

func (k LightKind) String() string {
	switch k {
	case Ambient:
		return "ambient"
	case Directional:
		return "directional"
	default:
		return "unknown"
	}
}

// Light is an ambient or directional light.
type Light struct {
	Name       string
	Kind       LightKind
	Color      Color
	Intensity  float32
	Position   mgl32.Vec3
	CastShadow bool
}

// Direction returns the normalized direction towards the light.
func (l *Light) Direction() mgl32.Vec3 {
	if l.Position.Len() == 0 {
		return mgl32.Vec3{0, 1, 0}
	}
	return l.Position.Normalize()
}

// Fog is linear distance fog.
type Fog struct {
	Color     Color
	Near, Far float32
}

// Scene is the root of a scene graph plus its environment.
type Scene struct {
	Root       *Node
	Background Color
	Fog        *Fog
	Lights     []*Light
}

// New returns an empty scene with the given background.
func New(background Color) *Scene {
	return &Scene{
		Root:       NewNode("scene"),
		Background: background,
	}
}

// Add attaches n to the scene root.
func (s *Scene) Add(n *Node) {
	s.Root.Add(n)
}

// Remove detaches n from the scene root.
func (s *Scene) Remove(n *Node) bool {
	return s.Root.Remove(n)
}

// AddLight appends a light.
func (s *Scene) AddLight(l *Light) {
	s.Lights = append(s.Lights, l)
}

// ShadowLight returns the first directional light that casts shadows.
func (s *Scene) ShadowLight() *Light {
	for _, l := range s.Lights {
		if l.Kind == Directional && l.CastShadow {
			return l
		}
	}
	return nil
}

// Meshes returns every visible mesh node with its world matrix.
func (s *Scene) Meshes() []DrawItem {
	var items []DrawItem
	s.Root.Traverse(func(n *Node) {
		if n.IsMesh() && n.VisibleInTree() {
			items = append(items, DrawItem{Node: n, World: n.WorldMatrix()})
		}
	})
	return items
}

// DrawItem is a mesh node resolved for drawing.
type DrawItem struct {
	Node  *Node
	World mgl32.Mat4
}

// Dispose releases every geometry and material in the scene.
func (s *Scene) Dispose() (geometries, materials int) {
	return DisposeTree(s.Root)
}

func asin(x float32) float32     { return float32(math.Asin(float64(x))) }
func atan2(y, x float32) float32 { return float32(math.Atan2(float64(y), float64(x))) }
func abs(x float32) float32      { return float32(math.Abs(float64(x))) }
