package scene

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Node is an element of the scene graph. A node with a Mesh is drawn;
// a node without one only groups its children.
type Node struct {
	Name string

	Position mgl32.Vec3
	// Rotation holds Euler angles in radians applied in X, Y, Z order.
	Rotation mgl32.Vec3
	Scale    mgl32.Vec3

	Visible       bool
	CastShadow    bool
	ReceiveShadow bool

	Mesh *Mesh

	Children []*Node
	parent   *Node
}

// NewNode returns an empty visible group with unit scale.
func NewNode(name string) *Node {
	return &Node{
		Name:    name,
		Scale:   mgl32.Vec3{1, 1, 1},
		Visible: true,
	}
}

// NewMesh returns a visible node drawing geom with mat.
func NewMesh(name string, geom *Geometry, mat *Material) *Node {
	n := NewNode(name)
	n.Mesh = &Mesh{Geometry: geom, Material: mat}
	return n
}

// IsMesh reports whether the node draws geometry.
func (n *Node) IsMesh() bool {
	return n.Mesh != nil && n.Mesh.Geometry != nil
}

// Parent returns the node this one is attached to, or nil.
func (n *Node) Parent() *Node {
	return n.parent
}

// Add attaches child, detaching it from any previous parent first.
func (n *Node) Add(child *Node) {
	if child == nil || child == n {
		return
	}
	if child.parent != nil {
		child.parent.Remove(child)
	}
	child.parent = n
	n.Children = append(n.Children, child)
}

// Remove detaches child and reports whether it was attached to n.
func (n *Node) Remove(child *Node) bool {
	for i, c := range n.Children {
		if c == child {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			child.parent = nil
			return true
		}
	}
	return false
}

// Traverse calls fn for n and every descendant, parents first.
func (n *Node) Traverse(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		c.Traverse(fn)
	}
}

// SetScalar sets a uniform scale.
func (n *Node) SetScalar(s float32) {
	n.Scale = mgl32.Vec3{s, s, s}
}

// LocalMatrix returns translate * rotateX * rotateY * rotateZ * scale.
func (n *Node) LocalMatrix() mgl32.Mat4 {
	t := mgl32.Translate3D(n.Position.X(), n.Position.Y(), n.Position.Z())
	r := mgl32.HomogRotate3DX(n.Rotation.X()).
		Mul4(mgl32.HomogRotate3DY(n.Rotation.Y())).
		Mul4(mgl32.HomogRotate3DZ(n.Rotation.Z()))
	s := mgl32.Scale3D(n.Scale.X(), n.Scale.Y(), n.Scale.Z())
	return t.Mul4(r).Mul4(s)
}

// WorldMatrix returns the node's transform composed with all its ancestors.
func (n *Node) WorldMatrix() mgl32.Mat4 {
	m := n.LocalMatrix()
	for p := n.parent; p != nil; p = p.parent {
		m = p.LocalMatrix().Mul4(m)
	}
	return m
}

// VisibleInTree reports whether n and all its ancestors are visible.
func (n *Node) VisibleInTree() bool {
	for p := n; p != nil; p = p.parent {
		if !p.Visible {
			return false
		}
	}
	return true
}

// DisposeTree disposes every geometry and material reachable from n and
// returns how many distinct ones were released.
func DisposeTree(n *Node) (geometries, materials int) {
	if n == nil {
		return 0, 0
	}
	n.Traverse(func(c *Node) {
		if c.Mesh == nil {
			return
		}
		if g := c.Mesh.Geometry; g != nil && !g.Disposed() {
			g.Dispose()
			geometries++
		}
		if m := c.Mesh.Material; m != nil && !m.Disposed() {
			m.Dispose()
			materials++
		}
	})
	return geometries, materials
}

// EulerFromMatrix extracts XYZ Euler angles from the rotation part of an
// unscaled matrix.
func EulerFromMatrix(m mgl32.Mat4) mgl32.Vec3 {
	m13 := mgl32.Clamp(m.At(0, 2), -1, 1)
	y := asin(m13)
	if abs(m13) < 0.9999999 {
		return mgl32.Vec3{atan2(-m.At(1, 2), m.At(2, 2)), y, atan2(-m.At(0, 1), m.At(0, 0))}
	}
	return mgl32.Vec3{atan2(m.At(2, 1), m.At(1, 1)), y, 0}
}
