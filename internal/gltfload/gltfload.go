// Package gltfload decodes glTF 2.0 assets (.glb or embedded .gltf) into
// the engine's scene graph.
package gltfload

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"

	"github.com/techcore/gpu3d/internal/assets"
	"github.com/techcore/gpu3d/internal/engine/scene"
)

// ErrEmpty is returned when the asset has no drawable mesh.
var ErrEmpty = errors.New("gltf: asset contains no triangle meshes")

// Loader fetches an asset through an assets.Manager and decodes it.
type Loader struct {
	Assets *assets.Manager
	Log    *zap.Logger
}

// Load fetches path and decodes it into a node tree.
func (l *Loader) Load(ctx context.Context, path string, progress func(loaded, total int64)) (*scene.Node, error) {
	data, err := l.Assets.Load(ctx, path, progress)
	if err != nil {
		return nil, err
	}
	root, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	if l.Log != nil {
		l.Log.Info("model decoded", zap.String("path", path), zap.Int("bytes", len(data)))
	}
	return root, nil
}

// Decode parses a GLB or self-contained glTF document.
func Decode(data []byte) (*scene.Node, error) {
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(bytes.NewReader(data)).Decode(doc); err != nil {
		return nil, err
	}
	return build(doc)
}

type builder struct {
	doc       *gltf.Document
	materials map[int]*scene.Material
	meshes    int
}

func build(doc *gltf.Document) (*scene.Node, error) {
	b := &builder{doc: doc, materials: make(map[int]*scene.Material)}

	root := scene.NewNode("gltf")
	for _, idx := range rootNodes(doc) {
		n, err := b.node(idx, 0)
		if err != nil {
			return nil, err
		}
		root.Add(n)
	}
	if b.meshes == 0 {
		return nil, ErrEmpty
	}
	return root, nil
}

// rootNodes returns the default scene's nodes, or every node that is nobody's child.
func rootNodes(doc *gltf.Document) []int {
	if len(doc.Scenes) > 0 {
		s := 0
		if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
			s = *doc.Scene
		}
		return doc.Scenes[s].Nodes
	}
	child := make(map[int]bool)
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			child[c] = true
		}
	}
	var roots []int
	for i := range doc.Nodes {
		if !child[i] {
			roots = append(roots, i)
		}
	}
	return roots
}

const maxDepth = 64

func (b *builder) node(idx, depth int) (*scene.Node, error) {
	if idx < 0 || idx >= len(b.doc.Nodes) {
		return nil, fmt.Errorf("node index %d out of range", idx)
	}
	if depth > maxDepth {
		return nil, fmt.Errorf("node hierarchy deeper than %d", maxDepth)
	}
	src := b.doc.Nodes[idx]

	n := scene.NewNode(src.Name)
	applyTransform(n, src)

	if src.Mesh != nil {
		if err := b.mesh(n, *src.Mesh); err != nil {
			return nil, err
		}
	}
	for _, c := range src.Children {
		child, err := b.node(c, depth+1)
		if err != nil {
			return nil, err
		}
		n.Add(child)
	}
	return n, nil
}

func (b *builder) mesh(parent *scene.Node, idx int) error {
	if idx < 0 || idx >= len(b.doc.Meshes) {
		return fmt.Errorf("mesh index %d out of range", idx)
	}
	m := b.doc.Meshes[idx]
	for i, p := range m.Primitives {
		if p.Mode != gltf.PrimitiveTriangles {
			continue
		}
		geom, err := b.geometry(p)
		if err != nil {
			return fmt.Errorf("mesh %q primitive %d: %w", m.Name, i, err)
		}
		name := m.Name
		if len(m.Primitives) > 1 {
			name = fmt.Sprintf("%s.%d", m.Name, i)
		}
		parent.Add(scene.NewMesh(name, geom, b.material(p.Material)))
		b.meshes++
	}
	return nil
}

func (b *builder) geometry(p *gltf.Primitive) (*scene.Geometry, error) {
	posIdx, ok := p.Attributes[gltf.POSITION]
	if !ok {
		return nil, errors.New("missing POSITION attribute")
	}
	acr, err := b.accessor(posIdx)
	if err != nil {
		return nil, fmt.Errorf("reading positions: %w", err)
	}
	positions, err := modeler.ReadPosition(b.doc, acr, nil)
	if err != nil {
		return nil, fmt.Errorf("reading positions: %w", err)
	}

	g := &scene.Geometry{Positions: toVec3(positions)}

	if p.Indices != nil {
		if acr, err = b.accessor(*p.Indices); err != nil {
			return nil, fmt.Errorf("reading indices: %w", err)
		}
		if g.Indices, err = modeler.ReadIndices(b.doc, acr, nil); err != nil {
			return nil, fmt.Errorf("reading indices: %w", err)
		}
		for i, v := range g.Indices {
			if int(v) >= len(positions) {
				return nil, fmt.Errorf("index %d at %d exceeds %d vertices", v, i, len(positions))
			}
		}
	} else {
		g.Indices = make([]uint32, len(positions))
		for i := range g.Indices {
			g.Indices[i] = uint32(i)
		}
	}

	if nIdx, ok := p.Attributes[gltf.NORMAL]; ok {
		if acr, err = b.accessor(nIdx); err != nil {
			return nil, fmt.Errorf("reading normals: %w", err)
		}
		normals, err := modeler.ReadNormal(b.doc, acr, nil)
		if err != nil {
			return nil, fmt.Errorf("reading normals: %w", err)
		}
		if len(normals) != len(positions) {
			return nil, fmt.Errorf("%d normals for %d positions", len(normals), len(positions))
		}
		g.Normals = toVec3(normals)
	}
	if len(g.Normals) != len(g.Positions) {
		g.ComputeFlatNormals()
	}
	return g, nil
}

func (b *builder) accessor(idx int) (*gltf.Accessor, error) {
	if idx < 0 || idx >= len(b.doc.Accessors) || b.doc.Accessors[idx] == nil {
		return nil, fmt.Errorf("accessor %d out of range", idx)
	}
	return b.doc.Accessors[idx], nil
}

func (b *builder) material(idx *int) *scene.Material {
	key := -1
	if idx != nil {
		key = *idx
	}
	if m, ok := b.materials[key]; ok {
		return m
	}

	m := scene.NewMaterial(scene.Color{R: 1, G: 1, B: 1})
	if key >= 0 && key < len(b.doc.Materials) {
		if c, ok := baseColor(b.doc.Materials[key]); ok {
			m.Color = c
		}
	}
	b.materials[key] = m
	return m
}

// baseColor reads the PBR base color factor of a material.
func baseColor(mat *gltf.Material) (scene.Color, bool) {
	if mat == nil || mat.PBRMetallicRoughness == nil {
		return scene.Color{}, false
	}
	f := mat.PBRMetallicRoughness.BaseColorFactorOrDefault()
	return scene.Color{R: float32(f[0]), G: float32(f[1]), B: float32(f[2])}, true
}

func applyTransform(n *scene.Node, src *gltf.Node) {
	if m, ok := nodeMatrix(src); ok {
		n.Position = m.Col(3).Vec3()
		sx, sy, sz := m.Col(0).Vec3().Len(), m.Col(1).Vec3().Len(), m.Col(2).Vec3().Len()
		n.Scale = mgl32.Vec3{sx, sy, sz}
		if sx != 0 && sy != 0 && sz != 0 {
			rot := mgl32.Ident4()
			rot.SetCol(0, m.Col(0).Mul(1/sx))
			rot.SetCol(1, m.Col(1).Mul(1/sy))
			rot.SetCol(2, m.Col(2).Mul(1/sz))
			rot.SetCol(3, mgl32.Vec4{0, 0, 0, 1})
			n.Rotation = scene.EulerFromMatrix(rot)
		}
		return
	}

	t := src.Translation
	n.Position = mgl32.Vec3{float32(t[0]), float32(t[1]), float32(t[2])}

	if s := src.Scale; s != [3]float64{} {
		n.Scale = mgl32.Vec3{float32(s[0]), float32(s[1]), float32(s[2])}
	}

	r := src.Rotation
	if r != [4]float64{} {
		q := mgl32.Quat{W: float32(r[3]), V: mgl32.Vec3{float32(r[0]), float32(r[1]), float32(r[2])}}.Normalize()
		n.Rotation = scene.EulerFromMatrix(q.Mat4())
	}
}

// nodeMatrix returns the node's explicit matrix when it is set and not the identity.
func nodeMatrix(src *gltf.Node) (mgl32.Mat4, bool) {
	var m mgl32.Mat4
	zero := true
	for i, v := range src.Matrix {
		m[i] = float32(v)
		if v != 0 {
			zero = false
		}
	}
	if zero || m == mgl32.Ident4() {
		return m, false
	}
	return m, true
}

func toVec3(in [][3]float32) []mgl32.Vec3 {
	out := make([]mgl32.Vec3, len(in))
	for i, v := range in {
		out[i] = mgl32.Vec3(v)
	}
	return out
}
