package renderer

import (
	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/techcore/gpu3d/internal/engine/scene"
)

// meshBuffers is the GPU copy of one geometry.
type meshBuffers struct {
	vao, positions, normals, indices uint32
	count                            int32
}

// draw uploads geom on first use and issues its draw call. Buffers are
// freed when the geometry is disposed.
func (r *Renderer) draw(geom *scene.Geometry) {
	if geom == nil || geom.Disposed() || len(geom.Positions) == 0 {
		return
	}
	b, ok := r.buffers[geom]
	if !ok {
		b = upload(geom)
		r.buffers[geom] = b
		geom.OnDispose(func(g *scene.Geometry) {
			if cached, ok := r.buffers[g]; ok && !r.disposed {
				cached.release()
				delete(r.buffers, g)
			}
		})
	}

	gl.BindVertexArray(b.vao)
	if b.indices != 0 {
		gl.DrawElements(gl.TRIANGLES, b.count, gl.UNSIGNED_INT, nil)
	} else {
		gl.DrawArrays(gl.TRIANGLES, 0, b.count)
	}
}

func upload(geom *scene.Geometry) *meshBuffers {
	b := &meshBuffers{}
	gl.GenVertexArrays(1, &b.vao)
	gl.BindVertexArray(b.vao)

	gl.GenBuffers(1, &b.positions)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.positions)
	gl.BufferData(gl.ARRAY_BUFFER, len(geom.Positions)*3*4, gl.Ptr(geom.Positions), gl.STATIC_DRAW)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, 0, 0)
	gl.EnableVertexAttribArray(0)

	normals := geom.Normals
	if len(normals) != len(geom.Positions) {
		geom.ComputeFlatNormals()
		normals = geom.Normals
	}
	gl.GenBuffers(1, &b.normals)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.normals)
	gl.BufferData(gl.ARRAY_BUFFER, len(normals)*3*4, gl.Ptr(normals), gl.STATIC_DRAW)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, 0, 0)
	gl.EnableVertexAttribArray(1)

	if len(geom.Indices) > 0 {
		gl.GenBuffers(1, &b.indices)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, b.indices)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(geom.Indices)*4, gl.Ptr(geom.Indices), gl.STATIC_DRAW)
		b.count = int32(len(geom.Indices))
	} else {
		b.count = int32(len(geom.Positions))
	}

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return b
}

func (b *meshBuffers) release() {
	for _, id := range []*uint32{&b.positions, &b.normals, &b.indices} {
		if *id != 0 {
			gl.DeleteBuffers(1, id)
			*id = 0
		}
	}
	if b.vao != 0 {
		gl.DeleteVertexArrays(1, &b.vao)
		b.vao = 0
	}
}
