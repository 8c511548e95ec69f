package renderer

import (
	"errors"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/auction-house/internal/engine/model"
)

// ErrEmptyMesh is returned when uploading geometry with no vertices.
var ErrEmptyMesh = errors.New("mesh has no vertices")

// MeshBuffer is geometry resident on the GPU.
type MeshBuffer struct {
	vao   uint32
	vbo   uint32
	ebo   uint32
	count int32
}

// UploadMesh copies an assembled mesh into a new VAO/VBO pair.
// Attribute 0 is the position, 1 the normal and 2 the texture coordinate.
func UploadMesh(m *model.Mesh) (*MeshBuffer, error) {
	if m == nil || len(m.Vertices) == 0 {
		return nil, ErrEmptyMesh
	}

	buf := &MeshBuffer{count: int32(len(m.Vertices))}

	gl.GenVertexArrays(1, &buf.vao)
	gl.BindVertexArray(buf.vao)

	gl.GenBuffers(1, &buf.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, buf.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(m.Vertices)*model.VertexStride, unsafe.Pointer(&m.Vertices[0]), gl.STATIC_DRAW)

	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, model.VertexStride, model.PositionOffset)
	gl.EnableVertexAttribArray(0)

	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, model.VertexStride, model.NormalOffset)
	gl.EnableVertexAttribArray(1)

	gl.VertexAttribPointerWithOffset(2, 2, gl.FLOAT, false, model.VertexStride, model.TexCoordOffset)
	gl.EnableVertexAttribArray(2)

	gl.BindVertexArray(0)
	return buf, nil
}

// UploadIndexed uploads position-only geometry drawn through an index
// buffer. Positions are tightly packed xyz triples on attribute 0.
func UploadIndexed(positions []float32, indices []uint32) (*MeshBuffer, error) {
	if len(positions) == 0 || len(indices) == 0 {
		return nil, ErrEmptyMesh
	}

	buf := &MeshBuffer{count: int32(len(indices))}

	gl.GenVertexArrays(1, &buf.vao)
	gl.BindVertexArray(buf.vao)

	gl.GenBuffers(1, &buf.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, buf.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(positions)*4, unsafe.Pointer(&positions[0]), gl.STATIC_DRAW)

	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, 3*4, 0)
	gl.EnableVertexAttribArray(0)

	gl.GenBuffers(1, &buf.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, buf.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, unsafe.Pointer(&indices[0]), gl.STATIC_DRAW)

	gl.BindVertexArray(0)
	return buf, nil
}

// Count returns the number of vertices (or indices) drawn.
func (b *MeshBuffer) Count() int {
	return int(b.count)
}

// Draw issues the draw call. The caller binds the program and textures.
func (b *MeshBuffer) Draw() {
	gl.BindVertexArray(b.vao)
	if b.ebo != 0 {
		gl.DrawElements(gl.TRIANGLES, b.count, gl.UNSIGNED_INT, nil)
		return
	}
	gl.DrawArrays(gl.TRIANGLES, 0, b.count)
}

// Delete releases the GPU objects. Safe to call more than once.
func (b *MeshBuffer) Delete() {
	if b.vao != 0 {
		gl.DeleteVertexArrays(1, &b.vao)
		b.vao = 0
	}
	if b.vbo != 0 {
		gl.DeleteBuffers(1, &b.vbo)
		b.vbo = 0
	}
	if b.ebo != 0 {
		gl.DeleteBuffers(1, &b.ebo)
		b.ebo = 0
	}
}
