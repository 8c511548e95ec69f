package renderer

import (
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// UniformBuffer is a std140 uniform block backing store attached to a
// fixed binding point.
type UniformBuffer struct {
	id      uint32
	size    int
	binding uint32
}

// NewUniformBuffer allocates size bytes and attaches them to binding.
func NewUniformBuffer(size int, binding uint32) *UniformBuffer {
	u := &UniformBuffer{size: size, binding: binding}

	gl.GenBuffers(1, &u.id)
	gl.BindBuffer(gl.UNIFORM_BUFFER, u.id)
	gl.BufferData(gl.UNIFORM_BUFFER, size, nil, gl.DYNAMIC_DRAW)
	gl.BindBuffer(gl.UNIFORM_BUFFER, 0)

	gl.BindBufferBase(gl.UNIFORM_BUFFER, binding, u.id)
	return u
}

// Binding returns the uniform block binding point.
func (u *UniformBuffer) Binding() uint32 {
	return u.binding
}

// Update overwrites the whole buffer with size bytes read from data.
func (u *UniformBuffer) Update(data unsafe.Pointer) {
	gl.BindBuffer(gl.UNIFORM_BUFFER, u.id)
	gl.BufferSubData(gl.UNIFORM_BUFFER, 0, u.size, data)
	gl.BindBuffer(gl.UNIFORM_BUFFER, 0)
}

// Delete releases the buffer. Safe to call more than once.
func (u *UniformBuffer) Delete() {
	if u.id != 0 {
		gl.DeleteBuffers(1, &u.id)
		u.id = 0
	}
}
