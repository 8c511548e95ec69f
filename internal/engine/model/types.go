// Package model assembles parsed OBJ meshes into flat vertex buffers.
package model

import "github.com/go-gl/mathgl/mgl32"

// Vertex is one GPU vertex record. The field order and packing are the
// buffer layout bound by the shaders: position, normal, then texcoord.
type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	TexCoord mgl32.Vec2
}

// Vertex buffer layout in bytes.
const (
	VertexStride   = 8 * 4
	PositionOffset = 0
	NormalOffset   = 3 * 4
	TexCoordOffset = 6 * 4
)

// Mesh holds a resolved, non-indexed vertex sequence ready for GPU upload.
// Every face reference of the source becomes its own vertex, in file order.
type Mesh struct {
	Vertices []Vertex
	Bounds   Bounds
}

// VertexCount returns the number of vertices to draw.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// Bounds holds the axis-aligned bounding box of a mesh.
type Bounds struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// Center returns the midpoint of the box.
func (b Bounds) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Size returns the box extent on each axis.
func (b Bounds) Size() mgl32.Vec3 {
	return b.Max.Sub(b.Min)
}

func emptyBounds() Bounds {
	return Bounds{
		Min: mgl32.Vec3{1e10, 1e10, 1e10},
		Max: mgl32.Vec3{-1e10, -1e10, -1e10},
	}
}

func (b *Bounds) extend(p mgl32.Vec3) {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] {
			b.Min[i] = p[i]
		}
		if p[i] > b.Max[i] {
			b.Max[i] = p[i]
		}
	}
}
