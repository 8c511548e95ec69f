package scene

import "github.com/go-gl/mathgl/mgl32"

// Uniform buffer binding points.
const (
	CameraBinding = 1
	ModelBinding  = 2
)

// CameraBlock mirrors the std140 Camera uniform block.
type CameraBlock struct {
	Projection  mgl32.Mat4
	View        mgl32.Mat4
	EyePosition mgl32.Vec3
	_           float32
}

// ModelBlock mirrors the std140 Model uniform block.
type ModelBlock struct {
	Transform mgl32.Mat4
	Shininess float32
	_         [3]float32
}
