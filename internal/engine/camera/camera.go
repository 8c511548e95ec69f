// Package camera provides the free-flying scene camera.
package camera

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

var worldUp = mgl32.Vec3{0, 1, 0}

// FreeCamera flies through the scene on the XZ plane and turns while the
// left mouse button is held.
type FreeCamera struct {
	Eye     mgl32.Vec3
	ViewDir mgl32.Vec3
	Up      mgl32.Vec3

	// Projection
	FOV  float32 // vertical field of view, radians
	Near float32
	Far  float32

	// Sensitivity
	MovementSpeed float32 // units per Move step
	RotationSpeed float32 // radians per pixel of drag

	dragging     bool
	lastX, lastY float32
}

// NewFreeCamera creates a camera at eye looking down -Z.
func NewFreeCamera(eye mgl32.Vec3) *FreeCamera {
	return &FreeCamera{
		Eye:           eye,
		ViewDir:       mgl32.Vec3{0, 0, -1},
		Up:            worldUp,
		FOV:           mgl32.DegToRad(45),
		Near:          1,
		Far:           1000,
		MovementSpeed: 0.1,
		RotationSpeed: 0.02,
	}
}

// side is the camera's left vector.
func (c *FreeCamera) side() mgl32.Vec3 {
	s := c.Up.Cross(c.ViewDir)
	if s.Len() < 1e-6 {
		return mgl32.Vec3{}
	}
	return s.Normalize()
}

// forward is the view direction flattened onto the XZ plane.
func (c *FreeCamera) forward() mgl32.Vec3 {
	l := math32.Hypot(c.ViewDir[0], c.ViewDir[2])
	if l < 1e-6 {
		return mgl32.Vec3{}
	}
	return mgl32.Vec3{c.ViewDir[0] / l, 0, c.ViewDir[2] / l}
}

// Move steps the camera. forward > 0 moves ahead (W), right > 0 strafes
// right (D). Height never changes.
func (c *FreeCamera) Move(forward, right float32) {
	step := c.forward().Mul(forward * c.MovementSpeed)
	step = step.Sub(c.side().Mul(right * c.MovementSpeed))
	c.Eye = c.Eye.Add(step)
}

// Rotate turns the camera by yaw radians about the world Y axis and pitch
// radians about its side axis. View and up vectors rotate together.
func (c *FreeCamera) Rotate(yaw, pitch float32) {
	horizontal := mgl32.Ident4()
	if side := c.side(); side.Len() > 0 {
		horizontal = mgl32.HomogRotate3D(pitch, side)
	}
	vertical := mgl32.HomogRotate3D(yaw, worldUp)

	rot := vertical.Mul4(horizontal).Mat3()
	c.ViewDir = rot.Mul3x1(c.ViewDir)
	c.Up = rot.Mul3x1(c.Up)
}

// BeginDrag starts mouse rotation at the given cursor position.
func (c *FreeCamera) BeginDrag(x, y float32) {
	c.dragging = true
	c.lastX, c.lastY = x, y
}

// EndDrag stops mouse rotation.
func (c *FreeCamera) EndDrag() {
	c.dragging = false
}

// Dragging reports whether mouse rotation is active.
func (c *FreeCamera) Dragging() bool {
	return c.dragging
}

// Drag rotates by the cursor movement since the last call. Moving the
// cursor left turns left, moving it down looks down. Ignored unless a drag
// is active.
func (c *FreeCamera) Drag(x, y float32) {
	if !c.dragging {
		return
	}
	dx := c.lastX - x
	dy := y - c.lastY
	c.lastX, c.lastY = x, y

	c.Rotate(dx*c.RotationSpeed, dy*c.RotationSpeed)
}

// ViewMatrix returns the view matrix for this camera.
func (c *FreeCamera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Eye, c.Eye.Add(c.ViewDir), c.Up)
}

// Projection returns the perspective matrix for the given aspect ratio.
func (c *FreeCamera) Projection(aspect float32) mgl32.Mat4 {
	return mgl32.Perspective(c.FOV, aspect, c.Near, c.Far)
}
