package lighting

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// SpotLight is a cone light. CutOff and OuterCutOff hold cosines of the
// inner and outer cone half-angles; the edge fades between them.
type SpotLight struct {
	Position    mgl32.Vec3
	Direction   mgl32.Vec3
	Color       mgl32.Vec3
	CutOff      float32
	OuterCutOff float32
}

// NewSpotLight builds a spotlight from cone half-angles in degrees.
// The direction is normalized and the angles are ordered so the inner
// cone never exceeds the outer one.
func NewSpotLight(position, direction, color mgl32.Vec3, innerDeg, outerDeg float32) SpotLight {
	if innerDeg > outerDeg {
		innerDeg, outerDeg = outerDeg, innerDeg
	}
	if direction.Len() > 0 {
		direction = direction.Normalize()
	}
	return SpotLight{
		Position:    position,
		Direction:   direction,
		Color:       color,
		CutOff:      math32.Cos(mgl32.DegToRad(innerDeg)),
		OuterCutOff: math32.Cos(mgl32.DegToRad(outerDeg)),
	}
}

// Intensity returns the cone factor in [0, 1] for a point, matching the
// fragment shader's soft edge.
func (s SpotLight) Intensity(point mgl32.Vec3) float32 {
	toLight := s.Position.Sub(point)
	if toLight.Len() == 0 {
		return 1
	}
	theta := toLight.Normalize().Dot(s.Direction.Mul(-1))
	epsilon := math32.Max(s.CutOff-s.OuterCutOff, 1e-4)
	return mgl32.Clamp((theta-s.OuterCutOff)/epsilon, 0, 1)
}
