// Package lighting provides the scene's point light and spotlight.
package lighting

import (
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/auction-house/internal/engine/shader"
)

// PointLight is an omnidirectional light with distance falloff.
type PointLight struct {
	Position mgl32.Vec3
	Color    mgl32.Vec3
}

// Locations holds uniform locations for the lights of one program.
// Missing uniforms are -1, which GL silently ignores.
type Locations struct {
	PointPosition   int32
	PointColor      int32
	SpotPosition    int32
	SpotDirection   int32
	SpotColor       int32
	SpotCutOff      int32
	SpotOuterCutOff int32
}

// LookupLocations queries the light uniforms of program.
func LookupLocations(program uint32) Locations {
	return Locations{
		PointPosition:   shader.GetUniform(program, "uPointLightPos"),
		PointColor:      shader.GetUniform(program, "uPointLightColor"),
		SpotPosition:    shader.GetUniform(program, "uSpotLightPos"),
		SpotDirection:   shader.GetUniform(program, "uSpotLightDir"),
		SpotColor:       shader.GetUniform(program, "uSpotLightColor"),
		SpotCutOff:      shader.GetUniform(program, "uSpotCutOff"),
		SpotOuterCutOff: shader.GetUniform(program, "uSpotOuterCutOff"),
	}
}

// Rig is the set of lights shared by the lit programs.
type Rig struct {
	Point PointLight
	Spot  SpotLight
}

// Apply uploads the rig to program. Lights are static, so this runs once
// per program after linking.
func (r Rig) Apply(program uint32, loc Locations) {
	gl.ProgramUniform3f(program, loc.PointPosition, r.Point.Position[0], r.Point.Position[1], r.Point.Position[2])
	gl.ProgramUniform3f(program, loc.PointColor, r.Point.Color[0], r.Point.Color[1], r.Point.Color[2])

	gl.ProgramUniform3f(program, loc.SpotPosition, r.Spot.Position[0], r.Spot.Position[1], r.Spot.Position[2])
	gl.ProgramUniform3f(program, loc.SpotDirection, r.Spot.Direction[0], r.Spot.Direction[1], r.Spot.Direction[2])
	gl.ProgramUniform3f(program, loc.SpotColor, r.Spot.Color[0], r.Spot.Color[1], r.Spot.Color[2])
	gl.ProgramUniform1f(program, loc.SpotCutOff, r.Spot.CutOff)
	gl.ProgramUniform1f(program, loc.SpotOuterCutOff, r.Spot.OuterCutOff)
}

// DefaultRig returns the auction hall lighting: a warm ceiling light and a
// spotlight aimed straight down at the train on the stand.
func DefaultRig() Rig {
	return Rig{
		Point: PointLight{
			Position: mgl32.Vec3{0.2, 4.5, 0.7},
			Color:    mgl32.Vec3{1.0, 0.95, 0.85},
		},
		Spot: NewSpotLight(
			mgl32.Vec3{3.5, 6.0, -1.15},
			mgl32.Vec3{0, -1, 0},
			mgl32.Vec3{1, 1, 1},
			12.5, 17.5,
		),
	}
}
