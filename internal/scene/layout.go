// Package scene describes and draws the auction hall.
package scene

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/auction-house/internal/scene/shaders"
)

// ErrLayout is returned when the scene tables reference something that
// does not exist.
var ErrLayout = errors.New("invalid scene layout")

// Program names.
const (
	ProgramFloor   = "floor"
	ProgramTexture = "texture"
	ProgramStatue  = "statue"
	ProgramSkybox  = "skybox"
)

// ProgramSpec pairs shader stages into a named program.
type ProgramSpec struct {
	Name     string
	Vertex   string
	Fragment string
	Blocks   []string // uniform blocks the program declares
	Lit      bool     // receives the light rig uniforms
}

// Programs lists every shader program of the scene.
var Programs = []ProgramSpec{
	{Name: ProgramFloor, Vertex: shaders.DefaultVertex, Fragment: shaders.ParquetFragment, Blocks: []string{"Camera", "Model"}, Lit: true},
	{Name: ProgramTexture, Vertex: shaders.DefaultVertex, Fragment: shaders.TextureFragment, Blocks: []string{"Camera", "Model"}, Lit: true},
	{Name: ProgramSkybox, Vertex: shaders.SkyboxVertex, Fragment: shaders.SkyboxFragment, Blocks: []string{"Camera"}},
	{Name: ProgramStatue, Vertex: shaders.DefaultVertex, Fragment: shaders.StatueFragment, Blocks: []string{"Camera", "Model"}},
}

// TextureSpec names a 2D texture file relative to the asset root.
type TextureSpec struct {
	Name string
	Path string
}

// SkyboxTexture is the cube map name, shared by the skybox and the
// reflective statue.
const SkyboxTexture = "skybox"

// Textures lists the 2D textures of the scene.
var Textures = []TextureSpec{
	{Name: "walls", Path: "images/walls.png"},
	{Name: "stand", Path: "images/stand.png"},
	{Name: "light_wood", Path: "images/chair.png"},
	{Name: "dark_wood", Path: "images/podium.png"},
	{Name: "balcony", Path: "images/balcony.png"},
	{Name: "gold", Path: "images/gold.png"},
}

// SkyboxFaces are the cube map faces in +X, -X, +Y, -Y, +Z, -Z order.
var SkyboxFaces = [6]string{
	"images/skybox/px.png",
	"images/skybox/nx.png",
	"images/skybox/py.png",
	"images/skybox/ny.png",
	"images/skybox/pz.png",
	"images/skybox/nz.png",
}

// ModelSpec describes one mesh of the hall and how it is drawn.
type ModelSpec struct {
	Name      string
	OBJ       string // path relative to the asset root
	Program   string
	Texture   string // empty for procedural materials
	Shininess float32
	// Instances are model matrices, one draw each. Nil draws once at the
	// origin.
	Instances []mgl32.Mat4
	// Animated models take their transform from the scene each frame.
	Animated bool
}

// Model names.
const (
	ModelWalls   = "walls"
	ModelChair   = "chair"
	ModelWindows = "windows"
	ModelBalcony = "balcony"
	ModelPodium  = "podium"
	ModelStatue  = "statue"
	ModelStand   = "stand"
	ModelFloor   = "floor"
	ModelTrain   = "train"
	ModelPillar  = "pillar"
)

const defaultShininess = 1.0

// Models returns the hall's model table.
func Models() []ModelSpec {
	return []ModelSpec{
		{Name: ModelWalls, OBJ: "obj/walls.obj", Program: ProgramTexture, Texture: "walls", Shininess: 0},
		{Name: ModelChair, OBJ: "obj/chair.obj", Program: ProgramTexture, Texture: "light_wood", Shininess: 0.5, Instances: ChairGrid()},
		{Name: ModelWindows, OBJ: "obj/windows.obj", Program: ProgramTexture, Texture: "walls", Shininess: defaultShininess},
		{Name: ModelBalcony, OBJ: "obj/balcony.obj", Program: ProgramTexture, Texture: "balcony", Shininess: defaultShininess},
		{Name: ModelPodium, OBJ: "obj/podium.obj", Program: ProgramTexture, Texture: "dark_wood", Shininess: defaultShininess},
		{Name: ModelStatue, OBJ: "obj/statue.obj", Program: ProgramStatue, Texture: SkyboxTexture, Shininess: defaultShininess},
		{Name: ModelStand, OBJ: "obj/stand.obj", Program: ProgramTexture, Texture: "stand", Shininess: defaultShininess},
		{Name: ModelFloor, OBJ: "obj/floor.obj", Program: ProgramFloor, Shininess: defaultShininess},
		{Name: ModelTrain, OBJ: "obj/train.obj", Program: ProgramTexture, Texture: "gold", Shininess: defaultShininess, Animated: true},
		{Name: ModelPillar, OBJ: "obj/pillar.obj", Program: ProgramTexture, Texture: "balcony", Shininess: defaultShininess},
	}
}

// ChairGrid returns the two rows of four chairs facing the podium.
func ChairGrid() []mgl32.Mat4 {
	grid := make([]mgl32.Mat4, 0, 8)
	for i := 0; i < 2; i++ {
		for j := 0; j < 4; j++ {
			grid = append(grid, mgl32.Translate3D(float32(i)*2, 0, -float32(j)*1.5))
		}
	}
	return grid
}

// Pass groups draw steps by the GL state they need.
type Pass int

const (
	PassOpaque  Pass = iota
	PassSkybox       // depth test LEQUAL, no culling
	PassBlended      // drawn over the skybox so alpha shows the sky
)

func (p Pass) String() string {
	switch p {
	case PassOpaque:
		return "opaque"
	case PassSkybox:
		return "skybox"
	case PassBlended:
		return "blended"
	default:
		return fmt.Sprintf("Pass(%d)", int(p))
	}
}

// DrawStep draws one model (or the skybox) in a pass.
type DrawStep struct {
	Model string
	Pass  Pass
}

// DrawOrder is the per-frame draw sequence. Walls are drawn in both the
// opaque and the blended pass.
var DrawOrder = []DrawStep{
	{ModelFloor, PassOpaque},
	{ModelChair, PassOpaque},
	{ModelPodium, PassOpaque},
	{ModelStand, PassOpaque},
	{ModelTrain, PassOpaque},
	{ModelBalcony, PassOpaque},
	{ModelPillar, PassOpaque},
	{ModelWalls, PassOpaque},
	{ModelStatue, PassOpaque},
	{"", PassSkybox},
	{ModelWalls, PassBlended},
	{ModelWindows, PassBlended},
}

// ValidateLayout checks that the tables agree with each other.
func ValidateLayout(models []ModelSpec, order []DrawStep) error {
	programs := make(map[string]bool, len(Programs))
	for _, p := range Programs {
		programs[p.Name] = true
	}
	textures := map[string]bool{SkyboxTexture: true}
	for _, t := range Textures {
		textures[t.Name] = true
	}

	byName := make(map[string]bool, len(models))
	for _, m := range models {
		if byName[m.Name] {
			return fmt.Errorf("%w: duplicate model %q", ErrLayout, m.Name)
		}
		byName[m.Name] = true
		if !programs[m.Program] {
			return fmt.Errorf("%w: model %q uses unknown program %q", ErrLayout, m.Name, m.Program)
		}
		if m.Texture != "" && !textures[m.Texture] {
			return fmt.Errorf("%w: model %q uses unknown texture %q", ErrLayout, m.Name, m.Texture)
		}
	}

	lastPass := PassOpaque
	for i, step := range order {
		if step.Pass < lastPass {
			return fmt.Errorf("%w: step %d (%s) after %s pass", ErrLayout, i, step.Pass, lastPass)
		}
		lastPass = step.Pass
		if step.Pass == PassSkybox {
			continue
		}
		if !byName[step.Model] {
			return fmt.Errorf("%w: step %d draws unknown model %q", ErrLayout, i, step.Model)
		}
	}
	return nil
}

// TrainPosition is where the rotating train sits on its stand.
var TrainPosition = mgl32.Vec3{3.49634, 1.92977, -1.15591}

// referenceFrameRate converts per-frame speeds into per-second ones.
const referenceFrameRate = 60

// Train spins in place about the vertical axis.
type Train struct {
	Position mgl32.Vec3
	Angle    float32 // radians, kept in [0, 2π)
	Speed    float32 // radians per frame at 60 FPS
}

// Update advances the rotation by dt seconds.
func (t *Train) Update(dt float32) {
	angle := math32.Mod(t.Angle+t.Speed*dt*referenceFrameRate, 2*math32.Pi)
	if angle < 0 {
		angle += 2 * math32.Pi
	}
	t.Angle = angle
}

// Transform returns the train's model matrix.
func (t *Train) Transform() mgl32.Mat4 {
	return mgl32.Translate3D(t.Position[0], t.Position[1], t.Position[2]).Mul4(mgl32.HomogRotate3DY(t.Angle))
}

// Skybox cube corners and triangles.
var (
	skyboxPositions = []float32{
		-1, -1, 1,
		1, -1, 1,
		1, -1, -1,
		-1, -1, -1,
		-1, 1, 1,
		1, 1, 1,
		1, 1, -1,
		-1, 1, -1,
	}
	skyboxIndices = []uint32{
		6, 2, 1, 1, 5, 6, // right
		7, 4, 0, 0, 3, 7, // left
		6, 5, 4, 4, 7, 6, // top
		2, 3, 0, 0, 1, 2, // bottom
		5, 1, 0, 0, 4, 5, // back
		6, 7, 3, 3, 2, 6, // front
	}
)
