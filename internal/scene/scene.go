package scene

import (
	"context"
	"errors"
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/auction-house/internal/assets"
	"github.com/Faultbox/auction-house/internal/engine/camera"
	"github.com/Faultbox/auction-house/internal/engine/lighting"
	"github.com/Faultbox/auction-house/internal/engine/renderer"
	"github.com/Faultbox/auction-house/internal/engine/shader"
	"github.com/Faultbox/auction-house/internal/engine/texture"
	"github.com/Faultbox/auction-house/internal/logger"
	"github.com/Faultbox/auction-house/internal/scene/shaders"
)

// ErrNotSceneMesh is returned when reloading a file no model uses.
var ErrNotSceneMesh = errors.New("file is not a scene mesh")

const skyboxMesh = "skybox"

// Config holds scene settings.
type Config struct {
	TrainRotationSpeed float32 // radians per frame at 60 FPS
}

// Scene owns the hall's models and draws them each frame.
type Scene struct {
	assets *assets.Manager
	reg    *renderer.Registry
	log    *zap.Logger

	models map[string]ModelSpec
	byOBJ  map[string]string // asset name -> model name

	rig   lighting.Rig
	train Train

	cameraUBO *renderer.UniformBuffer
	modelUBO  *renderer.UniformBuffer
	cameraBuf CameraBlock
	modelBuf  ModelBlock
}

// New loads every program, texture and mesh of the hall into reg.
// Any missing or malformed asset fails the whole scene.
func New(ctx context.Context, am *assets.Manager, reg *renderer.Registry, cfg Config) (*Scene, error) {
	models := Models()
	if err := ValidateLayout(models, DrawOrder); err != nil {
		return nil, err
	}

	s := &Scene{
		assets: am,
		reg:    reg,
		log:    logger.Named("scene"),
		models: make(map[string]ModelSpec, len(models)),
		byOBJ:  make(map[string]string, len(models)),
		rig:    lighting.DefaultRig(),
		train: Train{
			Position: TrainPosition,
			Speed:    cfg.TrainRotationSpeed,
		},
	}
	for _, m := range models {
		s.models[m.Name] = m
		s.byOBJ[m.OBJ] = m.Name
	}

	if err := s.loadPrograms(); err != nil {
		return nil, err
	}
	if err := s.loadTextures(); err != nil {
		return nil, err
	}
	if err := s.loadMeshes(ctx, models); err != nil {
		return nil, err
	}

	s.cameraUBO = renderer.NewUniformBuffer(int(unsafe.Sizeof(CameraBlock{})), CameraBinding)
	s.modelUBO = renderer.NewUniformBuffer(int(unsafe.Sizeof(ModelBlock{})), ModelBinding)
	reg.AddUniformBuffer(s.cameraUBO)
	reg.AddUniformBuffer(s.modelUBO)

	s.log.Info("scene ready",
		zap.Int("models", len(models)),
		zap.Int("textures", len(Textures)+1),
		zap.Int("programs", len(Programs)),
	)
	return s, nil
}

func (s *Scene) loadPrograms() error {
	bindings := map[string]uint32{"Camera": CameraBinding, "Model": ModelBinding}

	for _, spec := range Programs {
		program, err := shader.LoadProgram(shaders.FS, spec.Vertex, spec.Fragment)
		if err != nil {
			return fmt.Errorf("program %s: %w", spec.Name, err)
		}
		if err := s.reg.AddProgram(spec.Name, program); err != nil {
			gl.DeleteProgram(program)
			return err
		}

		for _, block := range spec.Blocks {
			if err := shader.BindUniformBlock(program, block, bindings[block]); err != nil {
				return fmt.Errorf("program %s: %w", spec.Name, err)
			}
		}
		if spec.Lit {
			s.rig.Apply(program, lighting.LookupLocations(program))
		}

		// Every program samples texture unit 0.
		gl.ProgramUniform1i(program, shader.GetUniform(program, "uTexture"), 0)
		gl.ProgramUniform1i(program, shader.GetUniform(program, "uSkybox"), 0)

		s.log.Debug("program linked", zap.String("name", spec.Name), zap.Uint32("id", program))
	}
	return nil
}

func (s *Scene) loadTextures() error {
	for _, spec := range Textures {
		tex, err := texture.Load2D(s.assets.Path(spec.Path))
		if err != nil {
			return err
		}
		if err := s.reg.AddTexture(spec.Name, tex); err != nil {
			tex.Delete()
			return err
		}
	}

	var faces [6]string
	for i, f := range SkyboxFaces {
		faces[i] = s.assets.Path(f)
	}
	cube, err := texture.LoadCubemap(faces)
	if err != nil {
		return err
	}
	if err := s.reg.AddTexture(SkyboxTexture, cube); err != nil {
		cube.Delete()
		return err
	}
	return nil
}

func (s *Scene) loadMeshes(ctx context.Context, models []ModelSpec) error {
	names := make([]string, len(models))
	for i, m := range models {
		names[i] = m.OBJ
	}

	// Parsing is CPU only and runs in parallel; uploads stay on the GL thread.
	meshes, err := s.assets.LoadMeshes(ctx, names)
	if err != nil {
		return err
	}

	for _, m := range models {
		buf, err := renderer.UploadMesh(meshes[m.OBJ])
		if err != nil {
			return fmt.Errorf("uploading %s: %w", m.OBJ, err)
		}
		if err := s.reg.AddMesh(m.Name, buf); err != nil {
			buf.Delete()
			return err
		}
	}

	sky, err := renderer.UploadIndexed(skyboxPositions, skyboxIndices)
	if err != nil {
		return fmt.Errorf("uploading skybox: %w", err)
	}
	return s.reg.AddMesh(skyboxMesh, sky)
}

// Update advances animation by dt seconds.
func (s *Scene) Update(dt float32) {
	s.train.Update(dt)
}

// Draw renders one frame from the camera's point of view.
func (s *Scene) Draw(r *renderer.Renderer, cam *camera.FreeCamera) error {
	s.cameraBuf = CameraBlock{
		Projection:  cam.Projection(r.Aspect()),
		View:        cam.ViewMatrix(),
		EyePosition: cam.Eye,
	}
	s.cameraUBO.Update(unsafe.Pointer(&s.cameraBuf))

	for _, step := range DrawOrder {
		if step.Pass == PassSkybox {
			if err := s.drawSkybox(r); err != nil {
				return err
			}
			continue
		}
		if err := s.drawModel(s.models[step.Model]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scene) drawModel(spec ModelSpec) error {
	program, err := s.reg.Program(spec.Program)
	if err != nil {
		return err
	}
	mesh, err := s.reg.Mesh(spec.Name)
	if err != nil {
		return err
	}

	gl.UseProgram(program)
	if spec.Texture != "" {
		tex, err := s.reg.Texture(spec.Texture)
		if err != nil {
			return err
		}
		tex.Bind(0)
	}

	s.modelBuf.Shininess = spec.Shininess
	switch {
	case spec.Animated:
		s.drawInstance(mesh, s.train.Transform())
	case spec.Instances == nil:
		s.drawInstance(mesh, mgl32.Ident4())
	default:
		for _, m := range spec.Instances {
			s.drawInstance(mesh, m)
		}
	}
	return nil
}

func (s *Scene) drawInstance(mesh *renderer.MeshBuffer, transform mgl32.Mat4) {
	s.modelBuf.Transform = transform
	s.modelUBO.Update(unsafe.Pointer(&s.modelBuf))
	mesh.Draw()
}

func (s *Scene) drawSkybox(r *renderer.Renderer) error {
	program, err := s.reg.Program(ProgramSkybox)
	if err != nil {
		return err
	}
	mesh, err := s.reg.Mesh(skyboxMesh)
	if err != nil {
		return err
	}
	cube, err := s.reg.Texture(SkyboxTexture)
	if err != nil {
		return err
	}

	// Sky pixels sit at depth 1 and only fill what nothing else covered.
	r.DepthLessEqual(true)
	r.CullFaces(false)
	gl.UseProgram(program)
	cube.Bind(0)
	mesh.Draw()
	r.CullFaces(true)
	r.DepthLessEqual(false)
	return nil
}

// ReloadMesh re-reads the OBJ file at path and swaps the uploaded mesh.
// On error the previous mesh stays in place.
func (s *Scene) ReloadMesh(path string) error {
	name, err := s.assets.Rel(path)
	if err != nil {
		return err
	}
	model, ok := s.byOBJ[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotSceneMesh, name)
	}

	mesh, err := s.assets.ReloadMesh(name)
	if err != nil {
		return err
	}
	buf, err := renderer.UploadMesh(mesh)
	if err != nil {
		return fmt.Errorf("uploading %s: %w", name, err)
	}
	if err := s.reg.ReplaceMesh(model, buf); err != nil {
		buf.Delete()
		return err
	}

	s.log.Info("mesh reloaded",
		zap.String("model", model),
		zap.Int("vertices", mesh.VertexCount()),
	)
	return nil
}
