package renderer

import (
	"errors"
	"fmt"
	"sort"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/auction-house/internal/engine/texture"
)

var (
	// ErrDuplicateResource is returned when a name is registered twice.
	ErrDuplicateResource = errors.New("resource already registered")
	// ErrUnknownResource is returned when looking up an unregistered name.
	ErrUnknownResource = errors.New("unknown resource")
)

// Registry owns every GPU object of the scene by name and releases them
// together.
type Registry struct {
	programs map[string]uint32
	textures map[string]*texture.Texture
	meshes   map[string]*MeshBuffer
	buffers  []*UniformBuffer
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		programs: make(map[string]uint32),
		textures: make(map[string]*texture.Texture),
		meshes:   make(map[string]*MeshBuffer),
	}
}

// AddProgram registers a linked shader program.
func (r *Registry) AddProgram(name string, program uint32) error {
	if _, ok := r.programs[name]; ok {
		return fmt.Errorf("%w: program %q", ErrDuplicateResource, name)
	}
	r.programs[name] = program
	return nil
}

// AddTexture registers a texture.
func (r *Registry) AddTexture(name string, tex *texture.Texture) error {
	if _, ok := r.textures[name]; ok {
		return fmt.Errorf("%w: texture %q", ErrDuplicateResource, name)
	}
	r.textures[name] = tex
	return nil
}

// AddMesh registers an uploaded mesh.
func (r *Registry) AddMesh(name string, mesh *MeshBuffer) error {
	if _, ok := r.meshes[name]; ok {
		return fmt.Errorf("%w: mesh %q", ErrDuplicateResource, name)
	}
	r.meshes[name] = mesh
	return nil
}

// AddUniformBuffer registers a uniform buffer for release on Close.
func (r *Registry) AddUniformBuffer(buf *UniformBuffer) {
	r.buffers = append(r.buffers, buf)
}

// ReplaceMesh swaps the mesh registered under name and deletes the old one.
func (r *Registry) ReplaceMesh(name string, mesh *MeshBuffer) error {
	old, ok := r.meshes[name]
	if !ok {
		return fmt.Errorf("%w: mesh %q", ErrUnknownResource, name)
	}
	r.meshes[name] = mesh
	if old != mesh {
		old.Delete()
	}
	return nil
}

// Program returns the program registered under name.
func (r *Registry) Program(name string) (uint32, error) {
	p, ok := r.programs[name]
	if !ok {
		return 0, fmt.Errorf("%w: program %q", ErrUnknownResource, name)
	}
	return p, nil
}

// Texture returns the texture registered under name.
func (r *Registry) Texture(name string) (*texture.Texture, error) {
	t, ok := r.textures[name]
	if !ok {
		return nil, fmt.Errorf("%w: texture %q", ErrUnknownResource, name)
	}
	return t, nil
}

// Mesh returns the mesh registered under name.
func (r *Registry) Mesh(name string) (*MeshBuffer, error) {
	m, ok := r.meshes[name]
	if !ok {
		return nil, fmt.Errorf("%w: mesh %q", ErrUnknownResource, name)
	}
	return m, nil
}

// MeshNames returns the registered mesh names in sorted order.
func (r *Registry) MeshNames() []string {
	names := make([]string, 0, len(r.meshes))
	for name := range r.meshes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close releases every registered GL object and empties the registry.
func (r *Registry) Close() {
	for name, mesh := range r.meshes {
		mesh.Delete()
		delete(r.meshes, name)
	}
	for name, tex := range r.textures {
		tex.Delete()
		delete(r.textures, name)
	}
	for name, program := range r.programs {
		if program != 0 {
			gl.DeleteProgram(program)
		}
		delete(r.programs, name)
	}
	for _, buf := range r.buffers {
		buf.Delete()
	}
	r.buffers = nil
}
