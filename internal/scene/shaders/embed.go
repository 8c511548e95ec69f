// Package shaders provides embedded GLSL shader sources.
package shaders

import "embed"

// FS holds every shader stage of the scene, addressed by file name
// (default.vert, texture.frag, ...).
//
//go:embed *.vert *.frag
var FS embed.FS

// Shader file names.
const (
	DefaultVertex   = "default.vert"
	TextureFragment = "texture.frag"
	ParquetFragment = "parquet.frag"
	StatueFragment  = "statue.frag"
	SkyboxVertex    = "skybox.vert"
	SkyboxFragment  = "skybox.frag"
)
