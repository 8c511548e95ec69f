package texture

import (
	"fmt"
	"image"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/auction-house/internal/logger"
)

// Texture is a GL texture object.
type Texture struct {
	ID     uint32
	Target uint32 // gl.TEXTURE_2D or gl.TEXTURE_CUBE_MAP
	Width  int
	Height int
}

// Bind binds the texture to the given texture unit.
func (t *Texture) Bind(unit uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	gl.BindTexture(t.Target, t.ID)
}

// Delete releases the texture. Safe to call more than once.
func (t *Texture) Delete() {
	if t.ID != 0 {
		gl.DeleteTextures(1, &t.ID)
		t.ID = 0
	}
}

// Load2D decodes an image file, flips it for GL and uploads it with
// mipmaps.
func Load2D(path string) (*Texture, error) {
	img, err := DecodeFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading texture: %w", err)
	}
	FlipVertical(img)

	tex := Upload2D(img)
	logger.Debug("texture loaded",
		zap.String("path", path),
		zap.Int("width", tex.Width),
		zap.Int("height", tex.Height),
	)
	return tex, nil
}

// Upload2D uploads RGBA pixels as a mipmapped, repeating 2D texture.
func Upload2D(img *image.RGBA) *Texture {
	tex := &Texture{
		Target: gl.TEXTURE_2D,
		Width:  img.Rect.Dx(),
		Height: img.Rect.Dy(),
	}

	gl.GenTextures(1, &tex.ID)
	gl.BindTexture(gl.TEXTURE_2D, tex.ID)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(tex.Width), int32(tex.Height), 0, gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&img.Pix[0]))
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	return tex
}

// LoadCubemap loads six faces in +X, -X, +Y, -Y, +Z, -Z order into a cube
// map texture with clamp-to-edge wrapping.
func LoadCubemap(paths [6]string) (*Texture, error) {
	faces, err := DecodeCubemapFaces(paths)
	if err != nil {
		return nil, fmt.Errorf("loading cubemap: %w", err)
	}

	size := faces[0].Rect.Dx()
	tex := &Texture{
		Target: gl.TEXTURE_CUBE_MAP,
		Width:  size,
		Height: size,
	}

	gl.GenTextures(1, &tex.ID)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, tex.ID)
	for i, face := range faces {
		gl.TexImage2D(gl.TEXTURE_CUBE_MAP_POSITIVE_X+uint32(i), 0, gl.RGBA8, int32(size), int32(size), 0, gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&face.Pix[0]))
	}
	gl.GenerateMipmap(gl.TEXTURE_CUBE_MAP)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_R, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, 0)

	logger.Debug("cubemap loaded", zap.Int("size", size))
	return tex, nil
}
