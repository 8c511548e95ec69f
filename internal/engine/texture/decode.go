// Package texture decodes images and uploads them as GL textures.
package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"

	// Extra formats accepted for scene textures.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var (
	// ErrDecode is returned when image data is not in a supported format.
	ErrDecode = errors.New("cannot decode image")
	// ErrCubemapFace is returned when cube map faces are not equal squares.
	ErrCubemapFace = errors.New("invalid cubemap face")
)

// Decode decodes PNG, JPEG, GIF, BMP, TIFF or WebP data into tightly
// packed RGBA pixels with the origin at the top-left.
func Decode(data []byte) (*image.RGBA, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return toRGBA(img), nil
}

// DecodeFile reads and decodes an image file.
func DecodeFile(path string) (*image.RGBA, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	img, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) && rgba.Stride == 4*rgba.Rect.Dx() {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}

// FlipVertical mirrors img top to bottom in place. GL samples row 0 as
// the bottom of the texture.
func FlipVertical(img *image.RGBA) {
	h := img.Rect.Dy()
	rowLen := img.Rect.Dx() * 4
	tmp := make([]byte, rowLen)
	for y := 0; y < h/2; y++ {
		top := img.Pix[y*img.Stride : y*img.Stride+rowLen]
		bottomStart := (h - 1 - y) * img.Stride
		bottom := img.Pix[bottomStart : bottomStart+rowLen]
		copy(tmp, top)
		copy(top, bottom)
		copy(bottom, tmp)
	}
}

// DecodeCubemapFaces decodes six face images in +X, -X, +Y, -Y, +Z, -Z
// order. Faces are not flipped. All faces must be squares of one size.
func DecodeCubemapFaces(paths [6]string) ([6]*image.RGBA, error) {
	var faces [6]*image.RGBA

	var g errgroup.Group
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			img, err := DecodeFile(path)
			if err != nil {
				return err
			}
			faces[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return faces, err
	}

	size := faces[0].Rect.Size()
	for i, face := range faces {
		s := face.Rect.Size()
		if s.X != s.Y {
			return faces, fmt.Errorf("%w: %s is %dx%d, not square", ErrCubemapFace, paths[i], s.X, s.Y)
		}
		if s != size {
			return faces, fmt.Errorf("%w: %s is %dx%d, expected %dx%d", ErrCubemapFace, paths[i], s.X, s.Y, size.X, size.Y)
		}
	}
	return faces, nil
}
