package formats

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// OBJ format errors.
var (
	ErrOBJOpen            = errors.New("cannot open OBJ file")
	ErrMalformedOBJ       = errors.New("malformed OBJ data")
	ErrUnsupportedFace    = errors.New("unsupported OBJ face")
	ErrOBJIndexOutOfRange = errors.New("OBJ index out of range")
)

// objMaxLineSize bounds a single line so a corrupt file cannot grow the
// scanner buffer without limit.
const objMaxLineSize = 1 << 20

// OBJ holds the attribute pools and face index lists of a Wavefront OBJ mesh.
//
// Indices are stored 1-based, exactly as written in the file. A zero
// texture coordinate or normal index means the component was omitted
// (for example "3//1"). The three index slices always have equal length:
// one entry per face reference.
type OBJ struct {
	Positions []mgl32.Vec3
	TexCoords []mgl32.Vec2
	Normals   []mgl32.Vec3

	PositionIndices []int
	TexCoordIndices []int
	NormalIndices   []int
}

// OBJStats summarises a parsed OBJ for diagnostics.
type OBJStats struct {
	Positions  int
	TexCoords  int
	Normals    int
	References int
	Faces      int
}

// String returns a one-line summary.
func (s OBJStats) String() string {
	return fmt.Sprintf("v=%d vt=%d vn=%d refs=%d faces=%d",
		s.Positions, s.TexCoords, s.Normals, s.References, s.Faces)
}

// ReferenceCount returns the number of face references (resolved vertices).
func (o *OBJ) ReferenceCount() int {
	return len(o.PositionIndices)
}

// FaceCount returns the number of triangle faces.
func (o *OBJ) FaceCount() int {
	return len(o.PositionIndices) / 3
}

// Stats returns pool and face counts.
func (o *OBJ) Stats() OBJStats {
	return OBJStats{
		Positions:  len(o.Positions),
		TexCoords:  len(o.TexCoords),
		Normals:    len(o.Normals),
		References: o.ReferenceCount(),
		Faces:      o.FaceCount(),
	}
}

// ParseOBJ parses a Wavefront OBJ mesh description.
// Only v, vt, vn and f directives are interpreted; every other directive is
// ignored. Faces must be triangles.
func ParseOBJ(r io.Reader) (*OBJ, error) {
	obj := &OBJ{}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), objMaxLineSize)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if err := obj.parseLine(fields); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading OBJ data: %w", err)
	}

	return obj, nil
}

// ParseOBJFile parses an OBJ file from disk.
// A file that cannot be opened fails with ErrOBJOpen before anything is parsed.
func ParseOBJFile(path string) (*OBJ, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOBJOpen, err)
	}
	defer f.Close()

	obj, err := ParseOBJ(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return obj, nil
}

func (o *OBJ) parseLine(fields []string) error {
	switch fields[0] {
	case "v":
		var v [3]float32
		if err := parseFloats(v[:], fields[1:]); err != nil {
			return fmt.Errorf("position: %w", err)
		}
		o.Positions = append(o.Positions, mgl32.Vec3(v))

	case "vt":
		// An optional third (w) component is dropped.
		var vt [2]float32
		if err := parseFloats(vt[:], fields[1:]); err != nil {
			return fmt.Errorf("texcoord: %w", err)
		}
		o.TexCoords = append(o.TexCoords, mgl32.Vec2(vt))

	case "vn":
		var vn [3]float32
		if err := parseFloats(vn[:], fields[1:]); err != nil {
			return fmt.Errorf("normal: %w", err)
		}
		o.Normals = append(o.Normals, mgl32.Vec3(vn))

	case "f":
		return o.parseFace(fields[1:])
	}

	return nil
}

// parseFloats fills dst from the leading fields. Extra fields are ignored.
func parseFloats(dst []float32, fields []string) error {
	if len(fields) < len(dst) {
		return fmt.Errorf("%w: expected %d values, got %d", ErrMalformedOBJ, len(dst), len(fields))
	}
	for i := range dst {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return fmt.Errorf("%w: bad number %q", ErrMalformedOBJ, fields[i])
		}
		dst[i] = float32(f)
	}
	return nil
}

// faceRef is one vertex reference of a face, 1-based, 0 = absent.
type faceRef struct {
	position int
	texCoord int
	normal   int
}

func (o *OBJ) parseFace(refs []string) error {
	if len(refs) != 3 {
		return fmt.Errorf("%w: %d references, only triangles are supported", ErrUnsupportedFace, len(refs))
	}

	var parsed [3]faceRef
	for i, ref := range refs {
		fr, err := o.parseFaceRef(ref)
		if err != nil {
			return fmt.Errorf("face reference %q: %w", ref, err)
		}
		parsed[i] = fr
	}

	for _, fr := range parsed {
		o.PositionIndices = append(o.PositionIndices, fr.position)
		o.TexCoordIndices = append(o.TexCoordIndices, fr.texCoord)
		o.NormalIndices = append(o.NormalIndices, fr.normal)
	}
	return nil
}

// parseFaceRef splits a reference on '/' and assigns components by
// position: p, p/t, p//n or p/t/n.
func (o *OBJ) parseFaceRef(ref string) (faceRef, error) {
	parts := strings.Split(ref, "/")
	if len(parts) > 3 {
		return faceRef{}, fmt.Errorf("%w: %d components", ErrMalformedOBJ, len(parts))
	}
	if parts[0] == "" {
		return faceRef{}, fmt.Errorf("%w: missing position index", ErrMalformedOBJ)
	}

	var fr faceRef
	var err error
	if fr.position, err = rebaseIndex(parts[0], len(o.Positions)); err != nil {
		return faceRef{}, err
	}
	if len(parts) > 1 {
		if fr.texCoord, err = rebaseIndex(parts[1], len(o.TexCoords)); err != nil {
			return faceRef{}, err
		}
	}
	if len(parts) > 2 {
		if fr.normal, err = rebaseIndex(parts[2], len(o.Normals)); err != nil {
			return faceRef{}, err
		}
	}
	return fr, nil
}

// rebaseIndex parses one index component. An empty component is absent and
// yields 0. Negative indices count back from the current end of the pool and
// are rewritten as positive 1-based indices.
func rebaseIndex(s string, poolLen int) (int, error) {
	if s == "" {
		return 0, nil
	}

	idx, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: bad index %q", ErrMalformedOBJ, s)
	}

	switch {
	case idx == 0:
		return 0, fmt.Errorf("%w: index 0", ErrOBJIndexOutOfRange)
	case idx < 0:
		rebased := poolLen + idx + 1
		if rebased < 1 {
			return 0, fmt.Errorf("%w: relative index %d with %d elements", ErrOBJIndexOutOfRange, idx, poolLen)
		}
		return rebased, nil
	}
	return idx, nil
}
