package model

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/auction-house/internal/logger"
	"github.com/Faultbox/auction-house/pkg/formats"
)

// BuildMesh resolves every face reference of obj against its attribute
// pools and returns the flat vertex sequence.
//
// A present index outside its pool fails with formats.ErrOBJIndexOutOfRange;
// no partial mesh is returned. An omitted texcoord or normal resolves to the
// zero vector.
func BuildMesh(obj *formats.OBJ) (*Mesh, error) {
	n := len(obj.PositionIndices)
	if len(obj.TexCoordIndices) != n || len(obj.NormalIndices) != n {
		return nil, fmt.Errorf("%w: index lists differ in length (%d/%d/%d)",
			formats.ErrMalformedOBJ, n, len(obj.TexCoordIndices), len(obj.NormalIndices))
	}

	mesh := &Mesh{
		Vertices: make([]Vertex, n),
	}
	if n == 0 {
		return mesh, nil
	}

	bounds := emptyBounds()
	for i := 0; i < n; i++ {
		v := &mesh.Vertices[i]

		p, err := poolIndex(obj.PositionIndices[i], len(obj.Positions))
		if err != nil {
			return nil, fmt.Errorf("reference %d position: %w", i, err)
		}
		v.Position = obj.Positions[p]
		bounds.extend(v.Position)

		if ref := obj.TexCoordIndices[i]; ref != 0 {
			t, err := poolIndex(ref, len(obj.TexCoords))
			if err != nil {
				return nil, fmt.Errorf("reference %d texcoord: %w", i, err)
			}
			v.TexCoord = obj.TexCoords[t]
		}

		if ref := obj.NormalIndices[i]; ref != 0 {
			nrm, err := poolIndex(ref, len(obj.Normals))
			if err != nil {
				return nil, fmt.Errorf("reference %d normal: %w", i, err)
			}
			v.Normal = obj.Normals[nrm]
		}
	}
	mesh.Bounds = bounds

	return mesh, nil
}

// poolIndex converts a 1-based file index into a 0-based index into a pool
// of the given size. This is the only place the conversion happens.
func poolIndex(ref, size int) (int, error) {
	idx := ref - 1
	if idx < 0 || idx >= size {
		return 0, fmt.Errorf("%w: index %d, pool has %d elements", formats.ErrOBJIndexOutOfRange, ref, size)
	}
	return idx, nil
}

// LoadFile parses and assembles an OBJ file.
func LoadFile(path string) (*Mesh, error) {
	obj, err := formats.ParseOBJFile(path)
	if err != nil {
		return nil, err
	}

	mesh, err := BuildMesh(obj)
	if err != nil {
		return nil, fmt.Errorf("assembling %s: %w", path, err)
	}

	logger.Debug("mesh loaded",
		zap.String("path", path),
		zap.Stringer("obj", obj.Stats()),
		zap.Int("vertices", mesh.VertexCount()),
	)
	return mesh, nil
}
