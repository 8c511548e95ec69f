package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/auction-house/pkg/formats"
)

const trianglePools = `v 0 0 0
v 1 0 0
v 0 1 0
vt 0 0
vt 1 0
vt 0 1
vn 0 0 1
`

func buildFromString(t *testing.T, src string) (*Mesh, error) {
	t.Helper()
	obj, err := formats.ParseOBJ(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ParseOBJ failed: %v", err)
	}
	return BuildMesh(obj)
}

func TestVertexLayout(t *testing.T) {
	var v Vertex
	if got := unsafe.Sizeof(v); got != VertexStride {
		t.Errorf("Vertex size = %d, want %d", got, VertexStride)
	}
	if got := unsafe.Offsetof(v.Position); got != PositionOffset {
		t.Errorf("Position offset = %d, want %d", got, PositionOffset)
	}
	if got := unsafe.Offsetof(v.Normal); got != NormalOffset {
		t.Errorf("Normal offset = %d, want %d", got, NormalOffset)
	}
	if got := unsafe.Offsetof(v.TexCoord); got != TexCoordOffset {
		t.Errorf("TexCoord offset = %d, want %d", got, TexCoordOffset)
	}
}

func TestBuildMesh_Triangle(t *testing.T) {
	mesh, err := buildFromString(t, trianglePools+"f 1/1/1 2/2/1 3/3/1\n")
	if err != nil {
		t.Fatalf("BuildMesh failed: %v", err)
	}

	want := []Vertex{
		{Position: mgl32.Vec3{0, 0, 0}, Normal: mgl32.Vec3{0, 0, 1}, TexCoord: mgl32.Vec2{0, 0}},
		{Position: mgl32.Vec3{1, 0, 0}, Normal: mgl32.Vec3{0, 0, 1}, TexCoord: mgl32.Vec2{1, 0}},
		{Position: mgl32.Vec3{0, 1, 0}, Normal: mgl32.Vec3{0, 0, 1}, TexCoord: mgl32.Vec2{0, 1}},
	}
	if len(mesh.Vertices) != len(want) {
		t.Fatalf("expected %d vertices, got %d", len(want), len(mesh.Vertices))
	}
	for i := range want {
		if mesh.Vertices[i] != want[i] {
			t.Errorf("vertex %d: got %+v, want %+v", i, mesh.Vertices[i], want[i])
		}
	}

	if mesh.Bounds.Min != (mgl32.Vec3{0, 0, 0}) || mesh.Bounds.Max != (mgl32.Vec3{1, 1, 0}) {
		t.Errorf("unexpected bounds %+v", mesh.Bounds)
	}
}

func TestBuildMesh_VertexCountIsThreePerFace(t *testing.T) {
	for _, faces := range []int{0, 1, 2, 7, 50} {
		var b strings.Builder
		b.WriteString(trianglePools)
		for i := 0; i < faces; i++ {
			b.WriteString("f 1/1/1 2/2/1 3/3/1\n")
		}

		mesh, err := buildFromString(t, b.String())
		if err != nil {
			t.Fatalf("%d faces: BuildMesh failed: %v", faces, err)
		}
		if mesh.VertexCount() != 3*faces {
			t.Errorf("%d faces: got %d vertices, want %d", faces, mesh.VertexCount(), 3*faces)
		}
	}
}

func TestBuildMesh_PreservesFaceOrder(t *testing.T) {
	pools := trianglePools + "v 5 5 5\nv 6 6 6\nv 7 7 7\n"
	faceA := "f 1/1/1 2/2/1 3/3/1\n"
	faceB := "f 4/1/1 5/2/1 6/3/1\n"

	ab, err := buildFromString(t, pools+faceA+faceB)
	if err != nil {
		t.Fatalf("BuildMesh failed: %v", err)
	}
	ba, err := buildFromString(t, pools+faceB+faceA)
	if err != nil {
		t.Fatalf("BuildMesh failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		if ab.Vertices[i] != ba.Vertices[i+3] {
			t.Errorf("face A vertex %d moved: %+v vs %+v", i, ab.Vertices[i], ba.Vertices[i+3])
		}
		if ab.Vertices[i+3] != ba.Vertices[i] {
			t.Errorf("face B vertex %d moved: %+v vs %+v", i, ab.Vertices[i+3], ba.Vertices[i])
		}
	}
	if ab.Vertices[3].Position != (mgl32.Vec3{5, 5, 5}) {
		t.Errorf("expected second block to start at (5,5,5), got %v", ab.Vertices[3].Position)
	}
}

func TestBuildMesh_SharedVertexIsDuplicated(t *testing.T) {
	src := trianglePools + "v 1 1 0\nf 1/1/1 2/2/1 3/3/1\nf 2/2/1 4/1/1 3/3/1\n"

	mesh, err := buildFromString(t, src)
	if err != nil {
		t.Fatalf("BuildMesh failed: %v", err)
	}
	if mesh.VertexCount() != 6 {
		t.Fatalf("expected 6 vertices, got %d", mesh.VertexCount())
	}

	// Position 2 is referenced by both faces.
	if mesh.Vertices[1] != mesh.Vertices[3] {
		t.Errorf("shared vertex differs: %+v vs %+v", mesh.Vertices[1], mesh.Vertices[3])
	}

	// Changing one copy must not affect the other.
	mesh.Vertices[1].Position[0] = 42
	if mesh.Vertices[3].Position[0] != 1 {
		t.Errorf("shared vertex aliased: got %v", mesh.Vertices[3].Position)
	}
}

func TestBuildMesh_AbsentComponents(t *testing.T) {
	mesh, err := buildFromString(t, trianglePools+"f 1//1 2//1 3//1\nf 1/2 2/3 3/1\n")
	if err != nil {
		t.Fatalf("BuildMesh failed: %v", err)
	}

	if mesh.Vertices[1].TexCoord != (mgl32.Vec2{}) {
		t.Errorf("absent texcoord should be zero, got %v", mesh.Vertices[1].TexCoord)
	}
	if mesh.Vertices[1].Normal != (mgl32.Vec3{0, 0, 1}) {
		t.Errorf("normal not resolved: %v", mesh.Vertices[1].Normal)
	}
	if mesh.Vertices[3].Normal != (mgl32.Vec3{}) {
		t.Errorf("absent normal should be zero, got %v", mesh.Vertices[3].Normal)
	}
	if mesh.Vertices[3].TexCoord != (mgl32.Vec2{1, 0}) {
		t.Errorf("texcoord not resolved: %v", mesh.Vertices[3].TexCoord)
	}
}

func TestBuildMesh_IndexOutOfRange(t *testing.T) {
	tests := []struct {
		name string
		face string
		attr string
	}{
		{"position", "f 1/1/1 2/2/1 4/3/1", "position"},
		{"texcoord", "f 1/1/1 2/9/1 3/3/1", "texcoord"},
		{"normal", "f 1/1/1 2/2/1 3/3/2", "normal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mesh, err := buildFromString(t, trianglePools+tt.face+"\n")
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if mesh != nil {
				t.Error("expected no partial mesh")
			}
			if !errors.Is(err, formats.ErrOBJIndexOutOfRange) {
				t.Errorf("expected ErrOBJIndexOutOfRange, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.attr) {
				t.Errorf("expected error to name %s, got %v", tt.attr, err)
			}
		})
	}
}

func TestBuildMesh_MismatchedIndexLists(t *testing.T) {
	obj := &formats.OBJ{
		Positions:       []mgl32.Vec3{{0, 0, 0}},
		PositionIndices: []int{1, 1},
		TexCoordIndices: []int{0},
		NormalIndices:   []int{0, 0},
	}

	if _, err := BuildMesh(obj); !errors.Is(err, formats.ErrMalformedOBJ) {
		t.Errorf("expected ErrMalformedOBJ, got %v", err)
	}
}

func TestBuildMesh_EmptySource(t *testing.T) {
	mesh, err := buildFromString(t, "# nothing here\no Empty\ns off\n")
	if err != nil {
		t.Fatalf("BuildMesh failed: %v", err)
	}
	if mesh.VertexCount() != 0 {
		t.Errorf("expected empty mesh, got %d vertices", mesh.VertexCount())
	}
}

func TestPoolIndex(t *testing.T) {
	tests := []struct {
		ref, size int
		want      int
		wantErr   bool
	}{
		{1, 3, 0, false},
		{3, 3, 2, false},
		{4, 3, 0, true},
		{0, 3, 0, true},
		{-1, 3, 0, true},
		{1, 0, 0, true},
	}

	for _, tc := range tests {
		got, err := poolIndex(tc.ref, tc.size)
		if (err != nil) != tc.wantErr {
			t.Errorf("poolIndex(%d, %d) error = %v, wantErr %v", tc.ref, tc.size, err, tc.wantErr)
			continue
		}
		if err != nil && !errors.Is(err, formats.ErrOBJIndexOutOfRange) {
			t.Errorf("poolIndex(%d, %d) error = %v, want ErrOBJIndexOutOfRange", tc.ref, tc.size, err)
		}
		if got != tc.want {
			t.Errorf("poolIndex(%d, %d) = %d, want %d", tc.ref, tc.size, got, tc.want)
		}
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tri.obj")
	if err := os.WriteFile(path, []byte(trianglePools+"f 1/1/1 2/2/1 3/3/1\n"), 0644); err != nil {
		t.Fatalf("failed to write OBJ: %v", err)
	}

	mesh, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if mesh.VertexCount() != 3 {
		t.Errorf("expected 3 vertices, got %d", mesh.VertexCount())
	}

	_, err = LoadFile(filepath.Join(dir, "nope.obj"))
	if !errors.Is(err, formats.ErrOBJOpen) {
		t.Errorf("expected ErrOBJOpen, got %v", err)
	}

	bad := filepath.Join(dir, "bad.obj")
	if err := os.WriteFile(bad, []byte(trianglePools+"f 1/1/1 2/2/1 3/3/7\n"), 0644); err != nil {
		t.Fatalf("failed to write OBJ: %v", err)
	}
	_, err = LoadFile(bad)
	if !errors.Is(err, formats.ErrOBJIndexOutOfRange) {
		t.Errorf("expected ErrOBJIndexOutOfRange, got %v", err)
	}
}

func TestBoundsCenterAndSize(t *testing.T) {
	b := Bounds{Min: mgl32.Vec3{-1, 0, 2}, Max: mgl32.Vec3{3, 4, 6}}
	if got := b.Center(); got != (mgl32.Vec3{1, 2, 4}) {
		t.Errorf("Center() = %v, want [1 2 4]", got)
	}
	if got := b.Size(); got != (mgl32.Vec3{4, 4, 4}) {
		t.Errorf("Size() = %v, want [4 4 4]", got)
	}
}

func BenchmarkBuildMesh(b *testing.B) {
	var sb strings.Builder
	sb.WriteString(trianglePools)
	for i := 0; i < 10000; i++ {
		fmt.Fprintf(&sb, "f %d/1/1 %d/2/1 %d/3/1\n", i%3+1, (i+1)%3+1, (i+2)%3+1)
	}
	obj, err := formats.ParseOBJ(strings.NewReader(sb.String()))
	if err != nil {
		b.Fatalf("ParseOBJ failed: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := BuildMesh(obj); err != nil {
			b.Fatal(err)
		}
	}
}
