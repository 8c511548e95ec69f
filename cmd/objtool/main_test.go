package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Faultbox/auction-house/pkg/formats"
)

const cubeCorner = `# one face of a unit cube
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vt 1 0
vt 1 1
vn 0 0 1
f 1/1/1 2/2/1 3/3/1
f 1/1/1 3/3/1 4//1
`

func writeOBJ(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestCmdInfo(t *testing.T) {
	path := writeOBJ(t, t.TempDir(), "quad.obj", cubeCorner)

	var out bytes.Buffer
	if err := cmdInfo([]string{path}, &out); err != nil {
		t.Fatalf("cmdInfo: %v", err)
	}

	for _, want := range []string{
		"Positions: 4",
		"TexCoords: 3",
		"Normals:   1",
		"Faces:     2",
		"Vertices:  6 (192 bytes)",
		"max (1.0000, 1.0000, 0.0000)",
	} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestCmdInfoErrors(t *testing.T) {
	if err := cmdInfo(nil, &bytes.Buffer{}); err == nil {
		t.Error("expected usage error")
	}

	missing := filepath.Join(t.TempDir(), "missing.obj")
	if err := cmdInfo([]string{missing}, &bytes.Buffer{}); !errors.Is(err, formats.ErrOBJOpen) {
		t.Errorf("expected ErrOBJOpen, got %v", err)
	}
}

func TestCmdDump(t *testing.T) {
	path := writeOBJ(t, t.TempDir(), "quad.obj", cubeCorner)

	var out bytes.Buffer
	if err := cmdDump([]string{"-n", "2", path}, &out); err != nil {
		t.Fatalf("cmdDump: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	// header + 2 vertices + "more" line
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4:\n%s", len(lines), out.String())
	}
	if !strings.Contains(lines[2], "(1.0000, 0.0000, 0.0000)") {
		t.Errorf("second vertex line = %q", lines[2])
	}
	if lines[3] != "... 4 more" {
		t.Errorf("trailer = %q, want '... 4 more'", lines[3])
	}
}

func TestCmdDumpAll(t *testing.T) {
	path := writeOBJ(t, t.TempDir(), "quad.obj", cubeCorner)

	var out bytes.Buffer
	if err := cmdDump([]string{path}, &out); err != nil {
		t.Fatalf("cmdDump: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 7 {
		t.Errorf("got %d lines, want header + 6 vertices", len(lines))
	}
	// Last reference omits its texcoord.
	if !strings.Contains(lines[6], "(0.0000, 0.0000)") {
		t.Errorf("last vertex line = %q", lines[6])
	}
}

func TestCmdCheck(t *testing.T) {
	dir := t.TempDir()
	good := writeOBJ(t, dir, "good.obj", cubeCorner)
	bad := writeOBJ(t, dir, "bad.obj", "v 0 0 0\nf 1 2 3\n")
	quad := writeOBJ(t, dir, "quad.obj", "v 0 0 0\nv 1 0 0\nv 1 1 0\nv 0 1 0\nf 1 2 3 4\n")

	var out bytes.Buffer
	err := cmdCheck([]string{good, bad, quad}, &out)
	if !errors.Is(err, errChecksFailed) {
		t.Fatalf("expected errChecksFailed, got %v", err)
	}

	s := out.String()
	if !strings.Contains(s, "ok    "+good+" (6 vertices)") {
		t.Errorf("good file not reported ok:\n%s", s)
	}
	if !strings.Contains(s, "FAIL  "+bad) || !strings.Contains(s, "FAIL  "+quad) {
		t.Errorf("bad files not reported:\n%s", s)
	}
	if !strings.Contains(s, "3 checked, 2 failed") {
		t.Errorf("summary missing:\n%s", s)
	}
}

func TestCmdCheckAllGood(t *testing.T) {
	dir := t.TempDir()
	a := writeOBJ(t, dir, "a.obj", cubeCorner)
	b := writeOBJ(t, dir, "b.obj", cubeCorner)

	if err := cmdCheck([]string{a, b}, &bytes.Buffer{}); err != nil {
		t.Errorf("cmdCheck: %v", err)
	}
}
