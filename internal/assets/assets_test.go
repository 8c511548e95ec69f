package assets

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Faultbox/auction-house/pkg/formats"
)

const triangleOBJ = `v 0 0 0
v 1 0 0
v 0 1 0
vt 0 0
vt 1 0
vt 0 1
vn 0 0 1
f 1/1/1 2/2/1 3/3/1
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestCache(t *testing.T) {
	c := NewCache[int]()

	if _, ok := c.Get("a"); ok {
		t.Error("empty cache should miss")
	}
	c.Set("a", 1)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %d, %v; want 1, true", v, ok)
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}

	hits, misses := c.Stats()
	if hits != 1 || misses != 1 {
		t.Errorf("Stats = %d/%d, want 1/1", hits, misses)
	}

	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Error("deleted key should miss")
	}

	c.Clear()
	hits, misses = c.Stats()
	if hits != 0 || misses != 0 || c.Len() != 0 {
		t.Errorf("Clear left hits=%d misses=%d len=%d", hits, misses, c.Len())
	}
}

func TestCacheConcurrent(t *testing.T) {
	c := NewCache[string]()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Set("k", "v")
				c.Get("k")
			}
		}()
	}
	wg.Wait()

	hits, misses := c.Stats()
	if hits+misses != 800 {
		t.Errorf("hits+misses = %d, want 800", hits+misses)
	}
}

func TestManagerPaths(t *testing.T) {
	dir := t.TempDir()
	m, err := NewManager(dir)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	abs := m.Path("obj/chair.obj")
	if abs != filepath.Join(m.Root(), "obj", "chair.obj") {
		t.Errorf("Path = %s", abs)
	}

	rel, err := m.Rel(abs)
	if err != nil || rel != "obj/chair.obj" {
		t.Errorf("Rel = %q, %v; want obj/chair.obj", rel, err)
	}

	if _, err := m.Rel(filepath.Join(filepath.Dir(m.Root()), "elsewhere.obj")); !errors.Is(err, ErrOutsideRoot) {
		t.Errorf("expected ErrOutsideRoot, got %v", err)
	}
}

func TestLoadMeshCaches(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "obj", "tri.obj"), triangleOBJ)

	m, _ := NewManager(dir)
	first, err := m.LoadMesh("obj/tri.obj")
	if err != nil {
		t.Fatalf("LoadMesh: %v", err)
	}
	if first.VertexCount() != 3 {
		t.Errorf("VertexCount = %d, want 3", first.VertexCount())
	}

	second, err := m.LoadMesh("obj/tri.obj")
	if err != nil {
		t.Fatalf("second LoadMesh: %v", err)
	}
	if first != second {
		t.Error("second load should come from cache")
	}

	hits, misses := m.CacheStats()
	if hits != 1 || misses != 1 {
		t.Errorf("CacheStats = %d/%d, want 1/1", hits, misses)
	}
}

func TestReloadMesh(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tri.obj")
	writeFile(t, path, triangleOBJ)

	m, _ := NewManager(dir)
	if _, err := m.LoadMesh("tri.obj"); err != nil {
		t.Fatalf("LoadMesh: %v", err)
	}

	// Two triangles now.
	writeFile(t, path, triangleOBJ+"f 3/3/1 2/2/1 1/1/1\n")
	mesh, err := m.ReloadMesh("tri.obj")
	if err != nil {
		t.Fatalf("ReloadMesh: %v", err)
	}
	if mesh.VertexCount() != 6 {
		t.Errorf("VertexCount = %d, want 6", mesh.VertexCount())
	}

	// A broken edit leaves nothing cached.
	writeFile(t, path, triangleOBJ+"f 9/1/1 2/2/1 1/1/1\n")
	if _, err := m.ReloadMesh("tri.obj"); !errors.Is(err, formats.ErrOBJIndexOutOfRange) {
		t.Fatalf("expected ErrOBJIndexOutOfRange, got %v", err)
	}
	if _, ok := m.meshes.Get("tri.obj"); ok {
		t.Error("failed reload should not leave a cached mesh")
	}
}

func TestLoadMeshes(t *testing.T) {
	dir := t.TempDir()
	names := []string{"obj/a.obj", "obj/b.obj", "obj/c.obj"}
	for _, n := range names {
		writeFile(t, filepath.Join(dir, n), triangleOBJ)
	}

	m, _ := NewManager(dir)
	meshes, err := m.LoadMeshes(context.Background(), names)
	if err != nil {
		t.Fatalf("LoadMeshes: %v", err)
	}
	if len(meshes) != len(names) {
		t.Fatalf("got %d meshes, want %d", len(meshes), len(names))
	}
	for _, n := range names {
		if meshes[n] == nil || meshes[n].VertexCount() != 3 {
			t.Errorf("mesh %s not loaded", n)
		}
	}
}

func TestLoadMeshesFailsWhole(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "good.obj"), triangleOBJ)
	writeFile(t, filepath.Join(dir, "bad.obj"), "v 0 0 0\nf 1 2 3\n")

	m, _ := NewManager(dir)
	meshes, err := m.LoadMeshes(context.Background(), []string{"good.obj", "bad.obj"})
	if !errors.Is(err, formats.ErrOBJIndexOutOfRange) {
		t.Errorf("expected ErrOBJIndexOutOfRange, got %v", err)
	}
	if meshes != nil {
		t.Error("expected no partial result")
	}
}

func TestLoadMeshesMissing(t *testing.T) {
	m, _ := NewManager(t.TempDir())
	_, err := m.LoadMeshes(context.Background(), []string{"nope.obj"})
	if !errors.Is(err, formats.ErrOBJOpen) {
		t.Errorf("expected ErrOBJOpen, got %v", err)
	}
}

func TestIsMeshChange(t *testing.T) {
	tests := []struct {
		name string
		e    fsnotify.Event
		want bool
	}{
		{"write obj", fsnotify.Event{Name: "/a/chair.obj", Op: fsnotify.Write}, true},
		{"create obj", fsnotify.Event{Name: "/a/chair.obj", Op: fsnotify.Create}, true},
		{"upper case ext", fsnotify.Event{Name: "/a/CHAIR.OBJ", Op: fsnotify.Write}, true},
		{"remove obj", fsnotify.Event{Name: "/a/chair.obj", Op: fsnotify.Remove}, false},
		{"chmod obj", fsnotify.Event{Name: "/a/chair.obj", Op: fsnotify.Chmod}, false},
		{"write png", fsnotify.Event{Name: "/a/chair.png", Op: fsnotify.Write}, false},
		{"editor swap", fsnotify.Event{Name: "/a/.chair.obj.swp", Op: fsnotify.Write}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isMeshChange(tt.e); got != tt.want {
				t.Errorf("isMeshChange(%v) = %v, want %v", tt.e, got, tt.want)
			}
		})
	}
}

func TestWatcherReportsChange(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(20*time.Millisecond, dir)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	path := filepath.Join(dir, "train.obj")
	writeFile(t, path, triangleOBJ)
	// Unrelated files are ignored.
	writeFile(t, filepath.Join(dir, "notes.txt"), "hello")

	select {
	case got := <-w.Changes():
		if got != path {
			t.Errorf("change = %s, want %s", got, path)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change")
	}
}

func TestWatcherClose(t *testing.T) {
	w, err := NewWatcher(DefaultSettle, t.TempDir())
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if err := w.Add(t.TempDir()); !errors.Is(err, ErrWatcherClosed) {
		t.Errorf("expected ErrWatcherClosed, got %v", err)
	}
}

func TestNewWatcherMissingDir(t *testing.T) {
	if _, err := NewWatcher(DefaultSettle, filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error watching a missing directory")
	}
}
