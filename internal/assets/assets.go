// Package assets handles scene asset loading and caching.
package assets

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/auction-house/internal/engine/model"
	"github.com/Faultbox/auction-house/internal/logger"
)

// ErrOutsideRoot is returned for paths that escape the asset directory.
var ErrOutsideRoot = errors.New("path outside asset root")

// Manager resolves asset paths under one root directory and caches
// assembled meshes.
type Manager struct {
	root   string
	meshes *Cache[*model.Mesh]
	mu     sync.RWMutex
}

// NewManager creates an asset manager rooted at dir.
func NewManager(dir string) (*Manager, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving asset root %s: %w", dir, err)
	}
	return &Manager{
		root:   root,
		meshes: NewCache[*model.Mesh](),
	}, nil
}

// Root returns the absolute asset directory.
func (m *Manager) Root() string {
	return m.root
}

// Path returns the absolute path of an asset given relative to the root.
func (m *Manager) Path(name string) string {
	return filepath.Join(m.root, filepath.FromSlash(name))
}

// Rel converts an absolute path back to a slash-separated asset name.
func (m *Manager) Rel(path string) (string, error) {
	rel, err := filepath.Rel(m.root, path)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, path)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, path)
	}
	return filepath.ToSlash(rel), nil
}

// LoadMesh parses and assembles an OBJ file, returning the cached mesh
// when it was loaded before.
func (m *Manager) LoadMesh(name string) (*model.Mesh, error) {
	if mesh, ok := m.meshes.Get(name); ok {
		return mesh, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	mesh, err := model.LoadFile(m.Path(name))
	if err != nil {
		return nil, err
	}
	m.meshes.Set(name, mesh)
	return mesh, nil
}

// ReloadMesh drops any cached copy and loads the mesh again. On failure
// the cache keeps no entry for name.
func (m *Manager) ReloadMesh(name string) (*model.Mesh, error) {
	m.meshes.Delete(name)
	return m.LoadMesh(name)
}

// LoadMeshes loads several meshes in parallel. Parses are independent, so
// the first error cancels the rest and no partial result is returned.
func (m *Manager) LoadMeshes(ctx context.Context, names []string) (map[string]*model.Mesh, error) {
	results := make([]*model.Mesh, len(names))

	g, ctx := errgroup.WithContext(ctx)
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			mesh, err := m.LoadMesh(name)
			if err != nil {
				return err
			}
			results[i] = mesh
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	meshes := make(map[string]*model.Mesh, len(names))
	for i, name := range names {
		meshes[name] = results[i]
	}

	hits, misses := m.meshes.Stats()
	logger.Debug("meshes loaded",
		zap.Int("count", len(names)),
		zap.Int("cache_hits", hits),
		zap.Int("cache_misses", misses),
	)
	return meshes, nil
}

// CacheStats returns mesh cache hit and miss counts.
func (m *Manager) CacheStats() (hits, misses int) {
	return m.meshes.Stats()
}

// Close drops every cached asset.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.meshes.Clear()
}

// Cache is a simple in-memory cache for loaded assets.
type Cache[V any] struct {
	data map[string]V
	mu   sync.RWMutex

	// Stats
	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache[V any]() *Cache[V] {
	return &Cache[V]{
		data: make(map[string]V),
	}
}

// Get retrieves an item from cache.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return v, ok
}

// Set stores an item in cache.
func (c *Cache[V]) Set(key string, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = v
}

// Delete removes an item from cache.
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
}

// Len returns the number of cached items.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

// Clear clears the cache.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string]V)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache[V]) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
