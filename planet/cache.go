package planet

import (
	"context"
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"planetgenerator/core"
)

// Cache memoizes generated meshes by their full parameter set. Concurrent
// misses for the same parameters share one generation. Callers always get
// their own copy of the buffers.
type Cache struct {
	gen   *Generator
	lru   *lru.Cache[core.PlanetParams, *core.GeneratedMesh]
	group singleflight.Group

	hits   atomic.Int64
	misses atomic.Int64
}

// NewCache keeps at most size meshes.
func NewCache(gen *Generator, size int) (*Cache, error) {
	l, err := lru.New[core.PlanetParams, *core.GeneratedMesh](size)
	if err != nil {
		return nil, fmt.Errorf("creating mesh cache: %w", err)
	}
	return &Cache{gen: gen, lru: l}, nil
}

// Get returns the mesh for p, generating it on a miss. If ctx ends while
// waiting, Get returns ctx.Err(); the shared generation still completes and
// is cached for the next caller.
func (c *Cache) Get(ctx context.Context, p core.PlanetParams) (*core.GeneratedMesh, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if m, ok := c.lru.Get(p); ok {
		c.hits.Add(1)
		return m.Clone(), nil
	}
	c.misses.Add(1)

	work := context.WithoutCancel(ctx)
	ch := c.group.DoChan(fmt.Sprintf("%+v", p), func() (any, error) {
		if m, ok := c.lru.Get(p); ok {
			return m, nil
		}
		m, err := c.gen.Generate(work, p)
		if err != nil {
			return nil, err
		}
		c.lru.Add(p, m)
		return m, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*core.GeneratedMesh).Clone(), nil
	}
}

// Len is the number of cached meshes
func (c *Cache) Len() int {
	return c.lru.Len()
}

// Purge drops every cached mesh.
func (c *Cache) Purge() {
	c.lru.Purge()
}

// CacheStats counts lookups since the cache was created.
type CacheStats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Size   int   `json:"size"`
}

func (c *Cache) Stats() CacheStats {
	return CacheStats{Hits: c.hits.Load(), Misses: c.misses.Load(), Size: c.lru.Len()}
}
