package mapbox

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/couchcryptid/readiness-map-service/internal/domain"
	"github.com/couchcryptid/readiness-map-service/internal/observability"
)

// Renderer draws a map layer with the given camera.
type Renderer interface {
	RenderMap(ctx context.Context, layer domain.Layer, view domain.ViewState) (domain.MapImage, error)
}

// CachedRenderer wraps a Renderer with an in-memory LRU cache keyed by the
// content of the layer and view. Failed renders are not cached.
type CachedRenderer struct {
	inner   Renderer
	cache   *lruCache[domain.MapImage]
	metrics *observability.Metrics
}

// NewCachedRenderer creates a cache decorator around a renderer.
func NewCachedRenderer(inner Renderer, maxEntries int, metrics *observability.Metrics) *CachedRenderer {
	return &CachedRenderer{
		inner:   inner,
		cache:   newLRUCache[domain.MapImage](maxEntries),
		metrics: metrics,
	}
}

func (c *CachedRenderer) RenderMap(ctx context.Context, layer domain.Layer, view domain.ViewState) (domain.MapImage, error) {
	key, err := renderKey(layer, view)
	if err != nil {
		return domain.MapImage{}, err
	}
	if img, ok := c.cache.get(key); ok {
		c.metrics.MapRenderCache.WithLabelValues("hit").Inc()
		return img, nil
	}
	c.metrics.MapRenderCache.WithLabelValues("miss").Inc()

	img, err := c.inner.RenderMap(ctx, layer, view)
	if err != nil {
		return img, err
	}
	c.cache.put(key, img)
	return img, nil
}

// renderKey digests the JSON form of the request.
func renderKey(layer domain.Layer, view domain.ViewState) (string, error) {
	data, err := json.Marshal(struct {
		Layer domain.Layer     `json:"layer"`
		View  domain.ViewState `json:"view"`
	}{layer, view})
	if err != nil {
		return "", fmt.Errorf("render cache key: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// lruCache is a small thread-safe LRU cache.
type lruCache[V any] struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*lruEntry[V]
	head       *lruEntry[V] // most recently used
	tail       *lruEntry[V] // least recently used
}

type lruEntry[V any] struct {
	key   string
	value V
	prev  *lruEntry[V]
	next  *lruEntry[V]
}

func newLRUCache[V any](maxEntries int) *lruCache[V] {
	if maxEntries < 1 {
		maxEntries = 1
	}
	return &lruCache[V]{
		maxEntries: maxEntries,
		entries:    make(map[string]*lruEntry[V]),
	}
}

func (c *lruCache[V]) get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.promote(e)
	return e.value, true
}

func (c *lruCache[V]) put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.promote(e)
		return
	}

	e := &lruEntry[V]{key: key, value: value}
	c.entries[key] = e
	c.pushFront(e)

	for len(c.entries) > c.maxEntries {
		victim := c.tail
		c.unlink(victim)
		delete(c.entries, victim.key)
	}
}

func (c *lruCache[V]) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *lruCache[V]) promote(e *lruEntry[V]) {
	if e == c.head {
		return
	}
	c.unlink(e)
	c.pushFront(e)
}

func (c *lruCache[V]) pushFront(e *lruEntry[V]) {
	e.prev = nil
	e.next = c.head
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache[V]) unlink(e *lruEntry[V]) {
	if e.prev == nil {
		c.head = e.next
	} else {
		e.prev.next = e.next
	}
	if e.next == nil {
		c.tail = e.prev
	} else {
		e.next.prev = e.prev
	}
	e.prev, e.next = nil, nil
}
