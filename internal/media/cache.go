// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package media

import (
	"image"
	"os"
	"sync"
	"time"
)

// DefaultCacheBytes bounds the pixel bytes kept by the decode cache.
const DefaultCacheBytes = 256 << 20

// fileKey identifies one version of a file on disk.
type fileKey struct {
	path  string
	size  int64
	mtime time.Time
}

type cacheEntry struct {
	img   *image.RGBA
	atime int64
}

// ImageCache keeps decoded images by file version, so a page that shows
// the same picture several times decodes it once. Cached images are
// shared and must not be modified.
//
// When the pixel bytes exceed the limit, the least recently used entries
// are evicted until a quarter of the budget is free again.
//
// ImageCache is safe for concurrent use.
type ImageCache struct {
	mu      sync.Mutex
	entries map[fileKey]*cacheEntry
	bytes   int
	limit   int
	tick    int64
}

// NewImageCache creates a cache holding at most limit pixel bytes. A limit
// of 0 means unlimited.
func NewImageCache(limit int) *ImageCache {
	return &ImageCache{entries: make(map[fileKey]*cacheEntry), limit: limit}
}

var defaultCache = NewImageCache(DefaultCacheBytes)

// Decode returns the cached image for path's current version, decoding
// and caching it on a miss.
func (c *ImageCache) Decode(path string) (*image.RGBA, error) {
	st, err := os.Stat(path)
	if err != nil {
		return decodeFile(path)
	}
	key := fileKey{path: path, size: st.Size(), mtime: st.ModTime()}
	if img, ok := c.get(key); ok {
		return img, nil
	}
	img, err := decodeFile(path)
	if err != nil {
		return nil, err
	}
	c.put(key, img)
	return img, nil
}

func (c *ImageCache) get(key fileKey) (*image.RGBA, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.tick++
	e.atime = c.tick
	return e.img, true
}

func (c *ImageCache) put(key fileKey, img *image.RGBA) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if old, ok := c.entries[key]; ok {
		c.bytes -= len(old.img.Pix)
	}
	c.tick++
	c.entries[key] = &cacheEntry{img: img, atime: c.tick}
	c.bytes += len(img.Pix)
	if c.limit > 0 && c.bytes > c.limit {
		c.evict()
	}
}

// evict drops the oldest entries until the cache is at three quarters of
// its limit. The newest entry is always kept. Caller holds c.mu.
func (c *ImageCache) evict() {
	target := c.limit * 3 / 4
	for c.bytes > target && len(c.entries) > 1 {
		var oldest fileKey
		var oldestTick int64 = -1
		for k, e := range c.entries {
			if oldestTick < 0 || e.atime < oldestTick {
				oldest, oldestTick = k, e.atime
			}
		}
		c.bytes -= len(c.entries[oldest].img.Pix)
		delete(c.entries, oldest)
	}
}

// Len returns the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Bytes returns the cached pixel bytes.
func (c *ImageCache) Bytes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bytes
}

// Clear drops every entry.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[fileKey]*cacheEntry)
	c.bytes = 0
	c.tick = 0
}
