package driver

import (
	"sync"

	"quill/internal/project"
	"quill/internal/symbols"
)

type cachedLibrary struct {
	digest project.Digest
	lib    *symbols.Library
}

// LibraryCache keeps libraries resolved by earlier checks of a session. An
// entry is valid while the library's digest, which covers its own files and
// the digests of its imports, is unchanged. Cached libraries live in the
// session universe; the cache only decides which of them may stay.
type LibraryCache struct {
	mu     sync.Mutex
	byPath map[string]cachedLibrary // key: absolute path of the #library file
	hits   int
	misses int
}

// NewLibraryCache creates a LibraryCache with the given capacity hint.
func NewLibraryCache(capHint int) *LibraryCache {
	return &LibraryCache{byPath: make(map[string]cachedLibrary, capHint)}
}

// Get returns the library cached for path when its digest matches.
func (c *LibraryCache) Get(path string, digest project.Digest) (*symbols.Library, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rec, ok := c.byPath[path]
	if !ok || rec.digest != digest {
		c.misses++
		return nil, false
	}
	c.hits++
	return rec.lib, true
}

// Put records lib as resolved and marks it Cached.
func (c *LibraryCache) Put(lib *symbols.Library, digest project.Digest) {
	c.mu.Lock()
	defer c.mu.Unlock()
	lib.Cached = true
	lib.Digest = digest
	c.byPath[lib.Path] = cachedLibrary{digest: digest, lib: lib}
}

// Drop forgets path.
func (c *LibraryCache) Drop(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.byPath, path)
}

// Reset forgets everything; used when the universe is rebuilt.
func (c *LibraryCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.byPath)
}

// Len returns the number of cached libraries.
func (c *LibraryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.byPath)
}

// Stats returns lookup counters.
func (c *LibraryCache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
