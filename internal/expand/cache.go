package expand

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/phillarmonic/ushell/internal/token"
)

// CacheSizes configures the capacity of the engine's three bounded LRU
// caches (§4.2.1). Zero values fall back to the documented defaults.
type CacheSizes struct {
	ArgSplit   int
	Executable int
	Arithmetic int
}

// DefaultCacheSizes returns the defaults named in the spec: 200 for
// argument splitting, 500 for executable resolution, 500 for arithmetic.
func DefaultCacheSizes() CacheSizes {
	return CacheSizes{ArgSplit: 200, Executable: 500, Arithmetic: 500}
}

// caches bundles the three process-wide, bounded, LRU caches the
// expansion engine owns. Entries never expire by time — only by LRU
// eviction or an explicit Reset.
type caches struct {
	argSplit   *lru.Cache[string, []token.Token]
	executable *lru.Cache[string, string] // value is absolute path, or "" for "not found"
	arithmetic *lru.Cache[string, int64]

	mu       sync.Mutex // guards lastPATH
	lastPATH string
}

func newCaches(sizes CacheSizes) *caches {
	if sizes.ArgSplit <= 0 {
		sizes.ArgSplit = 200
	}
	if sizes.Executable <= 0 {
		sizes.Executable = 500
	}
	if sizes.Arithmetic <= 0 {
		sizes.Arithmetic = 500
	}

	argSplit, _ := lru.New[string, []token.Token](sizes.ArgSplit)
	executable, _ := lru.New[string, string](sizes.Executable)
	arithmetic, _ := lru.New[string, int64](sizes.Arithmetic)

	return &caches{argSplit: argSplit, executable: executable, arithmetic: arithmetic}
}

// Reset clears all three caches in one operation.
func (c *caches) Reset() {
	c.argSplit.Purge()
	c.executable.Purge()
	c.arithmetic.Purge()
	c.mu.Lock()
	c.lastPATH = ""
	c.mu.Unlock()
}

// invalidateExecutableIfPATHChanged drops the executable-resolution cache
// whenever the observed PATH string differs from the last snapshot.
func (c *caches) invalidateExecutableIfPATHChanged(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if path != c.lastPATH {
		c.executable.Purge()
		c.lastPATH = path
	}
}
