package verify

import (
	"encoding/hex"
	"sync"

	"github.com/btcsuite/fastsha256"
	"github.com/golang/groupcache/lru"
	"github.com/golang/groupcache/singleflight"

	"github.com/onyx-protocol/neovm/metrics"
	"github.com/onyx-protocol/neovm/protocol/vm"
)

// DefaultCacheSize is the number of decoded scripts a Verifier
// keeps.
const DefaultCacheSize = 1000

// scriptCache shares decoded, validated scripts between jobs,
// keyed by the SHA-256 of their bytes.
type scriptCache struct {
	mu     sync.Mutex
	lru    *lru.Cache
	single singleflight.Group // for cache misses
}

func newScriptCache(size int) *scriptCache {
	return &scriptCache{lru: lru.New(size)}
}

func (c *scriptCache) lookup(b []byte) (*vm.Script, error) {
	sum := fastsha256.Sum256(b)
	key := hex.EncodeToString(sum[:])
	if s, ok := c.get(key); ok {
		metrics.Count("verify.cache.hit", 1)
		return s, nil
	}

	// Cache miss; decode the script
	metrics.Count("verify.cache.miss", 1)
	s, err := c.single.Do(key, func() (interface{}, error) {
		s, err := vm.NewScript(append([]byte(nil), b...), true)
		if err != nil {
			return nil, err
		}
		c.add(key, s)
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return s.(*vm.Script), nil
}

func (c *scriptCache) get(key string) (*vm.Script, bool) {
	c.mu.Lock()
	s, ok := c.lru.Get(key)
	c.mu.Unlock()
	if !ok {
		return nil, false
	}
	return s.(*vm.Script), true
}

func (c *scriptCache) add(key string, s *vm.Script) {
	c.mu.Lock()
	c.lru.Add(key, s)
	c.mu.Unlock()
}

func (c *scriptCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}
