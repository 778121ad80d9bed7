package twosquares

import (
	"math/big"
	"sync"
	"sync/atomic"
)

// PrimeCache memoizes prime decompositions. It is safe for concurrent use.
// Entries are inserted only if absent; a racing recomputation is harmless
// because the decomposition is a pure function of p.
type PrimeCache struct {
	mu      sync.RWMutex
	entries map[string]SquarePair
	hits    atomic.Uint64
	misses  atomic.Uint64
}

// NewPrimeCache creates an empty cache
func NewPrimeCache() *PrimeCache {
	return &PrimeCache{entries: make(map[string]SquarePair)}
}

// Get returns the cached pair for p
func (c *PrimeCache) Get(p *big.Int) (SquarePair, bool) {
	c.mu.RLock()
	pair, ok := c.entries[p.Text(16)]
	c.mu.RUnlock()
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return pair, ok
}

// Put stores pair for p unless an entry already exists, and returns the
// stored value.
func (c *PrimeCache) Put(p *big.Int, pair SquarePair) SquarePair {
	k := p.Text(16)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries == nil {
		c.entries = make(map[string]SquarePair)
	}
	if existing, ok := c.entries[k]; ok {
		return existing
	}
	c.entries[k] = pair
	return pair
}

// Len returns the number of cached primes
func (c *PrimeCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns the hit and miss counters
func (c *PrimeCache) Stats() (hits, misses uint64) {
	return c.hits.Load(), c.misses.Load()
}

// Reset drops every entry and zeroes the counters
func (c *PrimeCache) Reset() {
	c.mu.Lock()
	c.entries = make(map[string]SquarePair)
	c.mu.Unlock()
	c.hits.Store(0)
	c.misses.Store(0)
}

// resultCache is a bounded FIFO of finished decompositions keyed by
// resultKey. Stored sets are never handed out directly; callers get copies.
type resultCache struct {
	mu       sync.Mutex
	capacity int
	entries  map[[32]byte]*PairSet
	order    [][32]byte
}

func newResultCache(capacity int) *resultCache {
	if capacity <= 0 {
		return nil
	}
	return &resultCache{
		capacity: capacity,
		entries:  make(map[[32]byte]*PairSet, capacity),
	}
}

func (c *resultCache) get(key [32]byte) (*PairSet, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	out := NewPairSet()
	out.merge(s)
	return out, true
}

func (c *resultCache) put(key [32]byte, s *PairSet) {
	if c == nil {
		return
	}
	stored := NewPairSet()
	stored.merge(s)

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; ok {
		return
	}
	for len(c.order) >= c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
	c.entries[key] = stored
	c.order = append(c.order, key)
}

func (c *resultCache) len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
