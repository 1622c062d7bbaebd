package ledger

import (
	"sync"

	"github.com/cellforge/cellforge/pkg/types"
)

// OutpointCache tracks outpoints that must not be offered for spending
// again within this process: seal and lock outpoints are reserved for the
// next step of the workflow the moment their transaction is submitted,
// before the node's indexer even sees them.
type OutpointCache struct {
	mu       sync.RWMutex
	unusable map[types.Outpoint]struct{}
}

// NewOutpointCache creates an empty cache.
func NewOutpointCache() *OutpointCache {
	return &OutpointCache{unusable: make(map[types.Outpoint]struct{})}
}

// MarkUnusable records the outpoint as off-limits for input completion.
func (c *OutpointCache) MarkUnusable(op types.Outpoint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.unusable[op] = struct{}{}
}

// Usable reports whether the outpoint may be offered for spending.
func (c *OutpointCache) Usable(op types.Outpoint) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, blocked := c.unusable[op]
	return !blocked
}

// Reset clears the cache (new wallet session).
func (c *OutpointCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.unusable = make(map[types.Outpoint]struct{})
}
