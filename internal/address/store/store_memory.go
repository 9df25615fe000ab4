package store

import (
	"context"
	"sync"
	"time"

	"simohu/internal/address/models"
	"simohu/pkg/platform/sentinel"
)

type cachedAddress struct {
	address  models.Address
	storedAt time.Time
}

// InMemoryCache keeps postal-code lookups in memory with TTL expiration.
type InMemoryCache struct {
	mu        sync.RWMutex
	addresses map[string]cachedAddress
	cacheTTL  time.Duration
	now       func() time.Time
}

// NewInMemoryCache creates a new in-memory cache with the specified TTL.
func NewInMemoryCache(cacheTTL time.Duration) *InMemoryCache {
	return &InMemoryCache{
		addresses: make(map[string]cachedAddress),
		cacheTTL:  cacheTTL,
		now:       time.Now,
	}
}

// SaveAddress stores an address keyed by its postal code.
// If address is nil, the operation is a no-op and returns nil.
func (c *InMemoryCache) SaveAddress(_ context.Context, address *models.Address) error {
	if address == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.addresses[address.PostalCode] = cachedAddress{address: *address, storedAt: c.now()}
	return nil
}

// FindAddress returns sentinel.ErrNotFound if the code is absent or expired.
func (c *InMemoryCache) FindAddress(_ context.Context, postalCode string) (*models.Address, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if cached, ok := c.addresses[postalCode]; ok {
		if c.now().Sub(cached.storedAt) < c.cacheTTL {
			address := cached.address
			return &address, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

// ClearAll removes every cached address.
func (c *InMemoryCache) ClearAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.addresses = make(map[string]cachedAddress)
}
