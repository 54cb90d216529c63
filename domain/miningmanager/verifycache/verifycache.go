// Package verifycache remembers the outcome of transaction script
// verification so a transaction seen again, or revalidated after the tip
// moved, does not run its scripts twice.
package verifycache

import (
	"github.com/cellnetwork/celld/domain/chainconfig"
	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
	"github.com/cellnetwork/celld/domain/consensus/processes/transactionvalidator"
	"github.com/lightninglabs/neutrino/cache/lru"
)

// cachedEntry is one remembered verification. Entries are only valid under
// the consensus features they were computed with.
type cachedEntry struct {
	entry    transactionvalidator.CacheEntry
	features chainconfig.FeatureSet
}

// Size returns 1 since the cache bounds the number of entries.
func (c *cachedEntry) Size() (uint64, error) {
	return 1, nil
}

// Cache is a bounded LRU of verification results keyed by witness hash.
// It is safe for concurrent use.
type Cache struct {
	entries *lru.Cache[externalapi.DomainHash, *cachedEntry]
}

// New returns a Cache holding up to size entries.
func New(size uint64) *Cache {
	return &Cache{
		entries: lru.NewCache[externalapi.DomainHash, *cachedEntry](size),
	}
}

// Get returns the entry of the transaction with the given witness hash if
// it was computed under features.
func (c *Cache) Get(witnessHash *externalapi.DomainHash,
	features chainconfig.FeatureSet) (transactionvalidator.CacheEntry, bool) {

	cached, err := c.entries.Get(*witnessHash)
	if err != nil || cached.features != features {
		cacheMisses.Inc()
		return nil, false
	}
	cacheHits.Inc()
	return cached.entry, true
}

// Put remembers entry for the transaction with the given witness hash.
func (c *Cache) Put(witnessHash *externalapi.DomainHash, features chainconfig.FeatureSet,
	entry transactionvalidator.CacheEntry) {

	_, err := c.entries.Put(*witnessHash, &cachedEntry{entry: entry, features: features})
	if err != nil {
		log.Warnf("Failed caching the verification of %s: %s", witnessHash, err)
	}
}

// Remove forgets the entry of the transaction with the given witness hash.
func (c *Cache) Remove(witnessHash *externalapi.DomainHash) {
	c.entries.Delete(*witnessHash)
}

// Len returns the number of remembered entries.
func (c *Cache) Len() int {
	return c.entries.Len()
}
