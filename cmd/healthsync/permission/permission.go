package permission

import (
	"github.com/lifepulse-app/lifepulse/pkg/datamodel"
	"github.com/patrickmn/go-cache"
)

// Cache remembers which metric capabilities the user has granted, so
// adapters only prompt the underlying platform once per kind. Entries never
// expire; denials are not recorded, so a denied kind is re-requested on the
// next collection run. Safe for concurrent use; marking the same kind
// authorized twice is harmless.
type Cache struct {
	store *cache.Cache
}

// NewCache returns an empty permission cache.
func NewCache() *Cache {
	return &Cache{store: cache.New(cache.NoExpiration, 0)}
}

// IsAuthorized reports whether a grant has been recorded for the kind.
func (c *Cache) IsAuthorized(kind datamodel.MetricKind) bool {
	_, ok := c.store.Get(string(kind))
	return ok
}

// MarkAuthorized records a successful grant.
func (c *Cache) MarkAuthorized(kind datamodel.MetricKind) {
	c.store.Set(string(kind), true, cache.NoExpiration)
}

// Authorized lists every kind with a recorded grant.
func (c *Cache) Authorized() []datamodel.MetricKind {
	items := c.store.Items()
	kinds := make([]datamodel.MetricKind, 0, len(items))
	for k := range items {
		kinds = append(kinds, datamodel.MetricKind(k))
	}
	return kinds
}

// Clear forgets all recorded grants.
func (c *Cache) Clear() {
	c.store.Flush()
}
