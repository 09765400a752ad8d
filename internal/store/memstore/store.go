package memstore

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Store is an in-process TTL store for session-scoped state. Entries
// vanish on expiry or process exit; nothing ever touches disk.
type Store struct {
	c *gocache.Cache
}

func New(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Store{c: gocache.New(ttl, 2*ttl)}
}

// OnEvicted registers fn to run when an entry leaves the store, both
// on TTL expiry and on explicit Delete. Owners hook their cleanup
// here so expired entries release whatever they reference.
func (s *Store) OnEvicted(fn func(key string, v any)) {
	s.c.OnEvicted(fn)
}

// Put inserts or refreshes an entry, resetting its TTL.
func (s *Store) Put(key string, v any) {
	s.c.Set(key, v, gocache.DefaultExpiration)
}

func (s *Store) Get(key string) (any, bool) {
	return s.c.Get(key)
}

func (s *Store) Delete(key string) {
	s.c.Delete(key)
}
