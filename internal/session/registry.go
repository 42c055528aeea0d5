package session

import (
	"sync"

	"github.com/greenline-goods/storefront/internal/cart"
)

// Registry holds one cart coordinator per shopper. Coordinators are
// created lazily and live for the shopper's session; the coordinator's
// own init guard keeps duplicate cart creation impossible even when two
// requests race into the same shopper id.
//
// Entries are never evicted: a coordinator is a small struct and the map
// is bounded by distinct shoppers per process lifetime.
// TODO: evict coordinators idle past the identity cookie's MaxAge.
type Registry struct {
	mu     sync.Mutex
	coords map[string]*cart.Coordinator
	build  func(shopperID string) *cart.Coordinator
}

func NewRegistry(build func(shopperID string) *cart.Coordinator) *Registry {
	return &Registry{
		coords: make(map[string]*cart.Coordinator),
		build:  build,
	}
}

// Coordinator returns the shopper's coordinator, creating it on first use.
func (r *Registry) Coordinator(shopperID string) *cart.Coordinator {
	r.mu.Lock()
	defer r.mu.Unlock()

	if coord, ok := r.coords[shopperID]; ok {
		return coord
	}
	coord := r.build(shopperID)
	r.coords[shopperID] = coord
	return coord
}
