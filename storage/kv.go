package storage

import (
	"context"
	"errors"
)

// Session store keys. Absence of the cart id key is a normal state and
// triggers cart creation.
const (
	CartIDKey      = "shopify_cart_id"
	PrevPathKey    = "prevPath"
	CurrentPathKey = "currentPath"
)

// ErrNotFound is returned when a key has no value for the shopper.
var ErrNotFound = errors.New("storage: key not found")

// KV is the persisted per-shopper key/value capability. Values are plain
// strings and survive reloads; implementations are safe for concurrent
// use.
type KV interface {
	Get(ctx context.Context, shopperID, key string) (string, error)
	Set(ctx context.Context, shopperID, key, value string) error
	Delete(ctx context.Context, shopperID, key string) error
}
