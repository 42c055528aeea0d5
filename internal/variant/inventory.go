package variant

import (
	"context"
	"log/slog"
	"time"

	"github.com/greenline-goods/storefront/internal/shopify"
	"github.com/sethvargo/go-retry"
)

const (
	inventoryRetries = 3
	inventoryBackoff = 250 * time.Millisecond
)

// InventorySource resolves live stock data for a product id.
type InventorySource interface {
	ProductInventory(ctx context.Context, productID int64) (*shopify.InventorySnapshot, error)
}

// Fetcher wraps an InventorySource with a bounded retry. After the retry
// budget is spent the caller gets the error and renders a pending state;
// partial data is never returned.
type Fetcher struct {
	source  InventorySource
	backoff time.Duration
	logger  *slog.Logger
}

func NewFetcher(source InventorySource, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		source:  source,
		backoff: inventoryBackoff,
		logger:  logger,
	}
}

// Fetch retrieves the inventory snapshot, retrying transient failures up
// to three times with fibonacci backoff.
func (f *Fetcher) Fetch(ctx context.Context, productID int64) (*shopify.InventorySnapshot, error) {
	var snapshot *shopify.InventorySnapshot

	backoff := retry.WithMaxRetries(inventoryRetries, retry.NewFibonacci(f.backoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		s, err := f.source.ProductInventory(ctx, productID)
		if err != nil {
			f.logger.Warn("inventory fetch failed, will retry", "product_id", productID, "error", err)
			return retry.RetryableError(err)
		}
		snapshot = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}
