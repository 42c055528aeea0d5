package handlers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/greenline-goods/storefront/internal/recharge"
	"github.com/greenline-goods/storefront/internal/shopify"
)

// AdminAPI is the slice of the Admin client the handlers need.
type AdminAPI interface {
	IsConfigured() bool
	ProductVariants(ctx context.Context, productID int64) ([]shopify.AdminVariant, error)
	Shop(ctx context.Context) (map[string]any, error)
}

// SubscriptionAPI resolves a product's selling plan.
type SubscriptionAPI interface {
	IsConfigured() bool
	ProductSellingPlan(ctx context.Context, productID int64) (*recharge.SellingPlan, error)
}

// InventorySource composes live stock from the Admin API with the
// subscription plan from Recharge. It backs both the proxy endpoint and
// the product page's fetcher.
type InventorySource struct {
	admin  AdminAPI
	plans  SubscriptionAPI
	logger *slog.Logger
}

func NewInventorySource(admin AdminAPI, plans SubscriptionAPI, logger *slog.Logger) *InventorySource {
	if logger == nil {
		logger = slog.Default()
	}
	return &InventorySource{admin: admin, plans: plans, logger: logger}
}

func (s *InventorySource) IsConfigured() bool {
	return s.admin.IsConfigured()
}

// ProductInventory builds the inventory snapshot for a product. A
// subscription lookup failure degrades to "no plan" rather than failing
// the whole snapshot.
func (s *InventorySource) ProductInventory(ctx context.Context, productID int64) (*shopify.InventorySnapshot, error) {
	variants, err := s.admin.ProductVariants(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("fetch product variants: %w", err)
	}

	var planID int64
	var discount float64
	if s.plans != nil && s.plans.IsConfigured() {
		plan, err := s.plans.ProductSellingPlan(ctx, productID)
		if err != nil {
			s.logger.Warn("selling plan lookup failed", "product_id", productID, "error", err)
		} else if plan != nil {
			planID = plan.ID
			discount = plan.DiscountAmount
		}
	}

	snapshot := shopify.BuildInventorySnapshot(variants, planID, discount)
	return &snapshot, nil
}
