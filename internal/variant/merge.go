package variant

import "github.com/greenline-goods/storefront/internal/shopify"

// Merge overlays a fresh inventory snapshot onto the CMS product record.
// Inventory-owned fields (stock flags, selling plan, discount) come from
// the snapshot; everything else keeps the CMS value. The result is fully
// re-derived from the two inputs, so applying the same snapshot twice
// yields the same product.
func Merge(p Product, snapshot *shopify.InventorySnapshot) Product {
	if snapshot == nil {
		return p
	}

	merged := p
	merged.Variants = make([]Variant, len(p.Variants))
	copy(merged.Variants, p.Variants)

	byID := make(map[int64]shopify.VariantInventory, len(snapshot.Variants))
	for _, vi := range snapshot.Variants {
		byID[vi.ID] = vi
	}

	for i := range merged.Variants {
		vi, ok := byID[merged.Variants[i].ID]
		if !ok {
			continue
		}
		merged.Variants[i].InStock = vi.InStock
		merged.Variants[i].LowStock = vi.LowStock
	}

	merged.InStock = snapshot.InStock
	merged.LowStock = snapshot.LowStock
	merged.SellingPlanID = snapshot.SellingPlanID
	merged.DiscountAmount = snapshot.DiscountAmount

	return merged
}
