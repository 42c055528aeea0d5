package shopify

// Inventory snapshot shaping. Thresholds match the storefront's display
// rules: a product runs low at 10 units total, a variant at 5.

const (
	productLowStockThreshold = 10
	variantLowStockThreshold = 5
)

// VariantInventory is one variant's live stock state.
type VariantInventory struct {
	ID                int64  `json:"id"`
	Title             string `json:"title"`
	SKU               string `json:"sku"`
	Price             string `json:"price"`
	InventoryQuantity int    `json:"inventory_quantity"`
	InventoryPolicy   string `json:"inventory_policy"`
	InStock           bool   `json:"inStock"`
	LowStock          bool   `json:"lowStock"`
}

// InventorySnapshot is the per-product payload served by the inventory
// proxy endpoint. Never persisted past the page view that requested it.
type InventorySnapshot struct {
	InStock        bool               `json:"inStock"`
	LowStock       bool               `json:"lowStock"`
	Variants       []VariantInventory `json:"variants"`
	SellingPlanID  int64              `json:"sellingPlanId,omitempty"`
	DiscountAmount float64            `json:"discountAmount"`
}

// BuildInventorySnapshot derives stock flags from the admin variant
// records. A variant with inventory_policy "continue" keeps selling past
// zero, so it always counts as in stock.
func BuildInventorySnapshot(variants []AdminVariant, sellingPlanID int64, discountAmount float64) InventorySnapshot {
	snapshot := InventorySnapshot{
		Variants:       make([]VariantInventory, 0, len(variants)),
		SellingPlanID:  sellingPlanID,
		DiscountAmount: discountAmount,
	}

	total := 0
	for _, v := range variants {
		inStock := v.InventoryQuantity > 0 || v.InventoryPolicy == "continue"
		if inStock {
			snapshot.InStock = true
		}
		total += v.InventoryQuantity

		snapshot.Variants = append(snapshot.Variants, VariantInventory{
			ID:                v.ID,
			Title:             v.Title,
			SKU:               v.SKU,
			Price:             v.Price,
			InventoryQuantity: v.InventoryQuantity,
			InventoryPolicy:   v.InventoryPolicy,
			InStock:           inStock,
			LowStock:          v.InventoryQuantity <= variantLowStockThreshold,
		})
	}

	snapshot.LowStock = total <= productLowStockThreshold
	return snapshot
}
