// Package variant resolves the active product variant for a page view and
// reconciles CMS product data with live inventory.
package variant

// Option is one name/value pair on a purchasable variant.
type Option struct {
	Name     string `json:"name"`
	Position int    `json:"position"`
	Value    string `json:"value"`
}

// ProductOption is a declared option axis with all its values.
type ProductOption struct {
	Name     string   `json:"name"`
	Position int      `json:"position"`
	Values   []string `json:"values"`
}

// Variant is a purchasable configuration of a product. Display fields
// come from the CMS; InStock/LowStock are overlaid from inventory.
type Variant struct {
	ID         int64    `json:"id"`
	Title      string   `json:"title"`
	SKU        string   `json:"sku"`
	PriceCents int64    `json:"price"`
	Options    []Option `json:"options"`
	InStock    bool     `json:"inStock"`
	LowStock   bool     `json:"lowStock"`
}

// Product is the page-level product record.
type Product struct {
	ID             int64           `json:"id"`
	Title          string          `json:"title"`
	Slug           string          `json:"slug"`
	SKU            string          `json:"sku"`
	PriceCents     int64           `json:"price"`
	Vendor         string          `json:"vendor"`
	Type           string          `json:"productType"`
	ImageURL       string          `json:"imageUrl,omitempty"`
	Options        []ProductOption `json:"options"`
	Variants       []Variant       `json:"variants"`
	InStock        bool            `json:"inStock"`
	LowStock       bool            `json:"lowStock"`
	SellingPlanID  int64           `json:"sellingPlanId,omitempty"`
	DiscountAmount float64         `json:"discountAmount"`
}

// FindVariant returns the variant with the given id, or nil.
func (p *Product) FindVariant(id int64) *Variant {
	for i := range p.Variants {
		if p.Variants[i].ID == id {
			return &p.Variants[i]
		}
	}
	return nil
}

// HasVariantSelector reports whether any option axis has more than one
// value. Single-configuration products render no selector, but active
// variant resolution still runs.
func (p *Product) HasVariantSelector() bool {
	for _, opt := range p.Options {
		if len(opt.Values) > 1 {
			return true
		}
	}
	return false
}
