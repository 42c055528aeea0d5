// Package cart mirrors the remote cart into local session state and
// serializes every mutation against it.
package cart

// SellingPlan identifies the subscription plan attached to a line.
type SellingPlan struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// SiblingVariant is one entry of the product's full variant list,
// carried on each line so the cart UI can offer variant switching.
type SiblingVariant struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	SKU   string `json:"sku"`
}

// ProductSnapshot is the denormalized display data attached to a line at
// reconciliation time. Display fields come from the catalog; the sibling
// list comes from the cart service's merchandise record.
type ProductSnapshot struct {
	ProductTitle string           `json:"productTitle"`
	Slug         string           `json:"slug"`
	VariantTitle string           `json:"variantTitle"`
	PriceCents   int64            `json:"price"`
	CartPhotoURL string           `json:"cartPhotoUrl,omitempty"`
	Siblings     []SiblingVariant `json:"variants,omitempty"`
}

// LineItem is one quantity-bearing entry in the session cart. Quantities
// are always positive; absence expresses zero.
type LineItem struct {
	LineID         string          `json:"lineId"`
	VariantID      int64           `json:"variantId"`
	Quantity       int             `json:"quantity"`
	UnitPriceCents int64           `json:"unitPrice"`
	SellingPlan    *SellingPlan    `json:"sellingPlan,omitempty"`
	Product        ProductSnapshot `json:"product"`
}

// Session is the local mirror of one shopper's cart plus the in-flight
// flags the view reads. Published as an immutable snapshot: every
// successful remote mutation replaces it wholesale.
type Session struct {
	CartID        string     `json:"cartId"`
	CheckoutURL   string     `json:"checkoutUrl"`
	SubtotalCents int64      `json:"subtotal"`
	LineItems     []LineItem `json:"lineItems"`
	IsLoading     bool       `json:"isLoading"`
	IsAdding      bool       `json:"isAdding"`
	IsUpdating    bool       `json:"isUpdating"`
}

// Count is the total quantity across all lines.
func (s Session) Count() int {
	total := 0
	for _, item := range s.LineItems {
		total += item.Quantity
	}
	return total
}

// FindLine returns the line with the given id, or nil.
func (s Session) FindLine(lineID string) *LineItem {
	for i := range s.LineItems {
		if s.LineItems[i].LineID == lineID {
			return &s.LineItems[i]
		}
	}
	return nil
}

func (s Session) clone() Session {
	out := s
	out.LineItems = make([]LineItem, len(s.LineItems))
	copy(out.LineItems, s.LineItems)
	for i := range out.LineItems {
		siblings := out.LineItems[i].Product.Siblings
		if len(siblings) == 0 {
			continue
		}
		out.LineItems[i].Product.Siblings = make([]SiblingVariant, len(siblings))
		copy(out.LineItems[i].Product.Siblings, siblings)
	}
	return out
}
