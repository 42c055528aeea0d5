// Package analytics shapes dataLayer-style ecommerce events and delivers
// them to a collector.
package analytics

import (
	"strings"

	"github.com/google/uuid"
)

const (
	EventAddToCart      = "dl_add_to_cart"
	EventRemoveFromCart = "dl_remove_from_cart"
	EventViewItem       = "dl_view_item"
	EventViewItemList   = "dl_view_item_list"
	EventSelectItem     = "dl_select_item"
)

// Product is one ecommerce product entry inside an event payload.
type Product struct {
	Name      string  `json:"name"`
	ID        string  `json:"id"`
	ProductID string  `json:"product_id"`
	VariantID string  `json:"variant_id"`
	Image     string  `json:"image,omitempty"`
	Price     float64 `json:"price"`
	Brand     string  `json:"brand,omitempty"`
	Variant   string  `json:"variant,omitempty"`
	Category  string  `json:"category,omitempty"`
	Quantity  int     `json:"quantity,omitempty"`
	Inventory int     `json:"inventory,omitempty"`
	Position  int     `json:"position,omitempty"`
	List      string  `json:"list"`
}

type ActionField struct {
	List string `json:"list"`
}

type ActionGroup struct {
	ActionField ActionField `json:"actionField"`
	Products    []Product   `json:"products"`
}

type Ecommerce struct {
	CurrencyCode string       `json:"currencyCode"`
	Add          *ActionGroup `json:"add,omitempty"`
	Remove       *ActionGroup `json:"remove,omitempty"`
	Detail       *ActionGroup `json:"detail,omitempty"`
	Click        *ActionGroup `json:"click,omitempty"`
	Impressions  []Product    `json:"impressions,omitempty"`
}

// Event is one dataLayer push. EventID is unique per emission so the
// collector can dedupe replays.
type Event struct {
	Event     string    `json:"event"`
	EventID   string    `json:"event_id"`
	Ecommerce Ecommerce `json:"ecommerce"`
}

// NewAddToCart builds the add-to-cart event. The list is the path the
// shopper came from.
func NewAddToCart(currency, list string, product Product) Event {
	return newEvent(EventAddToCart, currency, Ecommerce{
		Add: &ActionGroup{
			ActionField: ActionField{List: list},
			Products:    []Product{sanitize(product, list)},
		},
	})
}

// NewRemoveFromCart builds the remove-from-cart event. The list is the
// current path.
func NewRemoveFromCart(currency, list string, product Product) Event {
	return newEvent(EventRemoveFromCart, currency, Ecommerce{
		Remove: &ActionGroup{
			ActionField: ActionField{List: list},
			Products:    []Product{sanitize(product, list)},
		},
	})
}

// NewViewItem builds the product-detail view event, emitted exactly once
// per successful inventory merge.
func NewViewItem(currency, list string, product Product) Event {
	return newEvent(EventViewItem, currency, Ecommerce{
		Detail: &ActionGroup{
			ActionField: ActionField{List: list},
			Products:    []Product{sanitize(product, list)},
		},
	})
}

// NewViewItemList builds the listing impression event. Positions are
// 1-based in listing order.
func NewViewItemList(currency, list string, products []Product) Event {
	impressions := make([]Product, len(products))
	for i, p := range products {
		p.Position = i + 1
		impressions[i] = sanitize(p, list)
	}
	return newEvent(EventViewItemList, currency, Ecommerce{Impressions: impressions})
}

// NewSelectItem builds the listing click-through event.
func NewSelectItem(currency, list string, product Product) Event {
	return newEvent(EventSelectItem, currency, Ecommerce{
		Click: &ActionGroup{
			ActionField: ActionField{List: list},
			Products:    []Product{sanitize(product, list)},
		},
	})
}

func newEvent(name, currency string, ecommerce Ecommerce) Event {
	if currency == "" {
		currency = "USD"
	}
	ecommerce.CurrencyCode = currency
	return Event{
		Event:     name,
		EventID:   uuid.NewString(),
		Ecommerce: ecommerce,
	}
}

func sanitize(p Product, list string) Product {
	// Apostrophes break downstream tag templates.
	p.Name = strings.ReplaceAll(p.Name, "'", "")
	p.Brand = strings.ReplaceAll(p.Brand, "'", "")
	p.Variant = strings.ReplaceAll(p.Variant, "'", "")
	if p.List == "" {
		p.List = list
	}
	return p
}
