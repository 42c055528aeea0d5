package handlers

import (
	"fmt"

	"github.com/greenline-goods/storefront/internal/variant"
)

// schema.org Product payload for the page head.

type SchemaOffer struct {
	Type          string `json:"@type"`
	URL           string `json:"url"`
	Availability  string `json:"availability"`
	Price         string `json:"price"`
	PriceCurrency string `json:"priceCurrency"`
}

type SchemaBrand struct {
	Type string `json:"@type"`
	Name string `json:"name"`
}

type ProductSchema struct {
	Context string      `json:"@context"`
	Type    string      `json:"@type"`
	Name    string      `json:"name"`
	Price   string      `json:"price"`
	SKU     string      `json:"sku"`
	Offers  SchemaOffer `json:"offers"`
	Brand   SchemaBrand `json:"brand"`
}

// BuildProductSchema mirrors the page's pricing display: when the
// variant was selected explicitly the schema reflects that variant,
// otherwise the product-level values.
func BuildProductSchema(p *variant.Product, active *variant.Variant, explicit bool, baseURL, siteTitle string) *ProductSchema {
	if p == nil {
		return nil
	}

	price := p.PriceCents
	sku := p.SKU
	inStock := p.InStock
	url := fmt.Sprintf("%s/products/%s", baseURL, p.Slug)

	if explicit && active != nil {
		price = active.PriceCents
		sku = active.SKU
		inStock = active.InStock
		url = fmt.Sprintf("%s?variant=%d", url, active.ID)
	}

	availability := "http://schema.org/SoldOut"
	if inStock {
		availability = "http://schema.org/InStock"
	}

	return &ProductSchema{
		Context: "http://schema.org",
		Type:    "Product",
		Name:    p.Title,
		Price:   centsToPrice(price),
		SKU:     sku,
		Offers: SchemaOffer{
			Type:          "Offer",
			URL:           url,
			Availability:  availability,
			Price:         centsToPrice(price),
			PriceCurrency: "USD",
		},
		Brand: SchemaBrand{
			Type: "Brand",
			Name: siteTitle,
		},
	}
}

func centsToPrice(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}
