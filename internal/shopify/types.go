package shopify

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Wire types for the Storefront cart API (2021-10).

type Money struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currencyCode"`
}

// Cents converts the decimal amount string to integer minor units.
func (m Money) Cents() (int64, error) {
	if m.Amount == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(m.Amount), 64)
	if err != nil {
		return 0, fmt.Errorf("parse money amount %q: %w", m.Amount, err)
	}
	return int64(math.Round(f * 100)), nil
}

type SellingPlan struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type PriceAdjustment struct {
	Price            Money  `json:"price"`
	CompareAtPrice   *Money `json:"compareAtPrice"`
	PerDeliveryPrice *Money `json:"perDeliveryPrice"`
}

type SellingPlanAllocation struct {
	SellingPlan      SellingPlan       `json:"sellingPlan"`
	PriceAdjustments []PriceAdjustment `json:"priceAdjustments"`
}

type VariantNode struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	SKU   string `json:"sku"`
}

type VariantEdge struct {
	Node VariantNode `json:"node"`
}

type ProductRef struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Vendor      string `json:"vendor"`
	ProductType string `json:"productType"`
	Variants    struct {
		Edges []VariantEdge `json:"edges"`
	} `json:"variants"`
}

type Merchandise struct {
	ID      string     `json:"id"`
	Product ProductRef `json:"product"`
}

type Line struct {
	ID                    string                 `json:"id"`
	Quantity              int                    `json:"quantity"`
	Merchandise           Merchandise            `json:"merchandise"`
	SellingPlanAllocation *SellingPlanAllocation `json:"sellingPlanAllocation"`
}

type LineEdge struct {
	Node Line `json:"node"`
}

type EstimatedCost struct {
	TotalAmount     Money  `json:"totalAmount"`
	SubtotalAmount  Money  `json:"subtotalAmount"`
	TotalTaxAmount  *Money `json:"totalTaxAmount"`
	TotalDutyAmount *Money `json:"totalDutyAmount"`
}

type BuyerIdentity struct {
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	CountryCode string `json:"countryCode"`
	Customer    *struct {
		ID string `json:"id"`
	} `json:"customer"`
}

type Cart struct {
	ID          string     `json:"id"`
	CheckoutURL string     `json:"checkoutUrl"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	CompletedAt *time.Time `json:"completedAt"`
	Lines       struct {
		Edges []LineEdge `json:"edges"`
	} `json:"lines"`
	EstimatedCost EstimatedCost `json:"estimatedCost"`
	BuyerIdentity BuyerIdentity `json:"buyerIdentity"`
}

// LineInput is one entry for cartLinesAdd.
type LineInput struct {
	MerchandiseID string `json:"merchandiseId"`
	Quantity      int    `json:"quantity"`
	SellingPlanID string `json:"sellingPlanId,omitempty"`
}

// LineUpdate is one entry for cartLinesUpdate.
type LineUpdate struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}

// UserError is a structured rejection returned inside a mutation payload.
type UserError struct {
	Code    string   `json:"code"`
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

// UserErrors is the userErrors list from a mutation payload. A non-empty
// list is a failure even when the payload also carries a cart.
type UserErrors []UserError

func (e UserErrors) Error() string {
	if len(e) == 0 {
		return "shopify: user error"
	}
	first := e[0]
	if first.Code != "" {
		return fmt.Sprintf("shopify: %s: %s", first.Code, first.Message)
	}
	return "shopify: " + first.Message
}
