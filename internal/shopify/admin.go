package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// AdminClient talks to the Admin REST API for inventory and shop metadata.
// These calls carry privileged credentials and only ever run server-side,
// behind the proxy handlers.
type AdminClient struct {
	baseURL    string
	storeID    string
	token      string
	httpClient *http.Client
}

func NewAdminClient(storeID, token string) *AdminClient {
	return &AdminClient{
		baseURL: fmt.Sprintf("https://%s.myshopify.com/admin/api/%s", storeID, apiVersion),
		storeID: storeID,
		token:   token,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// NewAdminClientWithBaseURL is used by tests to point at a local server.
func NewAdminClientWithBaseURL(baseURL, token string) *AdminClient {
	c := NewAdminClient("test", token)
	c.baseURL = baseURL
	return c
}

func (c *AdminClient) IsConfigured() bool {
	return c.storeID != "" && c.token != ""
}

// AdminVariant is the inventory-bearing variant record from the Admin API.
type AdminVariant struct {
	ID                int64  `json:"id"`
	ProductID         int64  `json:"product_id"`
	Title             string `json:"title"`
	SKU               string `json:"sku"`
	Price             string `json:"price"`
	Position          int    `json:"position"`
	InventoryQuantity int    `json:"inventory_quantity"`
	InventoryPolicy   string `json:"inventory_policy"`
}

type adminProductResponse struct {
	Product struct {
		ID       int64          `json:"id"`
		Title    string         `json:"title"`
		Variants []AdminVariant `json:"variants"`
	} `json:"product"`
}

func (c *AdminClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Access-Token", c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("admin API error %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// ProductVariants fetches the live variant records for a product.
func (c *AdminClient) ProductVariants(ctx context.Context, productID int64) ([]AdminVariant, error) {
	var out adminProductResponse
	if err := c.get(ctx, fmt.Sprintf("/products/%d.json", productID), &out); err != nil {
		return nil, err
	}
	return out.Product.Variants, nil
}

// Shop fetches the raw shop object (currency and friends), passed through
// untouched by the proxy handler.
func (c *AdminClient) Shop(ctx context.Context) (map[string]any, error) {
	var out struct {
		Shop map[string]any `json:"shop"`
	}
	if err := c.get(ctx, "/shop.json", &out); err != nil {
		return nil, err
	}
	return out.Shop, nil
}
