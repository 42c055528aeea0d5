// Package sanity queries the content backend for product display data.
package sanity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/greenline-goods/storefront/internal/variant"
)

const apiVersion = "v2021-10-21"

// Variant is the display record attached to a cart line at
// reconciliation time.
type Variant struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	PriceCents int64  `json:"price"`
	Product    struct {
		Title string `json:"title"`
		Slug  string `json:"slug"`
	} `json:"product"`
	CartPhotoURL string           `json:"photo"`
	Options      []variant.Option `json:"options"`
}

const variantQuery = `*[_type == "productVariant" && variantID == $id][0]{
  "product": *[_type == "product" && productID == ^.productID][0]{
    title,
    "slug": slug.current,
  },
  "id": variantID,
  title,
  price,
  "photo": *[_type == "product" && productID == ^.productID][0].cartPhotos[0].cartPhoto.asset->url,
  options[]{
    name,
    position,
    value
  }
}`

const productQuery = `*[_type == "product" && slug.current == $slug][0]{
  "id": productID,
  title,
  "slug": slug.current,
  sku,
  price,
  "vendor": productVendor,
  productType,
  "imageUrl": cartPhotos[0].cartPhoto.asset->url,
  options[]{
    name,
    position,
    values
  },
  variants[]{
    "id": variantID,
    title,
    sku,
    price,
    options[]{
      name,
      position,
      value
    }
  }
}`

const listingQuery = `*[_type == "product"] | order(title asc){
  "id": productID,
  title,
  "slug": slug.current,
  sku,
  price,
  "vendor": productVendor,
  productType,
  "imageUrl": cartPhotos[0].cartPhoto.asset->url,
  options[]{
    name,
    position,
    values
  },
  variants[]{
    "id": variantID,
    title,
    sku,
    price,
    options[]{
      name,
      position,
      value
    }
  }
}`

type Client struct {
	baseURL    string
	dataset    string
	httpClient *http.Client
}

func NewClient(projectID, dataset string) *Client {
	return &Client{
		baseURL: fmt.Sprintf("https://%s.api.sanity.io", projectID),
		dataset: dataset,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// NewClientWithBaseURL is used by tests to point at a local server.
func NewClientWithBaseURL(baseURL, dataset string) *Client {
	c := NewClient("test", dataset)
	c.baseURL = baseURL
	return c
}

func (c *Client) fetch(ctx context.Context, query string, params map[string]string, out any) error {
	values := url.Values{}
	values.Set("query", query)
	// GROQ params are JSON-encoded values.
	for k, v := range params {
		values.Set("$"+k, v)
	}

	endpoint := fmt.Sprintf("%s/%s/data/query/%s?%s", c.baseURL, apiVersion, c.dataset, values.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("sanity API error %d: %s", resp.StatusCode, string(body))
	}

	var envelope struct {
		Result json.RawMessage `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if len(envelope.Result) == 0 || string(envelope.Result) == "null" {
		return nil
	}

	if err := json.Unmarshal(envelope.Result, out); err != nil {
		return fmt.Errorf("decode query result: %w", err)
	}
	return nil
}

// Variant resolves a numeric variant id to its display record. Returns
// nil when the CMS no longer knows the variant.
func (c *Client) Variant(ctx context.Context, variantID int64) (*Variant, error) {
	var v Variant
	params := map[string]string{"id": strconv.FormatInt(variantID, 10)}
	if err := c.fetch(ctx, variantQuery, params, &v); err != nil {
		return nil, err
	}
	if v.ID == 0 {
		return nil, nil
	}
	return &v, nil
}

// Products returns every product in listing order.
func (c *Client) Products(ctx context.Context) ([]variant.Product, error) {
	var products []variant.Product
	if err := c.fetch(ctx, listingQuery, nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Product resolves a slug to the page-level product record. Returns nil
// when no product carries the slug.
func (c *Client) Product(ctx context.Context, slug string) (*variant.Product, error) {
	var p variant.Product
	params := map[string]string{"slug": strconv.Quote(slug)}
	if err := c.fetch(ctx, productQuery, params, &p); err != nil {
		return nil, err
	}
	if p.ID == 0 {
		return nil, nil
	}
	return &p, nil
}
