// Package recharge resolves subscription selling plans for products.
package recharge

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

const defaultBaseURL = "https://api.rechargeapps.com"

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewClient(token string) *Client {
	return &Client{
		baseURL: defaultBaseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// NewClientWithBaseURL is used by tests to point at a local server.
func NewClientWithBaseURL(baseURL, token string) *Client {
	c := NewClient(token)
	c.baseURL = baseURL
	return c
}

func (c *Client) IsConfigured() bool {
	return c.token != ""
}

// SellingPlan is a product's subscription offer: the plan to attach to a
// cart line and the recurring-purchase discount it carries.
type SellingPlan struct {
	ID             int64
	DiscountAmount float64
}

type sellingPlanGroupsResponse struct {
	SellingPlanGroups []struct {
		SellingPlans []struct {
			SellingPlanID int64 `json:"selling_plan_id"`
		} `json:"selling_plans"`
	} `json:"selling_plan_groups"`
}

type productsResponse struct {
	Products []struct {
		DiscountAmount float64 `json:"discount_amount"`
	} `json:"products"`
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Recharge-Access-Token", c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("recharge API error %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// ProductSellingPlan looks up the first selling plan offered for a
// product and its discount. Returns nil when the product has no plan.
func (c *Client) ProductSellingPlan(ctx context.Context, productID int64) (*SellingPlan, error) {
	var groups sellingPlanGroupsResponse
	path := "/selling_plan_groups?external_product_id=" + strconv.FormatInt(productID, 10)
	if err := c.get(ctx, path, &groups); err != nil {
		return nil, fmt.Errorf("fetch selling plan groups: %w", err)
	}

	if len(groups.SellingPlanGroups) == 0 || len(groups.SellingPlanGroups[0].SellingPlans) == 0 {
		return nil, nil
	}

	plan := &SellingPlan{
		ID: groups.SellingPlanGroups[0].SellingPlans[0].SellingPlanID,
	}

	var products productsResponse
	path = "/products?shopify_product_ids=" + strconv.FormatInt(productID, 10)
	if err := c.get(ctx, path, &products); err != nil {
		return nil, fmt.Errorf("fetch product discount: %w", err)
	}
	if len(products.Products) > 0 {
		plan.DiscountAmount = products.Products[0].DiscountAmount
	}

	return plan, nil
}
