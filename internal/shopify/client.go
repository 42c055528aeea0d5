package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	apiVersion     = "2021-10"
	defaultTimeout = 30 * time.Second
)

// Client talks to the Storefront GraphQL API. It owns no state beyond
// credentials; callers hold the cart id.
type Client struct {
	endpoint   string
	token      string
	httpClient *http.Client
}

// NewClient builds a Storefront client for the given store id
// (the "<store>" in <store>.myshopify.com).
func NewClient(storeID, token string) *Client {
	return &Client{
		endpoint: fmt.Sprintf("https://%s.myshopify.com/api/%s/graphql.json", storeID, apiVersion),
		token:    token,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

// NewClientWithEndpoint is used by tests to point at a local server.
func NewClientWithEndpoint(endpoint, token string) *Client {
	c := NewClient("test", token)
	c.endpoint = endpoint
	return c
}

func (c *Client) IsConfigured() bool {
	return c.token != ""
}

type graphQLRequest struct {
	OperationName string         `json:"operationName"`
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables,omitempty"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

func (c *Client) do(ctx context.Context, operationName, query string, variables map[string]any, out any) error {
	body, err := json.Marshal(graphQLRequest{
		OperationName: operationName,
		Query:         query,
		Variables:     variables,
	})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	endpoint := c.endpoint
	if operationName == "cartCreate" {
		if utm := utmFromContext(ctx); len(utm) > 0 {
			endpoint += "?" + utm.Encode()
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Storefront-Access-Token", c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("storefront API error %d: %s", resp.StatusCode, string(respBody))
	}

	var envelope graphQLResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if len(envelope.Errors) > 0 {
		return fmt.Errorf("graphql error: %s", envelope.Errors[0].Message)
	}

	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("decode %s payload: %w", operationName, err)
	}
	return nil
}

type mutationPayload struct {
	Cart       *Cart      `json:"cart"`
	UserErrors UserErrors `json:"userErrors"`
}

func (p mutationPayload) result(operationName string) (*Cart, error) {
	if len(p.UserErrors) > 0 {
		return nil, p.UserErrors
	}
	if p.Cart == nil {
		return nil, fmt.Errorf("%s returned no cart", operationName)
	}
	return p.Cart, nil
}

// CreateCart creates a fresh, empty cart.
func (c *Client) CreateCart(ctx context.Context) (*Cart, error) {
	var data struct {
		CartCreate mutationPayload `json:"cartCreate"`
	}
	if err := c.do(ctx, "cartCreate", queryCartCreate, nil, &data); err != nil {
		return nil, err
	}
	return data.CartCreate.result("cartCreate")
}

// FetchCart loads a cart by id. A nil cart with nil error means the id no
// longer resolves upstream.
func (c *Client) FetchCart(ctx context.Context, cartID string) (*Cart, error) {
	var data struct {
		Cart *Cart `json:"cart"`
	}
	if err := c.do(ctx, "fetchCart", queryFetchCart, map[string]any{"id": cartID}, &data); err != nil {
		return nil, err
	}
	return data.Cart, nil
}

// AddLines appends lines to the cart and returns the authoritative cart.
func (c *Client) AddLines(ctx context.Context, cartID string, lines []LineInput) (*Cart, error) {
	var data struct {
		CartLinesAdd mutationPayload `json:"cartLinesAdd"`
	}
	variables := map[string]any{"cartId": cartID, "lines": lines}
	if err := c.do(ctx, "cartLinesAdd", queryCartLinesAdd, variables, &data); err != nil {
		return nil, err
	}
	return data.CartLinesAdd.result("cartLinesAdd")
}

// UpdateLines rewrites quantities on existing lines.
func (c *Client) UpdateLines(ctx context.Context, cartID string, lines []LineUpdate) (*Cart, error) {
	var data struct {
		CartLinesUpdate mutationPayload `json:"cartLinesUpdate"`
	}
	variables := map[string]any{"cartId": cartID, "lines": lines}
	if err := c.do(ctx, "cartLinesUpdate", queryCartLinesUpdate, variables, &data); err != nil {
		return nil, err
	}
	return data.CartLinesUpdate.result("cartLinesUpdate")
}

// RemoveLines deletes lines by line id.
func (c *Client) RemoveLines(ctx context.Context, cartID string, lineIDs []string) (*Cart, error) {
	var data struct {
		CartLinesRemove mutationPayload `json:"cartLinesRemove"`
	}
	variables := map[string]any{"cartId": cartID, "lineIds": lineIDs}
	if err := c.do(ctx, "cartLinesRemove", queryCartLinesRemove, variables, &data); err != nil {
		return nil, err
	}
	return data.CartLinesRemove.result("cartLinesRemove")
}
