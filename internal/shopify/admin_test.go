package shopify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductVariants(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products/8675309.json", r.URL.Path)
		assert.Equal(t, "admin-token", r.Header.Get("X-Shopify-Access-Token"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"product":{"id":8675309,"title":"Olive Oil","variants":[
			{"id":1,"product_id":8675309,"title":"500ml","sku":"OO-500","price":"24.00","inventory_quantity":12,"inventory_policy":"deny"},
			{"id":2,"product_id":8675309,"title":"1L","sku":"OO-1000","price":"42.00","inventory_quantity":3,"inventory_policy":"continue"}
		]}}`))
	}))
	defer server.Close()

	client := NewAdminClientWithBaseURL(server.URL, "admin-token")

	variants, err := client.ProductVariants(context.Background(), 8675309)
	require.NoError(t, err)
	require.Len(t, variants, 2)
	assert.Equal(t, "OO-500", variants[0].SKU)
	assert.Equal(t, 3, variants[1].InventoryQuantity)
	assert.Equal(t, "continue", variants[1].InventoryPolicy)
}

func TestShop(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/shop.json", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"shop":{"name":"Greenline Goods","currency":"USD"}}`))
	}))
	defer server.Close()

	client := NewAdminClientWithBaseURL(server.URL, "admin-token")

	shop, err := client.Shop(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "USD", shop["currency"])
}

func TestAdminErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errors":"Not Found"}`, http.StatusNotFound)
	}))
	defer server.Close()

	client := NewAdminClientWithBaseURL(server.URL, "admin-token")

	_, err := client.ProductVariants(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestAdminIsConfigured(t *testing.T) {
	assert.True(t, NewAdminClient("store", "token").IsConfigured())
	assert.False(t, NewAdminClient("store", "").IsConfigured())
	assert.False(t, NewAdminClient("", "token").IsConfigured())
}
