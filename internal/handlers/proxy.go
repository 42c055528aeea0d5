package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// ProxyHandler serves the credentialed upstream passthrough endpoints.
// Credentials never reach the client; a missing setup is a 401 with a
// structured body, never a retry.
type ProxyHandler struct {
	source *InventorySource
	logger *slog.Logger
}

func NewProxyHandler(source *InventorySource, logger *slog.Logger) *ProxyHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProxyHandler{source: source, logger: logger}
}

type errorResponse struct {
	Error string `json:"error"`
}

// HandleProductInventory serves GET /api/shopify/product-inventory?id=.
func (h *ProxyHandler) HandleProductInventory(c echo.Context) error {
	rawID := c.QueryParam("id")
	if rawID == "" {
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: "Product ID required"})
	}

	if !h.source.IsConfigured() {
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: "Shopify API not setup"})
	}

	productID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "Product ID must be numeric"})
	}

	snapshot, err := h.source.ProductInventory(c.Request().Context(), productID)
	if err != nil {
		h.logger.Error("inventory fetch failed", "product_id", productID, "error", err)
		return c.JSON(http.StatusBadGateway, errorResponse{Error: "inventory unavailable"})
	}

	return c.JSON(http.StatusOK, snapshot)
}

// HandleShop serves GET /api/shopify/shop: the raw shop object.
func (h *ProxyHandler) HandleShop(c echo.Context) error {
	if !h.source.IsConfigured() {
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: "Shopify API not setup"})
	}

	shop, err := h.source.admin.Shop(c.Request().Context())
	if err != nil {
		h.logger.Error("shop fetch failed", "error", err)
		return c.JSON(http.StatusBadGateway, errorResponse{Error: "shop unavailable"})
	}

	return c.JSON(http.StatusOK, shop)
}
