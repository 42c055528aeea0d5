package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/greenline-goods/storefront/internal/analytics"
	"github.com/greenline-goods/storefront/internal/cart"
	"github.com/greenline-goods/storefront/internal/session"
	"github.com/greenline-goods/storefront/internal/shopify"
	"github.com/greenline-goods/storefront/storage"
	"github.com/labstack/echo/v4"
)

// CartHandler exposes the session cart as a JSON API. Every request
// resolves the shopper's coordinator; the coordinator owns all remote
// interaction.
type CartHandler struct {
	sessions *session.Manager
	registry *session.Registry
	sink     analytics.Sink
	kv       storage.KV
	currency string
	logger   *slog.Logger
}

func NewCartHandler(sessions *session.Manager, registry *session.Registry, sink analytics.Sink, kv storage.KV, currency string, logger *slog.Logger) *CartHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CartHandler{
		sessions: sessions,
		registry: registry,
		sink:     sink,
		kv:       kv,
		currency: currency,
		logger:   logger,
	}
}

func (h *CartHandler) coordinator(c echo.Context) (*cart.Coordinator, string, error) {
	shopperID, err := h.sessions.ShopperID(c)
	if err != nil {
		return nil, "", err
	}
	return h.registry.Coordinator(shopperID), shopperID, nil
}

// HandleGetCart serves GET /api/cart.
func (h *CartHandler) HandleGetCart(c echo.Context) error {
	coord, _, err := h.coordinator(c)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "session unavailable"})
	}

	if err := coord.Init(c.Request().Context()); err != nil {
		h.logger.Error("cart init failed", "error", err)
		return c.JSON(http.StatusBadGateway, errorResponse{Error: "cart unavailable"})
	}

	return c.JSON(http.StatusOK, coord.Snapshot())
}

// HandleCheckout serves GET /api/cart/checkout: the handoff URL.
func (h *CartHandler) HandleCheckout(c echo.Context) error {
	coord, _, err := h.coordinator(c)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "session unavailable"})
	}

	if err := coord.Init(c.Request().Context()); err != nil {
		h.logger.Error("cart init failed", "error", err)
		return c.JSON(http.StatusBadGateway, errorResponse{Error: "cart unavailable"})
	}

	snapshot := coord.Snapshot()
	if snapshot.CheckoutURL == "" {
		return c.JSON(http.StatusConflict, errorResponse{Error: "no checkout available"})
	}
	return c.JSON(http.StatusOK, map[string]string{"checkoutUrl": snapshot.CheckoutURL})
}

type addItemRequest struct {
	VariantID int64 `json:"variantId"`
	Quantity  int   `json:"quantity"`
	Subscribe bool  `json:"subscribe"`
	Product   struct {
		ID            int64  `json:"id"`
		Title         string `json:"title"`
		Vendor        string `json:"vendor"`
		ProductType   string `json:"productType"`
		PriceCents    int64  `json:"price"`
		ImageURL      string `json:"imageUrl"`
		SellingPlanID int64  `json:"sellingPlanId"`
	} `json:"product"`
}

// HandleAddItem serves POST /api/cart/items.
func (h *CartHandler) HandleAddItem(c echo.Context) error {
	var req addItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}

	coord, shopperID, err := h.coordinator(c)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "session unavailable"})
	}

	ctx := c.Request().Context()
	addErr := coord.AddItem(ctx, cart.AddInput{
		VariantID:     req.VariantID,
		Quantity:      req.Quantity,
		Subscribe:     req.Subscribe,
		SellingPlanID: req.Product.SellingPlanID,
	})
	if addErr != nil {
		return h.mutationError(c, addErr)
	}

	snapshot := coord.Snapshot()

	prevPath, _ := h.kv.Get(ctx, shopperID, storage.PrevPathKey)
	if prevPath == "" {
		prevPath = "/"
	}

	product := analytics.Product{
		Name:      req.Product.Title,
		ProductID: strconv.FormatInt(req.Product.ID, 10),
		VariantID: strconv.FormatInt(req.VariantID, 10),
		Image:     req.Product.ImageURL,
		Price:     float64(req.Product.PriceCents) / 100,
		Brand:     req.Product.Vendor,
		Category:  req.Product.ProductType,
		Quantity:  req.Quantity,
	}
	if line := findLineByVariant(snapshot, req.VariantID); line != nil {
		product.Variant = line.Product.VariantTitle
	}

	event := analytics.NewAddToCart(h.currency, prevPath, product)
	if err := h.sink.Publish(ctx, event); err != nil {
		h.logger.Warn("analytics publish failed", "event", event.Event, "error", err)
	}

	return c.JSON(http.StatusOK, snapshot)
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

// HandleUpdateItem serves PUT /api/cart/items/:lineID.
func (h *CartHandler) HandleUpdateItem(c echo.Context) error {
	var req updateItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}

	coord, _, err := h.coordinator(c)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "session unavailable"})
	}

	ctx := c.Request().Context()
	if err := coord.UpdateItem(ctx, c.Param("lineID"), req.Quantity); err != nil {
		return h.mutationError(c, err)
	}

	return c.JSON(http.StatusOK, coord.Snapshot())
}

// HandleRemoveItem serves DELETE /api/cart/items/:lineID.
func (h *CartHandler) HandleRemoveItem(c echo.Context) error {
	coord, shopperID, err := h.coordinator(c)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "session unavailable"})
	}

	ctx := c.Request().Context()
	if err := coord.Init(ctx); err != nil {
		h.logger.Error("cart init failed", "error", err)
		return c.JSON(http.StatusBadGateway, errorResponse{Error: "cart unavailable"})
	}

	lineID := c.Param("lineID")
	line := coord.Snapshot().FindLine(lineID)
	if line == nil {
		return c.JSON(http.StatusNotFound, errorResponse{Error: "line not found"})
	}

	if err := coord.RemoveItem(ctx, *line); err != nil {
		return h.mutationError(c, err)
	}

	currentPath, _ := h.kv.Get(ctx, shopperID, storage.CurrentPathKey)
	if currentPath == "" {
		currentPath = "/"
	}

	event := analytics.NewRemoveFromCart(h.currency, currentPath, analytics.Product{
		Name:      line.Product.ProductTitle,
		VariantID: strconv.FormatInt(line.VariantID, 10),
		Image:     line.Product.CartPhotoURL,
		Price:     float64(line.UnitPriceCents) / 100,
		Variant:   line.Product.VariantTitle,
	})
	if err := h.sink.Publish(ctx, event); err != nil {
		h.logger.Warn("analytics publish failed", "event", event.Event, "error", err)
	}

	return c.JSON(http.StatusOK, coord.Snapshot())
}

// mutationError maps coordinator failures onto the API contract: 400 for
// rejected input, 422 for a structured user error from the backend, 502
// for everything else.
func (h *CartHandler) mutationError(c echo.Context, err error) error {
	if errors.Is(err, cart.ErrInvalidArgument) {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	var userErrs shopify.UserErrors
	if errors.As(err, &userErrs) {
		first := userErrs[0]
		return c.JSON(http.StatusUnprocessableEntity, map[string]any{
			"error": first.Message,
			"code":  first.Code,
			"field": first.Field,
		})
	}

	h.logger.Error("cart mutation failed", "error", err)
	return c.JSON(http.StatusBadGateway, errorResponse{Error: "cart service unavailable"})
}

func findLineByVariant(s cart.Session, variantID int64) *cart.LineItem {
	for i := range s.LineItems {
		if s.LineItems[i].VariantID == variantID {
			return &s.LineItems[i]
		}
	}
	return nil
}
