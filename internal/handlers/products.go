package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/greenline-goods/storefront/internal/analytics"
	"github.com/greenline-goods/storefront/internal/session"
	"github.com/greenline-goods/storefront/internal/variant"
	"github.com/greenline-goods/storefront/storage"
	"github.com/labstack/echo/v4"
)

// ProductCatalog resolves CMS product records.
type ProductCatalog interface {
	Product(ctx context.Context, slug string) (*variant.Product, error)
	Products(ctx context.Context) ([]variant.Product, error)
}

// ProductHandler serves the product page payload: CMS product merged
// with live inventory, the resolved active variant, and the SEO schema.
type ProductHandler struct {
	catalog   ProductCatalog
	inventory *variant.Fetcher
	sessions  *session.Manager
	sink      analytics.Sink
	kv        storage.KV
	currency  string
	baseURL   string
	siteTitle string
	logger    *slog.Logger
}

func NewProductHandler(catalog ProductCatalog, inventory *variant.Fetcher, sessions *session.Manager, sink analytics.Sink, kv storage.KV, currency, baseURL, siteTitle string, logger *slog.Logger) *ProductHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProductHandler{
		catalog:   catalog,
		inventory: inventory,
		sessions:  sessions,
		sink:      sink,
		kv:        kv,
		currency:  currency,
		baseURL:   baseURL,
		siteTitle: siteTitle,
		logger:    logger,
	}
}

// requestNavigation adapts the request URL to the resolver's navigation
// capability. ReplaceQuery is shallow: it only rewrites the canonical
// URL reported back to the client.
type requestNavigation struct {
	path  string
	query url.Values
}

func (n *requestNavigation) Query() url.Values { return n.query }
func (n *requestNavigation) ReplaceQuery(q url.Values) { n.query = q }

func (n *requestNavigation) URL() string {
	if len(n.query) == 0 {
		return n.path
	}
	return n.path + "?" + n.query.Encode()
}

type productResponse struct {
	Pending            bool             `json:"pending"`
	Product            *variant.Product `json:"product,omitempty"`
	ActiveVariant      *variant.Variant `json:"activeVariant,omitempty"`
	HasVariantSelector bool             `json:"hasVariantSelector"`
	URL                string           `json:"url,omitempty"`
	Schema             *ProductSchema   `json:"schema,omitempty"`
}

// HandleProductPage serves GET /products/:slug.
//
// Inventory is fetched fresh per page view. Until it arrives the page is
// pending: no stale or partial product data goes out.
func (h *ProductHandler) HandleProductPage(c echo.Context) error {
	ctx := c.Request().Context()
	slug := c.Param("slug")

	product, err := h.catalog.Product(ctx, slug)
	if err != nil {
		h.logger.Error("product lookup failed", "slug", slug, "error", err)
		return c.JSON(http.StatusBadGateway, errorResponse{Error: "catalog unavailable"})
	}
	if product == nil {
		return c.JSON(http.StatusNotFound, errorResponse{Error: "product not found"})
	}

	snapshot, err := h.inventory.Fetch(ctx, product.ID)
	if err != nil {
		// Retry budget spent; the page stays in its loading state.
		h.logger.Warn("inventory unavailable after retries", "product_id", product.ID, "error", err)
		return c.JSON(http.StatusAccepted, productResponse{Pending: true})
	}

	merged := variant.Merge(*product, snapshot)

	nav := &requestNavigation{path: "/products/" + slug, query: c.QueryParams()}
	activeID := variant.Resolve(nav.Query(), &merged)
	if activeID != 0 {
		variant.SetActive(nav, activeID)
	}
	active := merged.FindVariant(activeID)

	h.emitViewItem(c, &merged, active)

	explicit := c.QueryParam("variant") != ""
	return c.JSON(http.StatusOK, productResponse{
		Pending:            false,
		Product:            &merged,
		ActiveVariant:      active,
		HasVariantSelector: merged.HasVariantSelector(),
		URL:                nav.URL(),
		Schema:             BuildProductSchema(&merged, active, explicit, h.baseURL, h.siteTitle),
	})
}

type listingResponse struct {
	Products []variant.Product `json:"products"`
}

// HandleProductListing serves GET /api/products: the shop listing,
// straight from the CMS with no inventory merge.
func (h *ProductHandler) HandleProductListing(c echo.Context) error {
	ctx := c.Request().Context()

	products, err := h.catalog.Products(ctx)
	if err != nil {
		h.logger.Error("product listing failed", "error", err)
		return c.JSON(http.StatusBadGateway, errorResponse{Error: "catalog unavailable"})
	}

	list := c.Request().URL.Path
	impressions := make([]analytics.Product, len(products))
	for i, p := range products {
		impressions[i] = analytics.Product{
			Name:      p.Title,
			ID:        p.SKU,
			ProductID: strconv.FormatInt(p.ID, 10),
			Image:     p.ImageURL,
			Price:     float64(p.PriceCents) / 100,
			Brand:     p.Vendor,
			Category:  p.Type,
		}
	}
	event := analytics.NewViewItemList(h.currency, list, impressions)
	if err := h.sink.Publish(ctx, event); err != nil {
		h.logger.Warn("analytics publish failed", "event", event.Event, "error", err)
	}

	return c.JSON(http.StatusOK, listingResponse{Products: products})
}

type selectItemRequest struct {
	List    string `json:"list"`
	Product struct {
		ID          int64  `json:"id"`
		VariantID   int64  `json:"variantId"`
		Title       string `json:"title"`
		SKU         string `json:"sku"`
		Vendor      string `json:"vendor"`
		ProductType string `json:"productType"`
		PriceCents  int64  `json:"price"`
		ImageURL    string `json:"imageUrl"`
		Position    int    `json:"position"`
	} `json:"product"`
}

// HandleSelectItem serves POST /api/analytics/select-item, fired when a
// shopper clicks through a listing card.
func (h *ProductHandler) HandleSelectItem(c echo.Context) error {
	var req selectItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}

	list := req.List
	if list == "" {
		list = "/"
	}

	payload := analytics.Product{
		Name:      req.Product.Title,
		ID:        req.Product.SKU,
		ProductID: strconv.FormatInt(req.Product.ID, 10),
		Image:     req.Product.ImageURL,
		Price:     float64(req.Product.PriceCents) / 100,
		Brand:     req.Product.Vendor,
		Category:  req.Product.ProductType,
		Position:  req.Product.Position,
	}
	if req.Product.VariantID != 0 {
		payload.VariantID = strconv.FormatInt(req.Product.VariantID, 10)
	}

	ctx := c.Request().Context()
	event := analytics.NewSelectItem(h.currency, list, payload)
	if err := h.sink.Publish(ctx, event); err != nil {
		h.logger.Warn("analytics publish failed", "event", event.Event, "error", err)
	}

	return c.NoContent(http.StatusAccepted)
}

// emitViewItem fires the detail-view event, once per successful merge.
func (h *ProductHandler) emitViewItem(c echo.Context, product *variant.Product, active *variant.Variant) {
	ctx := c.Request().Context()

	prevPath := "/"
	if shopperID, err := h.sessions.ShopperID(c); err == nil {
		if stored, err := h.kv.Get(ctx, shopperID, storage.PrevPathKey); err == nil && stored != "" {
			prevPath = stored
		}
	}

	payload := analytics.Product{
		Name:      product.Title,
		ProductID: strconv.FormatInt(product.ID, 10),
		Image:     product.ImageURL,
		Price:     float64(product.PriceCents) / 100,
		Brand:     product.Vendor,
		Category:  product.Type,
	}
	if active != nil {
		payload.ID = active.SKU
		payload.VariantID = strconv.FormatInt(active.ID, 10)
		payload.Variant = active.Title
	}

	event := analytics.NewViewItem(h.currency, prevPath, payload)
	if err := h.sink.Publish(ctx, event); err != nil {
		h.logger.Warn("analytics publish failed", "event", event.Event, "error", err)
	}
}
