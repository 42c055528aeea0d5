package service

import (
	"log/slog"
	"net/http"

	"github.com/greenline-goods/storefront/internal/analytics"
	"github.com/greenline-goods/storefront/internal/cart"
	"github.com/greenline-goods/storefront/internal/handlers"
	"github.com/greenline-goods/storefront/internal/recharge"
	"github.com/greenline-goods/storefront/internal/sanity"
	"github.com/greenline-goods/storefront/internal/session"
	"github.com/greenline-goods/storefront/internal/shopify"
	"github.com/greenline-goods/storefront/internal/variant"
	"github.com/greenline-goods/storefront/storage"
	"github.com/labstack/echo/v4"
)

type Service struct {
	config   *Config
	kv       storage.KV
	sessions *session.Manager
	registry *session.Registry

	cartHandler    *handlers.CartHandler
	productHandler *handlers.ProductHandler
	proxyHandler   *handlers.ProxyHandler
}

func New(kv storage.KV, config *Config) *Service {
	logger := slog.Default()

	storefront := shopify.NewClient(config.Shopify.StoreID, config.Shopify.StorefrontToken)
	admin := shopify.NewAdminClient(config.Shopify.StoreID, config.Shopify.AdminToken)
	plans := recharge.NewClient(config.Recharge.APIToken)
	catalog := sanity.NewClient(config.Sanity.ProjectID, config.Sanity.Dataset)

	var sink analytics.Sink = analytics.NopSink{}
	if config.Analytics.CollectorURL != "" {
		sink = analytics.NewHTTPSink(config.Analytics.CollectorURL, config.Analytics.ContainerID)
	}

	sessions := session.NewManager(config.Session.Secret)
	registry := session.NewRegistry(func(shopperID string) *cart.Coordinator {
		return cart.NewCoordinator(storefront, catalog, kv, shopperID, logger)
	})

	inventorySource := handlers.NewInventorySource(admin, plans, logger)
	inventoryFetcher := variant.NewFetcher(inventorySource, logger)

	currency := config.Analytics.Currency

	return &Service{
		config:   config,
		kv:       kv,
		sessions: sessions,
		registry: registry,
		cartHandler: handlers.NewCartHandler(
			sessions, registry, sink, kv, currency, logger,
		),
		productHandler: handlers.NewProductHandler(
			catalog, inventoryFetcher, sessions, sink, kv,
			currency, config.BaseURL, config.SiteTitle, logger,
		),
		proxyHandler: handlers.NewProxyHandler(inventorySource, logger),
	}
}

func (s *Service) RegisterRoutes(e *echo.Echo) {
	// Visit tracking feeds analytics "list" attribution and UTM
	// forwarding; it must run before any handler reads the session store.
	e.Use(s.trackVisitMiddleware())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Cart
	e.GET("/api/cart", s.cartHandler.HandleGetCart)
	e.GET("/api/cart/checkout", s.cartHandler.HandleCheckout)
	e.POST("/api/cart/items", s.cartHandler.HandleAddItem)
	e.PUT("/api/cart/items/:lineID", s.cartHandler.HandleUpdateItem)
	e.DELETE("/api/cart/items/:lineID", s.cartHandler.HandleRemoveItem)

	// Product pages
	e.GET("/products/:slug", s.productHandler.HandleProductPage)
	e.GET("/api/products", s.productHandler.HandleProductListing)
	e.POST("/api/analytics/select-item", s.productHandler.HandleSelectItem)

	// Upstream proxies
	e.GET("/api/shopify/product-inventory", s.proxyHandler.HandleProductInventory)
	e.GET("/api/shopify/shop", s.proxyHandler.HandleShop)
}
