package service

import (
	"log/slog"
	"net/url"
	"strings"

	"github.com/greenline-goods/storefront/internal/shopify"
	"github.com/greenline-goods/storefront/storage"
	"github.com/labstack/echo/v4"
)

// trackVisitMiddleware records the shopper's previous and current path
// and captures UTM attribution params. Stored UTM params ride along on
// the request context so cart creation can forward them to checkout.
func (s *Service) trackVisitMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// API calls are not navigations.
			if strings.HasPrefix(c.Request().URL.Path, "/api/") {
				return s.attachUTM(c, next)
			}

			shopperID, err := s.sessions.ShopperID(c)
			if err != nil {
				slog.Warn("failed to resolve shopper session", "error", err)
				return next(c)
			}

			ctx := c.Request().Context()
			asPath := c.Request().URL.RequestURI()

			current, _ := s.kv.Get(ctx, shopperID, storage.CurrentPathKey)
			// Bail if we're just changing a URL parameter.
			if pathOnly(current) != pathOnly(asPath) {
				if current != "" {
					if err := s.kv.Set(ctx, shopperID, storage.PrevPathKey, current); err != nil {
						slog.Warn("failed to record previous path", "error", err)
					}
				}
				if err := s.kv.Set(ctx, shopperID, storage.CurrentPathKey, asPath); err != nil {
					slog.Warn("failed to record current path", "error", err)
				}
			}

			s.storeUTM(c, shopperID)
			return s.attachUTM(c, next)
		}
	}
}

// storeUTM persists any attribution params present on the request.
func (s *Service) storeUTM(c echo.Context, shopperID string) {
	ctx := c.Request().Context()
	query := c.QueryParams()

	for _, param := range shopify.UTMParams {
		if value := query.Get(param); value != "" {
			if err := s.kv.Set(ctx, shopperID, param, value); err != nil {
				slog.Warn("failed to store utm param", "param", param, "error", err)
			}
		}
	}
}

// attachUTM loads the shopper's stored attribution params into the
// request context for the storefront client.
func (s *Service) attachUTM(c echo.Context, next echo.HandlerFunc) error {
	shopperID, err := s.sessions.ShopperID(c)
	if err != nil {
		return next(c)
	}

	ctx := c.Request().Context()
	utm := url.Values{}
	for _, param := range shopify.UTMParams {
		if value, err := s.kv.Get(ctx, shopperID, param); err == nil && value != "" {
			utm.Set(param, value)
		}
	}

	if len(utm) > 0 {
		c.SetRequest(c.Request().WithContext(shopify.WithUTM(ctx, utm)))
	}
	return next(c)
}

func pathOnly(asPath string) string {
	if i := strings.IndexByte(asPath, '?'); i >= 0 {
		return asPath[:i]
	}
	return asPath
}
