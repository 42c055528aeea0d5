// Package session identifies shoppers across requests and hands each one
// its cart coordinator.
package session

import (
	"fmt"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	"github.com/oklog/ulid/v2"
)

const (
	sessionName = "storefront_session"
	shopperKey  = "shopper_id"
)

// Manager issues and reads the shopper identity cookie.
type Manager struct {
	store sessions.Store
}

func NewManager(secret string) *Manager {
	store := sessions.NewCookieStore([]byte(secret))

	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 30, // 30 days
		HttpOnly: true,
		Secure:   false, // Set to true in production with HTTPS
		SameSite: 2,     // Lax mode
	}

	return &Manager{store: store}
}

// ShopperID returns the shopper id from the cookie, minting and saving a
// new one on first contact.
func (m *Manager) ShopperID(c echo.Context) (string, error) {
	session, err := m.store.Get(c.Request(), sessionName)
	if err != nil {
		return "", fmt.Errorf("failed to get session: %w", err)
	}

	if id, ok := session.Values[shopperKey].(string); ok && id != "" {
		return id, nil
	}

	id := ulid.Make().String()
	session.Values[shopperKey] = id

	if err := session.Save(c.Request(), c.Response()); err != nil {
		return "", fmt.Errorf("failed to save session: %w", err)
	}
	return id, nil
}
