package middleware

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"

	"github.com/dom-retail/domcredsys/internal/config"
	"github.com/dom-retail/domcredsys/internal/domain"
	"github.com/dom-retail/domcredsys/internal/service"
)

const (
	sessionKeyUserCode      = "user_code"
	sessionKeyDisplayName   = "display_name"
	sessionKeyIsAdmin       = "is_admin"
	sessionKeySelectedStore = "selected_store"

	actingUserKey = "acting_user"
)

// Guard authorizes privileged routes. Session values are treated as claims
// and re-validated against the users table on every request; any failure
// clears the session and redirects to login.
type Guard struct {
	store sessions.Store
	auth  *service.AuthService
}

func NewGuard(store sessions.Store, auth *service.AuthService) *Guard {
	return &Guard{store: store, auth: auth}
}

func (g *Guard) RequireUser() gin.HandlerFunc {
	return g.require(domain.CapabilityUser)
}

func (g *Guard) RequireAdmin() gin.HandlerFunc {
	return g.require(domain.CapabilityAdmin)
}

func (g *Guard) require(capability domain.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, _ := g.store.Get(c.Request, config.SessionName)
		claims := ClaimsFrom(session)

		actor, err := g.auth.Authorize(c.Request.Context(), claims, capability)
		if err != nil {
			ClearClaims(session)
			if err := session.Save(c.Request, c.Writer); err != nil {
				slog.Error("failed to clear session", "error", err)
			}
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}

		c.Set(actingUserKey, actor)
		c.Next()
	}
}

// ActingUser extracts the validated identity set by the guard.
func ActingUser(c *gin.Context) *domain.ActingUser {
	a, ok := c.Get(actingUserKey)
	if !ok {
		return nil
	}
	actor, ok := a.(*domain.ActingUser)
	if !ok {
		return nil
	}
	return actor
}

// ClaimsFrom reads the cached identity claims out of a session.
func ClaimsFrom(s *sessions.Session) domain.SessionClaims {
	claims := domain.SessionClaims{}
	if v, ok := s.Values[sessionKeyUserCode].(string); ok {
		claims.UserCode = v
	}
	if v, ok := s.Values[sessionKeyDisplayName].(string); ok {
		claims.DisplayName = v
	}
	if v, ok := s.Values[sessionKeyIsAdmin].(bool); ok {
		claims.IsAdmin = v
	}
	if v, ok := s.Values[sessionKeySelectedStore].(string); ok {
		claims.SelectedStore = v
	}
	return claims
}

// SetClaims writes identity claims into a session.
func SetClaims(s *sessions.Session, claims domain.SessionClaims) {
	s.Values[sessionKeyUserCode] = claims.UserCode
	s.Values[sessionKeyDisplayName] = claims.DisplayName
	s.Values[sessionKeyIsAdmin] = claims.IsAdmin
	s.Values[sessionKeySelectedStore] = claims.SelectedStore
}

// SetSelectedStore updates only the store selection.
func SetSelectedStore(s *sessions.Session, storeID string) {
	s.Values[sessionKeySelectedStore] = storeID
}

// ClearClaims removes the identity claims but leaves pending flash messages
// intact.
func ClearClaims(s *sessions.Session) {
	delete(s.Values, sessionKeyUserCode)
	delete(s.Values, sessionKeyDisplayName)
	delete(s.Values, sessionKeyIsAdmin)
	delete(s.Values, sessionKeySelectedStore)
}
