package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dom-retail/domcredsys/internal/config"
	"github.com/dom-retail/domcredsys/internal/domain"
	"github.com/dom-retail/domcredsys/internal/middleware"
)

// ShowLogin renders the login page. Any stale session is cleared first so a
// new login can never ride on leftover claims.
func (h *Handler) ShowLogin(c *gin.Context) {
	s := h.session(c)
	middleware.ClearClaims(s)
	success := flashStrings(s.Flashes(config.FlashSuccess))
	failures := flashStrings(s.Flashes(config.FlashError))
	h.save(c, s)

	c.HTML(http.StatusOK, "login.html", gin.H{
		"FlashesSuccess": success,
		"FlashesError":   failures,
	})
}

func (h *Handler) Login(c *gin.Context) {
	code := c.PostForm("code")
	password := c.PostForm("password")

	user, stores, err := h.auth.Login(c.Request.Context(), code, password)
	if err != nil {
		if err == domain.ErrInvalidCredentials {
			h.redirectFlash(c, "/login", config.FlashError, "Invalid code or password")
			return
		}
		slog.Error("login failed", "error", err)
		h.notifier.Error(err, "login")
		h.redirectFlash(c, "/login", config.FlashError, "Error logging in. Please try again.")
		return
	}

	selected := ""
	if len(stores) > 0 {
		selected = stores[0].StoreID
	}

	s := h.session(c)
	middleware.SetClaims(s, domain.SessionClaims{
		UserCode:      user.Code,
		DisplayName:   user.DisplayName,
		IsAdmin:       user.IsAdmin,
		SelectedStore: selected,
	})
	s.AddFlash("Login successful!", config.FlashSuccess)
	h.save(c, s)

	slog.Info("user logged in", "code", user.Code, "is_admin", user.IsAdmin)
	c.Redirect(http.StatusSeeOther, "/dashboard")
}

func (h *Handler) Logout(c *gin.Context) {
	s := h.session(c)
	middleware.ClearClaims(s)
	s.AddFlash("Logged out successfully", config.FlashSuccess)
	h.save(c, s)
	c.Redirect(http.StatusSeeOther, "/login")
}
