package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dom-retail/domcredsys/internal/config"
	"github.com/dom-retail/domcredsys/internal/domain"
	"github.com/dom-retail/domcredsys/internal/middleware"
)

func (h *Handler) Index(c *gin.Context) {
	c.Redirect(http.StatusFound, "/dashboard")
}

func (h *Handler) Dashboard(c *gin.Context) {
	actor := middleware.ActingUser(c)
	ctx := c.Request.Context()

	stores, err := h.auth.AuthorizedStores(ctx, actor)
	if err != nil {
		slog.Error("dashboard stores", "error", err, "user", actor.Code)
	}

	credits, err := h.credits.ListByStore(ctx, actor.SelectedStore)
	if err != nil {
		slog.Error("dashboard credits", "error", err, "store", actor.SelectedStore)
	}

	h.render(c, "dashboard.html", gin.H{
		"Stores":        stores,
		"Credits":       credits,
		"SelectedStore": actor.SelectedStore,
	})
}

func (h *Handler) SelectStore(c *gin.Context) {
	actor := middleware.ActingUser(c)
	storeID := c.PostForm("store_id")

	store, err := h.auth.SelectStore(c.Request.Context(), actor, storeID)
	if err != nil {
		var ve *domain.ValidationError
		switch {
		case errors.As(err, &ve):
			h.redirectFlash(c, "/dashboard", config.FlashError, ve.Msg)
		case err == domain.ErrForbidden:
			h.redirectFlash(c, "/dashboard", config.FlashError, "You do not have access to that store")
		default:
			slog.Error("select store", "error", err, "user", actor.Code)
			h.redirectFlash(c, "/dashboard", config.FlashError, "Error changing store. Please try again.")
		}
		return
	}

	s := h.session(c)
	middleware.SetSelectedStore(s, store.StoreID)
	s.AddFlash(fmt.Sprintf("Store changed to %s", store.Name), config.FlashSuccess)
	h.save(c, s)
	c.Redirect(http.StatusSeeOther, "/dashboard")
}
