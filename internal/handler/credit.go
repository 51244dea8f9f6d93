package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/dom-retail/domcredsys/internal/config"
	"github.com/dom-retail/domcredsys/internal/domain"
	"github.com/dom-retail/domcredsys/internal/middleware"
	"github.com/dom-retail/domcredsys/internal/service"
)

func (h *Handler) CreateCredit(c *gin.Context) {
	actor := middleware.ActingUser(c)

	var amount *decimal.Decimal
	if raw := strings.TrimSpace(c.PostForm("amount")); raw != "" {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			h.redirectFlash(c, "/dashboard", config.FlashError, "Invalid amount")
			return
		}
		amount = &d
	}

	var issued time.Time
	if raw := c.PostForm("date_of_issue"); raw != "" {
		d, err := time.Parse("2006-01-02", raw)
		if err != nil {
			h.redirectFlash(c, "/dashboard", config.FlashError, "Invalid date of issue")
			return
		}
		issued = d
	}

	credit, err := h.credits.Create(c.Request.Context(), service.CreateCreditParams{
		StoreID:       actor.SelectedStore,
		Items:         parseItems(c.PostForm("items")),
		Reason:        c.PostForm("reason"),
		Amount:        amount,
		CustomerName:  c.PostForm("customer_name"),
		CustomerPhone: c.PostForm("customer_phone"),
		CreatedBy:     actor.Code,
		DateOfIssue:   issued,
	})
	if err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			h.redirectFlash(c, "/dashboard", config.FlashError, ve.Msg)
			return
		}
		slog.Error("create credit", "error", err, "store", actor.SelectedStore, "user", actor.Code)
		h.notifier.Error(err, "create credit")
		h.redirectFlash(c, "/dashboard", config.FlashError, "Error creating credit. Please try again.")
		return
	}

	h.notifier.CreditCreated(credit.Code, credit.StoreID, actor.ClaimantName())
	h.redirectFlash(c, "/dashboard", config.FlashSuccess,
		fmt.Sprintf("Credit created successfully! Code: %s", credit.Code))
}

func (h *Handler) ClaimCredit(c *gin.Context) {
	actor := middleware.ActingUser(c)
	code := c.PostForm("code")

	credit, err := h.credits.Claim(c.Request.Context(), code, actor.SelectedStore, actor)
	if err != nil {
		var ve *domain.ValidationError
		switch {
		case errors.As(err, &ve):
			h.redirectFlash(c, "/dashboard", config.FlashError, ve.Msg)
		case err == domain.ErrCreditNotFound:
			h.redirectFlash(c, "/dashboard", config.FlashError,
				fmt.Sprintf("Credit %s not found or already claimed", displayCode(code)))
		default:
			slog.Error("claim credit", "error", err, "store", actor.SelectedStore, "user", actor.Code)
			h.notifier.Error(err, "claim credit")
			h.redirectFlash(c, "/dashboard", config.FlashError, "Error claiming credit. Please try again.")
		}
		return
	}

	h.notifier.CreditClaimed(credit.Code, credit.StoreID, actor.ClaimantName())
	h.redirectFlash(c, "/dashboard", config.FlashSuccess,
		fmt.Sprintf("Credit %s claimed successfully!", credit.Code))
}

func (h *Handler) UnclaimCredit(c *gin.Context) {
	actor := middleware.ActingUser(c)
	code := c.PostForm("code")

	credit, err := h.credits.Unclaim(c.Request.Context(), code, actor.SelectedStore, actor)
	if err != nil {
		var ve *domain.ValidationError
		switch {
		case errors.As(err, &ve):
			h.redirectFlash(c, "/dashboard", config.FlashError, ve.Msg)
		case err == domain.ErrCreditNotFound:
			h.redirectFlash(c, "/dashboard", config.FlashError,
				fmt.Sprintf("Credit %s not found or not claimed", displayCode(code)))
		case err == domain.ErrForbidden:
			h.redirectFlash(c, "/dashboard", config.FlashError,
				"You can only unclaim credits that you claimed")
		default:
			slog.Error("unclaim credit", "error", err, "store", actor.SelectedStore, "user", actor.Code)
			h.notifier.Error(err, "unclaim credit")
			h.redirectFlash(c, "/dashboard", config.FlashError, "Error unclaiming credit. Please try again.")
		}
		return
	}

	h.notifier.CreditUnclaimed(credit.Code, credit.StoreID, actor.ClaimantName())
	h.redirectFlash(c, "/dashboard", config.FlashSuccess,
		fmt.Sprintf("Credit %s unclaimed successfully!", credit.Code))
}

// parseItems accepts the dashboard form's item list either as a JSON array
// (the itemized credit builder) or as plain newline-separated text.
func parseItems(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if strings.HasPrefix(raw, "[") {
		var items []string
		if err := json.Unmarshal([]byte(raw), &items); err == nil {
			return items
		}
	}
	return strings.Split(raw, "\n")
}

func displayCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
