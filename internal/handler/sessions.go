package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"

	"github.com/dom-retail/domcredsys/internal/config"
	"github.com/dom-retail/domcredsys/internal/middleware"
)

func (h *Handler) session(c *gin.Context) *sessions.Session {
	// Get never fails for cookie stores; a bad cookie yields a fresh session.
	s, _ := h.store.Get(c.Request, config.SessionName)
	return s
}

func (h *Handler) save(c *gin.Context, s *sessions.Session) {
	if err := s.Save(c.Request, c.Writer); err != nil {
		slog.Error("failed to save session", "error", err)
	}
}

// redirectFlash queues a flash message and redirects, the POST-redirect-GET
// tail of every mutating handler.
func (h *Handler) redirectFlash(c *gin.Context, target, bucket, msg string) {
	s := h.session(c)
	s.AddFlash(msg, bucket)
	h.save(c, s)
	c.Redirect(http.StatusSeeOther, target)
}

// render pops pending flashes into the template data and renders the page.
func (h *Handler) render(c *gin.Context, name string, data gin.H) {
	s := h.session(c)
	success := flashStrings(s.Flashes(config.FlashSuccess))
	failures := flashStrings(s.Flashes(config.FlashError))
	h.save(c, s)

	data["FlashesSuccess"] = success
	data["FlashesError"] = failures
	if actor := middleware.ActingUser(c); actor != nil {
		data["Actor"] = actor
	}
	c.HTML(http.StatusOK, name, data)
}

func flashStrings(flashes []interface{}) []string {
	out := make([]string, 0, len(flashes))
	for _, f := range flashes {
		if s, ok := f.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
