package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"

	"github.com/dom-retail/domcredsys/internal/config"
	"github.com/dom-retail/domcredsys/internal/middleware"
	"github.com/dom-retail/domcredsys/internal/service"
	"github.com/dom-retail/domcredsys/internal/telegram"
)

// Handler holds all dependencies needed by the web handlers.
type Handler struct {
	cfg      *config.Config
	store    sessions.Store
	auth     *service.AuthService
	credits  *service.CreditService
	admin    *service.AdminService
	notifier *telegram.Notifier
}

// Deps contains all dependencies required to construct a Handler.
type Deps struct {
	Cfg      *config.Config
	Store    sessions.Store
	Auth     *service.AuthService
	Credits  *service.CreditService
	Admin    *service.AdminService
	Notifier *telegram.Notifier
}

// New creates a new Handler from the provided dependencies.
func New(deps Deps) *Handler {
	return &Handler{
		cfg:      deps.Cfg,
		store:    deps.Store,
		auth:     deps.Auth,
		credits:  deps.Credits,
		admin:    deps.Admin,
		notifier: deps.Notifier,
	}
}

// Routes registers all routes. Every mutating route is POST-only and
// redirects back to a GET view with a flash message.
func (h *Handler) Routes(r *gin.Engine, guard *middleware.Guard) {
	r.GET("/login", h.ShowLogin)
	r.POST("/login", h.Login)
	r.GET("/logout", h.Logout)

	authed := r.Group("/", guard.RequireUser())
	authed.GET("", h.Index)
	authed.GET("dashboard", h.Dashboard)
	authed.POST("create-credit", h.CreateCredit)
	authed.POST("claim-credit", h.ClaimCredit)
	authed.POST("unclaim-credit", h.UnclaimCredit)
	authed.POST("select-store", h.SelectStore)

	admin := r.Group("/admin", guard.RequireAdmin())
	admin.GET("", h.AdminHome)
	admin.GET("/users", h.AdminUsers)
	admin.POST("/users", h.AdminCreateUser)
	admin.GET("/users/:code/edit", h.AdminEditUser)
	admin.POST("/users/:code/update", h.AdminUpdateUser)
	admin.POST("/users/:code/delete", h.AdminDeleteUser)
	admin.GET("/stores", h.AdminStores)
	admin.POST("/stores", h.AdminCreateStore)
	admin.POST("/stores/:id/delete", h.AdminDeleteStore)
	admin.POST("/assignments", h.AdminAssign)
	admin.POST("/assignments/delete", h.AdminUnassign)
}
