package handler

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/dom-retail/domcredsys/internal/config"
	"github.com/dom-retail/domcredsys/internal/domain"
	"github.com/dom-retail/domcredsys/internal/middleware"
	"github.com/dom-retail/domcredsys/internal/service"
)

func (h *Handler) AdminHome(c *gin.Context) {
	ctx := c.Request.Context()

	users, err := h.admin.ListUsers(ctx)
	if err != nil {
		slog.Error("admin home users", "error", err)
	}
	stores, err := h.admin.ListStores(ctx)
	if err != nil {
		slog.Error("admin home stores", "error", err)
	}
	assignments, err := h.admin.ListAssignments(ctx)
	if err != nil {
		slog.Error("admin home assignments", "error", err)
	}

	h.render(c, "admin.html", gin.H{
		"UserCount":       len(users),
		"StoreCount":      len(stores),
		"AssignmentCount": len(assignments),
	})
}

func (h *Handler) AdminUsers(c *gin.Context) {
	ctx := c.Request.Context()

	users, err := h.admin.ListUsers(ctx)
	if err != nil {
		slog.Error("admin list users", "error", err)
	}
	stores, err := h.admin.ListStores(ctx)
	if err != nil {
		slog.Error("admin list stores", "error", err)
	}
	assignments, err := h.admin.ListAssignments(ctx)
	if err != nil {
		slog.Error("admin list assignments", "error", err)
	}

	h.render(c, "admin_users.html", gin.H{
		"Users":       users,
		"Stores":      stores,
		"Assignments": assignments,
	})
}

func (h *Handler) AdminCreateUser(c *gin.Context) {
	actor := middleware.ActingUser(c)

	user, err := h.admin.CreateUser(c.Request.Context(),
		c.PostForm("code"),
		c.PostForm("display_name"),
		c.PostForm("password"),
		c.PostForm("is_admin") == "on",
	)
	if err != nil {
		var ve *domain.ValidationError
		switch {
		case errors.As(err, &ve):
			h.redirectFlash(c, "/admin/users", config.FlashError, ve.Msg)
		case err == domain.ErrDuplicateCode:
			h.redirectFlash(c, "/admin/users", config.FlashError, "User code already in use")
		default:
			slog.Error("create user", "error", err)
			h.notifier.Error(err, "create user")
			h.redirectFlash(c, "/admin/users", config.FlashError, "Error creating user. Please try again.")
		}
		return
	}

	h.notifier.UserChanged("Created", user.Code, actor.Code)
	h.redirectFlash(c, "/admin/users", config.FlashSuccess,
		fmt.Sprintf("User %s created", user.Code))
}

func (h *Handler) AdminEditUser(c *gin.Context) {
	code := c.Param("code")

	user, err := h.admin.GetUser(c.Request.Context(), code)
	if err != nil {
		if err == domain.ErrUserNotFound {
			h.redirectFlash(c, "/admin/users", config.FlashError, "User not found")
			return
		}
		slog.Error("edit user", "error", err, "code", code)
		h.redirectFlash(c, "/admin/users", config.FlashError, "Error loading user. Please try again.")
		return
	}

	h.render(c, "admin_user_edit.html", gin.H{
		"User": user,
	})
}

func (h *Handler) AdminUpdateUser(c *gin.Context) {
	actor := middleware.ActingUser(c)
	target := c.Param("code")
	editPage := fmt.Sprintf("/admin/users/%s/edit", target)

	params := service.UpdateUserParams{
		NewCode:     c.PostForm("code"),
		DisplayName: c.PostForm("display_name"),
		IsAdmin:     c.PostForm("is_admin") == "on",
	}
	err := h.admin.UpdateUser(c.Request.Context(), actor, target, params)
	if err != nil {
		var ve *domain.ValidationError
		switch {
		case errors.As(err, &ve):
			h.redirectFlash(c, editPage, config.FlashError, ve.Msg)
		case err == domain.ErrOwnAdminRemoval:
			h.redirectFlash(c, editPage, config.FlashError, "You cannot remove your own admin access")
		case err == domain.ErrDuplicateCode:
			h.redirectFlash(c, editPage, config.FlashError, "User code already in use")
		case err == domain.ErrUserNotFound:
			h.redirectFlash(c, "/admin/users", config.FlashError, "User not found")
		default:
			slog.Error("update user", "error", err, "code", target)
			h.notifier.Error(err, "update user")
			h.redirectFlash(c, editPage, config.FlashError, "Error updating user. Please try again.")
		}
		return
	}

	// Optional password reset on the same form.
	if password := c.PostForm("password"); password != "" {
		if err := h.admin.SetPassword(c.Request.Context(), params.NewCode, password); err != nil {
			slog.Error("reset password", "error", err, "code", params.NewCode)
			h.redirectFlash(c, editPage, config.FlashError, "User updated but password reset failed")
			return
		}
	}

	h.notifier.UserChanged("Updated", params.NewCode, actor.Code)
	h.redirectFlash(c, "/admin/users", config.FlashSuccess, "User updated")
}

func (h *Handler) AdminDeleteUser(c *gin.Context) {
	actor := middleware.ActingUser(c)
	code := c.Param("code")

	err := h.admin.DeleteUser(c.Request.Context(), actor, code)
	if err != nil {
		switch err {
		case domain.ErrSelfDelete:
			h.redirectFlash(c, "/admin/users", config.FlashError, "You cannot delete your own account")
		case domain.ErrUserNotFound:
			h.redirectFlash(c, "/admin/users", config.FlashError, "User not found")
		default:
			slog.Error("delete user", "error", err, "code", code)
			h.notifier.Error(err, "delete user")
			h.redirectFlash(c, "/admin/users", config.FlashError, "Error deleting user. Please try again.")
		}
		return
	}

	h.notifier.UserChanged("Deleted", code, actor.Code)
	h.redirectFlash(c, "/admin/users", config.FlashSuccess, fmt.Sprintf("User %s deleted", code))
}

func (h *Handler) AdminStores(c *gin.Context) {
	stores, err := h.admin.ListStores(c.Request.Context())
	if err != nil {
		slog.Error("admin list stores", "error", err)
	}

	h.render(c, "admin_stores.html", gin.H{
		"Stores": stores,
	})
}

func (h *Handler) AdminCreateStore(c *gin.Context) {
	store, err := h.admin.CreateStore(c.Request.Context(),
		c.PostForm("store_id"),
		c.PostForm("name"),
	)
	if err != nil {
		var ve *domain.ValidationError
		switch {
		case errors.As(err, &ve):
			h.redirectFlash(c, "/admin/stores", config.FlashError, ve.Msg)
		case err == domain.ErrDuplicateCode:
			h.redirectFlash(c, "/admin/stores", config.FlashError, "Store ID already in use")
		default:
			slog.Error("create store", "error", err)
			h.notifier.Error(err, "create store")
			h.redirectFlash(c, "/admin/stores", config.FlashError, "Error creating store. Please try again.")
		}
		return
	}

	h.redirectFlash(c, "/admin/stores", config.FlashSuccess,
		fmt.Sprintf("Store %s created", store.StoreID))
}

func (h *Handler) AdminDeleteStore(c *gin.Context) {
	storeID := c.Param("id")

	err := h.admin.DeleteStore(c.Request.Context(), storeID)
	if err != nil {
		if err == domain.ErrStoreNotFound {
			h.redirectFlash(c, "/admin/stores", config.FlashError, "Store not found")
			return
		}
		slog.Error("delete store", "error", err, "store", storeID)
		h.redirectFlash(c, "/admin/stores", config.FlashError, "Error deleting store. Please try again.")
		return
	}

	h.redirectFlash(c, "/admin/stores", config.FlashSuccess, fmt.Sprintf("Store %s deleted", storeID))
}

func (h *Handler) AdminAssign(c *gin.Context) {
	userCode := c.PostForm("user_code")
	storeID := c.PostForm("store_id")

	err := h.admin.Assign(c.Request.Context(), userCode, storeID)
	if err != nil {
		switch err {
		case domain.ErrUserNotFound:
			h.redirectFlash(c, "/admin/users", config.FlashError, "User not found")
		case domain.ErrStoreNotFound:
			h.redirectFlash(c, "/admin/users", config.FlashError, "Store not found")
		case domain.ErrDuplicateCode:
			h.redirectFlash(c, "/admin/users", config.FlashError, "User is already assigned to that store")
		default:
			slog.Error("assign store", "error", err, "user", userCode, "store", storeID)
			h.redirectFlash(c, "/admin/users", config.FlashError, "Error assigning store. Please try again.")
		}
		return
	}

	h.redirectFlash(c, "/admin/users", config.FlashSuccess,
		fmt.Sprintf("User %s assigned to store %s", userCode, storeID))
}

func (h *Handler) AdminUnassign(c *gin.Context) {
	userCode := c.PostForm("user_code")
	storeID := c.PostForm("store_id")

	err := h.admin.Unassign(c.Request.Context(), userCode, storeID)
	if err != nil {
		if err == domain.ErrAssignmentNotFound {
			h.redirectFlash(c, "/admin/users", config.FlashError, "Assignment not found")
			return
		}
		slog.Error("unassign store", "error", err, "user", userCode, "store", storeID)
		h.redirectFlash(c, "/admin/users", config.FlashError, "Error removing assignment. Please try again.")
		return
	}

	h.redirectFlash(c, "/admin/users", config.FlashSuccess,
		fmt.Sprintf("User %s unassigned from store %s", userCode, storeID))
}
