package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dom-retail/domcredsys/internal/domain"
)

// UserAdminStore is the persistence contract for user management.
type UserAdminStore interface {
	GetByCode(ctx context.Context, code string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Insert(ctx context.Context, u *domain.User) error
	UpdateProfile(ctx context.Context, code, displayName string, isAdmin bool) error
	UpdatePassword(ctx context.Context, code, passwordHash string) error
	UpdateCode(ctx context.Context, oldCode, newCode string) error
	Delete(ctx context.Context, code string) error
	AdminExists(ctx context.Context) (bool, error)
}

type StoreAdminStore interface {
	GetByStoreID(ctx context.Context, storeID string) (*domain.Store, error)
	List(ctx context.Context) ([]domain.Store, error)
	Insert(ctx context.Context, s *domain.Store) error
	Delete(ctx context.Context, storeID string) error
}

type AssignmentStore interface {
	Insert(ctx context.Context, userCode, storeID string) error
	Delete(ctx context.Context, userCode, storeID string) error
	List(ctx context.Context) ([]domain.Assignment, error)
}

// AdminService manages users, stores and assignments. Callers must already
// hold CapabilityAdmin; the service enforces the remaining guards (own-admin
// removal, self-deletion, duplicate codes).
type AdminService struct {
	users       UserAdminStore
	stores      StoreAdminStore
	assignments AssignmentStore
}

func NewAdminService(users UserAdminStore, stores StoreAdminStore, assignments AssignmentStore) *AdminService {
	return &AdminService{users: users, stores: stores, assignments: assignments}
}

func (s *AdminService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

func (s *AdminService) GetUser(ctx context.Context, code string) (*domain.User, error) {
	return s.users.GetByCode(ctx, code)
}

func (s *AdminService) CreateUser(ctx context.Context, code, displayName, password string, isAdmin bool) (*domain.User, error) {
	if !isUserCode(code) {
		return nil, domain.Validationf("User code must be exactly 4 digits")
	}
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, domain.Validationf("Display name is required")
	}
	if password == "" {
		return nil, domain.Validationf("Password is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Code:         code,
		PasswordHash: string(hash),
		DisplayName:  displayName,
		IsAdmin:      isAdmin,
	}
	if err := s.users.Insert(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

type UpdateUserParams struct {
	NewCode     string
	DisplayName string
	IsAdmin     bool
}

// UpdateUser edits a user's code, display name and admin flag. Changing the
// code cascades to assignments and credit audit fields. An admin cannot
// strip their own admin flag.
func (s *AdminService) UpdateUser(ctx context.Context, actor *domain.ActingUser, code string, p UpdateUserParams) error {
	if !isUserCode(p.NewCode) {
		return domain.Validationf("User code must be exactly 4 digits")
	}
	displayName := strings.TrimSpace(p.DisplayName)
	if displayName == "" {
		return domain.Validationf("Display name is required")
	}

	target, err := s.users.GetByCode(ctx, code)
	if err != nil {
		return err
	}

	if target.Code == actor.Code && target.IsAdmin && !p.IsAdmin {
		return domain.ErrOwnAdminRemoval
	}

	if p.NewCode != target.Code {
		_, err := s.users.GetByCode(ctx, p.NewCode)
		if err == nil {
			return domain.ErrDuplicateCode
		}
		if err != domain.ErrUserNotFound {
			return fmt.Errorf("check code: %w", err)
		}
		if err := s.users.UpdateCode(ctx, target.Code, p.NewCode); err != nil {
			return err
		}
	}

	return s.users.UpdateProfile(ctx, p.NewCode, displayName, p.IsAdmin)
}

func (s *AdminService) SetPassword(ctx context.Context, code, password string) error {
	if password == "" {
		return domain.Validationf("Password is required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.users.UpdatePassword(ctx, code, string(hash))
}

func (s *AdminService) DeleteUser(ctx context.Context, actor *domain.ActingUser, code string) error {
	if code == actor.Code {
		return domain.ErrSelfDelete
	}
	return s.users.Delete(ctx, code)
}

func (s *AdminService) ListStores(ctx context.Context) ([]domain.Store, error) {
	return s.stores.List(ctx)
}

func (s *AdminService) CreateStore(ctx context.Context, storeID, name string) (*domain.Store, error) {
	storeID = strings.TrimSpace(storeID)
	name = strings.TrimSpace(name)
	if storeID == "" {
		return nil, domain.Validationf("Store ID is required")
	}
	if name == "" {
		return nil, domain.Validationf("Store name is required")
	}

	store := &domain.Store{ID: uuid.New(), StoreID: storeID, Name: name}
	if err := s.stores.Insert(ctx, store); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *AdminService) DeleteStore(ctx context.Context, storeID string) error {
	return s.stores.Delete(ctx, storeID)
}

func (s *AdminService) ListAssignments(ctx context.Context) ([]domain.Assignment, error) {
	return s.assignments.List(ctx)
}

// Assign grants a user access to a store. Both sides must exist.
func (s *AdminService) Assign(ctx context.Context, userCode, storeID string) error {
	if _, err := s.users.GetByCode(ctx, userCode); err != nil {
		return err
	}
	if _, err := s.stores.GetByStoreID(ctx, storeID); err != nil {
		return err
	}
	return s.assignments.Insert(ctx, userCode, storeID)
}

func (s *AdminService) Unassign(ctx context.Context, userCode, storeID string) error {
	return s.assignments.Delete(ctx, userCode, storeID)
}

// EnsureAdmin creates the bootstrap admin account when no admin exists yet.
func (s *AdminService) EnsureAdmin(ctx context.Context, code, displayName, password string) error {
	exists, err := s.users.AdminExists(ctx)
	if err != nil {
		return fmt.Errorf("check admins: %w", err)
	}
	if exists {
		return nil
	}

	user, err := s.CreateUser(ctx, code, displayName, password, true)
	if err != nil {
		if err == domain.ErrDuplicateCode {
			slog.Warn("bootstrap admin code taken by non-admin user", "code", code)
			return nil
		}
		return fmt.Errorf("create bootstrap admin: %w", err)
	}
	slog.Info("bootstrap admin created", "code", user.Code)
	return nil
}
