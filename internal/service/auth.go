package service

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/dom-retail/domcredsys/internal/config"
	"github.com/dom-retail/domcredsys/internal/domain"
)

// UserDirectory is the slice of user persistence the auth layer needs.
type UserDirectory interface {
	GetByCode(ctx context.Context, code string) (*domain.User, error)
}

// StoreDirectory resolves the stores a user is authorized to act on.
type StoreDirectory interface {
	ListForUser(ctx context.Context, userCode string, isAdmin bool) ([]domain.Store, error)
}

type AuthService struct {
	users  UserDirectory
	stores StoreDirectory
}

func NewAuthService(users UserDirectory, stores StoreDirectory) *AuthService {
	return &AuthService{users: users, stores: stores}
}

// Login verifies a 4-digit code and password and returns the user together
// with their authorized stores (alphabetical; the first one becomes the
// session's selected store). Every failure mode surfaces as
// ErrInvalidCredentials so a caller cannot distinguish an unknown code from
// a wrong password.
func (s *AuthService) Login(ctx context.Context, code, password string) (*domain.User, []domain.Store, error) {
	if !isUserCode(code) {
		return nil, nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.GetByCode(ctx, code)
	if err != nil {
		if err == domain.ErrUserNotFound {
			// Burn a comparison anyway to keep timing comparable.
			bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return nil, nil, domain.ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("login lookup: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, nil, domain.ErrInvalidCredentials
	}

	stores, err := s.stores.ListForUser(ctx, user.Code, user.IsAdmin)
	if err != nil {
		return nil, nil, fmt.Errorf("list stores: %w", err)
	}
	return user, stores, nil
}

// Authorize re-validates session claims against the backing user row and is
// called at the top of every privileged request. The session's cached
// is_admin is never trusted: a missing row, a revoked admin flag on an
// admin-gated request, or any persistence error invalidates the session
// (fail closed).
func (s *AuthService) Authorize(ctx context.Context, claims domain.SessionClaims, capability domain.Capability) (*domain.ActingUser, error) {
	if claims.UserCode == "" {
		return nil, domain.ErrSessionInvalid
	}

	user, err := s.users.GetByCode(ctx, claims.UserCode)
	if err != nil {
		return nil, domain.ErrSessionInvalid
	}
	if capability == domain.CapabilityAdmin && !user.IsAdmin {
		return nil, domain.ErrSessionInvalid
	}

	return &domain.ActingUser{
		Code:          user.Code,
		DisplayName:   user.DisplayName,
		IsAdmin:       user.IsAdmin,
		SelectedStore: claims.SelectedStore,
	}, nil
}

// AuthorizedStores returns the actor's store set, alphabetical by name.
func (s *AuthService) AuthorizedStores(ctx context.Context, actor *domain.ActingUser) ([]domain.Store, error) {
	stores, err := s.stores.ListForUser(ctx, actor.Code, actor.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}
	return stores, nil
}

// SelectStore checks the requested store against the actor's authorized set.
// A store outside the set is ErrForbidden and the current selection stands.
func (s *AuthService) SelectStore(ctx context.Context, actor *domain.ActingUser, storeID string) (*domain.Store, error) {
	if storeID == "" {
		return nil, domain.Validationf("No store selected")
	}
	stores, err := s.AuthorizedStores(ctx, actor)
	if err != nil {
		return nil, err
	}
	for i := range stores {
		if stores[i].StoreID == storeID {
			return &stores[i], nil
		}
	}
	return nil, domain.ErrForbidden
}

func isUserCode(code string) bool {
	if len(code) != config.UserCodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}

// dummyHash is a bcrypt hash of an empty string, used to equalize login
// timing for unknown codes.
var dummyHash = func() []byte {
	h, err := bcrypt.GenerateFromPassword([]byte(""), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return h
}()
