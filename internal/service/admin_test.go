package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dom-retail/domcredsys/internal/domain"
)

type fakeUserAdmin struct {
	users           map[string]*domain.User
	insertErr       error
	updateCodeCalls [][2]string
	profileCalls    int
}

func newFakeUserAdmin(users ...*domain.User) *fakeUserAdmin {
	f := &fakeUserAdmin{users: map[string]*domain.User{}}
	for _, u := range users {
		f.users[u.Code] = u
	}
	return f
}

func (f *fakeUserAdmin) GetByCode(_ context.Context, code string) (*domain.User, error) {
	u, ok := f.users[code]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserAdmin) List(_ context.Context) ([]domain.User, error) {
	var out []domain.User
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUserAdmin) Insert(_ context.Context, u *domain.User) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	if _, ok := f.users[u.Code]; ok {
		return domain.ErrDuplicateCode
	}
	cp := *u
	f.users[u.Code] = &cp
	return nil
}

func (f *fakeUserAdmin) UpdateProfile(_ context.Context, code, displayName string, isAdmin bool) error {
	f.profileCalls++
	u, ok := f.users[code]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.DisplayName = displayName
	u.IsAdmin = isAdmin
	return nil
}

func (f *fakeUserAdmin) UpdatePassword(_ context.Context, code, passwordHash string) error {
	u, ok := f.users[code]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (f *fakeUserAdmin) UpdateCode(_ context.Context, oldCode, newCode string) error {
	f.updateCodeCalls = append(f.updateCodeCalls, [2]string{oldCode, newCode})
	u, ok := f.users[oldCode]
	if !ok {
		return domain.ErrUserNotFound
	}
	delete(f.users, oldCode)
	u.Code = newCode
	f.users[newCode] = u
	return nil
}

func (f *fakeUserAdmin) Delete(_ context.Context, code string) error {
	if _, ok := f.users[code]; !ok {
		return domain.ErrUserNotFound
	}
	delete(f.users, code)
	return nil
}

func (f *fakeUserAdmin) AdminExists(_ context.Context) (bool, error) {
	for _, u := range f.users {
		if u.IsAdmin {
			return true, nil
		}
	}
	return false, nil
}

type fakeStoreAdmin struct {
	stores map[string]*domain.Store
}

func newFakeStoreAdmin(stores ...*domain.Store) *fakeStoreAdmin {
	f := &fakeStoreAdmin{stores: map[string]*domain.Store{}}
	for _, s := range stores {
		f.stores[s.StoreID] = s
	}
	return f
}

func (f *fakeStoreAdmin) GetByStoreID(_ context.Context, storeID string) (*domain.Store, error) {
	s, ok := f.stores[storeID]
	if !ok {
		return nil, domain.ErrStoreNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeStoreAdmin) List(_ context.Context) ([]domain.Store, error) {
	var out []domain.Store
	for _, s := range f.stores {
		out = append(out, *s)
	}
	return out, nil
}

func (f *fakeStoreAdmin) Insert(_ context.Context, s *domain.Store) error {
	if _, ok := f.stores[s.StoreID]; ok {
		return domain.ErrDuplicateCode
	}
	cp := *s
	f.stores[s.StoreID] = &cp
	return nil
}

func (f *fakeStoreAdmin) Delete(_ context.Context, storeID string) error {
	if _, ok := f.stores[storeID]; !ok {
		return domain.ErrStoreNotFound
	}
	delete(f.stores, storeID)
	return nil
}

type fakeAssignments struct {
	rows map[[2]string]bool
}

func newFakeAssignments() *fakeAssignments {
	return &fakeAssignments{rows: map[[2]string]bool{}}
}

func (f *fakeAssignments) Insert(_ context.Context, userCode, storeID string) error {
	key := [2]string{userCode, storeID}
	if f.rows[key] {
		return domain.ErrDuplicateCode
	}
	f.rows[key] = true
	return nil
}

func (f *fakeAssignments) Delete(_ context.Context, userCode, storeID string) error {
	key := [2]string{userCode, storeID}
	if !f.rows[key] {
		return domain.ErrAssignmentNotFound
	}
	delete(f.rows, key)
	return nil
}

func (f *fakeAssignments) List(_ context.Context) ([]domain.Assignment, error) {
	var out []domain.Assignment
	for key := range f.rows {
		out = append(out, domain.Assignment{UserCode: key[0], StoreID: key[1]})
	}
	return out, nil
}

func newAdminFixture() (*AdminService, *fakeUserAdmin, *fakeStoreAdmin, *fakeAssignments) {
	users := newFakeUserAdmin(
		&domain.User{Code: "1111", DisplayName: "Boss", IsAdmin: true},
		&domain.User{Code: "2222", DisplayName: "Clerk"},
	)
	stores := newFakeStoreAdmin(&domain.Store{StoreID: "s1", Name: "Alpha"})
	assignments := newFakeAssignments()
	return NewAdminService(users, stores, assignments), users, stores, assignments
}

func TestCreateUser(t *testing.T) {
	svc, users, _, _ := newAdminFixture()

	user, err := svc.CreateUser(context.Background(), "3333", "  New Clerk ", "pw", false)
	require.NoError(t, err)
	assert.Equal(t, "New Clerk", user.DisplayName)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("pw")))
	assert.Contains(t, users.users, "3333")
}

func TestCreateUserValidation(t *testing.T) {
	svc, _, _, _ := newAdminFixture()

	_, err := svc.CreateUser(context.Background(), "33", "Name", "pw", false)
	assert.True(t, domain.IsValidation(err))

	_, err = svc.CreateUser(context.Background(), "3333", "  ", "pw", false)
	assert.True(t, domain.IsValidation(err))

	_, err = svc.CreateUser(context.Background(), "3333", "Name", "", false)
	assert.True(t, domain.IsValidation(err))
}

func TestCreateUserDuplicateCode(t *testing.T) {
	svc, _, _, _ := newAdminFixture()

	_, err := svc.CreateUser(context.Background(), "2222", "Another", "pw", false)
	assert.ErrorIs(t, err, domain.ErrDuplicateCode)
}

func TestUpdateUserOwnAdminRemoval(t *testing.T) {
	svc, _, _, _ := newAdminFixture()
	boss := &domain.ActingUser{Code: "1111", IsAdmin: true}

	err := svc.UpdateUser(context.Background(), boss, "1111", UpdateUserParams{
		NewCode:     "1111",
		DisplayName: "Boss",
		IsAdmin:     false,
	})
	assert.ErrorIs(t, err, domain.ErrOwnAdminRemoval)
}

func TestUpdateUserAdminCanDemoteOthers(t *testing.T) {
	svc, users, _, _ := newAdminFixture()
	users.users["2222"].IsAdmin = true
	boss := &domain.ActingUser{Code: "1111", IsAdmin: true}

	err := svc.UpdateUser(context.Background(), boss, "2222", UpdateUserParams{
		NewCode:     "2222",
		DisplayName: "Clerk",
		IsAdmin:     false,
	})
	require.NoError(t, err)
	assert.False(t, users.users["2222"].IsAdmin)
}

func TestUpdateUserCodeChange(t *testing.T) {
	svc, users, _, _ := newAdminFixture()
	boss := &domain.ActingUser{Code: "1111", IsAdmin: true}

	err := svc.UpdateUser(context.Background(), boss, "2222", UpdateUserParams{
		NewCode:     "4444",
		DisplayName: "Renamed Clerk",
	})
	require.NoError(t, err)

	require.Len(t, users.updateCodeCalls, 1)
	assert.Equal(t, [2]string{"2222", "4444"}, users.updateCodeCalls[0])
	assert.NotContains(t, users.users, "2222")
	assert.Equal(t, "Renamed Clerk", users.users["4444"].DisplayName)
}

func TestUpdateUserUnchangedCodeSkipsCascade(t *testing.T) {
	svc, users, _, _ := newAdminFixture()
	boss := &domain.ActingUser{Code: "1111", IsAdmin: true}

	err := svc.UpdateUser(context.Background(), boss, "2222", UpdateUserParams{
		NewCode:     "2222",
		DisplayName: "Clerk",
	})
	require.NoError(t, err)
	assert.Empty(t, users.updateCodeCalls)
	assert.Equal(t, 1, users.profileCalls)
}

func TestUpdateUserCodeTaken(t *testing.T) {
	svc, _, _, _ := newAdminFixture()
	boss := &domain.ActingUser{Code: "1111", IsAdmin: true}

	err := svc.UpdateUser(context.Background(), boss, "2222", UpdateUserParams{
		NewCode:     "1111",
		DisplayName: "Clerk",
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateCode)
}

func TestDeleteUserSelf(t *testing.T) {
	svc, users, _, _ := newAdminFixture()
	boss := &domain.ActingUser{Code: "1111", IsAdmin: true}

	err := svc.DeleteUser(context.Background(), boss, "1111")
	assert.ErrorIs(t, err, domain.ErrSelfDelete)
	assert.Contains(t, users.users, "1111")

	require.NoError(t, svc.DeleteUser(context.Background(), boss, "2222"))
	assert.NotContains(t, users.users, "2222")
}

func TestAssignRequiresBothSides(t *testing.T) {
	svc, _, _, assignments := newAdminFixture()

	err := svc.Assign(context.Background(), "9999", "s1")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	err = svc.Assign(context.Background(), "2222", "nope")
	assert.ErrorIs(t, err, domain.ErrStoreNotFound)

	require.NoError(t, svc.Assign(context.Background(), "2222", "s1"))
	assert.True(t, assignments.rows[[2]string{"2222", "s1"}])
}

func TestEnsureAdmin(t *testing.T) {
	t.Run("skips when an admin exists", func(t *testing.T) {
		svc, users, _, _ := newAdminFixture()
		before := len(users.users)

		require.NoError(t, svc.EnsureAdmin(context.Background(), "9999", "Admin", "pw"))
		assert.Len(t, users.users, before)
	})

	t.Run("creates the bootstrap admin", func(t *testing.T) {
		users := newFakeUserAdmin(&domain.User{Code: "2222", DisplayName: "Clerk"})
		svc := NewAdminService(users, newFakeStoreAdmin(), newFakeAssignments())

		require.NoError(t, svc.EnsureAdmin(context.Background(), "9999", "Admin", "pw"))
		require.Contains(t, users.users, "9999")
		assert.True(t, users.users["9999"].IsAdmin)
	})

	t.Run("tolerates the code being taken", func(t *testing.T) {
		users := newFakeUserAdmin(&domain.User{Code: "9999", DisplayName: "Clerk"})
		svc := NewAdminService(users, newFakeStoreAdmin(), newFakeAssignments())

		require.NoError(t, svc.EnsureAdmin(context.Background(), "9999", "Admin", "pw"))
		assert.False(t, users.users["9999"].IsAdmin)
	})
}
