package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dom-retail/domcredsys/internal/config"
	"github.com/dom-retail/domcredsys/internal/domain"
)

type fakeCreditStore struct {
	credits     map[string]*domain.Credit
	allExist    bool
	insertErrs  []error
	insertCalls int
}

func newFakeCreditStore() *fakeCreditStore {
	return &fakeCreditStore{credits: map[string]*domain.Credit{}}
}

func (f *fakeCreditStore) Insert(_ context.Context, c *domain.Credit) error {
	f.insertCalls++
	if len(f.insertErrs) > 0 {
		err := f.insertErrs[0]
		f.insertErrs = f.insertErrs[1:]
		if err != nil {
			return err
		}
	}
	if _, ok := f.credits[c.Code]; ok {
		return domain.ErrDuplicateCode
	}
	cp := *c
	cp.CreatedAt = time.Now().UTC()
	f.credits[c.Code] = &cp
	return nil
}

func (f *fakeCreditStore) CodeExists(_ context.Context, code string) (bool, error) {
	if f.allExist {
		return true, nil
	}
	_, ok := f.credits[code]
	return ok, nil
}

func (f *fakeCreditStore) GetByCode(_ context.Context, code, storeID string) (*domain.Credit, error) {
	c, ok := f.credits[code]
	if !ok || c.StoreID != storeID {
		return nil, domain.ErrCreditNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCreditStore) Claim(_ context.Context, code, storeID, claimedBy, claimedByUser string, at time.Time) (*domain.Credit, error) {
	c, ok := f.credits[code]
	if !ok || c.StoreID != storeID || c.Status != domain.CreditStatusActive {
		return nil, domain.ErrCreditNotFound
	}
	c.Status = domain.CreditStatusClaimed
	c.ClaimedAt = &at
	c.ClaimedBy = &claimedBy
	c.ClaimedByUser = &claimedByUser
	cp := *c
	return &cp, nil
}

func (f *fakeCreditStore) Unclaim(_ context.Context, code, storeID string) (*domain.Credit, error) {
	c, ok := f.credits[code]
	if !ok || c.StoreID != storeID || c.Status != domain.CreditStatusClaimed {
		return nil, domain.ErrCreditNotFound
	}
	c.Status = domain.CreditStatusActive
	c.ClaimedAt = nil
	c.ClaimedBy = nil
	c.ClaimedByUser = nil
	cp := *c
	return &cp, nil
}

func (f *fakeCreditStore) ListByStore(_ context.Context, storeID string) ([]domain.Credit, error) {
	var out []domain.Credit
	for _, c := range f.credits {
		if c.StoreID == storeID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeCreditStore) seed(code, storeID string, status domain.CreditStatus, claimedByUser *string) {
	c := &domain.Credit{
		Code:          code,
		StoreID:       storeID,
		Status:        status,
		Items:         []string{"Widget"},
		CustomerName:  "Jamie",
		CustomerPhone: "555-0100",
		CreatedBy:     "1111",
	}
	if status == domain.CreditStatusClaimed {
		now := time.Now().UTC()
		name := "Someone"
		c.ClaimedAt = &now
		c.ClaimedBy = &name
		c.ClaimedByUser = claimedByUser
	}
	f.credits[code] = c
}

func actor(code string, admin bool) *domain.ActingUser {
	return &domain.ActingUser{Code: code, DisplayName: "User " + code, IsAdmin: admin, SelectedStore: "s1"}
}

func TestCreateCredit(t *testing.T) {
	store := newFakeCreditStore()
	svc := NewCreditService(store)
	amount := decimal.NewFromInt(25)

	credit, err := svc.Create(context.Background(), CreateCreditParams{
		StoreID:       "s1",
		Amount:        &amount,
		CustomerName:  "  Jamie  ",
		CustomerPhone: "555-0100",
		CreatedBy:     "2222",
	})
	require.NoError(t, err)

	assert.Len(t, credit.Code, config.CreditCodeLength)
	for _, r := range credit.Code {
		assert.Contains(t, config.CreditCodeAlphabet, string(r))
	}
	assert.Equal(t, domain.CreditStatusActive, credit.Status)
	assert.Equal(t, "Jamie", credit.CustomerName)
	assert.True(t, credit.IsMonetary())
	assert.False(t, credit.DateOfIssue.IsZero())
	assert.Contains(t, store.credits, credit.Code)
}

func TestCreateCreditValidation(t *testing.T) {
	amount := decimal.NewFromInt(10)
	zero := decimal.Zero

	tests := []struct {
		name   string
		params CreateCreditParams
		msg    string
	}{
		{
			name:   "no store selected",
			params: CreateCreditParams{CustomerName: "A", CustomerPhone: "1", Amount: &amount},
			msg:    "No store selected",
		},
		{
			name:   "missing customer name",
			params: CreateCreditParams{StoreID: "s1", CustomerPhone: "1", Amount: &amount},
			msg:    "Customer name is required",
		},
		{
			name:   "missing customer phone",
			params: CreateCreditParams{StoreID: "s1", CustomerName: "A", Amount: &amount},
			msg:    "Customer phone is required",
		},
		{
			name:   "zero amount",
			params: CreateCreditParams{StoreID: "s1", CustomerName: "A", CustomerPhone: "1", Amount: &zero},
			msg:    "Amount must be greater than 0",
		},
		{
			name:   "neither items nor amount",
			params: CreateCreditParams{StoreID: "s1", CustomerName: "A", CustomerPhone: "1", Items: []string{"  "}},
			msg:    "Add at least one item or an amount",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeCreditStore()
			svc := NewCreditService(store)

			_, err := svc.Create(context.Background(), tt.params)
			require.Error(t, err)
			assert.True(t, domain.IsValidation(err))
			assert.Contains(t, err.Error(), tt.msg)
			assert.Zero(t, store.insertCalls, "invalid request must not touch storage")
		})
	}
}

func TestCreateCreditRetriesOnDuplicate(t *testing.T) {
	store := newFakeCreditStore()
	store.insertErrs = []error{domain.ErrDuplicateCode}
	svc := NewCreditService(store)

	credit, err := svc.Create(context.Background(), CreateCreditParams{
		StoreID:       "s1",
		Items:         []string{"Widget"},
		CustomerName:  "Jamie",
		CustomerPhone: "555-0100",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, store.insertCalls)
	assert.Contains(t, store.credits, credit.Code)
}

func TestCreateCreditCodeSpaceExhausted(t *testing.T) {
	store := newFakeCreditStore()
	store.allExist = true
	svc := NewCreditService(store)

	_, err := svc.Create(context.Background(), CreateCreditParams{
		StoreID:       "s1",
		Items:         []string{"Widget"},
		CustomerName:  "Jamie",
		CustomerPhone: "555-0100",
	})
	assert.ErrorIs(t, err, domain.ErrCodeSpaceExhausted)
	assert.Zero(t, store.insertCalls)
}

func TestClaim(t *testing.T) {
	store := newFakeCreditStore()
	store.seed("ABC", "s1", domain.CreditStatusActive, nil)
	svc := NewCreditService(store)
	clerk := actor("2222", false)

	credit, err := svc.Claim(context.Background(), "  abc ", "s1", clerk)
	require.NoError(t, err)
	assert.Equal(t, domain.CreditStatusClaimed, credit.Status)
	require.NotNil(t, credit.ClaimedBy)
	assert.Equal(t, clerk.ClaimantName(), *credit.ClaimedBy)
	require.NotNil(t, credit.ClaimedByUser)
	assert.Equal(t, "2222", *credit.ClaimedByUser)
	require.NotNil(t, credit.ClaimedAt)
}

func TestClaimAlreadyClaimed(t *testing.T) {
	store := newFakeCreditStore()
	store.seed("ABC", "s1", domain.CreditStatusClaimed, ptr("2222"))
	svc := NewCreditService(store)

	_, err := svc.Claim(context.Background(), "ABC", "s1", actor("3333", false))
	assert.ErrorIs(t, err, domain.ErrCreditNotFound)
}

func TestClaimWrongStore(t *testing.T) {
	store := newFakeCreditStore()
	store.seed("ABC", "s1", domain.CreditStatusActive, nil)
	svc := NewCreditService(store)

	_, err := svc.Claim(context.Background(), "ABC", "s2", actor("2222", false))
	assert.ErrorIs(t, err, domain.ErrCreditNotFound)
}

func TestClaimCodeValidation(t *testing.T) {
	svc := NewCreditService(newFakeCreditStore())

	for _, code := range []string{"", "AB", "ABCD"} {
		_, err := svc.Claim(context.Background(), code, "s1", actor("2222", false))
		assert.True(t, domain.IsValidation(err), "code %q", code)
	}

	_, err := svc.Claim(context.Background(), "ABC", "", actor("2222", false))
	assert.True(t, domain.IsValidation(err))
}

func TestUnclaimAuthorization(t *testing.T) {
	tests := []struct {
		name          string
		claimedByUser *string
		actor         *domain.ActingUser
		wantErr       error
	}{
		{"claimant can unclaim", ptr("2222"), actor("2222", false), nil},
		{"other user cannot", ptr("2222"), actor("3333", false), domain.ErrForbidden},
		{"admin can unclaim anyone's", ptr("2222"), actor("1111", true), nil},
		{"legacy claim is admin-only", nil, actor("2222", false), domain.ErrForbidden},
		{"admin can unclaim legacy", nil, actor("1111", true), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeCreditStore()
			store.seed("ABC", "s1", domain.CreditStatusClaimed, tt.claimedByUser)
			svc := NewCreditService(store)

			credit, err := svc.Unclaim(context.Background(), "abc", "s1", tt.actor)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, domain.CreditStatusClaimed, store.credits["ABC"].Status)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, domain.CreditStatusActive, credit.Status)
			assert.Nil(t, credit.ClaimedAt)
			assert.Nil(t, credit.ClaimedBy)
			assert.Nil(t, credit.ClaimedByUser)
		})
	}
}

func TestUnclaimActiveCredit(t *testing.T) {
	store := newFakeCreditStore()
	store.seed("ABC", "s1", domain.CreditStatusActive, nil)
	svc := NewCreditService(store)

	_, err := svc.Unclaim(context.Background(), "ABC", "s1", actor("1111", true))
	assert.ErrorIs(t, err, domain.ErrCreditNotFound)
}

func TestUnclaimedCreditCanBeClaimedAgain(t *testing.T) {
	store := newFakeCreditStore()
	store.seed("ABC", "s1", domain.CreditStatusClaimed, ptr("2222"))
	svc := NewCreditService(store)

	_, err := svc.Unclaim(context.Background(), "ABC", "s1", actor("2222", false))
	require.NoError(t, err)

	credit, err := svc.Claim(context.Background(), "ABC", "s1", actor("3333", false))
	require.NoError(t, err)
	assert.Equal(t, "3333", *credit.ClaimedByUser)
}

func TestListByStoreWithoutSelection(t *testing.T) {
	store := newFakeCreditStore()
	store.seed("ABC", "s1", domain.CreditStatusActive, nil)
	svc := NewCreditService(store)

	credits, err := svc.ListByStore(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, credits)
}

func TestGenerateCode(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		code, err := generateCode()
		require.NoError(t, err)
		require.Len(t, code, config.CreditCodeLength)
		for j := 0; j < len(code); j++ {
			assert.True(t, strings.ContainsRune(config.CreditCodeAlphabet, rune(code[j])))
		}
		seen[code] = true
	}
	// 50 draws from a 46656-code space colliding down to a handful would
	// point at a broken generator.
	assert.Greater(t, len(seen), 40)
}

func ptr(s string) *string { return &s }
