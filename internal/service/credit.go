package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dom-retail/domcredsys/internal/config"
	"github.com/dom-retail/domcredsys/internal/domain"
)

// CreditStore is the persistence contract the lifecycle engine needs.
// Claim and Unclaim are conditional updates: they match on the current
// status and report ErrCreditNotFound when no row transitioned, so a lost
// race is indistinguishable from a missing code.
type CreditStore interface {
	Insert(ctx context.Context, c *domain.Credit) error
	CodeExists(ctx context.Context, code string) (bool, error)
	GetByCode(ctx context.Context, code, storeID string) (*domain.Credit, error)
	Claim(ctx context.Context, code, storeID, claimedBy, claimedByUser string, at time.Time) (*domain.Credit, error)
	Unclaim(ctx context.Context, code, storeID string) (*domain.Credit, error)
	ListByStore(ctx context.Context, storeID string) ([]domain.Credit, error)
}

type CreditService struct {
	credits CreditStore
}

func NewCreditService(credits CreditStore) *CreditService {
	return &CreditService{credits: credits}
}

type CreateCreditParams struct {
	StoreID       string
	Items         []string
	Reason        string
	Amount        *decimal.Decimal
	CustomerName  string
	CustomerPhone string
	CreatedBy     string
	DateOfIssue   time.Time // zero value means "now"
}

// Create validates the request, generates an unused code and persists the
// credit as active. The returned credit is the persisted record; a failed
// insert never reports a code as issued.
func (s *CreditService) Create(ctx context.Context, p CreateCreditParams) (*domain.Credit, error) {
	if p.StoreID == "" {
		return nil, domain.Validationf("No store selected")
	}
	if strings.TrimSpace(p.CustomerName) == "" {
		return nil, domain.Validationf("Customer name is required")
	}
	if strings.TrimSpace(p.CustomerPhone) == "" {
		return nil, domain.Validationf("Customer phone is required")
	}

	items := make([]string, 0, len(p.Items))
	for _, it := range p.Items {
		if it = strings.TrimSpace(it); it != "" {
			items = append(items, it)
		}
	}
	if p.Amount != nil && p.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.Validationf("Amount must be greater than 0")
	}
	if len(items) == 0 && p.Amount == nil {
		return nil, domain.Validationf("Add at least one item or an amount")
	}

	issued := p.DateOfIssue
	if issued.IsZero() {
		issued = time.Now().UTC()
	}

	// The unique constraint on credits.code is the authoritative guard;
	// the pre-check just keeps retries cheap.
	for attempt := 0; attempt < config.MaxCodeAttempts; attempt++ {
		code, err := generateCode()
		if err != nil {
			return nil, fmt.Errorf("generate code: %w", err)
		}

		exists, err := s.credits.CodeExists(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("check code: %w", err)
		}
		if exists {
			continue
		}

		credit := &domain.Credit{
			ID:            uuid.New(),
			Code:          code,
			StoreID:       p.StoreID,
			Status:        domain.CreditStatusActive,
			Amount:        p.Amount,
			Items:         items,
			Reason:        strings.TrimSpace(p.Reason),
			CustomerName:  strings.TrimSpace(p.CustomerName),
			CustomerPhone: strings.TrimSpace(p.CustomerPhone),
			CreatedBy:     p.CreatedBy,
			DateOfIssue:   issued,
		}
		err = s.credits.Insert(ctx, credit)
		if err == domain.ErrDuplicateCode {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("insert credit: %w", err)
		}
		return credit, nil
	}

	return nil, domain.ErrCodeSpaceExhausted
}

// Claim redeems an active credit within the actor's store. The transition is
// a single conditional update; an already-claimed or foreign-store code is
// reported as not found.
func (s *CreditService) Claim(ctx context.Context, code, storeID string, actor *domain.ActingUser) (*domain.Credit, error) {
	code, err := normalizeCode(code)
	if err != nil {
		return nil, err
	}
	if storeID == "" {
		return nil, domain.Validationf("No store selected")
	}

	credit, err := s.credits.Claim(ctx, code, storeID, actor.ClaimantName(), actor.Code, time.Now().UTC())
	if err != nil {
		if err == domain.ErrCreditNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("claim %s: %w", code, err)
	}
	return credit, nil
}

// Unclaim reverses a claim. Permitted for the user who claimed the credit
// and for admins; legacy claims with no recorded claimant are admin-only.
func (s *CreditService) Unclaim(ctx context.Context, code, storeID string, actor *domain.ActingUser) (*domain.Credit, error) {
	code, err := normalizeCode(code)
	if err != nil {
		return nil, err
	}
	if storeID == "" {
		return nil, domain.Validationf("No store selected")
	}

	credit, err := s.credits.GetByCode(ctx, code, storeID)
	if err != nil {
		if err == domain.ErrCreditNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("get %s: %w", code, err)
	}
	if credit.Status != domain.CreditStatusClaimed {
		return nil, domain.ErrCreditNotFound
	}

	if !actor.IsAdmin {
		if credit.ClaimedByUser == nil || *credit.ClaimedByUser != actor.Code {
			return nil, domain.ErrForbidden
		}
	}

	credit, err = s.credits.Unclaim(ctx, code, storeID)
	if err != nil {
		if err == domain.ErrCreditNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("unclaim %s: %w", code, err)
	}
	return credit, nil
}

func (s *CreditService) ListByStore(ctx context.Context, storeID string) ([]domain.Credit, error) {
	if storeID == "" {
		return nil, nil
	}
	credits, err := s.credits.ListByStore(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("list credits: %w", err)
	}
	return credits, nil
}

func normalizeCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != config.CreditCodeLength {
		return "", domain.Validationf("Code must be exactly %d characters", config.CreditCodeLength)
	}
	return code, nil
}

func generateCode() (string, error) {
	code := make([]byte, config.CreditCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(config.CreditCodeAlphabet))))
		if err != nil {
			return "", err
		}
		code[i] = config.CreditCodeAlphabet[n.Int64()]
	}
	return string(code), nil
}
