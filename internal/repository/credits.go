package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dom-retail/domcredsys/internal/domain"
)

type CreditRepository struct {
	db *pgxpool.Pool
}

func NewCreditRepository(db *pgxpool.Pool) *CreditRepository {
	return &CreditRepository{db: db}
}

const creditColumns = `id, code, store_id, status, amount, items, reason,
	customer_name, customer_phone, created_by, date_of_issue, created_at,
	claimed_at, claimed_by, claimed_by_user`

func scanCredit(row pgx.Row) (*domain.Credit, error) {
	c := &domain.Credit{}
	var status string
	err := row.Scan(
		&c.ID, &c.Code, &c.StoreID, &status, &c.Amount, &c.Items, &c.Reason,
		&c.CustomerName, &c.CustomerPhone, &c.CreatedBy, &c.DateOfIssue,
		&c.CreatedAt, &c.ClaimedAt, &c.ClaimedBy, &c.ClaimedByUser,
	)
	if err != nil {
		return nil, err
	}
	c.Status = domain.CreditStatus(status)
	return c, nil
}

// Insert persists a new credit. Returns domain.ErrDuplicateCode when the
// generated code collides with an existing one.
func (r *CreditRepository) Insert(ctx context.Context, c *domain.Credit) error {
	query := `
		INSERT INTO credits (id, code, store_id, status, amount, items, reason,
			customer_name, customer_phone, created_by, date_of_issue)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at`

	err := r.db.QueryRow(ctx, query,
		c.ID, c.Code, c.StoreID, string(c.Status), c.Amount, c.Items, c.Reason,
		c.CustomerName, c.CustomerPhone, c.CreatedBy, c.DateOfIssue,
	).Scan(&c.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateCode
		}
		return fmt.Errorf("insert credit: %w", err)
	}
	return nil
}

// CodeExists checks code occupancy across all stores; credit codes are
// globally unique.
func (r *CreditRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM credits WHERE code = $1)`, code,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check code: %w", err)
	}
	return exists, nil
}

func (r *CreditRepository) GetByCode(ctx context.Context, code, storeID string) (*domain.Credit, error) {
	query := `SELECT ` + creditColumns + ` FROM credits WHERE code = $1 AND store_id = $2`

	c, err := scanCredit(r.db.QueryRow(ctx, query, code, storeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCreditNotFound
		}
		return nil, fmt.Errorf("get credit: %w", err)
	}
	return c, nil
}

// Claim transitions an active credit to claimed in a single conditional
// update, closing the read-then-write race. Returns domain.ErrCreditNotFound
// when no active credit matches the code within the store.
func (r *CreditRepository) Claim(ctx context.Context, code, storeID, claimedBy, claimedByUser string, at time.Time) (*domain.Credit, error) {
	query := `
		UPDATE credits
		SET status = 'claimed', claimed_at = $1, claimed_by = $2, claimed_by_user = $3
		WHERE code = $4 AND store_id = $5 AND status = 'active'
		RETURNING ` + creditColumns

	c, err := scanCredit(r.db.QueryRow(ctx, query, at, claimedBy, claimedByUser, code, storeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCreditNotFound
		}
		return nil, fmt.Errorf("claim credit: %w", err)
	}
	return c, nil
}

// Unclaim returns a claimed credit to active, clearing all claim fields
// together. Same conditional-update shape as Claim.
func (r *CreditRepository) Unclaim(ctx context.Context, code, storeID string) (*domain.Credit, error) {
	query := `
		UPDATE credits
		SET status = 'active', claimed_at = NULL, claimed_by = NULL, claimed_by_user = NULL
		WHERE code = $1 AND store_id = $2 AND status = 'claimed'
		RETURNING ` + creditColumns

	c, err := scanCredit(r.db.QueryRow(ctx, query, code, storeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCreditNotFound
		}
		return nil, fmt.Errorf("unclaim credit: %w", err)
	}
	return c, nil
}

func (r *CreditRepository) ListByStore(ctx context.Context, storeID string) ([]domain.Credit, error) {
	query := `SELECT ` + creditColumns + ` FROM credits WHERE store_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, storeID)
	if err != nil {
		return nil, fmt.Errorf("list credits: %w", err)
	}
	defer rows.Close()

	var credits []domain.Credit
	for rows.Next() {
		c, err := scanCredit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan credit: %w", err)
		}
		credits = append(credits, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list credits: %w", err)
	}
	return credits, nil
}
