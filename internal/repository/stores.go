package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dom-retail/domcredsys/internal/domain"
)

type StoreRepository struct {
	db *pgxpool.Pool
}

func NewStoreRepository(db *pgxpool.Pool) *StoreRepository {
	return &StoreRepository{db: db}
}

const storeColumns = `id, store_id, name, created_at`

func scanStore(row pgx.Row) (*domain.Store, error) {
	s := &domain.Store{}
	if err := row.Scan(&s.ID, &s.StoreID, &s.Name, &s.CreatedAt); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *StoreRepository) GetByStoreID(ctx context.Context, storeID string) (*domain.Store, error) {
	query := `SELECT ` + storeColumns + ` FROM stores WHERE store_id = $1`

	s, err := scanStore(r.db.QueryRow(ctx, query, storeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrStoreNotFound
		}
		return nil, fmt.Errorf("get store: %w", err)
	}
	return s, nil
}

func (r *StoreRepository) List(ctx context.Context) ([]domain.Store, error) {
	return r.queryStores(ctx, `SELECT `+storeColumns+` FROM stores ORDER BY name`)
}

// ListForUser returns the stores a user may act on, alphabetical by name.
// Admins see every store; other users see their assignments.
func (r *StoreRepository) ListForUser(ctx context.Context, userCode string, isAdmin bool) ([]domain.Store, error) {
	if isAdmin {
		return r.List(ctx)
	}
	query := `
		SELECT s.id, s.store_id, s.name, s.created_at
		FROM stores s
		JOIN store_assignments a ON a.store_id = s.store_id
		WHERE a.user_code = $1
		ORDER BY s.name`
	return r.queryStores(ctx, query, userCode)
}

func (r *StoreRepository) queryStores(ctx context.Context, query string, args ...any) ([]domain.Store, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}
	defer rows.Close()

	var stores []domain.Store
	for rows.Next() {
		s, err := scanStore(rows)
		if err != nil {
			return nil, fmt.Errorf("scan store: %w", err)
		}
		stores = append(stores, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}
	return stores, nil
}

func (r *StoreRepository) Insert(ctx context.Context, s *domain.Store) error {
	query := `
		INSERT INTO stores (id, store_id, name)
		VALUES ($1, $2, $3)
		RETURNING created_at`

	err := r.db.QueryRow(ctx, query, s.ID, s.StoreID, s.Name).Scan(&s.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateCode
		}
		return fmt.Errorf("insert store: %w", err)
	}
	return nil
}

func (r *StoreRepository) Delete(ctx context.Context, storeID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM stores WHERE store_id = $1`, storeID)
	if err != nil {
		return fmt.Errorf("delete store: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrStoreNotFound
	}
	return nil
}
