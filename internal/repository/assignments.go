package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dom-retail/domcredsys/internal/domain"
)

type AssignmentRepository struct {
	db *pgxpool.Pool
}

func NewAssignmentRepository(db *pgxpool.Pool) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

func (r *AssignmentRepository) Insert(ctx context.Context, userCode, storeID string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO store_assignments (user_code, store_id) VALUES ($1, $2)`,
		userCode, storeID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateCode
		}
		return fmt.Errorf("insert assignment: %w", err)
	}
	return nil
}

func (r *AssignmentRepository) Delete(ctx context.Context, userCode, storeID string) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM store_assignments WHERE user_code = $1 AND store_id = $2`,
		userCode, storeID,
	)
	if err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAssignmentNotFound
	}
	return nil
}

func (r *AssignmentRepository) List(ctx context.Context) ([]domain.Assignment, error) {
	rows, err := r.db.Query(ctx,
		`SELECT user_code, store_id, created_at FROM store_assignments ORDER BY user_code, store_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	defer rows.Close()

	var assignments []domain.Assignment
	for rows.Next() {
		var a domain.Assignment
		if err := rows.Scan(&a.UserCode, &a.StoreID, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		assignments = append(assignments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return assignments, nil
}
