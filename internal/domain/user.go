package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID
	Code         string // 4-digit login code
	PasswordHash string
	DisplayName  string
	IsAdmin      bool
	CreatedAt    time.Time
}

type Store struct {
	ID        uuid.UUID
	StoreID   string // business identifier, unique
	Name      string
	CreatedAt time.Time
}

// Assignment grants a non-admin user visibility into a store's credits.
// Admins see all stores regardless of assignment rows.
type Assignment struct {
	UserCode  string
	StoreID   string
	CreatedAt time.Time
}
