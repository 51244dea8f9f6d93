package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreditStatus string

const (
	CreditStatusActive  CreditStatus = "active"
	CreditStatusClaimed CreditStatus = "claimed"
)

// Credit is a redeemable store credit code. A credit is either itemized
// (Items + Reason) or monetary (Amount); both carry customer contact info.
type Credit struct {
	ID            uuid.UUID
	Code          string
	StoreID       string
	Status        CreditStatus
	Amount        *decimal.Decimal
	Items         []string
	Reason        string
	CustomerName  string
	CustomerPhone string
	CreatedBy     string
	DateOfIssue   time.Time
	CreatedAt     time.Time

	// Claim audit fields, set together on claim and cleared together on
	// unclaim. ClaimedByUser is nil for credits claimed before the field
	// existed ("legacy" credits).
	ClaimedAt     *time.Time
	ClaimedBy     *string
	ClaimedByUser *string
}

func (c *Credit) IsMonetary() bool {
	return c.Amount != nil
}

func (c *Credit) IsClaimed() bool {
	return c.Status == CreditStatusClaimed
}
