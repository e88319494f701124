package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Funding is one expected payment attached to an enrollment. PaidAmount
// accumulates attached payments; IsPaid flips once it reaches DueAmount
// with a matching sign.
type Funding struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	EnrollmentID uint

	DueAmount  decimal.Decimal
	PaidAmount decimal.Decimal
	IsPaid     bool
	DueDate    time.Time

	Payments []Payment
}

type Payment struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	FundingID uint
	Ref       string `gorm:"uniqueIndex"`
	Amount    decimal.Decimal

	ReceivedAt time.Time
}
