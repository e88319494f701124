package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Camp product kinds. Every camp carries a full product; CLSH camps
// additionally carry a per-day product for partial-week enrollments.
const (
	ProductFull = "full"
	ProductDay  = "day"
)

type Product struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Name string
	Kind string // full | day

	Prices []Price
}

type PriceList struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Name     string
	DateFrom time.Time
	DateTo   time.Time
}

// Contains reports whether the validity window covers the given date.
func (pl PriceList) Contains(at time.Time) bool {
	return !at.Before(pl.DateFrom) && !at.After(pl.DateTo)
}

// Price is one tariff entry: (product, camp class, family-quotient
// bracket, price list window) -> unit amount.
type Price struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	ProductID   uint
	PriceListID uint
	PriceList   PriceList

	CampClass   CampClass
	QuotientMin int
	QuotientMax int // 0 means unbounded

	Amount  decimal.Decimal
	VatRate decimal.Decimal
}

// MatchesQuotient reports whether the family quotient falls inside the
// entry's bracket. Non-CLSH lookups skip this check entirely.
func (p Price) MatchesQuotient(q int) bool {
	if q < p.QuotientMin {
		return false
	}
	if p.QuotientMax > 0 && q > p.QuotientMax {
		return false
	}
	return true
}
