package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// EnrollmentStatus is the lifecycle state of an enrollment.
type EnrollmentStatus string

const (
	StatusPending    EnrollmentStatus = "pending"
	StatusWaitlisted EnrollmentStatus = "waitlisted"
	StatusConfirmed  EnrollmentStatus = "confirmed"
	StatusCanceled   EnrollmentStatus = "canceled"
)

// Occupies reports whether the status counts against camp capacity.
func (s EnrollmentStatus) Occupies() bool {
	return s == StatusPending || s == StatusConfirmed
}

type Enrollment struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	ChildID uint
	Child   Child
	CampID  uint
	Camp    Camp

	Status   EnrollmentStatus
	IsLocked bool
	Code     string `gorm:"uniqueIndex"` // e.g. ENR-482913

	CancellationDate *time.Time

	// Per-enrollment class, possibly upgraded by a works council.
	CampClass      CampClass
	WorksCouncilID *uint
	WorksCouncil   *WorksCouncil

	ChildAge int // at camp start, frozen at enrollment time

	IsAse          bool
	FamilyQuotient int // CLSH pricing input

	// CLSH day selection (Monday..Friday).
	PresenceDay1 bool
	PresenceDay2 bool
	PresenceDay3 bool
	PresenceDay4 bool
	PresenceDay5 bool
	DaycareDay1  bool
	DaycareDay2  bool
	DaycareDay3  bool
	DaycareDay4  bool
	DaycareDay5  bool

	// Totals after price adapters; Total is VAT-exclusive.
	Total decimal.Decimal
	Price decimal.Decimal

	Lines    []EnrollmentLine
	Adapters []PriceAdapter
}

// PresenceDays returns the day selection as a 1-indexed-friendly array
// (index 0 holds day 1).
func (e Enrollment) PresenceDays() [5]bool {
	return [5]bool{e.PresenceDay1, e.PresenceDay2, e.PresenceDay3, e.PresenceDay4, e.PresenceDay5}
}

// DaycareDays mirrors PresenceDays for the daycare selection.
func (e Enrollment) DaycareDays() [5]bool {
	return [5]bool{e.DaycareDay1, e.DaycareDay2, e.DaycareDay3, e.DaycareDay4, e.DaycareDay5}
}

// SetPresenceDays writes back a day selection array.
func (e *Enrollment) SetPresenceDays(d [5]bool) {
	e.PresenceDay1, e.PresenceDay2, e.PresenceDay3, e.PresenceDay4, e.PresenceDay5 = d[0], d[1], d[2], d[3], d[4]
}

// SetDaycareDays writes back a daycare selection array.
func (e *Enrollment) SetDaycareDays(d [5]bool) {
	e.DaycareDay1, e.DaycareDay2, e.DaycareDay3, e.DaycareDay4, e.DaycareDay5 = d[0], d[1], d[2], d[3], d[4]
}

type EnrollmentLine struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	EnrollmentID uint
	ProductID    uint
	Product      Product
	PriceID      uint

	UnitPrice decimal.Decimal
	Qty       int
	VatRate   decimal.Decimal

	Total decimal.Decimal // unit_price * qty
	Price decimal.Decimal // total * (1 + vat_rate)
}

// PriceAdapter kinds. Amount adapters subtract an absolute value,
// percent adapters a relative one; see pricing.ApplyAdapters for the
// stacking rule.
const (
	AdapterAmount  = "amount"
	AdapterPercent = "percent"
)

type PriceAdapter struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	EnrollmentID uint
	Kind         string // amount | percent
	Value        decimal.Decimal
	Label        string
}
