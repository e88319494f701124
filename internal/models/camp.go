package models

import "time"

// Camp status. A canceled camp refuses every new enrollment.
const (
	CampPublished = "published"
	CampCanceled  = "canceled"
)

// CLSH variants. A 4-days camp has no Wednesday slot.
const (
	Clsh5Days = "5-days"
	Clsh4Days = "4-days"
)

type Camp struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Name     string
	Status   string
	DateFrom time.Time
	DateTo   time.Time

	MaxChildren   int
	EmployeeRatio int // children per animator group
	AseQuota      int // ASE seats per group

	MinAge int
	MaxAge int

	IsClsh   bool
	ClshType string // 5-days | 4-days, only when IsClsh

	RequiresLicenseFFE bool
	RequiredSkills     []Skill    `gorm:"many2many:camp_required_skills"`
	RequiredDocuments  []Document `gorm:"many2many:camp_required_documents"`
	Products           []Product  `gorm:"many2many:camp_products"`

	Groups []CampGroup
}

// SchedulableDays lists the CLSH day indexes (1..5, Monday first) that a
// camp can actually run. Non-CLSH camps have no per-day granularity.
func (c Camp) SchedulableDays() []int {
	if !c.IsClsh {
		return nil
	}
	if c.ClshType == Clsh4Days {
		return []int{1, 2, 4, 5}
	}
	return []int{1, 2, 3, 4, 5}
}

// Overlaps reports whether two camp session windows intersect.
func (c Camp) Overlaps(from, to time.Time) bool {
	return !c.DateFrom.After(to) && !from.After(c.DateTo)
}

type Employee struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Name string
}

// CampGroup is one animator-led group inside a camp. Group count gates
// the camp's ASE quota and its deletable capacity.
type CampGroup struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	CampID uint
	Camp   Camp
	Number int

	EmployeeID *uint
	Employee   *Employee
}

// Presence is one materialized attendance day for a confirmed
// enrollment. Rows are generated on confirmation and deleted on
// cancellation.
type Presence struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	EnrollmentID uint
	CampID       uint

	Date      time.Time
	DayIndex  int // 1..5 for CLSH camps, 0 otherwise
	IsDaycare bool

	CheckInAt *time.Time // nil until checked-in on site
}
