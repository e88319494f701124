package models

import "time"

// Gender values accepted on Child.
const (
	GenderMale   = "male"
	GenderFemale = "female"
)

// CampClass is the fare/priority tier of a child or an enrollment.
type CampClass string

const (
	ClassOther       CampClass = "other"
	ClassMember      CampClass = "member"
	ClassCloseMember CampClass = "close-member"
)

type Guardian struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Firstname string
	Lastname  string
	Phone     string
	Email     string

	Address string
	Zip     string
	City    string

	// Derived from Zip/City, recomputed whenever the address changes.
	IsVienne bool
	IsCCVG   bool

	Children []Child `gorm:"many2many:child_guardians"`
}

// Institution hosts fostered children; it replaces the main guardian.
type Institution struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Name  string
	Phone string
	City  string
}

// WorksCouncil is an employer sponsor that upgrades an enrollment's
// camp class by one tier.
type WorksCouncil struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Name string
	Code string `gorm:"uniqueIndex"`
}

type Skill struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Name string `gorm:"uniqueIndex"`
}

// Document is an administrative paper a camp may require on file for a
// child (health record, vaccination card, swim certificate).
type Document struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Name string `gorm:"uniqueIndex"`
}

type Child struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Firstname string
	Lastname  string
	BirthDate time.Time
	Gender    string

	IsFoster      bool
	InstitutionID *uint
	Institution   *Institution

	IsCPAMember   bool
	HasLicenseFFE bool

	MainGuardianID *uint
	MainGuardian   *Guardian
	Guardians      []Guardian `gorm:"many2many:child_guardians"`

	Skills    []Skill    `gorm:"many2many:child_skills"`
	Documents []Document `gorm:"many2many:child_documents"`

	// Derived from the main guardian's locality or CPA membership.
	CampClass CampClass
}

// Age returns the child's age in whole years at the given date.
func (c Child) Age(at time.Time) int {
	years := at.Year() - c.BirthDate.Year()
	anniversary := c.BirthDate.AddDate(years, 0, 0)
	if anniversary.After(at) {
		years--
	}
	return years
}
