package services

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/discope/camps/internal/models"
)

// Candidate is the enrollment mutation to validate: either a new record
// (EnrollmentID zero) or the target state of an existing one. Validation
// is a pure read, nothing is written.
type Candidate struct {
	EnrollmentID uint
	CampID       uint
	ChildID      uint
	Status       models.EnrollmentStatus
	Presence     [5]bool
	IsAse        bool
}

// ValidateEnrollment runs the eligibility and capacity checks in order,
// short-circuiting on the first failure with a Rejection. Callers must
// hold the camp lock and run inside the transaction that performs the
// subsequent write, otherwise two concurrent submissions can both pass
// the count checks.
func ValidateEnrollment(tx *gorm.DB, cand Candidate) error {
	var camp models.Camp
	if err := tx.Preload("RequiredSkills").First(&camp, cand.CampID).Error; err != nil {
		return err
	}
	if camp.Status == models.CampCanceled {
		return reject("camp_id", CodeCanceledCamp, "camp has been canceled")
	}

	if cand.Status.Occupies() {
		usage, err := CampUsageTx(tx, camp.ID, cand.EnrollmentID)
		if err != nil {
			return err
		}
		if camp.IsClsh {
			for _, day := range camp.SchedulableDays() {
				if !cand.Presence[day-1] {
					continue
				}
				if usage.Day(day) >= int64(camp.MaxChildren) {
					return reject("camp_id", DayFullCode(day),
						fmt.Sprintf("day %d of the camp is full", day))
				}
			}
		} else if usage.Total() >= int64(camp.MaxChildren) {
			return reject("camp_id", CodeCampFull, "camp is full")
		}
	}

	var child models.Child
	if err := tx.Preload("Skills").First(&child, cand.ChildID).Error; err != nil {
		return err
	}
	if child.IsFoster {
		if child.InstitutionID == nil {
			return reject("child_id", CodeMissingInstitution, "fostered child has no institution")
		}
	} else if child.MainGuardianID == nil {
		return reject("child_id", CodeMissingMainGuardian, "child has no main guardian")
	}

	var dup int64
	if err := tx.Model(&models.Enrollment{}).
		Where("child_id = ? AND camp_id = ? AND status <> ? AND id <> ?",
			cand.ChildID, cand.CampID, models.StatusCanceled, cand.EnrollmentID).
		Count(&dup).Error; err != nil {
		return err
	}
	if dup > 0 {
		return reject("child_id", CodeAlreadyEnrolled, "child is already enrolled to this camp")
	}

	if cand.IsAse {
		usage, err := CampUsageTx(tx, camp.ID, cand.EnrollmentID)
		if err != nil {
			return err
		}
		groups, err := GroupCount(tx, camp.ID)
		if err != nil {
			return err
		}
		if usage.Ase+1 > int64(camp.AseQuota)*groups {
			return reject("camp_id", CodeTooManyAse, "ASE quota of the camp is reached")
		}
	}

	have := make(map[uint]bool, len(child.Skills))
	for _, s := range child.Skills {
		have[s.ID] = true
	}
	for _, s := range camp.RequiredSkills {
		if !have[s.ID] {
			return reject("child_id", CodeMissingSkill,
				fmt.Sprintf("child lacks required skill %q", s.Name))
		}
	}

	if camp.RequiresLicenseFFE && !child.HasLicenseFFE {
		return reject("child_id", CodeNeedLicenseFFE, "camp requires an FFE license")
	}

	var overlap int64
	if err := tx.Model(&models.Enrollment{}).
		Joins("JOIN camps ON camps.id = enrollments.camp_id").
		Where("enrollments.child_id = ? AND enrollments.status <> ? AND enrollments.id <> ?",
			cand.ChildID, models.StatusCanceled, cand.EnrollmentID).
		Where("camps.id <> ? AND camps.date_from <= ? AND camps.date_to >= ?",
			camp.ID, camp.DateTo, camp.DateFrom).
		Count(&overlap).Error; err != nil {
		return err
	}
	if overlap > 0 {
		return reject("child_id", CodeEnrolledElsewhere,
			"child is enrolled to another camp over the same dates")
	}

	if camp.IsClsh {
		any := false
		for _, day := range camp.SchedulableDays() {
			if cand.Presence[day-1] {
				any = true
				break
			}
		}
		if !any {
			return reject("is_clsh", CodeNeedsPresentDay, "select at least one day of presence")
		}
	}

	return nil
}
