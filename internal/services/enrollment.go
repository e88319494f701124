package services

import (
	"fmt"
	"math/rand"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/discope/camps/internal/events"
	"github.com/discope/camps/internal/models"
)

// Log is the package logger; the CLI swaps in a real one at startup.
var Log = zap.NewNop()

var validate = validator.New()

// EnrollmentInput is the creation payload. Presence and daycare days are
// only meaningful for CLSH camps.
type EnrollmentInput struct {
	ChildID        uint `validate:"required"`
	CampID         uint `validate:"required"`
	FamilyQuotient int  `validate:"gte=0"`
	IsAse          bool
	WorksCouncilID *uint
	PresenceDays   [5]bool
	DaycareDays    [5]bool
}

// CreateEnrollment validates and creates a pending enrollment, then
// derives its priced lines. The whole operation is one transaction under
// the camp lock; a Rejection leaves nothing behind.
func CreateEnrollment(gdb *gorm.DB, in EnrollmentInput) (*models.Enrollment, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	unlock := lockCamp(in.CampID)
	defer unlock()

	var enr models.Enrollment
	err := gdb.Transaction(func(tx *gorm.DB) error {
		var child models.Child
		if err := tx.Preload("MainGuardian").First(&child, in.ChildID).Error; err != nil {
			return err
		}
		var camp models.Camp
		if err := tx.First(&camp, in.CampID).Error; err != nil {
			return err
		}

		if err := ValidateEnrollment(tx, Candidate{
			CampID:   in.CampID,
			ChildID:  in.ChildID,
			Status:   models.StatusPending,
			Presence: in.PresenceDays,
			IsAse:    in.IsAse,
		}); err != nil {
			return err
		}

		code, err := generateEnrollmentCode(tx)
		if err != nil {
			return err
		}

		child.CampClass = ChildClass(child, child.MainGuardian)
		enr = models.Enrollment{
			ChildID:        in.ChildID,
			CampID:         in.CampID,
			Status:         models.StatusPending,
			Code:           code,
			CampClass:      EnrollmentClass(child, in.WorksCouncilID != nil),
			WorksCouncilID: in.WorksCouncilID,
			ChildAge:       child.Age(camp.DateFrom),
			IsAse:          in.IsAse,
			FamilyQuotient: in.FamilyQuotient,
		}
		enr.SetPresenceDays(in.PresenceDays)
		enr.SetDaycareDays(in.DaycareDays)

		if err := tx.Create(&enr).Error; err != nil {
			return err
		}
		if err := RegeneratePricing(tx, enr.ID); err != nil {
			return err
		}
		return tx.First(&enr, enr.ID).Error
	})
	if err != nil {
		return nil, err
	}

	InvalidateCampCounters(in.CampID)
	Log.Info("enrollment created",
		zap.Uint("enrollment_id", enr.ID),
		zap.Uint("camp_id", enr.CampID),
		zap.Uint("child_id", enr.ChildID),
		zap.String("code", enr.Code))
	return &enr, nil
}

// EnrollmentPatch mutates a pending or waitlisted enrollment; nil fields
// stay untouched. Locked (confirmed) enrollments reject every patch.
type EnrollmentPatch struct {
	FamilyQuotient    *int
	IsAse             *bool
	WorksCouncilID    *uint
	ClearWorksCouncil bool
	PresenceDays      *[5]bool
	DaycareDays       *[5]bool
}

func (p EnrollmentPatch) empty() bool {
	return p.FamilyQuotient == nil && p.IsAse == nil && p.WorksCouncilID == nil &&
		!p.ClearWorksCouncil && p.PresenceDays == nil && p.DaycareDays == nil
}

// UpdateEnrollment applies a patch, re-running eligibility when the day
// selection or ASE flag moves and repricing when a pricing input moves.
func UpdateEnrollment(gdb *gorm.DB, enrollmentID uint, patch EnrollmentPatch) error {
	if patch.empty() {
		return nil
	}

	campID, err := enrollmentCamp(gdb, enrollmentID)
	if err != nil {
		return err
	}
	unlock := lockCamp(campID)
	defer unlock()

	err = gdb.Transaction(func(tx *gorm.DB) error {
		var enr models.Enrollment
		if err := tx.First(&enr, enrollmentID).Error; err != nil {
			return err
		}

		if enr.IsLocked {
			return reject("is_locked", CodeLockedEnrollment,
				"confirmed enrollment only accepts cancellation")
		}

		revalidate := false
		reprice := false

		if patch.FamilyQuotient != nil && *patch.FamilyQuotient != enr.FamilyQuotient {
			enr.FamilyQuotient = *patch.FamilyQuotient
			reprice = true
		}
		if patch.IsAse != nil && *patch.IsAse != enr.IsAse {
			enr.IsAse = *patch.IsAse
			revalidate = true
		}
		if patch.ClearWorksCouncil && enr.WorksCouncilID != nil {
			enr.WorksCouncilID = nil
			reprice = true
		} else if patch.WorksCouncilID != nil {
			enr.WorksCouncilID = patch.WorksCouncilID
			reprice = true
		}
		if patch.PresenceDays != nil && *patch.PresenceDays != enr.PresenceDays() {
			enr.SetPresenceDays(*patch.PresenceDays)
			revalidate = true
			reprice = true
		}
		if patch.DaycareDays != nil {
			enr.SetDaycareDays(*patch.DaycareDays)
		}

		if reprice {
			var child models.Child
			if err := tx.Preload("MainGuardian").First(&child, enr.ChildID).Error; err != nil {
				return err
			}
			child.CampClass = ChildClass(child, child.MainGuardian)
			enr.CampClass = EnrollmentClass(child, enr.WorksCouncilID != nil)
		}

		if revalidate {
			if err := ValidateEnrollment(tx, Candidate{
				EnrollmentID: enr.ID,
				CampID:       enr.CampID,
				ChildID:      enr.ChildID,
				Status:       enr.Status,
				Presence:     enr.PresenceDays(),
				IsAse:        enr.IsAse,
			}); err != nil {
				return err
			}
		}

		if err := tx.Save(&enr).Error; err != nil {
			return err
		}
		if reprice {
			return RegeneratePricing(tx, enr.ID)
		}
		return nil
	})
	if err != nil {
		return err
	}
	InvalidateCampCounters(campID)
	return nil
}

// enrollmentCamp resolves the owning camp so callers can take its lock
// before opening the validate-then-write transaction.
func enrollmentCamp(gdb *gorm.DB, enrollmentID uint) (uint, error) {
	var enr models.Enrollment
	if err := gdb.Select("id", "camp_id").First(&enr, enrollmentID).Error; err != nil {
		return 0, err
	}
	return enr.CampID, nil
}

// transitionEnrollment wraps a workflow action in the camp lock + tx.
func transitionEnrollment(gdb *gorm.DB, enrollmentID uint, action Action) (*models.Enrollment, error) {
	campID, err := enrollmentCamp(gdb, enrollmentID)
	if err != nil {
		return nil, err
	}

	unlock := lockCamp(campID)
	defer unlock()

	var enr models.Enrollment
	err = gdb.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&enr, enrollmentID).Error; err != nil {
			return err
		}
		return applyTransition(tx, &enr, action)
	})
	if err != nil {
		return nil, err
	}

	InvalidateCampCounters(enr.CampID)
	Log.Info("enrollment transition",
		zap.Uint("enrollment_id", enr.ID),
		zap.String("action", string(action)),
		zap.String("status", string(enr.Status)))
	return &enr, nil
}

// ConfirmEnrollment locks the record and materializes its presences.
func ConfirmEnrollment(gdb *gorm.DB, enrollmentID uint) error {
	_, err := transitionEnrollment(gdb, enrollmentID, ActionConfirm)
	return err
}

// WaitlistEnrollment parks a pending enrollment on the waitlist.
func WaitlistEnrollment(gdb *gorm.DB, enrollmentID uint) error {
	_, err := transitionEnrollment(gdb, enrollmentID, ActionWaitlist)
	return err
}

// ReleaseFromWaitlist moves a waitlisted enrollment back to pending,
// guarded by a fresh capacity check, and fires the promotion hook.
func ReleaseFromWaitlist(gdb *gorm.DB, enrollmentID uint) error {
	enr, err := transitionEnrollment(gdb, enrollmentID, ActionRelease)
	if err != nil {
		return err
	}
	if events.OnWaitlistRelease != nil {
		events.OnWaitlistRelease(*enr)
	}
	return nil
}

// CancelEnrollment is valid from every non-terminal status.
func CancelEnrollment(gdb *gorm.DB, enrollmentID uint) error {
	_, err := transitionEnrollment(gdb, enrollmentID, ActionCancel)
	return err
}

// CancelByCode cancels an enrollment by its public code. Canceling an
// already-canceled enrollment is a no-op.
func CancelByCode(gdb *gorm.DB, code string) error {
	var enr models.Enrollment
	if err := gdb.Where("code = ?", code).First(&enr).Error; err != nil {
		return err
	}
	if enr.Status == models.StatusCanceled {
		return nil
	}
	return CancelEnrollment(gdb, enr.ID)
}

// DeleteEnrollment removes the record and everything hanging off it:
// lines, adapters, presences and fundings with their payments.
func DeleteEnrollment(gdb *gorm.DB, enrollmentID uint) error {
	var campID uint
	err := gdb.Transaction(func(tx *gorm.DB) error {
		var enr models.Enrollment
		if err := tx.First(&enr, enrollmentID).Error; err != nil {
			return err
		}
		campID = enr.CampID

		if err := tx.Where("enrollment_id = ?", enr.ID).Delete(&models.EnrollmentLine{}).Error; err != nil {
			return err
		}
		if err := tx.Where("enrollment_id = ?", enr.ID).Delete(&models.PriceAdapter{}).Error; err != nil {
			return err
		}
		if err := DeletePresences(tx, enr.ID); err != nil {
			return err
		}
		var fundings []models.Funding
		if err := tx.Where("enrollment_id = ?", enr.ID).Find(&fundings).Error; err != nil {
			return err
		}
		for _, f := range fundings {
			if err := tx.Where("funding_id = ?", f.ID).Delete(&models.Payment{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("enrollment_id = ?", enr.ID).Delete(&models.Funding{}).Error; err != nil {
			return err
		}
		return tx.Delete(&enr).Error
	})
	if err != nil {
		return err
	}
	InvalidateCampCounters(campID)
	return nil
}

// AddPriceAdapter attaches a reduction to an unlocked enrollment and
// recomputes its totals.
func AddPriceAdapter(gdb *gorm.DB, enrollmentID uint, kind string, value decimal.Decimal, label string) error {
	if kind != models.AdapterAmount && kind != models.AdapterPercent {
		return fmt.Errorf("unknown adapter kind %q", kind)
	}

	campID, err := enrollmentCamp(gdb, enrollmentID)
	if err != nil {
		return err
	}
	unlock := lockCamp(campID)
	defer unlock()

	return gdb.Transaction(func(tx *gorm.DB) error {
		var enr models.Enrollment
		if err := tx.First(&enr, enrollmentID).Error; err != nil {
			return err
		}
		if enr.IsLocked {
			return reject("is_locked", CodeLockedEnrollment,
				"confirmed enrollment only accepts cancellation")
		}
		if err := tx.Create(&models.PriceAdapter{
			EnrollmentID: enr.ID,
			Kind:         kind,
			Value:        value,
			Label:        label,
		}).Error; err != nil {
			return err
		}
		return RegeneratePricing(tx, enr.ID)
	})
}

// generateEnrollmentCode creates a unique ENR-xxxxxx code.
func generateEnrollmentCode(tx *gorm.DB) (string, error) {
	for i := 0; i < 20; i++ {
		code := fmt.Sprintf("ENR-%06d", rand.Intn(1000000))
		var exists int64
		if err := tx.Model(&models.Enrollment{}).Where("code = ?", code).Count(&exists).Error; err != nil {
			return "", err
		}
		if exists == 0 {
			return code, nil
		}
	}
	return "", fmt.Errorf("could not generate a free enrollment code")
}
