package services

import (
	"time"

	"gorm.io/gorm"

	"github.com/discope/camps/internal/models"
)

// Action is an operator-driven transition of the enrollment workflow.
type Action string

const (
	ActionConfirm  Action = "confirm"
	ActionWaitlist Action = "waitlist"
	ActionRelease  Action = "remove-from-waitlist"
	ActionCancel   Action = "cancel"
)

type transition struct {
	to    models.EnrollmentStatus
	guard func(tx *gorm.DB, enr *models.Enrollment) error
	after func(tx *gorm.DB, enr *models.Enrollment) error
}

// workflow is the explicit transition table. canceled is terminal.
var workflow = map[models.EnrollmentStatus]map[Action]transition{
	models.StatusPending: {
		ActionConfirm: {
			to:    models.StatusConfirmed,
			guard: guardCapacity,
			after: func(tx *gorm.DB, enr *models.Enrollment) error {
				enr.IsLocked = true
				return GeneratePresences(tx, enr)
			},
		},
		ActionWaitlist: {
			to: models.StatusWaitlisted,
		},
		ActionCancel: {
			to:    models.StatusCanceled,
			after: cancelEffects,
		},
	},
	models.StatusWaitlisted: {
		ActionRelease: {
			to:    models.StatusPending,
			guard: guardCapacity,
			after: func(tx *gorm.DB, enr *models.Enrollment) error {
				enr.IsLocked = false
				return nil
			},
		},
		ActionCancel: {
			to:    models.StatusCanceled,
			after: cancelEffects,
		},
	},
	models.StatusConfirmed: {
		ActionCancel: {
			to:    models.StatusCanceled,
			after: cancelEffects,
		},
	},
}

func guardCapacity(tx *gorm.DB, enr *models.Enrollment) error {
	return ValidateEnrollment(tx, Candidate{
		EnrollmentID: enr.ID,
		CampID:       enr.CampID,
		ChildID:      enr.ChildID,
		Status:       models.StatusConfirmed,
		Presence:     enr.PresenceDays(),
		IsAse:        enr.IsAse,
	})
}

func cancelEffects(tx *gorm.DB, enr *models.Enrollment) error {
	enr.IsLocked = false
	now := time.Now()
	enr.CancellationDate = &now
	return DeletePresences(tx, enr.ID)
}

// applyTransition moves the enrollment through the table, runs the
// guard and after-effect, and persists the record. The caller owns the
// transaction and the camp lock.
func applyTransition(tx *gorm.DB, enr *models.Enrollment, action Action) error {
	t, ok := workflow[enr.Status][action]
	if !ok {
		return reject("status", "invalid_transition",
			string(action)+" is not allowed from status "+string(enr.Status))
	}
	if t.guard != nil {
		if err := t.guard(tx, enr); err != nil {
			return err
		}
	}
	enr.Status = t.to
	if t.after != nil {
		if err := t.after(tx, enr); err != nil {
			return err
		}
	}
	return tx.Save(enr).Error
}
