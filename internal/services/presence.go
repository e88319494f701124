package services

import (
	"time"

	"gorm.io/gorm"

	"github.com/discope/camps/internal/models"
)

// GeneratePresences materializes the per-day attendance rows for a
// confirmed enrollment: one row per selected schedulable day for CLSH
// camps, one row per session day otherwise. Existing rows are replaced.
func GeneratePresences(tx *gorm.DB, enr *models.Enrollment) error {
	if err := DeletePresences(tx, enr.ID); err != nil {
		return err
	}
	var camp models.Camp
	if err := tx.First(&camp, enr.CampID).Error; err != nil {
		return err
	}

	var rows []models.Presence
	if camp.IsClsh {
		presence := enr.PresenceDays()
		daycare := enr.DaycareDays()
		monday := camp.DateFrom
		for _, day := range camp.SchedulableDays() {
			if !presence[day-1] {
				continue
			}
			rows = append(rows, models.Presence{
				EnrollmentID: enr.ID,
				CampID:       camp.ID,
				Date:         monday.AddDate(0, 0, day-1),
				DayIndex:     day,
				IsDaycare:    daycare[day-1],
			})
		}
	} else {
		for d := camp.DateFrom; !d.After(camp.DateTo); d = d.AddDate(0, 0, 1) {
			rows = append(rows, models.Presence{
				EnrollmentID: enr.ID,
				CampID:       camp.ID,
				Date:         d,
			})
		}
	}

	if len(rows) == 0 {
		return nil
	}
	return tx.Create(&rows).Error
}

// DeletePresences removes every attendance row of an enrollment.
func DeletePresences(tx *gorm.DB, enrollmentID uint) error {
	return tx.Where("enrollment_id = ?", enrollmentID).Delete(&models.Presence{}).Error
}

// CheckIn stamps one attendance day of an enrollment, looked up by its
// code. Only confirmed enrollments check in, and only once per day.
func CheckIn(gdb *gorm.DB, code string, date time.Time) error {
	return gdb.Transaction(func(tx *gorm.DB) error {
		var enr models.Enrollment
		if err := tx.Where("code = ?", code).First(&enr).Error; err != nil {
			return err
		}
		if enr.Status != models.StatusConfirmed {
			return reject("status", "invalid_checkin", "only confirmed enrollments can check in")
		}

		day := date.Truncate(24 * time.Hour)
		var p models.Presence
		if err := tx.Where("enrollment_id = ? AND date = ?", enr.ID, day).First(&p).Error; err != nil {
			return err
		}
		if p.CheckInAt != nil {
			return reject("status", "already_checkedin", "presence already checked in")
		}
		now := time.Now()
		p.CheckInAt = &now
		return tx.Save(&p).Error
	})
}
