package services

import (
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/discope/camps/internal/models"
)

// CampUsage aggregates the committed enrollments of one camp: whole-camp
// and per-day occupancy plus the ASE count, pending and confirmed only.
type CampUsage struct {
	CampID    uint
	Pending   int64
	Confirmed int64
	Ase       int64
	Day1      int64
	Day2      int64
	Day3      int64
	Day4      int64
	Day5      int64
}

// Total is the whole-camp occupancy (pending + confirmed).
func (u CampUsage) Total() int64 { return u.Pending + u.Confirmed }

// Day returns the occupancy of CLSH day 1..5.
func (u CampUsage) Day(n int) int64 {
	switch n {
	case 1:
		return u.Day1
	case 2:
		return u.Day2
	case 3:
		return u.Day3
	case 4:
		return u.Day4
	case 5:
		return u.Day5
	}
	return 0
}

var (
	usageMu    sync.Mutex
	usageCache = map[uint]CampUsage{}
)

// CampUsageTx computes the usage aggregate inside an existing
// transaction, in a single GROUP-BY-free scan. exclude removes one
// enrollment from the counts (the record being re-validated); pass 0 on
// create.
func CampUsageTx(tx *gorm.DB, campID uint, exclude uint) (CampUsage, error) {
	u := CampUsage{CampID: campID}
	err := tx.Table("enrollments").
		Select(`
			COALESCE(SUM(CASE WHEN status = 'pending'   THEN 1 ELSE 0 END), 0) AS pending,
			COALESCE(SUM(CASE WHEN status = 'confirmed' THEN 1 ELSE 0 END), 0) AS confirmed,
			COALESCE(SUM(CASE WHEN is_ase         THEN 1 ELSE 0 END), 0) AS ase,
			COALESCE(SUM(CASE WHEN presence_day1  THEN 1 ELSE 0 END), 0) AS day1,
			COALESCE(SUM(CASE WHEN presence_day2  THEN 1 ELSE 0 END), 0) AS day2,
			COALESCE(SUM(CASE WHEN presence_day3  THEN 1 ELSE 0 END), 0) AS day3,
			COALESCE(SUM(CASE WHEN presence_day4  THEN 1 ELSE 0 END), 0) AS day4,
			COALESCE(SUM(CASE WHEN presence_day5  THEN 1 ELSE 0 END), 0) AS day5`).
		Where("camp_id = ? AND status IN ? AND id <> ?",
			campID, []models.EnrollmentStatus{models.StatusPending, models.StatusConfirmed}, exclude).
		Scan(&u).Error
	return u, err
}

// CampUsageCached serves read paths (reports) from the per-camp memo;
// validators always go through CampUsageTx for a fresh in-transaction
// read.
func CampUsageCached(gdb *gorm.DB, campID uint) (CampUsage, error) {
	usageMu.Lock()
	if u, ok := usageCache[campID]; ok {
		usageMu.Unlock()
		return u, nil
	}
	usageMu.Unlock()

	u, err := CampUsageTx(gdb, campID, 0)
	if err != nil {
		return u, err
	}
	usageMu.Lock()
	usageCache[campID] = u
	usageMu.Unlock()
	return u, nil
}

// InvalidateCampCounters drops the memoized aggregate for a camp. Every
// state transition and every committed enrollment write calls this.
func InvalidateCampCounters(campID uint) {
	usageMu.Lock()
	delete(usageCache, campID)
	usageMu.Unlock()
}

// ResetCampCounters drops every memoized aggregate. Used when the
// backing database is swapped, as tests do.
func ResetCampCounters() {
	usageMu.Lock()
	usageCache = map[uint]CampUsage{}
	usageMu.Unlock()
}

// GroupCount returns the number of animator groups of a camp; camps
// without explicit groups count as one.
func GroupCount(tx *gorm.DB, campID uint) (int64, error) {
	var n int64
	if err := tx.Model(&models.CampGroup{}).Where("camp_id = ?", campID).Count(&n).Error; err != nil {
		return 0, err
	}
	if n == 0 {
		n = 1
	}
	return n, nil
}

// AssignGroupEmployee puts an employee in charge of a camp group. An
// employee may lead at most one group per camp.
func AssignGroupEmployee(gdb *gorm.DB, groupID, employeeID uint) error {
	return gdb.Transaction(func(tx *gorm.DB) error {
		var group models.CampGroup
		if err := tx.First(&group, groupID).Error; err != nil {
			return err
		}
		var n int64
		if err := tx.Model(&models.CampGroup{}).
			Where("camp_id = ? AND employee_id = ? AND id <> ?", group.CampID, employeeID, groupID).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return reject("employee_id", CodeAlreadyAssigned,
				"employee already leads a group of this camp")
		}
		group.EmployeeID = &employeeID
		return tx.Save(&group).Error
	})
}

// RemoveGroup deletes a camp group unless the remaining groups could no
// longer host the committed enrollments. The guard runs pre-delete, so a
// refusal leaves no partial effects behind.
func RemoveGroup(gdb *gorm.DB, groupID uint) error {
	return gdb.Transaction(func(tx *gorm.DB) error {
		var group models.CampGroup
		if err := tx.First(&group, groupID).Error; err != nil {
			return err
		}
		var camp models.Camp
		if err := tx.First(&camp, group.CampID).Error; err != nil {
			return err
		}
		groups, err := GroupCount(tx, camp.ID)
		if err != nil {
			return err
		}
		usage, err := CampUsageTx(tx, camp.ID, 0)
		if err != nil {
			return err
		}
		remaining := (groups - 1) * int64(camp.EmployeeRatio)
		if usage.Total() > remaining {
			return reject("camp_id", CodeCampFull, fmt.Sprintf(
				"removing group %d leaves room for %d children but %d are enrolled",
				group.Number, remaining, usage.Total()))
		}
		return tx.Delete(&group).Error
	})
}

// CapacityRow is one camp in the operator capacity report.
type CapacityRow struct {
	CampID      uint
	Name        string
	DateFrom    time.Time
	DateTo      time.Time
	MaxChildren int
	Pending     int64
	Confirmed   int64
	Ase         int64
	Available   int
	FillPercent int
}

// CapacityReport lists every camp starting inside the window with its
// usage aggregate, newest first.
func CapacityReport(gdb *gorm.DB, from, to time.Time) ([]CapacityRow, error) {
	var camps []models.Camp
	if err := gdb.
		Where("date_from BETWEEN ? AND ?", from, to).
		Order("date_from desc, name asc").
		Find(&camps).Error; err != nil {
		return nil, err
	}

	rows := make([]CapacityRow, 0, len(camps))
	for _, c := range camps {
		u, err := CampUsageCached(gdb, c.ID)
		if err != nil {
			return nil, err
		}
		avail := c.MaxChildren - int(u.Total())
		if avail < 0 {
			avail = 0
		}
		fill := 0
		if c.MaxChildren > 0 {
			fill = int(u.Total() * 100 / int64(c.MaxChildren))
		}
		rows = append(rows, CapacityRow{
			CampID:      c.ID,
			Name:        c.Name,
			DateFrom:    c.DateFrom,
			DateTo:      c.DateTo,
			MaxChildren: c.MaxChildren,
			Pending:     u.Pending,
			Confirmed:   u.Confirmed,
			Ase:         u.Ase,
			Available:   avail,
			FillPercent: fill,
		})
	}
	return rows, nil
}
