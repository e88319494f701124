package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/discope/camps/internal/models"
)

// CreateFunding attaches an expected payment to an enrollment.
func CreateFunding(gdb *gorm.DB, enrollmentID uint, due decimal.Decimal, dueDate time.Time) (*models.Funding, error) {
	f := models.Funding{
		EnrollmentID: enrollmentID,
		DueAmount:    due,
		PaidAmount:   decimal.Zero,
		DueDate:      dueDate,
	}
	if err := gdb.Create(&f).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

// AddPayment records a payment against a funding and re-accumulates it.
// The generated reference is returned for receipts.
func AddPayment(gdb *gorm.DB, fundingID uint, amount decimal.Decimal, receivedAt time.Time) (string, error) {
	ref := uuid.NewString()
	err := gdb.Transaction(func(tx *gorm.DB) error {
		var f models.Funding
		if err := tx.First(&f, fundingID).Error; err != nil {
			return err
		}
		if err := tx.Create(&models.Payment{
			FundingID:  f.ID,
			Ref:        ref,
			Amount:     amount,
			ReceivedAt: receivedAt,
		}).Error; err != nil {
			return err
		}
		return recomputeFunding(tx, &f)
	})
	if err != nil {
		return "", err
	}
	return ref, nil
}

// recomputeFunding sums the attached payments. IsPaid flips once the
// paid amount reaches the due amount with a matching sign (refund
// fundings carry a negative due amount).
func recomputeFunding(tx *gorm.DB, f *models.Funding) error {
	var payments []models.Payment
	if err := tx.Where("funding_id = ?", f.ID).Find(&payments).Error; err != nil {
		return err
	}
	paid := decimal.Zero
	for _, p := range payments {
		paid = paid.Add(p.Amount)
	}
	f.PaidAmount = paid
	if f.DueAmount.IsNegative() {
		f.IsPaid = paid.LessThanOrEqual(f.DueAmount)
	} else {
		f.IsPaid = paid.GreaterThanOrEqual(f.DueAmount)
	}
	return tx.Save(f).Error
}
