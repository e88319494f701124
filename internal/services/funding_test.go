package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/discope/camps/internal/models"
)

func TestFunding_AccumulatesAndFlips(t *testing.T) {
	gdb := openTestDB(t)
	camp := seedCamp(t, gdb, 2)
	child := seedChild(t, gdb, "Ana")
	enr, err := CreateEnrollment(gdb, EnrollmentInput{ChildID: child.ID, CampID: camp.ID})
	if err != nil {
		t.Fatal(err)
	}

	f, err := CreateFunding(gdb, enr.ID, decimal.NewFromInt(100), camp.DateFrom)
	if err != nil {
		t.Fatal(err)
	}

	ref, err := AddPayment(gdb, f.ID, decimal.NewFromInt(40), time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if ref == "" {
		t.Fatal("payment ref missing")
	}

	var after models.Funding
	if err := gdb.First(&after, f.ID).Error; err != nil {
		t.Fatal(err)
	}
	if !after.PaidAmount.Equal(decimal.NewFromInt(40)) || after.IsPaid {
		t.Fatalf("partial payment: paid=%s is_paid=%v", after.PaidAmount, after.IsPaid)
	}

	if _, err := AddPayment(gdb, f.ID, decimal.NewFromInt(60), time.Now()); err != nil {
		t.Fatal(err)
	}
	if err := gdb.First(&after, f.ID).Error; err != nil {
		t.Fatal(err)
	}
	if !after.IsPaid {
		t.Fatal("funding should flip to paid at 100/100")
	}
}

// A refund funding (negative due) flips only once payments go at least
// as negative.
func TestFunding_NegativeDue(t *testing.T) {
	gdb := openTestDB(t)
	camp := seedCamp(t, gdb, 2)
	child := seedChild(t, gdb, "Ana")
	enr, err := CreateEnrollment(gdb, EnrollmentInput{ChildID: child.ID, CampID: camp.ID})
	if err != nil {
		t.Fatal(err)
	}

	f, err := CreateFunding(gdb, enr.ID, decimal.NewFromInt(-50), camp.DateFrom)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := AddPayment(gdb, f.ID, decimal.NewFromInt(50), time.Now()); err != nil {
		t.Fatal(err)
	}
	var after models.Funding
	if err := gdb.First(&after, f.ID).Error; err != nil {
		t.Fatal(err)
	}
	if after.IsPaid {
		t.Fatal("positive payment must not settle a refund")
	}

	if _, err := AddPayment(gdb, f.ID, decimal.NewFromInt(-100), time.Now()); err != nil {
		t.Fatal(err)
	}
	if err := gdb.First(&after, f.ID).Error; err != nil {
		t.Fatal(err)
	}
	if !after.IsPaid {
		t.Fatal("refund should settle once paid reaches due with matching sign")
	}
}
