package services

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/discope/camps/internal/models"
)

// classTiers returns the price tiers an enrollment class may use, own
// tier first. Eligibility only ever widens downward: a close-member may
// fall back to member then other prices, a member to other, other stays
// other.
func classTiers(c models.CampClass) []models.CampClass {
	switch c {
	case models.ClassCloseMember:
		return []models.CampClass{models.ClassCloseMember, models.ClassMember, models.ClassOther}
	case models.ClassMember:
		return []models.CampClass{models.ClassMember, models.ClassOther}
	}
	return []models.CampClass{models.ClassOther}
}

// ResolvePrice finds the best-matching price for an enrollment class.
// The first match at the highest eligible tier wins, in candidate
// declaration order; it is not a lowest-price search. quotient bounds
// only apply when clsh is set.
func ResolvePrice(class models.CampClass, quotient int, at time.Time, clsh bool, candidates []models.Product) (*models.Price, bool) {
	for _, tier := range classTiers(class) {
		for _, prod := range candidates {
			for i := range prod.Prices {
				p := &prod.Prices[i]
				if p.CampClass != tier {
					continue
				}
				if !p.PriceList.Contains(at) {
					continue
				}
				if clsh && !p.MatchesQuotient(quotient) {
					continue
				}
				return p, true
			}
		}
	}
	return nil, false
}

// campProduct picks the product and quantity for an enrollment: the
// full product at qty 1 when presence covers every schedulable day (and
// always for non-CLSH camps), otherwise the day product at qty = number
// of present days.
func campProduct(camp models.Camp, presence [5]bool) (kind string, qty int) {
	if !camp.IsClsh {
		return models.ProductFull, 1
	}
	days := camp.SchedulableDays()
	present := 0
	for _, d := range days {
		if presence[d-1] {
			present++
		}
	}
	if present == len(days) {
		return models.ProductFull, 1
	}
	return models.ProductDay, present
}

// ApplyAdapters reduces a base amount: absolute reductions subtract
// first (floored at zero), then the percent reductions sum (capped at
// 100%) and apply to the remainder.
func ApplyAdapters(base decimal.Decimal, adapters []models.PriceAdapter) decimal.Decimal {
	out := base
	for _, a := range adapters {
		if a.Kind == models.AdapterAmount {
			out = out.Sub(a.Value)
		}
	}
	if out.IsNegative() {
		out = decimal.Zero
	}
	percent := decimal.Zero
	for _, a := range adapters {
		if a.Kind == models.AdapterPercent {
			percent = percent.Add(a.Value)
		}
	}
	hundred := decimal.NewFromInt(100)
	if percent.GreaterThan(hundred) {
		percent = hundred
	}
	if percent.IsPositive() {
		out = out.Mul(hundred.Sub(percent)).Div(hundred)
	}
	return out
}

// RegeneratePricing re-derives the enrollment's priced lines and totals
// from its current class, presence and family quotient. It is
// idempotent: the line of the resolved product is created or updated in
// place, and lines of camp products no longer applicable are deleted so
// a full/day switch never leaves a competing stale line.
func RegeneratePricing(tx *gorm.DB, enrollmentID uint) error {
	var enr models.Enrollment
	if err := tx.Preload("Adapters").First(&enr, enrollmentID).Error; err != nil {
		return err
	}
	var camp models.Camp
	if err := tx.Preload("Products.Prices.PriceList").First(&camp, enr.CampID).Error; err != nil {
		return err
	}

	kind, qty := campProduct(camp, enr.PresenceDays())

	var resolved *models.Product
	for i := range camp.Products {
		if camp.Products[i].Kind == kind {
			resolved = &camp.Products[i]
			break
		}
	}

	campProductIDs := make([]uint, 0, len(camp.Products))
	for _, p := range camp.Products {
		campProductIDs = append(campProductIDs, p.ID)
	}

	var price *models.Price
	if resolved != nil && qty > 0 {
		price, _ = ResolvePrice(enr.CampClass, enr.FamilyQuotient, camp.DateFrom, camp.IsClsh,
			[]models.Product{*resolved})
	}

	if price == nil {
		// No applicable tariff: drop the camp-product lines so totals
		// stay a pure function of the current state.
		if len(campProductIDs) > 0 {
			if err := tx.Where("enrollment_id = ? AND product_id IN ?", enr.ID, campProductIDs).
				Delete(&models.EnrollmentLine{}).Error; err != nil {
				return err
			}
		}
		return recomputeTotals(tx, &enr)
	}

	stale := make([]uint, 0, len(campProductIDs))
	for _, id := range campProductIDs {
		if id != resolved.ID {
			stale = append(stale, id)
		}
	}
	if len(stale) > 0 {
		if err := tx.Where("enrollment_id = ? AND product_id IN ?", enr.ID, stale).
			Delete(&models.EnrollmentLine{}).Error; err != nil {
			return err
		}
	}

	total := price.Amount.Mul(decimal.NewFromInt(int64(qty)))
	gross := total.Mul(decimal.NewFromInt(1).Add(price.VatRate))

	var line models.EnrollmentLine
	err := tx.Where("enrollment_id = ? AND product_id = ?", enr.ID, resolved.ID).First(&line).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		line = models.EnrollmentLine{
			EnrollmentID: enr.ID,
			ProductID:    resolved.ID,
			PriceID:      price.ID,
			UnitPrice:    price.Amount,
			Qty:          qty,
			VatRate:      price.VatRate,
			Total:        total,
			Price:        gross,
		}
		if err := tx.Create(&line).Error; err != nil {
			return err
		}
	case err != nil:
		return err
	default:
		line.PriceID = price.ID
		line.UnitPrice = price.Amount
		line.Qty = qty
		line.VatRate = price.VatRate
		line.Total = total
		line.Price = gross
		if err := tx.Save(&line).Error; err != nil {
			return err
		}
	}

	return recomputeTotals(tx, &enr)
}

// recomputeTotals sums the enrollment's lines and applies its adapters.
func recomputeTotals(tx *gorm.DB, enr *models.Enrollment) error {
	var lines []models.EnrollmentLine
	if err := tx.Where("enrollment_id = ?", enr.ID).Find(&lines).Error; err != nil {
		return err
	}
	total := decimal.Zero
	gross := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Total)
		gross = gross.Add(l.Price)
	}
	enr.Total = ApplyAdapters(total, enr.Adapters)
	enr.Price = ApplyAdapters(gross, enr.Adapters)
	return tx.Model(&models.Enrollment{}).Where("id = ?", enr.ID).
		Updates(map[string]any{"total": enr.Total, "price": enr.Price}).Error
}
