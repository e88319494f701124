package services

import (
	"errors"
	"fmt"
)

// Rejection is a business-rule refusal of a mutating operation. It is
// always synchronous and never retried; persistence failures propagate
// as plain errors instead.
type Rejection struct {
	Field   string
	Code    string
	Message string
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("%s: %s (%s)", r.Field, r.Code, r.Message)
}

// Rejection codes, keyed by the field they blame.
const (
	CodeCanceledCamp        = "canceled_camp"
	CodeCampFull            = "camp_full"
	CodeTooManyAse          = "too_many_ase_children"
	CodeMissingInstitution  = "missing_institution"
	CodeMissingMainGuardian = "missing_main_guardian"
	CodeAlreadyEnrolled     = "already_enrolled"
	CodeEnrolledElsewhere   = "already_enrolled_to_other_camp"
	CodeMissingSkill        = "missing_skill"
	CodeNeedLicenseFFE      = "need_license_ffe"
	CodeNeedsPresentDay     = "needs_at_least_one_present_day"
	CodeLockedEnrollment    = "locked_enrollment"
	CodeAlreadyAssigned     = "already_assigned"
)

// DayFullCode builds the per-day capacity code for CLSH camps, e.g.
// day_3_full.
func DayFullCode(day int) string {
	return fmt.Sprintf("day_%d_full", day)
}

func reject(field, code, msg string) *Rejection {
	return &Rejection{Field: field, Code: code, Message: msg}
}

// AsRejection unwraps a Rejection from err, if any.
func AsRejection(err error) (*Rejection, bool) {
	var r *Rejection
	if errors.As(err, &r) {
		return r, true
	}
	return nil, false
}
