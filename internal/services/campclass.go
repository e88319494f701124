package services

import (
	"strings"

	"github.com/discope/camps/internal/models"
)

// Cities of the Vienne & Gartempe communauté de communes. Guardians
// living here give their children the close-member tier.
var ccvgCities = map[string]bool{
	"montmorillon":        true,
	"lussac-les-chateaux": true,
	"l'isle-jourdain":     true,
	"availles-limouzine":  true,
	"la trimouille":       true,
	"saint-savin":         true,
	"valdivienne":         true,
	"usson-du-poitou":     true,
}

// NormCity lowercases and strips a city name for whitelist lookup.
func NormCity(city string) string {
	s := strings.ToLower(strings.TrimSpace(city))
	s = strings.Join(strings.Fields(s), " ")
	return s
}

// IsVienne reports whether a zip code belongs to the Vienne or
// Haute-Vienne departments (86/87 prefixes).
func IsVienne(zip string) bool {
	z := strings.TrimSpace(zip)
	return len(z) >= 2 && (z[:2] == "86" || z[:2] == "87")
}

// DeriveLocality recomputes a guardian's locality flags from its
// address. IsCCVG only ever holds inside Vienne.
func DeriveLocality(g *models.Guardian) {
	g.IsVienne = IsVienne(g.Zip)
	g.IsCCVG = g.IsVienne && ccvgCities[NormCity(g.City)]
}

// ChildClass derives a child's camp class from its main guardian's
// locality, upgraded to member for CPA members.
func ChildClass(child models.Child, main *models.Guardian) models.CampClass {
	if main != nil {
		if main.IsCCVG {
			return models.ClassCloseMember
		}
		if main.IsVienne {
			return models.ClassMember
		}
	}
	if child.IsCPAMember {
		return models.ClassMember
	}
	return models.ClassOther
}

// UpgradeClass bumps a class one tier up; close-member stays put.
func UpgradeClass(c models.CampClass) models.CampClass {
	switch c {
	case models.ClassOther:
		return models.ClassMember
	case models.ClassMember:
		return models.ClassCloseMember
	}
	return c
}

// EnrollmentClass is the per-enrollment class: the child's class, lifted
// one tier when a works council sponsors the enrollment.
func EnrollmentClass(child models.Child, worksCouncil bool) models.CampClass {
	if worksCouncil {
		return UpgradeClass(child.CampClass)
	}
	return child.CampClass
}
