package services

import (
	"testing"

	"github.com/discope/camps/internal/models"
)

func TestDeriveLocality(t *testing.T) {
	cases := []struct {
		zip, city    string
		vienne, ccvg bool
	}{
		{"86500", "Montmorillon", true, true},
		{"86500", "MONTMORILLON ", true, true},
		{"86000", "Poitiers", true, false},
		{"87000", "Limoges", true, false},
		{"75011", "Paris", false, false},
		{"", "Montmorillon", false, false}, // CCVG requires Vienne
	}
	for _, c := range cases {
		g := models.Guardian{Zip: c.zip, City: c.city}
		DeriveLocality(&g)
		if g.IsVienne != c.vienne || g.IsCCVG != c.ccvg {
			t.Errorf("%s %s: want vienne=%v ccvg=%v, got %v %v",
				c.zip, c.city, c.vienne, c.ccvg, g.IsVienne, g.IsCCVG)
		}
	}
}

func TestChildClass(t *testing.T) {
	ccvg := models.Guardian{Zip: "86500", City: "Montmorillon"}
	DeriveLocality(&ccvg)
	vienne := models.Guardian{Zip: "86000", City: "Poitiers"}
	DeriveLocality(&vienne)
	paris := models.Guardian{Zip: "75011", City: "Paris"}
	DeriveLocality(&paris)

	if got := ChildClass(models.Child{}, &ccvg); got != models.ClassCloseMember {
		t.Errorf("ccvg guardian: want close-member, got %s", got)
	}
	if got := ChildClass(models.Child{}, &vienne); got != models.ClassMember {
		t.Errorf("vienne guardian: want member, got %s", got)
	}
	if got := ChildClass(models.Child{}, &paris); got != models.ClassOther {
		t.Errorf("outside guardian: want other, got %s", got)
	}
	if got := ChildClass(models.Child{IsCPAMember: true}, &paris); got != models.ClassMember {
		t.Errorf("CPA member overrides locality: want member, got %s", got)
	}
	if got := ChildClass(models.Child{IsCPAMember: true}, nil); got != models.ClassMember {
		t.Errorf("fostered CPA member: want member, got %s", got)
	}
}

func TestEnrollmentClass_WorksCouncilUpgrade(t *testing.T) {
	child := models.Child{CampClass: models.ClassOther}
	if got := EnrollmentClass(child, true); got != models.ClassMember {
		t.Errorf("works council upgrade: want member, got %s", got)
	}
	child.CampClass = models.ClassCloseMember
	if got := EnrollmentClass(child, true); got != models.ClassCloseMember {
		t.Errorf("close-member stays put, got %s", got)
	}
	child.CampClass = models.ClassMember
	if got := EnrollmentClass(child, false); got != models.ClassMember {
		t.Errorf("no sponsor, class unchanged, got %s", got)
	}
}
