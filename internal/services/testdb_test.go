package services

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/discope/camps/internal/db"
	"github.com/discope/camps/internal/models"
)

// openTestDB returns an isolated in-file SQLite database in a temp directory.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dir := t.TempDir()
	dsn := filepath.Join(dir, "test.db")
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	ResetCampCounters()
	return gdb
}

func tableCount(gdb *gorm.DB, model any, query string, args ...any) int64 {
	var n int64
	gdb.Model(model).Where(query, args...).Count(&n)
	return n
}

func seedGuardian(t *testing.T, gdb *gorm.DB, zip, city string) *models.Guardian {
	t.Helper()
	g := models.Guardian{Firstname: "Jean", Lastname: "Petit", Zip: zip, City: city}
	DeriveLocality(&g)
	if err := gdb.Create(&g).Error; err != nil {
		t.Fatalf("seed guardian: %v", err)
	}
	return &g
}

// seedChild creates a child with a main guardian outside Vienne.
func seedChild(t *testing.T, gdb *gorm.DB, name string) *models.Child {
	t.Helper()
	g := seedGuardian(t, gdb, "75011", "Paris")
	c := models.Child{
		Firstname:      name,
		Lastname:       "Petit",
		BirthDate:      time.Date(2016, 4, 12, 0, 0, 0, 0, time.UTC),
		Gender:         models.GenderFemale,
		MainGuardianID: &g.ID,
	}
	if err := gdb.Create(&c).Error; err != nil {
		t.Fatalf("seed child: %v", err)
	}
	return &c
}

func seedCamp(t *testing.T, gdb *gorm.DB, maxChildren int) *models.Camp {
	t.Helper()
	camp := models.Camp{
		Name:          "Poney d'été",
		Status:        models.CampPublished,
		DateFrom:      time.Date(2026, 7, 6, 0, 0, 0, 0, time.UTC),
		DateTo:        time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC),
		MaxChildren:   maxChildren,
		EmployeeRatio: 8,
		AseQuota:      2,
	}
	if err := gdb.Create(&camp).Error; err != nil {
		t.Fatalf("seed camp: %v", err)
	}
	return &camp
}

func seedClshCamp(t *testing.T, gdb *gorm.DB, maxChildren int, clshType string) *models.Camp {
	t.Helper()
	camp := seedCamp(t, gdb, maxChildren)
	camp.IsClsh = true
	camp.ClshType = clshType
	if err := gdb.Save(camp).Error; err != nil {
		t.Fatalf("seed clsh camp: %v", err)
	}
	return camp
}

// seedCampTariff attaches a full (and for CLSH a day) product with one
// price per given camp class, valid over the camp dates.
func seedCampTariff(t *testing.T, gdb *gorm.DB, camp *models.Camp, classes ...models.CampClass) (full, day *models.Product) {
	t.Helper()
	pl := models.PriceList{
		Name:     "Summer tariffs",
		DateFrom: camp.DateFrom.AddDate(0, -6, 0),
		DateTo:   camp.DateTo.AddDate(0, 6, 0),
	}
	if err := gdb.Create(&pl).Error; err != nil {
		t.Fatalf("seed price list: %v", err)
	}

	full = &models.Product{Name: camp.Name + " - week", Kind: models.ProductFull}
	if err := gdb.Create(full).Error; err != nil {
		t.Fatalf("seed full product: %v", err)
	}
	products := []models.Product{*full}

	if camp.IsClsh {
		day = &models.Product{Name: camp.Name + " - day", Kind: models.ProductDay}
		if err := gdb.Create(day).Error; err != nil {
			t.Fatalf("seed day product: %v", err)
		}
		products = append(products, *day)
	}

	// Cheaper tier for closer classes: other 100, member 80, close-member 60
	// for the full product; day prices are a fifth of that.
	amounts := map[models.CampClass]int64{
		models.ClassOther:       100,
		models.ClassMember:      80,
		models.ClassCloseMember: 60,
	}
	for _, p := range products {
		for _, class := range classes {
			amount := amounts[class]
			if p.Kind == models.ProductDay {
				amount /= 5
			}
			price := models.Price{
				ProductID:   p.ID,
				PriceListID: pl.ID,
				CampClass:   class,
				Amount:      decimal.NewFromInt(amount),
			}
			if err := gdb.Create(&price).Error; err != nil {
				t.Fatalf("seed price: %v", err)
			}
		}
	}

	if err := gdb.Model(camp).Association("Products").Append(&products); err != nil {
		t.Fatalf("attach products: %v", err)
	}
	return full, day
}
