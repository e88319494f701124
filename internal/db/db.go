package db

import (
	"log"
	"os"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/discope/camps/internal/models"
)

var conn *gorm.DB

func Init() error {
	path := os.Getenv("CAMPS_DB")
	if path == "" {
		path = "camps.db"
	}

	var err error
	conn, err = gorm.Open(sqlite.Open(path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"), &gorm.Config{})
	if err != nil {
		return err
	}

	// SQLite works best with a single writer; cap the pool accordingly.
	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	if err := Migrate(conn); err != nil {
		log.Fatalf("auto-migrate failed: %v", err)
	}

	log.Println("database ready (sqlite)")
	return nil
}

// Migrate creates the schema plus the composite indexes GORM does not
// derive from struct tags. Exposed so tests can run it on their own DB.
func Migrate(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(
		&models.Guardian{},
		&models.Institution{},
		&models.WorksCouncil{},
		&models.Skill{},
		&models.Document{},
		&models.Child{},
		&models.Employee{},
		&models.Camp{},
		&models.CampGroup{},
		&models.Product{},
		&models.PriceList{},
		&models.Price{},
		&models.Enrollment{},
		&models.EnrollmentLine{},
		&models.PriceAdapter{},
		&models.Presence{},
		&models.Funding{},
		&models.Payment{},
	); err != nil {
		return err
	}

	// Composite indexes that GORM doesn't auto-create from struct tags.
	gdb.Exec("CREATE INDEX IF NOT EXISTS idx_enr_camp_status ON enrollments(camp_id, status)")
	gdb.Exec("CREATE INDEX IF NOT EXISTS idx_enr_child       ON enrollments(child_id)")
	gdb.Exec("CREATE INDEX IF NOT EXISTS idx_presence_enr    ON presences(enrollment_id)")
	return nil
}

func Conn() *gorm.DB {
	return conn
}
