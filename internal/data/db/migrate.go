package db

import (
	"gorm.io/gorm"

	types "github.com/AliihsanMuhziroglu/phonebook-microservices/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		// =========================
		// Directory
		// =========================
		&types.Person{},
		&types.ContactInfo{},

		// =========================
		// Reports
		// =========================
		&types.Report{},
		&types.ReportItem{},
	)
}
