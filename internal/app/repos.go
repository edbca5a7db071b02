package app

import (
	"gorm.io/gorm"

	"github.com/AliihsanMuhziroglu/phonebook-microservices/internal/data/repos"
	"github.com/AliihsanMuhziroglu/phonebook-microservices/internal/platform/logger"
)

type Repos struct {
	Report      repos.ReportRepo
	Person      repos.PersonRepo
	ContactInfo repos.ContactInfoRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Report:      repos.NewReportRepo(db, log),
		Person:      repos.NewPersonRepo(db, log),
		ContactInfo: repos.NewContactInfoRepo(db, log),
	}
}
