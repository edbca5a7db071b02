package repos

import (
	"gorm.io/gorm"

	"github.com/AliihsanMuhziroglu/phonebook-microservices/internal/data/repos/contacts"
	"github.com/AliihsanMuhziroglu/phonebook-microservices/internal/data/repos/reports"
	"github.com/AliihsanMuhziroglu/phonebook-microservices/internal/platform/logger"
)

type ReportRepo = reports.ReportRepo

type PersonRepo = contacts.PersonRepo
type ContactInfoRepo = contacts.ContactInfoRepo

func NewReportRepo(db *gorm.DB, log *logger.Logger) ReportRepo {
	return reports.NewReportRepo(db, log)
}

func NewPersonRepo(db *gorm.DB, log *logger.Logger) PersonRepo {
	return contacts.NewPersonRepo(db, log)
}

func NewContactInfoRepo(db *gorm.DB, log *logger.Logger) ContactInfoRepo {
	return contacts.NewContactInfoRepo(db, log)
}
