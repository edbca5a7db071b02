package domain

import (
	"github.com/AliihsanMuhziroglu/phonebook-microservices/internal/domain/contacts"
	"github.com/AliihsanMuhziroglu/phonebook-microservices/internal/domain/reports"
)

const (
	ReportStatusPreparing = reports.ReportStatusPreparing
	ReportStatusCompleted = reports.ReportStatusCompleted

	ContactTypePhone    = contacts.ContactTypePhone
	ContactTypeEmail    = contacts.ContactTypeEmail
	ContactTypeLocation = contacts.ContactTypeLocation
)

type Report = reports.Report
type ReportItem = reports.ReportItem
type ReportStatus = reports.ReportStatus

type Person = contacts.Person
type ContactInfo = contacts.ContactInfo
type ContactType = contacts.ContactType
type PersonSnapshot = contacts.PersonSnapshot
type ContactInfoSnapshot = contacts.ContactInfoSnapshot

func NewReport() *Report { return reports.NewReport() }
