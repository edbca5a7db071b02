package reports

import (
	"time"

	"github.com/google/uuid"
)

type ReportStatus string

const (
	ReportStatusPreparing ReportStatus = "Preparing"
	ReportStatusCompleted ReportStatus = "Completed"
)

// Report is one requested aggregation of the directory. It is created
// Preparing by the request endpoint and only the worker moves it to Completed.
type Report struct {
	ID          uuid.UUID    `gorm:"type:uuid;primaryKey" json:"uuid"`
	RequestDate time.Time    `gorm:"column:request_date;not null;index" json:"requestDate"`
	Status      ReportStatus `gorm:"column:status;type:varchar(20);not null;index" json:"status"`
	Items       []ReportItem `gorm:"foreignKey:ReportID;references:ID;constraint:OnDelete:CASCADE" json:"items"`
	UpdatedAt   time.Time    `gorm:"not null" json:"-"`
}

func (Report) TableName() string { return "report" }

// ReportItem holds one location's statistics within a report. A report never
// carries two items for the same location.
type ReportItem struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"uuid"`
	ReportID    uuid.UUID `gorm:"type:uuid;column:report_id;not null;uniqueIndex:idx_report_item_report_location,priority:1" json:"reportUUID"`
	Location    string    `gorm:"column:location;size:200;not null;uniqueIndex:idx_report_item_report_location,priority:2" json:"location"`
	PersonCount int       `gorm:"column:person_count;not null;default:0" json:"personCount"`
	PhoneCount  int       `gorm:"column:phone_count;not null;default:0" json:"phoneCount"`
}

func (ReportItem) TableName() string { return "report_item" }

// NewReport returns a Preparing report stamped with the current UTC time.
func NewReport() *Report {
	now := time.Now().UTC()
	return &Report{
		ID:          uuid.New(),
		RequestDate: now,
		Status:      ReportStatusPreparing,
		UpdatedAt:   now,
	}
}
