package contacts

import (
	"github.com/google/uuid"
)

// Person is a directory entry owned by the contacts service.
type Person struct {
	ID           uuid.UUID     `gorm:"type:uuid;primaryKey" json:"uuid"`
	FirstName    string        `gorm:"column:first_name;size:100;not null" json:"firstName"`
	LastName     string        `gorm:"column:last_name;size:100;not null" json:"lastName"`
	Company      *string       `gorm:"column:company;size:200" json:"company"`
	ContactInfos []ContactInfo `gorm:"foreignKey:PersonID;references:ID;constraint:OnDelete:CASCADE" json:"contactInfos"`
}

func (Person) TableName() string { return "person" }

type ContactInfo struct {
	ID       uuid.UUID   `gorm:"type:uuid;primaryKey" json:"uuid"`
	Type     ContactType `gorm:"column:type;type:varchar(20);not null;index" json:"type"`
	Value    string      `gorm:"column:value;size:200;not null" json:"value"`
	PersonID uuid.UUID   `gorm:"type:uuid;column:person_id;not null;index" json:"personUUID"`
}

func (ContactInfo) TableName() string { return "contact_info" }
