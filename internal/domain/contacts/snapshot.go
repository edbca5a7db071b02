package contacts

import "github.com/google/uuid"

// PersonSnapshot is a person as read from the directory's full listing. The
// report worker only ever holds these transiently.
type PersonSnapshot struct {
	ID           uuid.UUID             `json:"uuid"`
	FirstName    string                `json:"firstName"`
	LastName     string                `json:"lastName"`
	Company      *string               `json:"company,omitempty"`
	ContactInfos []ContactInfoSnapshot `json:"contactInfos"`
}

type ContactInfoSnapshot struct {
	ID    uuid.UUID   `json:"uuid"`
	Type  ContactType `json:"type"`
	Value string      `json:"value"`
}
