package contacts

import (
	"encoding/json"
	"fmt"
	"strings"
)

type ContactType string

const (
	ContactTypePhone    ContactType = "Phone"
	ContactTypeEmail    ContactType = "Email"
	ContactTypeLocation ContactType = "Location"
)

// ordinals mirror the enum order the directory used before it switched to
// string tags; older payloads still carry them.
var contactTypeOrdinals = []ContactType{ContactTypePhone, ContactTypeEmail, ContactTypeLocation}

// ParseContactType accepts the canonical names case-insensitively.
func ParseContactType(raw string) (ContactType, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "phone":
		return ContactTypePhone, nil
	case "email":
		return ContactTypeEmail, nil
	case "location":
		return ContactTypeLocation, nil
	}
	return "", fmt.Errorf("unknown contact type %q", raw)
}

func (t ContactType) Valid() bool {
	switch t {
	case ContactTypePhone, ContactTypeEmail, ContactTypeLocation:
		return true
	}
	return false
}

// UnmarshalJSON accepts either the string tag or its numeric ordinal. Unknown
// strings are kept verbatim so a snapshot with a new tag still decodes; they
// simply match none of the known types.
func (t *ContactType) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if parsed, perr := ParseContactType(s); perr == nil {
			*t = parsed
		} else {
			*t = ContactType(s)
		}
		return nil
	}
	var n int
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("contact type: expected string or number, got %s", string(b))
	}
	if n < 0 || n >= len(contactTypeOrdinals) {
		return fmt.Errorf("contact type: ordinal %d out of range", n)
	}
	*t = contactTypeOrdinals[n]
	return nil
}
