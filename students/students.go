package students

import "time"

// NameLength is the registration policy: student names are exactly eight
// characters.
const NameLength = 8

// Record is a student registration. AccessCode holds the code value as it
// was at registration time, it is a historical reference, not a live foreign
// key: deactivating or deleting the code never invalidates the record.
type Record struct {
	Name         string    `bson:"name" json:"name"` // globally unique
	AccessCode   string    `bson:"access_code" json:"accessCode"`
	RegisteredAt time.Time `bson:"registered_at" json:"registeredAt"`
	Issuer       string    `bson:"issuer,omitempty" json:"issuer,omitempty"`
}

// ValidName reports whether a name meets the fixed-length policy.
func ValidName(name string) bool {
	return len(name) == NameLength
}
