package codes

import (
	"strings"
	"time"
)

// AccessCode is a shared secret gating entry for a role class. Student codes
// admit registrations up to MaxUses; admin codes admit educators and are not
// tied to a person.
type AccessCode struct {
	Code        string    `bson:"code" json:"code"` // uppercase alphanumeric, unique, immutable
	IsAdminCode bool      `bson:"is_admin_code" json:"isAdminCode"`
	IsActive    bool      `bson:"is_active" json:"isActive"`
	MaxUses     *int      `bson:"max_uses,omitempty" json:"maxUses,omitempty"` // nil = unlimited
	UsedCount   int       `bson:"used_count" json:"-"`                         // reservation counter, admission only
	CreatedAt   time.Time `bson:"created_at" json:"createdAt"`
	Issuer      string    `bson:"issuer" json:"issuer"`
	Description string    `bson:"description,omitempty" json:"description,omitempty"`
}

// Unlimited returns true if the code has no usage cap.
func (c *AccessCode) Unlimited() bool {
	return c.MaxUses == nil
}

const minCodeLength = 3

// Normalize canonicalizes a raw code: trimmed and uppercased.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidFormat reports whether a normalized code meets the format policy:
// at least 3 characters, alphanumeric only.
func ValidFormat(code string) bool {
	if len(code) < minCodeLength {
		return false
	}
	for _, r := range code {
		if !isAlnum(r) {
			return false
		}
	}
	return true
}

func isAlnum(r rune) bool {
	return (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
