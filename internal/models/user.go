package models

import (
	"time"

	"github.com/google/uuid"
)

// Subscription tiers.
const (
	TierTrial = "trial"
	TierPro   = "pro"
)

// User represents a platform user. Demo users carry an empty password hash
// and can only authenticate through the demo endpoint.
type User struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Email          string     `gorm:"uniqueIndex;not null" json:"email" validate:"required,email"`
	PasswordHash   string     `gorm:"not null;default:''" json:"-"`
	Name           string     `gorm:"not null" json:"name" validate:"required"`
	Tier           string     `gorm:"type:varchar(16);not null;default:'trial'" json:"tier" validate:"required,oneof=trial pro"`
	TrialExpiresAt *time.Time `json:"trial_expires_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// TrialExpired reports whether a trial user is past the expiry timestamp.
// Pro users never expire.
func (u *User) TrialExpired(now time.Time) bool {
	if u.Tier != TierTrial {
		return false
	}
	return u.TrialExpiresAt != nil && now.After(*u.TrialExpiresAt)
}
