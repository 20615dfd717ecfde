package users

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser     Role = "USER"
	RoleOperator Role = "OPERATOR"
	RoleFinance  Role = "FINANCE"
	RoleAdmin    Role = "ADMIN"
)

type User struct {
	ID        uuid.UUID `json:"id" gorm:"primaryKey;type:uuid;default:uuid_generate_v4()"`
	FirstName string    `json:"first_name" gorm:"not null"`
	LastName  string    `json:"last_name" gorm:"not null"`
	Password  string    `json:"-" gorm:"not null"` // hide in json
	Role      Role      `json:"role" gorm:"not null;default:'USER'"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	Verified  bool      `json:"verified" gorm:"not null;default:false"`
	Rating    float64   `json:"rating" gorm:"not null;default:0"`

	// Risk flags set by dispute resolutions
	FlaggedSuspicious bool       `json:"flagged_suspicious" gorm:"not null;default:false"`
	FlaggedAt         *time.Time `json:"flagged_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func IsValidRole(role string) bool {
	switch role {
	case string(RoleUser), string(RoleOperator), string(RoleFinance), string(RoleAdmin):
		return true
	default:
		return false
	}
}

// Summary is the read-only party projection attached to booking and dispute
// responses.
type Summary struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	AvatarURL string  `json:"avatar_url,omitempty"`
	Verified  bool    `json:"verified"`
	Rating    float64 `json:"rating"`
}

// Summarize builds the party projection for a user.
func (u *User) Summarize() Summary {
	return Summary{
		ID:        u.ID.String(),
		Name:      u.FirstName + " " + u.LastName,
		AvatarURL: u.AvatarURL,
		Verified:  u.Verified,
		Rating:    u.Rating,
	}
}
