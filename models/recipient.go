package models

import (
	"time"

	"gorm.io/gorm"
)

// Recipient represents a prospect imported at seed time. Profile fields
// are optional and feed template personalization.
type Recipient struct {
	gorm.Model

	Email    string `gorm:"not null;uniqueIndex" json:"email"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Company  string `json:"company"`
	Industry string `json:"industry"`

	// Unsubscribed is a hard exclusion filter. It only ever flips
	// false -> true, either via the unsubscribe endpoint or the rare
	// unsubscribe engagement event.
	Unsubscribed bool `gorm:"default:false;index" json:"unsubscribed"`

	// LastContactedAt drives least-recently-contacted rotation so
	// recipients beyond a cycle's quota are not starved forever.
	LastContactedAt *time.Time `gorm:"index" json:"last_contacted_at"`
}
