package models

import (
	"time"

	"gorm.io/gorm"
)

// SenderAccount represents a sending identity owned by the operator.
// The sending cycle treats these as read-mostly: only the warmup
// timestamps advance as cycles run.
type SenderAccount struct {
	gorm.Model

	Email    string `gorm:"not null;uniqueIndex" json:"email"`
	Provider string `gorm:"default:'generic'" json:"provider"`

	Active        bool `gorm:"default:true" json:"active"`
	WarmupEnabled bool `gorm:"default:true" json:"warmup_enabled"`

	// ReputationScore is a deliverability trust proxy in [0,1].
	ReputationScore float64 `gorm:"default:0.5" json:"reputation_score"`

	// WarmupStartedAt is stamped on the sender's first successful cycle
	// and drives the days-active warmup ramp from then on.
	WarmupStartedAt *time.Time `json:"warmup_started_at"`
	LastSentAt      *time.Time `json:"last_sent_at"`
}
