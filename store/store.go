package store

import (
	"context"
	"time"

	"outreachsim/models"
)

// Store is the persistence boundary consumed by the sending cycle and
// the dashboard. Models reference each other by ID only; no object
// graphs cross this interface.
type Store interface {
	ListActiveSenders(ctx context.Context) ([]models.SenderAccount, error)
	GetActiveCampaign(ctx context.Context) (*models.Campaign, error)
	ListEligibleRecipients(ctx context.Context, limit int) ([]models.Recipient, error)

	CreateSend(ctx context.Context, send *models.EmailSend) error
	UpdatePlacement(ctx context.Context, sendID uint, placed bool) error
	AppendEvent(ctx context.Context, event *models.EngagementEvent) error

	MarkUnsubscribed(ctx context.Context, recipientID uint) error
	MarkContacted(ctx context.Context, recipientID uint, at time.Time) error
	TouchSender(ctx context.Context, senderID uint, at time.Time) error

	// Dashboard aggregates.
	CountSenders(ctx context.Context) (int64, error)
	CountCampaigns(ctx context.Context) (int64, error)
	CountRecipients(ctx context.Context) (int64, error)
	CountSends(ctx context.Context) (int64, error)
	CountEventsByType(ctx context.Context, eventType string) (int64, error)
	PlacementCounts(ctx context.Context) (known int64, success int64, err error)
	EventTrend(ctx context.Context, days int) (map[string]int64, error)
}
