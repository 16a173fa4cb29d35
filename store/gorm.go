package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"outreachsim/models"
)

// GormStore implements Store on top of a gorm connection.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) ListActiveSenders(ctx context.Context) ([]models.SenderAccount, error) {
	var senders []models.SenderAccount
	err := s.db.WithContext(ctx).
		Where("active = ?", true).
		Find(&senders).Error
	return senders, err
}

// GetActiveCampaign returns the most recently created active campaign,
// or nil when none exists. Newest-wins keeps the choice deterministic
// when several campaigns are flagged active at once.
func (s *GormStore) GetActiveCampaign(ctx context.Context) (*models.Campaign, error) {
	var campaign models.Campaign
	err := s.db.WithContext(ctx).
		Where("active = ?", true).
		Order("created_at DESC, id DESC").
		First(&campaign).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &campaign, nil
}

// ListEligibleRecipients returns up to limit non-unsubscribed
// recipients, least recently contacted first so nobody is starved by
// the per-cycle quota.
func (s *GormStore) ListEligibleRecipients(ctx context.Context, limit int) ([]models.Recipient, error) {
	var recipients []models.Recipient
	err := s.db.WithContext(ctx).
		Where("unsubscribed = ?", false).
		Order("last_contacted_at ASC NULLS FIRST").
		Limit(limit).
		Find(&recipients).Error
	return recipients, err
}

func (s *GormStore) CreateSend(ctx context.Context, send *models.EmailSend) error {
	return s.db.WithContext(ctx).Create(send).Error
}

// UpdatePlacement performs the single nil -> true/false transition on a
// send. Rows whose placement is already decided are left untouched.
func (s *GormStore) UpdatePlacement(ctx context.Context, sendID uint, placed bool) error {
	return s.db.WithContext(ctx).
		Model(&models.EmailSend{}).
		Where("id = ? AND inbox_placement IS NULL", sendID).
		Update("inbox_placement", placed).Error
}

func (s *GormStore) AppendEvent(ctx context.Context, event *models.EngagementEvent) error {
	return s.db.WithContext(ctx).Create(event).Error
}

func (s *GormStore) MarkUnsubscribed(ctx context.Context, recipientID uint) error {
	return s.db.WithContext(ctx).
		Model(&models.Recipient{}).
		Where("id = ?", recipientID).
		Update("unsubscribed", true).Error
}

func (s *GormStore) MarkContacted(ctx context.Context, recipientID uint, at time.Time) error {
	return s.db.WithContext(ctx).
		Model(&models.Recipient{}).
		Where("id = ?", recipientID).
		Update("last_contacted_at", at).Error
}

// TouchSender advances the warmup clock: LastSentAt moves every cycle
// and WarmupStartedAt is stamped once, on the first send.
func (s *GormStore) TouchSender(ctx context.Context, senderID uint, at time.Time) error {
	tx := s.db.WithContext(ctx).
		Model(&models.SenderAccount{}).
		Where("id = ?", senderID).
		Update("last_sent_at", at)
	if tx.Error != nil {
		return tx.Error
	}
	return s.db.WithContext(ctx).
		Model(&models.SenderAccount{}).
		Where("id = ? AND warmup_started_at IS NULL", senderID).
		Update("warmup_started_at", at).Error
}

func (s *GormStore) CountSenders(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.SenderAccount{}).Count(&n).Error
	return n, err
}

func (s *GormStore) CountCampaigns(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Campaign{}).Count(&n).Error
	return n, err
}

func (s *GormStore) CountRecipients(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Recipient{}).Count(&n).Error
	return n, err
}

func (s *GormStore) CountSends(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.EmailSend{}).Count(&n).Error
	return n, err
}

func (s *GormStore) CountEventsByType(ctx context.Context, eventType string) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).
		Model(&models.EngagementEvent{}).
		Where("type = ?", eventType).
		Count(&n).Error
	return n, err
}

func (s *GormStore) PlacementCounts(ctx context.Context) (known int64, success int64, err error) {
	if err = s.db.WithContext(ctx).
		Model(&models.EmailSend{}).
		Where("inbox_placement IS NOT NULL").
		Count(&known).Error; err != nil {
		return 0, 0, err
	}
	err = s.db.WithContext(ctx).
		Model(&models.EmailSend{}).
		Where("inbox_placement = ?", true).
		Count(&success).Error
	return known, success, err
}

// EventTrend counts engagement events by type over the trailing window.
func (s *GormStore) EventTrend(ctx context.Context, days int) (map[string]int64, error) {
	cutoff := time.Now().AddDate(0, 0, -days)

	var rows []struct {
		Type  string
		Count int64
	}
	err := s.db.WithContext(ctx).
		Model(&models.EngagementEvent{}).
		Select("type, COUNT(*) as count").
		Where("created_at >= ?", cutoff).
		Group("type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Type] = row.Count
	}
	return counts, nil
}
