package engine

import (
	"context"
	"errors"
	"io"
	"log"
	"math/rand"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"outreachsim/models"
)

// memStore is an in-memory Store for cycle tests. Not safe for
// concurrent use; the cycle is single-threaded anyway.
type memStore struct {
	senders    []models.SenderAccount
	campaigns  []models.Campaign
	recipients []models.Recipient
	sends      []models.EmailSend
	events     []models.EngagementEvent

	failSendFor map[uint]bool
	nextID      uint
}

func newMemStore() *memStore {
	return &memStore{failSendFor: map[uint]bool{}}
}

func (m *memStore) ListActiveSenders(context.Context) ([]models.SenderAccount, error) {
	var out []models.SenderAccount
	for _, s := range m.senders {
		if s.Active {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memStore) GetActiveCampaign(context.Context) (*models.Campaign, error) {
	var latest *models.Campaign
	for i := range m.campaigns {
		c := &m.campaigns[i]
		if !c.Active {
			continue
		}
		if latest == nil || c.ID > latest.ID {
			latest = c
		}
	}
	if latest == nil {
		return nil, nil
	}
	found := *latest
	return &found, nil
}

func (m *memStore) ListEligibleRecipients(_ context.Context, limit int) ([]models.Recipient, error) {
	var eligible []models.Recipient
	for _, r := range m.recipients {
		if !r.Unsubscribed {
			eligible = append(eligible, r)
		}
	}
	sort.SliceStable(eligible, func(i, j int) bool {
		a, b := eligible[i].LastContactedAt, eligible[j].LastContactedAt
		switch {
		case a == nil:
			return b != nil
		case b == nil:
			return false
		default:
			return a.Before(*b)
		}
	})
	if len(eligible) > limit {
		eligible = eligible[:limit]
	}
	return eligible, nil
}

func (m *memStore) CreateSend(_ context.Context, send *models.EmailSend) error {
	if m.failSendFor[send.RecipientID] {
		return errors.New("forced send failure")
	}
	m.nextID++
	send.ID = m.nextID
	m.sends = append(m.sends, *send)
	return nil
}

func (m *memStore) UpdatePlacement(_ context.Context, sendID uint, placed bool) error {
	for i := range m.sends {
		if m.sends[i].ID == sendID && m.sends[i].InboxPlacement == nil {
			v := placed
			m.sends[i].InboxPlacement = &v
			return nil
		}
	}
	return nil
}

func (m *memStore) AppendEvent(_ context.Context, event *models.EngagementEvent) error {
	m.nextID++
	event.ID = m.nextID
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	m.events = append(m.events, *event)
	return nil
}

func (m *memStore) MarkUnsubscribed(_ context.Context, recipientID uint) error {
	for i := range m.recipients {
		if m.recipients[i].ID == recipientID {
			m.recipients[i].Unsubscribed = true
		}
	}
	return nil
}

func (m *memStore) MarkContacted(_ context.Context, recipientID uint, at time.Time) error {
	for i := range m.recipients {
		if m.recipients[i].ID == recipientID {
			t := at
			m.recipients[i].LastContactedAt = &t
		}
	}
	return nil
}

func (m *memStore) TouchSender(_ context.Context, senderID uint, at time.Time) error {
	for i := range m.senders {
		if m.senders[i].ID == senderID {
			t := at
			m.senders[i].LastSentAt = &t
			if m.senders[i].WarmupStartedAt == nil {
				m.senders[i].WarmupStartedAt = &t
			}
		}
	}
	return nil
}

func (m *memStore) CountSenders(context.Context) (int64, error) { return int64(len(m.senders)), nil }

func (m *memStore) CountCampaigns(context.Context) (int64, error) {
	return int64(len(m.campaigns)), nil
}

func (m *memStore) CountRecipients(context.Context) (int64, error) {
	return int64(len(m.recipients)), nil
}

func (m *memStore) CountSends(context.Context) (int64, error) { return int64(len(m.sends)), nil }

func (m *memStore) CountEventsByType(_ context.Context, eventType string) (int64, error) {
	var n int64
	for _, e := range m.events {
		if e.Type == eventType {
			n++
		}
	}
	return n, nil
}

func (m *memStore) PlacementCounts(context.Context) (int64, int64, error) {
	var known, success int64
	for _, s := range m.sends {
		if s.InboxPlacement != nil {
			known++
			if *s.InboxPlacement {
				success++
			}
		}
	}
	return known, success, nil
}

func (m *memStore) EventTrend(_ context.Context, days int) (map[string]int64, error) {
	cutoff := time.Now().AddDate(0, 0, -days)
	trend := map[string]int64{}
	for _, e := range m.events {
		if e.CreatedAt.Before(cutoff) {
			continue
		}
		trend[e.Type]++
	}
	return trend, nil
}

func testCycleConfig() Config {
	return Config{
		Warmup:             WarmupCalculator{StartVolume: 5, MaxVolume: 150, RampDays: 30},
		TicksPerDay:        12,
		UnsubscribeBaseURL: "http://localhost:5000",
	}
}

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func cleanCampaign() models.Campaign {
	return models.Campaign{
		Model:           gorm.Model{ID: 1},
		Name:            "Intro Sequence",
		SubjectTemplate: "{{greeting}} {{name}}, quick note about {{company}}",
		BodyTemplate:    "{{greeting}} {{name}},\n\nSaw that {{company}} is scaling the {{role}} side in {{industry}}.\n\nBest,\nAlex",
		Active:          true,
	}
}

func testRecipient(id uint) models.Recipient {
	return models.Recipient{
		Model:    gorm.Model{ID: id},
		Email:    "prospect@example.org",
		Name:     "Prospect",
		Role:     "Marketing Lead",
		Company:  "Acme",
		Industry: "SaaS",
	}
}

func TestCycleWithNoActiveSenders(t *testing.T) {
	st := newMemStore()
	st.campaigns = []models.Campaign{cleanCampaign()}
	st.recipients = []models.Recipient{testRecipient(1)}

	cycle := NewCycle(st, testCycleConfig(), rand.New(rand.NewSource(1)), quietLogger())
	res := cycle.Run(context.Background())

	assert.Equal(t, OutcomeNoSenders, res.Outcome)
	assert.Zero(t, res.Sends)
	assert.Zero(t, res.Events)
	assert.Empty(t, st.sends)
	assert.Empty(t, st.events)
}

func TestCycleWithNoActiveCampaign(t *testing.T) {
	st := newMemStore()
	st.senders = []models.SenderAccount{{Model: gorm.Model{ID: 1}, Email: "a@b.test", Active: true}}
	st.recipients = []models.Recipient{testRecipient(1)}

	cycle := NewCycle(st, testCycleConfig(), rand.New(rand.NewSource(1)), quietLogger())
	res := cycle.Run(context.Background())

	assert.Equal(t, OutcomeNoCampaign, res.Outcome)
	assert.Zero(t, res.Sends)
	assert.Empty(t, st.sends)
}

func TestCycleDeterministicPipeline(t *testing.T) {
	st := newMemStore()
	st.senders = []models.SenderAccount{{
		Model:           gorm.Model{ID: 1},
		Email:           "alice.sender@example.com",
		Active:          true,
		WarmupEnabled:   true,
		ReputationScore: 1.0,
	}}
	st.campaigns = []models.Campaign{cleanCampaign()}
	for id := uint(1); id <= 6; id++ {
		st.recipients = append(st.recipients, testRecipient(id))
	}
	optedOut := testRecipient(99)
	optedOut.Unsubscribed = true
	st.recipients = append(st.recipients, optedOut)

	// A zero RNG source makes every draw deterministic: estimated
	// warmup day 20 gives a daily cap of 101, a per-tick quota of 8
	// and a jitter multiplier of exactly 0.6, so four sends. Every
	// Bernoulli trial succeeds, so each send is placed, opened,
	// replied to and followed by an unsubscribe.
	cycle := NewCycle(st, testCycleConfig(), rand.New(stubSource{v: 0}), quietLogger())
	res := cycle.Run(context.Background())

	assert.Equal(t, OutcomeCompleted, res.Outcome)
	assert.Equal(t, 1, res.Senders)
	assert.Equal(t, 4, res.Sends)
	assert.Equal(t, 16, res.Events)
	assert.Zero(t, res.Failures)
	require.Len(t, st.sends, 4)

	seenMessageIDs := map[string]bool{}
	for _, send := range st.sends {
		require.NotNil(t, send.InboxPlacement)
		assert.True(t, *send.InboxPlacement)
		assert.NotEqual(t, uint(99), send.RecipientID)
		assert.NotEmpty(t, send.MessageID)
		assert.False(t, seenMessageIDs[send.MessageID], "duplicate message id")
		seenMessageIDs[send.MessageID] = true

		assert.Contains(t, send.Subject, "Prospect")
		assert.NotContains(t, send.Body, "{{")
		assert.Contains(t, send.Body, "Sender: alice.sender@example.com")
		assert.Contains(t, send.Body, "http://localhost:5000/unsubscribe?rid=")
	}

	// The contacted recipients all drew the unsubscribe event; the
	// rest are untouched.
	for _, r := range st.recipients[:4] {
		assert.True(t, r.Unsubscribed, "recipient %d", r.ID)
		assert.NotNil(t, r.LastContactedAt)
	}
	for _, r := range st.recipients[4:6] {
		assert.False(t, r.Unsubscribed, "recipient %d", r.ID)
		assert.Nil(t, r.LastContactedAt)
	}

	// The sender's warmup clock starts on its first productive cycle.
	assert.NotNil(t, st.senders[0].WarmupStartedAt)
	assert.NotNil(t, st.senders[0].LastSentAt)

	unsubs, err := st.CountEventsByType(context.Background(), models.EventUnsubscribed)
	require.NoError(t, err)
	assert.Equal(t, int64(4), unsubs)
}

func TestCycleQuotaBoundsWithSeededRNG(t *testing.T) {
	st := newMemStore()
	st.senders = []models.SenderAccount{{
		Model:           gorm.Model{ID: 1},
		Email:           "alice.sender@example.com",
		Active:          true,
		WarmupEnabled:   true,
		ReputationScore: 1.0,
	}}
	st.campaigns = []models.Campaign{cleanCampaign()}
	for id := uint(1); id <= 500; id++ {
		st.recipients = append(st.recipients, testRecipient(id))
	}

	cycle := NewCycle(st, testCycleConfig(), rand.New(rand.NewSource(7)), quietLogger())
	res := cycle.Run(context.Background())

	assert.Equal(t, OutcomeCompleted, res.Outcome)
	assert.Equal(t, 1, res.Senders)
	assert.Zero(t, res.Failures)

	// Per-tick quota is 101/12 = 8, jittered by [0.6, 1.2).
	assert.GreaterOrEqual(t, res.Sends, 4)
	assert.LessOrEqual(t, res.Sends, 9)
	assert.Len(t, st.sends, res.Sends)

	for _, send := range st.sends {
		require.NotNil(t, send.InboxPlacement, "placement undecided for send %d", send.ID)
	}
}

func TestCycleIsolatesPerRecipientFailures(t *testing.T) {
	st := newMemStore()
	st.senders = []models.SenderAccount{{
		Model:           gorm.Model{ID: 1},
		Email:           "alice.sender@example.com",
		Active:          true,
		WarmupEnabled:   true,
		ReputationScore: 1.0,
	}}
	st.campaigns = []models.Campaign{cleanCampaign()}
	for id := uint(1); id <= 3; id++ {
		st.recipients = append(st.recipients, testRecipient(id))
	}
	st.failSendFor[2] = true

	cycle := NewCycle(st, testCycleConfig(), rand.New(stubSource{v: 0}), quietLogger())
	res := cycle.Run(context.Background())

	assert.Equal(t, OutcomeCompleted, res.Outcome)
	assert.Equal(t, 2, res.Sends)
	assert.Equal(t, 1, res.Failures)
	assert.Len(t, st.sends, 2)

	for _, send := range st.sends {
		assert.NotEqual(t, uint(2), send.RecipientID)
	}
	// The failed recipient keeps its place in the rotation.
	assert.Nil(t, st.recipients[1].LastContactedAt)
	assert.False(t, st.recipients[1].Unsubscribed)
}

func TestEventTrendCountsOnlyTrailingWindow(t *testing.T) {
	st := newMemStore()

	old := models.EngagementEvent{SendID: 1, RecipientID: 1, Type: models.EventOpened}
	old.CreatedAt = time.Now().AddDate(0, 0, -20)
	require.NoError(t, st.AppendEvent(context.Background(), &old))

	recent := models.EngagementEvent{SendID: 2, RecipientID: 2, Type: models.EventOpened}
	require.NoError(t, st.AppendEvent(context.Background(), &recent))

	trend, err := st.EventTrend(context.Background(), 14)
	require.NoError(t, err)
	assert.Equal(t, int64(1), trend[models.EventOpened])
}

func TestCycleHonorsCancelledContext(t *testing.T) {
	st := newMemStore()
	st.senders = []models.SenderAccount{{Model: gorm.Model{ID: 1}, Email: "a@b.test", Active: true}}
	st.campaigns = []models.Campaign{cleanCampaign()}
	st.recipients = []models.Recipient{testRecipient(1)}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cycle := NewCycle(st, testCycleConfig(), rand.New(rand.NewSource(1)), quietLogger())
	res := cycle.Run(ctx)

	assert.Equal(t, OutcomeAborted, res.Outcome)
	assert.Error(t, res.Err)
	assert.Zero(t, res.Sends)
	assert.Empty(t, st.sends)
}
