package engine

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"outreachsim/models"
	"outreachsim/store"
)

// Cycle outcome values for Result.Outcome.
const (
	OutcomeCompleted  = "completed"
	OutcomeNoSenders  = "no_senders"
	OutcomeNoCampaign = "no_campaign"
	OutcomeAborted    = "aborted"
)

// Config carries the tunables a sending cycle needs.
type Config struct {
	Warmup             WarmupCalculator
	TicksPerDay        int
	UnsubscribeBaseURL string
}

// Result is the typed outcome of one sending cycle. Failures counts
// recipients whose pipeline errored; records persisted before a
// failure remain valid.
type Result struct {
	Outcome  string        `json:"outcome"`
	Senders  int           `json:"senders"`
	Sends    int           `json:"sends"`
	Events   int           `json:"events"`
	Failures int           `json:"failures"`
	Duration time.Duration `json:"duration"`
	Err      error         `json:"-"`
}

// Cycle drives one sending cycle per Run call: quota computation per
// sender, recipient personalization, spam scoring, simulated delivery
// and the engagement cascade, all persisted through the store.
//
// Run is not safe for concurrent use; the trigger must guarantee at
// most one execution at a time.
type Cycle struct {
	store  store.Store
	cfg    Config
	rng    *rand.Rand
	logger *log.Logger
}

func NewCycle(st store.Store, cfg Config, rng *rand.Rand, logger *log.Logger) *Cycle {
	return &Cycle{
		store:  st,
		cfg:    cfg,
		rng:    rng,
		logger: logger,
	}
}

// Run executes exactly one sending cycle. It is the error boundary of
// the engine: faults are folded into the Result rather than propagated,
// so the periodic trigger always survives.
func (c *Cycle) Run(ctx context.Context) (res Result) {
	start := time.Now()
	res.Outcome = OutcomeCompleted
	defer func() {
		res.Duration = time.Since(start)
		if r := recover(); r != nil {
			res.Outcome = OutcomeAborted
			res.Err = fmt.Errorf("cycle panic: %v", r)
		}
	}()

	senders, err := c.store.ListActiveSenders(ctx)
	if err != nil {
		res.Outcome = OutcomeAborted
		res.Err = fmt.Errorf("listing active senders: %w", err)
		return res
	}
	if len(senders) == 0 {
		res.Outcome = OutcomeNoSenders
		return res
	}

	campaign, err := c.store.GetActiveCampaign(ctx)
	if err != nil {
		res.Outcome = OutcomeAborted
		res.Err = fmt.Errorf("loading active campaign: %w", err)
		return res
	}
	if campaign == nil {
		res.Outcome = OutcomeNoCampaign
		return res
	}

	// Template-level spam risk shapes volume and jitter for the whole
	// cycle before any personalization happens.
	baseSpam := AnalyzeSpam(campaign.SubjectTemplate + "\n" + campaign.BodyTemplate)
	volumeMul, jitterMul := SendingPattern(baseSpam)

	now := time.Now()

	// Uniform random permutation so no sender is systematically
	// favored across cycles.
	for _, idx := range c.rng.Perm(len(senders)) {
		if ctx.Err() != nil {
			res.Outcome = OutcomeAborted
			res.Err = ctx.Err()
			return res
		}

		sender := senders[idx]
		quota := c.cycleQuota(sender, volumeMul, jitterMul, now)

		recipients, err := c.store.ListEligibleRecipients(ctx, quota)
		if err != nil {
			c.logger.Printf("sender %d: fetching recipients: %v", sender.ID, err)
			res.Failures++
			continue
		}
		if len(recipients) == 0 {
			continue
		}

		sent := 0
		for i := range recipients {
			// Cooperative cancellation between recipients so shutdown
			// never blocks on a long cycle.
			if ctx.Err() != nil {
				res.Outcome = OutcomeAborted
				res.Err = ctx.Err()
				return res
			}
			if err := c.processRecipient(ctx, &res, sender, campaign, recipients[i]); err != nil {
				c.logger.Printf("sender %d recipient %d: %v", sender.ID, recipients[i].ID, err)
				res.Failures++
				continue
			}
			sent++
		}

		if sent > 0 {
			res.Senders++
			if err := c.store.TouchSender(ctx, sender.ID, time.Now()); err != nil {
				c.logger.Printf("sender %d: advancing warmup clock: %v", sender.ID, err)
				res.Failures++
			}
		}
	}

	return res
}

// cycleQuota turns a sender's warmup cap into this cycle's send count:
// the daily cap scaled by the template risk multiplier, divided across
// the day's ticks, then jittered. Never below one.
func (c *Cycle) cycleQuota(sender models.SenderAccount, volumeMul, jitterMul float64, now time.Time) int {
	daysActive := c.cfg.Warmup.EstimateDaysActive(sender, now)
	dailyCap := c.cfg.Warmup.Cap(daysActive)

	dailyCap = int(float64(dailyCap) * volumeMul)
	if dailyCap < 1 {
		dailyCap = 1
	}

	quota := dailyCap / c.cfg.TicksPerDay
	if quota < 1 {
		quota = 1
	}

	jitter := 0.6 + c.rng.Float64()*(1.2*jitterMul-0.6)
	quota = int(jitter * float64(quota))
	if quota < 1 {
		quota = 1
	}
	return quota
}

// processRecipient runs the per-message pipeline: personalize, score,
// append the compliance footer, persist the send, then simulate
// placement and the engagement cascade.
func (c *Cycle) processRecipient(ctx context.Context, res *Result, sender models.SenderAccount, campaign *models.Campaign, recipient models.Recipient) error {
	fields := map[string]string{
		"name":     recipient.Name,
		"role":     recipient.Role,
		"company":  recipient.Company,
		"industry": recipient.Industry,
	}
	p := Personalize(campaign.SubjectTemplate, campaign.BodyTemplate, fields, c.rng)
	spamScore := AnalyzeSpam(p.Subject + "\n" + p.Body)

	unsubLink := BuildUnsubscribeLink(c.cfg.UnsubscribeBaseURL, recipient.ID)
	body := AppendComplianceFooter(p.Body, sender.Email, unsubLink)

	sentAt := time.Now()
	send := &models.EmailSend{
		SenderID:             sender.ID,
		RecipientID:          recipient.ID,
		CampaignID:           campaign.ID,
		MessageID:            uuid.NewString(),
		Subject:              p.Subject,
		Body:                 body,
		PersonalizationScore: p.Score,
		SpamScore:            spamScore,
		SentAt:               &sentAt,
	}
	if err := c.store.CreateSend(ctx, send); err != nil {
		return fmt.Errorf("persisting send: %w", err)
	}
	res.Sends++

	if err := c.store.MarkContacted(ctx, recipient.ID, sentAt); err != nil {
		c.logger.Printf("recipient %d: updating contact rotation: %v", recipient.ID, err)
	}

	placed := SimulatePlacement(spamScore, p.Score, sender.ReputationScore, c.rng)
	if err := c.store.UpdatePlacement(ctx, send.ID, placed); err != nil {
		return fmt.Errorf("recording placement: %w", err)
	}

	for _, eventType := range EngagementCascade(placed, p.Score, c.rng) {
		if err := c.appendEvent(ctx, res, send.ID, recipient.ID, eventType); err != nil {
			return err
		}
	}

	if DrawUnsubscribe(c.rng) {
		if err := c.appendEvent(ctx, res, send.ID, recipient.ID, models.EventUnsubscribed); err != nil {
			return err
		}
		if err := c.store.MarkUnsubscribed(ctx, recipient.ID); err != nil {
			return fmt.Errorf("marking recipient unsubscribed: %w", err)
		}
	}

	return nil
}

func (c *Cycle) appendEvent(ctx context.Context, res *Result, sendID, recipientID uint, eventType string) error {
	event := &models.EngagementEvent{
		SendID:      sendID,
		RecipientID: recipientID,
		Type:        eventType,
	}
	if err := c.store.AppendEvent(ctx, event); err != nil {
		return fmt.Errorf("appending %s event: %w", eventType, err)
	}
	res.Events++
	return nil
}
