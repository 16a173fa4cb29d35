package engine

import (
	"time"

	"outreachsim/models"
)

// WarmupCalculator computes a sender's allowed daily volume from its
// warmup progress: a linear ramp from StartVolume to MaxVolume over
// RampDays.
type WarmupCalculator struct {
	StartVolume int
	MaxVolume   int
	RampDays    int
}

// Cap returns the allowed daily send volume after daysActive days of
// warmup. A zero RampDays means no ramp at all: full volume from day
// one.
func (w WarmupCalculator) Cap(daysActive int) int {
	if w.RampDays <= 0 || daysActive >= w.RampDays {
		return w.MaxVolume
	}
	if daysActive < 0 {
		daysActive = 0
	}
	increment := float64(w.MaxVolume-w.StartVolume) / float64(w.RampDays)
	return w.StartVolume + int(increment*float64(daysActive))
}

// EstimateDaysActive derives how far along the warmup ramp a sender is.
// A sender with warmup disabled is always fully ramped, regardless of
// send history. Otherwise, once a sender has sent at least once,
// WarmupStartedAt is the source of truth and elapsed calendar days
// drive the ramp. Senders that have never sent get a
// reputation-derived estimate so a freshly seeded account with a track
// record does not start from day zero.
func (w WarmupCalculator) EstimateDaysActive(sender models.SenderAccount, now time.Time) int {
	if !sender.WarmupEnabled {
		return w.RampDays
	}

	if sender.WarmupStartedAt != nil {
		days := int(now.Sub(*sender.WarmupStartedAt).Hours() / 24)
		if days > w.RampDays {
			return w.RampDays
		}
		if days < 0 {
			return 0
		}
		return days
	}

	base := 10
	boost := int(sender.ReputationScore * 10)
	if base+boost > w.RampDays {
		return w.RampDays
	}
	return base + boost
}
