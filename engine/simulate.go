package engine

import (
	"math"
	"math/rand"

	"outreachsim/models"
)

// Probability model constants. Deliverability can never drop below
// minDeliverProb no matter how bad the inputs are.
const (
	minDeliverProb  = 0.05
	baseDeliverProb = 0.9
	spamPenalty     = 0.7
	persBonus       = 0.4
	reputationBonus = 0.2

	maxOpenProb  = 0.85
	baseOpenProb = 0.25
	openPersGain = 0.5

	minReplyProb  = 0.01
	baseReplyProb = 0.03
	replyPersGain = 0.2

	unsubscribeProb = 0.002
)

// DeliverProbability computes the chance of a message landing in the
// inbox given its content scores and the sender's reputation.
func DeliverProbability(spamScore, persScore, reputation float64) float64 {
	p := baseDeliverProb - spamPenalty*spamScore + persBonus*persScore + reputationBonus*reputation
	return math.Max(minDeliverProb, p)
}

// SimulatePlacement runs the single Bernoulli trial that decides a
// send's inbox placement.
func SimulatePlacement(spamScore, persScore, reputation float64, rng *rand.Rand) bool {
	return rng.Float64() < DeliverProbability(spamScore, persScore, reputation)
}

// EngagementCascade returns the ordered engagement events implied by a
// placement outcome. Placed messages are always delivered, may be
// opened, and opened messages may draw a reply. Filtered messages
// bounce, full stop.
func EngagementCascade(placed bool, persScore float64, rng *rand.Rand) []string {
	if !placed {
		return []string{models.EventBounced}
	}

	events := []string{models.EventDelivered}
	openProb := math.Min(maxOpenProb, baseOpenProb+openPersGain*persScore)
	if rng.Float64() < openProb {
		events = append(events, models.EventOpened)
		replyProb := math.Max(minReplyProb, baseReplyProb+replyPersGain*persScore)
		if rng.Float64() < replyProb {
			events = append(events, models.EventReplied)
		}
	}
	return events
}

// DrawUnsubscribe decides the rare, placement-independent opt-out.
func DrawUnsubscribe(rng *rand.Rand) bool {
	return rng.Float64() < unsubscribeProb
}
