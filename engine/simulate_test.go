package engine

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"outreachsim/models"
)

// stubSource feeds a fixed value to math/rand so probability draws
// become deterministic in tests. A zero value makes every Bernoulli
// trial succeed; 1<<62 makes Float64 return 0.5.
type stubSource struct{ v int64 }

func (s stubSource) Int63() int64 { return s.v }
func (s stubSource) Seed(int64)   {}

func alwaysRNG() *rand.Rand { return rand.New(stubSource{v: 0}) }
func halfRNG() *rand.Rand   { return rand.New(stubSource{v: 1 << 62}) }

func TestDeliverProbability(t *testing.T) {
	assert.InDelta(t, 0.9, DeliverProbability(0, 0, 0), 1e-9)
	assert.InDelta(t, 1.193, DeliverProbability(0.21, 0.8, 0.6), 1e-9)

	// The floor holds even for inputs past the normal range.
	assert.Equal(t, 0.05, DeliverProbability(2.0, 0, 0))
}

func TestEngagementCascadeBouncesWhenFiltered(t *testing.T) {
	events := EngagementCascade(false, 0.9, alwaysRNG())
	assert.Equal(t, []string{models.EventBounced}, events)
}

func TestEngagementCascadeFullChain(t *testing.T) {
	events := EngagementCascade(true, 0.5, alwaysRNG())
	assert.Equal(t, []string{models.EventDelivered, models.EventOpened, models.EventReplied}, events)
}

func TestEngagementCascadeDeliveredOnly(t *testing.T) {
	// Float64 of 0.5 beats the open probability for an unpersonalized
	// message (0.25), so the cascade stops at delivered.
	events := EngagementCascade(true, 0, halfRNG())
	assert.Equal(t, []string{models.EventDelivered}, events)
}

func TestEngagementCascadeOrderingInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 1000; i++ {
		events := EngagementCascade(true, rng.Float64(), rng)

		assert.Equal(t, models.EventDelivered, events[0])
		indexOf := func(want string) int {
			for idx, e := range events {
				if e == want {
					return idx
				}
			}
			return -1
		}
		if replied := indexOf(models.EventReplied); replied >= 0 {
			opened := indexOf(models.EventOpened)
			assert.True(t, opened >= 0 && opened < replied, "reply without prior open")
		}
		assert.NotContains(t, events, models.EventBounced)
	}
}

func TestDrawUnsubscribe(t *testing.T) {
	assert.True(t, DrawUnsubscribe(alwaysRNG()))
	assert.False(t, DrawUnsubscribe(halfRNG()))
}
