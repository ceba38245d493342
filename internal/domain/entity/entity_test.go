package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestROAS(t *testing.T) {
	assert.Equal(t, 12.0, Campaign{Spend: 100, Revenue: 1200}.ROAS())
	assert.Zero(t, Campaign{Spend: 0, Revenue: 500}.ROAS())
}

func TestPriceChange(t *testing.T) {
	assert.InDelta(t, -10, PriceChange(100, 90), 0.001)
	assert.InDelta(t, 5, PriceChange(100, 105), 0.001)
	assert.Zero(t, PriceChange(0, 499), "first observation has no baseline")
}

func TestProfileValid(t *testing.T) {
	for _, p := range Profiles {
		assert.True(t, p.Valid(), string(p))
	}
	assert.False(t, Profile("alien").Valid())
	assert.False(t, Profile("").Valid())
}

func TestClampRanges(t *testing.T) {
	r := PsychProfileResult{
		Profile:             ProfileStingy,
		Confidence:          150,
		BuyingProbability:   -20,
		RecommendedDiscount: 95,
		SuggestedTone:       Tone("shouty"),
		UrgencyLevel:        Urgency("catastrophic"),
	}
	r.Clamp()

	assert.Equal(t, 100.0, r.Confidence)
	assert.Equal(t, 0.0, r.BuyingProbability)
	assert.Equal(t, 30.0, r.RecommendedDiscount)
	assert.Equal(t, ToneProfessional, r.SuggestedTone)
	assert.Equal(t, UrgencyMedium, r.UrgencyLevel)
}

func TestClampKeepsValidValues(t *testing.T) {
	r := PsychProfileResult{
		Confidence:          92,
		BuyingProbability:   80,
		RecommendedDiscount: 10,
		SuggestedTone:       ToneLuxury,
		UrgencyLevel:        UrgencyLow,
	}
	r.Clamp()

	assert.Equal(t, 92.0, r.Confidence)
	assert.Equal(t, ToneLuxury, r.SuggestedTone)
	assert.Equal(t, UrgencyLow, r.UrgencyLevel)
}

func TestConversationContextTrimmed(t *testing.T) {
	c := ConversationContext{
		Message: "hi",
		History: []string{"m1", "m2", "m3", "m4", "m5"},
	}
	got := c.Trimmed()
	assert.Equal(t, []string{"m3", "m4", "m5"}, got.History)

	short := ConversationContext{Message: "hi", History: []string{"m1"}}
	assert.Equal(t, []string{"m1"}, short.Trimmed().History)
}

func TestPlanUnlimited(t *testing.T) {
	assert.True(t, PlanEnterprise.Unlimited())
	assert.False(t, PlanFree.Unlimited())
	assert.False(t, PlanPro.Unlimited())
}
