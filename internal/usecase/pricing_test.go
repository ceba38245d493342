package usecase

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"neuropilot/internal/domain/entity"
)

func TestCounterOfferCriticalUndercut(t *testing.T) {
	p := NewPricingAdvisor(15)

	// Competitor at 90 against our 110: 22.2% gap, undercut to 90*0.98.
	offer := p.CounterOffer(90, 110, 70)
	assert.Equal(t, entity.UrgencyCritical, offer.Urgency)
	assert.True(t, offer.SuggestedPrice.Equal(decimal.RequireFromString("88.2")),
		"got %s", offer.SuggestedPrice)
	assert.True(t, offer.DiscountPct.GreaterThan(decimal.Zero))
	assert.NotEmpty(t, offer.MarketingMessage)
}

func TestCounterOfferCriticalRespectsMarginFloor(t *testing.T) {
	p := NewPricingAdvisor(15)

	// Undercutting 90 would mean 88.2 on a cost of 80, under 15% margin.
	// Expected floor: 80 * 1.15 = 92.
	offer := p.CounterOffer(90, 110, 80)
	assert.Equal(t, entity.UrgencyCritical, offer.Urgency)
	assert.True(t, offer.SuggestedPrice.Equal(decimal.RequireFromString("92")),
		"got %s", offer.SuggestedPrice)
}

func TestCounterOfferHighTier(t *testing.T) {
	p := NewPricingAdvisor(15)

	// 100 vs 112: 12% gap, match +2% -> 102.
	offer := p.CounterOffer(100, 112, 60)
	assert.Equal(t, entity.UrgencyHigh, offer.Urgency)
	assert.True(t, offer.SuggestedPrice.Equal(decimal.RequireFromString("102")),
		"got %s", offer.SuggestedPrice)
}

func TestCounterOfferMediumTier(t *testing.T) {
	p := NewPricingAdvisor(15)

	// 100 vs 108: 8% gap, match +5% -> 105.
	offer := p.CounterOffer(100, 108, 60)
	assert.Equal(t, entity.UrgencyMedium, offer.Urgency)
	assert.True(t, offer.SuggestedPrice.Equal(decimal.RequireFromString("105")),
		"got %s", offer.SuggestedPrice)
}

func TestCounterOfferCompetitiveBand(t *testing.T) {
	p := NewPricingAdvisor(15)

	// 100 vs 103: inside the +/-5% band, hold price.
	offer := p.CounterOffer(100, 103, 60)
	assert.Equal(t, entity.UrgencyLow, offer.Urgency)
	assert.True(t, offer.SuggestedPrice.Equal(decimal.RequireFromString("103")))
	assert.True(t, offer.DiscountPct.IsZero())
}

func TestCounterOfferWeAreCheaper(t *testing.T) {
	p := NewPricingAdvisor(15)

	offer := p.CounterOffer(120, 100, 60)
	assert.Equal(t, entity.UrgencyLow, offer.Urgency)
	assert.True(t, offer.SuggestedPrice.Equal(decimal.RequireFromString("100")))
	assert.True(t, offer.DiscountPct.IsZero())
}

func TestCounterOfferZeroCompetitorPrice(t *testing.T) {
	p := NewPricingAdvisor(15)

	offer := p.CounterOffer(0, 100, 60)
	assert.Equal(t, entity.UrgencyLow, offer.Urgency)
	assert.True(t, offer.SuggestedPrice.Equal(decimal.RequireFromString("100")))
	assert.True(t, offer.DiscountPct.IsZero())
}

func TestCounterOfferDiscountNeverNegative(t *testing.T) {
	p := NewPricingAdvisor(15)

	// Margin floor pushes the suggested price above ours: 90 * 1.15 > 95.
	offer := p.CounterOffer(80, 95, 90)
	assert.True(t, offer.SuggestedPrice.GreaterThan(decimal.NewFromInt(95)))
	assert.True(t, offer.DiscountPct.IsZero())
}

func TestDynamicPriceHoldsMarginFloor(t *testing.T) {
	p := NewPricingAdvisor(15)

	// Competitor below our floor: hold the floor, 100 * 1.15.
	final, floor, _ := p.DynamicPrice(100, 80, entity.ProfileStingy)
	assert.Equal(t, 115.0, floor)
	assert.Equal(t, 115.0, final)
}

func TestDynamicPriceUndercutsCompetitor(t *testing.T) {
	p := NewPricingAdvisor(15)

	final, _, _ := p.DynamicPrice(100, 200, entity.ProfileStingy)
	assert.Equal(t, 198.0, final)
}

func TestDynamicPricePriceSensitiveGetsFloor(t *testing.T) {
	p := NewPricingAdvisor(15)

	final, floor, _ := p.DynamicPrice(100, 200, entity.ProfilePriceSensitive)
	assert.Equal(t, floor, final)
}

func TestDynamicPriceVIPPremium(t *testing.T) {
	p := NewPricingAdvisor(15)

	// Base 198 exceeds the 150 premium already, so it stays.
	final, _, _ := p.DynamicPrice(100, 200, entity.ProfileVIP)
	assert.Equal(t, 198.0, final)

	// Without a competitor, base is 130 and VIP lifts to cost * 1.5.
	final, _, _ = p.DynamicPrice(100, 0, entity.ProfileVIP)
	assert.Equal(t, 150.0, final)
}

func TestDynamicPriceHesitantNudge(t *testing.T) {
	p := NewPricingAdvisor(15)

	// 198 * 0.95 = 188.1, well above the 115 floor.
	final, _, _ := p.DynamicPrice(100, 200, entity.ProfileHesitant)
	assert.Equal(t, 188.1, final)
}

func TestDynamicPriceNoCompetitor(t *testing.T) {
	p := NewPricingAdvisor(15)

	final, _, note := p.DynamicPrice(100, 0, entity.ProfileUrgent)
	assert.Equal(t, 130.0, final)
	assert.Equal(t, "standard competitive pricing", note)
}

func TestDiscountForProfileShavesThinMargin(t *testing.T) {
	rich := DiscountForProfile(entity.ProfileStingy, 200, 50)
	thin := DiscountForProfile(entity.ProfileStingy, 100, 95)
	assert.Equal(t, rich.DiscountPct-5, thin.DiscountPct)
	assert.Greater(t, rich.ConversionBoost, 0.0)
}

func TestAdjustToneCoversEveryTone(t *testing.T) {
	for _, tone := range []entity.Tone{
		entity.ToneAggressive, entity.ToneSoft, entity.ToneProfessional,
		entity.ToneUrgent, entity.ToneLuxury,
	} {
		out := AdjustTone("المنتج متوفر", tone)
		assert.NotEmpty(t, out)
	}
}
