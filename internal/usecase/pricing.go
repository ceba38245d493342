package usecase

import (
	"fmt"

	"github.com/shopspring/decimal"

	"neuropilot/internal/domain/entity"
)

var (
	hundred = decimal.NewFromInt(100)

	undercutFactor = decimal.RequireFromString("0.98") // critical tier: 2% under competitor
	matchPlus2     = decimal.RequireFromString("1.02")
	matchPlus5     = decimal.RequireFromString("1.05")
)

// PricingAdvisor computes tiered counter-offers against competitor prices.
// Pure decimal arithmetic, no external calls, no failure mode.
type PricingAdvisor struct {
	minMarginPct decimal.Decimal
}

func NewPricingAdvisor(minMarginPct float64) *PricingAdvisor {
	if minMarginPct <= 0 {
		minMarginPct = 15
	}
	return &PricingAdvisor{minMarginPct: decimal.NewFromFloat(minMarginPct)}
}

// CounterOffer applies the ordered, mutually exclusive urgency tiers to the
// gap between our price and the competitor's.
func (p *PricingAdvisor) CounterOffer(competitorPrice, ourPrice, ourCost float64) entity.CounterOffer {
	comp := decimal.NewFromFloat(competitorPrice)
	ours := decimal.NewFromFloat(ourPrice)
	cost := decimal.NewFromFloat(ourCost)

	if comp.IsZero() {
		return entity.CounterOffer{
			SuggestedPrice:   ours,
			DiscountPct:      decimal.Zero,
			Urgency:          entity.UrgencyLow,
			Reasoning:        "no competitor price observed, holding current price",
			MarketingMessage: marketingMessage(entity.UrgencyLow),
		}
	}

	// (ourPrice - competitorPrice) / competitorPrice * 100
	diffPct := ours.Sub(comp).Div(comp).Mul(hundred)

	urgency := entity.UrgencyLow
	suggested := ours
	var reasoning string

	switch {
	case diffPct.GreaterThan(decimal.NewFromInt(15)):
		urgency = entity.UrgencyCritical
		suggested = comp.Mul(undercutFactor)
		margin := suggested.Sub(cost).Div(suggested).Mul(hundred)
		if margin.LessThan(p.minMarginPct) {
			// Cannot undercut without eating the floor; sell at minimum viable.
			suggested = cost.Mul(decimal.NewFromInt(1).Add(p.minMarginPct.Div(hundred)))
			reasoning = fmt.Sprintf("competitor is %s%% cheaper but matching would break the margin floor; minimum viable price %s (%s%% margin)",
				diffPct.Round(1), suggested.Round(2), p.minMarginPct)
		} else {
			reasoning = fmt.Sprintf("competitor is %s%% cheaper, undercutting by 2%% to %s",
				diffPct.Round(1), suggested.Round(2))
		}
	case diffPct.GreaterThan(decimal.NewFromInt(10)):
		urgency = entity.UrgencyHigh
		suggested = comp.Mul(matchPlus2)
		reasoning = fmt.Sprintf("competitor is %s%% cheaper, matching +2%% at %s", diffPct.Round(1), suggested.Round(2))
	case diffPct.GreaterThan(decimal.NewFromInt(5)):
		urgency = entity.UrgencyMedium
		suggested = comp.Mul(matchPlus5)
		reasoning = fmt.Sprintf("competitor is %s%% cheaper, matching +5%% at %s", diffPct.Round(1), suggested.Round(2))
	case diffPct.GreaterThan(decimal.NewFromInt(-5)):
		reasoning = fmt.Sprintf("prices are competitive (difference %s%%), no action needed", diffPct.Round(1))
	default:
		reasoning = fmt.Sprintf("we are %s%% cheaper, maintaining current pricing", diffPct.Abs().Round(1))
	}

	discount := decimal.Zero
	if ours.IsPositive() {
		discount = ours.Sub(suggested).Div(ours).Mul(hundred)
		if discount.IsNegative() {
			discount = decimal.Zero
		}
	}

	return entity.CounterOffer{
		SuggestedPrice:   suggested,
		DiscountPct:      discount,
		Urgency:          urgency,
		Reasoning:        reasoning,
		MarketingMessage: marketingMessage(urgency),
	}
}

// DynamicPrice computes a profile-aware sell price: never below the margin
// floor, nudged per psychological archetype.
func (p *PricingAdvisor) DynamicPrice(cost float64, competitorPrice float64, profile entity.Profile) (finalPrice, floorPrice float64, note string) {
	c := decimal.NewFromFloat(cost)
	floor := c.Mul(decimal.NewFromInt(1).Add(p.minMarginPct.Div(hundred)))

	var base decimal.Decimal
	if competitorPrice > 0 {
		comp := decimal.NewFromFloat(competitorPrice)
		if comp.LessThan(floor) {
			base = floor
			note = "competitor below floor, holding floor"
		} else {
			base = comp.Mul(decimal.RequireFromString("0.99"))
			note = "undercut competitor by 1%"
		}
	} else {
		base = c.Mul(decimal.RequireFromString("1.30"))
		note = "standard competitive pricing"
	}

	final := base
	switch profile {
	case entity.ProfilePriceSensitive:
		if final.GreaterThan(floor) {
			final = floor
			note = "max discount applied for price sensitivity"
		} else {
			note = "best possible market price guaranteed (floor reached)"
		}
	case entity.ProfileVIP:
		premium := c.Mul(decimal.RequireFromString("1.50"))
		if final.LessThan(premium) {
			final = premium
			note = "premium pricing applied for VIP experience"
		}
	case entity.ProfileHesitant:
		nudged := final.Mul(decimal.RequireFromString("0.95"))
		if nudged.GreaterThanOrEqual(floor) {
			final = nudged
			note = "5% nudge discount"
		} else {
			final = floor
			note = "best possible price offered (floor reached)"
		}
	}

	if final.LessThan(floor) {
		final = floor
	}

	fp, _ := final.Round(2).Float64()
	fl, _ := floor.Round(2).Float64()
	return fp, fl, note
}

// marketingMessage picks outward copy per urgency. Exhaustive over the
// Urgency enum.
func marketingMessage(u entity.Urgency) string {
	switch u {
	case entity.UrgencyCritical:
		return "🔥 عرض صاعق! خصم فوري الآن! سعر لن يتكرر. اطلب خلال ساعة واحصل على شحن مجاني!"
	case entity.UrgencyHigh:
		return "⚡ عرض خاص اليوم! خصم حصري لعملائنا المميزين. الكمية محدودة!"
	case entity.UrgencyMedium:
		return "💰 سعر منافس! جودة أعلى بسعر أفضل. اطلب الآن."
	case entity.UrgencyLow:
		return "✨ منتج مميز بسعر عادل. جودة مضمونة + ضمان سنتين."
	}
	return ""
}
