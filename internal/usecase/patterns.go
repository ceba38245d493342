package usecase

import "neuropilot/internal/domain/entity"

// Per-profile keyword sets for the local fallback, multilingual. Scored by
// case-insensitive substring hits; ties go to the first profile in
// entity.Profiles order.
var profileKeywords = map[entity.Profile][]string{
	entity.ProfileStingy:         {"غالي", "أرخص", "تخفيض", "مجانا", "كم السعر", "expensive", "cheaper", "discount", "free"},
	entity.ProfileHesitant:       {"مش متأكد", "لسه", "بفكر", "هشوف", "not sure", "thinking", "maybe", "later"},
	entity.ProfileVIP:            {"أفضل", "premium", "luxury", "best quality", "exclusive", "top"},
	entity.ProfileUrgent:         {"بسرعة", "الآن", "عاجل", "ضروري", "urgent", "now", "asap", "immediately"},
	entity.ProfilePriceSensitive: {"كم", "سعر", "تكلفة", "price", "cost", "how much"},
	entity.ProfileQualityFocused: {"جودة", "ضمان", "مواصفات", "quality", "guarantee", "specifications"},
	entity.ProfileImpulsive:      {"!", "عايز", "أريد", "want", "need", "buy now", "عاوز"},
}

// fallbackResponse returns the canned reply for a profile. Exhaustive over
// the Profile enum so adding an archetype forces an update here.
func fallbackResponse(p entity.Profile) string {
	switch p {
	case entity.ProfileStingy:
		return "🎁 عندنا عرض خاص اليوم! خصم 15% لفترة محدودة."
	case entity.ProfileHesitant:
		return "😊 مفيش مشكلة! عندنا ضمان استرجاع 14 يوم."
	case entity.ProfileVIP:
		return "⭐ منتجاتنا Premium بجودة استثنائية."
	case entity.ProfileUrgent:
		return "⚡ متوفر الآن! شحن سريع خلال 24 ساعة."
	case entity.ProfilePriceSensitive:
		return "💰 أسعار تنافسية + قسط على 3 دفعات."
	case entity.ProfileQualityFocused:
		return "✅ جودة مضمونة 100% + ضمان سنتين."
	case entity.ProfileImpulsive:
		return "🔥 اطلب الآن! العرض ينتهي قريباً."
	}
	return ""
}

// fallbackDiscount is the fixed discount used on the local path.
func fallbackDiscount(p entity.Profile) float64 {
	if p == entity.ProfileStingy {
		return 15
	}
	return 5
}

// OptimalDiscount maps a profile to its discount and the expected
// conversion lift, trimmed when the margin gets thin.
type OptimalDiscount struct {
	DiscountPct     float64
	FinalPrice      float64
	ConversionBoost float64
}

// DiscountForProfile computes the per-profile discount against a price,
// shaving 5 points when the resulting margin over cost drops under 15%.
func DiscountForProfile(p entity.Profile, price, cost float64) OptimalDiscount {
	var discount, boost float64
	switch p {
	case entity.ProfileStingy:
		discount, boost = 20, 85
	case entity.ProfileHesitant:
		discount, boost = 10, 45
	case entity.ProfileVIP:
		discount, boost = 0, 20 // VIPs do not need discounts
	case entity.ProfileUrgent:
		discount, boost = 5, 60
	case entity.ProfilePriceSensitive:
		discount, boost = 15, 70
	case entity.ProfileQualityFocused:
		discount, boost = 5, 30
	case entity.ProfileImpulsive:
		discount, boost = 10, 90
	}

	final := price * (1 - discount/100)
	if final > 0 {
		margin := (final - cost) / final * 100
		if margin < 15 && discount >= 5 {
			discount -= 5
			final = price * (1 - discount/100)
		}
	}
	return OptimalDiscount{DiscountPct: discount, FinalPrice: final, ConversionBoost: boost}
}

// AdjustTone wraps a reply in the framing for the requested tone.
// Exhaustive over the Tone enum.
func AdjustTone(message string, tone entity.Tone) string {
	switch tone {
	case entity.ToneAggressive:
		return "⚡ " + message + " 🔥 العرض لفترة محدودة!"
	case entity.ToneSoft:
		return "😊 " + message + " نحن هنا لمساعدتك."
	case entity.ToneProfessional:
		return message + " نتشرف بخدمتكم."
	case entity.ToneUrgent:
		return "⏰ " + message + " الكمية محدودة!"
	case entity.ToneLuxury:
		return "⭐ " + message + " تجربة تسوق استثنائية."
	}
	return message
}
