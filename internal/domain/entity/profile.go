package entity

// Profile is a customer psychological archetype. The enumeration order is
// load-bearing: fallback scoring breaks ties by it.
type Profile string

const (
	ProfileStingy         Profile = "stingy"
	ProfileHesitant       Profile = "hesitant"
	ProfileVIP            Profile = "vip"
	ProfileUrgent         Profile = "urgent"
	ProfilePriceSensitive Profile = "price_sensitive"
	ProfileQualityFocused Profile = "quality_focused"
	ProfileImpulsive      Profile = "impulsive"
)

// Profiles lists every archetype in tie-break order.
var Profiles = []Profile{
	ProfileStingy,
	ProfileHesitant,
	ProfileVIP,
	ProfileUrgent,
	ProfilePriceSensitive,
	ProfileQualityFocused,
	ProfileImpulsive,
}

// Valid reports whether p is one of the known archetypes.
func (p Profile) Valid() bool {
	switch p {
	case ProfileStingy, ProfileHesitant, ProfileVIP, ProfileUrgent,
		ProfilePriceSensitive, ProfileQualityFocused, ProfileImpulsive:
		return true
	}
	return false
}

// Tone is the suggested register for the outward reply.
type Tone string

const (
	ToneAggressive   Tone = "aggressive"
	ToneSoft         Tone = "soft"
	ToneProfessional Tone = "professional"
	ToneUrgent       Tone = "urgent"
	ToneLuxury       Tone = "luxury"
)

func (t Tone) Valid() bool {
	switch t {
	case ToneAggressive, ToneSoft, ToneProfessional, ToneUrgent, ToneLuxury:
		return true
	}
	return false
}

// Urgency grades how fast an action or reply should happen.
type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyMedium   Urgency = "medium"
	UrgencyHigh     Urgency = "high"
	UrgencyCritical Urgency = "critical"
)

func (u Urgency) Valid() bool {
	switch u {
	case UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyCritical:
		return true
	}
	return false
}

// PsychProfileResult is the classifier verdict for one customer message.
type PsychProfileResult struct {
	Profile             Profile  `json:"profile"`
	Confidence          float64  `json:"confidence"` // 0-100
	SuggestedTone       Tone     `json:"suggestedTone"`
	SuggestedResponse   string   `json:"suggestedResponse"`
	UrgencyLevel        Urgency  `json:"urgencyLevel"`
	BuyingProbability   float64  `json:"buyingProbability"`   // 0-100
	RecommendedDiscount float64  `json:"recommendedDiscount"` // 0-30
	Keywords            []string `json:"keywords"`
}

// Clamp forces every numeric field into its stated range and every enum to a
// safe default, regardless of what the provider produced.
func (r *PsychProfileResult) Clamp() {
	r.Confidence = clamp(r.Confidence, 0, 100)
	r.BuyingProbability = clamp(r.BuyingProbability, 0, 100)
	r.RecommendedDiscount = clamp(r.RecommendedDiscount, 0, 30)
	if !r.SuggestedTone.Valid() {
		r.SuggestedTone = ToneProfessional
	}
	if !r.UrgencyLevel.Valid() {
		r.UrgencyLevel = UrgencyMedium
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ConversationContext is the current message plus up to three prior messages.
// Ephemeral; only previews of it are ever persisted.
type ConversationContext struct {
	Message string
	History []string
}

// Trimmed returns the context with history capped at the last three entries.
func (c ConversationContext) Trimmed() ConversationContext {
	if len(c.History) > 3 {
		c.History = c.History[len(c.History)-3:]
	}
	return c
}
