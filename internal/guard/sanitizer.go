// Package guard holds the layers that sit between callers and the
// classification provider: input sanitization, the per-actor rate limit,
// and the per-organization quota.
package guard

import (
	"regexp"
	"unicode/utf8"
)

// FilteredToken replaces any neutralized instruction-override phrasing.
const FilteredToken = "[FILTERED]"

// TruncationMarker is appended whenever the sanitizer cuts the input.
const TruncationMarker = "..."

// Ordered replacement set. Patterns must never match FilteredToken itself,
// otherwise the sanitizer stops being idempotent.
var injectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)ignore\s+(previous|all|above|earlier)\s+(instructions?|commands?|prompts?)`),
	regexp.MustCompile(`(?i)disregard\s+(previous|all|above|earlier)`),
	regexp.MustCompile(`(?i)forget\s+(everything|all|previous)`),
	regexp.MustCompile(`(?i)system\s*:`),
	regexp.MustCompile(`(?i)assistant\s*:`),
	regexp.MustCompile(`(?i)user\s*:`),
	regexp.MustCompile(`(?i)\[INST\]`),
	regexp.MustCompile(`(?i)\[/INST\]`),
	regexp.MustCompile(`(?i)<\|im_start\|>`),
	regexp.MustCompile(`(?i)<\|im_end\|>`),
	regexp.MustCompile(`(?i)override\s+(previous|all|settings?|rules?)`),
	regexp.MustCompile(`(?i)bypass\s+(security|rules?|filters?)`),
	regexp.MustCompile(`(?i)you\s+are\s+now`),
	regexp.MustCompile(`(?i)pretend\s+(to\s+be|you\s+are)`),
	regexp.MustCompile(`(?i)act\s+as\s+(if|though)`),
}

// Sanitizer neutralizes prompt-manipulation phrasing and caps length.
// Pure; always returns a string; Sanitize(Sanitize(x)) == Sanitize(x).
type Sanitizer struct {
	maxLen int
}

// NewSanitizer builds a sanitizer with the given length cap.
func NewSanitizer(maxLen int) *Sanitizer {
	if maxLen <= 0 {
		maxLen = 500
	}
	return &Sanitizer{maxLen: maxLen}
}

// Sanitize applies the replacement set in order, then truncates. The cap
// counts characters, not bytes, so Arabic text gets the full allowance and
// the cut never lands mid-rune.
func (s *Sanitizer) Sanitize(text string) string {
	out := text
	for _, p := range injectionPatterns {
		out = p.ReplaceAllString(out, FilteredToken)
	}
	if utf8.RuneCountInString(out) > s.maxLen {
		out = string([]rune(out)[:s.maxLen]) + TruncationMarker
	}
	return out
}

// SanitizeAll sanitizes each history entry.
func (s *Sanitizer) SanitizeAll(texts []string) []string {
	out := make([]string, len(texts))
	for i, t := range texts {
		out[i] = s.Sanitize(t)
	}
	return out
}
