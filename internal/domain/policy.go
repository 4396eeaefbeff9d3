package domain

import (
	"strings"
	"time"
)

// ValidationPolicy is the per-display anti-abuse rule set. Nil caps mean
// unlimited; a nil time window means the rules apply over the display's
// lifetime.
type ValidationPolicy struct {
	DisplayID            string    `json:"display_id"`
	AllowMultiplePlays   bool      `json:"allow_multiple_plays"`
	MaxPlaysPerEmail     *int      `json:"max_plays_per_email"`
	MaxPlaysPerPhone     *int      `json:"max_plays_per_phone"`
	TimeWindowHours      *int      `json:"time_window_hours"`
	AllowRetryOnNegative bool      `json:"allow_retry_on_negative"`
	CheckAcrossDisplays  bool      `json:"check_across_displays"`
	CheckDisplayIDs      string    `json:"check_display_ids"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// DefaultPolicy is "one play ever", applied when a display has no stored
// policy row.
func DefaultPolicy(displayID string) ValidationPolicy {
	one := 1
	return ValidationPolicy{
		DisplayID:        displayID,
		MaxPlaysPerEmail: &one,
		MaxPlaysPerPhone: &one,
	}
}

// DisplayIDsToCheck resolves the set of display ids whose history the policy
// considers: the target display plus the trimmed, de-duplicated cross-display
// list.
func (p ValidationPolicy) DisplayIDsToCheck() []string {
	ids := []string{p.DisplayID}
	if !p.CheckAcrossDisplays || p.CheckDisplayIDs == "" {
		return ids
	}

	seen := map[string]bool{p.DisplayID: true}
	for _, raw := range strings.Split(p.CheckDisplayIDs, ",") {
		id := strings.TrimSpace(raw)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}

	return ids
}
