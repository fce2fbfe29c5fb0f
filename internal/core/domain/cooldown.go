package domain

import (
	"fmt"
	"strings"
	"time"
)

const (
	coLeadCooldown     = 3 * time.Hour
	deputyHeadCooldown = time.Minute
)

// CooldownRecord stores the last guarded action of one admin in one group.
// DisplayName and GroupTitle are denormalized for reporting only.
type CooldownRecord struct {
	Account     AccountID `json:"account"`
	DisplayName string    `json:"display_name,omitempty"`
	GroupTitle  string    `json:"group_title,omitempty"`
	LastAction  time.Time `json:"last_action"`
}

// CooldownWindow returns the minimum gap between guarded actions for a
// tier. Accounts without a recognized tier never reach the cooldown check,
// so they get no window.
func CooldownWindow(t Tier) time.Duration {
	switch t {
	case TierCoLead:
		return coLeadCooldown
	case TierDeputyHead:
		return deputyHeadCooldown
	default:
		return 0
	}
}

// FormatRemaining renders a duration as "1h 2m 5s", omitting zero parts.
func FormatRemaining(d time.Duration) string {
	total := int(d.Round(time.Second).Seconds())
	if total <= 0 {
		return "0s"
	}
	hrs := total / 3600
	mins := total % 3600 / 60
	secs := total % 60
	var parts []string
	if hrs > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hrs))
	}
	if mins > 0 {
		parts = append(parts, fmt.Sprintf("%dm", mins))
	}
	if secs > 0 {
		parts = append(parts, fmt.Sprintf("%ds", secs))
	}
	return strings.Join(parts, " ")
}
