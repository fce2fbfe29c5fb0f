package domain

import (
	"regexp"
	"strings"
)

// Tier is the authorization rank an account holds within one group.
// The transport-level group owner is not a tier; owners outrank both.
type Tier string

const (
	TierNone       Tier = ""
	TierCoLead     Tier = "Deputy Co-Lead"
	TierDeputyHead Tier = "Deputy Head"
)

// Rank orders tiers for comparisons and display. Higher outranks lower.
func (t Tier) Rank() int {
	switch t {
	case TierDeputyHead:
		return 2
	case TierCoLead:
		return 1
	default:
		return 0
	}
}

var trailingDigits = regexp.MustCompile(`(\d+)$`)

// ParseTier maps accepted surface forms to a tier: the digits "1" (Deputy
// Head) and "2" (Deputy Co-Lead), or the tier names matched
// case-insensitively. Free text ending in digits is reduced to those digits
// first, so "tier 1" and "уровень 2" resolve the same way. Anything else is
// ErrInvalidTier.
func ParseTier(input string) (Tier, error) {
	s := strings.ToLower(strings.TrimSpace(input))
	if m := trailingDigits.FindString(s); m != "" {
		s = m
	}
	switch s {
	case "1", "deputy head", "deputyhead", "head":
		return TierDeputyHead, nil
	case "2", "deputy co-lead", "co-lead", "colead":
		return TierCoLead, nil
	}
	return TierNone, ErrInvalidTier
}

// PermissionRecord maps one account to its tier within a group.
type PermissionRecord struct {
	Account AccountID `json:"account"`
	Handle  string    `json:"handle,omitempty"`
	Tier    Tier      `json:"tier"`
}

// TierGroup is one display bucket of ListByTier. Unknown or legacy tier
// strings survive as their own bucket rather than being dropped.
type TierGroup struct {
	Tier    Tier                `json:"tier"`
	Members []*PermissionRecord `json:"members"`
}
