package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTier(t *testing.T) {
	tests := []struct {
		input string
		want  Tier
	}{
		{"1", TierDeputyHead},
		{"2", TierCoLead},
		{"tier 1", TierDeputyHead},
		{"уровень 2", TierCoLead},
		{"Deputy Head", TierDeputyHead},
		{"deputy co-lead", TierCoLead},
		{"  head  ", TierDeputyHead},
		{"colead", TierCoLead},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tier, err := ParseTier(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, tier)
		})
	}
}

func TestParseTier_Invalid(t *testing.T) {
	for _, input := range []string{"", "3", "chief", "tier 0"} {
		_, err := ParseTier(input)
		assert.ErrorIs(t, err, ErrInvalidTier, "input %q", input)
	}
}

func TestTierRank(t *testing.T) {
	assert.Greater(t, TierDeputyHead.Rank(), TierCoLead.Rank())
	assert.Greater(t, TierCoLead.Rank(), TierNone.Rank())
	// Legacy strings from old records rank as nothing.
	assert.Equal(t, 0, Tier("Moderator").Rank())
}

func TestCooldownWindow(t *testing.T) {
	assert.Equal(t, 3*time.Hour, CooldownWindow(TierCoLead))
	assert.Equal(t, time.Minute, CooldownWindow(TierDeputyHead))
	assert.Equal(t, time.Duration(0), CooldownWindow(TierNone))
	assert.Equal(t, time.Duration(0), CooldownWindow(Tier("Moderator")))
}
