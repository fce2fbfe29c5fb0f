package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseRestrictionDuration(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		want     time.Duration
		readable string
	}{
		{"single day", "spam 1d", 24 * time.Hour, "1 days"},
		{"compound token", "flood 1d2h", 26 * time.Hour, "1 days, 2 hours"},
		{"cyrillic units", "спам 2ч30м", 2*time.Hour + 30*time.Minute, "2 hours, 30 minutes"},
		{"year marker", "1r", 31536000 * time.Second, "1 years"},
		{"seconds both alphabets", "10s5с", 15 * time.Second, "10 seconds, 5 seconds"},
		{"no token means permanent", "just spamming", 0, ""},
		{"bare digits ignored", "rule 34", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, readable := ParseRestrictionDuration(tt.input)
			assert.Equal(t, tt.want, d)
			assert.Equal(t, tt.readable, readable)
		})
	}
}

func TestStripTrailingDurationToken(t *testing.T) {
	assert.Equal(t, "spam", StripTrailingDurationToken("spam 1d2h"))
	assert.Equal(t, "", StripTrailingDurationToken("1d"))
	assert.Equal(t, "no touching", StripTrailingDurationToken("no touching"))
	assert.Equal(t, "", StripTrailingDurationToken(""))
}

func TestFormatRemaining(t *testing.T) {
	assert.Equal(t, "1h 2m 5s", FormatRemaining(time.Hour+2*time.Minute+5*time.Second))
	assert.Equal(t, "3h", FormatRemaining(3*time.Hour))
	assert.Equal(t, "59s", FormatRemaining(59*time.Second))
	assert.Equal(t, "0s", FormatRemaining(0))
	assert.Equal(t, "0s", FormatRemaining(-time.Minute))
}
