package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Restriction durations arrive as free text containing <integer><unit>
// tokens, e.g. "spam 1d2h". Units accept a Latin and a Cyrillic
// single-letter code each; "r" alone marks years.
var durationToken = regexp.MustCompile(`(\d+)([rdдчhмmsс])`)

var unitSeconds = map[string]int64{
	"r": 31536000,
	"d": 86400, "д": 86400,
	"h": 3600, "ч": 3600,
	"m": 60, "м": 60,
	"s": 1, "с": 1,
}

var unitNames = map[string]string{
	"r": "years",
	"d": "days", "д": "days",
	"h": "hours", "ч": "hours",
	"m": "minutes", "м": "minutes",
	"s": "seconds", "с": "seconds",
}

// ParseRestrictionDuration scans text for all duration tokens and sums
// them. The readable breakdown lists each match in input order. No matches
// means a permanent action: zero duration and an empty breakdown.
func ParseRestrictionDuration(text string) (time.Duration, string) {
	var total int64
	var readable []string
	for _, m := range durationToken.FindAllStringSubmatch(text, -1) {
		value, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			continue
		}
		total += value * unitSeconds[m[2]]
		readable = append(readable, fmt.Sprintf("%d %s", value, unitNames[m[2]]))
	}
	return time.Duration(total) * time.Second, strings.Join(readable, ", ")
}

// StripTrailingDurationToken drops the final whitespace-separated token of
// a reason when a bounded duration was parsed out of it, so "spam 1d2h"
// leaves the reason "spam". A reason that was nothing but the duration
// collapses to empty.
func StripTrailingDurationToken(reason string) string {
	fields := strings.Fields(reason)
	if len(fields) == 0 {
		return ""
	}
	last := fields[len(fields)-1]
	if durationToken.MatchString(last) {
		fields = fields[:len(fields)-1]
	}
	return strings.Join(fields, " ")
}
