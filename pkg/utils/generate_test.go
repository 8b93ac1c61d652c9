package utils

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var referencePattern = regexp.MustCompile(`^FLT-\d{8}-\d{6}-[A-HJ-NP-Z2-9]{6}$`)

func TestGenerateBookingReference_Format(t *testing.T) {
	now := time.Date(2026, 3, 1, 14, 5, 9, 0, time.UTC)

	ref := GenerateBookingReference(now)

	require.Regexp(t, referencePattern, ref)
	assert.Equal(t, "FLT-20260301-140509-", ref[:20])
}

func TestGenerateBookingReference_UsesUTC(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*60*60)
	now := time.Date(2026, 3, 1, 2, 0, 0, 0, loc)

	ref := GenerateBookingReference(now)

	assert.Equal(t, "FLT-20260228-210000-", ref[:20])
}

func TestGenerateBookingReference_Varies(t *testing.T) {
	now := time.Now()
	seen := make(map[string]struct{})
	for range 50 {
		seen[GenerateBookingReference(now)] = struct{}{}
	}

	assert.Greater(t, len(seen), 1)
}

func TestParseInt(t *testing.T) {
	assert.Equal(t, 3, ParseInt("3", 1))
	assert.Equal(t, 1, ParseInt("", 1))
	assert.Equal(t, 1, ParseInt("abc", 1))
	assert.Equal(t, 10, ParseInt("0", 10))
	assert.Equal(t, 10, ParseInt("-4", 10))
}
