package utils

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// ==================== UUID & TOKEN ====================

func GenerateUUID() uuid.UUID {
	return uuid.New()
}

func ParseUUID(uuidStr string) (uuid.UUID, error) {
	return uuid.Parse(uuidStr)
}

func GenerateSessionToken() uuid.UUID {
	return uuid.New()
}

// ==================== BOOKING REFERENCE ====================

// excludes 0, O, 1 and I
const referenceAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const referenceSuffixLen = 6

// GenerateBookingReference builds a human-readable reference from the given
// time and a random suffix. Format: FLT-YYYYMMDD-HHMMSS-XXXXXX
func GenerateBookingReference(now time.Time) string {
	suffix := make([]byte, referenceSuffixLen)
	for i := range suffix {
		suffix[i] = referenceAlphabet[rand.IntN(len(referenceAlphabet))]
	}

	now = now.UTC()
	return fmt.Sprintf("FLT-%s-%s-%s", now.Format("20060102"), now.Format("150405"), suffix)
}

// ==================== PARSING ====================

// ParseInt converts string to int with default value
func ParseInt(value string, defaultValue int) int {
	if value == "" {
		return defaultValue
	}

	result, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	if result < 1 {
		return defaultValue
	}

	return result
}
