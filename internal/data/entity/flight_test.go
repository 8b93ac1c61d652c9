package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeAirportCode(t *testing.T) {
	assert.Equal(t, "DEL", NormalizeAirportCode(" del "))
	assert.Equal(t, "", NormalizeAirportCode(""))
}

func TestFlight_OperatesOn(t *testing.T) {
	f := &Flight{OperatingDays: []int{1, 3, 5}}

	assert.True(t, f.OperatesOn(time.Monday))
	assert.True(t, f.OperatesOn(time.Friday))
	assert.False(t, f.OperatesOn(time.Sunday))
}

func TestFlight_HasCapacity(t *testing.T) {
	f := &Flight{AvailableSeats: 2}

	assert.True(t, f.HasCapacity(2))
	assert.False(t, f.HasCapacity(3))
}

func TestUser_IsAdmin(t *testing.T) {
	assert.True(t, (&User{Role: RoleAdmin}).IsAdmin())
	assert.False(t, (&User{Role: RoleCustomer}).IsAdmin())
}

func TestSession_IsValid(t *testing.T) {
	now := time.Now()
	revokedAt := now.Add(-time.Minute)

	assert.True(t, (&Session{ExpiresAt: now.Add(time.Hour)}).IsValid(now))
	assert.False(t, (&Session{ExpiresAt: now.Add(-time.Hour)}).IsValid(now))
	assert.False(t, (&Session{ExpiresAt: now.Add(time.Hour), RevokedAt: &revokedAt}).IsValid(now))
}
