package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPenaltySeverityOrdering(t *testing.T) {
	require.True(t, PenaltyTypeWarning.Severity() < PenaltyTypeTempBan24h.Severity())
	require.True(t, PenaltyTypeTempBan24h.Severity() < PenaltyTypeTempBan7d.Severity())
	require.True(t, PenaltyTypeTempBan7d.Severity() < PenaltyTypePermanentBan.Severity())
	require.Equal(t, 0, PenaltyType("timeout").Severity())
	require.False(t, PenaltyType("timeout").Valid())
}

func TestPenaltyDuration(t *testing.T) {
	d, ok := PenaltyTypeTempBan24h.Duration()
	require.True(t, ok)
	require.Equal(t, 24*time.Hour, d)

	d, ok = PenaltyTypeTempBan7d.Duration()
	require.True(t, ok)
	require.Equal(t, 7*24*time.Hour, d)

	_, ok = PenaltyTypeWarning.Duration()
	require.False(t, ok)
	_, ok = PenaltyTypePermanentBan.Duration()
	require.False(t, ok)
}

func TestPenaltyIsBan(t *testing.T) {
	require.False(t, PenaltyTypeWarning.IsBan())
	require.True(t, PenaltyTypeTempBan24h.IsBan())
	require.True(t, PenaltyTypeTempBan7d.IsBan())
	require.True(t, PenaltyTypePermanentBan.IsBan())
	require.False(t, PenaltyType("timeout").IsBan())
}

func TestNextPenaltyType(t *testing.T) {
	testCases := []struct {
		name    string
		history []PenaltyType
		want    PenaltyType
	}{
		{"no history", nil, PenaltyTypeWarning},
		{"after warning", []PenaltyType{PenaltyTypeWarning}, PenaltyTypeTempBan24h},
		{"after 24h ban", []PenaltyType{PenaltyTypeWarning, PenaltyTypeTempBan24h}, PenaltyTypeTempBan7d},
		{"after 7d ban", []PenaltyType{PenaltyTypeTempBan7d}, PenaltyTypePermanentBan},
		{"top of ladder repeats", []PenaltyType{PenaltyTypePermanentBan}, PenaltyTypePermanentBan},
		{"order does not matter", []PenaltyType{PenaltyTypeTempBan24h, PenaltyTypeWarning}, PenaltyTypeTempBan7d},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, NextPenaltyType(tc.history))
		})
	}
}

func TestPenaltyIsInForce(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	active := &UserPenalty{Status: PenaltyStatusActive}
	require.True(t, active.IsInForce(now))

	appealed := &UserPenalty{Status: PenaltyStatusAppealed}
	require.True(t, appealed.IsInForce(now))

	revoked := &UserPenalty{Status: PenaltyStatusRevoked}
	require.False(t, revoked.IsInForce(now))

	expiredStatus := &UserPenalty{Status: PenaltyStatusExpired}
	require.False(t, expiredStatus.IsInForce(now))

	// Lazy expiry: status still says active, but the clock has passed.
	lapsed := &UserPenalty{Status: PenaltyStatusActive, ExpiresAt: &past}
	require.False(t, lapsed.IsInForce(now))

	running := &UserPenalty{Status: PenaltyStatusActive, ExpiresAt: &future}
	require.True(t, running.IsInForce(now))
}

func TestCanAppeal(t *testing.T) {
	require.True(t, CanAppeal(&UserPenalty{Status: PenaltyStatusActive, PenaltyType: PenaltyTypeTempBan24h}))
	require.True(t, CanAppeal(&UserPenalty{Status: PenaltyStatusActive, PenaltyType: PenaltyTypePermanentBan}))
	require.False(t, CanAppeal(&UserPenalty{Status: PenaltyStatusActive, PenaltyType: PenaltyTypeWarning}))
	require.False(t, CanAppeal(&UserPenalty{Status: PenaltyStatusAppealed, PenaltyType: PenaltyTypeTempBan24h}))
	require.False(t, CanAppeal(&UserPenalty{Status: PenaltyStatusRevoked, PenaltyType: PenaltyTypePermanentBan}))
}
