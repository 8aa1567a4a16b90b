package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComputeTrustScore(t *testing.T) {
	testCases := []struct {
		name     string
		total    int
		valid    int
		approved int
		want     int
	}{
		{"fresh user", 0, 0, 0, 100},
		{"flags without validation cost nothing", 5, 0, 0, 100},
		{"single validated flag", 1, 1, 0, 100 - 60 - 5},
		{"ratio softened by dismissed flags", 4, 1, 0, 100 - 15 - 5},
		{"approved comments add a capped bonus", 4, 1, 5, 100 - 15 - 5 + 10},
		{"bonus caps at 20", 0, 0, 50, 100},
		{"clamped at zero", 10, 10, 0, 0},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, ComputeTrustScore(tc.total, tc.valid, tc.approved))
		})
	}
}

func TestComputeTrustScoreMonotonicInValidFlags(t *testing.T) {
	prev := TrustScoreMax
	for valid := 0; valid <= 20; valid++ {
		score := ComputeTrustScore(20, valid, 0)
		require.LessOrEqual(t, score, prev, "score must not rise with more validated flags")
		prev = score
	}
}

func TestRequiresCommentApproval(t *testing.T) {
	require.False(t, RequiresCommentApproval(TrustApprovalThreshold))
	require.False(t, RequiresCommentApproval(100))
	require.True(t, RequiresCommentApproval(TrustApprovalThreshold-1))
	require.True(t, RequiresCommentApproval(0))
}
