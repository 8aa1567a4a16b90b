package models

const (
	TrustScoreMax = 100

	// Below this score new comments are held for approval.
	TrustApprovalThreshold = 30
)

// ComputeTrustScore recalculates a user's trust score purely from the
// stored counters. It penalizes a high ratio of validated to total
// flags received, penalizes each validated flag, and rewards approved
// comments. The result is clamped to [0, TrustScoreMax] so the exact
// weights stay a policy knob, not a correctness concern.
func ComputeTrustScore(totalFlagsReceived, validFlagsReceived, approvedComments int) int {
	score := TrustScoreMax
	if totalFlagsReceived > 0 {
		score -= 60 * validFlagsReceived / totalFlagsReceived
	}
	score -= 5 * validFlagsReceived
	bonus := 2 * approvedComments
	if bonus > 20 {
		bonus = 20
	}
	score += bonus
	if score < 0 {
		return 0
	}
	if score > TrustScoreMax {
		return TrustScoreMax
	}
	return score
}

// RequiresCommentApproval derives the comment-approval gate from the
// recomputed score.
func RequiresCommentApproval(score int) bool {
	return score < TrustApprovalThreshold
}
