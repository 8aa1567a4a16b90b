package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidatePattern(t *testing.T) {
	require.NoError(t, ValidatePattern("viagra", false))
	require.NoError(t, ValidatePattern("v[i1]agra", true))

	require.ErrorIs(t, ValidatePattern("", false), ErrInvalidFormat)
	require.ErrorIs(t, ValidatePattern("   ", true), ErrInvalidFormat)
	require.ErrorIs(t, ValidatePattern("[unclosed", true), ErrInvalidRegex)

	// Literal entries never compile, so a broken regex is fine there.
	require.NoError(t, ValidatePattern("[unclosed", false))
}

func TestTestPattern(t *testing.T) {
	require.True(t, TestPattern("v[i1]agra", "buy V1AGRA now"))
	require.False(t, TestPattern("v[i1]agra", "nothing here"))

	// Uncompilable input falls back to literal substring matching.
	require.True(t, TestPattern("[unclosed", "text with [unclosed bracket"))
	require.False(t, TestPattern("[unclosed", "clean text"))
}

func TestMatchLiteral(t *testing.T) {
	require.True(t, MatchLiteral("SpAm", "this is spam content"))
	require.True(t, MatchLiteral("spam", "SPAM!"))
	require.False(t, MatchLiteral("spam", "ham"))
}
