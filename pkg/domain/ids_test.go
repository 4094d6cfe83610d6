package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "hiretrack/pkg/domain-errors"
)

// TestParseID_Invariants covers the trust-boundary rule that ids are
// non-empty positive integers.
func TestParseID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseApplicationID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseJobID("seven")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects zero and negatives", func(t *testing.T) {
		for _, in := range []string{"0", "-3"} {
			_, err := ParseCandidateID(in)
			require.Error(t, err, in)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		}
	})

	t.Run("accepts valid id with whitespace", func(t *testing.T) {
		got, err := ParseUserID(" 42 ")
		require.NoError(t, err)
		assert.Equal(t, UserID(42), got)
		assert.Equal(t, "42", got.String())
	})
}

func TestParseRole(t *testing.T) {
	cases := map[string]Role{"": RoleCandidate, "hr": RoleHR, "Manager": RoleManager, "CANDIDATE": RoleCandidate}
	for in, want := range cases {
		got, ok := ParseRole(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := ParseRole("admin")
	assert.False(t, ok)
}

func TestActorOwnership(t *testing.T) {
	linked := CandidateID(7)
	a := Actor{UserID: 1, Role: RoleCandidate, CandidateID: &linked}
	assert.True(t, a.Owns(7))
	assert.False(t, a.Owns(8))

	unlinked := Actor{UserID: 2, Role: RoleCandidate}
	_, ok := unlinked.LinkedCandidate()
	assert.False(t, ok)
	assert.False(t, unlinked.Owns(7))
}
