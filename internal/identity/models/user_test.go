package models

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hiretrack/pkg/domain"
	dErrors "hiretrack/pkg/domain-errors"
)

func TestNewUser(t *testing.T) {
	now := time.Now()

	u, err := NewUser("  alice ", "a@example.com", "hash", domain.RoleCandidate, now)
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.Nil(t, u.CandidateID)

	_, err = NewUser("", "", "hash", domain.RoleHR, now)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))

	_, err = NewUser(strings.Repeat("u", 151), "", "hash", domain.RoleHR, now)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))

	_, err = NewUser("bob", "", "hash", domain.Role("ADMIN"), now)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
}

func TestActorCopiesLink(t *testing.T) {
	u := &User{ID: 3, Role: domain.RoleCandidate}
	u.LinkCandidate(8)

	a := u.Actor()
	linked, ok := a.LinkedCandidate()
	require.True(t, ok)
	assert.Equal(t, domain.CandidateID(8), linked)

	*u.CandidateID = 9
	linked, _ = a.LinkedCandidate()
	assert.Equal(t, domain.CandidateID(8), linked)
}

func TestRegisterRequestValidate(t *testing.T) {
	req := RegisterRequest{Username: " bob ", Password: "pw", Role: "manager"}
	req.Normalize()
	require.NoError(t, req.Validate())
	assert.Equal(t, "MANAGER", req.Role)

	bad := RegisterRequest{Username: "bob", Password: "pw", Role: "owner"}
	bad.Normalize()
	assert.True(t, dErrors.HasCode(bad.Validate(), dErrors.CodeValidation))

	missing := RegisterRequest{Username: "bob"}
	assert.True(t, dErrors.HasCode(missing.Validate(), dErrors.CodeValidation))
}
