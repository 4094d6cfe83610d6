package models

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "hiretrack/pkg/domain-errors"
)

func TestNewCandidate(t *testing.T) {
	now := time.Now()

	c, err := NewCandidate(" Ada ", "Lovelace", "ada@example.com", "555-0100", now)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", c.DisplayName())
	assert.Nil(t, c.ResumeRef)

	tests := []struct {
		name                      string
		first, last, email, phone string
	}{
		{"empty first name", "", "L", "a@b.co", ""},
		{"long last name", "A", strings.Repeat("l", 51), "a@b.co", ""},
		{"missing email", "A", "L", "", ""},
		{"bad email", "A", "L", "not-an-email", ""},
		{"long phone", "A", "L", "a@b.co", "1234567890123456"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCandidate(tt.first, tt.last, tt.email, tt.phone, now)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
		})
	}
}

func TestResumeReference(t *testing.T) {
	assert.Error(t, CanAttachResume("  "))
	assert.Error(t, CanAttachResume(strings.Repeat("r", MaxResumeRefLength+1)))
	assert.NoError(t, CanAttachResume(strings.Repeat("r", MaxResumeRefLength)))

	c := &Candidate{}
	now := time.Now()
	c.ApplyResume(" s3://resumes/1.pdf ", now)
	require.NotNil(t, c.ResumeRef)
	assert.Equal(t, "s3://resumes/1.pdf", *c.ResumeRef)
	c.ClearResume(now)
	assert.Nil(t, c.ResumeRef)
}

func TestProfileUpdate(t *testing.T) {
	c, err := NewCandidate("Ada", "Lovelace", "ada@example.com", "", time.Now())
	require.NoError(t, err)

	same := "ADA@example.com"
	other := "grace@example.com"
	headline := "Analyst"

	u, err := (&UpdateProfileRequest{Email: &same, Headline: &headline}).ToUpdate(c.Email)
	require.NoError(t, err)
	require.NoError(t, c.CanApplyProfile(u))
	c.ApplyProfile(u, time.Now())
	assert.Equal(t, "Analyst", c.Headline)

	_, err = (&UpdateProfileRequest{Email: &other}).ToUpdate(c.Email)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))

	empty := ""
	assert.Error(t, c.CanApplyProfile(ProfileUpdate{FirstName: &empty}))
}
