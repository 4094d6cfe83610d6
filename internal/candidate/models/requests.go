package models

import (
	"strings"

	dErrors "hiretrack/pkg/domain-errors"
)

type CreateCandidateRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Headline  string `json:"headline"`
	Summary   string `json:"summary"`
}

type UpdateProfileRequest struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Email     *string `json:"email,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Headline  *string `json:"headline,omitempty"`
	Summary   *string `json:"summary,omitempty"`
}

// ToUpdate rejects an email change against current and returns the
// profile patch.
func (r *UpdateProfileRequest) ToUpdate(current string) (ProfileUpdate, error) {
	if r.Email != nil && !strings.EqualFold(strings.TrimSpace(*r.Email), current) {
		return ProfileUpdate{}, dErrors.New(dErrors.CodeValidation, "email cannot be changed")
	}
	return ProfileUpdate{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Phone:     r.Phone,
		Headline:  r.Headline,
		Summary:   r.Summary,
	}, nil
}

type AttachResumeRequest struct {
	ResumeRef string `json:"resume_ref"`
}
