package models

import (
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"hiretrack/pkg/domain"
	dErrors "hiretrack/pkg/domain-errors"
)

const (
	maxNameLength      = 50
	maxEmailLength     = 254
	maxPhoneLength     = 15
	MaxResumeRefLength = 512
)

// Candidate is a person who can apply for jobs.
//
// Invariants:
//   - FirstName and LastName are non-empty, at most 50 characters
//   - Email is a valid address, unique case-insensitively, immutable after creation
//   - ResumeRef, when set, is an opaque reference of at most 512 characters
type Candidate struct {
	ID        domain.CandidateID `json:"id"`
	FirstName string             `json:"first_name"`
	LastName  string             `json:"last_name"`
	Email     string             `json:"email"`
	Phone     string             `json:"phone"`
	ResumeRef *string            `json:"resume_ref"`
	Headline  string             `json:"headline"`
	Summary   string             `json:"summary"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

func NewCandidate(firstName, lastName, email, phone string, now time.Time) (*Candidate, error) {
	c := &Candidate{
		FirstName: strings.TrimSpace(firstName),
		LastName:  strings.TrimSpace(lastName),
		Email:     strings.TrimSpace(email),
		Phone:     strings.TrimSpace(phone),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := validateName("first name", c.FirstName); err != nil {
		return nil, err
	}
	if err := validateName("last name", c.LastName); err != nil {
		return nil, err
	}
	if err := validateEmail(c.Email); err != nil {
		return nil, err
	}
	if utf8.RuneCountInString(c.Phone) > maxPhoneLength {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "phone must be 15 characters or less")
	}
	return c, nil
}

func validateName(field, v string) error {
	if v == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, field+" cannot be empty")
	}
	if utf8.RuneCountInString(v) > maxNameLength {
		return dErrors.New(dErrors.CodeInvariantViolation, field+" must be 50 characters or less")
	}
	return nil
}

func validateEmail(v string) error {
	if v == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, "email cannot be empty")
	}
	if len(v) > maxEmailLength {
		return dErrors.New(dErrors.CodeInvariantViolation, "email is too long")
	}
	addr, err := mail.ParseAddress(v)
	if err != nil || addr.Address != v {
		return dErrors.New(dErrors.CodeInvariantViolation, "email is not a valid address")
	}
	return nil
}

// DisplayName is "First Last".
func (c *Candidate) DisplayName() string {
	return c.FirstName + " " + c.LastName
}

// CanAttachResume checks a resume reference before ApplyResume.
func CanAttachResume(ref string) error {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, "resume reference cannot be empty")
	}
	if utf8.RuneCountInString(ref) > MaxResumeRefLength {
		return dErrors.New(dErrors.CodeInvariantViolation, "resume reference must be 512 characters or less")
	}
	return nil
}

func (c *Candidate) ApplyResume(ref string, now time.Time) {
	ref = strings.TrimSpace(ref)
	c.ResumeRef = &ref
	c.UpdatedAt = now
}

func (c *Candidate) ClearResume(now time.Time) {
	c.ResumeRef = nil
	c.UpdatedAt = now
}

// ProfileUpdate carries the mutable profile fields. Nil fields are left alone.
type ProfileUpdate struct {
	FirstName *string
	LastName  *string
	Phone     *string
	Headline  *string
	Summary   *string
}

// CanApplyProfile validates u against the invariants without mutating c.
func (c *Candidate) CanApplyProfile(u ProfileUpdate) error {
	if u.FirstName != nil {
		if err := validateName("first name", strings.TrimSpace(*u.FirstName)); err != nil {
			return err
		}
	}
	if u.LastName != nil {
		if err := validateName("last name", strings.TrimSpace(*u.LastName)); err != nil {
			return err
		}
	}
	if u.Phone != nil && utf8.RuneCountInString(strings.TrimSpace(*u.Phone)) > maxPhoneLength {
		return dErrors.New(dErrors.CodeInvariantViolation, "phone must be 15 characters or less")
	}
	return nil
}

func (c *Candidate) ApplyProfile(u ProfileUpdate, now time.Time) {
	if u.FirstName != nil {
		c.FirstName = strings.TrimSpace(*u.FirstName)
	}
	if u.LastName != nil {
		c.LastName = strings.TrimSpace(*u.LastName)
	}
	if u.Phone != nil {
		c.Phone = strings.TrimSpace(*u.Phone)
	}
	if u.Headline != nil {
		c.Headline = strings.TrimSpace(*u.Headline)
	}
	if u.Summary != nil {
		c.Summary = *u.Summary
	}
	c.UpdatedAt = now
}
