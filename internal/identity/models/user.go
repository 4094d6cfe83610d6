package models

import (
	"strings"
	"time"
	"unicode/utf8"

	"hiretrack/pkg/domain"
	dErrors "hiretrack/pkg/domain-errors"
)

const maxUsernameLength = 150

// User is an authenticated account.
//
// Invariants:
//   - Username is non-empty, at most 150 characters, unique case-insensitively
//   - Role is one of CANDIDATE, MANAGER, HR
//   - CandidateID, when set, references an existing candidate
type User struct {
	ID           domain.UserID       `json:"id"`
	Username     string              `json:"username"`
	Email        string              `json:"email"`
	PasswordHash string              `json:"-"`
	Role         domain.Role         `json:"role"`
	CandidateID  *domain.CandidateID `json:"candidate,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
}

func NewUser(username, email, passwordHash string, role domain.Role, now time.Time) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "username cannot be empty")
	}
	if utf8.RuneCountInString(username) > maxUsernameLength {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "username must be 150 characters or less")
	}
	if _, ok := domain.ParseRole(string(role)); !ok || role == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "unknown role")
	}
	if passwordHash == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "password hash cannot be empty")
	}
	return &User{
		Username:     username,
		Email:        strings.TrimSpace(email),
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    now,
	}, nil
}

// Actor returns the principal this user acts as.
func (u *User) Actor() domain.Actor {
	a := domain.Actor{UserID: u.ID, Role: u.Role}
	if u.CandidateID != nil {
		linked := *u.CandidateID
		a.CandidateID = &linked
	}
	return a
}

// LinkCandidate points the account at a candidate record.
func (u *User) LinkCandidate(id domain.CandidateID) {
	u.CandidateID = &id
}
