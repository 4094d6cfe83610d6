package models

import (
	"strings"

	"hiretrack/pkg/domain"
	dErrors "hiretrack/pkg/domain-errors"
)

type RegisterRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	CandidateID *int64 `json:"candidate_id,omitempty"`
}

func (r *RegisterRequest) Normalize() {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(r.Email)
	r.Role = strings.ToUpper(strings.TrimSpace(r.Role))
}

func (r *RegisterRequest) Validate() error {
	if r.Username == "" || r.Password == "" {
		return dErrors.New(dErrors.CodeValidation, "username and password required")
	}
	if _, ok := domain.ParseRole(r.Role); !ok {
		return dErrors.New(dErrors.CodeValidation, "role must be one of CANDIDATE, MANAGER, HR")
	}
	if r.CandidateID != nil && *r.CandidateID <= 0 {
		return dErrors.New(dErrors.CodeValidation, "candidate_id must be positive")
	}
	return nil
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	if strings.TrimSpace(r.Username) == "" || r.Password == "" {
		return dErrors.New(dErrors.CodeValidation, "username and password required")
	}
	return nil
}

type LinkCandidateRequest struct {
	CandidateID int64 `json:"candidate_id"`
}

func (r *LinkCandidateRequest) Validate() error {
	if r.CandidateID <= 0 {
		return dErrors.New(dErrors.CodeValidation, "candidate_id is required")
	}
	return nil
}
