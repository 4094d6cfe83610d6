package models

import "hiretrack/pkg/domain"

// UserResponse is the public view of an account.
type UserResponse struct {
	ID          domain.UserID       `json:"id"`
	Username    string              `json:"username"`
	Email       string              `json:"email"`
	Role        domain.Role         `json:"role"`
	CandidateID *domain.CandidateID `json:"candidate"`
}

func NewUserResponse(u *User) *UserResponse {
	return &UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		Role:        u.Role,
		CandidateID: u.CandidateID,
	}
}

// TokenResponse is returned by login and registration.
type TokenResponse struct {
	AccessToken string        `json:"access_token"`
	TokenType   string        `json:"token_type"`
	ExpiresIn   int64         `json:"expires_in"`
	User        *UserResponse `json:"user"`
}
