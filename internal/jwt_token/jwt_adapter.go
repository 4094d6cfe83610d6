package jwttoken

import (
	"hiretrack/internal/platform/middleware"
	"hiretrack/pkg/domain"
	dErrors "hiretrack/pkg/domain-errors"
)

// JWTServiceAdapter exposes JWTService through the middleware.JWTValidator interface.
type JWTServiceAdapter struct {
	service *JWTService
}

func NewJWTServiceAdapter(service *JWTService) *JWTServiceAdapter {
	return &JWTServiceAdapter{service: service}
}

func (a *JWTServiceAdapter) ValidateToken(tokenString string) (*middleware.JWTClaims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	userID, err := claims.ParsedUserID()
	if err != nil {
		return nil, err
	}
	role, ok := domain.ParseRole(claims.Role)
	if !ok || claims.Role == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token role")
	}
	return &middleware.JWTClaims{UserID: userID, Role: role, TokenID: claims.ID}, nil
}
