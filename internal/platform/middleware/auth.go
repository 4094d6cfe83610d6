package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"hiretrack/pkg/domain"
	dErrors "hiretrack/pkg/domain-errors"
	"hiretrack/pkg/platform/httputil"
	"hiretrack/pkg/requestcontext"
)

// JWTValidator defines the interface for validating JWT tokens
type JWTValidator interface {
	ValidateToken(tokenString string) (*JWTClaims, error)
}

// JWTClaims represents the claims we expect from the JWT validator
type JWTClaims struct {
	UserID  domain.UserID
	Role    domain.Role
	TokenID string
}

// ActorResolver loads the current role and candidate link for a user.
// The stored user record is authoritative; the token only proves identity.
type ActorResolver interface {
	ResolveActor(ctx context.Context, userID domain.UserID) (domain.Actor, error)
}

// RequireAuth rejects requests without a valid bearer token and stores the
// resolved actor in the request context.
func RequireAuth(validator JWTValidator, resolver ActorResolver, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := requestcontext.RequestID(ctx)

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token", "request_id", requestID)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Missing or invalid Authorization header"))
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestID,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Invalid or expired token"))
				return
			}

			actor, err := resolver.ResolveActor(ctx, claims.UserID)
			if err != nil {
				if dErrors.HasCode(err, dErrors.CodeNotFound) {
					logger.WarnContext(ctx, "unauthorized access - unknown user",
						"user_id", claims.UserID,
						"request_id", requestID,
					)
					httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Unknown user"))
					return
				}
				logger.ErrorContext(ctx, "failed to resolve actor",
					"error", err,
					"user_id", claims.UserID,
					"request_id", requestID,
				)
				httputil.WriteError(w, err)
				return
			}

			ctx = requestcontext.WithUserID(ctx, actor.UserID)
			ctx = requestcontext.WithActor(ctx, actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
