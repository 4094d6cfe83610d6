// Package httputil holds the JSON envelope helpers shared by every handler.
package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"hiretrack/pkg/domain"
	dErrors "hiretrack/pkg/domain-errors"
	"hiretrack/pkg/requestcontext"
)

// maxBodyBytes bounds request bodies decoded by DecodeJSON.
const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
	Reason           string `json:"reason,omitempty"`
}

// StatusFor maps a domain error code to an HTTP status.
func StatusFor(code dErrors.Code) int {
	switch code {
	case dErrors.CodeValidation, dErrors.CodeBadRequest, dErrors.CodeInvalidInput, dErrors.CodeInvariantViolation:
		return http.StatusBadRequest
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeForbidden:
		return http.StatusForbidden
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeConflict:
		return http.StatusConflict
	case dErrors.CodeRateLimited:
		return http.StatusTooManyRequests
	case dErrors.CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// WriteError writes err as a JSON error envelope. Errors without a domain
// code, and internal errors, are reported without a description.
func WriteError(w http.ResponseWriter, err error) {
	resp := errorResponse{Error: string(dErrors.CodeInternal)}
	status := http.StatusInternalServerError
	if de, ok := dErrors.As(err); ok {
		status = StatusFor(de.Code)
		resp.Error = string(de.Code)
		resp.Reason = string(de.Reason)
		if status != http.StatusInternalServerError {
			resp.ErrorDescription = de.Message
		} else {
			resp.Error = string(dErrors.CodeInternal)
		}
	}
	WriteJSON(w, status, resp)
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// DecodeJSON decodes the request body into dst. Unknown fields are rejected
// and an empty body is a bad request.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return dErrors.New(dErrors.CodeBadRequest, "request body is required")
		}
		return dErrors.New(dErrors.CodeBadRequest, "invalid request body")
	}
	return nil
}

// RequireActor returns the authenticated actor stored by the auth middleware.
// A missing actor means the route was mounted without RequireAuth.
func RequireActor(r *http.Request) (domain.Actor, error) {
	actor, ok := requestcontext.Actor(r.Context())
	if !ok {
		return domain.Actor{}, dErrors.New(dErrors.CodeInternal, "authentication context error")
	}
	return actor, nil
}

// QueryBool parses a boolean query parameter. Absent means false.
func QueryBool(r *http.Request, name string) (bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, dErrors.New(dErrors.CodeValidation, name+" must be a boolean")
	}
	return v, nil
}

// Fail logs err with the request id and writes the error envelope. Internal
// and untyped errors log at error level, client errors at warn.
func Fail(w http.ResponseWriter, r *http.Request, logger *slog.Logger, msg string, err error) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	de, ok := dErrors.As(err)
	if !ok || de.Code == dErrors.CodeInternal {
		logger.ErrorContext(ctx, msg, "error", err, "request_id", requestID)
	} else {
		logger.WarnContext(ctx, msg, "error", err, "request_id", requestID)
	}
	WriteError(w, err)
}
