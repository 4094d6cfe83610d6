package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	dErrors "hiretrack/pkg/domain-errors"
)

func TestWriteError(t *testing.T) {
	t.Run("internal error omits description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeInternal, "db failed"))

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
		}

		var body map[string]string
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body["error"] != "internal_error" {
			t.Fatalf("expected error code internal_error, got %q", body["error"])
		}
		if _, ok := body["error_description"]; ok {
			t.Fatalf("expected error_description to be omitted for internal errors")
		}
	})

	t.Run("plain errors are internal", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, errors.New("boom"))
		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", w.Code)
		}
	})

	t.Run("conflict includes reason", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.NewWithReason(dErrors.CodeConflict, dErrors.ReasonAlreadyTerminal, "application already withdrawn"))

		if w.Code != http.StatusConflict {
			t.Fatalf("expected status %d, got %d", http.StatusConflict, w.Code)
		}
		var body map[string]string
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body["reason"] != "already_terminal" {
			t.Fatalf("expected reason already_terminal, got %q", body["reason"])
		}
		if body["error_description"] != "application already withdrawn" {
			t.Fatalf("expected description to be returned for conflict")
		}
	})
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Title string `json:"title"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":"Engineer"}`))
	if err := DecodeJSON(req, &dst); err != nil || dst.Title != "Engineer" {
		t.Fatalf("expected decode to succeed, got %v", err)
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"unknown":1}`))
	if err := DecodeJSON(req, &dst); !dErrors.HasCode(err, dErrors.CodeBadRequest) {
		t.Fatalf("expected bad request for unknown field, got %v", err)
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	if err := DecodeJSON(req, &dst); !dErrors.HasCode(err, dErrors.CodeBadRequest) {
		t.Fatalf("expected bad request for empty body, got %v", err)
	}
}

func TestStatusForRateLimited(t *testing.T) {
	if got := StatusFor(dErrors.CodeRateLimited); got != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", got)
	}
}
