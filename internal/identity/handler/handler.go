package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hiretrack/internal/identity/models"
	"hiretrack/pkg/domain"
	"hiretrack/pkg/platform/httputil"
)

// Service defines the identity operations used by the HTTP layer.
type Service interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.TokenResponse, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.TokenResponse, error)
	Me(ctx context.Context, actor domain.Actor) (*models.UserResponse, error)
	LinkCandidate(ctx context.Context, actor domain.Actor, userID domain.UserID, candidateID domain.CandidateID) (*models.UserResponse, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterPublic mounts the unauthenticated routes.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Post("/auth/register", h.handleRegister)
	r.Post("/auth/login", h.handleLogin)
}

// Register mounts routes that need an authenticated actor.
func (h *Handler) Register(r chi.Router) {
	r.Get("/auth/me", h.handleMe)
	r.Post("/admin/users/{id}/candidate", h.handleLinkCandidate)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, "invalid register request", err)
		return
	}
	resp, err := h.service.Register(r.Context(), &req)
	if err != nil {
		h.fail(w, r, "registration failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, resp)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, "invalid login request", err)
		return
	}
	resp, err := h.service.Login(r.Context(), &req)
	if err != nil {
		h.fail(w, r, "login failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	actor, err := httputil.RequireActor(r)
	if err != nil {
		h.fail(w, r, "actor missing from context", err)
		return
	}
	resp, err := h.service.Me(r.Context(), actor)
	if err != nil {
		h.fail(w, r, "failed to load current user", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"user": resp})
}

func (h *Handler) handleLinkCandidate(w http.ResponseWriter, r *http.Request) {
	actor, err := httputil.RequireActor(r)
	if err != nil {
		h.fail(w, r, "actor missing from context", err)
		return
	}
	userID, err := domain.ParseUserID(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "invalid user id", err)
		return
	}
	var req models.LinkCandidateRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, "invalid link request", err)
		return
	}
	if err := req.Validate(); err != nil {
		h.fail(w, r, "invalid link request", err)
		return
	}
	resp, err := h.service.LinkCandidate(r.Context(), actor, userID, domain.CandidateID(req.CandidateID))
	if err != nil {
		h.fail(w, r, "failed to link candidate", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"user": resp})
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	httputil.Fail(w, r, h.logger, msg, err)
}
