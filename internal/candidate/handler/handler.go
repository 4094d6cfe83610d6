package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hiretrack/internal/candidate/models"
	"hiretrack/pkg/domain"
	"hiretrack/pkg/platform/httputil"
)

type Service interface {
	Create(ctx context.Context, actor domain.Actor, req *models.CreateCandidateRequest) (*models.Candidate, error)
	Get(ctx context.Context, actor domain.Actor, id domain.CandidateID) (*models.Candidate, error)
	List(ctx context.Context, actor domain.Actor) ([]*models.Candidate, error)
	UpdateProfile(ctx context.Context, actor domain.Actor, id domain.CandidateID, req *models.UpdateProfileRequest) (*models.Candidate, error)
	AttachResume(ctx context.Context, actor domain.Actor, id domain.CandidateID, ref string) (*models.Candidate, error)
	DetachResume(ctx context.Context, actor domain.Actor, id domain.CandidateID) (*models.Candidate, error)
	Delete(ctx context.Context, actor domain.Actor, id domain.CandidateID) error
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/candidates", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/{id}", h.handleGet)
		r.Patch("/{id}", h.handleUpdate)
		r.Delete("/{id}", h.handleDelete)
		r.Put("/{id}/resume", h.handleAttachResume)
		r.Delete("/{id}/resume", h.handleDetachResume)
	})
}

// candidateListResponse wraps list results so the envelope can grow.
type candidateListResponse struct {
	Candidates []*models.Candidate `json:"candidates"`
	Count      int                 `json:"count"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	actor, err := httputil.RequireActor(r)
	if err != nil {
		h.fail(w, r, "actor missing from context", err)
		return
	}
	list, err := h.service.List(r.Context(), actor)
	if err != nil {
		h.fail(w, r, "failed to list candidates", err)
		return
	}
	if list == nil {
		list = []*models.Candidate{}
	}
	httputil.WriteJSON(w, http.StatusOK, candidateListResponse{Candidates: list, Count: len(list)})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	actor, err := httputil.RequireActor(r)
	if err != nil {
		h.fail(w, r, "actor missing from context", err)
		return
	}
	var req models.CreateCandidateRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, "invalid create candidate request", err)
		return
	}
	c, err := h.service.Create(r.Context(), actor, &req)
	if err != nil {
		h.fail(w, r, "failed to create candidate", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, c)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.target(w, r)
	if !ok {
		return
	}
	c, err := h.service.Get(r.Context(), actor, id)
	if err != nil {
		h.fail(w, r, "failed to get candidate", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.target(w, r)
	if !ok {
		return
	}
	var req models.UpdateProfileRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, "invalid update profile request", err)
		return
	}
	c, err := h.service.UpdateProfile(r.Context(), actor, id, &req)
	if err != nil {
		h.fail(w, r, "failed to update candidate", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.target(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), actor, id); err != nil {
		h.fail(w, r, "failed to delete candidate", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleAttachResume(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.target(w, r)
	if !ok {
		return
	}
	var req models.AttachResumeRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, "invalid resume request", err)
		return
	}
	c, err := h.service.AttachResume(r.Context(), actor, id, req.ResumeRef)
	if err != nil {
		h.fail(w, r, "failed to attach resume", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) handleDetachResume(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.target(w, r)
	if !ok {
		return
	}
	c, err := h.service.DetachResume(r.Context(), actor, id)
	if err != nil {
		h.fail(w, r, "failed to detach resume", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, c)
}

// target resolves the actor and the {id} path parameter, writing the error
// response itself when either is missing.
func (h *Handler) target(w http.ResponseWriter, r *http.Request) (domain.Actor, domain.CandidateID, bool) {
	actor, err := httputil.RequireActor(r)
	if err != nil {
		h.fail(w, r, "actor missing from context", err)
		return domain.Actor{}, 0, false
	}
	id, err := domain.ParseCandidateID(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "invalid candidate id", err)
		return domain.Actor{}, 0, false
	}
	return actor, id, true
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	httputil.Fail(w, r, h.logger, msg, err)
}
