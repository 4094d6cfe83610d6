package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hiretrack/internal/job/models"
	"hiretrack/pkg/domain"
	"hiretrack/pkg/platform/httputil"
)

type Service interface {
	Post(ctx context.Context, actor domain.Actor, req *models.PostJobRequest) (*models.Job, error)
	Get(ctx context.Context, actor domain.Actor, id domain.JobID) (*models.Job, error)
	List(ctx context.Context, actor domain.Actor, department string) ([]*models.Job, error)
	Update(ctx context.Context, actor domain.Actor, id domain.JobID, req *models.UpdateJobRequest) (*models.Job, error)
	Delete(ctx context.Context, actor domain.Actor, id domain.JobID) error
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/jobs", h.handleList)
	r.Post("/jobs", h.handlePost)
	r.Get("/jobs/{id}", h.handleGet)
	r.Patch("/jobs/{id}", h.handleUpdate)
	r.Delete("/jobs/{id}", h.handleDelete)
}

type jobListResponse struct {
	Jobs  []*models.Job `json:"jobs"`
	Count int           `json:"count"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	actor, err := httputil.RequireActor(r)
	if err != nil {
		h.fail(w, r, "actor missing from context", err)
		return
	}
	jobs, err := h.service.List(r.Context(), actor, r.URL.Query().Get("department"))
	if err != nil {
		h.fail(w, r, "failed to list jobs", err)
		return
	}
	if jobs == nil {
		jobs = []*models.Job{}
	}
	httputil.WriteJSON(w, http.StatusOK, jobListResponse{Jobs: jobs, Count: len(jobs)})
}

func (h *Handler) handlePost(w http.ResponseWriter, r *http.Request) {
	actor, err := httputil.RequireActor(r)
	if err != nil {
		h.fail(w, r, "actor missing from context", err)
		return
	}
	var req models.PostJobRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, "invalid post job request", err)
		return
	}
	job, err := h.service.Post(r.Context(), actor, &req)
	if err != nil {
		h.fail(w, r, "failed to post job", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, job)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	actor, err := httputil.RequireActor(r)
	if err != nil {
		h.fail(w, r, "actor missing from context", err)
		return
	}
	id, err := domain.ParseJobID(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "invalid job id", err)
		return
	}
	job, err := h.service.Get(r.Context(), actor, id)
	if err != nil {
		h.fail(w, r, "failed to get job", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, job)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	actor, err := httputil.RequireActor(r)
	if err != nil {
		h.fail(w, r, "actor missing from context", err)
		return
	}
	id, err := domain.ParseJobID(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "invalid job id", err)
		return
	}
	var req models.UpdateJobRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, "invalid update job request", err)
		return
	}
	job, err := h.service.Update(r.Context(), actor, id, &req)
	if err != nil {
		h.fail(w, r, "failed to update job", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, job)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	actor, err := httputil.RequireActor(r)
	if err != nil {
		h.fail(w, r, "actor missing from context", err)
		return
	}
	id, err := domain.ParseJobID(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "invalid job id", err)
		return
	}
	if err := h.service.Delete(r.Context(), actor, id); err != nil {
		h.fail(w, r, "failed to delete job", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	httputil.Fail(w, r, h.logger, msg, err)
}
