package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"hiretrack/internal/application/models"
	"hiretrack/pkg/domain"
	"hiretrack/pkg/platform/httputil"
)

type Service interface {
	List(ctx context.Context, actor domain.Actor, q models.ListFilter) ([]*models.View, error)
	Create(ctx context.Context, actor domain.Actor, req *models.CreateApplicationRequest) (*models.View, error)
	Get(ctx context.Context, actor domain.Actor, id domain.ApplicationID) (*models.View, error)
	SetStatus(ctx context.Context, actor domain.Actor, id domain.ApplicationID, status string) (*models.View, error)
	Withdraw(ctx context.Context, actor domain.Actor, id domain.ApplicationID) (*models.View, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/applications", h.handleList)
	r.Post("/applications", h.handleCreate)
	r.Get("/applications/{id}", h.handleGet)
	r.Patch("/applications/{id}/status", h.handleSetStatus)
	r.Post("/applications/{id}/withdraw", h.handleWithdraw)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	actor, err := httputil.RequireActor(r)
	if err != nil {
		h.fail(w, r, "actor missing from context", err)
		return
	}
	q := r.URL.Query()
	filter := models.ListFilter{
		Status:     strings.TrimSpace(q.Get("status")),
		Department: strings.TrimSpace(q.Get("department")),
	}
	if raw := q.Get("candidate_id"); raw != "" {
		cid, err := domain.ParseCandidateID(raw)
		if err != nil {
			h.fail(w, r, "invalid candidate_id filter", err)
			return
		}
		filter.CandidateID = &cid
	}

	views, err := h.service.List(r.Context(), actor, filter)
	if err != nil {
		h.fail(w, r, "failed to list applications", err)
		return
	}
	if views == nil {
		views = []*models.View{}
	}
	httputil.WriteJSON(w, http.StatusOK, models.ListResponse{Applications: views, Count: len(views)})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	actor, err := httputil.RequireActor(r)
	if err != nil {
		h.fail(w, r, "actor missing from context", err)
		return
	}
	var req models.CreateApplicationRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, "invalid create application request", err)
		return
	}
	view, err := h.service.Create(r.Context(), actor, &req)
	if err != nil {
		h.fail(w, r, "failed to create application", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, view)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.target(w, r)
	if !ok {
		return
	}
	view, err := h.service.Get(r.Context(), actor, id)
	if err != nil {
		h.fail(w, r, "failed to get application", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.target(w, r)
	if !ok {
		return
	}
	var req models.SetStatusRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, "invalid set status request", err)
		return
	}
	view, err := h.service.SetStatus(r.Context(), actor, id, req.Status)
	if err != nil {
		h.fail(w, r, "failed to set application status", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.target(w, r)
	if !ok {
		return
	}
	view, err := h.service.Withdraw(r.Context(), actor, id)
	if err != nil {
		h.fail(w, r, "failed to withdraw application", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) target(w http.ResponseWriter, r *http.Request) (domain.Actor, domain.ApplicationID, bool) {
	actor, err := httputil.RequireActor(r)
	if err != nil {
		h.fail(w, r, "actor missing from context", err)
		return domain.Actor{}, 0, false
	}
	id, err := domain.ParseApplicationID(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "invalid application id", err)
		return domain.Actor{}, 0, false
	}
	return actor, id, true
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	httputil.Fail(w, r, h.logger, msg, err)
}
