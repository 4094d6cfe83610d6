package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hiretrack/internal/notification/models"
	"hiretrack/pkg/domain"
	"hiretrack/pkg/platform/httputil"
)

type Service interface {
	List(ctx context.Context, actor domain.Actor, unreadOnly bool) (*models.FeedResponse, error)
	MarkRead(ctx context.Context, actor domain.Actor, id domain.NotificationID) (*models.Notification, error)
	MarkAllRead(ctx context.Context, actor domain.Actor) (int, error)
	UnreadCount(ctx context.Context, actor domain.Actor) (int, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/notifications", h.handleList)
	r.Get("/notifications/unread-count", h.handleUnreadCount)
	r.Post("/notifications/read-all", h.handleMarkAllRead)
	r.Post("/notifications/{id}/read", h.handleMarkRead)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	actor, err := httputil.RequireActor(r)
	if err != nil {
		h.fail(w, r, "actor missing from context", err)
		return
	}
	unreadOnly, err := httputil.QueryBool(r, "unread_only")
	if err != nil {
		h.fail(w, r, "invalid unread_only", err)
		return
	}
	feed, err := h.service.List(r.Context(), actor, unreadOnly)
	if err != nil {
		h.fail(w, r, "failed to list notifications", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, feed)
}

func (h *Handler) handleUnreadCount(w http.ResponseWriter, r *http.Request) {
	actor, err := httputil.RequireActor(r)
	if err != nil {
		h.fail(w, r, "actor missing from context", err)
		return
	}
	count, err := h.service.UnreadCount(r.Context(), actor)
	if err != nil {
		h.fail(w, r, "failed to count unread notifications", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.UnreadCountResponse{UnreadCount: count})
}

func (h *Handler) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	actor, err := httputil.RequireActor(r)
	if err != nil {
		h.fail(w, r, "actor missing from context", err)
		return
	}
	id, err := domain.ParseNotificationID(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "invalid notification id", err)
		return
	}
	n, err := h.service.MarkRead(r.Context(), actor, id)
	if err != nil {
		h.fail(w, r, "failed to mark notification read", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, n)
}

func (h *Handler) handleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	actor, err := httputil.RequireActor(r)
	if err != nil {
		h.fail(w, r, "actor missing from context", err)
		return
	}
	n, err := h.service.MarkAllRead(r.Context(), actor)
	if err != nil {
		h.fail(w, r, "failed to mark notifications read", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.MarkAllReadResponse{Updated: n})
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	httputil.Fail(w, r, h.logger, msg, err)
}
