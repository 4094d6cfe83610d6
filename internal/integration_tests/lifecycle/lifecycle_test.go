package lifecycle

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appmodels "hiretrack/internal/application/models"
	"hiretrack/internal/audit"
	"hiretrack/internal/bootstrap"
	candidatemodels "hiretrack/internal/candidate/models"
	identitymodels "hiretrack/internal/identity/models"
	jobmodels "hiretrack/internal/job/models"
	notificationmodels "hiretrack/internal/notification/models"
	"hiretrack/internal/platform/config"
	"hiretrack/internal/platform/metrics"
	"hiretrack/pkg/testutil"
)

type harness struct {
	t      *testing.T
	router http.Handler
	sink   *audit.MemorySink
}

func newHarness(t *testing.T) *harness {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := prometheus.NewRegistry()
	sink := audit.NewMemorySink()
	opts := bootstrap.Options{
		Logger:  logger,
		Metrics: metrics.New(reg),
		Audit:   audit.NewSyncPublisher(sink),
	}
	services := bootstrap.NewServices(bootstrap.NewInMemoryStores(), config.AuthConfig{
		JWTSigningKey:  "integration-key",
		Issuer:         "hiretrack",
		AccessTokenTTL: time.Hour,
	}, opts)
	router := services.Router(bootstrap.RouterConfig{
		Server:   config.Server{RequestTimeout: 5 * time.Second},
		Gatherer: reg,
	}, opts)
	return &harness{t: t, router: router, sink: sink}
}

func (h *harness) do(method, path, token string, body any) *httptest.ResponseRecorder {
	h.t.Helper()
	req := testutil.NewJSONRequest(h.t, method, path, body)
	if token != "" {
		testutil.WithBearer(req, token)
	}
	return testutil.DoRequest(h.router, req)
}

func (h *harness) register(username, role string, candidateID *int64) string {
	h.t.Helper()
	rr := h.do(http.MethodPost, "/auth/register", "", map[string]any{
		"username":     username,
		"password":     username + "-secret",
		"email":        username + "@example.com",
		"role":         role,
		"candidate_id": candidateID,
	})
	require.Equal(h.t, http.StatusCreated, rr.Code, rr.Body.String())
	return testutil.UnmarshalResponse[identitymodels.TokenResponse](h.t, rr).AccessToken
}

func (h *harness) feed(token string) *notificationmodels.FeedResponse {
	h.t.Helper()
	rr := h.do(http.MethodGet, "/notifications", token, nil)
	require.Equal(h.t, http.StatusOK, rr.Code, rr.Body.String())
	return testutil.UnmarshalResponse[notificationmodels.FeedResponse](h.t, rr)
}

func TestApplicationLifecycleOverHTTP(t *testing.T) {
	h := newHarness(t)

	hr := h.register("hr", "HR", nil)
	manager := h.register("manager", "MANAGER", nil)

	rr := h.do(http.MethodPost, "/candidates", hr, map[string]any{
		"first_name": "Ada",
		"last_name":  "Lovelace",
		"email":      "ada@example.com",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	ada := testutil.UnmarshalResponse[candidatemodels.Candidate](t, rr)
	adaID := int64(ada.ID)
	candidate := h.register("ada", "CANDIDATE", &adaID)
	unlinked := h.register("drifter", "CANDIDATE", nil)

	rr = h.do(http.MethodPost, "/jobs", hr, map[string]any{"title": "Backend Engineer", "department": "Engineering"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	job := testutil.UnmarshalResponse[jobmodels.Job](t, rr)

	rr = h.do(http.MethodPost, "/jobs", candidate, map[string]any{"title": "Sneaky"})
	testutil.AssertStatusAndError(t, rr, http.StatusForbidden, "forbidden")

	rr = h.do(http.MethodPost, "/applications", unlinked, map[string]any{"job_id": job.ID})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	testutil.AssertReason(t, rr, "unlinked_profile")

	rr = h.do(http.MethodPost, "/applications", candidate, map[string]any{"job_id": job.ID, "cover_letter": "Hello"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	app := testutil.UnmarshalResponse[appmodels.View](t, rr)
	assert.Equal(t, appmodels.StatusReceived, app.Status)
	assert.Equal(t, "Ada Lovelace", app.CandidateName)

	rr = h.do(http.MethodGet, "/applications?department=engineering", manager, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, testutil.UnmarshalResponse[appmodels.ListResponse](t, rr).Count)

	statusPath := fmt.Sprintf("/applications/%d/status", app.ID)
	rr = h.do(http.MethodPatch, statusPath, candidate, map[string]any{"status": "Interview"})
	testutil.AssertStatusAndError(t, rr, http.StatusForbidden, "forbidden")

	rr = h.do(http.MethodPatch, statusPath, manager, map[string]any{"status": "Interview"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	testutil.AssertJSONContains(t, rr, "status", "Interview")

	feed := h.feed(candidate)
	require.Len(t, feed.Notifications, 3)
	assert.Equal(t, 3, feed.UnreadCount)
	assert.Equal(t, notificationmodels.TypeInterview, feed.Notifications[0].Type)
	assert.Equal(t, notificationmodels.TypeNewJob, feed.Notifications[2].Type)

	rr = h.do(http.MethodPost, fmt.Sprintf("/applications/%d/withdraw", app.ID), candidate, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	testutil.AssertJSONContains(t, rr, "status", "Withdrawn")

	rr = h.do(http.MethodPatch, statusPath, hr, map[string]any{"status": "Offer Extended"})
	require.Equal(t, http.StatusConflict, rr.Code)
	testutil.AssertReason(t, rr, "invalid_transition")

	rr = h.do(http.MethodPost, "/notifications/read-all", candidate, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	testutil.AssertJSONContains(t, rr, "updated", float64(4))

	rr = h.do(http.MethodGet, "/notifications/unread-count", candidate, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	testutil.AssertJSONContains(t, rr, "unread_count", float64(0))

	var actions []audit.Action
	for _, e := range h.sink.Events() {
		actions = append(actions, e.Action)
	}
	assert.Contains(t, actions, audit.EventApplicationCreated)
	assert.Contains(t, actions, audit.EventApplicationStatusChange)
	assert.Contains(t, actions, audit.EventApplicationWithdrawn)
}

func TestCandidateCannotSeeOtherCandidates(t *testing.T) {
	h := newHarness(t)
	hr := h.register("hr", "HR", nil)

	ids := make([]int64, 0, 2)
	for _, email := range []string{"a@example.com", "b@example.com"} {
		rr := h.do(http.MethodPost, "/candidates", hr, map[string]any{
			"first_name": "Test", "last_name": "Person", "email": email,
		})
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
		ids = append(ids, int64(testutil.UnmarshalResponse[candidatemodels.Candidate](t, rr).ID))
	}
	token := h.register("a", "CANDIDATE", &ids[0])

	rr := h.do(http.MethodGet, fmt.Sprintf("/candidates/%d", ids[1]), token, nil)
	testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")

	rr = h.do(http.MethodGet, fmt.Sprintf("/applications?candidate_id=%d", ids[1]), token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 0, testutil.UnmarshalResponse[appmodels.ListResponse](t, rr).Count)

	rr = h.do(http.MethodGet, "/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	me := testutil.UnmarshalResponse[struct {
		User identitymodels.UserResponse `json:"user"`
	}](t, rr)
	assert.Equal(t, "a", me.User.Username)
	require.NotNil(t, me.User.CandidateID)
	assert.Equal(t, ids[0], int64(*me.User.CandidateID))
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	h := newHarness(t)
	for _, path := range []string{"/applications", "/jobs", "/notifications", "/candidates"} {
		rr := h.do(http.MethodGet, path, "", nil)
		testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")
	}
	rr := h.do(http.MethodGet, "/health", "", nil)
	testutil.AssertStatusOK(t, rr)
}
