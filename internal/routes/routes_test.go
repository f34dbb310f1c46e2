package routes_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"gitlab.com/contesa/contesa/internal/adapters"
	"gitlab.com/contesa/contesa/internal/domain"
	"gitlab.com/contesa/contesa/internal/models"
	"gitlab.com/contesa/contesa/internal/routes"
)

type testServer struct {
	*httptest.Server
	mem *adapters.Memory
}

func newTestServer(t *testing.T) *testServer {
	logger := zerolog.Nop()
	mem := adapters.NewMemory()
	gate := domain.NewGate(domain.DefaultPolicy())
	audit := domain.NewAuditRecorder(gate, mem, logger)
	ledger := domain.NewRestrictionLedger(gate, mem, logger)
	outbox := domain.NewOutbox(mem, logger, 16)
	outbox.Start()
	t.Cleanup(outbox.Close)
	engine := domain.NewEngine(gate, mem, ledger, audit, outbox, logger)
	users := domain.NewUserService(gate, mem, audit, logger)
	reports := domain.NewReportManager(gate, mem, mem, audit, logger)
	bulk := domain.NewBulkCoordinator(engine, users, mem, audit, logger)

	rt := routes.New(logger, mem, engine, bulk, reports, users, audit, ledger, mem)
	srv := httptest.NewServer(routes.NewRouter(logger, rt))
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, mem: mem}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *http.Response {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, s.URL+path, &buf)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

// signup registers a user and returns a session token. The first user on a
// fresh store becomes the owner.
func (s *testServer) signup(t *testing.T, email string) string {
	resp := s.do(t, http.MethodPost, "/signup", "", map[string]string{
		"name":     "tester",
		"email":    email,
		"password": "correct-horse-9",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp = s.do(t, http.MethodPost, "/login", "", map[string]string{
		"email":    email,
		"password": "correct-horse-9",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out["token"]
}

func TestAuthFlow(t *testing.T) {
	require := require.New(t)
	s := newTestServer(t)

	// Unauthenticated requests to protected routes get 401.
	resp := s.do(t, http.MethodGet, "/moderation/reports", "", nil)
	require.Equal(http.StatusUnauthorized, resp.StatusCode)

	token := s.signup(t, "owner@example.com")
	resp = s.do(t, http.MethodGet, "/moderation/reports", token, nil)
	require.Equal(http.StatusOK, resp.StatusCode)

	resp = s.do(t, http.MethodPost, "/signout", token, nil)
	require.Equal(http.StatusNoContent, resp.StatusCode)
	resp = s.do(t, http.MethodGet, "/moderation/reports", token, nil)
	require.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func TestStatusEndpoint(t *testing.T) {
	require := require.New(t)
	s := newTestServer(t)
	owner := s.signup(t, "owner@example.com")
	s.mem.SeedContent(models.ContentRef{Type: models.ContentDiscussion, ID: 50}, models.Content{AuthorID: 1})

	resp := s.do(t, http.MethodPost, "/content/discussion/50/status", owner, map[string]string{
		"status": "quarantined",
		"reason": "spam wave",
	})
	require.Equal(http.StatusNoContent, resp.StatusCode)

	// Missing reason is a 400.
	resp = s.do(t, http.MethodPost, "/content/discussion/50/status", owner, map[string]string{
		"status": "removed",
	})
	require.Equal(http.StatusBadRequest, resp.StatusCode)

	// Plain users get a 403.
	user := s.signup(t, "user@example.com")
	resp = s.do(t, http.MethodPost, "/content/discussion/50/status", user, map[string]string{
		"status": "approved",
	})
	require.Equal(http.StatusForbidden, resp.StatusCode)

	resp = s.do(t, http.MethodPost, "/content/discussion/999/status", owner, map[string]string{
		"status": "removed", "reason": "gone",
	})
	require.Equal(http.StatusNotFound, resp.StatusCode)
}

func TestReportEndpoint(t *testing.T) {
	require := require.New(t)
	s := newTestServer(t)
	owner := s.signup(t, "owner@example.com")
	user := s.signup(t, "user@example.com")
	s.mem.SeedContent(models.ContentRef{Type: models.ContentComment, ID: 70}, models.Content{AuthorID: 1})

	resp := s.do(t, http.MethodPost, "/content/comment/70/report", user, map[string]string{
		"reason": "spam",
	})
	require.Equal(http.StatusCreated, resp.StatusCode)
	var report models.Report
	require.NoError(json.NewDecoder(resp.Body).Decode(&report))
	require.NotZero(report.ID)

	resp = s.do(t, http.MethodPut, fmt.Sprintf("/moderation/reports/%d/status", report.ID), owner, map[string]string{
		"status": "resolved",
	})
	require.Equal(http.StatusOK, resp.StatusCode)
	var resolved models.Report
	require.NoError(json.NewDecoder(resp.Body).Decode(&resolved))
	require.Equal(models.ReportResolved, resolved.Status)
	require.NotNil(resolved.ResolvedBy)
}

func TestBulkStatusEndpoint(t *testing.T) {
	require := require.New(t)
	s := newTestServer(t)
	owner := s.signup(t, "owner@example.com")
	for _, id := range []int{80, 81} {
		s.mem.SeedContent(models.ContentRef{Type: models.ContentDebate, ID: id}, models.Content{AuthorID: 1})
	}

	resp := s.do(t, http.MethodPost, "/moderation/bulk/status", owner, map[string]interface{}{
		"content_type": "debate",
		"ids":          []int{80, 81, 82},
		"status":       "removed",
		"reason":       "coordinated spam",
	})
	require.Equal(http.StatusOK, resp.StatusCode)
	var res domain.BulkResult
	require.NoError(json.NewDecoder(resp.Body).Decode(&res))
	require.Equal(2, res.Processed)
	require.Len(res.Failed, 1)
	require.Equal(82, res.Failed[0].ID)
}
