package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Behnamfe76/contacts-directory/internal/api/http/handlers"
	"github.com/Behnamfe76/contacts-directory/internal/auth"
	"github.com/Behnamfe76/contacts-directory/internal/config"
	"github.com/Behnamfe76/contacts-directory/internal/domain"
	"github.com/Behnamfe76/contacts-directory/internal/events"
	"github.com/Behnamfe76/contacts-directory/internal/observability"
	"github.com/Behnamfe76/contacts-directory/internal/service"
	"github.com/Behnamfe76/contacts-directory/internal/testutil"
	"github.com/Behnamfe76/contacts-directory/pkg/util/validation"
)

const strongPassword = "Secr3t!x"

type testServer struct {
	app    *fiber.App
	users  *testutil.UserStore
	cache  *auth.MemoryTokenCache
	tokens *auth.TokenManager
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

func newTestServer(t *testing.T, deps map[string]handlers.Pinger) *testServer {
	t.Helper()
	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	users := testutil.NewUserStore()
	contacts := testutil.NewContactStore()
	cache := auth.NewMemoryTokenCache()
	tokens := auth.NewTokenManager([]byte("0123456789abcdef0123456789abcdef"), 24*time.Hour)
	hasher := auth.PlainHasher{}
	validator := validation.New()

	authSvc := service.NewAuthService(config.AuthConfig{}, service.AuthDependencies{
		UserRepo: users, Tokens: tokens, Cache: cache, Hasher: hasher, Dispatcher: dispatcher, Metrics: metrics, Logger: logger,
	})
	service.NewTokenRevocation(dispatcher, authSvc, logger).RegisterHandlers()

	app := NewApp("contacts-directory-test", logger, metrics)
	RegisterMiddlewares(app, logger, metrics, 5*time.Second)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("contacts-directory", "test", deps),
		Token:          handlers.NewTokenHandler(authSvc),
		Users:          handlers.NewUsersHandler(service.NewUserService(users, hasher, dispatcher, logger), validator),
		Contacts:       handlers.NewContactsHandler(service.NewContactService(contacts, dispatcher, logger), validator),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, logger),
		Metrics:        metrics,
	})

	return &testServer{app: app, users: users, cache: cache, tokens: tokens}
}

func (s *testServer) seedUser(t *testing.T, username string, role domain.Role) int64 {
	t.Helper()
	u := &domain.User{Username: username, Password: strongPassword, Role: role, Active: true}
	require.NoError(t, s.users.Create(context.Background(), u))
	return u.ID
}

func (s *testServer) login(t *testing.T, username string) string {
	t.Helper()
	resp := s.do(t, nethttp.MethodPost, "/api/token", "", map[string]string{"username": username, "password": strongPassword})
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	var body struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	decode(t, resp, &body)
	require.NotEmpty(t, body.Data.Token)
	return body.Data.Token
}

func (s *testServer) do(t *testing.T, method, path, token string, payload any) *nethttp.Response {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *nethttp.Response, dst any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
}

type errorEnvelope struct {
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func TestToken_IssueAndReuse(t *testing.T) {
	s := newTestServer(t, nil)
	s.seedUser(t, "alice", domain.RoleSupervisor)

	first := s.login(t, "alice")
	second := s.login(t, "alice")
	assert.Equal(t, first, second)

	v, err := s.tokens.Verify(first)
	require.NoError(t, err)
	assert.Equal(t, "alice", v.Subject)
	assert.Equal(t, domain.RoleSupervisor, v.Role)
}

func TestToken_InvalidCredentials(t *testing.T) {
	s := newTestServer(t, nil)
	s.seedUser(t, "alice", domain.RoleCommonUser)

	resp := s.do(t, nethttp.MethodPost, "/api/token", "", map[string]string{"username": "alice", "password": "wrong"})
	assert.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode)
	var env errorEnvelope
	decode(t, resp, &env)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)

	resp = s.do(t, nethttp.MethodPost, "/api/token", "", nil)
	assert.Equal(t, nethttp.StatusBadRequest, resp.StatusCode)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t, nil)

	for _, path := range []string{"/api/contacts", "/api/users", "/api/users/1", "/api/contacts/1"} {
		resp := s.do(t, nethttp.MethodGet, path, "", nil)
		assert.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode, path)
	}

	resp := s.do(t, nethttp.MethodGet, "/api/contacts", "not-a-token", nil)
	assert.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode)
}

func TestContacts_CRUD(t *testing.T) {
	s := newTestServer(t, nil)
	s.seedUser(t, "alice", domain.RoleCommonUser)
	token := s.login(t, "alice")

	resp := s.do(t, nethttp.MethodPost, "/api/contacts", token, map[string]string{
		"name": "Ana", "ddd": "11", "phone": "987654321", "email": "ana@example.com",
	})
	require.Equal(t, nethttp.StatusCreated, resp.StatusCode)
	assert.Equal(t, "/api/contacts/1", resp.Header.Get(fiber.HeaderLocation))

	resp = s.do(t, nethttp.MethodPost, "/api/contacts", token, map[string]string{
		"name": "Bruno", "ddd": "21", "phone": "87654321", "email": "bruno@example.com",
	})
	require.Equal(t, nethttp.StatusCreated, resp.StatusCode)

	var list struct {
		Data []map[string]any `json:"data"`
	}
	decode(t, s.do(t, nethttp.MethodGet, "/api/contacts?ddd=21", token, nil), &list)
	require.Len(t, list.Data, 1)
	assert.Equal(t, "Bruno", list.Data[0]["name"])

	resp = s.do(t, nethttp.MethodPut, "/api/contacts/1", token, map[string]any{
		"id": 1, "name": "Ana Maria", "ddd": "11", "phone": "987654321", "email": "ana@example.com",
	})
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	var one struct {
		Data map[string]any `json:"data"`
	}
	decode(t, resp, &one)
	assert.Equal(t, "Ana Maria", one.Data["name"])

	resp = s.do(t, nethttp.MethodPut, "/api/contacts/1", token, map[string]any{
		"id": 2, "name": "Ana", "ddd": "11", "phone": "987654321", "email": "ana@example.com",
	})
	assert.Equal(t, nethttp.StatusBadRequest, resp.StatusCode)

	resp = s.do(t, nethttp.MethodPut, "/api/contacts/99", token, map[string]any{
		"name": "Ghost", "ddd": "11", "phone": "987654321", "email": "ghost@example.com",
	})
	assert.Equal(t, nethttp.StatusNotFound, resp.StatusCode)

	assert.Equal(t, nethttp.StatusOK, s.do(t, nethttp.MethodDelete, "/api/contacts/1", token, nil).StatusCode)
	assert.Equal(t, nethttp.StatusNotFound, s.do(t, nethttp.MethodGet, "/api/contacts/1", token, nil).StatusCode)
	assert.Equal(t, nethttp.StatusNotFound, s.do(t, nethttp.MethodDelete, "/api/contacts/1", token, nil).StatusCode)
	assert.Equal(t, nethttp.StatusBadRequest, s.do(t, nethttp.MethodGet, "/api/contacts/abc", token, nil).StatusCode)
}

func TestContacts_Validation(t *testing.T) {
	s := newTestServer(t, nil)
	s.seedUser(t, "alice", domain.RoleCommonUser)
	token := s.login(t, "alice")

	resp := s.do(t, nethttp.MethodPost, "/api/contacts", token, map[string]string{
		"name": "", "ddd": "1", "phone": "12ab", "email": "not-an-email",
	})
	require.Equal(t, nethttp.StatusBadRequest, resp.StatusCode)
	var env errorEnvelope
	decode(t, resp, &env)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)
	for _, field := range []string{"name", "ddd", "phone", "email"} {
		assert.Contains(t, env.Error.Details, field)
	}

	resp = s.do(t, nethttp.MethodGet, "/api/contacts?ddd=1x", token, nil)
	assert.Equal(t, nethttp.StatusBadRequest, resp.StatusCode)
}

func TestUsers_Lifecycle(t *testing.T) {
	s := newTestServer(t, nil)
	s.seedUser(t, "root", domain.RoleAdministrator)
	adminToken := s.login(t, "root")

	resp := s.do(t, nethttp.MethodPost, "/api/users", "", map[string]any{"username": "alice", "password": strongPassword})
	require.Equal(t, nethttp.StatusCreated, resp.StatusCode)
	var created struct {
		Data map[string]any `json:"data"`
	}
	decode(t, resp, &created)
	assert.Equal(t, "CommonUser", created.Data["role"])
	assert.Equal(t, true, created.Data["active"])
	assert.NotContains(t, created.Data, "password")
	aliceID := int64(created.Data["id"].(float64))

	resp = s.do(t, nethttp.MethodPost, "/api/users", "", map[string]any{"username": "alice", "password": strongPassword})
	assert.Equal(t, nethttp.StatusConflict, resp.StatusCode)

	resp = s.do(t, nethttp.MethodPost, "/api/users", "", map[string]any{"username": "weak", "password": "password"})
	assert.Equal(t, nethttp.StatusBadRequest, resp.StatusCode)

	resp = s.do(t, nethttp.MethodPost, "/api/users", "", map[string]any{"username": "long", "password": "Aa1!" + strings.Repeat("x", 76)})
	assert.Equal(t, nethttp.StatusBadRequest, resp.StatusCode)

	resp = s.do(t, nethttp.MethodPost, "/api/users", "", map[string]any{"username": "eve", "password": strongPassword, "role": "Administrator"})
	assert.Equal(t, nethttp.StatusForbidden, resp.StatusCode)

	resp = s.do(t, nethttp.MethodPost, "/api/users", "", map[string]any{"username": "eve", "password": strongPassword, "role": "Overlord"})
	assert.Equal(t, nethttp.StatusBadRequest, resp.StatusCode)

	resp = s.do(t, nethttp.MethodPost, "/api/users", adminToken, map[string]any{"username": "sup", "password": strongPassword, "role": "Supervisor"})
	assert.Equal(t, nethttp.StatusCreated, resp.StatusCode)

	aliceToken := s.login(t, "alice")

	var list struct {
		Data []map[string]any `json:"data"`
	}
	decode(t, s.do(t, nethttp.MethodGet, "/api/users", aliceToken, nil), &list)
	assert.Len(t, list.Data, 3)

	path := "/api/users/" + strconv.FormatInt(aliceID, 10)
	assert.Equal(t, nethttp.StatusOK, s.do(t, nethttp.MethodGet, path, aliceToken, nil).StatusCode)
	assert.Equal(t, nethttp.StatusNotFound, s.do(t, nethttp.MethodGet, "/api/users/999", aliceToken, nil).StatusCode)

	resp = s.do(t, nethttp.MethodPut, path, aliceToken, map[string]any{"id": aliceID + 1, "username": "alice"})
	assert.Equal(t, nethttp.StatusBadRequest, resp.StatusCode)

	resp = s.do(t, nethttp.MethodPut, path, aliceToken, map[string]any{"id": aliceID, "username": "alice", "password": "Aa1!" + strings.Repeat("x", 76)})
	assert.Equal(t, nethttp.StatusBadRequest, resp.StatusCode)

	resp = s.do(t, nethttp.MethodPut, path, aliceToken, map[string]any{"id": aliceID, "username": "alice", "password": "N3wPass!!"})
	assert.Equal(t, nethttp.StatusNoContent, resp.StatusCode)

	resp = s.do(t, nethttp.MethodPut, "/api/users/999", adminToken, map[string]any{"id": 999, "username": "ghost"})
	assert.Equal(t, nethttp.StatusNotFound, resp.StatusCode)

	assert.Equal(t, nethttp.StatusForbidden, s.do(t, nethttp.MethodDelete, path, aliceToken, nil).StatusCode)
	assert.Equal(t, nethttp.StatusNoContent, s.do(t, nethttp.MethodDelete, path, adminToken, nil).StatusCode)
	assert.Equal(t, nethttp.StatusNotFound, s.do(t, nethttp.MethodDelete, "/api/users/999", adminToken, nil).StatusCode)

	resp = s.do(t, nethttp.MethodPost, "/api/token", "", map[string]string{"username": "alice", "password": "N3wPass!!"})
	assert.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode, "deactivated users cannot log in")

	decode(t, s.do(t, nethttp.MethodGet, "/api/users?active=false", adminToken, nil), &list)
	require.Len(t, list.Data, 1)
	assert.Equal(t, "alice", list.Data[0]["username"])

	assert.Equal(t, nethttp.StatusBadRequest, s.do(t, nethttp.MethodGet, "/api/users?active=maybe", adminToken, nil).StatusCode)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, map[string]handlers.Pinger{"postgres": fakePinger{}, "redis": nil})

	resp := s.do(t, nethttp.MethodGet, "/health/live", "", nil)
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)

	resp = s.do(t, nethttp.MethodGet, "/health/ready", "", nil)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	var ready map[string]any
	decode(t, resp, &ready)
	assert.Equal(t, map[string]any{"postgres": "ok"}, ready["dependencies"])

	down := newTestServer(t, map[string]handlers.Pinger{"postgres": fakePinger{err: errors.New("refused")}})
	resp = down.do(t, nethttp.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, nethttp.StatusServiceUnavailable, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, nil)
	s.seedUser(t, "alice", domain.RoleGuest)
	s.login(t, "alice")

	resp := s.do(t, nethttp.MethodGet, "/metrics", "", nil)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(raw), `contacts_directory_token_issue_total{outcome="issued"} 1`))
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t, nil)
	resp := s.do(t, nethttp.MethodGet, "/nope", "", nil)
	assert.Equal(t, nethttp.StatusNotFound, resp.StatusCode)
	var env errorEnvelope
	decode(t, resp, &env)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestPanicIsRecovered(t *testing.T) {
	s := newTestServer(t, nil)
	s.app.Get("/boom", func(*fiber.Ctx) error { panic("kaboom") })

	resp := s.do(t, nethttp.MethodGet, "/boom", "", nil)
	assert.Equal(t, nethttp.StatusInternalServerError, resp.StatusCode)
	var env errorEnvelope
	decode(t, resp, &env)
	assert.Equal(t, "INTERNAL_ERROR", env.Error.Code)
}
