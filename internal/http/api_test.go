package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"courier/internal/auth"
	apphttp "courier/internal/http"
	"courier/internal/repository/sqlite"
	"courier/internal/service"
)

type testServer struct {
	router *gin.Engine
	users  service.UserService
	issuer *auth.Issuer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	userRepo := sqlite.NewUserRepository(db)
	messageRepo := sqlite.NewMessageRepository(db)
	require.NoError(t, userRepo.Init(ctx))
	require.NoError(t, messageRepo.Init(ctx))

	issuer, err := auth.NewIssuer([]byte("test-secret"), time.Hour)
	require.NoError(t, err)

	users := service.NewUserService(userRepo, bcrypt.MinCost)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := apphttp.NewHandler(users, service.NewMessageService(messageRepo), issuer)
	handler.RegisterRoutes(router)

	return &testServer{router: router, users: users, issuer: issuer}
}

func (s *testServer) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func registerPayload(username string) map[string]string {
	return map[string]string{
		"username":   username,
		"password":   "secret1",
		"first_name": "Alice",
		"last_name":  "Adams",
		"phone":      "+1 555 0100",
	}
}

func TestRegisterIssuesToken(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/auth/register", registerPayload("alice"), "")
	require.Equal(t, http.StatusCreated, rec.Code)

	token, ok := decodeBody(t, rec)["token"].(string)
	require.True(t, ok)

	username, err := srv.issuer.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "alice", username)
}

func TestRegisterDuplicateIsBadRequest(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/auth/register", registerPayload("bob"), "")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = srv.do(t, http.MethodPost, "/auth/register", registerPayload("bob"), "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterMalformedBody(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/auth/register", map[string]string{"username": "alice"}, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogin(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/auth/register", registerPayload("alice"), "")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = srv.do(t, http.MethodPost, "/auth/login", map[string]string{"username": "alice", "password": "secret1"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, decodeBody(t, rec), "token")

	rec = srv.do(t, http.MethodPost, "/auth/login", map[string]string{"username": "alice", "password": "wrong"}, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = srv.do(t, http.MethodPost, "/auth/login", map[string]string{"username": "nobody", "password": "x"}, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginAdvancesLoginTimestamp(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	rec := srv.do(t, http.MethodPost, "/auth/register", registerPayload("alice"), "")
	require.Equal(t, http.StatusCreated, rec.Code)

	before, err := srv.users.Get(ctx, "alice")
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	rec = srv.do(t, http.MethodPost, "/auth/login", map[string]string{"username": "alice", "password": "secret1"}, "")
	require.Equal(t, http.StatusOK, rec.Code)

	after, err := srv.users.Get(ctx, "alice")
	require.NoError(t, err)
	require.True(t, after.LastLoginAt.After(before.LastLoginAt))
}

func TestUserRoutesRequireToken(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodGet, "/users", nil, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = srv.do(t, http.MethodGet, "/users/alice", nil, "garbage")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListAndGetUsers(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/auth/register", registerPayload("alice"), "")
	require.Equal(t, http.StatusCreated, rec.Code)
	token := decodeBody(t, rec)["token"].(string)

	rec = srv.do(t, http.MethodGet, "/users", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	users, ok := decodeBody(t, rec)["users"].([]any)
	require.True(t, ok)
	require.Len(t, users, 1)

	rec = srv.do(t, http.MethodGet, "/users/alice", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	user, ok := decodeBody(t, rec)["user"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "alice", user["username"])
	require.Equal(t, "Alice", user["first_name"])
	require.NotContains(t, user, "password")

	rec = srv.do(t, http.MethodGet, "/users/nobody", nil, token)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMessageRoutesRestrictedToOwnUser(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/auth/register", registerPayload("alice"), "")
	require.Equal(t, http.StatusCreated, rec.Code)
	aliceToken := decodeBody(t, rec)["token"].(string)

	rec = srv.do(t, http.MethodPost, "/auth/register", registerPayload("bob"), "")
	require.Equal(t, http.StatusCreated, rec.Code)
	bobToken := decodeBody(t, rec)["token"].(string)

	rec = srv.do(t, http.MethodGet, "/users/alice/from", nil, aliceToken)
	require.Equal(t, http.StatusOK, rec.Code)
	messages, ok := decodeBody(t, rec)["messages"].([]any)
	require.True(t, ok)
	require.Empty(t, messages)

	rec = srv.do(t, http.MethodGet, "/users/alice/to", nil, aliceToken)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(t, http.MethodGet, "/users/alice/from", nil, bobToken)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = srv.do(t, http.MethodGet, "/users/alice/to", nil, bobToken)
	require.Equal(t, http.StatusForbidden, rec.Code)
}
