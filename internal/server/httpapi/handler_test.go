package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/metrics"
	"github.com/dmitrijs2005/gophauth/internal/server/password"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestServer(t *testing.T) (*httptest.Server, *auth.Issuer) {
	t.Helper()
	hasher, err := password.NewHasher(password.AlgorithmBcrypt, bcrypt.MinCost)
	require.NoError(t, err)
	issuer, err := auth.NewIssuer([]byte("test-secret"))
	require.NoError(t, err)

	registry := metrics.NewRegistry()
	svc := services.NewAccountService(repomanager.NewMemoryRepositoryManager(), hasher, issuer, logging.Nop(), metrics.New(registry))
	srv := NewServer("127.0.0.1:0", NewHandler(svc, logging.Nop()), registry, logging.Nop())

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, issuer
}

func post(t *testing.T, ts *httptest.Server, path string, body any) (int, map[string]any) {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(ts.URL+path, "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]any{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestEndToEnd_RegisterConflictLogin(t *testing.T) {
	ts, issuer := newTestServer(t)

	status, body := post(t, ts, "/api/auth/register", map[string]string{
		"username": "alice", "email": "a@x.com", "password": "Secret1!",
	})
	require.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, body["token"])

	status, body = post(t, ts, "/api/auth/register", map[string]string{
		"username": "alice2", "email": "a@x.com", "password": "Other2@",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, services.MsgAlreadyRegistered, body["message"])

	status, body = post(t, ts, "/api/auth/login", map[string]string{
		"email": "a@x.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, services.MsgInvalidCredentials, body["message"])

	status, body = post(t, ts, "/api/auth/login", map[string]string{
		"email": "A@X.com", "password": "Secret1!",
	})
	require.Equal(t, http.StatusOK, status)

	claims, err := issuer.Parse(body["token"].(string))
	require.NoError(t, err)
	assert.False(t, claims.IsAdmin)
}

func TestRegister_Validation(t *testing.T) {
	ts, _ := newTestServer(t)

	status, body := post(t, ts, "/api/auth/register", map[string]string{"username": "bob", "email": "b@x.com"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, services.MsgAllFieldsRequired, body["message"])

	status, body = post(t, ts, "/api/auth/register", map[string]string{
		"username": "bob", "email": "b@x.com", "password": "password1",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, password.MsgNeedsSpecial, body["message"])
}

func TestLogin_MissingFields(t *testing.T) {
	ts, _ := newTestServer(t)

	status, body := post(t, ts, "/api/auth/login", map[string]string{"email": "a@x.com"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, services.MsgEmailPasswordRequired, body["message"])
}

func TestMalformedJSON(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/auth/login", "application/json", strings.NewReader("{nope"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMe(t *testing.T) {
	ts, _ := newTestServer(t)

	_, body := post(t, ts, "/api/auth/register", map[string]string{
		"username": "carol", "email": "c@x.com", "password": "Secret1!",
	})
	token := body["token"].(string)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/auth/me", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var me meResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&me))
	assert.Equal(t, "carol", me.DisplayName)
	assert.Equal(t, "c@x.com", me.Email)
	assert.Equal(t, "password", me.LinkageType)
	assert.False(t, me.IsAdmin)

	for _, header := range []string{"", "Bearer", "Basic abc", "Bearer garbage"} {
		req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/auth/me", nil)
		require.NoError(t, err)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, header)
	}
}

func TestMetricsAndLiveness(t *testing.T) {
	ts, _ := newTestServer(t)
	post(t, ts, "/api/auth/login", map[string]string{"email": "x@x.com", "password": "nope"})

	resp, err := http.Get(ts.URL + "/healthz/liveness")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `gophauth_flow_outcomes_total{flow="login",outcome="invalid_credentials"} 1`)
}

type failingAccounts struct{ err error }

func (f failingAccounts) Register(context.Context, string, string, string) (string, error) {
	return "", f.err
}
func (f failingAccounts) Login(context.Context, string, string) (string, error) { return "", f.err }
func (f failingAccounts) Me(context.Context, string) (*services.Identity, error) {
	return nil, f.err
}

func TestInternalErrorsDoNotLeak(t *testing.T) {
	leaky := errors.Join(common.ErrPersistence, errors.New("dial tcp 10.1.2.3:5432: connection refused"))
	mux := http.NewServeMux()
	NewHandler(failingAccounts{err: leaky}, logging.Nop()).Register(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/register",
		strings.NewReader(`{"username":"u","email":"e@x.com","password":"Secret1!"}`)))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"message":"Error registering user."}`, rec.Body.String())

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email":"e@x.com","password":"Secret1!"}`)))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"message":"Error logging in."}`, rec.Body.String())
}

func TestServer_StartStop(t *testing.T) {
	srv := NewServer("127.0.0.1:0", NewHandler(failingAccounts{}, logging.Nop()), metrics.NewRegistry(), logging.Nop())

	errCh, err := srv.Start(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, srv.Addr())

	resp, err := http.Get("http://" + srv.Addr() + "/healthz/liveness")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, srv.Stop(context.Background()))
	_, open := <-errCh
	assert.False(t, open)
}
