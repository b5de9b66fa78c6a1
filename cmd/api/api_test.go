package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"rolesapi/internal/domain/roles"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestApplication(t *testing.T, store dataStore) *application {
	t.Helper()
	return &application{
		config: config{Env: "test", RequestTimeout: 5 * time.Second},
		logger: zap.NewNop().Sugar(),
		store:  store,
	}
}

// newTestServer mounts the router on in-memory stores sharing one memDB.
func newTestServer(t *testing.T) (http.Handler, *memDB) {
	t.Helper()
	db := newMemDB()
	return newTestApplication(t, newMemStore(db)).mount(), db
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		buf, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(buf)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func bodyMessage(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[messageResponse](t, rr).Message
}

type failingRoles struct {
	roles.Store
	err error
}

func (f failingRoles) List(ctx context.Context) ([]roles.Role, error) { return nil, f.err }

func TestInternalServerError(t *testing.T) {
	store := newMemStore(newMemDB())
	store.roles = failingRoles{err: errors.New("connection refused")}
	h := newTestApplication(t, store).mount()

	rr := do(t, h, http.MethodGet, "/api/roles", nil)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "the server encountered a problem", bodyMessage(t, rr))
	assert.NotContains(t, rr.Body.String(), "connection refused")
}

func TestErrorBody(t *testing.T) {
	h, _ := newTestServer(t)

	rr := do(t, h, http.MethodGet, "/api/roles/7", nil)
	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"message":"Role with ID 7 not found"}`, rr.Body.String())
}

func TestHealthCheck(t *testing.T) {
	h, _ := newTestServer(t)

	rr := do(t, h, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	body := decode[map[string]string](t, rr)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "test", body["env"])
	assert.Equal(t, version, body["version"])

	t.Run("DatabaseDown", func(t *testing.T) {
		store := newMemStore(newMemDB())
		store.pingErr = errors.New("connection refused")
		h := newTestApplication(t, store).mount()

		rr := do(t, h, http.MethodGet, "/health", nil)
		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
		assert.NotContains(t, rr.Body.String(), "connection refused")
	})
}

// brokenWriter accepts headers but fails every body write.
type brokenWriter struct {
	header http.Header
	status int
}

func (w *brokenWriter) Header() http.Header { return w.header }
func (w *brokenWriter) WriteHeader(status int) { w.status = status }
func (w *brokenWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestResponseWriteFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	app := newTestApplication(t, newMemStore(newMemDB()))
	app.logger = zap.New(core).Sugar()
	h := app.mount()

	w := &brokenWriter{header: http.Header{}}
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/roles", nil))

	assert.Equal(t, http.StatusOK, w.status)
	entries := logs.FilterMessage("internal error").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "broken pipe", entries[0].ContextMap()["error"])
}

func TestServe(t *testing.T) {
	t.Run("StopsCleanly", func(t *testing.T) {
		app := newTestApplication(t, newMemStore(newMemDB()))
		app.config.Addr = "127.0.0.1:0"

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- app.serve(ctx, app.mount()) }()

		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(10 * time.Second):
			t.Fatal("server did not stop")
		}
	})

	t.Run("ListenError", func(t *testing.T) {
		app := newTestApplication(t, newMemStore(newMemDB()))
		app.config.Addr = "127.0.0.1:not-a-port"

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		assert.Error(t, app.serve(ctx, app.mount()))
	})
}

func TestSwaggerOnlyInDevelopment(t *testing.T) {
	h, _ := newTestServer(t)

	rr := do(t, h, http.MethodGet, "/swagger/doc.json", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestValidatePayload(t *testing.T) {
	err := validatePayload(userPayload{Email: "not-an-email"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email must be a valid email address")
	assert.Contains(t, err.Error(), "phone_number is required")
	assert.Contains(t, err.Error(), "role_id is required")

	zero := int64(0)
	assert.NoError(t, validatePayload(userPayload{Email: "a@b.com", PhoneNumber: "1", RoleID: &zero}))

	assert.NoError(t, validatePayload(rolePayload{Name: "Admin"}))
}
