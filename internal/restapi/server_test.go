package restapi

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func discardLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

type fakeRunner struct {
	started bool
	stopped bool
}

func (f *fakeRunner) StartRun() (string, error) {
	f.started = true
	return "run-1", nil
}

func (f *fakeRunner) RunStatus(id string) (RunStatus, error) {
	return RunStatus{ID: id, State: "running", Progress: 0.5}, nil
}

func (f *fakeRunner) StopRun(id string) error {
	f.stopped = true
	return nil
}

func signedToken(t *testing.T) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   "tester",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func TestStartRunRequiresAuth(t *testing.T) {
	runner := &fakeRunner{}
	srv := NewServer(runner, testSecret, discardLogger())

	req := httptest.NewRequest(http.MethodPost, "/runs", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, runner.started)
}

func TestStartRunWithValidToken(t *testing.T) {
	runner := &fakeRunner{}
	srv := NewServer(runner, testSecret, discardLogger())

	req := httptest.NewRequest(http.MethodPost, "/runs", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.True(t, runner.started)
}

func TestRunStatusUnauthenticated(t *testing.T) {
	runner := &fakeRunner{}
	srv := NewServer(runner, testSecret, discardLogger())

	req := httptest.NewRequest(http.MethodGet, "/runs/run-1", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStopRunWithValidToken(t *testing.T) {
	runner := &fakeRunner{}
	srv := NewServer(runner, testSecret, discardLogger())

	req := httptest.NewRequest(http.MethodPost, "/runs/run-1/stop", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, runner.stopped)
}
