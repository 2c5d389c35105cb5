package restdb

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newrise0410/piano-academy-app-sub002/core"
	"github.com/newrise0410/piano-academy-app-sub002/core/student"
	"github.com/newrise0410/piano-academy-app-sub002/storage/kv"
)

type nopLogger struct{}

func (nopLogger) Debug(msg string, args ...interface{}) {}
func (nopLogger) Info(msg string, args ...interface{})  {}
func (nopLogger) Warn(msg string, args ...interface{})  {}
func (nopLogger) Error(msg string, args ...interface{}) {}
func (nopLogger) Fatal(msg string, args ...interface{}) {}

func newTestClient(t *testing.T, handler http.Handler) (*Client, kv.Store) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	tokens := kv.NewInmemStore()
	conf := &core.Config{
		API: core.APIConfig{DevBaseURL: srv.URL, Timeout: 2 * time.Second},
	}
	return NewClient(conf, tokens, nopLogger{}), tokens
}

func respond(w http.ResponseWriter, status int, env envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

func TestClientAttachesBearerToken(t *testing.T) {
	ctx := context.Background()

	var gotAuth string
	client, tokens := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		respond(w, http.StatusOK, envelope{Success: true, Data: json.RawMessage(`[]`)})
	}))

	repo := NewStudentRepository(client)
	_, err := repo.QueryAllStudents(ctx, "t1")
	require.NoError(t, err)
	assert.Empty(t, gotAuth, "no token stored yet")

	require.NoError(t, tokens.Set(ctx, kv.KeyAuthToken, "tok-123"))
	_, err = repo.QueryAllStudents(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", gotAuth, "token is re-read per request")
}

func TestClientErrorTagging(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		status   int
		wantKind core.ErrorKind
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, wantKind: core.KindAuthRequired},
		{name: "forbidden", status: http.StatusForbidden, wantKind: core.KindAuthRequired},
		{name: "not found", status: http.StatusNotFound, wantKind: core.KindNotFound},
		{name: "server error", status: http.StatusInternalServerError, wantKind: core.KindServer},
		{name: "bad request", status: http.StatusBadRequest, wantKind: core.KindServer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				respond(w, tt.status, envelope{Message: "nope"})
			}))
			err := client.do(ctx, http.MethodGet, "/students", nil, nil, nil)
			require.Error(t, err)
			assert.True(t, core.ErrorIsKind(err, tt.wantKind), "want kind %s, got %v", tt.wantKind, err)
		})
	}
}

func TestClientTransportFailure(t *testing.T) {
	tokens := kv.NewInmemStore()
	conf := &core.Config{
		// nothing listens here
		API: core.APIConfig{DevBaseURL: "http://127.0.0.1:1", Timeout: time.Second},
	}
	client := NewClient(conf, tokens, nopLogger{})

	err := client.do(context.Background(), http.MethodGet, "/students", nil, nil, nil)
	require.Error(t, err)
	assert.True(t, core.ErrorIsKind(err, core.KindTransport))

	var apiErr *core.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Zero(t, apiErr.StatusCode)
}

func TestClientDecodesEnvelope(t *testing.T) {
	ctx := context.Background()
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusOK, envelope{
			Success: true,
			Data:    json.RawMessage(`{"id":"stu_1","name":"Kim Minji","teacherId":"t1"}`),
		})
	}))

	repo := NewStudentRepository(client)
	got, err := repo.GetStudentByID(ctx, "stu_1")
	require.NoError(t, err)
	assert.Equal(t, "Kim Minji", got.Name)
}

func TestRepositoryMapsNotFound(t *testing.T) {
	ctx := context.Background()
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusNotFound, envelope{Message: "no such student"})
	}))

	repo := NewStudentRepository(client)
	_, err := repo.GetStudentByID(ctx, "nope")
	assert.ErrorIs(t, err, student.ErrNotFound)
	assert.ErrorIs(t, repo.DeleteStudent(ctx, "nope"), student.ErrNotFound)
}

func TestClientRejectsBackendFailurePayload(t *testing.T) {
	ctx := context.Background()
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusOK, envelope{Success: false, Message: "quota exceeded"})
	}))

	err := client.do(ctx, http.MethodGet, "/students", nil, nil, nil)
	require.Error(t, err)
	assert.True(t, core.ErrorIsKind(err, core.KindServer))
	assert.Contains(t, err.Error(), "quota exceeded")
}
