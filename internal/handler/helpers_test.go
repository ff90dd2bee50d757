package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/todo-api/internal/repo"
	"github.com/BuzzLyutic/todo-api/internal/service"
	"github.com/BuzzLyutic/todo-api/internal/web"
)

var testSecret = []byte("test-secret")

type testEnv struct {
	server *httptest.Server
	store  *repo.Store
	tasks  *TaskHandler
	dbPath string
}

// setupServer собирает полный роутер поверх SQLite во временном файле
func setupServer(t *testing.T) *testEnv {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "todo.db")
	store, err := repo.OpenSQLite(context.Background(), dbPath)
	require.NoError(t, err)
	t.Cleanup(store.Close)

	logger := zap.NewNop()
	authHandler := NewAuthHandler(service.NewUserService(store.Users, testSecret, time.Hour), logger)
	taskHandler := NewTaskHandler(service.NewTaskService(store.Tasks), logger)

	server := httptest.NewServer(NewRouter(RouterConfig{
		Auth:      authHandler,
		Tasks:     taskHandler,
		Store:     store,
		SecretKey: testSecret,
		Logger:    logger,
		Static:    web.Handler(),
	}))
	t.Cleanup(server.Close)

	return &testEnv{server: server, store: store, tasks: taskHandler, dbPath: dbPath}
}

// count runs a COUNT query on a separate connection to the same database file.
func (e *testEnv) count(t *testing.T, query string, args ...any) int {
	t.Helper()

	db, err := sql.Open("sqlite", e.dbPath)
	require.NoError(t, err)
	defer db.Close()

	var n int
	require.NoError(t, db.QueryRow(query, args...).Scan(&n))
	return n
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, e.server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

// login registers the user and returns a session token.
func (e *testEnv) login(t *testing.T, username, password string) string {
	t.Helper()

	resp := e.do(t, http.MethodPost, "/api/register", "", map[string]string{"username": username, "password": password})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = e.do(t, http.MethodPost, "/api/login", "", map[string]string{"username": username, "password": password})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return decode[map[string]string](t, resp)["token"]
}

func (e *testEnv) createTask(t *testing.T, token, title, description string) int64 {
	t.Helper()

	resp := e.do(t, http.MethodPost, "/api/tasks", token, map[string]string{"title": title, "description": description})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	body := decode[struct {
		TaskID int64 `json:"taskId"`
	}](t, resp)
	require.NotZero(t, body.TaskID)
	return body.TaskID
}
