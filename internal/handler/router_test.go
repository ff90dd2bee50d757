package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/todo-api/internal/model"
)

func TestE2E_FullWorkflow(t *testing.T) {
	env := setupServer(t)
	creds := map[string]string{"username": "alice", "password": "pw1"}

	// 1. Register
	resp := env.do(t, http.MethodPost, "/api/register", "", creds)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// 2. Login
	resp = env.do(t, http.MethodPost, "/api/login", "", creds)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token := decode[map[string]string](t, resp)["token"]
	require.NotEmpty(t, token)

	// 3. Create task
	id := env.createTask(t, token, "buy milk", "2%")

	// 4. List
	resp = env.do(t, http.MethodGet, "/api/tasks", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	tasks := decode[[]model.Task](t, resp)
	require.Len(t, tasks, 1)
	assert.Equal(t, id, tasks[0].ID)
	assert.Equal(t, "buy milk", tasks[0].Title)
	assert.Equal(t, "2%", tasks[0].Description)
	assert.Equal(t, 0, tasks[0].Status)

	// 5. Complete
	resp = env.do(t, http.MethodPut, fmt.Sprintf("/api/tasks/%d/status", id), token, map[string]int{"status": 100})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// 6. List again
	resp = env.do(t, http.MethodGet, "/api/tasks", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	tasks = decode[[]model.Task](t, resp)
	require.Len(t, tasks, 1)
	assert.Equal(t, 100, tasks[0].Status)
}

func TestHealth(t *testing.T) {
	env := setupServer(t)

	resp := env.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]string{"status": "ok"}, decode[map[string]string](t, resp))
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("connection refused") }

func TestHealth_StoreDown(t *testing.T) {
	w := httptest.NewRecorder()
	health(failingPinger{}, zap.NewNop())(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"error":"store unavailable"}`, w.Body.String())
}

func TestStaticClient(t *testing.T) {
	env := setupServer(t)

	resp := env.do(t, http.MethodGet, "/", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `<script src="app.js"></script>`)

	resp = env.do(t, http.MethodGet, "/app.js", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
