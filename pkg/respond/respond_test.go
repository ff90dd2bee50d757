package respond

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSON(t *testing.T) {
	tests := []struct {
		name     string
		code     int
		data     any
		wantCode int
		wantBody any
	}{
		{
			name:     "created response",
			code:     http.StatusCreated,
			data:     map[string]any{"message": "task added successfully", "taskId": 123},
			wantCode: http.StatusCreated,
			wantBody: map[string]any{"message": "task added successfully", "taskId": float64(123)}, // JSON unmarshals numbers as float64
		},
		{
			name:     "empty list",
			code:     http.StatusOK,
			data:     []string{},
			wantCode: http.StatusOK,
			wantBody: []any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/", nil)

			JSON(w, r, tt.code, tt.data)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			var got any
			require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
			assert.Equal(t, tt.wantBody, got)
		})
	}
}

func TestErrorAndMessage(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	Error(w, r, http.StatusNotFound, "task not found")

	assert.Equal(t, http.StatusNotFound, w.Code)
	var got map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	assert.Equal(t, map[string]string{"error": "task not found"}, got)

	w = httptest.NewRecorder()
	Message(w, r, http.StatusOK, "task deleted successfully")

	assert.Equal(t, http.StatusOK, w.Code)
	got = nil
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	assert.Equal(t, map[string]string{"message": "task deleted successfully"}, got)
}

func TestDecode(t *testing.T) {
	type body struct {
		Title string `json:"title"`
	}

	tests := []struct {
		name    string
		input   string
		want    body
		wantErr error
		anyErr  bool
	}{
		{name: "valid", input: `{"title":"buy milk"}`, want: body{Title: "buy milk"}},
		{name: "empty", input: "", wantErr: ErrEmptyBody},
		{name: "malformed", input: `{"title":`, anyErr: true},
		{name: "too large", input: `{"title":"` + strings.Repeat("x", MaxBodyBytes) + `"}`, anyErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.input))

			var got body
			err := Decode(w, r, &got)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.anyErr:
				assert.Error(t, err)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
