package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMiddleware(t *testing.T) {
	secret := []byte("secret")

	valid, err := GenerateToken(7, "alice", secret, time.Hour)
	require.NoError(t, err)
	expired, err := GenerateToken(7, "alice", secret, -time.Minute)
	require.NoError(t, err)
	foreign, err := GenerateToken(7, "alice", []byte("other"), time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name     string
		header   string
		wantCode int
		wantErr  string
	}{
		{name: "valid token", header: "Bearer " + valid, wantCode: http.StatusOK},
		{name: "missing header", header: "", wantCode: http.StatusUnauthorized, wantErr: "token required"},
		{name: "empty bearer", header: "Bearer ", wantCode: http.StatusUnauthorized, wantErr: "token required"},
		{name: "bare bearer", header: "Bearer", wantCode: http.StatusUnauthorized, wantErr: "token required"},
		{name: "bearer and spaces", header: "  Bearer   ", wantCode: http.StatusUnauthorized, wantErr: "token required"},
		{name: "prefix glued to token", header: "Bearer" + valid, wantCode: http.StatusForbidden, wantErr: "invalid or expired token"},
		{name: "raw token without prefix", header: valid, wantCode: http.StatusForbidden, wantErr: "invalid or expired token"},
		{name: "expired token", header: "Bearer " + expired, wantCode: http.StatusForbidden, wantErr: "invalid or expired token"},
		{name: "wrong signature", header: "Bearer " + foreign, wantCode: http.StatusForbidden, wantErr: "invalid or expired token"},
		{name: "garbage", header: "Bearer abc.def.ghi", wantCode: http.StatusForbidden, wantErr: "invalid or expired token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Identity
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got, _ = IdentityFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			Middleware(secret, zap.NewNop())(next).ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantErr != "" {
				var body map[string]string
				require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
				assert.Equal(t, tt.wantErr, body["error"])
				return
			}
			assert.Equal(t, Identity{UserID: 7, Username: "alice"}, got)
		})
	}
}

func TestIdentityFromContext_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := IdentityFromContext(req.Context())
	assert.False(t, ok)
}
