package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/newthinker/bankroll/internal/api/response"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
})

func serve(mw func(http.Handler) http.Handler, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	mw(okHandler).ServeHTTP(w, req)
	return w
}

func TestAPIKeyAuth(t *testing.T) {
	auth := APIKeyAuth("secret-key", "/api/health")

	tests := []struct {
		name    string
		path    string
		headers map[string]string
		want    int
	}{
		{"valid key", "/api/v1/sweeps", map[string]string{"X-API-Key": "secret-key"}, http.StatusOK},
		{"bearer token", "/api/v1/sweeps", map[string]string{"Authorization": "Bearer secret-key"}, http.StatusOK},
		{"missing key", "/api/v1/sweeps", nil, http.StatusUnauthorized},
		{"wrong key", "/api/v1/sweeps", map[string]string{"X-API-Key": "nope"}, http.StatusUnauthorized},
		{"public path", "/api/health", nil, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(auth, tt.path, tt.headers)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestAPIKeyAuth_ErrorBody(t *testing.T) {
	w := serve(APIKeyAuth("secret-key"), "/api/v1/results", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	var resp response.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "UNAUTHORIZED", resp.Error.Code)
}

func TestAPIKeyAuth_Disabled(t *testing.T) {
	w := serve(APIKeyAuth(""), "/api/v1/sweeps", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
