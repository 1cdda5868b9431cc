package httpadapter

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureSession(t *testing.T, token, header string) (Session, int) {
	t.Helper()
	var got Session
	h := requireAuth(token, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := SessionFromContext(r.Context())
		require.True(t, ok)
		got = s
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/neos", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return got, rec.Code
}

func TestRequireAuth_Disabled(t *testing.T) {
	s, code := captureSession(t, "", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "anonymous", s.Subject)
	assert.False(t, s.Authenticated)
}

func TestRequireAuth_ValidToken(t *testing.T) {
	s, code := captureSession(t, "s3cret", "bearer s3cret")
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, s.Authenticated)
}

func TestRequireAuth_Rejected(t *testing.T) {
	for _, header := range []string{"", "Bearer", "Bearer ", "Bearer s3cre", "Token s3cret"} {
		_, code := captureSession(t, "s3cret", header)
		assert.Equal(t, http.StatusUnauthorized, code, "header %q", header)
	}
}

func TestSessionFromContext_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := SessionFromContext(req.Context())
	assert.False(t, ok)
}
