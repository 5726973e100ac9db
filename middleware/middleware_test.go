package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"firebase.google.com/go/auth"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type fakeVerifier struct {
	tokens map[string]*auth.Token
}

func (f fakeVerifier) VerifyIDToken(_ context.Context, idToken string) (*auth.Token, error) {
	if t, ok := f.tokens[idToken]; ok {
		return t, nil
	}
	return nil, errors.New("bad token")
}

var signIn = time.Date(2025, 4, 2, 9, 0, 0, 0, time.UTC)

func newRouter(now time.Time) *gin.Engine {
	gin.SetMode(gin.TestMode)
	v := fakeVerifier{tokens: map[string]*auth.Token{
		"good": {UID: "admin-1", AuthTime: signIn.Unix()},
	}}
	r := gin.New()
	r.Use(CORS("https://admin.beacon.ph"))
	api := r.Group("/api", Auth(v))
	api.GET("/me", func(c *gin.Context) {
		c.String(http.StatusOK, GetUserIDFromContext(c))
	})
	api.POST("/settings", RecentAuth(5*time.Minute, func() time.Time { return now }), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestExtractToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"valid bearer token", "Bearer test-token-123", "test-token-123"},
		{"missing bearer prefix", "test-token-123", ""},
		{"empty header", "", ""},
		{"bearer with empty token", "Bearer ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractToken(tt.header))
		})
	}
}

func TestAuth(t *testing.T) {
	r := newRouter(signIn)

	tests := []struct {
		name   string
		target string
		header string
		status int
		body   string
	}{
		{"missing header", "/api/me", "", http.StatusUnauthorized, ""},
		{"rejected token", "/api/me", "Bearer nope", http.StatusUnauthorized, ""},
		{"valid header", "/api/me", "Bearer good", http.StatusOK, "admin-1"},
		{"query token", "/api/me?token=good", "", http.StatusOK, "admin-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, w.Body.String())
			}
		})
	}
}

func TestRecentAuth(t *testing.T) {
	req := func(r *gin.Engine) int {
		rq := httptest.NewRequest(http.MethodPost, "/api/settings", nil)
		rq.Header.Set("Authorization", "Bearer good")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, rq)
		return w.Code
	}
	assert.Equal(t, http.StatusNoContent, req(newRouter(signIn.Add(4*time.Minute))))
	assert.Equal(t, http.StatusForbidden, req(newRouter(signIn.Add(6*time.Minute))))
}

func TestCORSPreflight(t *testing.T) {
	r := newRouter(signIn)
	req := httptest.NewRequest(http.MethodOptions, "/api/me", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://admin.beacon.ph", w.Header().Get("Access-Control-Allow-Origin"))
}
