package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"user-account-api/internal/core/auth"
	resp "user-account-api/internal/transport/http/response"
)

func init() { gin.SetMode(gin.TestMode) }

func decode(t *testing.T, w *httptest.ResponseRecorder) resp.Resp {
	t.Helper()
	var r resp.Resp
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &r), w.Body.String())
	return r
}

func serve(r *gin.Engine, method, path, authz string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthJWT(t *testing.T) {
	j := &auth.JWTer{Secret: []byte("s"), TTL: time.Hour}
	userTok, err := j.Issue("u1", "user")
	require.NoError(t, err)
	expired, err := (&auth.JWTer{Secret: []byte("s"), TTL: -time.Hour}).Issue("u1", "user")
	require.NoError(t, err)

	r := gin.New()
	r.GET("/me", AuthJWT(j, ""), func(c *gin.Context) {
		cl, ok := ClaimsFrom(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, resp.OK(gin.H{"id": cl.UID, "role": cl.Role}))
	})
	r.GET("/admin", AuthJWT(j, "admin"), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	cases := []struct {
		name   string
		authz  string
		path   string
		status int
		reason string
	}{
		{"no header", "", "/me", http.StatusUnauthorized, "unauthenticated"},
		{"wrong scheme", "Basic abc", "/me", http.StatusUnauthorized, "unauthenticated"},
		{"empty bearer", "Bearer ", "/me", http.StatusUnauthorized, "unauthenticated"},
		{"garbage token", "Bearer abc.def.ghi", "/me", http.StatusForbidden, "invalid_credential"},
		{"expired token", "Bearer " + expired, "/me", http.StatusForbidden, "invalid_credential"},
		{"role mismatch", "Bearer " + userTok, "/admin", http.StatusForbidden, "unauthorized"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := serve(r, http.MethodGet, tc.path, tc.authz, nil)
			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, tc.reason, decode(t, w).Reason)
		})
	}

	t.Run("valid token", func(t *testing.T) {
		w := serve(r, http.MethodGet, "/me", "Bearer "+userTok, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, map[string]any{"id": "u1", "role": "user"}, decode(t, w).Data)
	})
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(KeyRequestID)) })

	w := serve(r, http.MethodGet, "/", "", nil)
	assert.NotEmpty(t, w.Header().Get(KeyRequestID))
	assert.Equal(t, w.Header().Get(KeyRequestID), w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(KeyRequestID, "abc")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc", w.Header().Get(KeyRequestID))
}

func TestRateLimitPerIP(t *testing.T) {
	r := gin.New()
	r.POST("/login", RateLimitPerIP(0.001, 2, time.Minute), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/login", "", nil).Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/login", "", nil).Code)
	w := serve(r, http.MethodPost, "/login", "", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "rate_limited", decode(t, w).Reason)
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(zap.NewNop()))
	r.GET("/boom", func(c *gin.Context) { panic("kaboom") })

	w := serve(r, http.MethodGet, "/boom", "", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Server error", body.Msg)
	assert.NotContains(t, w.Body.String(), "kaboom")
}

func TestMaxBodyBytes(t *testing.T) {
	r := gin.New()
	r.POST("/", MaxBodyBytes(8), func(c *gin.Context) {
		_, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusOK)
	})
	assert.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/", "", strings.NewReader("small")).Code)
	assert.Equal(t, http.StatusRequestEntityTooLarge, serve(r, http.MethodPost, "/", "", strings.NewReader("much too large")).Code)
}

func TestBearer(t *testing.T) {
	tok, ok := bearer("bearer  abc ")
	assert.True(t, ok)
	assert.Equal(t, "abc", tok)
	_, ok = bearer("Bearer")
	assert.False(t, ok)
}
