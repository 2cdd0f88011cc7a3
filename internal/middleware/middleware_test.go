package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yukikurage/gestor-tarefas/internal/constants"
	"github.com/yukikurage/gestor-tarefas/internal/models"
	"github.com/yukikurage/gestor-tarefas/internal/policy"
	"github.com/yukikurage/gestor-tarefas/internal/services"
)

type stubLoader struct {
	principal policy.Principal
	err       error
}

func (l stubLoader) GetPrincipal(_ context.Context, userID uint64) (policy.Principal, error) {
	if l.err != nil {
		return policy.Principal{}, l.err
	}
	p := l.principal
	p.UserID = userID
	return p, nil
}

func newAuthRouter(loader PrincipalLoader) *gin.Engine {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(sessions.Sessions(constants.SessionCookieName, cookie.NewStore([]byte("secret"))))
	r.GET("/login", func(c *gin.Context) {
		session := sessions.Default(c)
		session.Set(constants.ContextKeyUserID, uint64(7))
		_ = session.Save()
		c.Status(http.StatusOK)
	})
	r.GET("/me", RequireAuth(), LoadPrincipal(loader, zerolog.Nop()), func(c *gin.Context) {
		p, ok := GetPrincipal(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": p.UserID, "username": p.Username})
	})
	return r
}

func loginCookies(t *testing.T, r *gin.Engine) []*http.Cookie {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/login", nil))
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies
}

func TestRequireAuth_NoSession(t *testing.T) {
	r := newAuthRouter(stubLoader{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoadPrincipal(t *testing.T) {
	r := newAuthRouter(stubLoader{principal: policy.Principal{Username: "alice", Role: models.RoleAdmin}})
	cookies := loginCookies(t, r)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":7,"username":"alice"}`, w.Body.String())
}

func TestLoadPrincipal_Failures(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"deleted user", services.ErrUserNotFound, http.StatusUnauthorized},
		{"database down", errors.New("connection refused"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newAuthRouter(stubLoader{err: tt.err})
			cookies := loginCookies(t, r)

			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			for _, ck := range cookies {
				req.AddCookie(ck)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestRequireTaskID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/atividades/:id", RequireTaskID(), func(c *gin.Context) {
		id, ok := GetTaskID(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"id": id})
	})

	for path, want := range map[string]int{
		"/atividades/12":  http.StatusOK,
		"/atividades/0":   http.StatusBadRequest,
		"/atividades/abc": http.StatusBadRequest,
		"/atividades/-3":  http.StatusBadRequest,
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, want, w.Code, path)
	}
}

func TestSecurityHeadersAndRequestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestLogger(zerolog.Nop()), SecurityHeaders())
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "SAMEORIGIN", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "1; mode=block", w.Header().Get("X-XSS-Protection"))
	assert.Contains(t, w.Header().Get("Strict-Transport-Security"), "max-age=")
}
