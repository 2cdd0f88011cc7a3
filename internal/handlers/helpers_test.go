package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yukikurage/gestor-tarefas/internal/constants"
	"github.com/yukikurage/gestor-tarefas/internal/middleware"
	"github.com/yukikurage/gestor-tarefas/internal/notify"
	"github.com/yukikurage/gestor-tarefas/internal/repository"
	"github.com/yukikurage/gestor-tarefas/internal/services"
	"github.com/yukikurage/gestor-tarefas/internal/testutil"
)

type resetMailer struct {
	urls []string
}

func (m *resetMailer) SendPasswordReset(_ context.Context, _, resetURL string) error {
	m.urls = append(m.urls, resetURL)
	return nil
}

type testEnv struct {
	db          *gorm.DB
	router      *gin.Engine
	recorder    *notify.Recorder
	mailer      *resetMailer
	authService *services.AuthService
	taskService *services.TaskService
}

func setupTestEnv(t *testing.T) testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewDB(t)
	recorder := &notify.Recorder{}
	mailer := &resetMailer{}

	authService := services.NewAuthService(
		repository.NewUserRepository(db),
		repository.NewSetorRepository(db),
		mailer,
		zerolog.Nop(),
	)
	taskService := services.NewTaskService(repository.NewTaskRepository(db), recorder, zerolog.Nop())

	authHandler := NewAuthHandler(authService, "http://localhost:5000", zerolog.Nop())
	taskHandler := NewTaskHandler(taskService, zerolog.Nop())

	r := gin.New()
	r.Use(sessions.Sessions(constants.SessionCookieName, cookie.NewStore([]byte("secret"))))
	r.GET("/register", authHandler.RegisterForm)
	r.POST("/register", authHandler.Register)
	r.GET("/login", authHandler.LoginStatus)
	r.POST("/login", authHandler.Login)
	r.GET("/logout", authHandler.Logout)
	r.POST("/forgot-password", authHandler.ForgotPassword)
	r.GET("/reset-password/:token", authHandler.ResetPasswordForm)
	r.POST("/reset-password/:token", authHandler.ResetPassword)

	authed := r.Group("/", middleware.RequireAuth(), middleware.LoadPrincipal(authService, zerolog.Nop()))
	authed.GET("/", taskHandler.ListTasks)
	authed.GET("/new-task", taskHandler.NewTaskForm)
	authed.POST("/new-task", taskHandler.CreateTask)
	authed.GET("/atividades/:id", middleware.RequireTaskID(), taskHandler.GetTask)
	authed.GET("/update-status/:id/:new_status", middleware.RequireTaskID(), taskHandler.UpdateStatus)
	authed.GET("/delete-atividade/:id", middleware.RequireTaskID(), taskHandler.DeleteTask)
	authed.POST("/change-password", authHandler.ChangePassword)

	return testEnv{
		db:          db,
		router:      r,
		recorder:    recorder,
		mailer:      mailer,
		authService: authService,
		taskService: taskService,
	}
}

func (env testEnv) do(t *testing.T, method, path string, body interface{}, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		req = httptest.NewRequest(method, path, bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func (env testEnv) doForm(t *testing.T, path string, form url.Values, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, ck := range cookies {
		req.AddCookie(ck)
	}

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

// login signs in with the fixture password and returns the session cookies.
func (env testEnv) login(t *testing.T, email string) []*http.Cookie {
	t.Helper()

	w := env.do(t, http.MethodPost, "/login", map[string]string{
		"email":    email,
		"password": testutil.DefaultPassword,
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies, "expected session cookie to be set")
	return cookies
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}
