// Package router wires handlers, middleware and sessions into the HTTP engine.
package router

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/yukikurage/gestor-tarefas/internal/constants"
	"github.com/yukikurage/gestor-tarefas/internal/handlers"
	"github.com/yukikurage/gestor-tarefas/internal/middleware"
	"github.com/yukikurage/gestor-tarefas/internal/realtime"
	"github.com/yukikurage/gestor-tarefas/internal/services"
)

// Deps are the collaborators the routes are built from.
type Deps struct {
	DB             *gorm.DB
	Log            zerolog.Logger
	SessionStore   sessions.Store
	AllowedOrigins []string
	BaseURL        string

	AuthService *services.AuthService
	TaskService *services.TaskService
	Hub         *realtime.Hub
}

// New builds the engine with every route registered.
func New(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(deps.Log))
	r.Use(middleware.SecurityHeaders())
	r.Use(cors.New(corsConfig(deps.AllowedOrigins)))
	r.Use(sessions.Sessions(constants.SessionCookieName, deps.SessionStore))

	authHandler := handlers.NewAuthHandler(deps.AuthService, deps.BaseURL, deps.Log)
	taskHandler := handlers.NewTaskHandler(deps.TaskService, deps.Log)
	realtimeHandler := handlers.NewRealtimeHandler(deps.Hub)

	r.GET("/health", health(deps.DB))

	// Public routes
	r.GET("/register", authHandler.RegisterForm)
	r.POST("/register", authHandler.Register)
	r.GET("/login", authHandler.LoginStatus)
	r.POST("/login", authHandler.Login)
	r.GET("/logout", authHandler.Logout)
	r.GET("/forgot-password", authHandler.ForgotPasswordForm)
	r.POST("/forgot-password", authHandler.ForgotPassword)
	r.GET("/reset-password/:token", authHandler.ResetPasswordForm)
	r.POST("/reset-password/:token", authHandler.ResetPassword)

	// Authenticated routes
	authed := r.Group("/")
	authed.Use(middleware.RequireAuth(), middleware.LoadPrincipal(deps.AuthService, deps.Log))
	{
		authed.GET("/", taskHandler.ListTasks)
		authed.GET("/new-task", taskHandler.NewTaskForm)
		authed.POST("/new-task", taskHandler.CreateTask)
		authed.GET("/atividades/:id", middleware.RequireTaskID(), taskHandler.GetTask)
		authed.GET("/update-status/:id/:new_status", middleware.RequireTaskID(), taskHandler.UpdateStatus)
		authed.GET("/delete-atividade/:id", middleware.RequireTaskID(), taskHandler.DeleteTask)
		authed.GET("/change-password", authHandler.ChangePasswordForm)
		authed.POST("/change-password", authHandler.ChangePassword)
		authed.GET("/ws", realtimeHandler.Connect)
	}

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowCredentials = true
	cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization")

	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}

	cfg.AllowOrigins = origins
	return cfg
}

func health(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := http.StatusOK
		dbStatus := "ok"

		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			status = http.StatusServiceUnavailable
			dbStatus = "unavailable"
		}

		c.JSON(status, gin.H{
			"status":   http.StatusText(status),
			"database": dbStatus,
		})
	}
}
