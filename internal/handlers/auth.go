package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yukikurage/gestor-tarefas/internal/constants"
	"github.com/yukikurage/gestor-tarefas/internal/dto"
	apierrors "github.com/yukikurage/gestor-tarefas/internal/errors"
	"github.com/yukikurage/gestor-tarefas/internal/middleware"
	"github.com/yukikurage/gestor-tarefas/internal/services"
)

const forgotPasswordMessage = "If the address is registered, a reset link has been sent"

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	authService *services.AuthService
	baseURL     string
	log         zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler. baseURL prefixes the links in reset mail.
func NewAuthHandler(authService *services.AuthService, baseURL string, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		baseURL:     baseURL,
		log:         log,
	}
}

// RegisterForm lists the departments a new account can join.
func (h *AuthHandler) RegisterForm(c *gin.Context) {
	setores, err := h.authService.ListDepartments(c.Request.Context())
	if err != nil {
		h.internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"departments":         dto.ToSetorDTOs(setores),
		"min_username_length": constants.MinUsernameLength,
		"max_username_length": constants.MaxUsernameLength,
		"min_password_length": constants.MinPasswordLength,
	})
}

// Register creates a department member account.
func (h *AuthHandler) Register(c *gin.Context) {
	type RegisterRequest struct {
		Username        string `json:"username" form:"username"`
		Email           string `json:"email" form:"email"`
		Password        string `json:"password" form:"password"`
		ConfirmPassword string `json:"confirm_password" form:"confirm_password"`
		SetorID         uint64 `json:"setor_id" form:"setor_id"`
	}

	var req RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.authService.Register(c.Request.Context(), services.RegisterInput{
		Username:        req.Username,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		SetorID:         req.SetorID,
	})
	if err != nil {
		if field := registrationField(err); field != "" {
			apierrors.BadRequestWithDetails(c, err.Error(), gin.H{"field": field})
			return
		}
		h.respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToUserDTO(*user))
}

// LoginStatus reports whether the request carries a live session.
func (h *AuthHandler) LoginStatus(c *gin.Context) {
	session := sessions.Default(c)
	userID, ok := session.Get(constants.ContextKeyUserID).(uint64)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}

	principal, err := h.authService.GetPrincipal(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			c.JSON(http.StatusOK, gin.H{"authenticated": false})
			return
		}
		h.internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"authenticated": true,
		"user":          dto.ToPrincipalDTO(principal),
	})
}

// Login authenticates a user and initializes the session.
func (h *AuthHandler) Login(c *gin.Context) {
	type LoginRequest struct {
		Email    string `json:"email" form:"email" binding:"required"`
		Password string `json:"password" form:"password" binding:"required"`
	}

	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		apierrors.BadRequest(c, "Email and password are required")
		return
	}

	user, err := h.authService.Login(c.Request.Context(), services.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.respondAuthError(c, err)
		return
	}

	session := sessions.Default(c)
	session.Set(constants.ContextKeyUserID, user.ID)
	if err := session.Save(); err != nil {
		h.internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// Logout removes the authentication session.
func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		h.internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out successfully",
	})
}

// ChangePasswordForm describes the password rules.
func (h *AuthHandler) ChangePasswordForm(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"min_password_length": constants.MinPasswordLength})
}

// ChangePassword replaces the session user's password.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	type ChangePasswordRequest struct {
		CurrentPassword string `json:"current_password" form:"current_password" binding:"required"`
		NewPassword     string `json:"new_password" form:"new_password" binding:"required"`
		ConfirmPassword string `json:"confirm_password" form:"confirm_password" binding:"required"`
	}

	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBind(&req); err != nil {
		apierrors.BadRequest(c, "All password fields are required")
		return
	}

	err := h.authService.ChangePassword(c.Request.Context(), principal, services.ChangePasswordInput{
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		h.respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}

// ForgotPasswordForm describes the reset request.
func (h *AuthHandler) ForgotPasswordForm(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"fields": []string{"email"}})
}

// ForgotPassword starts a reset. The answer is the same whether or not the address exists.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	type ForgotPasswordRequest struct {
		Email string `json:"email" form:"email" binding:"required"`
	}

	var req ForgotPasswordRequest
	if err := c.ShouldBind(&req); err != nil {
		apierrors.BadRequest(c, "Email is required")
		return
	}

	if err := h.authService.ForgotPassword(c.Request.Context(), req.Email, h.baseURL); err != nil {
		h.internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": forgotPasswordMessage})
}

// ResetPasswordForm checks that the token in the link is still usable.
func (h *AuthHandler) ResetPasswordForm(c *gin.Context) {
	if _, err := h.authService.ValidateResetToken(c.Request.Context(), c.Param("token")); err != nil {
		h.respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid":               true,
		"min_password_length": constants.MinPasswordLength,
	})
}

// ResetPassword sets a new password using the token in the link.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	type ResetPasswordRequest struct {
		Password        string `json:"password" form:"password" binding:"required"`
		ConfirmPassword string `json:"confirm_password" form:"confirm_password" binding:"required"`
	}

	var req ResetPasswordRequest
	if err := c.ShouldBind(&req); err != nil {
		apierrors.BadRequest(c, "Password and confirmation are required")
		return
	}

	err := h.authService.ResetPassword(c.Request.Context(), services.ResetPasswordInput{
		Token:           c.Param("token"),
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		h.respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password reset successfully"})
}

func (h *AuthHandler) respondAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidUsername),
		errors.Is(err, services.ErrInvalidEmail),
		errors.Is(err, services.ErrPasswordTooShort),
		errors.Is(err, services.ErrPasswordTooLong),
		errors.Is(err, services.ErrPasswordMismatch),
		errors.Is(err, services.ErrDepartmentRequired),
		errors.Is(err, services.ErrDepartmentNotFound),
		errors.Is(err, services.ErrWrongPassword),
		errors.Is(err, services.ErrInvalidResetToken):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrUsernameTaken),
		errors.Is(err, services.ErrEmailTaken):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.InvalidCredentials(c, err.Error())
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, err.Error())
	default:
		h.internalError(c, err)
	}
}

// registrationField names the register request field a validation error refers to.
func registrationField(err error) string {
	switch {
	case errors.Is(err, services.ErrInvalidUsername):
		return "username"
	case errors.Is(err, services.ErrInvalidEmail):
		return "email"
	case errors.Is(err, services.ErrPasswordTooShort),
		errors.Is(err, services.ErrPasswordTooLong):
		return "password"
	case errors.Is(err, services.ErrPasswordMismatch):
		return "confirm_password"
	case errors.Is(err, services.ErrDepartmentRequired),
		errors.Is(err, services.ErrDepartmentNotFound):
		return "setor_id"
	}
	return ""
}

func (h *AuthHandler) internalError(c *gin.Context, err error) {
	h.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
	apierrors.InternalError(c)
}
