package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yukikurage/gestor-tarefas/internal/config"
	"github.com/yukikurage/gestor-tarefas/internal/constants"
	"github.com/yukikurage/gestor-tarefas/internal/mail"
	"github.com/yukikurage/gestor-tarefas/internal/models"
	"github.com/yukikurage/gestor-tarefas/internal/policy"
	"github.com/yukikurage/gestor-tarefas/internal/repository"
	"github.com/yukikurage/gestor-tarefas/internal/utils"
)

var (
	ErrUsernameTaken        = errors.New("username already exists")
	ErrEmailTaken           = errors.New("email already registered")
	ErrInvalidUsername      = errors.New("username must be between 3 and 150 characters")
	ErrInvalidEmail         = errors.New("invalid email address")
	ErrPasswordTooShort     = errors.New("password must be at least 6 characters")
	ErrPasswordTooLong      = errors.New("password must be at most 72 bytes")
	ErrPasswordMismatch     = errors.New("passwords do not match")
	ErrDepartmentRequired   = errors.New("department is required")
	ErrDepartmentNotFound   = errors.New("department not found")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrWrongPassword        = errors.New("current password is incorrect")
	ErrUserNotFound         = errors.New("user not found")
	ErrInvalidResetToken    = errors.New("reset link is invalid or has expired")
	ErrFailedToHashPassword = errors.New("failed to hash password")
)

// AuthService handles authentication related business logic.
type AuthService struct {
	userRepo  repository.UserRepository
	setorRepo repository.SetorRepository
	mailer    mail.Sender
	validate  *validator.Validate
	log       zerolog.Logger

	// Now is the clock used for reset token expiry.
	Now func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, setorRepo repository.SetorRepository, mailer mail.Sender, log zerolog.Logger) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		setorRepo: setorRepo,
		mailer:    mailer,
		validate:  validator.New(),
		log:       log.With().Str("component", "auth_service").Logger(),
		Now:       time.Now,
	}
}

// RegisterInput represents the required information to create a new account.
type RegisterInput struct {
	Username        string `validate:"min=3,max=150"`
	Email           string `validate:"required,email,max=150"`
	Password        string `validate:"min=6,max=72"`
	ConfirmPassword string `validate:"eqfield=Password"`
	SetorID         uint64 `validate:"required"`
}

// Register creates a department member account.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(input.Email)

	if err := s.validate.Struct(input); err != nil {
		return nil, registrationError(err)
	}
	if len(input.Password) > constants.MaxPasswordBytes {
		return nil, ErrPasswordTooLong
	}

	setor, err := s.setorRepo.FindByID(ctx, input.SetorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDepartmentNotFound
		}
		return nil, fmt.Errorf("failed to find department: %w", err)
	}

	if err := s.ensureAvailable(ctx, input.Username, input.Email); err != nil {
		return nil, err
	}

	hash, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		Role:         models.RoleDepartmentMember,
		SetorID:      &setor.ID,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	user.Setor = setor

	s.log.Info().
		Uint64("user_id", user.ID).
		Str("department", setor.Nome).
		Msg("user registered")
	return user, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Email    string
	Password string
}

// Login verifies credentials and returns the authenticated user.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*models.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, strings.TrimSpace(input.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(ctx context.Context, id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

// GetPrincipal loads the request principal for a session user.
func (s *AuthService) GetPrincipal(ctx context.Context, id uint64) (policy.Principal, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return policy.Principal{}, err
	}
	return policy.NewPrincipal(*user), nil
}

// ChangePasswordInput holds a password change request.
type ChangePasswordInput struct {
	CurrentPassword string
	NewPassword     string
	ConfirmPassword string
}

// ChangePassword replaces the principal's password after checking the current one.
func (s *AuthService) ChangePassword(ctx context.Context, principal policy.Principal, input ChangePasswordInput) error {
	user, err := s.GetUser(ctx, principal.UserID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.CurrentPassword)); err != nil {
		return ErrWrongPassword
	}
	if err := checkNewPassword(input.NewPassword, input.ConfirmPassword); err != nil {
		return err
	}

	hash, err := hashPassword(input.NewPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash

	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.log.Info().Uint64("user_id", user.ID).Msg("password changed")
	return nil
}

// ForgotPassword issues a reset token and mails the reset link.
// Unknown addresses are ignored so callers cannot probe for accounts.
func (s *AuthService) ForgotPassword(ctx context.Context, email, baseURL string) error {
	user, err := s.userRepo.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	token, err := utils.GenerateResetToken(constants.ResetTokenBytes)
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}
	expiry := s.Now().Add(constants.ResetTokenLifetime)
	user.ResetToken = &token
	user.ResetTokenExpiry = &expiry

	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	resetURL := strings.TrimRight(baseURL, "/") + "/reset-password/" + token
	if err := s.mailer.SendPasswordReset(ctx, user.Email, resetURL); err != nil {
		s.log.Error().Err(err).Uint64("user_id", user.ID).Msg("failed to send reset mail")
	}

	return nil
}

// ValidateResetToken returns the user holding a live reset token.
func (s *AuthService) ValidateResetToken(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrInvalidResetToken
	}

	user, err := s.userRepo.FindByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidResetToken
		}
		return nil, fmt.Errorf("failed to find reset token: %w", err)
	}

	if !user.ResetTokenValid(token, s.Now()) {
		return nil, ErrInvalidResetToken
	}

	return user, nil
}

// ResetPasswordInput holds a password reset request.
type ResetPasswordInput struct {
	Token           string
	Password        string
	ConfirmPassword string
}

// ResetPassword sets a new password and consumes the token.
func (s *AuthService) ResetPassword(ctx context.Context, input ResetPasswordInput) error {
	user, err := s.ValidateResetToken(ctx, input.Token)
	if err != nil {
		return err
	}
	if err := checkNewPassword(input.Password, input.ConfirmPassword); err != nil {
		return err
	}

	hash, err := hashPassword(input.Password)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	user.ResetToken = nil
	user.ResetTokenExpiry = nil

	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to reset password: %w", err)
	}

	s.log.Info().Uint64("user_id", user.ID).Msg("password reset")
	return nil
}

// EnsureAdmin creates the configured administrator when no administrator exists yet.
// It reports whether an account was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, cfg config.AdminConfig) (bool, error) {
	if cfg.Username == "" || cfg.Email == "" || cfg.Password == "" {
		return false, nil
	}

	count, err := s.userRepo.CountByRole(ctx, models.RoleAdmin)
	if err != nil {
		return false, fmt.Errorf("failed to count administrators: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	if err := s.ensureAvailable(ctx, cfg.Username, cfg.Email); err != nil {
		return false, err
	}

	hash, err := hashPassword(cfg.Password)
	if err != nil {
		return false, err
	}

	admin := &models.User{
		Username:     cfg.Username,
		Email:        cfg.Email,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
	}
	if err := s.userRepo.Create(ctx, admin); err != nil {
		return false, fmt.Errorf("failed to create administrator: %w", err)
	}

	s.log.Info().Str("username", admin.Username).Msg("administrator account created")
	return true, nil
}

// ListDepartments returns the departments offered at registration.
func (s *AuthService) ListDepartments(ctx context.Context) ([]models.Setor, error) {
	setores, err := s.setorRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}
	return setores, nil
}

func (s *AuthService) ensureAvailable(ctx context.Context, username, email string) error {
	if _, err := s.userRepo.FindByUsername(ctx, username); err == nil {
		return ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check username: %w", err)
	}

	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check email: %w", err)
	}

	return nil
}

func registrationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	switch verrs[0].Field() {
	case "Username":
		return ErrInvalidUsername
	case "Email":
		return ErrInvalidEmail
	case "Password":
		if verrs[0].Tag() == "max" {
			return ErrPasswordTooLong
		}
		return ErrPasswordTooShort
	case "ConfirmPassword":
		return ErrPasswordMismatch
	default:
		return ErrDepartmentRequired
	}
}

func checkNewPassword(password, confirm string) error {
	if len(password) < constants.MinPasswordLength {
		return ErrPasswordTooShort
	}
	if len(password) > constants.MaxPasswordBytes {
		return ErrPasswordTooLong
	}
	if password != confirm {
		return ErrPasswordMismatch
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", ErrFailedToHashPassword
	}
	return string(hash), nil
}
