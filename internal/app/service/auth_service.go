package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"learnhub/internal/common"
	"learnhub/internal/common/security"
	"learnhub/internal/domain/model"
	"learnhub/internal/domain/repository"
	"learnhub/internal/platform/config"
	"learnhub/internal/platform/mailer"
)

type AuthService struct {
	userRepo repository.UserRepository
	tokens   *security.TokenIssuer
	mail     mailer.Mailer
	cfg      *config.Config
	logger   *slog.Logger
	validate *validator.Validate
}

func NewAuthService(
	userRepo repository.UserRepository,
	tokens *security.TokenIssuer,
	mail mailer.Mailer,
	cfg *config.Config,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
		mail:     mail,
		cfg:      cfg,
		logger:   logger,
		validate: validator.New(),
	}
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

// Register creates an unverified account and emails a verification
// link. If the email cannot be sent the token fields are rolled back
// so the account stays in a retryable state; the user row itself is
// kept.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) error {
	if err := s.validate.Struct(req); err != nil {
		return fmt.Errorf("%s: %w", err.Error(), common.ErrValidation)
	}

	hashedPassword, err := security.HashPassword(req.Password, s.cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:             uuid.NewString(),
		Name:           req.Name,
		Email:          req.Email,
		HashedPassword: hashedPassword,
		Role:           model.RoleUser, // Default role
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return s.issueAndMailToken(ctx, user.ID, s.cfg.VerifyTokenTTL,
		s.userRepo.SetEmailVerifyToken,
		s.userRepo.ClearEmailVerifyToken,
		func(plaintext string) mailer.Message {
			return s.verificationMessage(user, plaintext)
		},
	)
}

// Login requires a matching email, a matching password and a verified
// email address. Unknown email and wrong password collapse into the
// same error so user existence does not leak; unverified is distinct
// because the caller already knows their own email is registered.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("please provide an email and password: %w", common.ErrValidation)
	}

	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !security.CheckPasswordHash(req.Password, user.HashedPassword) {
		return nil, common.ErrInvalidCredentials
	}

	if !user.EmailVerified {
		return nil, common.ErrEmailNotVerified
	}

	return s.tokenResponse(user)
}

// VerifyEmail consumes a plaintext verification token. Success marks
// the account verified, clears the token fields and signs the user in.
func (s *AuthService) VerifyEmail(ctx context.Context, plaintext string) (*AuthResponse, error) {
	hash := security.MatchOneTimeToken(plaintext)

	user, err := s.userRepo.FindByVerifyTokenHash(ctx, hash)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("invalid or expired verification token: %w", common.ErrInvalidOrExpired)
		}
		return nil, fmt.Errorf("failed to look up verification token: %w", err)
	}

	if err := s.userRepo.MarkEmailVerified(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("failed to mark email verified: %w", err)
	}
	user.EmailVerified = true

	return s.tokenResponse(user)
}

// ForgotPassword issues a reset token and emails a reset link. The
// email is supplied by the caller, so an unknown address is reported
// as not found rather than obfuscated.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return fmt.Errorf("there is no user with that email: %w", common.ErrNotFound)
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	return s.issueAndMailToken(ctx, user.ID, s.cfg.ResetTokenTTL,
		s.userRepo.SetResetPasswordToken,
		s.userRepo.ClearResetPasswordToken,
		func(plaintext string) mailer.Message {
			return s.resetMessage(user, plaintext)
		},
	)
}

// ResetPassword consumes a plaintext reset token, stores the new
// password hash and signs the user in.
func (s *AuthService) ResetPassword(ctx context.Context, plaintext, newPassword string) (*AuthResponse, error) {
	if len(newPassword) < 6 {
		return nil, fmt.Errorf("password must be at least 6 characters: %w", common.ErrValidation)
	}

	hash := security.MatchOneTimeToken(plaintext)
	user, err := s.userRepo.FindByResetTokenHash(ctx, hash)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("invalid or expired reset token: %w", common.ErrInvalidOrExpired)
		}
		return nil, fmt.Errorf("failed to look up reset token: %w", err)
	}

	hashedPassword, err := security.HashPassword(newPassword, s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, user.ID, hashedPassword); err != nil {
		return nil, fmt.Errorf("failed to update password: %w", err)
	}

	return s.tokenResponse(user)
}

// UpdatePassword changes the password of an authenticated user after
// checking the current one.
func (s *AuthService) UpdatePassword(ctx context.Context, userID, currentPassword, newPassword string) (*AuthResponse, error) {
	if len(newPassword) < 6 {
		return nil, fmt.Errorf("password must be at least 6 characters: %w", common.ErrValidation)
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !security.CheckPasswordHash(currentPassword, user.HashedPassword) {
		return nil, fmt.Errorf("password is incorrect: %w", common.ErrInvalidCredentials)
	}

	hashedPassword, err := security.HashPassword(newPassword, s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, user.ID, hashedPassword); err != nil {
		return nil, fmt.Errorf("failed to update password: %w", err)
	}

	return s.tokenResponse(user)
}

type UpdateDetailsRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

func (s *AuthService) UpdateDetails(ctx context.Context, userID string, req UpdateDetailsRequest) (*model.User, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), common.ErrValidation)
	}
	if err := s.userRepo.UpdateDetails(ctx, userID, req.Name, req.Email); err != nil {
		return nil, err
	}
	return s.userRepo.FindByID(ctx, userID)
}

func (s *AuthService) Me(ctx context.Context, userID string) (*model.User, error) {
	return s.userRepo.FindByID(ctx, userID)
}

// issueAndMailToken is the shared issue-persist-email primitive used
// by both registration and forgot-password. If mail dispatch fails the
// persisted token fields are cleared again before the error is
// returned, leaving the account consistent and retryable.
func (s *AuthService) issueAndMailToken(
	ctx context.Context,
	userID string,
	ttl time.Duration,
	persist func(ctx context.Context, id, tokenHash string, expire time.Time) error,
	rollback func(ctx context.Context, id string) error,
	compose func(plaintext string) mailer.Message,
) error {
	token, err := security.IssueOneTimeToken(ttl)
	if err != nil {
		return fmt.Errorf("failed to issue token: %w", err)
	}

	if err := persist(ctx, userID, token.Hash, token.ExpiresAt); err != nil {
		return fmt.Errorf("failed to persist token: %w", err)
	}

	if err := s.mail.Send(ctx, compose(token.Plaintext)); err != nil {
		s.logger.Error("token email dispatch failed", "user_id", userID, "error", err)
		if rbErr := rollback(ctx, userID); rbErr != nil {
			s.logger.Error("token rollback failed", "user_id", userID, "error", rbErr)
		}
		return fmt.Errorf("email could not be sent: %w", common.ErrEmailDeliveryFailed)
	}
	return nil
}

func (s *AuthService) tokenResponse(user *model.User) (*AuthResponse, error) {
	token, err := s.tokens.IssueSessionToken(user.ID, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	user.HashedPassword = "" // Clear password before returning
	return &AuthResponse{User: user, Token: token}, nil
}

func (s *AuthService) verificationMessage(user *model.User, plaintext string) mailer.Message {
	verifyURL := fmt.Sprintf("%s/verify-email?token=%s", s.cfg.FrontendURL, plaintext)
	return mailer.Message{
		To:       user.Email,
		Subject:  "Verify your email",
		TextBody: "Please verify your email by clicking the following link: " + verifyURL,
		HTMLBody: fmt.Sprintf(`<h2>Verify your email</h2>
<p>Hi %s,</p>
<p>Thanks for registering. Please confirm this email address to activate your account.</p>
<p><a href="%s">Verify Email</a></p>
<p>This link will expire in 24 hours.</p>`, user.Name, verifyURL),
	}
}

func (s *AuthService) resetMessage(user *model.User, plaintext string) mailer.Message {
	resetURL := fmt.Sprintf("%s/reset-password?token=%s", s.cfg.FrontendURL, plaintext)
	return mailer.Message{
		To:       user.Email,
		Subject:  "Password reset token",
		TextBody: "You are receiving this email because you (or someone else) has requested the reset of a password. Follow this link to set a new password: " + resetURL,
		HTMLBody: fmt.Sprintf(`<h2>Password reset</h2>
<p>You requested a password reset. Click the link below to set a new password:</p>
<p><a href="%s">Reset Password</a></p>
<p>If you did not request this, please ignore this email.</p>`, resetURL),
	}
}
