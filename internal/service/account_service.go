package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"accounts-be/internal/apperrors"
	"accounts-be/internal/jwt"
	"accounts-be/internal/mailer"
	"accounts-be/internal/models"
	"accounts-be/internal/password"
	"accounts-be/internal/repository"
	"accounts-be/internal/token"
)

// resetTokenTTL is how long a password-reset token stays valid.
// Verification tokens deliberately have no expiry.
const resetTokenTTL = time.Hour

// emailTimeout bounds a single outbound email delivery attempt.
const emailTimeout = 10 * time.Second

// Identical responses for distinct failure causes, so a caller cannot probe
// which part of the credential was wrong.
var (
	errInvalidLogin      = apperrors.InvalidCredentials("Invalid email or password")
	errInvalidResetToken = apperrors.InvalidCredentials("Invalid or expired token")
)

// AccountService defines the interface for the account lifecycle business logic
type AccountService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.RegisterResponse, error)
	VerifyEmail(ctx context.Context, verificationToken string) error
	Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error)
	GetProfile(ctx context.Context, userID string) (*models.UserResponse, error)
	UpdateProfile(ctx context.Context, userID string, req *models.UpdateProfileRequest) (*models.UserResponse, error)
	DeleteProfile(ctx context.Context, userID string) error
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, resetToken, newPassword string) error
}

type accountService struct {
	userRepo    repository.UserRepository
	jwtService  *jwt.JWTService
	mailer      mailer.Mailer
	frontendURL string
}

// NewAccountService creates a new account service
func NewAccountService(userRepo repository.UserRepository, jwtService *jwt.JWTService, m mailer.Mailer, frontendURL string) AccountService {
	return &accountService{
		userRepo:    userRepo,
		jwtService:  jwtService,
		mailer:      m,
		frontendURL: frontendURL,
	}
}

// Register creates a new unverified user and emails a verification link.
func (s *accountService) Register(ctx context.Context, req *models.RegisterRequest) (*models.RegisterResponse, error) {
	passwordHash, err := password.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	verificationToken, err := token.Generate()
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.Create(ctx, req.Name, req.Email, passwordHash, verificationToken)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperrors.Conflict("User already exists")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.sendAsync(user.Email, "Verify your email",
		fmt.Sprintf("Welcome, %s!\n\nPlease verify your email by visiting the link below:\n\n%s/verify-email?token=%s\n",
			user.Name, s.frontendURL, verificationToken))

	return &models.RegisterResponse{
		Message: "User registered successfully",
		User: models.UserResponse{
			ID:    user.ID,
			Name:  user.Name,
			Email: user.Email,
		},
	}, nil
}

// VerifyEmail marks the user holding the token as verified. The token is
// cleared in the same store update, so it cannot be replayed.
func (s *accountService) VerifyEmail(ctx context.Context, verificationToken string) error {
	_, err := s.userRepo.ConsumeVerificationToken(ctx, verificationToken)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.InvalidCredentials("Invalid token")
		}
		return fmt.Errorf("failed to verify email: %w", err)
	}
	return nil
}

// Login authenticates a user and issues a session token. Unknown email and
// wrong password fail with the same error.
func (s *accountService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errInvalidLogin
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !password.Verify(req.Password, user.PasswordHash) {
		return nil, errInvalidLogin
	}

	if !user.IsVerified {
		return nil, apperrors.Forbidden("Please verify your email before logging in")
	}

	sessionToken, err := s.jwtService.GenerateToken(user.ID, user.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &models.LoginResponse{
		Message: "Login successful",
		Token:   sessionToken,
		User: models.UserResponse{
			ID:    user.ID,
			Name:  user.Name,
			Email: user.Email,
		},
	}, nil
}

// GetProfile returns the public view of the user behind a session token.
func (s *accountService) GetProfile(ctx context.Context, userID string) (*models.UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("User not found")
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return &models.UserResponse{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
	}, nil
}

// UpdateProfile applies name/email changes. Changing the email requires the
// account to already be verified.
func (s *accountService) UpdateProfile(ctx context.Context, userID string, req *models.UpdateProfileRequest) (*models.UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("User not found")
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	name := user.Name
	if req.Name != nil {
		name = *req.Name
	}

	email := user.Email
	if req.Email != nil && *req.Email != user.Email {
		if !user.IsVerified {
			return nil, apperrors.Forbidden("Please verify your email before changing it")
		}
		email = *req.Email
	}

	updated, err := s.userRepo.UpdateProfile(ctx, userID, name, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("User not found")
		}
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperrors.Conflict("Email already in use")
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return &models.UserResponse{
		ID:    updated.ID,
		Name:  updated.Name,
		Email: updated.Email,
	}, nil
}

// DeleteProfile permanently removes the user record.
func (s *accountService) DeleteProfile(ctx context.Context, userID string) error {
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("User not found")
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// RequestPasswordReset issues a reset token for a verified account and emails
// the reset link. A newer request overwrites any outstanding token.
func (s *accountService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("User not found")
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	if !user.IsVerified {
		return apperrors.Forbidden("Please verify your email before requesting a password reset")
	}

	resetToken, err := token.Generate()
	if err != nil {
		return err
	}

	expiry := time.Now().Add(resetTokenTTL)
	if err := s.userRepo.SetResetToken(ctx, user.ID, resetToken, expiry); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("User not found")
		}
		return fmt.Errorf("failed to set reset token: %w", err)
	}

	s.sendAsync(user.Email, "Password reset",
		fmt.Sprintf("Hi %s,\n\nYou can reset your password within the next hour by visiting the link below:\n\n%s/reset-password?token=%s\n\nIf you did not request this, you can ignore this email.\n",
			user.Name, s.frontendURL, resetToken))

	return nil
}

// ResetPassword sets a new password for the user holding an unexpired reset
// token. Missing and expired tokens fail with the same error, and a consumed
// token is cleared in the same update that applies the new hash.
func (s *accountService) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	passwordHash, err := password.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	_, err = s.userRepo.ConsumeResetToken(ctx, resetToken, time.Now(), passwordHash)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errInvalidResetToken
		}
		return fmt.Errorf("failed to reset password: %w", err)
	}
	return nil
}

// sendAsync delivers an email on a detached goroutine. Delivery failures are
// logged but never fail the request that triggered them.
func (s *accountService) sendAsync(to, subject, body string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), emailTimeout)
		defer cancel()
		if err := s.mailer.Send(ctx, to, subject, body); err != nil {
			log.Printf("failed to send email to %s: %v", to, err)
		}
	}()
}
