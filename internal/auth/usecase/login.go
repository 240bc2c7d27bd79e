package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/sc619/authd/internal/pkg/goerror"
)

type LoginInput struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
	ClientIP string
}

type LoginOutput struct {
	AccessToken  string
	RefreshToken string
}

// Login is the password flow. OTP-only accounts carry a placeholder password
// that never verifies, so they fall through to the OTP flow.
func (s *Usecase) Login(ctx context.Context, in LoginInput) (*LoginOutput, error) {
	ctx, span := s.startSpan(ctx, "Login")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	username := strings.TrimSpace(in.Username)
	user, err := s.repoDB.GetUserByUsername(ctx, username)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "user account not found", "username", username)
		return nil, goerror.NewBusiness("Invalid username or password", goerror.CodeUnauthorized)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by username", "username", username, "error", err)
		return nil, goerror.NewServer(err)
	}

	if !user.IsActive {
		slog.WarnContext(ctx, "inactive account attempted login", "user_id", user.ID)
		return nil, goerror.NewBusiness("Account is deactivated", goerror.CodeForbidden)
	}

	if !s.bcrypt.Verify(user.Password, in.Password) {
		slog.WarnContext(ctx, "password user account not match", "user_id", user.ID)
		return nil, goerror.NewBusiness("Invalid username or password", goerror.CodeUnauthorized)
	}

	tokens, err := s.loginUser(ctx, user, in.ClientIP)
	if err != nil {
		return nil, err
	}

	return &LoginOutput{AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken}, nil
}
