package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/sc619/authd/internal/pkg/goerror"
)

type PasswordResetInput struct {
	Email       string `validate:"required,email"`
	OTP         string `validate:"required"`
	NewPassword string `validate:"required,password"`
}

// PasswordReset sets a new password after the email destination proves
// control through a passcode. The plaintext never reaches storage.
func (s *Usecase) PasswordReset(ctx context.Context, in PasswordResetInput) error {
	ctx, span := s.startSpan(ctx, "PasswordReset")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	user, err := s.repoDB.GetUserByEmail(ctx, email)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "password reset for unknown email", "email", email)
		return goerror.NewBusiness("No account found for this email", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by email", "email", email, "error", err)
		return goerror.NewServer(err)
	}

	out, err := s.validateOTP(ctx, email, in.OTP)
	if err != nil {
		return err
	}
	if !out.OK {
		return otpMismatchError(out)
	}

	hashed, err := s.bcrypt.Hash(in.NewPassword)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash new password", "user_id", user.ID, "error", err)
		return goerror.NewServer(err)
	}

	if err := s.repoDB.UpdateUserPassword(ctx, user.ID, string(hashed)); err != nil {
		slog.ErrorContext(ctx, "failed to repo update password", "user_id", user.ID, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}
