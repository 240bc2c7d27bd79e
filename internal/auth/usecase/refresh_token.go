package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sc619/authd/internal/pkg/goerror"
	"github.com/sc619/authd/internal/pkg/jwt"
)

type RefreshTokenInput struct {
	RefreshToken string `validate:"required"`
}

type RefreshTokenOutput struct {
	AccessToken  string
	RefreshToken string
}

// RefreshToken mints a new access token against an existing auth transaction.
// The audit row is updated in place; the refresh token itself is not rotated.
func (s *Usecase) RefreshToken(ctx context.Context, in RefreshTokenInput) (*RefreshTokenOutput, error) {
	ctx, span := s.startSpan(ctx, "RefreshToken")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	claims, err := s.jwt.Verify(in.RefreshToken)
	if err != nil {
		slog.WarnContext(ctx, "refresh token rejected", "error", err)
		return nil, goerror.NewBusiness("Invalid or expired refresh token", goerror.CodeUnauthorized)
	}
	if claims.TokenUse != jwt.UseRefresh {
		slog.WarnContext(ctx, "token is not a refresh token", "user_id", claims.UserID)
		return nil, goerror.NewBusiness("Invalid or expired refresh token", goerror.CodeUnauthorized)
	}

	tx, err := s.repoDB.GetAuthTransactionByRefreshToken(ctx, in.RefreshToken)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "no auth transaction for refresh token", "user_id", claims.UserID)
		return nil, goerror.NewBusiness("Session not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get auth transaction", "user_id", claims.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	user, err := s.repoDB.GetUserByID(ctx, tx.CreatedBy)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, goerror.NewBusiness("Session not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user", "user_id", tx.CreatedBy, "error", err)
		return nil, goerror.NewServer(err)
	}

	access, accessExp, err := s.jwt.Generate(user.ID, user.Email, user.Mobile, user.FullName())
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate access token", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if err := s.repoDB.UpdateAuthTransactionToken(ctx, tx.ID, access, accessExp); err != nil {
		slog.ErrorContext(ctx, "failed to repo update auth transaction", "id", tx.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &RefreshTokenOutput{AccessToken: access, RefreshToken: in.RefreshToken}, nil
}
