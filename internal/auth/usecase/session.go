package usecase

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/sc619/authd/internal/auth/entity"
	"github.com/sc619/authd/internal/pkg/goerror"
)

type sessionTokens struct {
	AccessToken  string
	RefreshToken string
}

// loginUser mints the token pair and records the auth transaction audit row.
// The session hash binds the session to the current password hash, so a
// password change invalidates it.
func (s *Usecase) loginUser(ctx context.Context, user *entity.User, clientIP string) (*sessionTokens, error) {
	access, accessExp, err := s.jwt.Generate(user.ID, user.Email, user.Mobile, user.FullName())
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate access token", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	refresh, _, err := s.jwt.GenerateRefresh(user.ID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate refresh token", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	sessionHash, err := s.hmac.Hash(strconv.FormatInt(user.ID, 10) + ":" + user.Password)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash session", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	now := s.clock.Now()
	if err := s.repoDB.UpdateUserLastLogin(ctx, user.ID, now); err != nil {
		slog.ErrorContext(ctx, "failed to repo update last login", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if err := s.repoDB.CreateAuthTransaction(ctx, entity.AuthTransaction{
		ID:           s.uid.Generate(),
		CreatedBy:    user.ID,
		IPAddress:    clientIP,
		Token:        access,
		RefreshToken: refresh,
		SessionHash:  string(sessionHash),
		ExpiresAt:    accessExp,
		CreateDate:   now,
		UpdateDate:   now,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to repo create auth transaction", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	s.goroutine.Go(context.WithoutCancel(ctx), func(ctx context.Context) error {
		return s.repoMessaging.PublishUserLoggedIn(ctx, UserLoggedInEvent{
			UserID:    user.ID,
			Email:     user.Email,
			Mobile:    user.Mobile,
			IPAddress: clientIP,
		})
	})

	return &sessionTokens{AccessToken: access, RefreshToken: refresh}, nil
}
