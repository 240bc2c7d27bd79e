package usecase

import (
	"context"
	"testing"

	"github.com/sc619/authd/internal/auth/entity"
)

func TestRefreshToken(t *testing.T) {

	login := func(t *testing.T, env *testEnv) (*entity.User, *LoginOutput) {
		t.Helper()
		hashed, err := env.bcrypt.Hash("correct-horse-1")
		if err != nil {
			t.Fatalf("hash: %v", err)
		}
		user := env.seedUser(t, entity.User{
			ID:       9,
			Username: "dana",
			Email:    "dana@example.com",
			Mobile:   "+15550001111",
			Password: string(hashed),
			IsActive: true,
		})
		out, err := env.uc.Login(context.Background(), LoginInput{
			Username: "dana",
			Password: "correct-horse-1",
		})
		if err != nil {
			t.Fatalf("login: %v", err)
		}
		return user, out
	}

	t.Run("GarbageToken", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)

		// Act
		_, err := env.uc.RefreshToken(context.Background(), RefreshTokenInput{
			RefreshToken: "not.a.token",
		})

		// Assert
		if !isBusinessError(err, "Invalid or expired refresh token") {
			t.Fatalf("expected token rejection, got %v", err)
		}
	})

	t.Run("AccessTokenRejected", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		_, tokens := login(t, env)

		// Act: an access token is well formed but carries the wrong use claim.
		_, err := env.uc.RefreshToken(context.Background(), RefreshTokenInput{
			RefreshToken: tokens.AccessToken,
		})

		// Assert
		if !isBusinessError(err, "Invalid or expired refresh token") {
			t.Fatalf("expected token rejection, got %v", err)
		}
	})

	t.Run("NoSessionForToken", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		refresh, _, err := env.uc.jwt.GenerateRefresh(42)
		if err != nil {
			t.Fatalf("generate: %v", err)
		}

		// Act
		_, err = env.uc.RefreshToken(context.Background(), RefreshTokenInput{
			RefreshToken: refresh,
		})

		// Assert
		if !isBusinessError(err, "Session not found") {
			t.Fatalf("expected missing session, got %v", err)
		}
	})

	t.Run("Success", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		_, tokens := login(t, env)

		// Act
		out, err := env.uc.RefreshToken(context.Background(), RefreshTokenInput{
			RefreshToken: tokens.RefreshToken,
		})

		// Assert
		if err != nil {
			t.Fatalf("refresh: %v", err)
		}
		if out.AccessToken == "" {
			t.Fatalf("expected a new access token")
		}
		if out.RefreshToken != tokens.RefreshToken {
			t.Fatalf("refresh token must not rotate")
		}

		env.db.mu.Lock()
		defer env.db.mu.Unlock()
		for _, tx := range env.db.transactions {
			if tx.Token != out.AccessToken {
				t.Fatalf("audit row must carry the fresh access token")
			}
		}
	})
}
