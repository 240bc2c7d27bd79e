package usecase

import (
	"context"
	"testing"

	"github.com/sc619/authd/internal/auth/entity"
)

func TestLogin(t *testing.T) {

	seed := func(t *testing.T, env *testEnv, active bool) *entity.User {
		t.Helper()
		hashed, err := env.bcrypt.Hash("correct-horse-1")
		if err != nil {
			t.Fatalf("hash: %v", err)
		}
		return env.seedUser(t, entity.User{
			ID:       9,
			Username: "dana",
			Email:    "dana@example.com",
			Mobile:   "+15550001111",
			Name:     "Dana",
			Password: string(hashed),
			IsActive: active,
		})
	}

	t.Run("Success", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		user := seed(t, env, true)

		// Act
		out, err := env.uc.Login(context.Background(), LoginInput{
			Username: "dana",
			Password: "correct-horse-1",
			ClientIP: "203.0.113.9",
		})

		// Assert
		if err != nil {
			t.Fatalf("login: %v", err)
		}
		if out.AccessToken == "" || out.RefreshToken == "" {
			t.Fatalf("expected token pair, got %+v", out)
		}
		if err := env.goroutine.Wait(); err != nil {
			t.Fatalf("background publish: %v", err)
		}
		if len(env.messaging.loggedIn) != 1 || env.messaging.loggedIn[0].UserID != user.ID {
			t.Fatalf("expected login event, got %+v", env.messaging.loggedIn)
		}
	})

	t.Run("WrongPassword", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		seed(t, env, true)

		// Act
		_, err := env.uc.Login(context.Background(), LoginInput{
			Username: "dana",
			Password: "wrong-horse-1",
		})

		// Assert
		if !isBusinessError(err, "Invalid username or password") {
			t.Fatalf("expected credential rejection, got %v", err)
		}
	})

	t.Run("UnknownUsername", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)

		// Act: same message as a wrong password, no account oracle.
		_, err := env.uc.Login(context.Background(), LoginInput{
			Username: "ghost",
			Password: "whatever-1",
		})

		// Assert
		if !isBusinessError(err, "Invalid username or password") {
			t.Fatalf("expected credential rejection, got %v", err)
		}
	})

	t.Run("InactiveAccount", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		seed(t, env, false)

		// Act
		_, err := env.uc.Login(context.Background(), LoginInput{
			Username: "dana",
			Password: "correct-horse-1",
		})

		// Assert
		if !isBusinessError(err, "Account is deactivated") {
			t.Fatalf("expected deactivated rejection, got %v", err)
		}
	})
}
