package usecase

import (
	"context"
	"testing"

	"github.com/sc619/authd/internal/auth/entity"
)

func TestPasswordReset(t *testing.T) {

	t.Run("UnknownEmail", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)

		// Act
		err := env.uc.PasswordReset(context.Background(), PasswordResetInput{
			Email:       "ghost@example.com",
			OTP:         "1234567",
			NewPassword: "new-secret-1",
		})

		// Assert
		if !isBusinessError(err, "No account found") {
			t.Fatalf("expected no-account error, got %v", err)
		}
	})

	t.Run("WrongCode", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		ctx := context.Background()
		env.seedUser(t, entity.User{ID: 5, Email: "user@example.com", IsActive: true})
		if _, err := env.uc.issueOTP(ctx, entity.KindEmail, "user@example.com"); err != nil {
			t.Fatalf("issue: %v", err)
		}

		// Act
		err := env.uc.PasswordReset(ctx, PasswordResetInput{
			Email:       "user@example.com",
			OTP:         "0000000",
			NewPassword: "new-secret-1",
		})

		// Assert
		if !isBusinessError(err, "Incorrect code") {
			t.Fatalf("expected mismatch error, got %v", err)
		}
	})

	t.Run("Success", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		ctx := context.Background()
		old, err := env.bcrypt.Hash("old-secret-1")
		if err != nil {
			t.Fatalf("hash: %v", err)
		}
		user := env.seedUser(t, entity.User{
			ID:       5,
			Email:    "user@example.com",
			Password: string(old),
			IsActive: true,
		})
		if _, err := env.uc.issueOTP(ctx, entity.KindEmail, user.Email); err != nil {
			t.Fatalf("issue: %v", err)
		}
		code := env.otpCode(t, user.Email)

		// Act
		if err := env.uc.PasswordReset(ctx, PasswordResetInput{
			Email:       user.Email,
			OTP:         code,
			NewPassword: "new-secret-1",
		}); err != nil {
			t.Fatalf("reset: %v", err)
		}

		// Assert
		stored, err := env.db.GetUserByID(ctx, user.ID)
		if err != nil {
			t.Fatalf("get user: %v", err)
		}
		if !env.bcrypt.Verify(stored.Password, "new-secret-1") {
			t.Fatalf("new password must verify")
		}
		if env.bcrypt.Verify(stored.Password, "old-secret-1") {
			t.Fatalf("old password must no longer verify")
		}
	})

	t.Run("ShortPasswordRejected", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)

		// Act
		err := env.uc.PasswordReset(context.Background(), PasswordResetInput{
			Email:       "user@example.com",
			OTP:         "1234567",
			NewPassword: "short",
		})

		// Assert
		if err == nil {
			t.Fatalf("expected validation rejection")
		}
	})
}
