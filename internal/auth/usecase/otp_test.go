package usecase

import (
	"context"
	"testing"

	"github.com/sc619/authd/internal/auth/entity"
)

func TestOTP(t *testing.T) {

	t.Run("RequestSendsCode", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)

		// Act
		out, err := env.uc.OTP(context.Background(), OTPInput{Destination: "user@example.com"})

		// Assert
		if err != nil {
			t.Fatalf("request: %v", err)
		}
		if out.Msg == "" {
			t.Fatalf("expected delivery message")
		}
		if out.AccessToken != "" || out.RefreshToken != "" {
			t.Fatalf("request must not mint tokens")
		}
		if env.notify.callCount() != 1 {
			t.Fatalf("expected one gateway call, got %d", env.notify.callCount())
		}
	})

	t.Run("UnrecognizedDestination", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)

		// Act
		out, err := env.uc.OTP(context.Background(), OTPInput{Destination: "not-an-address"})

		// Assert
		if err == nil || out != nil {
			t.Fatalf("expected rejection, got %+v", out)
		}
	})

	t.Run("LoginForUnknownDestination", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)

		// Act
		_, err := env.uc.OTP(context.Background(), OTPInput{
			Destination: "ghost@example.com",
			IsLogin:     true,
		})

		// Assert
		if !isBusinessError(err, "No account found") {
			t.Fatalf("expected no-account error, got %v", err)
		}
		if env.notify.callCount() != 0 {
			t.Fatalf("no code may be sent for an unknown login destination")
		}
	})

	t.Run("LoginRoundTrip", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		ctx := context.Background()
		user := env.seedUser(t, entity.User{
			ID:       7,
			Username: "+15550001111",
			Email:    "user@example.com",
			Mobile:   "+15550001111",
			Name:     "Dana",
			LastName: "Reyes",
			Password: "irrelevant",
			IsActive: true,
		})
		if _, err := env.uc.OTP(ctx, OTPInput{Destination: user.Email}); err != nil {
			t.Fatalf("request: %v", err)
		}
		code := env.otpCode(t, user.Email)

		// Act
		out, err := env.uc.OTP(ctx, OTPInput{
			Destination: user.Email,
			VerifyOTP:   code,
			IsLogin:     true,
			ClientIP:    "203.0.113.9",
		})

		// Assert
		if err != nil {
			t.Fatalf("verify: %v", err)
		}
		if out.AccessToken == "" || out.RefreshToken == "" {
			t.Fatalf("expected token pair, got %+v", out)
		}
		if err := env.goroutine.Wait(); err != nil {
			t.Fatalf("background publish: %v", err)
		}
		if len(env.messaging.loggedIn) != 1 || env.messaging.loggedIn[0].IPAddress != "203.0.113.9" {
			t.Fatalf("expected login event with client IP, got %+v", env.messaging.loggedIn)
		}

		env.db.mu.Lock()
		defer env.db.mu.Unlock()
		if len(env.db.transactions) != 1 {
			t.Fatalf("expected one auth transaction, got %d", len(env.db.transactions))
		}
		for _, tx := range env.db.transactions {
			if tx.Token != out.AccessToken || tx.RefreshToken != out.RefreshToken {
				t.Fatalf("auth transaction must record the issued tokens")
			}
			if tx.CreatedBy != user.ID {
				t.Fatalf("auth transaction user mismatch: %d", tx.CreatedBy)
			}
		}
		if env.db.users[user.ID].LastLogin == nil {
			t.Fatalf("expected last login to be stamped")
		}
	})

	t.Run("WrongCodeReportsAttemptsLeft", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		ctx := context.Background()
		if _, err := env.uc.OTP(ctx, OTPInput{Destination: "user@example.com"}); err != nil {
			t.Fatalf("request: %v", err)
		}

		// Act
		_, err := env.uc.OTP(ctx, OTPInput{
			Destination: "user@example.com",
			VerifyOTP:   "0000000",
		})

		// Assert
		if !isBusinessError(err, "2 attempt(s) remaining") {
			t.Fatalf("expected attempts-remaining message, got %v", err)
		}
	})

	t.Run("ConfirmSecondaryMobile", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		ctx := context.Background()
		user := env.seedUser(t, entity.User{
			ID:       3,
			Email:    "owner@example.com",
			Mobile:   "+15550001111",
			IsActive: true,
		})
		env.db.mu.Lock()
		env.db.mobiles[40] = entity.ExtraMobile{ID: 40, UserID: user.ID, Mobile: "+15550002222"}
		env.db.mu.Unlock()

		if _, err := env.uc.OTP(ctx, OTPInput{
			Destination:   "+15550002222",
			ExtraMobileID: 40,
		}); err != nil {
			t.Fatalf("request: %v", err)
		}
		code := env.otpCode(t, "+15550002222")

		// Act
		out, err := env.uc.OTP(ctx, OTPInput{
			Destination:   "+15550002222",
			VerifyOTP:     code,
			ExtraMobileID: 40,
		})

		// Assert
		if err != nil {
			t.Fatalf("verify: %v", err)
		}
		if out.Msg != "Mobile number confirmed" {
			t.Fatalf("unexpected message %q", out.Msg)
		}
		env.db.mu.Lock()
		defer env.db.mu.Unlock()
		if !env.db.mobiles[40].Confirmed {
			t.Fatalf("secondary mobile must be confirmed")
		}
	})

	t.Run("SecondaryMobileMismatch", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		env.db.mu.Lock()
		env.db.mobiles[40] = entity.ExtraMobile{ID: 40, UserID: 3, Mobile: "+15550002222"}
		env.db.mu.Unlock()

		// Act: the referenced record belongs to a different number.
		_, err := env.uc.OTP(context.Background(), OTPInput{
			Destination:   "+15550003333",
			ExtraMobileID: 40,
		})

		// Assert
		if err == nil {
			t.Fatalf("expected mismatch rejection")
		}
	})

	t.Run("SecondaryMobileUnknown", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)

		// Act
		_, err := env.uc.OTP(context.Background(), OTPInput{
			Destination:   "+15550002222",
			ExtraMobileID: 99,
		})

		// Assert
		if !isBusinessError(err, "Secondary mobile number not found") {
			t.Fatalf("expected not-found error, got %v", err)
		}
	})
}
