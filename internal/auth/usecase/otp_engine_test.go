package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sc619/authd/internal/auth/entity"
)

func TestIssueOTP(t *testing.T) {

	t.Run("FreshRecord", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)

		// Act
		rec, err := env.uc.issueOTP(context.Background(), entity.KindEmail, "user@example.com")

		// Assert
		if err != nil {
			t.Fatalf("issue: %v", err)
		}
		if len(rec.Code) != 7 {
			t.Fatalf("expected 7-digit code, got %q", rec.Code)
		}
		if strings.Trim(rec.Code, "0123456789") != "" {
			t.Fatalf("expected numeric code, got %q", rec.Code)
		}
		if rec.RemainingAttempts != 3 {
			t.Fatalf("expected full attempt budget, got %d", rec.RemainingAttempts)
		}
		if rec.IsValidated {
			t.Fatalf("fresh record must not be validated")
		}
	})

	t.Run("CooldownKeepsExistingCode", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		ctx := context.Background()
		first, err := env.uc.issueOTP(ctx, entity.KindEmail, "user@example.com")
		if err != nil {
			t.Fatalf("issue: %v", err)
		}
		if _, err := env.uc.sendOTP(ctx, first, ""); err != nil {
			t.Fatalf("send: %v", err)
		}

		// Act: re-issue while the resend cooldown is still running.
		again, err := env.uc.issueOTP(ctx, entity.KindEmail, "user@example.com")

		// Assert
		if err != nil {
			t.Fatalf("re-issue: %v", err)
		}
		if again.Code != first.Code {
			t.Fatalf("expected existing code to survive within cooldown")
		}
	})

	t.Run("AfterCooldownRotatesCode", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		ctx := context.Background()
		first, err := env.uc.issueOTP(ctx, entity.KindEmail, "user@example.com")
		if err != nil {
			t.Fatalf("issue: %v", err)
		}
		if _, err := env.uc.sendOTP(ctx, first, ""); err != nil {
			t.Fatalf("send: %v", err)
		}
		env.clock.Advance(2 * time.Minute)

		// Act
		again, err := env.uc.issueOTP(ctx, entity.KindEmail, "user@example.com")

		// Assert
		if err != nil {
			t.Fatalf("re-issue: %v", err)
		}
		if again.Code == first.Code {
			t.Fatalf("expected a fresh code after the cooldown")
		}
		if again.SendCounter != first.SendCounter {
			t.Fatalf("re-issue must not reset send counter: got %d want %d", again.SendCounter, first.SendCounter)
		}
	})

	t.Run("ConcurrentDistinctDestinations", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		const n = 1000

		// Act
		var wg sync.WaitGroup
		errs := make(chan error, n)
		for i := range n {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, err := env.uc.issueOTP(context.Background(), entity.KindEmail, fmt.Sprintf("user%d@example.com", i))
				errs <- err
			}(i)
		}
		wg.Wait()
		close(errs)

		// Assert
		for err := range errs {
			if err != nil {
				t.Fatalf("concurrent issue: %v", err)
			}
		}
		seen := map[string]string{}
		env.db.mu.Lock()
		defer env.db.mu.Unlock()
		for dest, rec := range env.db.otps {
			if other, dup := seen[rec.Code]; dup {
				t.Fatalf("code %s shared by %s and %s", rec.Code, dest, other)
			}
			seen[rec.Code] = dest
		}
	})
}

func TestSendOTP(t *testing.T) {

	t.Run("AdvancesCooldownAndCounter", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		ctx := context.Background()
		rec, err := env.uc.issueOTP(ctx, entity.KindEmail, "user@example.com")
		if err != nil {
			t.Fatalf("issue: %v", err)
		}

		// Act
		msg, err := env.uc.sendOTP(ctx, rec, "")

		// Assert
		if err != nil {
			t.Fatalf("send: %v", err)
		}
		if msg == "" {
			t.Fatalf("expected delivery message")
		}
		stored, _ := env.db.GetOTP(ctx, "user@example.com")
		if stored.SendCounter != 1 {
			t.Fatalf("expected send counter 1, got %d", stored.SendCounter)
		}
		if !stored.ResendNotBefore.After(env.clock.Now()) {
			t.Fatalf("expected cooldown in the future")
		}
	})

	t.Run("RefusedWithinCooldown", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		ctx := context.Background()
		rec, err := env.uc.issueOTP(ctx, entity.KindEmail, "user@example.com")
		if err != nil {
			t.Fatalf("issue: %v", err)
		}
		if _, err := env.uc.sendOTP(ctx, rec, ""); err != nil {
			t.Fatalf("first send: %v", err)
		}

		// Act
		_, err = env.uc.sendOTP(ctx, rec, "")

		// Assert
		if !isBusinessError(err, "before requesting another code") {
			t.Fatalf("expected cooldown refusal, got %v", err)
		}
		if env.notify.callCount() != 1 {
			t.Fatalf("gateway must not be called during cooldown")
		}
	})

	t.Run("FailedDeliveryKeepsCooldownOpen", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		env.notify.failFor["user@example.com"] = true
		ctx := context.Background()
		rec, err := env.uc.issueOTP(ctx, entity.KindEmail, "user@example.com")
		if err != nil {
			t.Fatalf("issue: %v", err)
		}

		// Act
		_, err = env.uc.sendOTP(ctx, rec, "")

		// Assert
		if err == nil {
			t.Fatalf("expected delivery failure")
		}
		stored, _ := env.db.GetOTP(ctx, "user@example.com")
		if stored.SendCounter != 0 {
			t.Fatalf("failed send must not count, got %d", stored.SendCounter)
		}
		if stored.ResendNotBefore.After(env.clock.Now()) {
			t.Fatalf("failed send must not start the cooldown")
		}
	})

	t.Run("MobileGetsEmailFallback", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		ctx := context.Background()
		rec, err := env.uc.issueOTP(ctx, entity.KindMobile, "+15550001111")
		if err != nil {
			t.Fatalf("issue: %v", err)
		}

		// Act
		if _, err := env.uc.sendOTP(ctx, rec, "user@example.com"); err != nil {
			t.Fatalf("send: %v", err)
		}

		// Assert
		call := env.notify.calls[0]
		if len(call.Fallback) != 1 || call.Fallback[0] != "user@example.com" {
			t.Fatalf("expected email fallback for mobile destination, got %v", call.Fallback)
		}
	})
}

func TestValidateOTP(t *testing.T) {

	t.Run("MatchMarksValidated", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		ctx := context.Background()
		rec, err := env.uc.issueOTP(ctx, entity.KindEmail, "user@example.com")
		if err != nil {
			t.Fatalf("issue: %v", err)
		}

		// Act
		out, err := env.uc.validateOTP(ctx, "user@example.com", rec.Code)

		// Assert
		if err != nil {
			t.Fatalf("validate: %v", err)
		}
		if !out.OK {
			t.Fatalf("expected match")
		}
		stored, _ := env.db.GetOTP(ctx, "user@example.com")
		if !stored.IsValidated {
			t.Fatalf("record must be marked validated")
		}
	})

	t.Run("ValidatedCodeCannotBeReused", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		ctx := context.Background()
		rec, err := env.uc.issueOTP(ctx, entity.KindEmail, "user@example.com")
		if err != nil {
			t.Fatalf("issue: %v", err)
		}
		if _, err := env.uc.validateOTP(ctx, "user@example.com", rec.Code); err != nil {
			t.Fatalf("first validate: %v", err)
		}

		// Act
		_, err = env.uc.validateOTP(ctx, "user@example.com", rec.Code)

		// Assert
		if !isBusinessError(err, "No active code") {
			t.Fatalf("expected no-active-code error, got %v", err)
		}
	})

	t.Run("WrongCodeConsumesAttempt", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		ctx := context.Background()
		if _, err := env.uc.issueOTP(ctx, entity.KindEmail, "user@example.com"); err != nil {
			t.Fatalf("issue: %v", err)
		}

		// Act
		out, err := env.uc.validateOTP(ctx, "user@example.com", "0000000")

		// Assert
		if err != nil {
			t.Fatalf("validate: %v", err)
		}
		if out.OK || out.Reissued {
			t.Fatalf("expected plain mismatch, got %+v", out)
		}
		if out.Remaining != 2 {
			t.Fatalf("expected 2 attempts left, got %d", out.Remaining)
		}
	})

	t.Run("ExhaustionReissuesFreshCode", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		ctx := context.Background()
		rec, err := env.uc.issueOTP(ctx, entity.KindEmail, "user@example.com")
		if err != nil {
			t.Fatalf("issue: %v", err)
		}

		// Act: burn the whole attempt budget.
		var out otpValidation
		for range 3 {
			out, err = env.uc.validateOTP(ctx, "user@example.com", "0000000")
			if err != nil {
				t.Fatalf("validate: %v", err)
			}
		}

		// Assert
		if !out.Reissued {
			t.Fatalf("expected reissue on exhaustion, got %+v", out)
		}
		stored, _ := env.db.GetOTP(ctx, "user@example.com")
		if stored.Code == rec.Code {
			t.Fatalf("expected a replacement code")
		}
		if stored.RemainingAttempts != 3 {
			t.Fatalf("expected attempt budget reset, got %d", stored.RemainingAttempts)
		}
		if stored.ResendNotBefore.After(env.clock.Now()) {
			t.Fatalf("reissued code must be sendable immediately")
		}

		// The old code is dead even if someone replays it.
		replay, err := env.uc.validateOTP(ctx, "user@example.com", rec.Code)
		if err != nil {
			t.Fatalf("replay validate: %v", err)
		}
		if replay.OK {
			t.Fatalf("stale code must not validate")
		}
	})

	t.Run("MatchOnLastAttempt", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		ctx := context.Background()
		rec, err := env.uc.issueOTP(ctx, entity.KindEmail, "user@example.com")
		if err != nil {
			t.Fatalf("issue: %v", err)
		}
		for range 2 {
			if _, err := env.uc.validateOTP(ctx, "user@example.com", "0000000"); err != nil {
				t.Fatalf("validate: %v", err)
			}
		}

		// Act
		out, err := env.uc.validateOTP(ctx, "user@example.com", rec.Code)

		// Assert
		if err != nil {
			t.Fatalf("validate: %v", err)
		}
		if !out.OK {
			t.Fatalf("correct code on the final attempt must validate")
		}
	})
}

func TestAlignOTPCode(t *testing.T) {
	// Arrange
	env := newTestEnv(t)
	ctx := context.Background()
	emailRec, err := env.uc.issueOTP(ctx, entity.KindEmail, "user@example.com")
	if err != nil {
		t.Fatalf("issue email: %v", err)
	}
	mobileRec, err := env.uc.issueOTP(ctx, entity.KindMobile, "+15550001111")
	if err != nil {
		t.Fatalf("issue mobile: %v", err)
	}

	// Act
	if err := env.uc.alignOTPCode(ctx, mobileRec, emailRec.Code); err != nil {
		t.Fatalf("align: %v", err)
	}

	// Assert
	stored, _ := env.db.GetOTP(ctx, "+15550001111")
	if stored.Code != emailRec.Code {
		t.Fatalf("expected both channels to share one code")
	}
}
