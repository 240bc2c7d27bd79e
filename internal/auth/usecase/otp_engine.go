package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/sc619/authd/internal/auth/entity"
	"github.com/sc619/authd/internal/pkg/goerror"
)

const (
	defaultCodeLength    = 7
	defaultCodeAlphabet  = "0123456789"
	defaultAttemptBudget = 3

	// maxCodeGenerationTries bounds the collision-avoidance loop.
	maxCodeGenerationTries = 100
)

// ErrCodeSpaceExhausted is returned when a unique code could not be drawn.
var ErrCodeSpaceExhausted = errors.New("could not generate a unique passcode")

// otpValidation is the outcome of one validation attempt. Exactly one of OK
// and Reissued is set on a terminal transition; otherwise Remaining reports
// the attempts left on the current code.
type otpValidation struct {
	OK        bool
	Reissued  bool
	Remaining int16
}

// issueOTP arms a passcode for the destination. When the resend cooldown is
// still running the existing record is returned untouched; sendOTP enforces
// the cooldown on delivery.
func (s *Usecase) issueOTP(ctx context.Context, kind entity.DestinationKind, destination string) (*entity.OTPRecord, error) {
	var rec *entity.OTPRecord

	err := s.locker.Do(ctx, "otp:"+destination, func(ctx context.Context) error {
		now := s.clock.Now()

		existing, err := s.repoDB.GetOTP(ctx, destination)
		if err != nil && !errors.Is(err, goerror.ErrNotFound) {
			slog.ErrorContext(ctx, "failed to repo get passcode record", "destination", destination, "error", err)
			return goerror.NewServer(err)
		}

		if existing != nil && now.Before(existing.ResendNotBefore) {
			rec = existing
			return nil
		}

		code, err := s.generateCode(ctx)
		if err != nil {
			slog.ErrorContext(ctx, "failed to generate passcode", "destination", destination, "error", err)
			return goerror.NewServer(err)
		}

		fresh := entity.OTPRecord{
			Destination:       destination,
			Kind:              kind,
			Code:              code,
			IsValidated:       false,
			RemainingAttempts: s.attemptBudget(),
			ResendNotBefore:   now.Add(-time.Minute),
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if existing != nil {
			fresh.SendCounter = existing.SendCounter
			fresh.CreatedAt = existing.CreatedAt
		}

		if err := s.repoDB.UpsertOTP(ctx, fresh); err != nil {
			slog.ErrorContext(ctx, "failed to repo upsert passcode record", "destination", destination, "error", err)
			return goerror.NewServer(err)
		}

		rec = &fresh
		return nil
	})
	if err != nil {
		return nil, asUsecaseError(err)
	}

	return rec, nil
}

// sendOTP delivers the current code and advances the resend cooldown. The
// cooldown moves only on confirmed delivery so a failed send can be retried
// immediately. The gateway call happens outside the destination lease.
func (s *Usecase) sendOTP(ctx context.Context, rec *entity.OTPRecord, fallbackEmail string) (string, error) {
	now := s.clock.Now()

	if now.Before(rec.ResendNotBefore) {
		wait := rec.ResendNotBefore.Sub(now).Round(time.Second)
		slog.WarnContext(ctx, "passcode resend refused by cooldown", "destination", rec.Destination, "wait", wait)
		return "", goerror.NewBusiness(
			fmt.Sprintf("Please wait %s before requesting another code", wait),
			goerror.CodeTooManyRequest,
		)
	}

	var fallback []string
	if rec.Kind == entity.KindMobile && fallbackEmail != "" {
		fallback = []string{fallbackEmail}
	}

	message := fmt.Sprintf("Your one-time passcode is %s. Do not share it with anyone.", rec.Code)
	report, err := s.repoNotify.Send(ctx, message, "Your login code", []string{rec.Destination}, fallback)
	if err != nil {
		slog.ErrorContext(ctx, "notification gateway call failed", "destination", rec.Destination, "error", err)
		return "", goerror.NewServer(err)
	}

	if !report.Success {
		slog.WarnContext(ctx, "passcode delivery failed", "destination", rec.Destination, "reason", report.Message)
		return "", goerror.NewBusiness(report.Message, goerror.CodeInternal)
	}

	rec.ResendNotBefore = now.Add(s.cooldown())
	rec.SendCounter++
	rec.UpdatedAt = now
	if err := s.repoDB.UpsertOTP(ctx, *rec); err != nil {
		slog.ErrorContext(ctx, "failed to repo upsert passcode record after send", "destination", rec.Destination, "error", err)
		return "", goerror.NewServer(err)
	}

	return report.Message, nil
}

// validateOTP runs the per-destination state machine for one submitted code.
// An attempt is consumed before the comparison, match or not. Exhausting the
// budget re-arms the destination with a fresh code so a wrong-code streak
// never locks the destination out permanently.
func (s *Usecase) validateOTP(ctx context.Context, destination, submitted string) (otpValidation, error) {
	var out otpValidation

	err := s.locker.Do(ctx, "otp:"+destination, func(ctx context.Context) error {
		now := s.clock.Now()

		rec, err := s.repoDB.GetActiveOTP(ctx, destination)
		if errors.Is(err, goerror.ErrNotFound) {
			slog.WarnContext(ctx, "no active passcode for destination", "destination", destination)
			return goerror.NewBusiness(
				"No active code for this destination. Please request a new one.",
				goerror.CodeNotFound,
			)
		}
		if err != nil {
			slog.ErrorContext(ctx, "failed to repo get active passcode", "destination", destination, "error", err)
			return goerror.NewServer(err)
		}

		rec.RemainingAttempts--
		rec.UpdatedAt = now

		if submitted == rec.Code {
			rec.IsValidated = true
			if err := s.repoDB.UpsertOTP(ctx, *rec); err != nil {
				slog.ErrorContext(ctx, "failed to repo mark passcode validated", "destination", destination, "error", err)
				return goerror.NewServer(err)
			}
			out.OK = true
			return nil
		}

		if rec.RemainingAttempts <= 0 {
			code, err := s.generateCode(ctx)
			if err != nil {
				slog.ErrorContext(ctx, "failed to generate replacement passcode", "destination", destination, "error", err)
				return goerror.NewServer(err)
			}

			rec.Code = code
			rec.IsValidated = false
			rec.RemainingAttempts = s.attemptBudget()
			rec.ResendNotBefore = now.Add(-time.Minute)
			if err := s.repoDB.UpsertOTP(ctx, *rec); err != nil {
				slog.ErrorContext(ctx, "failed to repo upsert reissued passcode", "destination", destination, "error", err)
				return goerror.NewServer(err)
			}

			slog.InfoContext(ctx, "passcode attempt budget exhausted, reissued", "destination", destination)
			out.Reissued = true
			return nil
		}

		if err := s.repoDB.UpsertOTP(ctx, *rec); err != nil {
			slog.ErrorContext(ctx, "failed to repo persist attempt decrement", "destination", destination, "error", err)
			return goerror.NewServer(err)
		}

		out.Remaining = rec.RemainingAttempts
		return nil
	})
	if err != nil {
		return otpValidation{}, asUsecaseError(err)
	}

	return out, nil
}

// alignOTPCode overwrites the record's code so both registration channels
// share one code. The record keeps its own attempt budget and cooldown.
func (s *Usecase) alignOTPCode(ctx context.Context, rec *entity.OTPRecord, code string) error {
	if rec.Code == code {
		return nil
	}

	err := s.locker.Do(ctx, "otp:"+rec.Destination, func(ctx context.Context) error {
		rec.Code = code
		rec.IsValidated = false
		rec.UpdatedAt = s.clock.Now()
		return s.repoDB.UpsertOTP(ctx, *rec)
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to align shared passcode", "destination", rec.Destination, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}

// generateCode draws codes until one does not collide with another currently
// non-validated record.
func (s *Usecase) generateCode(ctx context.Context) (string, error) {
	length := s.cfg.GetInt("otp.length")
	if length <= 0 {
		length = defaultCodeLength
	}
	alphabet := s.cfg.GetString("otp.alphabet")
	if alphabet == "" {
		alphabet = defaultCodeAlphabet
	}

	for range maxCodeGenerationTries {
		code, err := randomCode(alphabet, length)
		if err != nil {
			return "", err
		}

		taken, err := s.repoDB.IsOTPCodeActive(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}

	return "", ErrCodeSpaceExhausted
}

func (s *Usecase) attemptBudget() int16 {
	if n := s.cfg.GetInt("otp.attempts"); n > 0 {
		return int16(n)
	}
	return defaultAttemptBudget
}

func (s *Usecase) cooldown() time.Duration {
	if d := s.cfg.GetMinute("otp.cooldown_minutes"); d > 0 {
		return d
	}
	return time.Minute
}

func randomCode(alphabet string, length int) (string, error) {
	size := big.NewInt(int64(len(alphabet)))
	code := make([]byte, length)
	for i := range code {
		n, err := rand.Int(rand.Reader, size)
		if err != nil {
			return "", err
		}
		code[i] = alphabet[n.Int64()]
	}
	return string(code), nil
}

// asUsecaseError keeps structured errors intact and wraps everything else
// (lock acquisition failures included) as a server error.
func asUsecaseError(err error) error {
	var gerr *goerror.Error
	if errors.As(err, &gerr) {
		return err
	}
	return goerror.NewServer(err)
}
