package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/sc619/authd/internal/auth/entity"
)

const otpColumns = `destination, kind, code, is_validated, remaining_attempts, send_counter, resend_not_before, created_at, updated_at`

func scanOTP(row pgx.Row) (*entity.OTPRecord, error) {
	var rec entity.OTPRecord
	err := row.Scan(
		&rec.Destination, &rec.Kind, &rec.Code, &rec.IsValidated,
		&rec.RemainingAttempts, &rec.SendCounter, &rec.ResendNotBefore,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *DB) GetOTP(ctx context.Context, destination string) (rec *entity.OTPRecord, err error) {
	ctx, span := s.startSpan(ctx, "GetOTP")
	defer func() { s.endSpan(span, err) }()

	query := `SELECT ` + otpColumns + ` FROM otp_validations WHERE destination = $1`
	rec, err = scanOTP(s.conn.QueryRow(ctx, query, destination))
	if err != nil {
		return nil, s.mapError(err)
	}
	return rec, nil
}

func (s *DB) GetActiveOTP(ctx context.Context, destination string) (rec *entity.OTPRecord, err error) {
	ctx, span := s.startSpan(ctx, "GetActiveOTP")
	defer func() { s.endSpan(span, err) }()

	query := `SELECT ` + otpColumns + ` FROM otp_validations WHERE destination = $1 AND is_validated = FALSE`
	rec, err = scanOTP(s.conn.QueryRow(ctx, query, destination))
	if err != nil {
		return nil, s.mapError(err)
	}
	return rec, nil
}

func (s *DB) IsOTPCodeActive(ctx context.Context, code string) (taken bool, err error) {
	ctx, span := s.startSpan(ctx, "IsOTPCodeActive")
	defer func() { s.endSpan(span, err) }()

	query := `SELECT EXISTS(SELECT 1 FROM otp_validations WHERE code = $1 AND is_validated = FALSE)`
	if err = s.conn.QueryRow(ctx, query, code).Scan(&taken); err != nil {
		return false, s.mapError(err)
	}
	return taken, nil
}

func (s *DB) UpsertOTP(ctx context.Context, rec entity.OTPRecord) (err error) {
	ctx, span := s.startSpan(ctx, "UpsertOTP")
	defer func() { s.endSpan(span, err) }()

	query := `
		INSERT INTO otp_validations (destination, kind, code, is_validated, remaining_attempts, send_counter, resend_not_before, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (destination) DO UPDATE SET
			kind = EXCLUDED.kind,
			code = EXCLUDED.code,
			is_validated = EXCLUDED.is_validated,
			remaining_attempts = EXCLUDED.remaining_attempts,
			send_counter = EXCLUDED.send_counter,
			resend_not_before = EXCLUDED.resend_not_before,
			updated_at = EXCLUDED.updated_at`
	_, err = s.conn.Exec(ctx, query,
		rec.Destination, rec.Kind, rec.Code, rec.IsValidated,
		rec.RemainingAttempts, rec.SendCounter, rec.ResendNotBefore,
		rec.CreatedAt, rec.UpdatedAt,
	)
	return s.mapError(err)
}
