package db

import (
	"context"
	"time"

	"github.com/sc619/authd/internal/auth/entity"
	"github.com/sc619/authd/internal/pkg/goerror"
)

func (s *DB) CreateAuthTransaction(ctx context.Context, in entity.AuthTransaction) (err error) {
	ctx, span := s.startSpan(ctx, "CreateAuthTransaction")
	defer func() { s.endSpan(span, err) }()

	query := `
		INSERT INTO auth_transactions (id, created_by, ip_address, token, refresh_token, session_hash, expires_at, create_date, update_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err = s.conn.Exec(ctx, query,
		in.ID, in.CreatedBy, in.IPAddress, in.Token, in.RefreshToken,
		in.SessionHash, in.ExpiresAt, in.CreateDate, in.UpdateDate,
	)
	return s.mapError(err)
}

func (s *DB) GetAuthTransactionByRefreshToken(ctx context.Context, token string) (tx *entity.AuthTransaction, err error) {
	ctx, span := s.startSpan(ctx, "GetAuthTransactionByRefreshToken")
	defer func() { s.endSpan(span, err) }()

	query := `
		SELECT id, created_by, ip_address, token, refresh_token, session_hash, expires_at, create_date, update_date
		FROM auth_transactions
		WHERE refresh_token = $1`

	var out entity.AuthTransaction
	err = s.conn.QueryRow(ctx, query, token).Scan(
		&out.ID, &out.CreatedBy, &out.IPAddress, &out.Token, &out.RefreshToken,
		&out.SessionHash, &out.ExpiresAt, &out.CreateDate, &out.UpdateDate,
	)
	if err != nil {
		return nil, s.mapError(err)
	}
	return &out, nil
}

func (s *DB) UpdateAuthTransactionToken(ctx context.Context, id int64, token string, expiresAt time.Time) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateAuthTransactionToken")
	defer func() { s.endSpan(span, err) }()

	query := `UPDATE auth_transactions SET token = $2, expires_at = $3, update_date = NOW() WHERE id = $1`
	tag, err := s.conn.Exec(ctx, query, id, token, expiresAt)
	if err != nil {
		return s.mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return goerror.ErrNotFound
	}
	return nil
}
