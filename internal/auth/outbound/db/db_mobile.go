package db

import (
	"context"

	"github.com/sc619/authd/internal/auth/entity"
	"github.com/sc619/authd/internal/pkg/goerror"
)

const extraMobileColumns = `id, user_id, mobile, confirmed, created_at, updated_at`

func (s *DB) GetExtraMobilesByUserID(ctx context.Context, userID int64) (out []entity.ExtraMobile, err error) {
	ctx, span := s.startSpan(ctx, "GetExtraMobilesByUserID")
	defer func() { s.endSpan(span, err) }()

	query := `SELECT ` + extraMobileColumns + ` FROM extra_mobiles WHERE user_id = $1 ORDER BY created_at`
	rows, err := s.conn.Query(ctx, query, userID)
	if err != nil {
		return nil, s.mapError(err)
	}
	defer rows.Close()

	out = make([]entity.ExtraMobile, 0)
	for rows.Next() {
		var m entity.ExtraMobile
		if err = rows.Scan(&m.ID, &m.UserID, &m.Mobile, &m.Confirmed, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, s.mapError(err)
		}
		out = append(out, m)
	}
	if err = rows.Err(); err != nil {
		return nil, s.mapError(err)
	}
	return out, nil
}

func (s *DB) GetExtraMobileByID(ctx context.Context, id int64) (mobile *entity.ExtraMobile, err error) {
	ctx, span := s.startSpan(ctx, "GetExtraMobileByID")
	defer func() { s.endSpan(span, err) }()

	query := `SELECT ` + extraMobileColumns + ` FROM extra_mobiles WHERE id = $1`

	var m entity.ExtraMobile
	err = s.conn.QueryRow(ctx, query, id).Scan(&m.ID, &m.UserID, &m.Mobile, &m.Confirmed, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, s.mapError(err)
	}
	return &m, nil
}

func (s *DB) CreateExtraMobile(ctx context.Context, in entity.ExtraMobile) (err error) {
	ctx, span := s.startSpan(ctx, "CreateExtraMobile")
	defer func() { s.endSpan(span, err) }()

	query := `
		INSERT INTO extra_mobiles (id, user_id, mobile, confirmed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err = s.conn.Exec(ctx, query, in.ID, in.UserID, in.Mobile, in.Confirmed, in.CreatedAt, in.UpdatedAt)
	return s.mapError(err)
}

func (s *DB) ConfirmExtraMobile(ctx context.Context, id int64) (err error) {
	ctx, span := s.startSpan(ctx, "ConfirmExtraMobile")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, `UPDATE extra_mobiles SET confirmed = TRUE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return s.mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return goerror.ErrNotFound
	}
	return nil
}

func (s *DB) DeleteExtraMobile(ctx context.Context, id, userID int64) (err error) {
	ctx, span := s.startSpan(ctx, "DeleteExtraMobile")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, `DELETE FROM extra_mobiles WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return s.mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return goerror.ErrNotFound
	}
	return nil
}
