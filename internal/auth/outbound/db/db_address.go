package db

import (
	"context"

	"github.com/sc619/authd/internal/auth/entity"
	"github.com/sc619/authd/internal/pkg/goerror"
)

const addressColumns = `id, user_id, city, street, house, apartment, is_default, created_at, updated_at`

func (s *DB) GetAddressesByUserID(ctx context.Context, userID int64) (out []entity.Address, err error) {
	ctx, span := s.startSpan(ctx, "GetAddressesByUserID")
	defer func() { s.endSpan(span, err) }()

	query := `SELECT ` + addressColumns + ` FROM addresses WHERE user_id = $1 ORDER BY is_default DESC, created_at`
	rows, err := s.conn.Query(ctx, query, userID)
	if err != nil {
		return nil, s.mapError(err)
	}
	defer rows.Close()

	out = make([]entity.Address, 0)
	for rows.Next() {
		var a entity.Address
		if err = rows.Scan(&a.ID, &a.UserID, &a.City, &a.Street, &a.House, &a.Apartment, &a.IsDefault, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, s.mapError(err)
		}
		out = append(out, a)
	}
	if err = rows.Err(); err != nil {
		return nil, s.mapError(err)
	}
	return out, nil
}

func (s *DB) GetAddressByID(ctx context.Context, id, userID int64) (address *entity.Address, err error) {
	ctx, span := s.startSpan(ctx, "GetAddressByID")
	defer func() { s.endSpan(span, err) }()

	query := `SELECT ` + addressColumns + ` FROM addresses WHERE id = $1 AND user_id = $2`

	var a entity.Address
	err = s.conn.QueryRow(ctx, query, id, userID).Scan(
		&a.ID, &a.UserID, &a.City, &a.Street, &a.House, &a.Apartment, &a.IsDefault, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, s.mapError(err)
	}
	return &a, nil
}

func (s *DB) CreateAddress(ctx context.Context, in entity.Address) (err error) {
	ctx, span := s.startSpan(ctx, "CreateAddress")
	defer func() { s.endSpan(span, err) }()

	query := `
		INSERT INTO addresses (id, user_id, city, street, house, apartment, is_default, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err = s.conn.Exec(ctx, query,
		in.ID, in.UserID, in.City, in.Street, in.House, in.Apartment, in.IsDefault, in.CreatedAt, in.UpdatedAt,
	)
	return s.mapError(err)
}

func (s *DB) UpdateAddress(ctx context.Context, in entity.Address) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateAddress")
	defer func() { s.endSpan(span, err) }()

	query := `
		UPDATE addresses
		SET city = $3, street = $4, house = $5, apartment = $6, is_default = $7, updated_at = $8
		WHERE id = $1 AND user_id = $2`
	tag, err := s.conn.Exec(ctx, query,
		in.ID, in.UserID, in.City, in.Street, in.House, in.Apartment, in.IsDefault, in.UpdatedAt,
	)
	if err != nil {
		return s.mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return goerror.ErrNotFound
	}
	return nil
}

func (s *DB) DeleteAddress(ctx context.Context, id, userID int64) (err error) {
	ctx, span := s.startSpan(ctx, "DeleteAddress")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, `DELETE FROM addresses WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return s.mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return goerror.ErrNotFound
	}
	return nil
}
