package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/sc619/authd/internal/auth/entity"
)

const userColumns = `id, username, email, COALESCE(mobile, ''), name, last_name, password, is_active, last_login, date_joined, update_date`

func scanUser(row pgx.Row) (*entity.User, error) {
	var u entity.User
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.Mobile, &u.Name, &u.LastName,
		&u.Password, &u.IsActive, &u.LastLogin, &u.DateJoined, &u.UpdateDate,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *DB) GetUserByID(ctx context.Context, id int64) (user *entity.User, err error) {
	ctx, span := s.startSpan(ctx, "GetUserByID")
	defer func() { s.endSpan(span, err) }()

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err = scanUser(s.conn.QueryRow(ctx, query, id))
	if err != nil {
		return nil, s.mapError(err)
	}
	return user, nil
}

func (s *DB) GetUserByEmail(ctx context.Context, email string) (user *entity.User, err error) {
	ctx, span := s.startSpan(ctx, "GetUserByEmail")
	defer func() { s.endSpan(span, err) }()

	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`
	user, err = scanUser(s.conn.QueryRow(ctx, query, email))
	if err != nil {
		return nil, s.mapError(err)
	}
	return user, nil
}

func (s *DB) GetUserByMobile(ctx context.Context, mobile string) (user *entity.User, err error) {
	ctx, span := s.startSpan(ctx, "GetUserByMobile")
	defer func() { s.endSpan(span, err) }()

	query := `SELECT ` + userColumns + ` FROM users WHERE mobile = $1`
	user, err = scanUser(s.conn.QueryRow(ctx, query, mobile))
	if err != nil {
		return nil, s.mapError(err)
	}
	return user, nil
}

func (s *DB) GetUserByUsername(ctx context.Context, username string) (user *entity.User, err error) {
	ctx, span := s.startSpan(ctx, "GetUserByUsername")
	defer func() { s.endSpan(span, err) }()

	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	user, err = scanUser(s.conn.QueryRow(ctx, query, username))
	if err != nil {
		return nil, s.mapError(err)
	}
	return user, nil
}

func (s *DB) CountUsersByProperty(ctx context.Context, prop entity.UniqueProperty, value string) (count int64, err error) {
	ctx, span := s.startSpan(ctx, "CountUsersByProperty")
	defer func() { s.endSpan(span, err) }()

	var query string
	switch prop {
	case entity.PropertyEmail:
		query = `SELECT COUNT(*) FROM users WHERE LOWER(email) = LOWER($1)`
	case entity.PropertyMobile:
		query = `SELECT COUNT(*) FROM users WHERE mobile = $1`
	case entity.PropertyUsername:
		query = `SELECT COUNT(*) FROM users WHERE username = $1`
	default:
		return 0, fmt.Errorf("unsupported unique property: %s", prop)
	}

	if err = s.conn.QueryRow(ctx, query, value).Scan(&count); err != nil {
		return 0, s.mapError(err)
	}
	return count, nil
}

func (s *DB) CreateUser(ctx context.Context, in entity.NewUser) (err error) {
	ctx, span := s.startSpan(ctx, "CreateUser")
	defer func() { s.endSpan(span, err) }()

	query := `
		INSERT INTO users (id, username, email, mobile, name, last_name, password, is_active, date_joined, update_date)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8, NOW(), NOW())`
	_, err = s.conn.Exec(ctx, query,
		in.ID, in.Username, in.Email, in.Mobile, in.Name, in.LastName, in.Password, in.IsActive,
	)
	return s.mapError(err)
}

func (s *DB) UpdateUserProfile(ctx context.Context, in entity.PatchUser) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateUserProfile")
	defer func() { s.endSpan(span, err) }()

	query := `
		UPDATE users
		SET name = COALESCE(NULLIF($2, ''), name),
			last_name = COALESCE(NULLIF($3, ''), last_name),
			update_date = NOW()
		WHERE id = $1`
	_, err = s.conn.Exec(ctx, query, in.ID, in.Name, in.LastName)
	return s.mapError(err)
}

func (s *DB) UpdateUserPassword(ctx context.Context, userID int64, hashed string) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateUserPassword")
	defer func() { s.endSpan(span, err) }()

	query := `UPDATE users SET password = $2, update_date = NOW() WHERE id = $1`
	_, err = s.conn.Exec(ctx, query, userID, hashed)
	return s.mapError(err)
}

func (s *DB) UpdateUserLastLogin(ctx context.Context, userID int64, at time.Time) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateUserLastLogin")
	defer func() { s.endSpan(span, err) }()

	query := `UPDATE users SET last_login = $2, update_date = NOW() WHERE id = $1`
	_, err = s.conn.Exec(ctx, query, userID, at)
	return s.mapError(err)
}
