package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/starford/jotter/internal/apperr"
	"github.com/starford/jotter/internal/models"
)

// CreateUser inserts a user. A duplicate email yields apperr.ErrAlreadyExists.
func (db *DB) CreateUser(ctx context.Context, u *models.User) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		u.ID, u.Email, u.PasswordHash, u.CreatedAt.UTC())
	if err != nil {
		return classify("create user", err)
	}
	return nil
}

// UserByEmail looks a user up by email, case-insensitively.
func (db *DB) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	return db.queryUser(ctx, "user by email",
		`SELECT id, email, password_hash, created_at FROM users WHERE email = ?`, email)
}

// UserByID looks a user up by id.
func (db *DB) UserByID(ctx context.Context, id string) (*models.User, error) {
	return db.queryUser(ctx, "user by id",
		`SELECT id, email, password_hash, created_at FROM users WHERE id = ?`, id)
}

func (db *DB) queryUser(ctx context.Context, op, query string, arg any) (*models.User, error) {
	var u models.User
	err := db.conn.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return nil, classify(op, err)
	}
	return &u, nil
}

// CreateSession stores a session token.
func (db *DB) CreateSession(ctx context.Context, s *models.Session) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO sessions (token, user_id, created_at, expires_at) VALUES (?, ?, ?, ?)`,
		s.Token, s.UserID, s.CreatedAt.UTC(), s.ExpiresAt.UTC())
	if err != nil {
		return classify("create session", err)
	}
	return nil
}

// SessionByToken returns the session for token, expired or not.
func (db *DB) SessionByToken(ctx context.Context, token string) (*models.Session, error) {
	var s models.Session
	err := db.conn.QueryRowContext(ctx,
		`SELECT token, user_id, created_at, expires_at FROM sessions WHERE token = ?`, token).
		Scan(&s.Token, &s.UserID, &s.CreatedAt, &s.ExpiresAt)
	if err != nil {
		return nil, classify("session by token", err)
	}
	return &s, nil
}

// DeleteSession removes a session. Deleting an unknown token is not an error.
func (db *DB) DeleteSession(ctx context.Context, token string) error {
	if _, err := db.conn.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token); err != nil {
		return fmt.Errorf("store: delete session: %w", err)
	}
	return nil
}

// DeleteExpiredSessions removes sessions that expired at or before now and
// returns how many were removed.
func (db *DB) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("store: delete expired sessions: %w", err)
	}
	return res.RowsAffected()
}

// affectedOne returns apperr.ErrNotFound when res touched no rows.
func affectedOne(op string, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: %s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("store: %s: %w", op, apperr.ErrNotFound)
	}
	return nil
}
