package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/accesskeeper/internal/common"
	"github.com/dmitrijs2005/accesskeeper/internal/dbx"
	"github.com/dmitrijs2005/accesskeeper/internal/models"
	"github.com/google/uuid"
)

// SQLiteRepository keeps users in a local SQLite file. Instants are stored
// as unix nanoseconds in UTC.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Save(ctx context.Context, user *models.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, password_digest, session_renewed_at, failed_attempts, blocked_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			password_digest = excluded.password_digest,
			session_renewed_at = excluded.session_renewed_at,
			failed_attempts = excluded.failed_attempts,
			blocked_at = excluded.blocked_at
	`, user.ID.String(), user.PasswordDigest, toNanos(user.SessionRenewedAt), user.FailedAttempts, toNanos(user.BlockedAt))
	if err != nil {
		return fmt.Errorf("failed to save user %s: %w", user.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete user %s: %w", id, err)
	}
	return nil
}

func (r *SQLiteRepository) Find(ctx context.Context, id uuid.UUID) (*models.User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, password_digest, session_renewed_at, failed_attempts, blocked_at
		FROM users WHERE id = ?
	`, id.String())

	u, err := scanSQLiteUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", id, err)
	}
	return u, nil
}

func (r *SQLiteRepository) All(ctx context.Context) ([]*models.User, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, password_digest, session_renewed_at, failed_attempts, blocked_at
		FROM users ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var res []*models.User
	for rows.Next() {
		u, err := scanSQLiteUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		res = append(res, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user rows: %w", err)
	}
	return res, nil
}

// InTx runs fn against a repository bound to a transaction. When the
// repository is already bound to one, fn runs directly.
func (r *SQLiteRepository) InTx(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error {
	db, ok := dbx.Begin(r.db)
	if !ok {
		return fn(ctx, r)
	}
	return dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, NewSQLiteRepository(tx))
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteUser(s rowScanner) (*models.User, error) {
	var (
		id       string
		u        models.User
		renewed  sql.NullInt64
		blocked  sql.NullInt64
		attempts int64
	)
	if err := s.Scan(&id, &u.PasswordDigest, &renewed, &attempts, &blocked); err != nil {
		return nil, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("bad user id %q: %w", id, err)
	}
	u.ID = parsed
	u.FailedAttempts = int(attempts)
	u.SessionRenewedAt = fromNanos(renewed)
	u.BlockedAt = fromNanos(blocked)
	return &u, nil
}

func toNanos(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixNano(), Valid: true}
}

func fromNanos(n sql.NullInt64) *time.Time {
	if !n.Valid {
		return nil
	}
	t := time.Unix(0, n.Int64).UTC()
	return &t
}
