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

// PostgresRepository stores users in the users table. A repository handed
// out by InTx reads rows with FOR UPDATE, so concurrent writers in other
// processes wait for the transaction to finish.
type PostgresRepository struct {
	db        dbx.DBTX
	forUpdate bool
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Save(ctx context.Context, user *models.User) error {
	query :=
		`INSERT INTO users (id, password_digest, session_renewed_at, failed_attempts, blocked_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO UPDATE SET
		 password_digest = EXCLUDED.password_digest,
		 session_renewed_at = EXCLUDED.session_renewed_at,
		 failed_attempts = EXCLUDED.failed_attempts,
		 blocked_at = EXCLUDED.blocked_at
		 `

	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.PasswordDigest, toNullTime(user.SessionRenewedAt), user.FailedAttempts, toNullTime(user.BlockedAt))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query :=
		`DELETE FROM users
		 WHERE id = $1
		 `

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Find(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query :=
		`SELECT id, password_digest, session_renewed_at, failed_attempts, blocked_at FROM users
		 WHERE id = $1
		 `
	if r.forUpdate {
		query += "FOR UPDATE"
	}

	u, err := scanPostgresUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

func (r *PostgresRepository) All(ctx context.Context) ([]*models.User, error) {
	query :=
		`SELECT id, password_digest, session_renewed_at, failed_attempts, blocked_at FROM users
		 ORDER BY id
		 `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var res []*models.User
	for rows.Next() {
		u, err := scanPostgresUser(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		res = append(res, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return res, nil
}

// InTx runs fn against a repository bound to a transaction whose reads lock
// the rows they return. When the repository is already bound to one, fn runs
// directly.
func (r *PostgresRepository) InTx(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error {
	db, ok := dbx.Begin(r.db)
	if !ok {
		return fn(ctx, r)
	}
	return dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, &PostgresRepository{db: tx, forUpdate: true})
	})
}

func scanPostgresUser(s rowScanner) (*models.User, error) {
	var (
		u       models.User
		renewed sql.NullTime
		blocked sql.NullTime
	)
	if err := s.Scan(&u.ID, &u.PasswordDigest, &renewed, &u.FailedAttempts, &blocked); err != nil {
		return nil, err
	}
	u.SessionRenewedAt = fromNullTime(renewed)
	u.BlockedAt = fromNullTime(blocked)
	return &u, nil
}

func toNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func fromNullTime(n sql.NullTime) *time.Time {
	if !n.Valid {
		return nil
	}
	t := n.Time
	return &t
}
