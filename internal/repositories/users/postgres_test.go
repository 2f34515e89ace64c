package users

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/accesskeeper/internal/common"
	"github.com/dmitrijs2005/accesskeeper/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	pgUpsert = `(?s)^INSERT\s+INTO\s+users\s*\(id,\s*password_digest,\s*session_renewed_at,\s*failed_attempts,\s*blocked_at\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5\)\s*ON\s+CONFLICT\s*\(id\)\s*DO\s+UPDATE\s+SET.*$`
	pgSelect = `(?s)^SELECT\s+id,\s*password_digest,\s*session_renewed_at,\s*failed_attempts,\s*blocked_at\s+FROM\s+users\s+WHERE\s+id\s*=\s*\$1\s*$`
	pgLocked = `(?s)^SELECT\s+id,\s*password_digest,\s*session_renewed_at,\s*failed_attempts,\s*blocked_at\s+FROM\s+users\s+WHERE\s+id\s*=\s*\$1\s*FOR\s+UPDATE\s*$`
	pgList   = `(?s)^SELECT\s+id,\s*password_digest,\s*session_renewed_at,\s*failed_attempts,\s*blocked_at\s+FROM\s+users\s+ORDER\s+BY\s+id\s*$`
	pgDelete = `(?s)^DELETE\s+FROM\s+users\s+WHERE\s+id\s*=\s*\$1\s*$`
)

var userColumns = []string{"id", "password_digest", "session_renewed_at", "failed_attempts", "blocked_at"}

func newPostgresWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock, db
}

func TestPostgresSave_Success(t *testing.T) {
	repo, mock, _ := newPostgresWithMock(t)

	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	u := models.NewUser(uuid.New(), "digest")
	u.RenewSession(at)
	u.FailedAttempts = 1

	mock.ExpectExec(pgUpsert).
		WithArgs(u.ID.String(), "digest", at, 1, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Save(context.Background(), u))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSave_DBError(t *testing.T) {
	repo, mock, _ := newPostgresWithMock(t)

	mock.ExpectExec(pgUpsert).WillReturnError(errors.New("db down"))

	err := repo.Save(context.Background(), models.NewUser(uuid.New(), "d"))
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestPostgresFind_Found(t *testing.T) {
	repo, mock, _ := newPostgresWithMock(t)

	id := uuid.New()
	blocked := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	mock.ExpectQuery(pgSelect).
		WithArgs(id.String()).
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(id.String(), "digest", nil, int64(4), blocked))

	got, err := repo.Find(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "digest", got.PasswordDigest)
	assert.Nil(t, got.SessionRenewedAt)
	assert.Equal(t, 4, got.FailedAttempts)
	require.NotNil(t, got.BlockedAt)
	assert.True(t, blocked.Equal(*got.BlockedAt))
}

func TestPostgresFind_NotFound(t *testing.T) {
	repo, mock, _ := newPostgresWithMock(t)

	mock.ExpectQuery(pgSelect).WillReturnError(sql.ErrNoRows)

	_, err := repo.Find(context.Background(), uuid.New())
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestPostgresFind_DBError(t *testing.T) {
	repo, mock, _ := newPostgresWithMock(t)

	mock.ExpectQuery(pgSelect).WillReturnError(errors.New("conn reset"))

	_, err := repo.Find(context.Background(), uuid.New())
	require.Error(t, err)
	require.NotErrorIs(t, err, common.ErrorNotFound)
	assert.Contains(t, err.Error(), "conn reset")
}

func TestPostgresAll(t *testing.T) {
	repo, mock, _ := newPostgresWithMock(t)

	a, b := uuid.New(), uuid.New()
	renewed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(pgList).
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow(a.String(), "da", renewed, int64(0), nil).
			AddRow(b.String(), "db", nil, int64(2), nil))

	got, err := repo.All(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, a, got[0].ID)
	require.NotNil(t, got[0].SessionRenewedAt)
	assert.True(t, renewed.Equal(*got[0].SessionRenewedAt))
	assert.Equal(t, b, got[1].ID)
	assert.Equal(t, 2, got[1].FailedAttempts)
}

func TestPostgresAll_QueryAndRowErrors(t *testing.T) {
	repo, mock, _ := newPostgresWithMock(t)

	mock.ExpectQuery(pgList).WillReturnError(errors.New("boom"))
	_, err := repo.All(context.Background())
	require.Error(t, err)

	mock.ExpectQuery(pgList).
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow(uuid.New().String(), "d", nil, int64(0), nil).
			RowError(0, errors.New("row broke")))
	_, err = repo.All(context.Background())
	require.Error(t, err)
}

func TestPostgresDelete(t *testing.T) {
	repo, mock, _ := newPostgresWithMock(t)

	id := uuid.New()
	mock.ExpectExec(pgDelete).WithArgs(id.String()).WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, repo.Delete(context.Background(), id))

	mock.ExpectExec(pgDelete).WillReturnError(errors.New("boom"))
	require.Error(t, repo.Delete(context.Background(), id))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresInTx_CommitAndRollback(t *testing.T) {
	repo, mock, _ := newPostgresWithMock(t)
	ctx := context.Background()

	id := uuid.New()
	mock.ExpectBegin()
	mock.ExpectQuery(pgLocked).
		WithArgs(id.String()).
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(id.String(), "d", nil, int64(0), nil))
	mock.ExpectExec(pgUpsert).
		WithArgs(id.String(), "d", nil, 1, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.InTx(ctx, func(ctx context.Context, tx Repository) error {
		u, err := tx.Find(ctx, id)
		if err != nil {
			return err
		}
		u.FailedAttempts++
		return tx.Save(ctx, u)
	})
	require.NoError(t, err)

	boom := errors.New("boom")
	mock.ExpectBegin()
	mock.ExpectRollback()
	err = repo.InTx(ctx, func(ctx context.Context, tx Repository) error { return boom })
	require.ErrorIs(t, err, boom)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresInTx_LocksRowsOnlyInsideTransaction(t *testing.T) {
	repo, mock, _ := newPostgresWithMock(t)
	ctx := context.Background()
	id := uuid.New()

	mock.ExpectQuery(pgSelect).
		WithArgs(id.String()).
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(id.String(), "d", nil, int64(0), nil))
	_, err := repo.Find(ctx, id)
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectQuery(pgLocked).
		WithArgs(id.String()).
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(id.String(), "d", nil, int64(2), nil))
	mock.ExpectQuery(pgLocked).
		WithArgs(id.String()).
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(id.String(), "d", nil, int64(2), nil))
	mock.ExpectCommit()

	err = repo.InTx(ctx, func(ctx context.Context, tx Repository) error {
		if _, err := tx.Find(ctx, id); err != nil {
			return err
		}
		// nested InTx reuses the locking transaction
		return tx.(Transactional).InTx(ctx, func(ctx context.Context, inner Repository) error {
			u, err := inner.Find(ctx, id)
			if err != nil {
				return err
			}
			assert.Equal(t, 2, u.FailedAttempts)
			return nil
		})
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
