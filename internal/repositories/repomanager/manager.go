// Package repomanager vends SQL-backed user repositories and runs the schema
// migrations that go with them.
package repomanager

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/accesskeeper/internal/dbx"
	"github.com/dmitrijs2005/accesskeeper/internal/filex"
	"github.com/dmitrijs2005/accesskeeper/internal/repositories/users"
	"github.com/pressly/goose/v3"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// Open returns the manager and an open handle for driver ("sqlite" or
// "postgres"). The caller owns the handle.
func Open(driver, dsn string) (RepositoryManager, *sql.DB, error) {
	var (
		m          RepositoryManager
		driverName string
	)
	switch driver {
	case "sqlite":
		m, driverName = NewSQLiteRepositoryManager(), "sqlite"
	case "postgres":
		m, driverName = NewPostgresRepositoryManager(), "pgx"
	default:
		return nil, nil, fmt.Errorf("unsupported sql driver %q", driver)
	}

	if driver == "sqlite" && isSQLiteFilePath(dsn) {
		if _, err := filex.EnsureParentDir(dsn); err != nil {
			return nil, nil, fmt.Errorf("prepare sqlite path: %w", err)
		}
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == "sqlite" {
		// one writer at a time; avoids SQLITE_BUSY under the service's locks
		db.SetMaxOpenConns(1)
	}
	return m, db, nil
}

// isSQLiteFilePath reports whether dsn is a plain file name rather than a
// URI or an in-memory database.
func isSQLiteFilePath(dsn string) bool {
	return dsn != "" && dsn != ":memory:" && !strings.HasPrefix(dsn, "file:")
}
