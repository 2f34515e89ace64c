package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/accesskeeper/internal/access"
	"github.com/dmitrijs2005/accesskeeper/internal/biometry"
	"github.com/dmitrijs2005/accesskeeper/internal/config"
	"github.com/dmitrijs2005/accesskeeper/internal/cryptox"
	"github.com/dmitrijs2005/accesskeeper/internal/logging"
	"github.com/dmitrijs2005/accesskeeper/internal/repositories/repomanager"
	"github.com/dmitrijs2005/accesskeeper/internal/repositories/users"
	"github.com/dmitrijs2005/accesskeeper/internal/timex"
)

// App wires the access service to a terminal session.
type App struct {
	config  *config.Config
	service *access.Service
	logger  logging.Logger
	reader  *bufio.Reader
	out     io.Writer
	db      *sql.DB

	current uuid.UUID
}

// NewApp builds the service described by c: storage, hasher, biometric
// provider and logger. The returned App reads from stdin and writes prompts
// to stdout. Call Close when done.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	return newApp(ctx, c, bufio.NewReader(os.Stdin), os.Stdout, logging.NewTextLogger(os.Stderr, c.LogLevel))
}

func newApp(ctx context.Context, c *config.Config, reader *bufio.Reader, out io.Writer, logger logging.Logger) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	policy, err := c.Policy()
	if err != nil {
		return nil, err
	}

	hasher, err := cryptox.NewHasher(c.Hasher, c.HasherSalt)
	if err != nil {
		return nil, err
	}

	modality, err := biometry.ParseModality(c.BiometryModality)
	if err != nil {
		return nil, err
	}
	provider := biometry.NewSystem(newConsoleDevice(reader, out, modality), biometry.Prompts{})

	repo, db, err := openStore(ctx, c)
	if err != nil {
		return nil, err
	}

	a := &App{
		config:  c,
		logger:  logger,
		reader:  reader,
		out:     out,
		db:      db,
		service: access.NewService(policy, repo, hasher, provider, timex.SystemClock{}, logger),
	}
	return a, nil
}

// openStore returns the user repository selected by c.StorageDriver. For SQL
// drivers the database is migrated first and returned so the caller can close it.
func openStore(ctx context.Context, c *config.Config) (users.Repository, *sql.DB, error) {
	switch c.StorageDriver {
	case config.DriverMemory:
		return users.NewInMemoryRepository(), nil, nil

	case config.DriverSQLite, config.DriverPostgres:
		m, db, err := repomanager.Open(c.StorageDriver, c.DatabaseDSN)
		if err != nil {
			return nil, nil, err
		}
		if err := m.RunMigrations(ctx, db); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("migrations failed: %w", err)
		}
		return m.Users(db), db, nil

	case config.DriverS3:
		client, err := users.NewS3Client(ctx, users.S3Options{
			Region:    c.S3Region,
			Endpoint:  c.S3BaseEndpoint,
			AccessKey: c.S3AccessKey,
			SecretKey: c.S3SecretKey,
		})
		if err != nil {
			return nil, nil, err
		}
		return users.NewS3Repository(client, c.S3Bucket, c.S3Prefix), nil, nil
	}
	return nil, nil, fmt.Errorf("unknown storage driver %q", c.StorageDriver)
}

// Close releases the database handle, if any.
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

func (a *App) hasUser() bool { return a.current != uuid.Nil }

// statusLine renders the prompt prefix: the selected user and its status.
func (a *App) statusLine(ctx context.Context) string {
	if !a.hasUser() {
		return "no user"
	}
	st, err := a.service.AuthenticationStatus(ctx, a.current)
	if err != nil {
		return shortID(a.current) + " unknown"
	}
	return shortID(a.current) + " " + st.String()
}

func shortID(id uuid.UUID) string { return id.String()[:8] }

// Run starts the REPL and blocks until the user exits or ctx is done.
func (a *App) Run(ctx context.Context) {
	a.logger.Info(ctx, "accesskeeper started", "storage", a.config.StorageDriver, "biometry", a.config.BiometryModality)
	runREPL(ctx, a, func() string { return a.statusLine(ctx) }, a.reader)
}
