package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/program-scheduler/internal/persistence/sqlite/migration"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store is the SQLite record store. It owns the connection pool and hands out
// one repository per collection.
type Store struct {
	pool   *ConnectionPool
	logger *slog.Logger

	sessions     *SessionRepository
	assignments  *AssignmentRepository
	participants *ParticipantRepository
	catalog      *CatalogRepository
	messages     *MessageRepository
	changes      *ScheduleChangeRepository
}

// Open opens the database at dsn with the default connection settings.
func Open(dsn string, logger *slog.Logger) (*Store, error) {
	return OpenWithConfig(migration.DefaultSQLiteConfig(dsn), logger)
}

// OpenWithConfig opens the database described by config.
func OpenWithConfig(config migration.SQLiteConfig, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	pool, err := NewConnectionPool(config)
	if err != nil {
		return nil, err
	}
	logger = logger.With("component", "sqlite")
	return &Store{
		pool:         pool,
		logger:       logger,
		sessions:     NewSessionRepository(pool, logger),
		assignments:  NewAssignmentRepository(pool, DefaultRetryConfig()),
		participants: NewParticipantRepository(pool),
		catalog:      NewCatalogRepository(pool),
		messages:     NewMessageRepository(pool, time.Now),
		changes:      NewScheduleChangeRepository(pool),
	}, nil
}

// Migrate applies the embedded schema migrations and returns how many ran.
func (s *Store) Migrate(ctx context.Context) (int, error) {
	manager := migration.NewManager(
		migration.NewScanner(migrationsFS, "migrations"),
		migration.NewExecutor(s.pool.DB()),
		s.logger,
	)
	applied, err := manager.Run(ctx)
	if err != nil {
		return applied, fmt.Errorf("apply migrations: %w", err)
	}
	return applied, nil
}

// MigrationStatus reports applied and pending schema migrations.
func (s *Store) MigrationStatus(ctx context.Context) (migration.Status, error) {
	manager := migration.NewManager(
		migration.NewScanner(migrationsFS, "migrations"),
		migration.NewExecutor(s.pool.DB()),
		s.logger,
	)
	return manager.Status(ctx)
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// DB exposes the underlying handle for maintenance tasks and tests.
func (s *Store) DB() *sql.DB {
	return s.pool.DB()
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.pool.Close()
}

// Sessions returns the session repository.
func (s *Store) Sessions() *SessionRepository { return s.sessions }

// Assignments returns the assignment repository.
func (s *Store) Assignments() *AssignmentRepository { return s.assignments }

// Participants returns the participant repository.
func (s *Store) Participants() *ParticipantRepository { return s.participants }

// Catalog returns the catalog repository.
func (s *Store) Catalog() *CatalogRepository { return s.catalog }

// Messages returns the message log repository.
func (s *Store) Messages() *MessageRepository { return s.messages }

// ScheduleChanges returns the session change history repository.
func (s *Store) ScheduleChanges() *ScheduleChangeRepository { return s.changes }

// timeLayout is fixed width so stored instants sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) (time.Time, error) {
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Parse(time.RFC3339Nano, value)
	}
	return t, nil
}

func nowUTC() time.Time {
	return time.Now().UTC()
}

func nullableString(value *string) sql.NullString {
	if value == nil || *value == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *value, Valid: true}
}

func stringPtr(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}
	v := value.String
	return &v
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

type rowScanner interface {
	Scan(dest ...any) error
}

func rowsAffected(result sql.Result) (int64, error) {
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}
