package migration

import (
	"context"
	"fmt"
	"log/slog"
)

// Manager compares the scanned migrations with the applied ones and runs the difference.
type Manager struct {
	scanner  *Scanner
	executor *Executor
	logger   *slog.Logger
}

// NewManager wires a scanner and an executor.
func NewManager(scanner *Scanner, executor *Executor, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{scanner: scanner, executor: executor, logger: logger.With("component", "migration")}
}

// Run applies all pending migrations in version order and returns how many ran.
// Execution stops at the first failing migration.
func (m *Manager) Run(ctx context.Context) (int, error) {
	status, err := m.Status(ctx)
	if err != nil {
		return 0, err
	}
	if len(status.Pending) == 0 {
		m.logger.Info("schema up to date", "version", status.CurrentVersion)
		return 0, nil
	}

	for i, migration := range status.Pending {
		m.logger.Info("applying migration",
			"version", migration.Version,
			"description", migration.Description,
			"position", fmt.Sprintf("%d/%d", i+1, len(status.Pending)),
		)
		if err := m.executor.Execute(ctx, migration); err != nil {
			m.logger.Error("migration failed", "version", migration.Version, "error", err)
			return i, newMigrationError(migration.Version, migration.FilePath, "execute migration",
				fmt.Errorf("%w: %w", ErrMigrationFailed, err))
		}
	}

	last := status.Pending[len(status.Pending)-1]
	m.logger.Info("migrations complete", "applied", len(status.Pending), "version", last.Version)
	return len(status.Pending), nil
}

// Status reports the current version together with applied and pending migrations.
func (m *Manager) Status(ctx context.Context) (Status, error) {
	if err := m.executor.InitializeVersionTable(ctx); err != nil {
		return Status{}, err
	}
	available, err := m.scanner.Scan()
	if err != nil {
		return Status{}, err
	}
	applied, err := m.executor.Applied(ctx)
	if err != nil {
		return Status{}, err
	}
	if err := validateSequence(available, applied); err != nil {
		return Status{}, err
	}

	done := make(map[string]AppliedMigration, len(applied))
	status := Status{Applied: applied}
	for _, record := range applied {
		done[record.Version] = record
		status.CurrentVersion = record.Version
	}
	for _, migration := range available {
		record, ok := done[migration.Version]
		if !ok {
			status.Pending = append(status.Pending, migration)
			continue
		}
		if record.Checksum != "" && record.Checksum != migration.Checksum {
			m.logger.Warn("applied migration changed on disk", "version", migration.Version, "file", migration.FilePath)
		}
	}
	return status, nil
}

// validateSequence rejects gaps between the lowest and highest version and
// applied versions that no longer have a file.
func validateSequence(available []Migration, applied []AppliedMigration) error {
	versions := make(map[int]bool, len(available))
	for _, migration := range available {
		versions[versionNumber(migration.Version)] = true
	}
	if len(available) > 0 {
		lowest := versionNumber(available[0].Version)
		highest := versionNumber(available[len(available)-1].Version)
		for v := lowest; v <= highest; v++ {
			if !versions[v] {
				return fmt.Errorf("%w: missing migration version %03d", ErrVersionConflict, v)
			}
		}
	}
	for _, record := range applied {
		if !versions[versionNumber(record.Version)] {
			return fmt.Errorf("%w: applied migration %s has no file", ErrVersionConflict, record.Version)
		}
	}
	return nil
}
