// Package migration applies versioned SQL migrations to a SQLite database.
//
// Migration files are read from an fs.FS (usually an embedded directory) and
// must be named {version}_{description}.sql, for example
// 001_program_schema.sql. Applied versions are tracked in the
// schema_migrations table so each file runs exactly once, inside its own
// transaction.
//
//	manager := migration.NewManager(migration.NewScanner(files, "migrations"), migration.NewExecutor(db), logger)
//	applied, err := manager.Run(ctx)
package migration
