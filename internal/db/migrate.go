package db

import (
	"context"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Migration is a single schema migration loaded from the embedded
// filesystem.
type Migration struct {
	Version     int
	Description string
	UpSQL       string
	DownSQL     string
}

// migrationFilePattern matches filenames like "001_initial_schema.up.sql".
var migrationFilePattern = regexp.MustCompile(`^(\d+)_(.+)\.(up|down)\.sql$`)

func loadMigrations() ([]Migration, error) {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	byVersion := make(map[int]*Migration)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		matches := migrationFilePattern.FindStringSubmatch(entry.Name())
		if matches == nil {
			continue
		}

		version, _ := strconv.Atoi(matches[1])
		if byVersion[version] == nil {
			byVersion[version] = &Migration{
				Version:     version,
				Description: strings.ReplaceAll(matches[2], "_", " "),
			}
		}

		content, err := fs.ReadFile(migrationsFS, "migrations/"+entry.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", entry.Name(), err)
		}
		if matches[3] == "up" {
			byVersion[version].UpSQL = string(content)
		} else {
			byVersion[version].DownSQL = string(content)
		}
	}

	migrations := make([]Migration, 0, len(byVersion))
	for _, m := range byVersion {
		migrations = append(migrations, *m)
	}
	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return migrations, nil
}

// MigrateUp applies all pending migrations and returns how many were
// applied.
func (db *DB) MigrateUp(ctx context.Context) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if err := db.ensureSchemaVersionTable(ctx); err != nil {
		return 0, err
	}

	migrations, err := loadMigrations()
	if err != nil {
		return 0, err
	}

	currentVersion, err := db.currentVersion(ctx)
	if err != nil {
		return 0, err
	}

	applied := 0
	for _, m := range migrations {
		if m.Version <= currentVersion {
			continue
		}
		if m.UpSQL == "" {
			return applied, fmt.Errorf("migration %d has no up SQL", m.Version)
		}
		if err := db.applyMigrationTx(ctx, m.Version, m.Description, m.UpSQL); err != nil {
			return applied, fmt.Errorf("migration %d failed: %w", m.Version, err)
		}

		db.logger.Info().
			Int("version", m.Version).
			Str("description", m.Description).
			Msg("applied migration")
		applied++
	}

	return applied, nil
}

// MigrateDown rolls back the last n migrations.
func (db *DB) MigrateDown(ctx context.Context, steps int) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if err := db.ensureSchemaVersionTable(ctx); err != nil {
		return 0, err
	}

	migrations, err := loadMigrations()
	if err != nil {
		return 0, err
	}

	currentVersion, err := db.currentVersion(ctx)
	if err != nil {
		return 0, err
	}
	if currentVersion == 0 {
		return 0, nil
	}

	rolledBack := 0
	for i := len(migrations) - 1; i >= 0 && rolledBack < steps; i-- {
		m := migrations[i]
		if m.Version > currentVersion {
			continue
		}
		if m.DownSQL == "" {
			return rolledBack, fmt.Errorf("migration %d has no down SQL", m.Version)
		}
		if err := db.rollbackMigrationTx(ctx, m.Version, m.DownSQL); err != nil {
			return rolledBack, fmt.Errorf("rollback of migration %d failed: %w", m.Version, err)
		}

		db.logger.Info().
			Int("version", m.Version).
			Str("description", m.Description).
			Msg("rolled back migration")
		rolledBack++
	}

	return rolledBack, nil
}

// SchemaVersion returns the current schema version.
func (db *DB) SchemaVersion(ctx context.Context) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if err := db.ensureSchemaVersionTable(ctx); err != nil {
		return 0, err
	}
	return db.currentVersion(ctx)
}

func (db *DB) ensureSchemaVersionTable(ctx context.Context) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at TEXT NOT NULL DEFAULT (datetime('now')),
			description TEXT
		)
	`)
	return err
}

func (db *DB) currentVersion(ctx context.Context) (int, error) {
	var version int
	err := db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&version)
	return version, err
}

func (db *DB) applyMigrationTx(ctx context.Context, version int, description, sql string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, sql); err != nil {
		return fmt.Errorf("failed to execute migration SQL: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_version (version, description) VALUES (?, ?)",
		version, description); err != nil {
		return fmt.Errorf("failed to record migration: %w", err)
	}
	return tx.Commit()
}

func (db *DB) rollbackMigrationTx(ctx context.Context, version int, sql string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, sql); err != nil {
		return fmt.Errorf("failed to execute rollback SQL: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM schema_version WHERE version = ?", version); err != nil {
		return fmt.Errorf("failed to remove migration record: %w", err)
	}
	return tx.Commit()
}
