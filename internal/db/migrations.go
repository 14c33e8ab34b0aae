package db

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"
)

var migrationFilePattern = regexp.MustCompile(`^(\d+)_.*\.sql$`)

type migration struct {
	version    int
	name       string
	statements []string
}

// migrationTarget is one database the runner can bring up to date. Each
// target keeps its own schema_migrations ledger in its own dialect.
type migrationTarget interface {
	ensureLedger(ctx context.Context) error
	appliedVersions(ctx context.Context) (map[int]struct{}, error)
	apply(ctx context.Context, step migration) error
}

// runMigrations applies every NNNN_name.sql file in dir that the target has
// not recorded yet, in version order, one transaction per file.
func runMigrations(ctx context.Context, target migrationTarget, files fs.FS, dir string) error {
	steps, err := loadMigrations(files, dir)
	if err != nil {
		return err
	}
	if err := target.ensureLedger(ctx); err != nil {
		return err
	}
	applied, err := target.appliedVersions(ctx)
	if err != nil {
		return err
	}

	for _, step := range steps {
		if _, done := applied[step.version]; done {
			continue
		}
		if err := target.apply(ctx, step); err != nil {
			return fmt.Errorf("apply migration %s: %w", step.name, err)
		}
	}
	return nil
}

func loadMigrations(files fs.FS, dir string) ([]migration, error) {
	entries, err := fs.ReadDir(files, dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	steps := make([]migration, 0, len(entries))
	seen := make(map[int]string, len(entries))
	for _, entry := range entries {
		matches := migrationFilePattern.FindStringSubmatch(entry.Name())
		if entry.IsDir() || matches == nil {
			continue
		}

		version, err := strconv.Atoi(matches[1])
		if err != nil {
			return nil, fmt.Errorf("parse migration version from %s: %w", entry.Name(), err)
		}
		if existing, duplicate := seen[version]; duplicate {
			return nil, fmt.Errorf("duplicate migration version %d in %s and %s", version, existing, entry.Name())
		}
		seen[version] = entry.Name()

		raw, err := fs.ReadFile(files, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}
		statements := splitSQLStatements(string(raw))
		if len(statements) == 0 {
			return nil, fmt.Errorf("migration %s has no SQL statements", entry.Name())
		}
		steps = append(steps, migration{version: version, name: entry.Name(), statements: statements})
	}

	sort.Slice(steps, func(i, j int) bool { return steps[i].version < steps[j].version })
	return steps, nil
}

// splitSQLStatements drops "--" comment lines and splits on semicolons. The
// migrations never put a semicolon inside a literal.
func splitSQLStatements(sqlText string) []string {
	lines := strings.Split(sqlText, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if !strings.HasPrefix(strings.TrimSpace(line), "--") {
			kept = append(kept, line)
		}
	}

	var statements []string
	for _, part := range strings.Split(strings.Join(kept, "\n"), ";") {
		if statement := strings.TrimSpace(part); statement != "" {
			statements = append(statements, statement)
		}
	}
	return statements
}

type gormMigrationTarget struct {
	database *gorm.DB
}

func (target gormMigrationTarget) ensureLedger(ctx context.Context) error {
	err := target.database.WithContext(ctx).Exec(`
CREATE TABLE IF NOT EXISTS schema_migrations (
  version TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`).Error
	if err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}
	return nil
}

func (target gormMigrationTarget) appliedVersions(ctx context.Context) (map[int]struct{}, error) {
	var versions []string
	if err := target.database.WithContext(ctx).Table("schema_migrations").Pluck("version", &versions).Error; err != nil {
		return nil, fmt.Errorf("load applied migration versions: %w", err)
	}
	return parseAppliedVersions(versions)
}

func (target gormMigrationTarget) apply(ctx context.Context, step migration) error {
	return target.database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, statement := range step.statements {
			if err := tx.Exec(statement).Error; err != nil {
				return fmt.Errorf("execute %q: %w", statement, err)
			}
		}
		return tx.Exec(
			`INSERT INTO schema_migrations(version, name) VALUES (?, ?)`,
			formatMigrationVersion(step.version),
			step.name,
		).Error
	})
}

type sqlxMigrationTarget struct {
	database *sqlx.DB
}

func (target sqlxMigrationTarget) ensureLedger(ctx context.Context) error {
	_, err := target.database.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS schema_migrations (
  version TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`)
	if err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}
	return nil
}

func (target sqlxMigrationTarget) appliedVersions(ctx context.Context) (map[int]struct{}, error) {
	var versions []string
	if err := target.database.SelectContext(ctx, &versions, `SELECT version FROM schema_migrations`); err != nil {
		return nil, fmt.Errorf("load applied migration versions: %w", err)
	}
	return parseAppliedVersions(versions)
}

func (target sqlxMigrationTarget) apply(ctx context.Context, step migration) (err error) {
	tx, err := target.database.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			err = errors.Join(err, tx.Rollback())
		}
	}()

	for _, statement := range step.statements {
		if _, err = tx.ExecContext(ctx, statement); err != nil {
			return fmt.Errorf("execute %q: %w", statement, err)
		}
	}
	insert := tx.Rebind(`INSERT INTO schema_migrations(version, name) VALUES (?, ?)`)
	if _, err = tx.ExecContext(ctx, insert, formatMigrationVersion(step.version), step.name); err != nil {
		return err
	}
	return tx.Commit()
}

// Versions are stored zero-padded, matching the file name prefix.
func formatMigrationVersion(version int) string {
	return fmt.Sprintf("%04d", version)
}

func parseAppliedVersions(raw []string) (map[int]struct{}, error) {
	applied := make(map[int]struct{}, len(raw))
	for _, value := range raw {
		version, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("parse applied migration version %q: %w", value, err)
		}
		applied[version] = struct{}{}
	}
	return applied, nil
}
