// Package migrations exposes the embedded cache table migrations per SQL
// dialect so hosts can hand them to their migration runner.
package migrations

import (
	"context"
	"fmt"
	"io/fs"
	"slices"
	"strings"

	ils "github.com/goliatone/go-ils"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"

	defaultSource = "go-ils"
	migrationsDir = "data/sql/migrations"
)

// Tree is the migration directory for one dialect.
type Tree struct {
	Dialect string
	Path    string
	FS      fs.FS
}

// Plan records what Register handed to the callback.
type Plan struct {
	Source   string
	Dialects []string
	Trees    []Tree
}

type RegisterFunc func(ctx context.Context, source string, tree Tree) error

type Option func(*planOptions)

type planOptions struct {
	source   string
	dialects []string
	root     fs.FS
}

func WithSource(source string) Option {
	return func(o *planOptions) {
		if trimmed := strings.TrimSpace(source); trimmed != "" {
			o.source = trimmed
		}
	}
}

// WithDialects limits registration to the given dialects.
func WithDialects(dialects ...string) Option {
	return func(o *planOptions) {
		if normalized := normalizeDialects(dialects); len(normalized) > 0 {
			o.dialects = normalized
		}
	}
}

// WithRoot replaces the embedded migration tree.
func WithRoot(root fs.FS) Option {
	return func(o *planOptions) {
		if root != nil {
			o.root = root
		}
	}
}

// DialectForDriver maps a database/sql driver name to a migration dialect.
func DialectForDriver(driver string) (string, error) {
	switch strings.TrimSpace(strings.ToLower(driver)) {
	case "sqlite", "sqlite3":
		return DialectSQLite, nil
	case "postgres", "postgresql", "pg", "pgx":
		return DialectPostgres, nil
	default:
		return "", fmt.Errorf("migrations: unsupported driver %q", driver)
	}
}

// ForDialect forwards only the tree of one dialect, typically to a
// persistence client's RegisterSQLMigrations.
func ForDialect(dialect string, register func(fsys fs.FS)) RegisterFunc {
	dialect = strings.TrimSpace(strings.ToLower(dialect))
	return func(_ context.Context, _ string, tree Tree) error {
		if register == nil {
			return fmt.Errorf("migrations: register callback is required")
		}
		if tree.Dialect == dialect {
			register(tree.FS)
		}
		return nil
	}
}

// Trees resolves the postgres tree at data/sql/migrations and the sqlite
// tree beneath it. Each must hold at least one *.up.sql file.
func Trees(root fs.FS) ([]Tree, error) {
	if root == nil {
		root = ils.GetMigrationsFS()
	}
	base, err := fs.Sub(root, migrationsDir)
	if err != nil {
		return nil, fmt.Errorf("migrations: resolve %s: %w", migrationsDir, err)
	}
	sqliteFS, err := fs.Sub(base, DialectSQLite)
	if err != nil {
		return nil, fmt.Errorf("migrations: resolve sqlite tree: %w", err)
	}
	trees := []Tree{
		{Dialect: DialectPostgres, Path: migrationsDir, FS: base},
		{Dialect: DialectSQLite, Path: migrationsDir + "/" + DialectSQLite, FS: sqliteFS},
	}
	for _, tree := range trees {
		ups, err := fs.Glob(tree.FS, "*.up.sql")
		if err != nil {
			return nil, fmt.Errorf("migrations: glob %s: %w", tree.Path, err)
		}
		if len(ups) == 0 {
			return nil, fmt.Errorf("migrations: %s tree %q has no *.up.sql files", tree.Dialect, tree.Path)
		}
	}
	return trees, nil
}

// Register hands every selected dialect tree to registerFn in order.
func Register(ctx context.Context, registerFn RegisterFunc, opts ...Option) (Plan, error) {
	options := planOptions{
		source:   defaultSource,
		dialects: []string{DialectPostgres, DialectSQLite},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}
	plan := Plan{Source: options.source, Dialects: options.dialects}
	if registerFn == nil {
		return plan, fmt.Errorf("migrations: register function is required")
	}

	trees, err := Trees(options.root)
	if err != nil {
		return plan, err
	}
	for _, tree := range trees {
		if !slices.Contains(options.dialects, tree.Dialect) {
			continue
		}
		if err := registerFn(ctx, plan.Source, tree); err != nil {
			return plan, fmt.Errorf("migrations: register %s: %w", tree.Dialect, err)
		}
		plan.Trees = append(plan.Trees, tree)
	}
	return plan, nil
}

func normalizeDialects(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		value = strings.TrimSpace(strings.ToLower(value))
		if value != "" && !slices.Contains(out, value) {
			out = append(out, value)
		}
	}
	return out
}
