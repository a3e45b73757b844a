package sqlstore

import (
	"database/sql"
	"fmt"
	"strings"

	persistence "github.com/goliatone/go-persistence-bun"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/schema"
)

// Open returns a bun DB for the sqlite3 or postgres driver.
func Open(driver string, dsn string) (*bun.DB, error) {
	driver = strings.TrimSpace(strings.ToLower(driver))
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("sqlstore: dsn is required")
	}

	var (
		driverName string
		dialect    schema.Dialect
	)
	switch driver {
	case "sqlite", "sqlite3":
		driverName = "sqlite3"
		dialect = sqlitedialect.New()
	case "postgres", "postgresql", "pg":
		driverName = "postgres"
		dialect = pgdialect.New()
	default:
		return nil, fmt.Errorf("sqlstore: unsupported driver %q", driver)
	}

	sqlDB, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open %s: %w", driverName, err)
	}
	if driverName == "sqlite3" {
		sqlDB.SetMaxOpenConns(1)
	}
	return bun.NewDB(sqlDB, dialect), nil
}

func NewCacheStoreFromPersistence(client *persistence.Client) (*CacheStore, error) {
	db, err := resolveBunDB(client)
	if err != nil {
		return nil, err
	}
	return NewCacheStore(db)
}

func NewCacheStoreFromDB(db *bun.DB) (*CacheStore, error) {
	return NewCacheStore(db)
}

func resolveBunDB(candidate any) (*bun.DB, error) {
	switch typed := candidate.(type) {
	case nil:
		return nil, fmt.Errorf("sqlstore: persistence client is required")
	case *persistence.Client:
		if typed == nil {
			return nil, fmt.Errorf("sqlstore: persistence client is required")
		}
		return nonNilDB(typed.DB())
	case *bun.DB:
		return typed, nil
	case interface{ DB() *bun.DB }:
		return nonNilDB(typed.DB())
	default:
		return nil, fmt.Errorf("sqlstore: unsupported persistence client type %T", candidate)
	}
}

func nonNilDB(db *bun.DB) (*bun.DB, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: persistence client returned nil bun db")
	}
	return db, nil
}
