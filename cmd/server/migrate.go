package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Exios66/Cronbach-Alpha/internal/api"
	dbstore "github.com/Exios66/Cronbach-Alpha/internal/db"
)

// openStore picks the backing store from the environment. With
// CRONBACH_SQLITE_PATH set the server persists to SQLite, otherwise it
// keeps everything in memory.
func openStore() (api.Store, error) {
	sqlitePath := os.Getenv("CRONBACH_SQLITE_PATH")
	if sqlitePath == "" {
		log.Printf("CRONBACH_SQLITE_PATH not set, using in-memory store")
		return api.NewMemoryStore(), nil
	}
	return openSQLiteStore(sqlitePath, os.Getenv("CRONBACH_MIGRATIONS_DIR"))
}

func openSQLiteStore(sqlitePath, migrationsDir string) (api.Store, error) {
	if dir := filepath.Dir(sqlitePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?cache=shared&_busy_timeout=5000", filepath.ToSlash(sqlitePath))
	sqliteDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := dbstore.RunMigrations(sqliteDB, migrationsDir); err != nil {
		if cerr := sqliteDB.Close(); cerr != nil {
			log.Printf("warning: failed to close sqlite db: %v", cerr)
		}
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	store, err := dbstore.NewStore(sqliteDB)
	if err != nil {
		if cerr := sqliteDB.Close(); cerr != nil {
			log.Printf("warning: failed to close sqlite db: %v", cerr)
		}
		return nil, fmt.Errorf("init sqlite store: %w", err)
	}
	log.Printf("using sqlite store at %s", sqlitePath)
	return store, nil
}
