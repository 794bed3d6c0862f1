package db

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// RunMigrations executes the .sql files from migrationsDir in name order,
// falling back to the embedded copies when the directory is unset or absent.
func RunMigrations(db *sql.DB, migrationsDir string) error {
	names, fsys, err := migrationSource(migrationsDir)
	if err != nil {
		return err
	}
	for _, name := range names {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if len(data) == 0 {
			continue
		}
		if _, err := db.Exec(string(data)); err != nil {
			return fmt.Errorf("exec migration %s: %w", name, err)
		}
	}
	return nil
}

func migrationSource(dir string) ([]string, fs.FS, error) {
	if dir != "" {
		if _, err := os.Stat(dir); err == nil {
			fsys := os.DirFS(dir)
			names, gerr := fs.Glob(fsys, "*.sql")
			if gerr != nil {
				return nil, nil, fmt.Errorf("scan migrations: %w", gerr)
			}
			sort.Strings(names)
			return names, fsys, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, nil, fmt.Errorf("read migrations: %w", err)
		}
	}
	fsys, err := fs.Sub(embeddedMigrations, "migrations")
	if err != nil {
		return nil, nil, fmt.Errorf("embedded migrations: %w", err)
	}
	names, err := fs.Glob(fsys, "*.sql")
	if err != nil {
		return nil, nil, fmt.Errorf("scan embedded migrations: %w", err)
	}
	sort.Strings(names)
	return names, fsys, nil
}
