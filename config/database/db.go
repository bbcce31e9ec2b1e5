package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"manjaword/config"
	"manjaword/pkg/logger"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS recent_documents (
	path    TEXT PRIMARY KEY,
	kind    TEXT NOT NULL,
	used_at TIMESTAMP NOT NULL
)`

// Connect opens the recent-documents database. SQLite lives in the
// application data directory; postgres needs an explicit DSN.
func Connect(cfg *config.Config) (*sql.DB, error) {
	driver, dsn, err := resolve(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}
	if driver == "sqlite" {
		// One writer; the file is only touched by this process.
		db.SetMaxOpenConns(1)
	}

	for i := 0; i < 3; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		logger.Sugar.Infof("Database connection failed, retrying in 1s... (%v)", err)
		time.Sleep(time.Second)
	}
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("connect %s database: %w", driver, err)
	}

	if err := Migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	logger.Sugar.Infof("Connected to %s database", driver)
	return db, nil
}

// Migrate creates the tables the backend needs.
func Migrate(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func resolve(cfg *config.Config) (driver, dsn string, err error) {
	switch cfg.Database.Driver {
	case "postgres":
		if cfg.Database.DSN == "" {
			return "", "", fmt.Errorf("MANJAWORD_DB_DSN is required for the postgres driver")
		}
		return "postgres", cfg.Database.DSN, nil
	case "sqlite", "":
		if cfg.Database.DSN != "" {
			return "sqlite", cfg.Database.DSN, nil
		}
		dir, err := cfg.DataDir()
		if err != nil {
			return "", "", err
		}
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return "", "", fmt.Errorf("create data directory: %w", err)
		}
		path := filepath.Join(dir, "manjaword.db")
		return "sqlite", path + "?_pragma=busy_timeout(5000)", nil
	default:
		return "", "", fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}
