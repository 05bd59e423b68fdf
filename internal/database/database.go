package database

import (
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// Connect opens the embedded SQLite database at path.
func Connect(path string) (*sqlx.DB, error) {
	// _busy_timeout avoids spurious SQLITE_BUSY under the matchmaker's
	// concurrent handlers; foreign keys are off by default in sqlite.
	db, err := sqlx.Connect("sqlite3", path+"?_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, err
	}

	// A single writer keeps sqlite happy; reads share the same connection pool.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return db, nil
}
