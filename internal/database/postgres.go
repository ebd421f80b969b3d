package database

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// NewPostgres opens the ledger database and verifies the connection
// before anything is served from it.
func NewPostgres(url string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger database: %w", err)
	}

	// Row locks hold connections for the length of a settlement; cap
	// the pool so contention surfaces as waits, not as connection
	// exhaustion on the server.
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	return db, nil
}
