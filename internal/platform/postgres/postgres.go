package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// Open connects to PostgreSQL and verifies the connection.
func Open(ctx context.Context, databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// EnsureSchema creates the tables this service owns. Donor and recipient
// identity rows are provisioned by the surrounding account layer; the columns
// here are only the subset this core reads and writes. References are weak
// on purpose: orphaned donor/recipient IDs are tolerated, never cascaded.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS donors (
			id TEXT PRIMARY KEY,
			blood_type TEXT NOT NULL,
			last_donation_date DATE
		)`,
		`CREATE TABLE IF NOT EXISTS recipients (
			id TEXT PRIMARY KEY,
			blood_type TEXT NOT NULL,
			last_request_date DATE
		)`,
		`CREATE TABLE IF NOT EXISTS blood_units (
			id UUID PRIMARY KEY,
			blood_type TEXT NOT NULL,
			quantity_ml INTEGER NOT NULL CHECK (quantity_ml > 0),
			donor_id TEXT,
			collection_date DATE NOT NULL,
			expiry_date DATE NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_blood_units_type_expiry
			ON blood_units (blood_type, expiry_date)`,
		`CREATE INDEX IF NOT EXISTS idx_blood_units_fifo
			ON blood_units (blood_type, collection_date, id)`,
		`CREATE TABLE IF NOT EXISTS blood_requests (
			id UUID PRIMARY KEY,
			blood_type TEXT NOT NULL,
			quantity_ml INTEGER NOT NULL,
			recipient_id TEXT,
			request_date DATE NOT NULL,
			status TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_blood_requests_recipient
			ON blood_requests (recipient_id, request_date DESC)`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
