package utils

import (
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"
)

func SetupDatabase(dsn string, log *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("DB connection error: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	log.Info("Database connection established successfully")

	if err := CreateTables(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	log.Info("Database tables and indexes created successfully")

	return db, nil
}

// CreateTables is idempotent. seq breaks ties between equal timestamps.
func CreateTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS messages (
			seq BIGSERIAL PRIMARY KEY,
			id UUID NOT NULL UNIQUE,
			"timestamp" TIMESTAMP NOT NULL,
			name VARCHAR(16) NOT NULL,
			message VARCHAR(1024) NOT NULL,
			filename TEXT
		)
	`)
	if err != nil {
		return fmt.Errorf("table creation error: %w", err)
	}

	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_messages_timestamp ON messages("timestamp" DESC, seq DESC)
	`)
	if err != nil {
		return fmt.Errorf("timestamp index creation error: %w", err)
	}
	return nil
}
