package database

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	_ "github.com/lib/pq"
)

var PostgresDB *sql.DB

// ConnectPostgres connects to the PostgreSQL database that holds the auth audit trail.
func ConnectPostgres(ctx context.Context, postgresURI string) error {
	db, err := sql.Open("postgres", postgresURI)
	if err != nil {
		return err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return err
	}

	if err := InitPostgresTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	PostgresDB = db
	slog.Info("connected to PostgreSQL")
	return nil
}

// InitPostgresTables creates the audit tables if they don't exist
func InitPostgresTables(ctx context.Context, db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS auth_events (
			id UUID PRIMARY KEY,
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			event_type VARCHAR(50) NOT NULL,
			user_id VARCHAR(64),
			ip_address VARCHAR(255),
			success BOOLEAN NOT NULL,
			detail TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_auth_events_user_id ON auth_events(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_auth_events_created_at ON auth_events(created_at)`,
	}

	for _, query := range queries {
		if _, err := db.ExecContext(ctx, query); err != nil {
			return err
		}
	}
	return nil
}

// DisconnectPostgres closes the PostgreSQL connection
func DisconnectPostgres() error {
	if PostgresDB != nil {
		return PostgresDB.Close()
	}
	return nil
}
