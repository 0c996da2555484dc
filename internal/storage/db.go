package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"smarthire/internal/logger"
)

// DB wraps the SQL connection used by durable side stores such as the audit trail.
type DB struct {
	connection *sql.DB
}

// NewDB opens a PostgreSQL connection.
func NewDB(dataSourceName string) (*DB, error) {
	return OpenDB("postgres", dataSourceName)
}

// OpenDB opens and pings a connection through any registered driver.
func OpenDB(driverName, dataSourceName string) (*DB, error) {
	db, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		return nil, err
	}

	// Connection pool tuning
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driverName, err)
	}

	return &DB{connection: db}, nil
}

func (db *DB) Close() {
	if err := db.connection.Close(); err != nil {
		l := logger.Get()
		l.Error().Err(err).Msg("error closing the database connection")
	}
}

// GetConnection returns the underlying database connection for advanced queries
func (db *DB) GetConnection() *sql.DB {
	return db.connection
}
