package db

import (
	"context"
	"database/sql/driver"
	"errors"
	"io"
	"log"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/unklstewy/skytrack/pkg/config"
	"github.com/unklstewy/skytrack/pkg/retry"
)

// ReconnectWithRetry connects to the database with exponential backoff.
// This provides resilience against temporary database outages at startup.
func ReconnectWithRetry(ctx context.Context, cfg config.DatabaseConfig, rc retry.Config) (*DB, error) {
	attempt := 0
	db, err := retry.DoResult(ctx, rc, func() (*DB, error) {
		attempt++
		log.Printf("Database connection attempt %d...", attempt)
		return Connect(cfg)
	})
	if err != nil {
		log.Printf("Failed to connect after %d attempts", attempt)
		return nil, err
	}

	log.Println("✓ Database connected")
	return db, nil
}

// HealthCheck reports whether the database answers a trivial query.
func HealthCheck(ctx context.Context, db *DB) bool {
	if db == nil || db.DB == nil {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var result int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		log.Printf("Health check failed - query error: %v", err)
		return false
	}

	if result != 1 {
		log.Printf("Health check failed - unexpected result: %d", result)
		return false
	}

	return true
}

// WithRetry executes a database operation, retrying only on connection
// failures. Any other error is returned immediately.
func WithRetry(ctx context.Context, operation func() error, maxRetries int) error {
	rc := retry.DefaultConfig()
	rc.MaxRetries = maxRetries

	var permanent error
	err := retry.Do(ctx, rc, func() error {
		err := operation()
		if err != nil && !isConnectionError(err) {
			permanent = err
			return nil
		}
		return err
	})
	if permanent != nil {
		return permanent
	}
	return err
}

// connErrorPatterns match network failures that surface as plain errors.
var connErrorPatterns = []string{
	"connection refused",
	"broken pipe",
	"no connection",
	"connection reset",
	"timeout",
}

// isConnectionError reports whether err looks transient.
func isConnectionError(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, io.EOF) {
		return true
	}

	// SQLSTATE class 08: connection exception
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code.Class() == "08"
	}

	msg := strings.ToLower(err.Error())
	for _, pattern := range connErrorPatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}
