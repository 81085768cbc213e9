package config

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mstgnz/posgate/provider"
)

// SQLiteSecretStore handles persistent storage of gateway secrets: store
// keys and provision passwords. It implements provider.SecretStore; reads
// always hit the database so a rotated secret takes effect on the next
// request.
type SQLiteSecretStore struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// retryOperation executes a database operation with retry logic for SQLITE_BUSY errors
func (s *SQLiteSecretStore) retryOperation(operation func() error, maxRetries int) error {
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		err := operation()
		if err == nil {
			return nil
		}

		// Check if it's a busy error
		if strings.Contains(err.Error(), "SQLITE_BUSY") || strings.Contains(err.Error(), "database is locked") {
			lastErr = err
			if attempt < maxRetries {
				// Exponential backoff: 10ms, 20ms, 40ms, 80ms
				backoff := time.Duration(10*(1<<attempt)) * time.Millisecond
				log.Printf("SQLite busy, retrying in %v (attempt %d/%d)", backoff, attempt+1, maxRetries+1)
				time.Sleep(backoff)
				continue
			}
		} else {
			// Not a retry-able error
			return err
		}
	}

	return fmt.Errorf("operation failed after %d retries, last error: %w", maxRetries+1, lastErr)
}

// NewSQLiteSecretStore creates a new SQLite secret store optimized for multiple processes
func NewSQLiteSecretStore(dbPath string) (*SQLiteSecretStore, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	// SQLite connection string with multi-process optimizations
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=1000&_timeout=20000&_txlock=immediate", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(0)

	store := &SQLiteSecretStore{
		db:   db,
		path: dbPath,
	}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	if err := store.optimizeForMultiProcess(); err != nil {
		log.Printf("Warning: Failed to apply optimizations: %v", err)
	}

	log.Printf("SQLite secret store initialized at: %s", dbPath)
	return store, nil
}

// initSchema creates the necessary tables
func (s *SQLiteSecretStore) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS gateway_secrets (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		value TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_secret_name ON gateway_secrets(name);

	-- Trigger to update updated_at column
	CREATE TRIGGER IF NOT EXISTS update_gateway_secrets_updated_at
		AFTER UPDATE ON gateway_secrets
	BEGIN
		UPDATE gateway_secrets SET updated_at = CURRENT_TIMESTAMP WHERE id = NEW.id;
	END;
	`

	_, err := s.db.Exec(query)
	return err
}

// optimizeForMultiProcess applies SQLite optimizations for multi-process access
func (s *SQLiteSecretStore) optimizeForMultiProcess() error {
	optimizations := []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA synchronous = NORMAL;",
		"PRAGMA cache_size = 1000;",
		"PRAGMA busy_timeout = 30000;",
		"PRAGMA temp_store = memory;",
	}

	for _, pragma := range optimizations {
		if _, err := s.db.Exec(pragma); err != nil {
			log.Printf("Warning: Failed to execute %s: %v", pragma, err)
		}
	}

	var journalMode string
	if err := s.db.QueryRow("PRAGMA journal_mode;").Scan(&journalMode); err != nil {
		return fmt.Errorf("failed to check journal mode: %w", err)
	}

	log.Printf("SQLite journal mode: %s", journalMode)
	return nil
}

// SaveSecret inserts or rotates a secret value
func (s *SQLiteSecretStore) SaveSecret(name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if name == "" {
		return fmt.Errorf("secret name cannot be empty")
	}
	if value == "" {
		return fmt.Errorf("secret value cannot be empty")
	}

	return s.retryOperation(func() error {
		query := `
		INSERT INTO gateway_secrets (name, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(name)
		DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
		`

		if _, err := s.db.Exec(query, name, value); err != nil {
			return fmt.Errorf("failed to save secret: %w", err)
		}

		log.Printf("Saved secret %s", name)
		return nil
	}, 3)
}

// GetSecret implements provider.SecretStore. The value is read fresh on
// every call.
func (s *SQLiteSecretStore) GetSecret(ctx context.Context, name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var value string
	err := s.retryOperation(func() error {
		query := `SELECT value FROM gateway_secrets WHERE name = ?`

		err := s.db.QueryRowContext(ctx, query, name).Scan(&value)
		if err != nil {
			if err == sql.ErrNoRows {
				return provider.ErrSecretNotFound
			}
			return fmt.Errorf("failed to load secret: %w", err)
		}
		return nil
	}, 3)

	return value, err
}

// DeleteSecret removes a secret from the store
func (s *SQLiteSecretStore) DeleteSecret(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.retryOperation(func() error {
		result, err := s.db.Exec(`DELETE FROM gateway_secrets WHERE name = ?`, name)
		if err != nil {
			return fmt.Errorf("failed to delete secret: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}

		if rowsAffected == 0 {
			return provider.ErrSecretNotFound
		}

		log.Printf("Deleted secret %s", name)
		return nil
	}, 3)
}

// ListSecretNames returns the names of all stored secrets. Values are
// never listed.
func (s *SQLiteSecretStore) ListSecretNames() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`SELECT name FROM gateway_secrets ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query secret names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan secret name: %w", err)
		}
		names = append(names, name)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating secret rows: %w", err)
	}

	return names, nil
}

// Close closes the database connection
func (s *SQLiteSecretStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// GetStats returns database statistics
func (s *SQLiteSecretStore) GetStats() (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := make(map[string]any)

	var totalSecrets int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM gateway_secrets").Scan(&totalSecrets); err != nil {
		return nil, fmt.Errorf("failed to count secrets: %w", err)
	}
	stats["total_secrets"] = totalSecrets

	if fileInfo, err := os.Stat(s.path); err == nil {
		stats["db_size_bytes"] = fileInfo.Size()
	}

	stats["db_path"] = s.path

	return stats, nil
}
