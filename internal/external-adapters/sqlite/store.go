// Package sqlite persists certificate descriptions in a SQLite database.
package sqlite

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ochairo/certdesc/internal/domain/entities"
	"github.com/ochairo/certdesc/internal/domain/interfaces"
)

// Store implements repositories.DescriptionRepository over SQLite.
// Names are stored in their processed (reversed) form so that a prefix
// query groups certificates by domain suffix.
type Store struct {
	db     *sql.DB
	logger interfaces.Logger
}

// Open opens (creating if needed) the database at path and its schema.
// The special path ":memory:" opens a private in-memory database.
func Open(path string, logger interfaces.Logger) (*Store, error) {
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}

	dsn := path
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "" {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		dsn = "file:" + path + "?_foreign_keys=on&_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	s := &Store{db: db, logger: logger}
	if err := s.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	logger.Debug("Database opened", interfaces.F("path", path))
	return s, nil
}

func (s *Store) createTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS descriptions (
			fingerprint TEXT PRIMARY KEY,
			serial_number TEXT NOT NULL,
			not_before INTEGER NOT NULL,
			not_after INTEGER NOT NULL,
			record TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS names (
			fingerprint TEXT NOT NULL REFERENCES descriptions(fingerprint) ON DELETE CASCADE,
			field TEXT NOT NULL,
			type TEXT NOT NULL,
			value TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_names_value ON names(value)`,
		`CREATE INDEX IF NOT EXISTS idx_names_fingerprint ON names(fingerprint)`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}

	return nil
}

// Fingerprint returns the upper-case hex SHA-256 digest of der
func Fingerprint(der []byte) string {
	sum := sha256.Sum256(der)
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

// Save stores desc, replacing any earlier record of the same certificate
func (s *Store) Save(ctx context.Context, desc *entities.CertificateDescription) (string, error) {
	if desc == nil {
		return "", fmt.Errorf("description is nil")
	}

	record, err := json.Marshal(desc)
	if err != nil {
		return "", fmt.Errorf("failed to encode description: %w", err)
	}

	fp := Fingerprint(desc.DER)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	//nolint:errcheck // Rollback after commit is a no-op
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM names WHERE fingerprint = ?`, fp); err != nil {
		return "", fmt.Errorf("failed to clear names: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO descriptions (fingerprint, serial_number, not_before, not_after, record)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(fingerprint) DO UPDATE SET
			serial_number = excluded.serial_number,
			not_before = excluded.not_before,
			not_after = excluded.not_after,
			record = excluded.record`,
		fp, desc.SerialNumber, desc.Validity.NotBefore, desc.Validity.NotAfter, string(record))
	if err != nil {
		return "", fmt.Errorf("failed to store description: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO names (fingerprint, field, type, value) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("failed to prepare name insert: %w", err)
	}
	//nolint:errcheck // Defer close
	defer stmt.Close()

	fields := []struct {
		field entities.NameField
		names []entities.NameAttribute
	}{
		{entities.NameFieldSubject, desc.Subject},
		{entities.NameFieldIssuer, desc.Issuer},
		{entities.NameFieldSAN, desc.SubjectAlternativeNames},
	}
	for _, f := range fields {
		for _, name := range f.names {
			if _, err := stmt.ExecContext(ctx, fp, string(f.field), name.Type, name.Value); err != nil {
				return "", fmt.Errorf("failed to store %s name: %w", f.field, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit description: %w", err)
	}

	s.logger.Debug("Description stored",
		interfaces.F("fingerprint", fp),
		interfaces.F("serial", desc.SerialNumber))
	return fp, nil
}

// Get returns the stored description with the given fingerprint
func (s *Store) Get(ctx context.Context, fingerprint string) (*entities.CertificateDescription, error) {
	var record string
	err := s.db.QueryRowContext(ctx,
		`SELECT record FROM descriptions WHERE fingerprint = ?`,
		strings.ToUpper(fingerprint)).Scan(&record)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("description %s: %w", fingerprint, entities.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query description: %w", err)
	}

	var desc entities.CertificateDescription
	if err := json.Unmarshal([]byte(record), &desc); err != nil {
		return nil, fmt.Errorf("failed to decode description %s: %w", fingerprint, err)
	}
	return &desc, nil
}

// FindByName returns fingerprints, ordered, of descriptions having a name
// in field whose value starts with prefix. Matching ignores ASCII case.
func (s *Store) FindByName(ctx context.Context, prefix string, field entities.NameField) ([]string, error) {
	return s.findNames(ctx, `value LIKE ? ESCAPE '\'`, []any{escapeLike(prefix) + "%"}, field)
}

// FindByHost returns fingerprints, ordered, of descriptions having a name
// in field equal to the processed host name or below it. Matching stops at
// label boundaries: "com.example" finds "com.example.www" but not
// "com.examplesite". Matching ignores ASCII case.
func (s *Store) FindByHost(ctx context.Context, host string, field entities.NameField) ([]string, error) {
	host = strings.TrimSuffix(host, ".")
	if host == "" {
		return nil, fmt.Errorf("host name is empty")
	}
	return s.findNames(ctx,
		`(value = ? COLLATE NOCASE OR value LIKE ? ESCAPE '\')`,
		[]any{host, escapeLike(host) + ".%"},
		field)
}

func (s *Store) findNames(ctx context.Context, cond string, args []any, field entities.NameField) ([]string, error) {
	query := `SELECT DISTINCT fingerprint FROM names WHERE ` + cond
	if field != "" {
		if !field.Valid() {
			return nil, fmt.Errorf("unknown name field %q", field)
		}
		query += ` AND field = ?`
		args = append(args, string(field))
	}
	query += ` ORDER BY fingerprint`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search names: %w", err)
	}
	//nolint:errcheck // Defer close
	defer rows.Close()

	var fingerprints []string
	for rows.Next() {
		var fp string
		if err := rows.Scan(&fp); err != nil {
			return nil, fmt.Errorf("failed to scan fingerprint: %w", err)
		}
		fingerprints = append(fingerprints, fp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read search results: %w", err)
	}

	return fingerprints, nil
}

// Count returns the number of stored descriptions
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM descriptions`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count descriptions: %w", err)
	}
	return count, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
