package session

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strconv"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Phantom-VK/icrs/internal/model"
)

//go:embed schema.sql
var schemaFS embed.FS

// Storage keys, matching what the web client kept in localStorage.
const (
	keyToken       = "token"
	keyTokenExpiry = "tokenExpiry"
	keyRole        = "role"
	keyUsername    = "username"
	keyEmail       = "email"
	keyIsLoggedIn  = "isLoggedIn"
)

func Open(path string) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("session db path is required")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if err := applySchema(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

func applySchema(ctx context.Context, db *sql.DB) error {
	schemaSQL, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("read schema: %w", err)
	}

	if _, err := db.ExecContext(ctx, string(schemaSQL)); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}

	return nil
}

// SQLite is the on-disk Store backing normal runs.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(db *sql.DB) *SQLite {
	return &SQLite{db: db}
}

func (s *SQLite) Get(ctx context.Context) (model.Session, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT key, value FROM session")
	if err != nil {
		return model.Session{}, err
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return model.Session{}, err
		}
		values[key] = value
	}
	if err := rows.Err(); err != nil {
		return model.Session{}, err
	}

	result := model.Session{
		Token:    values[keyToken],
		Role:     values[keyRole],
		Username: values[keyUsername],
		Email:    values[keyEmail],
	}
	if raw := values[keyTokenExpiry]; raw != "" {
		millis, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return model.Session{}, fmt.Errorf("parse %s: %w", keyTokenExpiry, err)
		}
		result.Expiry = time.UnixMilli(millis)
	}
	return result, nil
}

func (s *SQLite) Set(ctx context.Context, sess model.Session) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	pairs := map[string]string{
		keyToken:       sess.Token,
		keyTokenExpiry: strconv.FormatInt(sess.Expiry.UnixMilli(), 10),
		keyRole:        sess.Role,
		keyUsername:    sess.Username,
		keyEmail:       sess.Email,
		keyIsLoggedIn:  "true",
	}
	for key, value := range pairs {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO session (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
			key, value,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *SQLite) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM session")
	return err
}
