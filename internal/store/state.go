package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const stateFileName = "state.sqlite"

// Keys shared by every session backend. Token and user are always written and cleared
// together.
const (
	keyAccessToken = "pp_access_token"
	keyUser        = "pp_user"
	keyUIPrefs     = "ui_prefs"
)

// SessionStore persists the access token and the serialized user as one unit.
type SessionStore interface {
	// LoadSession returns ("", "", nil) when nothing is stored.
	LoadSession(ctx context.Context) (token, userJSON string, err error)
	SaveSession(ctx context.Context, token, userJSON string) error
	ClearSession(ctx context.Context) error
	Close() error
}

// Store is the local state directory (state.sqlite + pulse.log).
type Store struct {
	Dir string
}

var _ SessionStore = Store{}

func (s Store) Ensure() error {
	if strings.TrimSpace(s.Dir) == "" {
		return errors.New("store dir is empty")
	}
	return os.MkdirAll(s.Dir, 0o700)
}

func (s Store) sqlitePath() string {
	return filepath.Join(s.Dir, stateFileName)
}

func (s Store) openSQLite(ctx context.Context) (*sql.DB, error) {
	if err := s.Ensure(); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", s.sqlitePath())
	if err != nil {
		return nil, err
	}
	// WAL + busy_timeout: the CLI and a running TUI may share the file.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS kv (
		k TEXT PRIMARY KEY,
		v TEXT NOT NULL,
		updated_at_unixms INTEGER NOT NULL
	);`); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func (s Store) get(ctx context.Context, db *sql.DB, k string) (string, error) {
	var v string
	err := db.QueryRowContext(ctx, `SELECT v FROM kv WHERE k = ?`, k).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return v, err
}

func (s Store) LoadSession(ctx context.Context) (string, string, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return "", "", err
	}
	defer db.Close()

	token, err := s.get(ctx, db, keyAccessToken)
	if err != nil {
		return "", "", err
	}
	user, err := s.get(ctx, db, keyUser)
	if err != nil {
		return "", "", err
	}
	return token, user, nil
}

func (s Store) SaveSession(ctx context.Context, token, userJSON string) error {
	if strings.TrimSpace(token) == "" || strings.TrimSpace(userJSON) == "" {
		return errors.New("token and user are both required")
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		now := time.Now().UTC().UnixMilli()
		for _, kv := range [][2]string{{keyAccessToken, token}, {keyUser, userJSON}} {
			if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO kv(k, v, updated_at_unixms) VALUES(?, ?, ?)`, kv[0], kv[1], now); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s Store) ClearSession(ctx context.Context) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `DELETE FROM kv WHERE k IN (?, ?)`, keyAccessToken, keyUser)
		return err
	})
}

// Close is a no-op: each call opens and closes its own connection.
func (s Store) Close() error { return nil }

func (s Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}
