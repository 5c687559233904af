package store

import (
	"context"
	"encoding/json"
	"strings"
	"time"
)

// UIPrefs stores small, user-facing board state for restoring the last screen on relaunch.
// It is best effort: callers tolerate missing or invalid data.
type UIPrefs struct {
	Version int `json:"version"`

	// Mode is one of: board|list|stats
	Mode string `json:"mode,omitempty"`
	// Filter is ALL or a project status.
	Filter string `json:"filter,omitempty"`
	Search string `json:"search,omitempty"`
}

func (s Store) LoadUIPrefs(ctx context.Context) (*UIPrefs, error) {
	if strings.TrimSpace(s.Dir) == "" {
		return &UIPrefs{Version: 1}, nil
	}
	db, err := s.openSQLite(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	raw, err := s.get(ctx, db, keyUIPrefs)
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return &UIPrefs{Version: 1}, nil
	}
	var p UIPrefs
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		// Corrupt prefs are treated as missing.
		return &UIPrefs{Version: 1}, nil
	}
	if p.Version == 0 {
		p.Version = 1
	}
	return &p, nil
}

func (s Store) SaveUIPrefs(ctx context.Context, p *UIPrefs) error {
	if p == nil || strings.TrimSpace(s.Dir) == "" {
		return nil
	}
	if p.Version == 0 {
		p.Version = 1
	}
	b, err := json.Marshal(p)
	if err != nil {
		return err
	}
	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()
	_, err = db.ExecContext(ctx, `INSERT OR REPLACE INTO kv(k, v, updated_at_unixms) VALUES(?, ?, ?)`, keyUIPrefs, string(b), time.Now().UTC().UnixMilli())
	return err
}
