package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"uplink/internal/domain"
)

// Well-known flag names shared between the foreground and background
// execution contexts.
const (
	// FlagForeground is "true" while an interactive session is visible.
	// Written by the foreground context, polled by background cycles.
	FlagForeground = "foreground"
)

func (s *SQLite) SetFlag(ctx context.Context, name, value string) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO sync_flags (name, value, updated_at) VALUES (?,?,?)
ON CONFLICT(name) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at`,
		name, value, time.Now().UnixNano())
	return err
}

func (s *SQLite) GetFlag(ctx context.Context, name string) (Flag, error) {
	row := s.db.QueryRowContext(ctx, `SELECT value, updated_at FROM sync_flags WHERE name=?`, name)
	var (
		value   string
		updated int64
	)
	if err := row.Scan(&value, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Flag{}, domain.ErrNotFound
		}
		return Flag{}, err
	}
	return Flag{Name: name, Value: value, UpdatedAt: time.Unix(0, updated).UTC()}, nil
}
