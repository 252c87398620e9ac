// Package savedata persists actors' stat sheets in a sqlite file.
package savedata

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"statbars/internal/stats"
)

// ErrNoSheet is returned by LoadSheet when nothing was saved for an actor.
var ErrNoSheet = errors.New("no saved sheet")

// Store wraps the sqlite connection.
type Store struct {
	conn *sql.DB
}

// Open opens (or creates) the save file at path.
func Open(path string) (*Store, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open save db %s: %w", path, err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("save db %s: enable WAL: %w", path, err)
	}

	s := &Store{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("save db %s: migrate: %w", path, err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Durations are stored as nanoseconds.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS stat_sheets (
		actor TEXT NOT NULL,
		stat INTEGER NOT NULL,
		current REAL NOT NULL,
		min REAL NOT NULL,
		max REAL NOT NULL,
		min_lerp_ns INTEGER NOT NULL,
		max_lerp_ns INTEGER NOT NULL,
		has_regen INTEGER NOT NULL DEFAULT 0,
		regen_value REAL NOT NULL DEFAULT 0,
		regen_interval_ns INTEGER NOT NULL DEFAULT 0,
		reenable_regen_ns INTEGER NOT NULL DEFAULT 0,
		saved_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (actor, stat)
	);
	`
	_, err := s.conn.Exec(schema)
	return err
}

// SaveSheet replaces everything saved for actor with sheet. Only settled
// values are stored: an animating stat is saved at its target value.
func (s *Store) SaveSheet(ctx context.Context, actor string, sheet map[stats.Stat]stats.StatData) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save %s: %w", actor, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM stat_sheets WHERE actor = ?", actor); err != nil {
		return fmt.Errorf("save %s: clear: %w", actor, err)
	}
	for key, d := range sheet {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO stat_sheets (actor, stat, current, min, max, min_lerp_ns, max_lerp_ns,
				has_regen, regen_value, regen_interval_ns, reenable_regen_ns)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			actor, int(key), d.Current, d.Min, d.Max,
			int64(d.MinLerpTime), int64(d.MaxLerpTime),
			d.HasRegeneration, d.RegenValue,
			int64(d.RegenInterval), int64(d.ReenableRegenDelay),
		)
		if err != nil {
			return fmt.Errorf("save %s: %s: %w", actor, key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save %s: commit: %w", actor, err)
	}
	return nil
}

// LoadSheet returns the saved sheet of actor with Displayed equal to
// Current, or ErrNoSheet.
func (s *Store) LoadSheet(ctx context.Context, actor string) (map[stats.Stat]stats.StatData, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT stat, current, min, max, min_lerp_ns, max_lerp_ns,
			has_regen, regen_value, regen_interval_ns, reenable_regen_ns
		FROM stat_sheets WHERE actor = ?`, actor)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", actor, err)
	}
	defer rows.Close()

	sheet := make(map[stats.Stat]stats.StatData)
	for rows.Next() {
		var (
			key                                   int
			d                                     stats.StatData
			minLerp, maxLerp, interval, reenable int64
		)
		if err := rows.Scan(&key, &d.Current, &d.Min, &d.Max, &minLerp, &maxLerp,
			&d.HasRegeneration, &d.RegenValue, &interval, &reenable); err != nil {
			return nil, fmt.Errorf("load %s: %w", actor, err)
		}
		d.Displayed = d.Current
		d.MinLerpTime = time.Duration(minLerp)
		d.MaxLerpTime = time.Duration(maxLerp)
		d.RegenInterval = time.Duration(interval)
		d.ReenableRegenDelay = time.Duration(reenable)
		sheet[stats.Stat(key)] = d
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load %s: %w", actor, err)
	}
	if len(sheet) == 0 {
		return nil, fmt.Errorf("load %s: %w", actor, ErrNoSheet)
	}
	return sheet, nil
}

// Actors lists every actor with a saved sheet, sorted by name.
func (s *Store) Actors(ctx context.Context) ([]string, error) {
	rows, err := s.conn.QueryContext(ctx, "SELECT DISTINCT actor FROM stat_sheets ORDER BY actor")
	if err != nil {
		return nil, fmt.Errorf("list actors: %w", err)
	}
	defer rows.Close()

	var actors []string
	for rows.Next() {
		var a string
		if err := rows.Scan(&a); err != nil {
			return nil, fmt.Errorf("list actors: %w", err)
		}
		actors = append(actors, a)
	}
	return actors, rows.Err()
}

// DeleteSheet forgets actor. Deleting an unknown actor is not an error.
func (s *Store) DeleteSheet(ctx context.Context, actor string) error {
	if _, err := s.conn.ExecContext(ctx, "DELETE FROM stat_sheets WHERE actor = ?", actor); err != nil {
		return fmt.Errorf("delete %s: %w", actor, err)
	}
	return nil
}
