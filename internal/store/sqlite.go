package store

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/lox/holdem-engine/internal/game"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS snapshots (
	game_id     TEXT PRIMARY KEY,
	hand_number INTEGER NOT NULL,
	phase       TEXT NOT NULL,
	data        BLOB NOT NULL,
	updated_at  TIMESTAMP NOT NULL
)`

// SQLite keeps the latest snapshot of each game in a single table. The hand
// number and phase are stored in their own columns for ad-hoc queries.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (or creates) the database at path.
func NewSQLite(path string) (*SQLite, error) {
	if path == "" {
		return nil, errors.New("sqlite store needs a path")
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	// One writer at a time; sqlite serialises writes anyway.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "creating tables")
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Save(ctx context.Context, snap game.Snapshot) error {
	data, err := encode(snap)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO snapshots (game_id, hand_number, phase, data, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(game_id) DO UPDATE SET
			hand_number = excluded.hand_number,
			phase = excluded.phase,
			data = excluded.data,
			updated_at = excluded.updated_at`,
		snap.GameID, snap.HandNumber, snap.Phase.String(), data, time.Now().UTC())
	return errors.Wrapf(err, "saving snapshot %s", snap.GameID)
}

func (s *SQLite) Load(ctx context.Context, gameID string) (game.Snapshot, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, "SELECT data FROM snapshots WHERE game_id = ?", gameID).Scan(&data)
	if err == sql.ErrNoRows {
		return game.Snapshot{}, ErrNotFound
	} else if err != nil {
		return game.Snapshot{}, errors.Wrapf(err, "loading snapshot %s", gameID)
	}
	return decode(gameID, data)
}

func (s *SQLite) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT game_id FROM snapshots ORDER BY game_id")
	if err != nil {
		return nil, errors.Wrap(err, "listing snapshots")
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errors.Wrap(err, "listing snapshots")
		}
		ids = append(ids, id)
	}
	return ids, errors.Wrap(rows.Err(), "listing snapshots")
}

func (s *SQLite) Delete(ctx context.Context, gameID string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM snapshots WHERE game_id = ?", gameID)
	return errors.Wrapf(err, "deleting snapshot %s", gameID)
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
