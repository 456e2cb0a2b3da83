// Package store persists game snapshots. Every backend satisfies
// game.Repository so a game can save itself after each command.
package store

import (
	"context"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"

	"github.com/lox/holdem-engine/internal/game"
)

// ErrNotFound is returned by Load when no snapshot exists for a game.
var ErrNotFound = errors.New("snapshot not found")

// Store is a snapshot repository that can also enumerate and forget games.
type Store interface {
	game.Repository
	List(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, gameID string) error
	Close() error
}

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func encode(snap game.Snapshot) ([]byte, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, errors.Wrapf(err, "encoding snapshot %s", snap.GameID)
	}
	return data, nil
}

func decode(gameID string, data []byte) (game.Snapshot, error) {
	var snap game.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return game.Snapshot{}, errors.Wrapf(err, "decoding snapshot %s", gameID)
	}
	return snap, nil
}

// Open creates a store from a URL:
//
//	memory://
//	file:///var/lib/holdem
//	sqlite://holdem.db
//	redis://localhost:6379/0
func Open(rawURL string) (Store, error) {
	scheme, rest, ok := strings.Cut(rawURL, "://")
	if !ok {
		return nil, errors.Errorf("store URL %q has no scheme", rawURL)
	}
	switch scheme {
	case "memory":
		return NewMemory(), nil
	case "file":
		return NewFile(rest)
	case "sqlite", "sqlite3":
		return NewSQLite(rest)
	case "redis":
		opts, err := parseRedisURL(rawURL)
		if err != nil {
			return nil, err
		}
		return NewRedis(opts), nil
	}
	return nil, errors.Errorf("unknown store scheme %q", scheme)
}
