package store

import (
	"context"
	"slices"
	"strings"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"

	"github.com/lox/holdem-engine/internal/game"
)

// DefaultRedisPrefix namespaces snapshot keys.
const DefaultRedisPrefix = "holdem:game:"

// Redis keeps each snapshot under prefix+gameID.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis connects lazily; the first command dials the server.
func NewRedis(opts *redis.Options) *Redis {
	return &Redis{client: redis.NewClient(opts), prefix: DefaultRedisPrefix}
}

// WithPrefix changes the key namespace, mostly so tests can share a server.
func (r *Redis) WithPrefix(prefix string) *Redis {
	r.prefix = prefix
	return r
}

func parseRedisURL(rawURL string) (*redis.Options, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", rawURL)
	}
	return opts, nil
}

func (r *Redis) key(gameID string) string {
	return r.prefix + gameID
}

func (r *Redis) Save(ctx context.Context, snap game.Snapshot) error {
	data, err := encode(snap)
	if err != nil {
		return err
	}
	err = r.client.Set(ctx, r.key(snap.GameID), data, 0).Err()
	return errors.Wrapf(err, "saving snapshot %s", snap.GameID)
}

func (r *Redis) Load(ctx context.Context, gameID string) (game.Snapshot, error) {
	data, err := r.client.Get(ctx, r.key(gameID)).Bytes()
	if err == redis.Nil {
		return game.Snapshot{}, ErrNotFound
	} else if err != nil {
		return game.Snapshot{}, errors.Wrapf(err, "loading snapshot %s", gameID)
	}
	return decode(gameID, data)
}

func (r *Redis) List(ctx context.Context) ([]string, error) {
	var ids []string
	iter := r.client.Scan(ctx, 0, r.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		ids = append(ids, strings.TrimPrefix(iter.Val(), r.prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, errors.Wrap(err, "listing snapshots")
	}
	slices.Sort(ids)
	return ids, nil
}

func (r *Redis) Delete(ctx context.Context, gameID string) error {
	err := r.client.Del(ctx, r.key(gameID)).Err()
	return errors.Wrapf(err, "deleting snapshot %s", gameID)
}

func (r *Redis) Close() error {
	return r.client.Close()
}
