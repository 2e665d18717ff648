package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/gemtofu/internal/model"
	"github.com/mcoot/gemtofu/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ping checks the connection, for health reporting
func (s *Storage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Game operations

func (s *Storage) CreateGame(ctx context.Context, game *model.Game) error {
	data, err := json.Marshal(game)
	if err != nil {
		return err
	}

	created, err := s.client.SetNX(ctx, gameKey(game.ID), data, s.cfg.GameTTL).Result()
	if err != nil {
		return err
	}
	if !created {
		return model.ErrGameExists
	}

	return s.client.ZAdd(ctx, gamesIndexKey(), redis.Z{
		Score:  recencyScore(game.UpdatedAt),
		Member: string(game.ID),
	}).Err()
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	data, err := s.client.Get(ctx, gameKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrGameNotFound
		}
		return nil, err
	}

	var game model.Game
	if err := json.Unmarshal(data, &game); err != nil {
		return nil, err
	}
	return &game, nil
}

// maxWatchRetries bounds retries when a watched game key changes mid-save
const maxWatchRetries = 5

// SaveGame replaces a game under WATCH. A record that does not supersede the
// stored one, because another process committed first, fails with
// model.ErrGameConflict.
func (s *Storage) SaveGame(ctx context.Context, game *model.Game) error {
	data, err := json.Marshal(game)
	if err != nil {
		return err
	}

	key := gameKey(game.ID)
	save := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Bytes()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if err == nil {
			var stored model.Game
			if err := json.Unmarshal(current, &stored); err != nil {
				return err
			}
			if !game.Supersedes(&stored) {
				return model.ErrGameConflict
			}
		}

		// MULTI/EXEC so the record and its index entry change together
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, s.cfg.GameTTL)
			pipe.ZAdd(ctx, gamesIndexKey(), redis.Z{
				Score:  recencyScore(game.UpdatedAt),
				Member: string(game.ID),
			})
			return nil
		})
		return err
	}

	for range maxWatchRetries {
		err = s.client.Watch(ctx, save, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return model.ErrGameConflict
}

// ListGames returns up to limit games, most recent first. Index entries whose
// record has expired are pruned and the next page is read in their place.
func (s *Storage) ListGames(ctx context.Context, limit int) ([]*model.Game, error) {
	games := []*model.Game{}
	var start int64
	for {
		stop := int64(-1)
		if limit > 0 {
			stop = start + int64(limit-len(games)) - 1
		}

		ids, err := s.client.ZRevRange(ctx, gamesIndexKey(), start, stop).Result()
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			break
		}

		page, stale, err := s.loadGames(ctx, ids)
		if err != nil {
			return nil, err
		}
		games = append(games, page...)

		if len(stale) > 0 {
			if err := s.client.ZRem(ctx, gamesIndexKey(), stale...).Err(); err != nil {
				return nil, err
			}
		}
		// Pruned members shift later entries down
		start += int64(len(ids) - len(stale))

		if limit <= 0 || len(games) >= limit || len(stale) == 0 {
			break
		}
	}

	storage.SortByRecency(games)
	return games, nil
}

// loadGames fetches the records for ids, returning the ids with no record
func (s *Storage) loadGames(ctx context.Context, ids []string) ([]*model.Game, []any, error) {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = gameKey(model.GameID(id))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, nil, err
	}

	games := make([]*model.Game, 0, len(values))
	var stale []any
	for i, v := range values {
		str, ok := v.(string)
		if !ok {
			// Expired record still in the index
			stale = append(stale, ids[i])
			continue
		}
		var game model.Game
		if err := json.Unmarshal([]byte(str), &game); err != nil {
			continue
		}
		games = append(games, &game)
	}
	return games, stale, nil
}

// Ledger operations

func (s *Storage) RecordIdentity(ctx context.Context, id model.Identity, seenAt time.Time) (bool, error) {
	return s.client.HSetNX(ctx, ledgerKey(), string(id), seenAt.UTC().Format(time.RFC3339)).Result()
}

func (s *Storage) GetIdentity(ctx context.Context, id model.Identity) (*model.LedgerEntry, error) {
	raw, err := s.client.HGet(ctx, ledgerKey(), string(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrIdentityNotFound
		}
		return nil, err
	}

	firstSeen, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("parse first seen for %s: %w", id.Short(), err)
	}
	return &model.LedgerEntry{Identity: id, FirstSeen: firstSeen}, nil
}

func (s *Storage) CountIdentities(ctx context.Context) (int, error) {
	n, err := s.client.HLen(ctx, ledgerKey()).Result()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// recencyScore maps a timestamp to a sorted-set score
func recencyScore(t time.Time) float64 {
	return float64(t.UnixMilli())
}
