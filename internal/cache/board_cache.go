package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"taskboard/internal/model"
)

const (
	keyPrefix = "kanban:board:"
	// allGenKey is bumped by InvalidateAll. It sits outside keyPrefix so the
	// scan never deletes it.
	allGenKey = "kanban:cache:gen"
)

var errStale = errors.New("listing changed while loading")

type TaskSource interface {
	GetByBoardID(ctx context.Context, boardID uint) ([]model.Task, error)
}

type ColumnSource interface {
	GetByBoardID(ctx context.Context, boardID uint) ([]model.Column, error)
}

// BoardCache keeps per-board task and column listings in Redis. Every write
// to a board must call Invalidate before it answers, otherwise the client's
// re-fetch after a move could read the pre-move order. A nil Redis client
// turns the cache into a pass-through.
//
// Invalidations bump a generation counter. A fill records the generation
// before it reads the source and only stores its listing if the counter is
// unchanged, so a read racing a write never caches the old listing.
type BoardCache struct {
	rdb *redis.Client
	ttl time.Duration
	sf  singleflight.Group
}

func NewBoardCache(rdb *redis.Client, ttl time.Duration) *BoardCache {
	if ttl < 0 {
		ttl = 0
	}
	return &BoardCache{rdb: rdb, ttl: ttl}
}

// Tasks returns the board's tasks from cache, loading them from src on a miss.
func (c *BoardCache) Tasks(ctx context.Context, boardID uint, src TaskSource) ([]model.Task, error) {
	key := tasksKey(boardID)
	v, err, _ := c.sf.Do(key, func() (interface{}, error) {
		var tasks []model.Task
		if c.load(ctx, key, &tasks) {
			return tasks, nil
		}
		seen := c.generation(ctx, boardID)
		tasks, err := src.GetByBoardID(ctx, boardID)
		if err != nil {
			return nil, err
		}
		c.store(ctx, boardID, key, seen, tasks)
		return tasks, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]model.Task), nil
}

// Columns returns the board's columns (with nested tasks) from cache,
// loading them from src on a miss.
func (c *BoardCache) Columns(ctx context.Context, boardID uint, src ColumnSource) ([]model.Column, error) {
	key := columnsKey(boardID)
	v, err, _ := c.sf.Do(key, func() (interface{}, error) {
		var columns []model.Column
		if c.load(ctx, key, &columns) {
			return columns, nil
		}
		seen := c.generation(ctx, boardID)
		columns, err := src.GetByBoardID(ctx, boardID)
		if err != nil {
			return nil, err
		}
		c.store(ctx, boardID, key, seen, columns)
		return columns, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]model.Column), nil
}

// Invalidate drops the cached listings of the given boards.
func (c *BoardCache) Invalidate(ctx context.Context, boardIDs ...uint) {
	if c.rdb == nil || len(boardIDs) == 0 {
		return
	}
	keys := make([]string, 0, 2*len(boardIDs))
	for _, id := range boardIDs {
		keys = append(keys, tasksKey(id), columnsKey(id))
	}
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, id := range boardIDs {
			pipe.Incr(ctx, genKey(id))
		}
		pipe.Del(ctx, keys...)
		return nil
	})
	if err != nil {
		log.WithError(err).WithField("boards", boardIDs).Warn("cache invalidation failed")
	}
}

// InvalidateAll drops every cached board listing.
func (c *BoardCache) InvalidateAll(ctx context.Context) {
	if c.rdb == nil {
		return
	}
	// Bump first: fills that started earlier must fail their check before
	// the listings they could have written are deleted.
	if err := c.rdb.Incr(ctx, allGenKey).Err(); err != nil {
		log.WithError(err).Warn("cache invalidation failed")
		return
	}
	iter := c.rdb.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if strings.HasSuffix(iter.Val(), ":gen") {
			continue
		}
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			log.WithError(err).Warn("cache invalidation failed")
			return
		}
	}
	if err := iter.Err(); err != nil {
		log.WithError(err).Warn("cache scan failed")
	}
}

func (c *BoardCache) load(ctx context.Context, key string, dst interface{}) bool {
	if c.rdb == nil {
		return false
	}
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			// On redis errors fall back to the database without failing.
			log.WithError(err).WithField("key", key).Debug("cache read failed")
			_ = c.rdb.Del(ctx, key).Err()
		}
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		_ = c.rdb.Del(ctx, key).Err()
		return false
	}
	return true
}

// generation returns the board's invalidation counters, nil when they can't
// be read (the fill then skips storing).
func (c *BoardCache) generation(ctx context.Context, boardID uint) []string {
	if c.rdb == nil {
		return nil
	}
	gen, err := readGeneration(ctx, c.rdb.MGet, boardID)
	if err != nil {
		log.WithError(err).WithField("board_id", boardID).Debug("cache generation read failed")
		return nil
	}
	return gen
}

func readGeneration(ctx context.Context, mget func(context.Context, ...string) *redis.SliceCmd, boardID uint) ([]string, error) {
	vals, err := mget(ctx, genKey(boardID), allGenKey).Result()
	if err != nil {
		return nil, err
	}
	gen := make([]string, len(vals))
	for i, v := range vals {
		if s, ok := v.(string); ok {
			gen[i] = s
		}
	}
	return gen, nil
}

// store writes the listing unless the board was invalidated since seen was
// read.
func (c *BoardCache) store(ctx context.Context, boardID uint, key string, seen []string, v interface{}) {
	if c.rdb == nil || c.ttl == 0 || seen == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	err = c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		now, err := readGeneration(ctx, tx.MGet, boardID)
		if err != nil {
			return err
		}
		if !slices.Equal(now, seen) {
			return errStale
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, c.ttl)
			return nil
		})
		return err
	}, genKey(boardID), allGenKey)

	switch {
	case errors.Is(err, errStale), errors.Is(err, redis.TxFailedErr):
		log.WithField("key", key).Debug("board changed while loading, listing not cached")
	case err != nil:
		log.WithError(err).WithField("key", key).Debug("cache write failed")
	}
}

func tasksKey(boardID uint) string {
	return fmt.Sprintf("%s%d:tasks", keyPrefix, boardID)
}

func genKey(boardID uint) string {
	return fmt.Sprintf("%s%d:gen", keyPrefix, boardID)
}

func columnsKey(boardID uint) string {
	return fmt.Sprintf("%s%d:columns", keyPrefix, boardID)
}
