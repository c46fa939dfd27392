package storage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/namansharma28/CollabBoard-sub000/domain"
)

// Cache wraps a domain.Store with Redis-backed caching for the read
// paths the client refetch hits hardest (board task lists, channel
// message lists, board documents). Writes pass through and evict.
// Redis failures degrade to the backing store without surfacing.
type Cache struct {
	domain.Store
	redis *redis.Client
	ttl   time.Duration
}

// NewCache creates a caching wrapper around base.
func NewCache(base domain.Store, client *redis.Client, ttl time.Duration) *Cache {
	if base == nil {
		panic("storage.NewCache: base store is nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	return &Cache{Store: base, redis: client, ttl: ttl}
}

func (c *Cache) GetBoard(ctx context.Context, boardID string) (*domain.Board, error) {
	var b domain.Board
	if c.load(ctx, boardCacheKey(boardID), &b) {
		return &b, nil
	}
	board, err := c.Store.GetBoard(ctx, boardID)
	if err != nil || board == nil {
		return board, err
	}
	c.store(ctx, boardCacheKey(boardID), board)
	return board, nil
}

func (c *Cache) ListTasks(ctx context.Context, boardID string) ([]domain.Task, error) {
	var tasks []domain.Task
	if c.load(ctx, tasksCacheKey(boardID), &tasks) {
		return tasks, nil
	}
	tasks, err := c.Store.ListTasks(ctx, boardID)
	if err != nil {
		return nil, err
	}
	c.store(ctx, tasksCacheKey(boardID), tasks)
	return tasks, nil
}

func (c *Cache) ListMessages(ctx context.Context, teamID, channel string, limit int) ([]domain.Message, error) {
	// Only the default fetch shape is cached; bespoke limits go straight
	// through.
	if limit > 0 {
		return c.Store.ListMessages(ctx, teamID, channel, limit)
	}
	var msgs []domain.Message
	if c.load(ctx, messagesCacheKey(teamID, channel), &msgs) {
		return msgs, nil
	}
	msgs, err := c.Store.ListMessages(ctx, teamID, channel, limit)
	if err != nil {
		return nil, err
	}
	c.store(ctx, messagesCacheKey(teamID, channel), msgs)
	return msgs, nil
}

func (c *Cache) InsertTask(ctx context.Context, t domain.Task) (string, error) {
	id, err := c.Store.InsertTask(ctx, t)
	if err != nil {
		return "", err
	}
	c.evict(ctx, tasksCacheKey(t.BoardID), boardCacheKey(t.BoardID))
	return id, nil
}

func (c *Cache) UpdateTask(ctx context.Context, taskID string, patch domain.TaskPatch) (*domain.Task, error) {
	updated, err := c.Store.UpdateTask(ctx, taskID, patch)
	if err != nil || updated == nil {
		return updated, err
	}
	c.evict(ctx, tasksCacheKey(updated.BoardID), boardCacheKey(updated.BoardID))
	return updated, nil
}

func (c *Cache) DeleteTask(ctx context.Context, taskID string) error {
	task, err := c.Store.GetTask(ctx, taskID)
	if err != nil {
		return err
	}
	if err := c.Store.DeleteTask(ctx, taskID); err != nil {
		return err
	}
	if task != nil {
		c.evict(ctx, tasksCacheKey(task.BoardID), boardCacheKey(task.BoardID))
	}
	return nil
}

func (c *Cache) AdjustBoardCounters(ctx context.Context, boardID string, totalDelta, completedDelta int) (*domain.Board, error) {
	board, err := c.Store.AdjustBoardCounters(ctx, boardID, totalDelta, completedDelta)
	if err != nil {
		return nil, err
	}
	c.evict(ctx, boardCacheKey(boardID))
	return board, nil
}

func (c *Cache) InsertMessage(ctx context.Context, m domain.Message) (string, error) {
	id, err := c.Store.InsertMessage(ctx, m)
	if err != nil {
		return "", err
	}
	c.evict(ctx, messagesCacheKey(m.TeamID, m.Channel))
	return id, nil
}

func (c *Cache) load(ctx context.Context, key string, dst any) bool {
	if c.redis == nil {
		return false
	}
	data, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			_ = c.redis.Del(ctx, key).Err()
		}
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		_ = c.redis.Del(ctx, key).Err()
		return false
	}
	return true
}

func (c *Cache) store(ctx context.Context, key string, v any) {
	if c.redis == nil || c.ttl == 0 {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, key, data, c.ttl).Err()
}

func (c *Cache) evict(ctx context.Context, keys ...string) {
	if c.redis == nil {
		return
	}
	_, _ = c.redis.Del(ctx, keys...).Result()
}

func boardCacheKey(boardID string) string { return "board:" + boardID }

func tasksCacheKey(boardID string) string { return "tasks:" + boardID }

func messagesCacheKey(teamID, channel string) string {
	return "messages:" + teamID + ":" + channel
}
