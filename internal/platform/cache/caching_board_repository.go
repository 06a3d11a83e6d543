// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"kanban_backend/internal/feature/boards/domain/entity"
	"kanban_backend/internal/feature/boards/usecase"
	"kanban_backend/internal/platform/pagination"
)

// CachingBoardRepository decorates a BoardRepository with a Redis cache for the
// public board list. Every other read goes straight to the inner repository.
type CachingBoardRepository struct {
	usecase.BoardRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

// cachedPage is the JSON value stored per list page.
type cachedPage struct {
	Items []entity.Board `json:"items"`
	Total int64          `json:"total"`
}

// NewCachingBoardRepository decorates a BoardRepository with Redis caching.
// If ttl is 0, it defaults to 30 seconds. If namespace is empty, it uses "boards".
// A nil rdb disables caching.
func NewCachingBoardRepository(rdb *redis.Client, ttl time.Duration, inner usecase.BoardRepository, namespace string) *CachingBoardRepository {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if namespace == "" {
		namespace = "boards"
	}
	return &CachingBoardRepository{
		BoardRepository: inner,
		rdb:             rdb,
		ttl:             ttl,
		namespace:       namespace,
	}
}

// List returns a page of boards, checking the cache first.
func (c *CachingBoardRepository) List(ctx context.Context, req pagination.Request) ([]entity.Board, int64, error) {
	if c.rdb == nil {
		return c.BoardRepository.List(ctx, req)
	}

	key := c.listKey(req)

	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var page cachedPage
		if err := json.Unmarshal(b, &page); err == nil {
			return page.Items, page.Total, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	items, total, err := c.BoardRepository.List(ctx, req)
	if err != nil {
		return nil, 0, err
	}

	if b, err := json.Marshal(cachedPage{Items: items, Total: total}); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}
	return items, total, nil
}

// Create stores the board and drops cached list pages.
func (c *CachingBoardRepository) Create(ctx context.Context, b *entity.Board) error {
	if err := c.BoardRepository.Create(ctx, b); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

// Update stores the board and drops cached list pages.
func (c *CachingBoardRepository) Update(ctx context.Context, b *entity.Board) error {
	if err := c.BoardRepository.Update(ctx, b); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

// Delete removes the board and drops cached list pages.
func (c *CachingBoardRepository) Delete(ctx context.Context, id uint) error {
	if err := c.BoardRepository.Delete(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

func (c *CachingBoardRepository) listKey(req pagination.Request) string {
	return fmt.Sprintf("%s:list:%d:%d", c.namespace, req.Page, req.Size)
}

// invalidate is best effort: a failed delete leaves entries to expire by TTL.
func (c *CachingBoardRepository) invalidate(ctx context.Context) {
	if c.rdb == nil {
		return
	}
	_ = c.deleteByPattern(ctx, c.namespace+":list:*")
}

// deleteByPattern deletes all cache keys matching a given pattern using SCAN.
func (c *CachingBoardRepository) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			break
		}
	}
	return nil
}
