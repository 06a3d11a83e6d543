// Package di provides dependency injection factories for creating application components.
package di

import (
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	authadapters "kanban_backend/internal/feature/auth/adapters"
	"kanban_backend/internal/feature/auth/usecase"
	"kanban_backend/internal/platform/session"
)

// NewStateStore creates a StateStore for pending external logins.
// If Redis is available, it returns a Redis-backed implementation.
// Otherwise, it falls back to the database.
func NewStateStore(rdb *redis.Client, db *gorm.DB) usecase.StateStore {
	if rdb != nil {
		return session.NewStateRedis(rdb, "oauth")
	}
	return authadapters.NewOAuthStateGorm(db)
}
