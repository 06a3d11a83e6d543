package adapters

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"kanban_backend/internal/feature/auth/domain/entity"
	"kanban_backend/internal/feature/auth/usecase"
)

// oauthStateGorm is a database implementation of the StateStore interface,
// used when Redis is not configured.
type oauthStateGorm struct {
	db  *gorm.DB
	now func() time.Time
}

// Compile-time check to ensure oauthStateGorm implements StateStore.
var _ usecase.StateStore = (*oauthStateGorm)(nil)

// NewOAuthStateGorm creates a new instance of oauthStateGorm.
func NewOAuthStateGorm(db *gorm.DB) *oauthStateGorm {
	return &oauthStateGorm{db: db, now: time.Now}
}

// Save persists a pending state and purges expired ones.
func (r *oauthStateGorm) Save(ctx context.Context, s *entity.OAuthState) error {
	db := r.db.WithContext(ctx)
	if err := db.Create(OAuthStateModelFromEntity(s)).Error; err != nil {
		return fmt.Errorf("create oauth state: %w", err)
	}

	// Best effort: abandoned logins would otherwise accumulate.
	if err := db.Where("expires_at <= ?", r.now()).Delete(&OAuthStateModel{}).Error; err != nil {
		slog.WarnContext(ctx, "failed to purge expired oauth states", "error", err)
	}
	return nil
}

// Consume reads and deletes a state. Only the caller whose DELETE removed the row
// receives it, so a state can be used once even under concurrent callbacks.
func (r *oauthStateGorm) Consume(ctx context.Context, state string) (*entity.OAuthState, error) {
	var model OAuthStateModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("state = ?", state).First(&model).Error; err != nil {
			return err
		}
		res := tx.Where("state = ?", state).Delete(&OAuthStateModel{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrStateNotFound
		}
		return nil, err
	}

	if model.ToEntity().IsExpired(r.now()) {
		return nil, usecase.ErrStateNotFound
	}
	return model.ToEntity(), nil
}
