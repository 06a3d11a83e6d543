// Package session はOAuthログイン途中のstateをRedisに保存します。
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"kanban_backend/internal/feature/auth/domain/entity"
	"kanban_backend/internal/feature/auth/usecase"
)

// StateRedis implements usecase.StateStore using Redis.
// Keys expire with the state, so no sweeping is needed.
type StateRedis struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

var _ usecase.StateStore = (*StateRedis)(nil)

// NewStateRedis creates a new StateRedis instance.
func NewStateRedis(client *redis.Client, prefix string) *StateRedis {
	return &StateRedis{
		client: client,
		prefix: prefix,
		now:    time.Now,
	}
}

// stateKey returns the Redis key for a state.
func (r *StateRedis) stateKey(state string) string {
	return fmt.Sprintf("%s:state:%s", r.prefix, state)
}

type stateRecord struct {
	Provider     string    `json:"provider"`
	CodeVerifier string    `json:"code_verifier"`
	ExpiresAt    time.Time `json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
}

// Save persists a pending state until it expires.
func (r *StateRedis) Save(ctx context.Context, s *entity.OAuthState) error {
	if s == nil || s.State == "" {
		return errors.New("state is required")
	}

	ttl := s.ExpiresAt.Sub(r.now())
	if ttl <= 0 {
		return fmt.Errorf("state already expired")
	}

	data, err := json.Marshal(stateRecord{
		Provider:     s.Provider,
		CodeVerifier: s.CodeVerifier,
		ExpiresAt:    s.ExpiresAt,
		CreatedAt:    s.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	// NX keeps an existing state from being overwritten.
	ok, err := r.client.SetNX(ctx, r.stateKey(s.State), data, ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("state %q already exists", s.State)
	}
	return nil
}

// Consume atomically reads and deletes a state. A second call for the same state fails.
func (r *StateRedis) Consume(ctx context.Context, state string) (*entity.OAuthState, error) {
	data, err := r.client.GetDel(ctx, r.stateKey(state)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, usecase.ErrStateNotFound
		}
		return nil, err
	}

	var rec stateRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state: %w", err)
	}

	s := &entity.OAuthState{
		State:        state,
		Provider:     rec.Provider,
		CodeVerifier: rec.CodeVerifier,
		ExpiresAt:    rec.ExpiresAt,
		CreatedAt:    rec.CreatedAt,
	}
	if s.IsExpired(r.now()) {
		return nil, usecase.ErrStateNotFound
	}
	return s, nil
}
