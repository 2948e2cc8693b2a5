package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

const (
	sessionKeyPrefix = "session:"
	sessionTTL       = time.Hour
)

// SessionStore persists opaque HTTP session ids through a Cache. It
// backs the browser session cookie only; no game state is stored here.
type SessionStore struct {
	cache  Cache
	logger *slog.Logger
}

// NewSessionStore creates a session store over the given cache backend.
func NewSessionStore(cache Cache, logger *slog.Logger) *SessionStore {
	return &SessionStore{
		cache:  cache,
		logger: logger,
	}
}

// Issue creates a new session and returns its id.
func (s *SessionStore) Issue(ctx context.Context) (string, error) {
	id := uuid.NewString()
	key := sessionKeyPrefix + id
	if err := s.cache.Set(ctx, key, time.Now().UTC().Format(time.RFC3339), sessionTTL); err != nil {
		return "", fmt.Errorf("failed to issue session: %w", err)
	}

	s.logger.Debug("Session issued", "session_id", id)
	return id, nil
}

// Validate reports whether the session id is known and unexpired.
func (s *SessionStore) Validate(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, nil
	}
	if _, err := uuid.Parse(id); err != nil {
		return false, nil
	}

	value, err := s.cache.Get(ctx, sessionKeyPrefix+id)
	if err != nil {
		return false, fmt.Errorf("failed to look up session: %w", err)
	}
	return value != "", nil
}

// Touch refreshes the session's expiry window.
func (s *SessionStore) Touch(ctx context.Context, id string) error {
	key := sessionKeyPrefix + id
	value, err := s.cache.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to touch session: %w", err)
	}
	if value == "" {
		return fmt.Errorf("session not found: %s", id)
	}
	if err := s.cache.Set(ctx, key, value, sessionTTL); err != nil {
		return fmt.Errorf("failed to touch session: %w", err)
	}
	return nil
}

// Revoke deletes a session.
func (s *SessionStore) Revoke(ctx context.Context, id string) error {
	if err := s.cache.Del(ctx, sessionKeyPrefix+id); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}
