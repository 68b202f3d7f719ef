package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/avvvet/coursebuddy/internal/intent"
)

// CacheStore keeps sessions in process memory with the same expiry
// semantics as RedisStore. Used when no Redis is configured.
type CacheStore struct {
	cache *cache.Cache
}

// NewCacheStore expires sessions ttl after their last write.
func NewCacheStore(ttl time.Duration) *CacheStore {
	cleanup := ttl / 2
	if cleanup <= 0 {
		cleanup = 10 * time.Minute
	}
	return &CacheStore{
		cache: cache.New(ttl, cleanup),
	}
}

// LoadSession returns a private copy; records are stored marshalled.
func (c *CacheStore) LoadSession(ctx context.Context, sessionID string) (*SessionData, error) {
	x, found := c.cache.Get(sessionID)
	if !found {
		return newSession(sessionID), nil
	}

	var session SessionData
	if err := json.Unmarshal(x.([]byte), &session); err != nil {
		return nil, fmt.Errorf("failed to parse session data: %w", err)
	}
	return normalize(&session, sessionID)
}

func (c *CacheStore) SaveTurn(ctx context.Context, sessionID, userID string, conv intent.Session, msgs ...Message) error {
	session, err := c.LoadSession(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}

	applyTurn(session, userID, conv, msgs)

	return c.saveSession(session)
}

func (c *CacheStore) saveSession(session *SessionData) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	c.cache.Set(session.SessionID, data, cache.DefaultExpiration)
	return nil
}

func (c *CacheStore) GetMessages(ctx context.Context, sessionID string) ([]Message, error) {
	session, err := c.LoadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return session.Messages, nil
}

func (c *CacheStore) ClearSession(ctx context.Context, sessionID string) error {
	c.cache.Delete(sessionID)
	return nil
}
