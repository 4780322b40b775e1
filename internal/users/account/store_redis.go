// Copyright (c) 2026 Toile. All rights reserved.
// Author: contact@toile.app

package account

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/toileapp/toile/internal/platform/apperr"
	"github.com/toileapp/toile/internal/platform/constants"
)

// RedisSessionStore keeps sessions as JSON values under the auth:session:
// prefix. Redis handles expiry via the TTL set on write; a login refreshes
// nothing, it creates a fresh token.
type RedisSessionStore struct {
	client *redis.Client
}

func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func (s *RedisSessionStore) Set(ctx context.Context, tokenHash string, session *Session, ttl time.Duration) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return apperr.Internal(fmt.Errorf("account: session marshal failed: %w", err))
	}
	if err := s.client.Set(ctx, sessionKey(tokenHash), payload, ttl).Err(); err != nil {
		return apperr.Unavailable("Session store unavailable", err)
	}
	return nil
}

func (s *RedisSessionStore) Get(ctx context.Context, tokenHash string) (*Session, error) {
	payload, err := s.client.Get(ctx, sessionKey(tokenHash)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperr.Unauthorized("Invalid or expired session")
		}
		return nil, apperr.Unavailable("Session store unavailable", err)
	}

	var session Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, apperr.Internal(fmt.Errorf("account: corrupt session payload: %w", err))
	}
	return &session, nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, tokenHash string) error {
	if err := s.client.Del(ctx, sessionKey(tokenHash)).Err(); err != nil {
		return apperr.Unavailable("Session store unavailable", err)
	}
	return nil
}

func sessionKey(tokenHash string) string {
	return constants.RedisPrefixSession + tokenHash
}
