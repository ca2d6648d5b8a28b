package service

import (
	"context"
	"edureach_backend/internal/model"
	"edureach_backend/internal/util"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const sessionKeyPrefix = "edureach:session:"

// SessionStore 会话的持久化边界
type SessionStore interface {
	Save(ctx context.Context, session *model.Session) error
	Load(ctx context.Context, id string) (*model.Session, error)
	Delete(ctx context.Context, id string) error
}

// RedisSessionStore 会话以 JSON 存在 redis，TTL 与令牌过期时间一致
type RedisSessionStore struct {
	Redis *redis.Client
	now   func() time.Time
}

func NewRedisSessionStore(rdb *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{Redis: rdb, now: time.Now}
}

func SessionKey(id string) string {
	return sessionKeyPrefix + id
}

func (s *RedisSessionStore) Save(ctx context.Context, session *model.Session) error {
	ttl := util.TokenTTL(session.ExpiresAt, s.now())
	if ttl == 0 {
		return fmt.Errorf("%w: session %s already expired", util.ErrPreconditionFailed, session.ID)
	}
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.Redis.Set(ctx, SessionKey(session.ID), data, ttl).Err()
}

func (s *RedisSessionStore) Load(ctx context.Context, id string) (*model.Session, error) {
	data, err := s.Redis.Get(ctx, SessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %s", util.ErrSessionNotFound, id)
		}
		return nil, err
	}

	var session model.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, id string) error {
	return s.Redis.Del(ctx, SessionKey(id)).Err()
}
