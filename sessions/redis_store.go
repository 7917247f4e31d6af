package sessions

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/pkg/errors"
	goredis "github.com/redis/go-redis/v9"
)

const keyPrefix = "sessions:"

var _ Store = (*RedisStore)(nil)

// RedisStore keeps each user's sessions in a redis hash keyed by user id,
// one field per session id. Field-level writes are atomic, which is what
// removes the read-modify-write hazard of an embedded session list.
type RedisStore struct {
	client  *goredis.Client
	nowTime func() time.Time
}

// RedisStoreOption modifies a RedisStore instance.
type RedisStoreOption func(*RedisStore)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) RedisStoreOption {
	return func(s *RedisStore) {
		s.nowTime = nowFunc
	}
}

func NewRedisStore(client *goredis.Client, options ...RedisStoreOption) *RedisStore {
	s := &RedisStore{
		client:  client,
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *RedisStore) key(userID string) string {
	return keyPrefix + userID
}

func (s *RedisStore) Create(ctx context.Context, userID, sessionID string) error {
	if userID == "" || sessionID == "" {
		return errors.New("[RedisStore.Create] missing user id or session id")
	}

	now := s.nowTime()
	data, err := json.Marshal(Session{ID: sessionID, CreatedAt: now, LastActive: now})
	if err != nil {
		return errors.Wrap(err, "[RedisStore.Create] marshal")
	}

	// HSETNX keeps the original CreatedAt when the session already exists.
	if err := s.client.HSetNX(ctx, s.key(userID), sessionID, data).Err(); err != nil {
		return errors.Wrap(err, "[RedisStore.Create] hsetnx")
	}
	return nil
}

func (s *RedisStore) List(ctx context.Context, userID string) ([]Session, error) {
	fields, err := s.client.HGetAll(ctx, s.key(userID)).Result()
	if err != nil {
		return nil, errors.Wrap(err, "[RedisStore.List] hgetall")
	}

	list := make([]Session, 0, len(fields))
	for _, raw := range fields {
		var session Session
		if err := json.Unmarshal([]byte(raw), &session); err != nil {
			return nil, errors.Wrap(err, "[RedisStore.List] unmarshal")
		}
		list = append(list, session)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
	return list, nil
}

func (s *RedisStore) IsValid(ctx context.Context, userID, sessionID string) (bool, error) {
	ok, err := s.client.HExists(ctx, s.key(userID), sessionID).Result()
	if err != nil {
		return false, errors.Wrap(err, "[RedisStore.IsValid] hexists")
	}
	return ok, nil
}

func (s *RedisStore) RefreshLastActive(ctx context.Context, userID, sessionID string) error {
	raw, err := s.client.HGet(ctx, s.key(userID), sessionID).Result()
	if err == goredis.Nil {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "[RedisStore.RefreshLastActive] hget")
	}

	var session Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return errors.Wrap(err, "[RedisStore.RefreshLastActive] unmarshal")
	}

	// LastActive never moves backwards, even with a skewed clock.
	if now := s.nowTime(); now.After(session.LastActive) {
		session.LastActive = now
	}

	data, err := json.Marshal(session)
	if err != nil {
		return errors.Wrap(err, "[RedisStore.RefreshLastActive] marshal")
	}
	if err := s.client.HSet(ctx, s.key(userID), sessionID, data).Err(); err != nil {
		return errors.Wrap(err, "[RedisStore.RefreshLastActive] hset")
	}
	return nil
}

func (s *RedisStore) Invalidate(ctx context.Context, userID, sessionID string) error {
	if err := s.client.HDel(ctx, s.key(userID), sessionID).Err(); err != nil {
		return errors.Wrap(err, "[RedisStore.Invalidate] hdel")
	}
	return nil
}
