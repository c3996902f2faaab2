package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/anandbobba/Innovex-Service/tools/errs"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "innovex:session:"

// RedisStore is the shared-store variant of Store, for running more than one
// gateway instance behind a balancer. Expiry is handled by Redis key TTL.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(addr string) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, errs.WrapMsg(err, "redis ping failed addr=%s", addr)
	}
	return &RedisStore{rdb: rdb}, nil
}

func (s *RedisStore) Issue(ctx context.Context, spocID string, ttl time.Duration) (*Session, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	sess := &Session{
		Token:     uuid.NewString(),
		SpocID:    spocID,
		ExpiresAt: time.Now().Add(ttl),
	}
	raw, err := json.Marshal(sess)
	if err != nil {
		return nil, errs.Wrap(err)
	}
	if err := s.rdb.Set(ctx, redisKeyPrefix+sess.Token, raw, ttl).Err(); err != nil {
		return nil, errs.WrapMsg(err, "store session")
	}
	return sess, nil
}

func (s *RedisStore) Get(ctx context.Context, token string) (*Session, error) {
	raw, err := s.rdb.Get(ctx, redisKeyPrefix+token).Bytes()
	if err == redis.Nil {
		return nil, errs.ErrTokenExpired
	}
	if err != nil {
		return nil, errs.WrapMsg(err, "load session")
	}
	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, errs.Wrap(err)
	}
	if !time.Now().Before(sess.ExpiresAt) {
		return nil, errs.ErrTokenExpired
	}
	return &sess, nil
}

func (s *RedisStore) Revoke(ctx context.Context, token string) error {
	return s.rdb.Del(ctx, redisKeyPrefix+token).Err()
}
