package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/redis/go-redis/v9"

	"github.com/mmynk/mochiyoru/internal/models"
)

const (
	idKey          = "sid"
	redisKeyPrefix = "mochiyoru:session:"
)

// RedisStore keeps the state in Redis under a random ID held in a signed cookie.
type RedisStore struct {
	client  *redis.Client
	cookies *sessions.CookieStore
	name    string
	ttl     time.Duration
}

func NewRedisStore(client *redis.Client, opts Options) *RedisStore {
	return &RedisStore{
		client:  client,
		cookies: newCookieStore(opts),
		name:    cookieName(opts),
		ttl:     opts.TTL,
	}
}

func redisKey(id string) string {
	return redisKeyPrefix + id
}

func (s *RedisStore) Load(r *http.Request) (*models.State, error) {
	sess := getSession(s.cookies, r, s.name)
	id, _ := sess.Values[idKey].(string)
	if id == "" {
		return &models.State{}, nil
	}

	data, err := s.client.Get(r.Context(), redisKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return &models.State{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session %s: %w", id, err)
	}
	return decodeState(data), nil
}

// Save stores st and refreshes its expiry. A browser without a session ID gets a new one.
func (s *RedisStore) Save(w http.ResponseWriter, r *http.Request, st *models.State) error {
	sess := getSession(s.cookies, r, s.name)
	id, _ := sess.Values[idKey].(string)
	if id == "" {
		id = uuid.NewString()
		sess.Values[idKey] = id
	}

	data, err := encodeState(st)
	if err != nil {
		return err
	}
	if err := s.client.Set(r.Context(), redisKey(id), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session %s: %w", id, err)
	}
	return s.cookies.Save(r, w, sess)
}

// Ping checks the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
