package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrUnavailable wraps backend transport failures so callers can distinguish
// "no such session" from "the store is down".
var ErrUnavailable = errors.New("session store unavailable")

const (
	redisSessionPrefix   = "pressauth:session:"
	redisUserIndexPrefix = "pressauth:session:user:"
)

// deleteSessionScript removes a session record and its user-index member in
// one round trip. The record must be read first to learn the user ID, so
// deletion is a read followed by this script rather than a plain DEL.
var deleteSessionScript = redis.NewScript(`
local raw = redis.call('GET', KEYS[1])
if not raw then
    return 0
end
local ok, rec = pcall(cjson.decode, raw)
if ok and rec.user_id then
    redis.call('SREM', ARGV[1] .. rec.user_id, KEYS[2])
end
redis.call('DEL', KEYS[1])
return 1
`)

// RedisStore keeps sessions in Redis. Records carry a native TTL, so expiry
// needs no sweeper; a per-user index set supports bulk invalidation.
type RedisStore struct {
	client redis.UniversalClient
	now    func() time.Time
}

// NewRedisStore wraps an existing Redis client. The caller owns the client's
// lifecycle.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client, now: time.Now}
}

func sessionKey(token string) string { return redisSessionPrefix + token }
func userIndexKey(userID string) string {
	return redisUserIndexPrefix + userID
}

// Save stores the session with a TTL matching its remaining lifetime and
// registers it in the owner's index set.
func (r *RedisStore) Save(ctx context.Context, token string, s Session) error {
	ttl := s.TTL(r.now())
	if ttl <= 0 {
		return nil
	}

	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, sessionKey(token), raw, ttl)
		pipe.SAdd(ctx, userIndexKey(s.UserID), token)
		pipe.Expire(ctx, userIndexKey(s.UserID), ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (r *RedisStore) Get(ctx context.Context, token string) (Session, error) {
	raw, err := r.client.Get(ctx, sessionKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	s, ok := decodeRecord(raw)
	if !ok || s.Expired(r.now()) {
		if _, err := r.Delete(ctx, token); err != nil {
			return Session{}, err
		}
		return Session{}, ErrNotFound
	}
	return s, nil
}

// Delete removes the record for token and reports whether one existed. The
// script returns 1 only when it found a record to delete.
func (r *RedisStore) Delete(ctx context.Context, token string) (bool, error) {
	n, err := deleteSessionScript.Run(ctx, r.client,
		[]string{sessionKey(token), token},
		redisUserIndexPrefix,
	).Int()
	if err != nil && !errors.Is(err, redis.Nil) {
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return n == 1, nil
}

func (r *RedisStore) DeleteForUser(ctx context.Context, userID string) (int, error) {
	tokens, err := r.client.SMembers(ctx, userIndexKey(userID)).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(tokens) == 0 {
		return 0, nil
	}

	keys := make([]string, 0, len(tokens)+1)
	for _, token := range tokens {
		keys = append(keys, sessionKey(token))
	}
	keys = append(keys, userIndexKey(userID))

	removed, err := r.client.Del(ctx, keys...).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	// The index key itself is not a session.
	n := int(removed) - 1
	if n < 0 {
		n = 0
	}
	return n, nil
}

// CleanupExpired is a no-op for Redis: records expire via native TTL.
func (r *RedisStore) CleanupExpired(_ context.Context) (int, error) {
	return 0, nil
}

// Count scans live session keys. Intended for diagnostics, not hot paths.
func (r *RedisStore) Count(ctx context.Context) (int, error) {
	var (
		cursor uint64
		count  int
	)
	for {
		keys, next, err := r.client.Scan(ctx, cursor, redisSessionPrefix+"*", 256).Result()
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		for _, key := range keys {
			// User index sets share the session prefix.
			if len(key) >= len(redisUserIndexPrefix) && key[:len(redisUserIndexPrefix)] == redisUserIndexPrefix {
				continue
			}
			count++
		}
		cursor = next
		if cursor == 0 {
			return count, nil
		}
	}
}

// CountForUser counts the owner's sessions via the index set, checking each
// member against its record so stale index entries are not counted.
func (r *RedisStore) CountForUser(ctx context.Context, userID string) (int, error) {
	tokens, err := r.client.SMembers(ctx, userIndexKey(userID)).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(tokens) == 0 {
		return 0, nil
	}

	cmds := make([]*redis.IntCmd, 0, len(tokens))
	_, err = r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, token := range tokens {
			cmds = append(cmds, pipe.Exists(ctx, sessionKey(token)))
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	count := 0
	for _, cmd := range cmds {
		if cmd.Val() > 0 {
			count++
		}
	}
	return count, nil
}
