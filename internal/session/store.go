// AngelaMos | 2026
// store.go

package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ecoplagas/backend/internal/core"
)

const (
	sessionKeyPrefix = "session:"
	userIndexPrefix  = "user_sessions:"
)

// Store keeps sessions in Redis. Each session lives under session:<id> with
// the session TTL, and user_sessions:<userID> indexes a user's session ids.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
	now func() time.Time
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{
		rdb: rdb,
		ttl: ttl,
		now: time.Now,
	}
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

func userIndexKey(userID int64) string {
	return userIndexPrefix + strconv.FormatInt(userID, 10)
}

func (s *Store) TTL() time.Duration {
	return s.ttl
}

func (s *Store) Create(ctx context.Context, identity Identity) (*Session, error) {
	id, err := core.GenerateSessionID()
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	now := s.now()
	sess := &Session{
		ID:        id,
		Identity:  identity,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}

	indexKey := userIndexKey(identity.UserID)

	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, sessionKey(id), data, s.ttl)
		pipe.SAdd(ctx, indexKey, id)
		pipe.Expire(ctx, indexKey, s.ttl)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	return sess, nil
}

func (s *Store) Get(ctx context.Context, id string) (*Session, error) {
	data, err := s.rdb.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("get session: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}

	if sess.IsExpired(s.now()) {
		return nil, fmt.Errorf("get session: %w", core.ErrNotFound)
	}

	return &sess, nil
}

// Update replaces the identity stored in a session without touching its TTL.
func (s *Store) Update(ctx context.Context, id string, identity Identity) error {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	sess.Identity = identity

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	if err := s.rdb.Set(ctx, sessionKey(id), data, redis.KeepTTL).Err(); err != nil {
		return fmt.Errorf("update session: %w", err)
	}

	return nil
}

// UpdateForUser rewrites the identity of every live session of a user.
func (s *Store) UpdateForUser(ctx context.Context, identity Identity) error {
	ids, err := s.sessionIDs(ctx, identity.UserID)
	if err != nil {
		return err
	}

	for _, id := range ids {
		err := s.Update(ctx, id, identity)
		if err != nil && !errors.Is(err, core.ErrNotFound) {
			return err
		}
	}

	return nil
}

// Delete removes a session. Deleting an unknown session is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	sess, err := s.Get(ctx, id)
	if err != nil && !errors.Is(err, core.ErrNotFound) {
		return err
	}

	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, sessionKey(id))
		if sess != nil {
			pipe.SRem(ctx, userIndexKey(sess.Identity.UserID), id)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	return nil
}

// DeleteAllForUser removes every session of userID except keep, which may be
// empty.
func (s *Store) DeleteAllForUser(
	ctx context.Context,
	userID int64,
	keep string,
) error {
	ids, err := s.sessionIDs(ctx, userID)
	if err != nil {
		return err
	}

	indexKey := userIndexKey(userID)

	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, id := range ids {
			if id == keep {
				continue
			}
			pipe.Del(ctx, sessionKey(id))
			pipe.SRem(ctx, indexKey, id)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete user sessions: %w", err)
	}

	return nil
}

func (s *Store) sessionIDs(ctx context.Context, userID int64) ([]string, error) {
	ids, err := s.rdb.SMembers(ctx, userIndexKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("list user sessions: %w", err)
	}
	return ids, nil
}
