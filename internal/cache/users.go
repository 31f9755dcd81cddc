// Package cache keeps short-lived copies of user identity data in Redis so the
// auth middleware does not hit the database on every request. Balances are
// never cached.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultTTL = 10 * time.Minute

// UserData is the cached identity of an authenticated user.
type UserData struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Users is a Redis-backed cache of UserData. A nil *Users or a nil client
// disables caching; every method is then a no-op miss.
type Users struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

func NewUsers(rdb *redis.Client, prefix string) *Users {
	return &Users{rdb: rdb, prefix: prefix, ttl: defaultTTL}
}

func (u *Users) key(userID int64) string {
	return fmt.Sprintf("%s:user:%d:data", u.prefix, userID)
}

func (u *Users) enabled() bool {
	return u != nil && u.rdb != nil
}

// Get returns the cached data and whether it was found.
func (u *Users) Get(ctx context.Context, userID int64) (*UserData, bool) {
	if !u.enabled() {
		return nil, false
	}
	raw, err := u.rdb.Get(ctx, u.key(userID)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Error("Redis GET command failed", "error", err, "user_id", userID)
		}
		return nil, false
	}
	var data UserData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		slog.Warn("Failed to unmarshal cached user data", "user_id", userID, "data", raw)
		return nil, false
	}
	return &data, true
}

func (u *Users) Set(ctx context.Context, data *UserData) {
	if !u.enabled() {
		return
	}
	raw, err := json.Marshal(data)
	if err != nil {
		slog.Error("Failed to marshal user data for caching", "error", err, "user_id", data.UserID)
		return
	}
	if err := u.rdb.Set(ctx, u.key(data.UserID), raw, u.ttl).Err(); err != nil {
		slog.Error("Failed to SET user data to cache", "error", err, "user_id", data.UserID)
	}
}

// Invalidate drops the cached entry after the user was changed or deleted.
func (u *Users) Invalidate(ctx context.Context, userID int64) {
	if !u.enabled() {
		return
	}
	if err := u.rdb.Del(ctx, u.key(userID)).Err(); err != nil {
		slog.Warn("Failed to invalidate cache for user", "error", err, "user_id", userID)
	}
}
