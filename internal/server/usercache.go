package server

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
)

// UserResolver maps an authenticated login to an owner id, creating the user
// on first sight. Both storage backends implement it.
type UserResolver interface {
	GetOrCreateUser(ctx context.Context, login, displayName string) (int, error)
}

// UserCache memoizes login -> owner id so identity middleware does not hit
// the database on every request.
type UserCache struct {
	resolver UserResolver
	cache    *cache.Cache
}

// NewUserCache wraps resolver with a cache whose entries live for ttl.
func NewUserCache(resolver UserResolver, ttl time.Duration) *UserCache {
	return &UserCache{
		resolver: resolver,
		cache:    cache.New(ttl, 2*ttl),
	}
}

// Resolve returns the owner id for login.
func (c *UserCache) Resolve(ctx context.Context, login, displayName string) (int, error) {
	if v, ok := c.cache.Get(login); ok {
		return v.(int), nil
	}
	id, err := c.resolver.GetOrCreateUser(ctx, login, displayName)
	if err != nil {
		return 0, fmt.Errorf("resolving user %s: %w", login, err)
	}
	c.cache.SetDefault(login, id)
	return id, nil
}

// Len reports the number of cached logins.
func (c *UserCache) Len() int {
	return c.cache.ItemCount()
}
