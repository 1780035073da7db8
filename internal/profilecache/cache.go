// Package profilecache caches decoded profile snapshots so repeated MCP
// resource reads skip the database.
package profilecache

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/liftlog/liftlog-mcp/internal/model"
)

const defaultCapacity = 16

// Cache is a bounded LRU of user profiles keyed by user ID.
type Cache struct {
	lru *lru.Cache[string, model.UserProfile]
}

// New creates a cache holding at most capacity profiles; non-positive
// capacity uses the default.
func New(capacity int) (*Cache, error) {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	inner, err := lru.New[string, model.UserProfile](capacity)
	if err != nil {
		return nil, err
	}
	return &Cache{lru: inner}, nil
}

// Get returns the cached profile for a user ID.
func (c *Cache) Get(userID string) (model.UserProfile, bool) {
	return c.lru.Get(userID)
}

// Put stores a profile, evicting the least recently used entry when
// full.
func (c *Cache) Put(p model.UserProfile) {
	c.lru.Add(p.UserID, p)
}

// Invalidate drops a user's cached profile, if present.
func (c *Cache) Invalidate(userID string) {
	c.lru.Remove(userID)
}

// Len returns the number of cached profiles.
func (c *Cache) Len() int {
	return c.lru.Len()
}
