// Package cache memoizes report computations keyed by snapshot hash.
package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// TTL is a small expiring cache. Entries fall out after the TTL elapses
// or when capacity pushes out the least recently used key.
type TTL[V any] struct {
	lru *expirable.LRU[string, V]
}

// New builds a cache holding at most size entries for at most ttl each.
// A non-positive ttl disables expiry.
func New[V any](size int, ttl time.Duration) *TTL[V] {
	return &TTL[V]{lru: expirable.NewLRU[string, V](size, nil, ttl)}
}

func (c *TTL[V]) Get(key string) (V, bool) {
	return c.lru.Get(key)
}

func (c *TTL[V]) Add(key string, v V) {
	c.lru.Add(key, v)
}

// Purge drops every entry. Used when the caller knows the underlying
// data changed out of band.
func (c *TTL[V]) Purge() {
	c.lru.Purge()
}

func (c *TTL[V]) Len() int {
	return c.lru.Len()
}
