// Package cache provides the TTL caches injected into the region service and
// the HTTP response middleware.
package cache

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"
)

// Store is a key/value cache with its own expiry policy.
type Store[V any] interface {
	Get(key string) (V, bool)
	Add(key string, value V)
	Remove(key string)
	Len() int
}

// TTL is a size-bounded LRU whose entries expire after a fixed duration.
type TTL[V any] struct {
	lru *expirable.LRU[string, V]
	ttl time.Duration
}

func NewTTL[V any](size int, ttl time.Duration) *TTL[V] {
	if size <= 0 {
		size = 1024
	}
	return &TTL[V]{lru: expirable.NewLRU[string, V](size, nil, ttl), ttl: ttl}
}

func (c *TTL[V]) Get(key string) (V, bool) { return c.lru.Get(key) }
func (c *TTL[V]) Add(key string, value V)  { c.lru.Add(key, value) }
func (c *TTL[V]) Remove(key string)        { c.lru.Remove(key) }
func (c *TTL[V]) Len() int                 { return c.lru.Len() }
func (c *TTL[V]) TTL() time.Duration       { return c.ttl }

// Purge drops every entry.
func (c *TTL[V]) Purge() { c.lru.Purge() }

// Key derives a cache key from a prefix and an ordered parameter tuple.
// Every part is length-prefixed before hashing, so separators inside a value
// cannot make two tuples collide. Slices keep their order, so ["a","b"] and
// ["b","a"] give distinct keys.
func Key(prefix string, parts ...any) string {
	var b strings.Builder
	for _, p := range parts {
		switch v := p.(type) {
		case []string:
			fmt.Fprintf(&b, "[%d]", len(v))
			for _, s := range v {
				writePart(&b, s)
			}
		case nil:
			b.WriteString("nil;")
		default:
			writePart(&b, fmt.Sprintf("%v", v))
		}
	}
	sum := md5.Sum([]byte(b.String()))
	return prefix + ":" + hex.EncodeToString(sum[:])
}

func writePart(b *strings.Builder, s string) {
	fmt.Fprintf(b, "%d:%s;", len(s), s)
}

// Memo combines a Store with request coalescing: concurrent misses for the
// same key run fn once.
type Memo[V any] struct {
	store Store[V]
	group singleflight.Group
}

func NewMemo[V any](store Store[V]) *Memo[V] {
	return &Memo[V]{store: store}
}

// Do returns the cached value for key or computes, stores and returns it.
// Errors are not cached. The bool reports a cache hit.
func (m *Memo[V]) Do(key string, fn func() (V, error)) (V, bool, error) {
	if m == nil || m.store == nil {
		v, err := fn()
		return v, false, err
	}
	if v, ok := m.store.Get(key); ok {
		return v, true, nil
	}
	out, err, _ := m.group.Do(key, func() (any, error) {
		v, err := fn()
		if err != nil {
			return v, err
		}
		m.store.Add(key, v)
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, false, err
	}
	return out.(V), false, nil
}
