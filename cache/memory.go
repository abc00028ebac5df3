package cache

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	phash "github.com/vmchale/phash-fut"
)

// Memory is an in-process LRU cache.
type Memory struct {
	lru *lru.Cache[string, phash.Hash]
}

// NewMemory creates a cache holding at most size entries.
func NewMemory(size int) (*Memory, error) {
	c, err := lru.New[string, phash.Hash](size)
	if err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}
	return &Memory{lru: c}, nil
}

// Get implements Cache.
func (m *Memory) Get(_ context.Context, key string) (phash.Hash, bool, error) {
	h, ok := m.lru.Get(key)
	return h, ok, nil
}

// Set implements Cache.
func (m *Memory) Set(_ context.Context, key string, h phash.Hash) error {
	m.lru.Add(key, h)
	return nil
}

// Len returns the number of cached entries.
func (m *Memory) Len() int { return m.lru.Len() }
