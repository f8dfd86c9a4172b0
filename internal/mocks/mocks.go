// Package mocks holds testify mocks for the collaborators services and
// handlers depend on.
package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/foodgram/backend/internal/types"
)

// MockImageStore is a mock implementation of the image store
type MockImageStore struct {
	mock.Mock
}

func (m *MockImageStore) Save(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	args := m.Called(ctx, key, data, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockImageStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// MemoryImageStore keeps saved images in memory and returns fake URLs.
type MemoryImageStore struct {
	mu    sync.Mutex
	Files map[string][]byte
}

func NewMemoryImageStore() *MemoryImageStore {
	return &MemoryImageStore{Files: map[string][]byte{}}
}

func (s *MemoryImageStore) Save(_ context.Context, key string, data []byte, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Files[key] = data
	return "/media/" + key, nil
}

func (s *MemoryImageStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Files, key)
	return nil
}

func (s *MemoryImageStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Files)
}

// MockCounter is a mock implementation of the rate limit counter
type MockCounter struct {
	mock.Mock
}

func (m *MockCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	args := m.Called(ctx, key, window)
	return args.Get(0).(int64), args.Error(1)
}

// MemoryCounter counts in memory without expiry.
type MemoryCounter struct {
	mu     sync.Mutex
	Counts map[string]int64
}

func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{Counts: map[string]int64{}}
}

func (c *MemoryCounter) Incr(_ context.Context, key string, _ time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Counts[key]++
	return c.Counts[key], nil
}

// MockTokenValidator is a mock implementation of the token validator
type MockTokenValidator struct {
	mock.Mock
}

func (m *MockTokenValidator) ValidateToken(ctx context.Context, token string) (*types.TokenClaims, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.TokenClaims), args.Error(1)
}

// MemoryDenylist is an in-memory token denylist.
type MemoryDenylist struct {
	mu      sync.Mutex
	Revoked map[string]time.Duration
}

func NewMemoryDenylist() *MemoryDenylist {
	return &MemoryDenylist{Revoked: map[string]time.Duration{}}
}

func (d *MemoryDenylist) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Revoked[tokenID] = ttl
	return nil
}

func (d *MemoryDenylist) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.Revoked[tokenID]
	return ok, nil
}
