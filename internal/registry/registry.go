// Package registry tracks which delivery handle (socket id, device token)
// is currently bound to a user for the private-messaging push channel. The
// relay that consumes the handles is an external collaborator; the core
// only registers, looks up and removes bindings.
package registry

import (
	"context"
	"errors"
	"sync"

	"github.com/redis/go-redis/v9"
)

// ErrNotRegistered is returned when a user has no live handle.
var ErrNotRegistered = errors.New("user is not registered")

// SessionRegistry is the process-scoped registry of user -> delivery handle
// bindings.
type SessionRegistry interface {
	Register(ctx context.Context, userID, handle string) error
	Lookup(ctx context.Context, userID string) (string, error)
	Remove(ctx context.Context, userID string) error
}

const keyPrefix = "session:"

type redisRegistry struct {
	client *redis.Client
}

// NewRedisRegistry creates a SessionRegistry backed by Redis, so bindings
// survive a process restart and are visible to every instance.
func NewRedisRegistry(client *redis.Client) SessionRegistry {
	return &redisRegistry{client: client}
}

func (r *redisRegistry) Register(ctx context.Context, userID, handle string) error {
	return r.client.Set(ctx, keyPrefix+userID, handle, 0).Err()
}

func (r *redisRegistry) Lookup(ctx context.Context, userID string) (string, error) {
	handle, err := r.client.Get(ctx, keyPrefix+userID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotRegistered
		}

		return "", err
	}

	return handle, nil
}

func (r *redisRegistry) Remove(ctx context.Context, userID string) error {
	return r.client.Del(ctx, keyPrefix+userID).Err()
}

type memoryRegistry struct {
	mu      sync.RWMutex
	handles map[string]string
}

// NewMemoryRegistry creates an in-process SessionRegistry, used in tests and
// single-instance deployments.
func NewMemoryRegistry() SessionRegistry {
	return &memoryRegistry{handles: map[string]string{}}
}

func (r *memoryRegistry) Register(_ context.Context, userID, handle string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.handles[userID] = handle

	return nil
}

func (r *memoryRegistry) Lookup(_ context.Context, userID string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	handle, ok := r.handles[userID]
	if !ok {
		return "", ErrNotRegistered
	}

	return handle, nil
}

func (r *memoryRegistry) Remove(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.handles, userID)

	return nil
}
