// Package store provides the cache/event store abstraction used for
// progress snapshots and job lifecycle events, with in-memory and Redis
// implementations selected by configuration.
package store

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a key does not exist in the store.
var ErrNotFound = errors.New("store: key not found")

// Message is a single pub/sub message.
type Message struct {
	Channel string
	Payload []byte
}

// Subscription is a handle on a pub/sub channel.
type Subscription interface {
	// Channel returns the stream of messages for this subscription.
	Channel() <-chan *Message
	// Close terminates the subscription and releases its resources.
	Close() error
}

// Store is a key-value store with TTL support and pub/sub, safe for
// concurrent use.
type Store interface {
	Set(key string, value []byte, ttl time.Duration) error
	Get(key string) ([]byte, error)
	Delete(key string) error
	Exists(key string) (bool, error)
	SetNX(key string, value []byte, ttl time.Duration) (bool, error)

	Publish(channel string, message []byte) error
	Subscribe(channel string) (Subscription, error)

	Clear() error
	Close() error
}
