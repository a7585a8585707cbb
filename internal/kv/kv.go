package kv

import (
	"context"
	"errors"
)

var (
	// ErrReleased is returned by a session used after Commit or Release.
	ErrReleased = errors.New("kv: session released")
	// ErrClosed is returned when a session is requested from a closed store.
	ErrClosed = errors.New("kv: store closed")
)

// Store is the capability set a backend must provide. The initial
// implementations are memory, bbolt, goleveldb and badger; callers only
// ever see sessions, never the underlying database.
type Store interface {
	// Read opens a session over a consistent view of the store.
	Read(ctx context.Context) (Read, error)
	// Write opens a session whose changes become visible only on Commit.
	Write(ctx context.Context) (Write, error)
	Close() error
}

// Read is a backend-issued read session.
type Read interface {
	Has(key string) (bool, error)
	// Get returns a copy of the value stored under key. ok is false when
	// the key does not exist.
	Get(key string) (value []byte, ok bool, err error)
	// Release ends the session. It is safe to call more than once.
	Release()
}

// Write is a backend-issued write session. Reads observe the session's own
// pending changes. Nothing is applied until Commit; Release without Commit
// discards.
type Write interface {
	Read
	Put(key string, value []byte) error
	Del(key string) error
	Commit() error
}
