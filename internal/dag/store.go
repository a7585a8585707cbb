// Package dag stores content-addressed chunks and named heads on top of a
// pluggable kv backend. All access goes through short-lived Read and Write
// handles obtained from a Store.
package dag

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"dagstore/internal/kv"
	"dagstore/internal/logging"
)

var logger = logging.For("dag")

// maxReaders is the number of read handles that may be live at once. A
// write handle takes all of them.
const maxReaders = 1 << 20

// Store owns a kv backend and hands out handles to it. Any number of Read
// handles may be live together; a Write handle excludes every other
// handle on the same Store. Waiters are served in arrival order, so a
// pending writer is not starved by a stream of readers.
//
// A goroutine holding a handle must release it before asking the same
// Store for a Write, or it waits on itself.
type Store struct {
	kv  kv.Store
	sem *semaphore.Weighted
}

// New takes ownership of backend.
func New(backend kv.Store) *Store {
	return &Store{
		kv:  backend,
		sem: semaphore.NewWeighted(maxReaders),
	}
}

// Read waits for shared access and opens a backend read session. Errors
// from the backend are returned unchanged.
func (s *Store) Read(ctx context.Context) (*Read, error) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	session, err := s.kv.Read(ctx)
	if err != nil {
		s.sem.Release(1)
		logger.Debug("read session failed", "err", err)
		return nil, err
	}
	r := newRead(session)
	r.done = func() { s.sem.Release(1) }
	logger.Debug("read handle opened", "handle", r.id)
	return r, nil
}

// Write waits for exclusive access and opens a backend write session.
// Errors from the backend are returned unchanged.
func (s *Store) Write(ctx context.Context) (*Write, error) {
	if err := s.sem.Acquire(ctx, maxReaders); err != nil {
		return nil, err
	}
	session, err := s.kv.Write(ctx)
	if err != nil {
		s.sem.Release(maxReaders)
		logger.Debug("write session failed", "err", err)
		return nil, err
	}
	w := newWrite(session)
	w.done = func() { s.sem.Release(maxReaders) }
	logger.Debug("write handle opened", "handle", w.id)
	return w, nil
}

// WithRead runs fn with a read handle that is released when fn returns.
func (s *Store) WithRead(ctx context.Context, fn func(*Read) error) error {
	r, err := s.Read(ctx)
	if err != nil {
		return err
	}
	defer r.Release()
	return fn(r)
}

// WithWrite runs fn with a write handle and commits if fn returns nil.
// Otherwise the write is discarded.
func (s *Store) WithWrite(ctx context.Context, fn func(*Write) error) error {
	w, err := s.Write(ctx)
	if err != nil {
		return err
	}
	defer w.Release()
	if err := fn(w); err != nil {
		return err
	}
	return w.Commit()
}

// Close closes the backend. Release every handle first.
func (s *Store) Close() error {
	return s.kv.Close()
}

func newHandleID() string {
	return uuid.NewString()
}
