package memory

import (
	"context"
	"sync"

	"dagstore/internal/kv"
)

var _ kv.Store = (*Store)(nil)

// Store is an in-memory kv.Store. Committed data is published as an
// immutable map, so a read session simply holds on to the map that was
// current when it started.
type Store struct {
	writer chan struct{} // single permit for write sessions

	mu     sync.RWMutex
	data   map[string][]byte
	closed bool
}

// New creates an empty store.
func New() *Store {
	return &Store{
		writer: make(chan struct{}, 1),
		data:   make(map[string][]byte),
	}
}

func (s *Store) snapshot() (map[string][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, kv.ErrClosed
	}
	return s.data, nil
}

func (s *Store) Read(ctx context.Context) (kv.Read, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	return &read{data: data}, nil
}

func (s *Store) Write(ctx context.Context) (kv.Write, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	select {
	case s.writer <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	data, err := s.snapshot()
	if err != nil {
		<-s.writer
		return nil, err
	}
	return &write{
		read:    read{data: data},
		store:   s,
		pending: make(map[string][]byte),
	}, nil
}

// Close drops all data. Sessions already handed out keep their view.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.data = nil
	return nil
}

func (s *Store) publish(base, pending map[string][]byte) error {
	next := make(map[string][]byte, len(base)+len(pending))
	for k, v := range base {
		next[k] = v
	}
	for k, v := range pending {
		if v == nil {
			delete(next, k)
		} else {
			next[k] = v
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return kv.ErrClosed
	}
	s.data = next
	return nil
}

type read struct {
	data     map[string][]byte
	released bool
}

func (r *read) Has(key string) (bool, error) {
	if r.released {
		return false, kv.ErrReleased
	}
	_, ok := r.data[key]
	return ok, nil
}

func (r *read) Get(key string) ([]byte, bool, error) {
	if r.released {
		return nil, false, kv.ErrReleased
	}
	v, ok := r.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte{}, v...), true, nil
}

func (r *read) Release() {
	r.released = true
}

// write buffers changes on top of the snapshot it started from. A nil
// pending value marks a deletion.
type write struct {
	read
	store   *Store
	pending map[string][]byte
}

func (w *write) Has(key string) (bool, error) {
	if w.released {
		return false, kv.ErrReleased
	}
	if v, ok := w.pending[key]; ok {
		return v != nil, nil
	}
	return w.read.Has(key)
}

func (w *write) Get(key string) ([]byte, bool, error) {
	if w.released {
		return nil, false, kv.ErrReleased
	}
	if v, ok := w.pending[key]; ok {
		if v == nil {
			return nil, false, nil
		}
		return append([]byte{}, v...), true, nil
	}
	return w.read.Get(key)
}

func (w *write) Put(key string, value []byte) error {
	if w.released {
		return kv.ErrReleased
	}
	w.pending[key] = append([]byte{}, value...)
	return nil
}

func (w *write) Del(key string) error {
	if w.released {
		return kv.ErrReleased
	}
	w.pending[key] = nil
	return nil
}

func (w *write) Commit() error {
	if w.released {
		return kv.ErrReleased
	}
	err := w.store.publish(w.data, w.pending)
	w.Release()
	return err
}

func (w *write) Release() {
	if w.released {
		return
	}
	w.released = true
	w.pending = nil
	<-w.store.writer
}
