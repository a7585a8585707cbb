package dag

import (
	"context"
	"sync"

	"dagstore/internal/kv"
)

// mockBackend hands out numbered sessions and tracks which are still open.
type mockBackend struct {
	mu       sync.Mutex
	nextID   int
	live     map[int]bool
	readErr  error
	writeErr error
	closed   bool

	// When set, session opens block until the channel is closed, ignoring
	// the context the way a lock-bound backend would.
	gate chan struct{}
}

func newMockBackend(firstID int) *mockBackend {
	return &mockBackend{nextID: firstID, live: make(map[int]bool)}
}

func (b *mockBackend) open() *mockSession {
	if b.gate != nil {
		<-b.gate
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.live[id] = true
	return &mockSession{id: id, backend: b}
}

func (b *mockBackend) Read(ctx context.Context) (kv.Read, error) {
	if b.readErr != nil {
		return nil, b.readErr
	}
	s, err := kv.Acquire(ctx, func() (*mockSession, error) { return b.open(), nil }, (*mockSession).Release)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (b *mockBackend) Write(ctx context.Context) (kv.Write, error) {
	if b.writeErr != nil {
		return nil, b.writeErr
	}
	s, err := kv.Acquire(ctx, func() (*mockSession, error) { return b.open(), nil }, (*mockSession).Release)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (b *mockBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

func (b *mockBackend) liveSessions() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.live)
}

type mockSession struct {
	id        int
	backend   *mockBackend
	committed bool
}

func (s *mockSession) Has(string) (bool, error) { return false, nil }
func (s *mockSession) Get(string) ([]byte, bool, error) { return nil, false, nil }
func (s *mockSession) Put(string, []byte) error { return nil }
func (s *mockSession) Del(string) error { return nil }

func (s *mockSession) Commit() error {
	s.committed = true
	s.Release()
	return nil
}

func (s *mockSession) Release() {
	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()
	delete(s.backend.live, s.id)
}
