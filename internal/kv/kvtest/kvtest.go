// Package kvtest holds the behaviour every kv.Store backend must share.
package kvtest

import (
	"context"
	"errors"
	"testing"

	"dagstore/internal/kv"
)

// Opener returns a fresh, empty store. The suite closes it.
type Opener func(t *testing.T) kv.Store

// Run exercises a backend against the kv session contract.
func Run(t *testing.T, open Opener) {
	tests := []struct {
		name string
		fn   func(t *testing.T, s kv.Store)
	}{
		{"CommitVisible", testCommitVisible},
		{"ReleaseDiscards", testReleaseDiscards},
		{"ReadOwnWrites", testReadOwnWrites},
		{"Delete", testDelete},
		{"SnapshotIsolation", testSnapshotIsolation},
		{"GetReturnsCopy", testGetReturnsCopy},
		{"PutCopiesValue", testPutCopiesValue},
		{"EmptyValue", testEmptyValue},
		{"ReleasedRead", testReleasedRead},
		{"ReleasedWrite", testReleasedWrite},
		{"CancelledContext", testCancelledContext},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := open(t)
			t.Cleanup(func() { _ = s.Close() })
			tt.fn(t, s)
		})
	}
}

// Put commits a single key.
func Put(t *testing.T, s kv.Store, key, value string) {
	t.Helper()
	w, err := s.Write(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer w.Release()
	if err := w.Put(key, []byte(value)); err != nil {
		t.Fatal(err)
	}
	if err := w.Commit(); err != nil {
		t.Fatal(err)
	}
}

// Get reads a single key in its own read session.
func Get(t *testing.T, s kv.Store, key string) (string, bool) {
	t.Helper()
	r, err := s.Read(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer r.Release()
	v, ok, err := r.Get(key)
	if err != nil {
		t.Fatal(err)
	}
	return string(v), ok
}

func testCommitVisible(t *testing.T, s kv.Store) {
	Put(t, s, "k", "v")
	got, ok := Get(t, s, "k")
	if !ok || got != "v" {
		t.Fatalf("Get(k) = %q, %v; want v, true", got, ok)
	}

	r, err := s.Read(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer r.Release()
	has, err := r.Has("k")
	if err != nil {
		t.Fatal(err)
	}
	if !has {
		t.Fatal("Has(k) should be true after commit")
	}
	has, err = r.Has("missing")
	if err != nil {
		t.Fatal(err)
	}
	if has {
		t.Fatal("Has(missing) should be false")
	}
}

func testReleaseDiscards(t *testing.T, s kv.Store) {
	w, err := s.Write(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Put("k", []byte("v")); err != nil {
		t.Fatal(err)
	}
	w.Release()

	if _, ok := Get(t, s, "k"); ok {
		t.Fatal("uncommitted write should be discarded on release")
	}

	// The writer slot must be free again.
	Put(t, s, "k2", "v2")
}

func testReadOwnWrites(t *testing.T, s kv.Store) {
	Put(t, s, "old", "1")

	w, err := s.Write(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer w.Release()

	if err := w.Put("new", []byte("2")); err != nil {
		t.Fatal(err)
	}
	v, ok, err := w.Get("new")
	if err != nil {
		t.Fatal(err)
	}
	if !ok || string(v) != "2" {
		t.Fatalf("Get(new) in write = %q, %v; want 2, true", v, ok)
	}
	v, ok, err = w.Get("old")
	if err != nil {
		t.Fatal(err)
	}
	if !ok || string(v) != "1" {
		t.Fatalf("Get(old) in write = %q, %v; want 1, true", v, ok)
	}
	has, err := w.Has("new")
	if err != nil {
		t.Fatal(err)
	}
	if !has {
		t.Fatal("Has(new) in write should be true")
	}
}

func testDelete(t *testing.T, s kv.Store) {
	Put(t, s, "k", "v")

	w, err := s.Write(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer w.Release()
	if err := w.Del("k"); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := w.Get("k"); err != nil || ok {
		t.Fatalf("Get after Del in write: ok=%v err=%v", ok, err)
	}
	// Deleting a missing key is not an error.
	if err := w.Del("never-existed"); err != nil {
		t.Fatal(err)
	}
	if err := w.Commit(); err != nil {
		t.Fatal(err)
	}

	if _, ok := Get(t, s, "k"); ok {
		t.Fatal("deleted key still visible after commit")
	}
}

func testSnapshotIsolation(t *testing.T, s kv.Store) {
	Put(t, s, "k", "before")

	r, err := s.Read(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer r.Release()

	Put(t, s, "k", "after")
	Put(t, s, "k2", "added")

	v, ok, err := r.Get("k")
	if err != nil {
		t.Fatal(err)
	}
	if !ok || string(v) != "before" {
		t.Fatalf("read session saw %q, want before", v)
	}
	if has, err := r.Has("k2"); err != nil || has {
		t.Fatalf("read session saw later key: has=%v err=%v", has, err)
	}

	if got, _ := Get(t, s, "k"); got != "after" {
		t.Fatalf("new read session saw %q, want after", got)
	}
}

func testGetReturnsCopy(t *testing.T, s kv.Store) {
	Put(t, s, "k", "original")

	r, err := s.Read(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	v, _, err := r.Get("k")
	if err != nil {
		t.Fatal(err)
	}
	v[0] = 'X'
	r.Release()

	if got, _ := Get(t, s, "k"); got != "original" {
		t.Fatal("mutating a returned value should not affect the store")
	}
}

func testPutCopiesValue(t *testing.T, s kv.Store) {
	w, err := s.Write(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer w.Release()
	buf := []byte("original")
	if err := w.Put("k", buf); err != nil {
		t.Fatal(err)
	}
	buf[0] = 'X'
	if err := w.Commit(); err != nil {
		t.Fatal(err)
	}

	if got, _ := Get(t, s, "k"); got != "original" {
		t.Fatalf("Get(k) = %q; mutating the caller's buffer leaked into the store", got)
	}
}

func testEmptyValue(t *testing.T, s kv.Store) {
	Put(t, s, "empty", "")
	got, ok := Get(t, s, "empty")
	if !ok {
		t.Fatal("empty value should still exist")
	}
	if got != "" {
		t.Fatalf("Get(empty) = %q", got)
	}
}

func testReleasedRead(t *testing.T, s kv.Store) {
	r, err := s.Read(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	r.Release()
	r.Release() // idempotent

	if _, _, err := r.Get("k"); !errors.Is(err, kv.ErrReleased) {
		t.Fatalf("Get after Release: %v, want ErrReleased", err)
	}
	if _, err := r.Has("k"); !errors.Is(err, kv.ErrReleased) {
		t.Fatalf("Has after Release: %v, want ErrReleased", err)
	}
}

func testReleasedWrite(t *testing.T, s kv.Store) {
	w, err := s.Write(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Commit(); err != nil {
		t.Fatal(err)
	}
	w.Release() // no-op after commit

	if err := w.Put("k", []byte("v")); !errors.Is(err, kv.ErrReleased) {
		t.Fatalf("Put after Commit: %v, want ErrReleased", err)
	}
	if err := w.Del("k"); !errors.Is(err, kv.ErrReleased) {
		t.Fatalf("Del after Commit: %v, want ErrReleased", err)
	}
	if err := w.Commit(); !errors.Is(err, kv.ErrReleased) {
		t.Fatalf("second Commit: %v, want ErrReleased", err)
	}
	if _, _, err := w.Get("k"); !errors.Is(err, kv.ErrReleased) {
		t.Fatalf("Get after Commit: %v, want ErrReleased", err)
	}
}

func testCancelledContext(t *testing.T, s kv.Store) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if r, err := s.Read(ctx); !errors.Is(err, context.Canceled) {
		if r != nil {
			r.Release()
		}
		t.Fatalf("Read with cancelled ctx: %v, want context.Canceled", err)
	}
	if w, err := s.Write(ctx); !errors.Is(err, context.Canceled) {
		if w != nil {
			w.Release()
		}
		t.Fatalf("Write with cancelled ctx: %v, want context.Canceled", err)
	}

	// A cancelled request must not hold the writer slot.
	Put(t, s, "k", "v")
}
