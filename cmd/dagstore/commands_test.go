package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"dagstore/internal/dag"
	"dagstore/internal/kv/memory"
)

func testStore(t *testing.T) *dag.Store {
	t.Helper()
	s := dag.New(memory.New())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func exec(t *testing.T, s *dag.Store, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(context.Background(), s, args, strings.NewReader(stdin), &out)
	return out.String(), err
}

func mustExec(t *testing.T, s *dag.Store, stdin string, args ...string) string {
	t.Helper()
	out, err := exec(t, s, stdin, args...)
	if err != nil {
		t.Fatalf("%v: %v", args, err)
	}
	return out
}

func TestPutGet(t *testing.T) {
	s := testStore(t)
	hash := strings.TrimSpace(mustExec(t, s, "hello world", "put"))
	if hash != dag.HashOf([]byte("hello world")).String() {
		t.Fatalf("put printed %q", hash)
	}

	if got := mustExec(t, s, "", "get", hash); got != "hello world" {
		t.Fatalf("get = %q, want hello world", got)
	}
	if got := mustExec(t, s, "", "has", hash); got != "true\n" {
		t.Fatalf("has = %q, want true", got)
	}
	if got := mustExec(t, s, "", "refs", hash); got != "" {
		t.Fatalf("refs = %q, want none", got)
	}
}

func TestPutWithRefs(t *testing.T) {
	s := testStore(t)
	leaf := strings.TrimSpace(mustExec(t, s, "leaf", "put"))
	root := strings.TrimSpace(mustExec(t, s, "root", "put", leaf))

	if got := mustExec(t, s, "", "refs", root); got != leaf+"\n" {
		t.Fatalf("refs = %q, want %s", got, leaf)
	}
}

func TestHeadsCommands(t *testing.T) {
	s := testStore(t)
	hash := strings.TrimSpace(mustExec(t, s, "commit", "put"))

	mustExec(t, s, "", "set-head", "main", hash)
	if got := mustExec(t, s, "", "get-head", "main"); got != hash+"\n" {
		t.Fatalf("get-head = %q, want %s", got, hash)
	}

	mustExec(t, s, "", "del-head", "main")
	if _, err := exec(t, s, "", "get-head", "main"); !errors.Is(err, errNotFound) {
		t.Fatalf("get-head after del-head: %v, want errNotFound", err)
	}
}

func TestMissingChunk(t *testing.T) {
	s := testStore(t)
	missing := dag.HashOf([]byte("missing")).String()
	if _, err := exec(t, s, "", "get", missing); !errors.Is(err, errNotFound) {
		t.Fatalf("get missing: %v, want errNotFound", err)
	}
	if got := mustExec(t, s, "", "has", missing); got != "false\n" {
		t.Fatalf("has missing = %q, want false", got)
	}
}

func TestUsageErrors(t *testing.T) {
	s := testStore(t)
	tests := [][]string{
		{},
		{"frobnicate"},
		{"get"},
		{"get", "a", "b"},
		{"set-head", "main"},
	}
	for _, args := range tests {
		if _, err := exec(t, s, "", args...); !errors.Is(err, errUsage) {
			t.Errorf("%v: %v, want errUsage", args, err)
		}
	}
}

func TestInvalidHashArgs(t *testing.T) {
	s := testStore(t)
	for _, args := range [][]string{
		{"get", "nope"},
		{"has", "nope"},
		{"put", "nope"},
		{"set-head", "main", "nope"},
	} {
		if _, err := exec(t, s, "data", args...); !errors.Is(err, dag.ErrInvalidHash) {
			t.Errorf("%v: %v, want ErrInvalidHash", args, err)
		}
	}
}

func TestCommandNamesSorted(t *testing.T) {
	names := commandNames()
	if len(names) != len(commands) {
		t.Fatalf("got %d names, want %d", len(names), len(commands))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Fatalf("names not sorted: %v", names)
		}
	}
}
