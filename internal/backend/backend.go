// Package backend opens the kv.Store named by the configuration.
package backend

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dagstore/internal/config"
	"dagstore/internal/kv"
	"dagstore/internal/kv/badger"
	"dagstore/internal/kv/bolt"
	"dagstore/internal/kv/leveldb"
	"dagstore/internal/kv/memory"
)

var ErrUnknownBackend = errors.New("unknown backend")

// Open creates the data directory if needed and opens the configured
// backend inside it. The caller owns the returned store.
func Open(cfg config.StoreConfig) (kv.Store, error) {
	name := strings.TrimSpace(cfg.Backend)
	if name == config.BackendMemory {
		return memory.New(), nil
	}

	switch name {
	case config.BackendBolt, config.BackendLevelDB, config.BackendBadger:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}

	dir := config.ExpandHome(cfg.DataDir)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	var (
		s   kv.Store
		err error
	)
	switch name {
	case config.BackendBolt:
		s, err = openBolt(filepath.Join(dir, "data.db"), cfg.NoSync)
	case config.BackendLevelDB:
		s, err = openLevelDB(filepath.Join(dir, "leveldb"), cfg.NoSync)
	default:
		s, err = openBadger(filepath.Join(dir, "badger"), cfg.NoSync)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// The open helpers keep a failed open from surfacing as a non-nil
// kv.Store holding a nil pointer.

func openBolt(path string, noSync bool) (kv.Store, error) {
	s, err := bolt.Open(path, bolt.Options{NoSync: noSync})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func openLevelDB(dir string, noSync bool) (kv.Store, error) {
	s, err := leveldb.Open(dir, leveldb.Options{NoSync: noSync})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func openBadger(dir string, noSync bool) (kv.Store, error) {
	s, err := badger.Open(dir, badger.Options{NoSync: noSync})
	if err != nil {
		return nil, err
	}
	return s, nil
}
