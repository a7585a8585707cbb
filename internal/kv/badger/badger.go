package badger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"dagstore/internal/kv"
	"dagstore/internal/logging"
)

var (
	_ kv.Store = (*Store)(nil)

	logger = logging.For("kv/badger")
)

// Options tunes the badger database.
type Options struct {
	NoSync bool
}

// Store implements kv.Store on badger's MVCC transactions. Badger does not
// serialize writers; concurrent write sessions that touch the same keys
// fail at Commit with badger.ErrConflict.
type Store struct {
	db *badger.DB
}

// Open creates or opens a badger database in dir.
func Open(dir string, opts Options) (*Store, error) {
	bopts := badger.DefaultOptions(dir).
		WithSyncWrites(!opts.NoSync).
		WithLogger(slogAdapter{}).
		WithLoggingLevel(badger.WARNING)
	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("opening badger: %w", err)
	}
	logger.Info("opened badger store", "dir", dir)
	return &Store{db: db}, nil
}

func (s *Store) Read(ctx context.Context) (kv.Read, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.db.IsClosed() {
		return nil, kv.ErrClosed
	}
	return &read{txn: s.db.NewTransaction(false)}, nil
}

func (s *Store) Write(ctx context.Context) (kv.Write, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.db.IsClosed() {
		return nil, kv.ErrClosed
	}
	return &write{read{txn: s.db.NewTransaction(true)}}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

type read struct {
	txn *badger.Txn // nil once released
}

func (r *read) Has(key string) (bool, error) {
	if r.txn == nil {
		return false, kv.ErrReleased
	}
	_, err := r.txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (r *read) Get(key string) ([]byte, bool, error) {
	if r.txn == nil {
		return nil, false, kv.ErrReleased
	}
	item, err := r.txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	v, err := item.ValueCopy(nil)
	if err != nil {
		return nil, false, err
	}
	if v == nil {
		v = []byte{}
	}
	return v, true, nil
}

func (r *read) Release() {
	if r.txn == nil {
		return
	}
	r.txn.Discard()
	r.txn = nil
}

type write struct {
	read
}

// Put copies key and value: badger holds on to both until commit.
func (w *write) Put(key string, value []byte) error {
	if w.txn == nil {
		return kv.ErrReleased
	}
	return w.txn.Set([]byte(key), append([]byte{}, value...))
}

func (w *write) Del(key string) error {
	if w.txn == nil {
		return kv.ErrReleased
	}
	return w.txn.Delete([]byte(key))
}

func (w *write) Commit() error {
	if w.txn == nil {
		return kv.ErrReleased
	}
	txn := w.txn
	w.txn = nil
	defer txn.Discard()
	return txn.Commit()
}

// slogAdapter routes badger's internal logging to the component logger.
type slogAdapter struct{}

func (slogAdapter) Errorf(format string, args ...interface{}) {
	logger.Error(trim(format, args))
}

func (slogAdapter) Warningf(format string, args ...interface{}) {
	logger.Warn(trim(format, args))
}

func (slogAdapter) Infof(format string, args ...interface{}) {
	logger.Info(trim(format, args))
}

func (slogAdapter) Debugf(format string, args ...interface{}) {
	logger.Debug(trim(format, args))
}

func trim(format string, args []interface{}) string {
	return strings.TrimSpace(fmt.Sprintf(format, args...))
}
