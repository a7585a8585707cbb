package bolt

import (
	"bytes"
	"context"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"dagstore/internal/kv"
	"dagstore/internal/logging"
)

var (
	_ kv.Store = (*Store)(nil)

	logger = logging.For("kv/bolt")

	dataBucket = []byte("kv")
)

// Options tunes the bbolt database.
type Options struct {
	// NoSync skips fsync after each commit. Only safe when the data can
	// be rebuilt.
	NoSync bool
}

// Store implements kv.Store using bbolt (embedded B+ tree). Read sessions
// are read-only transactions, write sessions are read-write transactions;
// bbolt itself serializes writers.
type Store struct {
	db *bolt.DB
}

// Open creates or opens a bbolt database at the given path.
func Open(path string, opts Options) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{
		Timeout: time.Second,
		NoSync:  opts.NoSync,
		// Read transactions pin the mmap; a large initial mapping keeps a
		// growing writer from waiting on readers to finish.
		InitialMmapSize: 16 << 20,
	})
	if err != nil {
		return nil, fmt.Errorf("opening bolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(dataBucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating bucket: %w", err)
	}
	logger.Info("opened bolt store", "path", path)
	return &Store{db: db}, nil
}

func (s *Store) Read(ctx context.Context) (kv.Read, error) {
	tx, err := kv.Acquire(ctx, func() (*bolt.Tx, error) {
		return s.db.Begin(false)
	}, rollback)
	if err != nil {
		return nil, err
	}
	return &read{tx: tx}, nil
}

func (s *Store) Write(ctx context.Context) (kv.Write, error) {
	tx, err := kv.Acquire(ctx, func() (*bolt.Tx, error) {
		return s.db.Begin(true)
	}, rollback)
	if err != nil {
		return nil, err
	}
	return &write{read{tx: tx}}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func rollback(tx *bolt.Tx) {
	_ = tx.Rollback()
}

type read struct {
	tx *bolt.Tx // nil once released
}

func (r *read) Has(key string) (bool, error) {
	_, ok, err := r.lookup(key)
	return ok, err
}

func (r *read) Get(key string) ([]byte, bool, error) {
	v, ok, err := r.lookup(key)
	if !ok || err != nil {
		return nil, ok, err
	}
	val := make([]byte, len(v))
	copy(val, v)
	return val, true, nil
}

// lookup seeks instead of calling Bucket.Get so an empty value is not
// mistaken for a missing key. v is only valid for the transaction.
func (r *read) lookup(key string) (v []byte, ok bool, err error) {
	if r.tx == nil {
		return nil, false, kv.ErrReleased
	}
	k, v := r.tx.Bucket(dataBucket).Cursor().Seek([]byte(key))
	if k == nil || !bytes.Equal(k, []byte(key)) {
		return nil, false, nil
	}
	return v, true, nil
}

func (r *read) Release() {
	if r.tx == nil {
		return
	}
	rollback(r.tx)
	r.tx = nil
}

type write struct {
	read
}

func (w *write) Put(key string, value []byte) error {
	if w.tx == nil {
		return kv.ErrReleased
	}
	// bbolt keeps a reference to value until commit.
	return w.tx.Bucket(dataBucket).Put([]byte(key), append([]byte{}, value...))
}

func (w *write) Del(key string) error {
	if w.tx == nil {
		return kv.ErrReleased
	}
	return w.tx.Bucket(dataBucket).Delete([]byte(key))
}

func (w *write) Commit() error {
	if w.tx == nil {
		return kv.ErrReleased
	}
	tx := w.tx
	w.tx = nil
	return tx.Commit()
}
