package leveldb

import (
	"context"
	"errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"

	"dagstore/internal/kv"
	"dagstore/internal/logging"
)

var (
	_ kv.Store = (*Store)(nil)

	logger = logging.For("kv/leveldb")

	readOpt  = opt.ReadOptions{}
	writeOpt = opt.WriteOptions{}
)

// Options tunes the leveldb database.
type Options struct {
	NoSync bool
}

// Store implements kv.Store on goleveldb. Read sessions are snapshots;
// write sessions are leveldb transactions, of which goleveldb allows only
// one at a time.
type Store struct {
	db *leveldb.DB
}

// Open creates or opens a leveldb database in dir.
func Open(dir string, opts Options) (*Store, error) {
	db, err := leveldb.OpenFile(dir, &opt.Options{NoSync: opts.NoSync})
	if err != nil {
		return nil, fmt.Errorf("opening leveldb: %w", err)
	}
	logger.Info("opened leveldb store", "dir", dir)
	return &Store{db: db}, nil
}

func (s *Store) Read(ctx context.Context) (kv.Read, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	snap, err := s.db.GetSnapshot()
	if err != nil {
		return nil, err
	}
	return &read{snap: snap}, nil
}

func (s *Store) Write(ctx context.Context) (kv.Write, error) {
	tr, err := kv.Acquire(ctx, s.db.OpenTransaction, (*leveldb.Transaction).Discard)
	if err != nil {
		return nil, err
	}
	return &write{tr: tr}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// getter is satisfied by both *leveldb.Snapshot and *leveldb.Transaction.
type getter interface {
	Get(key []byte, ro *opt.ReadOptions) ([]byte, error)
	Has(key []byte, ro *opt.ReadOptions) (bool, error)
}

func get(g getter, key string) ([]byte, bool, error) {
	v, err := g.Get([]byte(key), &readOpt)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if v == nil {
		v = []byte{}
	}
	return v, true, nil
}

type read struct {
	snap *leveldb.Snapshot // nil once released
}

func (r *read) Has(key string) (bool, error) {
	if r.snap == nil {
		return false, kv.ErrReleased
	}
	return r.snap.Has([]byte(key), &readOpt)
}

func (r *read) Get(key string) ([]byte, bool, error) {
	if r.snap == nil {
		return nil, false, kv.ErrReleased
	}
	return get(r.snap, key)
}

func (r *read) Release() {
	if r.snap == nil {
		return
	}
	r.snap.Release()
	r.snap = nil
}

type write struct {
	tr *leveldb.Transaction // nil once committed or released
}

func (w *write) Has(key string) (bool, error) {
	if w.tr == nil {
		return false, kv.ErrReleased
	}
	return w.tr.Has([]byte(key), &readOpt)
}

func (w *write) Get(key string) ([]byte, bool, error) {
	if w.tr == nil {
		return nil, false, kv.ErrReleased
	}
	return get(w.tr, key)
}

func (w *write) Put(key string, value []byte) error {
	if w.tr == nil {
		return kv.ErrReleased
	}
	return w.tr.Put([]byte(key), value, &writeOpt)
}

func (w *write) Del(key string) error {
	if w.tr == nil {
		return kv.ErrReleased
	}
	return w.tr.Delete([]byte(key), &writeOpt)
}

func (w *write) Commit() error {
	if w.tr == nil {
		return kv.ErrReleased
	}
	tr := w.tr
	w.tr = nil
	if err := tr.Commit(); err != nil {
		tr.Discard()
		return err
	}
	return nil
}

func (w *write) Release() {
	if w.tr == nil {
		return
	}
	w.tr.Discard()
	w.tr = nil
}
