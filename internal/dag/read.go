package dag

import (
	"errors"
	"fmt"

	"dagstore/internal/kv"
)

var ErrEmptyHeadName = errors.New("dag: empty head name")

// reader holds the queries shared by Read and Write handles.
type reader struct {
	kv       kv.Read
	id       string
	done     func() // returns the Store permit
	released bool
}

func (r *reader) HasChunk(h Hash) (bool, error) {
	if r.released {
		return false, kv.ErrReleased
	}
	return r.kv.Has(chunkDataKey(h))
}

// GetChunk loads a chunk. ok is false when it is not stored.
func (r *reader) GetChunk(h Hash) (c Chunk, ok bool, err error) {
	if r.released {
		return Chunk{}, false, kv.ErrReleased
	}
	data, ok, err := r.kv.Get(chunkDataKey(h))
	if err != nil || !ok {
		return Chunk{}, false, err
	}
	rawMeta, hasMeta, err := r.kv.Get(chunkMetaKey(h))
	if err != nil {
		return Chunk{}, false, err
	}
	var refs []Hash
	if hasMeta {
		refs, err = decodeMeta(rawMeta)
		if err != nil {
			return Chunk{}, false, fmt.Errorf("chunk %s: %w", h, err)
		}
	}
	return ReadChunk(h, data, refs), true, nil
}

// GetHead returns the hash a head points at. ok is false when the head
// is not set.
func (r *reader) GetHead(name string) (h Hash, ok bool, err error) {
	if r.released {
		return "", false, kv.ErrReleased
	}
	if name == "" {
		return "", false, ErrEmptyHeadName
	}
	v, ok, err := r.kv.Get(headKey(name))
	if err != nil || !ok {
		return "", false, err
	}
	h, err = ParseHash(string(v))
	if err != nil {
		return "", false, fmt.Errorf("head %q: %w", name, err)
	}
	return h, true, nil
}

// ID identifies the handle in logs.
func (r *reader) ID() string {
	return r.id
}

func (r *reader) release() {
	if r.released {
		return
	}
	r.released = true
	r.kv.Release()
	if r.done != nil {
		r.done()
	}
}

// Read is a read-only view of the DAG. It is not safe for concurrent use;
// open one handle per goroutine.
type Read struct {
	reader
}

func newRead(session kv.Read) *Read {
	return &Read{reader{kv: session, id: newHandleID()}}
}

// Session returns the backend session this handle wraps.
func (r *Read) Session() kv.Read {
	return r.kv
}

// Release ends the backend session and lets writers in. Safe to call more
// than once.
func (r *Read) Release() {
	if !r.released {
		logger.Debug("read handle released", "handle", r.id)
	}
	r.release()
}
