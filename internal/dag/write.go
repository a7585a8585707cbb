package dag

import "dagstore/internal/kv"

// Write is an exclusive, read-your-writes view of the DAG. Changes are
// applied only by Commit; Release without Commit discards them.
type Write struct {
	reader
	session kv.Write
}

func newWrite(session kv.Write) *Write {
	return &Write{
		reader:  reader{kv: session, id: newHandleID()},
		session: session,
	}
}

// Session returns the backend session this handle wraps.
func (w *Write) Session() kv.Write {
	return w.session
}

// PutChunk stores c. The meta entry is skipped when c has no refs.
func (w *Write) PutChunk(c Chunk) error {
	if w.released {
		return kv.ErrReleased
	}
	if err := c.Hash.valid(); err != nil {
		return err
	}
	for _, ref := range c.Meta {
		if err := ref.valid(); err != nil {
			return err
		}
	}
	if err := w.session.Put(chunkDataKey(c.Hash), c.Data); err != nil {
		return err
	}
	if len(c.Meta) == 0 {
		return nil
	}
	return w.session.Put(chunkMetaKey(c.Hash), encodeMeta(c.Meta))
}

// SetHead points the named head at h.
func (w *Write) SetHead(name string, h Hash) error {
	if w.released {
		return kv.ErrReleased
	}
	if name == "" {
		return ErrEmptyHeadName
	}
	if err := h.valid(); err != nil {
		return err
	}
	return w.session.Put(headKey(name), []byte(h))
}

// RemoveHead deletes the named head. Removing an unset head is not an
// error.
func (w *Write) RemoveHead(name string) error {
	if w.released {
		return kv.ErrReleased
	}
	if name == "" {
		return ErrEmptyHeadName
	}
	return w.session.Del(headKey(name))
}

// Commit applies the changes and releases the handle. The handle is
// released even when the backend commit fails.
func (w *Write) Commit() error {
	if w.released {
		return kv.ErrReleased
	}
	err := w.session.Commit()
	if err != nil {
		logger.Warn("commit failed", "handle", w.id, "err", err)
	} else {
		logger.Debug("write handle committed", "handle", w.id)
	}
	w.release()
	return err
}

// Release discards uncommitted changes and lets other handles in. Safe
// to call more than once, and a no-op after Commit.
func (w *Write) Release() {
	if !w.released {
		logger.Debug("write handle released", "handle", w.id)
	}
	w.release()
}
