package kv

import "context"

// Acquire calls open, which may block on locks or I/O, and waits for it or
// for ctx to be done. If ctx wins, a session that open produces later is
// handed to release, so nothing escapes a cancelled caller.
func Acquire[S any](ctx context.Context, open func() (S, error), release func(S)) (S, error) {
	var zero S
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	type result struct {
		s   S
		err error
	}
	ch := make(chan result, 1)
	go func() {
		s, err := open()
		ch <- result{s, err}
	}()

	select {
	case r := <-ch:
		return r.s, r.err
	case <-ctx.Done():
		go func() {
			if r := <-ch; r.err == nil {
				release(r.s)
			}
		}()
		return zero, ctx.Err()
	}
}
