package engine

import (
	"context"
	"errors"
	"time"
)

// pollPeriod bounds each individual transport call so the audio/USB
// goroutine can re-check status between attempts. The original engine
// blocks indefinitely on zero-timeout USB transfers and relies on a
// callback thread to observe status changes; translated to a synchronous
// Go poll loop per the "single state machine driven by a poll loop"
// guidance, a bounded wait substitutes for that callback wakeup.
const pollPeriod = 50 * time.Millisecond

// pollRead repeatedly attempts read until it succeeds, the engine's status
// drops below WAIT, or a non-timeout error occurs. ok is false only when
// the read was abandoned because of a status drop, never on a timeout. Used
// by the audio pipelines, which must wait for their next transfer rather
// than treat a timeout as a completion; pumpMIDIIn uses pollReadOnce
// instead, since an idle MIDI-in endpoint must not block its neighbours.
func (e *Engine) pollRead(ctx context.Context, read func(context.Context, []byte) (int, error), buf []byte) (n int, ok bool, err error) {
	for {
		if e.Status() < StatusWait {
			return 0, false, nil
		}
		rctx, cancel := context.WithTimeout(ctx, pollPeriod)
		n, err = read(rctx, buf)
		cancel()
		if err == nil {
			return n, true, nil
		}
		if errors.Is(err, context.DeadlineExceeded) {
			continue
		}
		return 0, false, err
	}
}

// pollReadOnce attempts read exactly once, bounded by pollPeriod. A timeout
// is reported as an empty, successful completion (ok=true, n=0) rather than
// retried: an idle MIDI-in endpoint timing out is the normal, silent case,
// and retrying here would starve the other three pipelines sharing this
// goroutine. ok is false only when the read was abandoned because of a
// status drop.
func (e *Engine) pollReadOnce(ctx context.Context, read func(context.Context, []byte) (int, error), buf []byte) (n int, ok bool, err error) {
	if e.Status() < StatusWait {
		return 0, false, nil
	}
	rctx, cancel := context.WithTimeout(ctx, pollPeriod)
	n, err = read(rctx, buf)
	cancel()
	if err == nil {
		return n, true, nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return 0, true, nil
	}
	return 0, false, err
}

// pollWrite is pollRead's write-side counterpart.
func (e *Engine) pollWrite(ctx context.Context, write func(context.Context, []byte) (int, error), buf []byte) (ok bool, err error) {
	for {
		if e.Status() < StatusWait {
			return false, nil
		}
		wctx, cancel := context.WithTimeout(ctx, pollPeriod)
		_, err = write(wctx, buf)
		cancel()
		if err == nil {
			return true, nil
		}
		if errors.Is(err, context.DeadlineExceeded) {
			continue
		}
		return false, err
	}
}
