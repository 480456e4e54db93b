/*
 * Copyright 2025 The shmchan Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package shmchan

import (
	"context"
	"errors"
	"time"
)

// Receiver is the read side of a channel. Calls must come from a single
// consumer at a time.
type Receiver[T any] struct {
	codec    Codec[T]
	seg      *segment
	hdr      *controlHeader
	arena    []byte
	capacity uint32
}

// Poll returns the next message if one is complete in the arena, without
// ever blocking. ok is false when no message is ready; that is a normal
// outcome, not an error.
func (r *Receiver[T]) Poll() (T, bool, error) {
	return r.recv(time.Time{})
}

// Recv returns the next message, waiting up to timeout for one to arrive.
// A non-positive timeout degenerates to Poll. On timeout expiry ok is false
// and err is nil: "no message within the deadline" is a normal outcome.
//
// The wait parks on the read-cursor slot via the futex primitive and
// re-validates availability after every wake, so spurious and early wakes
// are harmless.
func (r *Receiver[T]) Recv(timeout time.Duration) (T, bool, error) {
	if timeout <= 0 {
		return r.recv(time.Time{})
	}
	return r.recv(time.Now().Add(timeout))
}

// RecvContext is Recv driven by a context deadline. Unlike Recv, expiry
// surfaces as the context's error so callers can tell cancellation apart
// from an application-level timeout policy. Without a deadline it waits
// until a message arrives or ctx is canceled.
func (r *Receiver[T]) RecvContext(ctx context.Context) (T, bool, error) {
	var zero T
	for {
		if err := ctx.Err(); err != nil {
			return zero, false, err
		}
		wait := 100 * time.Millisecond
		if deadline, ok := ctx.Deadline(); ok {
			remaining := time.Until(deadline)
			if remaining <= 0 {
				return zero, false, context.DeadlineExceeded
			}
			if remaining < wait {
				wait = remaining
			}
		}
		v, ok, err := r.recv(time.Now().Add(wait))
		if ok || err != nil {
			return v, ok, err
		}
	}
}

// recv implements the staged read. A zero deadline means non-blocking.
//
// The probe buffer grows through the frame discovery protocol: first the
// 4-byte length prefix, then the full frame. Bytes are copied out of the
// arena without touching the header; the new cursor state (including a
// drain-swap or empty-rewind) is computed locally and committed in one pass
// only once the probe holds a complete frame. An incomplete round therefore
// leaves the ring untouched and re-reads from the same cursor.
func (r *Receiver[T]) recv(deadline time.Time) (T, bool, error) {
	var zero T
	if r.seg.closed() {
		return zero, false, ErrChannelClosed
	}
	hdr := r.hdr
	var probe []byte
	for {
		payload, need := probeFrame(probe)
		if need == 0 {
			// Cursors were committed when the frame completed; a decode
			// failure past this point does not wedge the ring on the same
			// bytes forever.
			v, err := r.codec.Decode(payload)
			if err != nil {
				return zero, false, &DecodeError{Err: err}
			}
			return v, true, nil
		}

		aStart := hdr.AStart()
		aEnd := hdr.AEnd()
		for aEnd-aStart < need {
			if deadline.IsZero() {
				return zero, false, nil
			}
			remaining := time.Until(deadline)
			if remaining <= 0 {
				return zero, false, nil
			}
			err := futexWaitTimeout(hdr.aStartWord(), aStart, remaining)
			if errors.Is(err, ErrWaitTimeout) {
				return zero, false, nil
			}
			if err != nil {
				return zero, false, err
			}
			aStart = hdr.AStart()
			aEnd = hdr.AEnd()
		}

		buf := make([]byte, need)
		copy(buf, r.arena[aStart:aStart+need])

		// Provisional state: advance past the copied bytes; on a full drain
		// either promote region B (drain-swap) or rewind the empty ring.
		newAStart := aStart + need
		newAEnd := aEnd
		bEnd := hdr.BEnd()
		bUse := hdr.BUse()
		if newAStart == newAEnd {
			if bUse {
				newAStart, newAEnd, bEnd, bUse = 0, bEnd, 0, false
			} else {
				newAStart, newAEnd = 0, 0
			}
		}

		if _, more := probeFrame(buf); more == 0 {
			hdr.SetBUse(bUse)
			hdr.SetAStart(newAStart)
			hdr.SetAEnd(newAEnd)
			hdr.SetBEnd(bEnd)
			hdr.MaybeSwitch(r.capacity)
		}
		probe = buf
	}
}

// Pending reports the bytes currently unconsumed in region A. Advisory only.
func (r *Receiver[T]) Pending() uint32 {
	return r.hdr.AEnd() - r.hdr.AStart()
}
