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

import "sync/atomic"

// controlHeader is the ring's coordination state, mapped at a fixed offset
// into the shared segment. Four uint32 slots describe the two-region layout:
//
//	aStart  read cursor; first unconsumed byte of region A
//	aEnd    write cursor of region A (one past the last written byte)
//	bEnd    write cursor of region B, which always starts at arena offset 0
//	bUse    0/1: whether the writer has switched to appending at the front
//
// Invariants after every commit: 0 <= aStart <= aEnd <= capacity, and while
// bUse is set, 0 <= bEnd <= aStart. All access goes through sync/atomic; the
// sender and receiver each own the slots they store to, except bUse, which
// both sides may store. Racing bUse stores are benign: both compute the same
// value.
//
// The struct layout is a cross-process ABI: explicit padding to 64 bytes,
// never reordered.
type controlHeader struct {
	aStart uint32
	aEnd   uint32
	bEnd   uint32
	bUse   uint32
	_      [48]byte // pad to 64 bytes; reserved
}

const controlHeaderSize = 64

func (h *controlHeader) AStart() uint32 { return atomic.LoadUint32(&h.aStart) }

func (h *controlHeader) SetAStart(v uint32) { atomic.StoreUint32(&h.aStart, v) }

func (h *controlHeader) AEnd() uint32 { return atomic.LoadUint32(&h.aEnd) }

func (h *controlHeader) SetAEnd(v uint32) { atomic.StoreUint32(&h.aEnd, v) }

func (h *controlHeader) BEnd() uint32 { return atomic.LoadUint32(&h.bEnd) }

func (h *controlHeader) SetBEnd(v uint32) { atomic.StoreUint32(&h.bEnd, v) }

func (h *controlHeader) BUse() bool { return atomic.LoadUint32(&h.bUse) != 0 }

func (h *controlHeader) SetBUse(use bool) {
	var v uint32
	if use {
		v = 1
	}
	atomic.StoreUint32(&h.bUse, v)
}

// aStartWord exposes the read-cursor slot for futex wait/wake.
func (h *controlHeader) aStartWord() *uint32 { return &h.aStart }

// aEndWord exposes the region A write-cursor slot for futex wake.
func (h *controlHeader) aEndWord() *uint32 { return &h.aEnd }

// bEndWord exposes the region B write-cursor slot for futex wake.
func (h *controlHeader) bEndWord() *uint32 { return &h.bEnd }

// Free returns the number of bytes currently available to the writer: the
// gap between region B's end and region A's start once the writer has
// switched to the front, otherwise the tail space after region A.
func (h *controlHeader) Free(capacity uint32) uint32 {
	if h.BUse() {
		return h.AStart() - h.BEnd()
	}
	return capacity - h.AEnd()
}

// MaybeSwitch applies the region-switch policy: once the contiguous tail
// space left after region A drops below the space vacated before it, further
// writes target the front of the arena. Called after every successful send
// and receive, by whichever side moved a cursor.
func (h *controlHeader) MaybeSwitch(capacity uint32) {
	aStart := h.AStart()
	aEnd := h.AEnd()
	bEnd := h.BEnd()
	if capacity-aEnd < aStart-bEnd {
		h.SetBUse(true)
	}
}
