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

// Sender is the write side of a channel. Calls must come from a single
// producer at a time; that discipline is a caller contract, not runtime
// enforced.
type Sender[T any] struct {
	codec    Codec[T]
	seg      *segment
	hdr      *controlHeader
	arena    []byte
	capacity uint32
}

// Send encodes v and appends it to the arena as one frame. It never blocks
// and never partially writes: if the frame does not fit in the current free
// space it fails with ErrInsufficientSpace and leaves all state untouched.
func (s *Sender[T]) Send(v T) error {
	payload, err := s.codec.Encode(v)
	if err != nil {
		return &EncodeError{Err: err}
	}
	return s.SendPayload(payload)
}

// SendPayload sends an already encoded payload, skipping the codec. Useful
// with BytesCodec-style channels and for forwarding.
func (s *Sender[T]) SendPayload(payload []byte) error {
	if s.seg.closed() {
		return ErrChannelClosed
	}
	if uint64(framePrefixSize)+uint64(len(payload)) > uint64(s.capacity) {
		// Can never fit, regardless of ring state.
		return ErrInsufficientSpace
	}
	frame := appendFrame(make([]byte, 0, framePrefixSize+len(payload)), payload)
	flen := uint32(len(frame))

	hdr := s.hdr
	if hdr.Free(s.capacity) < flen {
		return ErrInsufficientSpace
	}

	// The active write region always has at least Free() contiguous bytes at
	// its cursor: with bUse set the span runs up to aStart, otherwise up to
	// the end of the arena. The copy below therefore never wraps mid-frame.
	if hdr.BUse() {
		end := hdr.BEnd()
		copy(s.arena[end:], frame)
		hdr.SetBEnd(end + flen)
		futexWake(hdr.bEndWord(), 1)
	} else {
		end := hdr.AEnd()
		copy(s.arena[end:], frame)
		hdr.SetAEnd(end + flen)
		futexWake(hdr.aEndWord(), 1)
	}
	// The receiver parks on the read-cursor slot; wake it there too.
	futexWake(hdr.aStartWord(), 1)

	hdr.MaybeSwitch(s.capacity)
	return nil
}

// Free reports the bytes currently available to the writer. Advisory only:
// the receiver may free more space at any moment.
func (s *Sender[T]) Free() uint32 {
	return s.hdr.Free(s.capacity)
}
