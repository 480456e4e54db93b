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

import "errors"

// ErrInsufficientSpace indicates that the arena does not currently hold
// enough free space for the encoded frame. Send is all-or-nothing: nothing
// was written. This is a flow-control signal, not a transient fault; the
// caller decides when to retry.
var ErrInsufficientSpace = errors.New("shmchan: insufficient space")

// ErrSenderTaken indicates that Split was already called on this channel.
// Exactly one Sender/Receiver pair may exist per channel instance.
var ErrSenderTaken = errors.New("shmchan: sender already taken")

// ErrChannelClosed indicates an operation on a channel whose segment has been
// unmapped.
var ErrChannelClosed = errors.New("shmchan: channel closed")

// ErrWaitTimeout is returned by the wait primitive when the timeout elapses
// before a wake. Receive translates it into a "no message" result; it never
// escapes to callers of Recv.
var ErrWaitTimeout = errors.New("shmchan: wait timeout")

// EncodeError wraps a codec failure while encoding a value for Send.
type EncodeError struct {
	Err error
}

func (e *EncodeError) Error() string { return "shmchan: encode: " + e.Err.Error() }

func (e *EncodeError) Unwrap() error { return e.Err }

// DecodeError wraps a codec failure while decoding a frame pulled out of the
// arena. The receiver has already advanced past the offending frame when this
// is returned; see Receiver.Recv.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string { return "shmchan: decode: " + e.Err.Error() }

func (e *DecodeError) Unwrap() error { return e.Err }
