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

// Package shmchan implements a single-producer/single-consumer message
// channel backed by a raw shared memory segment.
//
// The two endpoints of a channel may live in separate processes that share
// nothing but the mapped segment: coordination happens exclusively through a
// small header of atomically accessed integers, using futex wait/wake for
// blocking receives. No mutex, OS condition variable, or shared Go runtime is
// required or assumed.
//
// Messages are variable-length byte frames carried through a fixed-capacity
// arena organized as a two-region ring: the writer appends to an active
// region and, when the tail runs short of contiguous space, switches to
// filling the vacated front of the arena. A frame is never split across the
// wrap boundary, so every read is a single contiguous copy.
//
// Send never blocks; it fails with ErrInsufficientSpace when the frame does
// not fit, leaving backpressure to the caller. Receive is a non-blocking poll
// or a bounded timed wait. Exactly one Sender and one Receiver exist per
// channel, enforced by the one-shot Split.
package shmchan
