//go:build !linux

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
	"sync/atomic"
	"time"
)

// Platforms without a cross-process futex approximate the wait with a
// short-interval poll. Every interval expiry reads as a spurious wake, which
// the receive loop already tolerates by re-validating availability; wake
// latency is bounded by the interval instead of being immediate.

const pollInterval = time.Millisecond

func futexWaitTimeout(addr *uint32, val uint32, timeout time.Duration) error {
	if atomic.LoadUint32(addr) != val {
		return nil
	}
	if timeout <= 0 {
		return ErrWaitTimeout
	}
	d := pollInterval
	if timeout < d {
		d = timeout
	}
	time.Sleep(d)
	if atomic.LoadUint32(addr) != val {
		return nil
	}
	if timeout <= d {
		return ErrWaitTimeout
	}
	// Spurious wake; the caller re-validates and comes back with the
	// remaining timeout.
	return nil
}

func futexWake(addr *uint32, n int) {
	// No parked waiters to wake; pollers notice on their next interval.
}
