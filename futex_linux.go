//go:build linux

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
	"fmt"
	"sync/atomic"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

// The wait/wake words live in a MAP_SHARED file mapping visible to multiple
// processes, so the non-private futex ops are used throughout.

// Futex op codes from <linux/futex.h>; golang.org/x/sys/unix does not
// export them.
const (
	_FUTEX_WAIT = 0
	_FUTEX_WAKE = 1
)

// futexWaitTimeout parks the caller until the value at addr changes from val,
// a wake arrives, or the timeout elapses. Callers must re-validate their
// logical condition after every return: wakes can be spurious and the value
// comparison only covers the instant of entry.
func futexWaitTimeout(addr *uint32, val uint32, timeout time.Duration) error {
	// Re-check atomically before parking; closes the window where the value
	// changed between the caller's snapshot and the syscall.
	if atomic.LoadUint32(addr) != val {
		return nil
	}
	ts := unix.NsecToTimespec(timeout.Nanoseconds())
	_, _, errno := unix.Syscall6(
		unix.SYS_FUTEX,
		uintptr(unsafe.Pointer(addr)),
		uintptr(_FUTEX_WAIT),
		uintptr(val),
		uintptr(unsafe.Pointer(&ts)),
		0, 0,
	)
	switch errno {
	case 0, unix.EAGAIN, unix.EINTR:
		return nil
	case unix.ETIMEDOUT:
		return ErrWaitTimeout
	default:
		return fmt.Errorf("futex wait: %w", errno)
	}
}

// futexWake wakes up to n waiters parked on addr.
func futexWake(addr *uint32, n int) {
	unix.Syscall6(
		unix.SYS_FUTEX,
		uintptr(unsafe.Pointer(addr)),
		uintptr(_FUTEX_WAKE),
		uintptr(n),
		0, 0, 0,
	)
}
