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

import "testing"

// byteFrameSize is the arena footprint of a single-byte payload.
const byteFrameSize = framePrefixSize + 1

// newByteChannel creates a raw-bytes channel of the given capacity and
// splits it, registering cleanup.
func newByteChannel(t *testing.T, capacity uint32) (*Sender[[]byte], *Receiver[[]byte]) {
	t.Helper()
	ch, err := New[[]byte](capacity, BytesCodec{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() {
		ch.Unlink()
		ch.Close()
	})
	tx, rx, err := ch.Split()
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	return tx, rx
}

// sendByte sends a one-byte payload, failing the test on error.
func sendByte(t *testing.T, tx *Sender[[]byte], b byte) {
	t.Helper()
	if err := tx.Send([]byte{b}); err != nil {
		t.Fatalf("Send(%d) failed: %v", b, err)
	}
}

// pollByte polls one message and asserts its single-byte payload.
func pollByte(t *testing.T, rx *Receiver[[]byte], want byte) {
	t.Helper()
	got, ok, err := rx.Poll()
	if err != nil {
		t.Fatalf("Poll failed: %v", err)
	}
	if !ok {
		t.Fatalf("Poll returned no message, want %d", want)
	}
	if len(got) != 1 || got[0] != want {
		t.Fatalf("Poll returned %v, want [%d]", got, want)
	}
}
