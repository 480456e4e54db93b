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

import "encoding/binary"

// Frame wire format:
//
//	uint32 length  // payload length in bytes, native byte order
//	[length]byte   // encoded payload
//
// A frame is the unit handed off between sender and receiver; it is always
// written and read as one contiguous span of the arena.
const framePrefixSize = 4

// appendFrame appends the length prefix and payload to dst.
func appendFrame(dst, payload []byte) []byte {
	dst = binary.NativeEndian.AppendUint32(dst, uint32(len(payload)))
	return append(dst, payload...)
}

// probeFrame reports how a partially filled probe buffer should grow.
//
// Discovery runs in at most two rounds: with fewer than four bytes the length
// prefix itself is needed (need = 4); with the prefix present the full frame
// size is known (need = 4 + length); with the whole frame buffered, payload
// is returned and need is 0.
func probeFrame(buf []byte) (payload []byte, need uint32) {
	if len(buf) < framePrefixSize {
		return nil, framePrefixSize
	}
	total := framePrefixSize + binary.NativeEndian.Uint32(buf)
	if uint32(len(buf)) < total {
		return nil, total
	}
	return buf[framePrefixSize:total], 0
}
