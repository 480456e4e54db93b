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
	"os"
	"sync/atomic"
	"unsafe"
)

// Memory layout constants.
const (
	// Magic bytes identifying a channel segment.
	segmentMagic = "SHMCHAN\x00"

	// SegmentVersion is the current on-disk layout version.
	SegmentVersion = uint32(1)

	// Segment header size (aligned to 64 bytes).
	segmentHeaderSize = 64

	// arenaOffset is where frame data begins: segment header, then control
	// header, then the arena.
	arenaOffset = segmentHeaderSize + controlHeaderSize

	// MinCapacity is the smallest useful arena: one empty frame.
	MinCapacity = framePrefixSize

	// DefaultCapacity is a reasonable arena size for small-message traffic.
	DefaultCapacity = 64 * 1024
)

// segmentHeader sits at offset 0 of the mapped file. Like controlHeader, its
// layout is a cross-process ABI padded to 64 bytes.
type segmentHeader struct {
	magic    [8]byte // "SHMCHAN\0"
	version  uint32
	capacity uint32   // arena bytes, exact (no rounding)
	_        [48]byte // reserved
}

func (h *segmentHeader) Version() uint32 { return atomic.LoadUint32(&h.version) }

func (h *segmentHeader) SetVersion(v uint32) { atomic.StoreUint32(&h.version, v) }

func (h *segmentHeader) Capacity() uint32 { return atomic.LoadUint32(&h.capacity) }

func (h *segmentHeader) SetCapacity(c uint32) { atomic.StoreUint32(&h.capacity, c) }

// segment is one mapped channel file: header views plus the arena bytes.
type segment struct {
	file *os.File
	mem  []byte
	path string
}

// closed reports whether this view has been unmapped. The arena and header
// pointers handed out earlier dangle once that happens, so operations check
// this before touching them.
func (s *segment) closed() bool {
	return s.mem == nil
}

func (s *segment) header() *segmentHeader {
	return (*segmentHeader)(unsafe.Pointer(&s.mem[0]))
}

func (s *segment) control() *controlHeader {
	return (*controlHeader)(unsafe.Pointer(&s.mem[segmentHeaderSize]))
}

func (s *segment) arena() []byte {
	return s.mem[arenaOffset : arenaOffset+int(s.header().Capacity())]
}

// validateSegmentHeader checks magic, version, and that the mapping is large
// enough for the declared arena.
func validateSegmentHeader(mem []byte) error {
	if len(mem) < arenaOffset {
		return fmt.Errorf("segment too small: %d bytes", len(mem))
	}
	hdr := (*segmentHeader)(unsafe.Pointer(&mem[0]))
	if string(hdr.magic[:]) != segmentMagic {
		return fmt.Errorf("bad segment magic %q", hdr.magic[:])
	}
	if v := hdr.Version(); v != SegmentVersion {
		return fmt.Errorf("unsupported segment version %d", v)
	}
	if need := arenaOffset + int(hdr.Capacity()); len(mem) < need {
		return fmt.Errorf("segment truncated: have %d bytes, layout needs %d", len(mem), need)
	}
	return nil
}
