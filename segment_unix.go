//go:build unix

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
	"path/filepath"
	"sync/atomic"
	"time"

	"golang.org/x/sys/unix"
)

var segmentSeq atomic.Uint32

// createSegment allocates a fresh channel file, maps it, and writes the
// segment header. The control header and arena start zeroed courtesy of
// Truncate.
func createSegment(capacity uint32) (*segment, error) {
	if capacity < MinCapacity {
		return nil, fmt.Errorf("capacity %d below minimum %d", capacity, MinCapacity)
	}
	name := fmt.Sprintf("%d-%d-%d", os.Getpid(), time.Now().UnixNano(), segmentSeq.Add(1))
	path := segmentPath(name)

	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0600)
	if err != nil {
		return nil, fmt.Errorf("create segment %s: %w", path, err)
	}
	cleanup := func() {
		file.Close()
		os.Remove(path)
	}

	size := int64(arenaOffset) + int64(capacity)
	if err := file.Truncate(size); err != nil {
		cleanup()
		return nil, fmt.Errorf("resize segment: %w", err)
	}

	mem, err := unix.Mmap(int(file.Fd()), 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("mmap segment: %w", err)
	}

	seg := &segment{file: file, mem: mem, path: path}
	hdr := seg.header()
	copy(hdr.magic[:], segmentMagic)
	hdr.SetVersion(SegmentVersion)
	hdr.SetCapacity(capacity)
	return seg, nil
}

// openSegment maps an existing channel file, validating its header.
func openSegment(path string) (*segment, error) {
	file, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("open segment %s: %w", path, err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("stat segment: %w", err)
	}
	mem, err := unix.Mmap(int(file.Fd()), 0, int(info.Size()), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("mmap segment: %w", err)
	}
	if err := validateSegmentHeader(mem); err != nil {
		unix.Munmap(mem)
		file.Close()
		return nil, err
	}
	return &segment{file: file, mem: mem, path: path}, nil
}

// close unmaps the segment and closes the backing file. The file itself
// survives so that other handles keep working; see unlink.
func (s *segment) close() error {
	if s.mem == nil {
		return nil
	}
	err := unix.Munmap(s.mem)
	s.mem = nil
	if cerr := s.file.Close(); err == nil {
		err = cerr
	}
	return err
}

// unlink removes the backing file. Existing mappings stay valid; new opens
// fail. Typically the creating side unlinks once every peer has imported.
func (s *segment) unlink() error {
	return os.Remove(s.path)
}

// segmentPath places channel files in /dev/shm when available (RAM-backed on
// Linux), falling back to the system temp directory.
func segmentPath(name string) string {
	if info, err := os.Stat("/dev/shm"); err == nil && info.IsDir() {
		return filepath.Join("/dev/shm", "shmchan-"+name)
	}
	return filepath.Join(os.TempDir(), "shmchan-"+name)
}
