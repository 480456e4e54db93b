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

// Handle is the transferable form of a channel: enough to re-map the same
// segment from another process. How the handle travels (pipe, exec argument,
// unix socket, ...) is up to the application.
type Handle struct {
	Path string
}

// Channel is one mapped view of a shared channel segment. Split it exactly
// once to obtain the Sender/Receiver pair; additional views over the same
// segment are created by passing the Handle to Open elsewhere.
type Channel[T any] struct {
	seg   *segment
	codec Codec[T]
	split atomic.Bool
}

// New allocates a fresh arena of capacityBytes and its control header, both
// zeroed, backed by a uniquely named segment file.
func New[T any](capacityBytes uint32, codec Codec[T]) (*Channel[T], error) {
	seg, err := createSegment(capacityBytes)
	if err != nil {
		return nil, err
	}
	return &Channel[T]{seg: seg, codec: codec}, nil
}

// Open reconstructs a channel view from an exported handle. The new view
// aliases the same arena and header; nothing is copied.
func Open[T any](h Handle, codec Codec[T]) (*Channel[T], error) {
	seg, err := openSegment(h.Path)
	if err != nil {
		return nil, err
	}
	return &Channel[T]{seg: seg, codec: codec}, nil
}

// Handle exports the channel in a form passable to another process.
func (c *Channel[T]) Handle() Handle {
	return Handle{Path: c.seg.path}
}

// Capacity returns the arena size in bytes, fixed for the channel lifetime.
func (c *Channel[T]) Capacity() uint32 {
	return c.seg.header().Capacity()
}

// Split hands out the channel's Sender and Receiver. It succeeds exactly once
// per Channel value; a second call fails with ErrSenderTaken so the
// one-producer/one-consumer discipline cannot be broken by construction.
func (c *Channel[T]) Split() (*Sender[T], *Receiver[T], error) {
	if c.seg.closed() {
		return nil, nil, ErrChannelClosed
	}
	if !c.split.CompareAndSwap(false, true) {
		return nil, nil, ErrSenderTaken
	}
	capacity := c.seg.header().Capacity()
	s := &Sender[T]{
		codec:    c.codec,
		seg:      c.seg,
		hdr:      c.seg.control(),
		arena:    c.seg.arena(),
		capacity: capacity,
	}
	r := &Receiver[T]{
		codec:    c.codec,
		seg:      c.seg,
		hdr:      c.seg.control(),
		arena:    c.seg.arena(),
		capacity: capacity,
	}
	return s, r, nil
}

// Close unmaps this view of the segment. Handles in other processes are
// unaffected; further operations through this view (and its Sender/Receiver)
// fail with ErrChannelClosed.
func (c *Channel[T]) Close() error {
	return c.seg.close()
}

// Unlink removes the segment's backing file. Call from the creating side
// once every peer has opened its handle; existing mappings keep working.
func (c *Channel[T]) Unlink() error {
	return c.seg.unlink()
}
