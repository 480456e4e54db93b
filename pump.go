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
	"sync"
	"time"

	"github.com/eapache/queue"
)

// Pump drains a Receiver in the background and republishes messages on an
// ordinary Go channel, for applications that want select-based consumption
// instead of a recv loop. An unbounded in-process buffer decouples the
// shared ring (which must be drained promptly to keep the sender unblocked)
// from a slow consumer of Out.
//
// The Pump owns the Receiver from Start until Stop; no other caller may use
// it concurrently.
type Pump[T any] struct {
	rx  *Receiver[T]
	out chan T

	mu     sync.Mutex
	buf    *queue.Queue
	err    error
	notify chan struct{}

	stopOnce sync.Once
	stop     chan struct{}
	drained  chan struct{}
	done     chan struct{}
}

// pumpRecvTimeout bounds each blocking receive so the drain goroutine
// notices Stop reasonably quickly.
const pumpRecvTimeout = 50 * time.Millisecond

// NewPump starts draining rx. Messages appear on Out in receive order.
func NewPump[T any](rx *Receiver[T]) *Pump[T] {
	p := &Pump[T]{
		rx:      rx,
		out:     make(chan T),
		buf:     queue.New(),
		notify:  make(chan struct{}, 1),
		stop:    make(chan struct{}),
		drained: make(chan struct{}),
		done:    make(chan struct{}),
	}
	go p.drain()
	go p.forward()
	return p
}

// Out delivers drained messages. It is closed after Stop, or when the drain
// loop hits a receive error (see Err).
func (p *Pump[T]) Out() <-chan T {
	return p.out
}

// Err returns the error that terminated the drain loop, if any. Valid once
// Out is closed.
func (p *Pump[T]) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// Stop halts both goroutines and closes Out. It returns only after the drain
// loop has released the Receiver, so the caller may resume using it directly.
// Buffered but undelivered messages are dropped; the shared ring itself is
// left intact.
func (p *Pump[T]) Stop() {
	p.stopOnce.Do(func() { close(p.stop) })
	<-p.drained
	<-p.done
}

func (p *Pump[T]) drain() {
	defer close(p.drained)
	for {
		select {
		case <-p.stop:
			return
		default:
		}
		v, ok, err := p.rx.Recv(pumpRecvTimeout)
		if err != nil {
			p.mu.Lock()
			p.err = err
			p.mu.Unlock()
			// Wake the forwarder so it can observe the error and finish.
			select {
			case p.notify <- struct{}{}:
			default:
			}
			return
		}
		if !ok {
			continue
		}
		p.mu.Lock()
		p.buf.Add(v)
		p.mu.Unlock()
		select {
		case p.notify <- struct{}{}:
		default:
		}
	}
}

func (p *Pump[T]) forward() {
	defer close(p.done)
	defer close(p.out)
	for {
		p.mu.Lock()
		if p.buf.Length() == 0 {
			failed := p.err != nil
			p.mu.Unlock()
			if failed {
				return
			}
			select {
			case <-p.notify:
				continue
			case <-p.stop:
				return
			}
		}
		v := p.buf.Remove().(T)
		p.mu.Unlock()
		select {
		case p.out <- v:
		case <-p.stop:
			return
		}
	}
}
