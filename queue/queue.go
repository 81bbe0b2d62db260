/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package queue is the bounded single-producer/single-consumer FIFO that
// crosses every thread boundary in this library: the TCP channel's
// outbound send queue and the UDP channel's control-event queue both use
// it. Capacity is fixed at construction — no growth, no unbounded memory,
// matching the source's fixed-slot ring.
//
// Ring Buffer Layout:
//
//	┌──────────────────────────────────────────────┐
//	│ items[0] │ items[1] │  ...  │ items[cap-1]    │
//	└──────────────────────────────────────────────┘
//	     ↑                           ↑
//	    head (oldest, next Pop)   (head+count-1)%cap = tail (newest)
package queue

import (
	"sync"

	"github.com/SSEDev/OrientalExpress/stepcode"
)

// Queue is a fixed-capacity FIFO safe for one producer and one consumer
// calling concurrently. Multiple producers are also safe (guarded by mu);
// the "single producer" in the name describes the library's usage, not a
// lock-free requirement.
type Queue[T any] struct {
	mu    sync.Mutex
	items []T
	head  int
	count int
}

// New returns a Queue with room for exactly capacity items.
func New[T any](capacity int) *Queue[T] {
	return &Queue[T]{items: make([]T, capacity)}
}

// Push enqueues item, failing with stepcode.BufferOverflow if the queue is
// full (§4.5: "Overflow (queue full) is an error returned to the
// producer").
func (q *Queue[T]) Push(item T) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.count == len(q.items) {
		return stepcode.New(stepcode.BufferOverflow, "queue full: capacity %d", len(q.items))
	}
	tail := (q.head + q.count) % len(q.items)
	q.items[tail] = item
	q.count++
	return nil
}

// Pop removes and returns the oldest item. ok is false if the queue was
// empty.
func (q *Queue[T]) Pop() (item T, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.count == 0 {
		return item, false
	}
	item = q.items[q.head]
	var zero T
	q.items[q.head] = zero
	q.head = (q.head + 1) % len(q.items)
	q.count--
	return item, true
}

// DrainAll removes and discards every pending item, returning how many
// were dropped. Used on reconnect (§4.5: "empties the send queue (pending
// items are dropped with their memory freed)").
func (q *Queue[T]) DrainAll() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := q.count
	var zero T
	for i := 0; i < len(q.items); i++ {
		q.items[i] = zero
	}
	q.head, q.count = 0, 0
	return n
}

// Len reports the number of items currently queued.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count
}
