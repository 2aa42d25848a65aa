/**
 * Copyright (c) 2019, The Artemis Authors.
 *
 * Permission to use, copy, modify, and/or distribute this software for any
 * purpose with or without fee is hereby granted, provided that the above
 * copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES
 * WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF
 * MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR
 * ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES
 * WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN
 * ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF
 * OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package handler

import (
	"errors"
	"sync"

	"github.com/graphql-go/graphql/language/ast"
	"github.com/willf/bitset"
)

// OperationCache keeps documents that have been parsed and validated against the schema so that a
// repeated query skips both steps.
type OperationCache interface {
	// Get looks up the document for the given query.
	Get(query string) (document *ast.Document, ok bool)

	// Add stores the document parsed from query.
	Add(query string, document *ast.Document)
}

// nilSlot marks the end of the eviction list.
const nilSlot = -1

// lruSlot is one entry of the cache. Slots are linked by index in most-recently-used order.
type lruSlot struct {
	query      string
	document   *ast.Document
	prev, next int
}

// lruSlots is a fixed pool of slots. The bits of used mark the slots in use.
type lruSlots struct {
	slots []lruSlot
	used  *bitset.BitSet

	// Most and least recently used slots
	head, tail int
}

func newLRUSlots(size uint) *lruSlots {
	return &lruSlots{
		slots: make([]lruSlot, size),
		used:  bitset.New(size),
		head:  nilSlot,
		tail:  nilSlot,
	}
}

// Full returns true if every slot is in use.
func (s *lruSlots) Full() bool {
	return s.used.Count() >= uint(len(s.slots))
}

// PushFront takes a free slot for query and document and makes it the most recently used one. The
// caller must ensure a slot is free.
func (s *lruSlots) PushFront(query string, document *ast.Document) int {
	i, found := s.used.NextClear(0)
	if !found || i >= uint(len(s.slots)) {
		panic("LRUOperationCache: no free slot")
	}
	s.used.Set(i)

	index := int(i)
	s.slots[index] = lruSlot{
		query:    query,
		document: document,
		prev:     nilSlot,
		next:     nilSlot,
	}
	s.link(index)
	return index
}

// MoveToFront makes the slot the most recently used one.
func (s *lruSlots) MoveToFront(index int) {
	if s.head == index {
		return
	}
	s.unlink(index)
	s.link(index)
}

// RemoveBack frees the least recently used slot and returns the query it held.
func (s *lruSlots) RemoveBack() (string, bool) {
	index := s.tail
	if index == nilSlot {
		return "", false
	}
	query := s.slots[index].query
	s.unlink(index)
	s.slots[index] = lruSlot{}
	s.used.Clear(uint(index))
	return query, true
}

func (s *lruSlots) link(index int) {
	slot := &s.slots[index]
	slot.prev = nilSlot
	slot.next = s.head
	if s.head != nilSlot {
		s.slots[s.head].prev = index
	}
	s.head = index
	if s.tail == nilSlot {
		s.tail = index
	}
}

func (s *lruSlots) unlink(index int) {
	slot := &s.slots[index]
	if slot.prev != nilSlot {
		s.slots[slot.prev].next = slot.next
	} else {
		s.head = slot.next
	}
	if slot.next != nilSlot {
		s.slots[slot.next].prev = slot.prev
	} else {
		s.tail = slot.prev
	}
	slot.prev, slot.next = nilSlot, nilSlot
}

// LRUOperationCache is a thread-safe OperationCache that holds a bounded number of documents and
// evicts the least recently used one when it is full.
type LRUOperationCache struct {
	mutex sync.Mutex
	index map[string]int
	slots *lruSlots
}

var _ OperationCache = (*LRUOperationCache)(nil)

var errZeroCacheSize = errors.New("LRUOperationCache: must specified a non-zero cache size")

// NewLRUOperationCache creates a new LRUOperationCache with given size.
func NewLRUOperationCache(maxEntries uint) (*LRUOperationCache, error) {
	if maxEntries == 0 {
		return nil, errZeroCacheSize
	}

	return &LRUOperationCache{
		index: make(map[string]int, maxEntries),
		slots: newLRUSlots(maxEntries),
	}, nil
}

// Len returns the number of cached documents.
func (c *LRUOperationCache) Len() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return len(c.index)
}

// Get implements OperationCache.
func (c *LRUOperationCache) Get(query string) (document *ast.Document, ok bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if i, hit := c.index[query]; hit {
		c.slots.MoveToFront(i)
		return c.slots.slots[i].document, true
	}
	return nil, false
}

// Add implements OperationCache.
func (c *LRUOperationCache) Add(query string, document *ast.Document) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if i, ok := c.index[query]; ok {
		c.slots.MoveToFront(i)
		c.slots.slots[i].document = document
		return
	}

	if c.slots.Full() {
		if evicted, ok := c.slots.RemoveBack(); ok {
			delete(c.index, evicted)
		}
	}
	c.index[query] = c.slots.PushFront(query, document)
}

// NopOperationCache does nothing.
type NopOperationCache struct{}

var _ OperationCache = NopOperationCache{}

// Get implements OperationCache.
func (NopOperationCache) Get(query string) (document *ast.Document, ok bool) {
	return
}

// Add implements OperationCache.
func (NopOperationCache) Add(query string, document *ast.Document) {}
