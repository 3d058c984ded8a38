package storage

import (
	"container/heap"
	"sync"
)

// StorageProvider is the shared FIFO-with-size-ordering of intermediate
// storages described in spec.md §4.E: push never blocks, consume pulls
// the smallest (or two smallest) by byte size with insertion-order
// tie-break. It is implemented as a binary heap so push/consume are
// O(log n), as spec.md recommends over an O(n) list scan.
type StorageProvider struct {
	mu      sync.Mutex
	h       storageHeap
	nextSeq uint64
}

// NewStorageProvider returns an empty provider.
func NewStorageProvider() *StorageProvider {
	return &StorageProvider{}
}

type storageEntry struct {
	storage *IntermediateStorage
	size    int
	seq     uint64
}

type storageHeap []*storageEntry

func (h storageHeap) Len() int { return len(h) }
func (h storageHeap) Less(i, j int) bool {
	if h[i].size != h[j].size {
		return h[i].size < h[j].size
	}
	return h[i].seq < h[j].seq
}
func (h storageHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *storageHeap) Push(x any)   { *h = append(*h, x.(*storageEntry)) }
func (h *storageHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Push enqueues storage. It never blocks.
func (p *StorageProvider) Push(s *IntermediateStorage) {
	p.mu.Lock()
	defer p.mu.Unlock()
	heap.Push(&p.h, &storageEntry{storage: s, size: s.ByteSize(), seq: p.nextSeq})
	p.nextSeq++
}

// ConsumeSmallest removes and returns the smallest storage by byte size,
// or ok=false if the provider is empty.
func (p *StorageProvider) ConsumeSmallest() (s *IntermediateStorage, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.h.Len() == 0 {
		return nil, false
	}
	entry := heap.Pop(&p.h).(*storageEntry)
	return entry.storage, true
}

// ConsumeTwoSmallest atomically removes the two smallest storages, or
// ok=false if fewer than two are available (in which case nothing is
// removed).
func (p *StorageProvider) ConsumeTwoSmallest() (a, b *IntermediateStorage, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.h.Len() < 2 {
		return nil, nil, false
	}
	first := heap.Pop(&p.h).(*storageEntry)
	second := heap.Pop(&p.h).(*storageEntry)
	return first.storage, second.storage, true
}

// Size returns the number of storages currently queued.
func (p *StorageProvider) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.h.Len()
}
