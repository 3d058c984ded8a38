package indexing

import (
	"container/list"
	"math/rand/v2"
	"sync"

	"github.com/nullptr-dev/trailindex/pkg/types"
)

// CommandList is the thread-safe FIFO of IndexerCommand described in
// spec.md §4.H. Workers PopFront concurrently; Shuffle is called once,
// before dispatch, to spread commands with shared headers away from
// each other and reduce lock contention on those headers.
type CommandList struct {
	mu sync.Mutex
	l  *list.List
}

// NewCommandList returns an empty command list.
func NewCommandList() *CommandList {
	return &CommandList{l: list.New()}
}

// Push appends cmd to the back of the queue.
func (c *CommandList) Push(cmd types.IndexerCommand) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.l.PushBack(cmd)
}

// PopFront removes and returns the command at the front of the queue,
// or ok=false if the queue is empty.
func (c *CommandList) PopFront(cmd *types.IndexerCommand) (ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	front := c.l.Front()
	if front == nil {
		return false
	}
	c.l.Remove(front)
	*cmd = front.Value.(types.IndexerCommand)
	return true
}

// Size returns the number of queued commands.
func (c *CommandList) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.l.Len()
}

// Shuffle randomizes queue order in place. Intended to be called once,
// before multi-worker dispatch begins, mirroring
// Project::buildIndex's indexerCommandList->shuffle() call.
func (c *CommandList) Shuffle() {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := c.l.Len()
	if n < 2 {
		return
	}
	items := make([]types.IndexerCommand, 0, n)
	for e := c.l.Front(); e != nil; e = e.Next() {
		items = append(items, e.Value.(types.IndexerCommand))
	}
	rand.Shuffle(len(items), func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})

	c.l.Init()
	for _, it := range items {
		c.l.PushBack(it)
	}
}
