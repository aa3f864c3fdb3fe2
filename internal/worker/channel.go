package worker

import (
	"sync"
	"time"
)

// envelope is a queued Task. Once Recv hands it to a worker it is gone from
// the channel, so no other worker can ever see it.
type envelope struct {
	id       uint64
	fn       Task
	enqueued time.Time
}

// Channel is an unbounded multi-producer, multi-consumer queue of tasks.
// Send never blocks. Recv blocks until a task is available or the channel
// is closed and empty.
type Channel struct {
	mu     sync.Mutex
	cond   *sync.Cond
	buf    []envelope
	head   int
	closed bool
	seq    uint64
}

func NewChannel() *Channel {
	c := &Channel{}
	c.cond = sync.NewCond(&c.mu)
	return c
}

// Send appends task to the queue and wakes one waiting receiver.
func (c *Channel) Send(task Task) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0, ErrChannelClosed
	}
	c.seq++
	c.buf = append(c.buf, envelope{id: c.seq, fn: task, enqueued: time.Now()})
	c.cond.Signal()
	return c.seq, nil
}

// Recv returns the oldest queued task. ok is false only once the channel
// is closed and fully drained; from then on Recv never blocks.
func (c *Channel) Recv() (env envelope, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for c.head == len(c.buf) && !c.closed {
		c.cond.Wait()
	}
	if c.head == len(c.buf) {
		return envelope{}, false
	}

	env = c.buf[c.head]
	c.buf[c.head] = envelope{}
	c.head++
	// reclaim the consumed prefix once it dominates the backing array
	if c.head == len(c.buf) {
		c.buf = c.buf[:0]
		c.head = 0
	} else if c.head > 64 && c.head*2 >= len(c.buf) {
		n := copy(c.buf, c.buf[c.head:])
		clear(c.buf[n:])
		c.buf = c.buf[:n]
		c.head = 0
	}
	return env, true
}

// Close stops further sends and releases every blocked receiver.
// Buffered tasks stay available to Recv.
func (c *Channel) Close() {
	c.mu.Lock()
	c.closed = true
	c.cond.Broadcast()
	c.mu.Unlock()
}

func (c *Channel) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Len is the number of tasks waiting to be received.
func (c *Channel) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.buf) - c.head
}
