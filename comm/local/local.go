// Package local runs every rank of a world inside one process.
//
// Each ordered (source, destination) pair owns a FIFO channel, so delivery is
// ordered and reliable exactly as the comm contract requires. A pair's channel
// is created on first use; a world of P ranks that only talks to its
// coordinator holds P channels, not P². All blocking calls honor their context
// and the world's Close.
package local

import (
	"context"
	"fmt"
	"sync"

	"github.com/TyllerAllen/CP431-FinalProject/comm"
)

// Options configures a World.
type Options struct {
	// ChannelBuffer is the number of in-flight messages per (src, dst) link.
	// 0 makes every Send rendezvous with its Recv.
	ChannelBuffer int
}

// World is an in-process runtime of a fixed number of ranks.
type World struct {
	size    int
	buffer  int
	barrier *barrier

	mu    sync.Mutex
	links map[pair]chan message

	closeOnce sync.Once
	closed    chan struct{}
}

type pair struct {
	src, dst int
}

type message struct {
	src     int
	tag     comm.Tag
	payload []byte
}

// NewWorld creates a world of size ranks.
func NewWorld(size int, optFns ...func(*Options)) (*World, error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: world size %d", comm.ErrInvalidRank, size)
	}
	var opts Options
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.ChannelBuffer < 0 {
		opts.ChannelBuffer = 0
	}

	return &World{
		size:    size,
		buffer:  opts.ChannelBuffer,
		barrier: newBarrier(size),
		links:   make(map[pair]chan message),
		closed:  make(chan struct{}),
	}, nil
}

// Size returns the number of ranks.
func (w *World) Size() int {
	return w.size
}

// Comm returns the communicator of rank.
func (w *World) Comm(rank int) (comm.Communicator, error) {
	if rank < 0 || rank >= w.size {
		return nil, fmt.Errorf("%w: %d", comm.ErrInvalidRank, rank)
	}
	return &endpoint{world: w, rank: rank}, nil
}

// link returns the channel from src to dst, creating it on first use.
func (w *World) link(src, dst int) chan message {
	w.mu.Lock()
	defer w.mu.Unlock()

	k := pair{src: src, dst: dst}
	ch, ok := w.links[k]
	if !ok {
		ch = make(chan message, w.buffer)
		w.links[k] = ch
	}
	return ch
}

// Close unblocks every pending call with comm.ErrClosed.
func (w *World) Close() error {
	w.closeOnce.Do(func() { close(w.closed) })
	return nil
}

type endpoint struct {
	world *World
	rank  int
}

func (e *endpoint) Rank() int { return e.rank }

func (e *endpoint) Size() int { return e.world.size }

func (e *endpoint) Barrier(ctx context.Context) error {
	return e.world.barrier.wait(ctx, e.world.closed)
}

func (e *endpoint) Send(ctx context.Context, dst int, tag comm.Tag, payload []byte) error {
	if dst < 0 || dst >= e.world.size {
		return fmt.Errorf("%w: send to %d", comm.ErrInvalidRank, dst)
	}
	msg := message{src: e.rank, tag: tag, payload: append([]byte(nil), payload...)}

	select {
	case e.world.link(e.rank, dst) <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-e.world.closed:
		return comm.ErrClosed
	}
}

func (e *endpoint) Recv(ctx context.Context, src int, buf []byte) (comm.Envelope, error) {
	if src < 0 || src >= e.world.size {
		return comm.Envelope{}, fmt.Errorf("%w: receive from %d", comm.ErrInvalidRank, src)
	}

	var msg message
	select {
	case msg = <-e.world.link(src, e.rank):
	case <-ctx.Done():
		return comm.Envelope{}, ctx.Err()
	case <-e.world.closed:
		return comm.Envelope{}, comm.ErrClosed
	}

	env := comm.Envelope{Source: msg.src, Tag: msg.tag, Len: len(msg.payload)}
	if len(msg.payload) > len(buf) {
		return env, fmt.Errorf("%w: %d bytes into %d", comm.ErrTruncated, len(msg.payload), len(buf))
	}
	copy(buf, msg.payload)
	return env, nil
}

// barrier is a reusable generation barrier.
type barrier struct {
	mu      sync.Mutex
	parties int
	waiting int
	release chan struct{}
}

func newBarrier(parties int) *barrier {
	return &barrier{parties: parties, release: make(chan struct{})}
}

func (b *barrier) wait(ctx context.Context, closed <-chan struct{}) error {
	b.mu.Lock()
	ch := b.release
	b.waiting++
	if b.waiting == b.parties {
		b.waiting = 0
		b.release = make(chan struct{})
		close(ch)
		b.mu.Unlock()
		return nil
	}
	b.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return b.leave(ch, ctx.Err())
	case <-closed:
		return b.leave(ch, comm.ErrClosed)
	}
}

// leave withdraws a party that gave up on generation ch. If the generation
// was released in the meantime the party counts as having passed.
func (b *barrier) leave(ch chan struct{}, err error) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.release != ch {
		return nil
	}
	b.waiting--
	return err
}
