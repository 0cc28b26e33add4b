package local

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/TyllerAllen/CP431-FinalProject/comm"
)

func comms(t *testing.T, w *World) []comm.Communicator {
	t.Helper()
	out := make([]comm.Communicator, w.Size())
	for r := range out {
		c, err := w.Comm(r)
		require.NoError(t, err)
		out[r] = c
	}
	return out
}

func TestWorld_OrderedDelivery(t *testing.T) {
	w, err := NewWorld(2, func(o *Options) { o.ChannelBuffer = 4 })
	require.NoError(t, err)
	defer w.Close()
	cs := comms(t, w)

	g, ctx := errgroup.WithContext(t.Context())
	g.Go(func() error {
		for i := byte(0); i < 10; i++ {
			tag := comm.TagArray
			if i == 9 {
				tag = comm.TagLast
			}
			if err := cs[1].Send(ctx, 0, tag, []byte{i, i}); err != nil {
				return err
			}
		}
		return nil
	})

	buf := make([]byte, 4)
	for i := byte(0); i < 10; i++ {
		env, err := cs[0].Recv(ctx, 1, buf)
		require.NoError(t, err)
		assert.Equal(t, 1, env.Source)
		assert.Equal(t, 2, env.Len)
		assert.Equal(t, []byte{i, i}, buf[:env.Len])
		if i == 9 {
			assert.Equal(t, comm.TagLast, env.Tag)
		} else {
			assert.Equal(t, comm.TagArray, env.Tag)
		}
	}
	require.NoError(t, g.Wait())
}

func TestWorld_SendCopiesPayload(t *testing.T) {
	w, err := NewWorld(2, func(o *Options) { o.ChannelBuffer = 1 })
	require.NoError(t, err)
	defer w.Close()
	cs := comms(t, w)

	payload := []byte{1, 2, 3}
	require.NoError(t, cs[1].Send(t.Context(), 0, comm.TagLast, payload))
	payload[0] = 9

	buf := make([]byte, 3)
	_, err = cs[0].Recv(t.Context(), 1, buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, buf)
}

func TestWorld_Truncated(t *testing.T) {
	w, err := NewWorld(2, func(o *Options) { o.ChannelBuffer = 1 })
	require.NoError(t, err)
	defer w.Close()
	cs := comms(t, w)

	require.NoError(t, cs[1].Send(t.Context(), 0, comm.TagArray, make([]byte, 8)))
	env, err := cs[0].Recv(t.Context(), 1, make([]byte, 4))
	assert.ErrorIs(t, err, comm.ErrTruncated)
	assert.Equal(t, 8, env.Len)
}

func TestWorld_Barrier(t *testing.T) {
	const size = 5
	w, err := NewWorld(size)
	require.NoError(t, err)
	defer w.Close()
	cs := comms(t, w)

	var before atomic.Int32
	var wg sync.WaitGroup
	for r := 0; r < size; r++ {
		wg.Add(1)
		go func(c comm.Communicator) {
			defer wg.Done()
			for round := 0; round < 3; round++ {
				before.Add(1)
				assert.NoError(t, c.Barrier(t.Context()))
				assert.GreaterOrEqual(t, before.Load(), int32(size*(round+1)))
				assert.NoError(t, c.Barrier(t.Context()))
			}
		}(cs[r])
	}
	wg.Wait()
}

func TestWorld_CancelAndClose(t *testing.T) {
	w, err := NewWorld(2)
	require.NoError(t, err)
	cs := comms(t, w)

	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()
	_, err = cs[0].Recv(ctx, 1, nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	done := make(chan error, 1)
	go func() { done <- cs[0].Barrier(t.Context()) }()
	require.NoError(t, w.Close())
	assert.ErrorIs(t, <-done, comm.ErrClosed)
	assert.ErrorIs(t, cs[1].Send(t.Context(), 0, comm.TagArray, nil), comm.ErrClosed)
}

func TestWorld_InvalidRank(t *testing.T) {
	_, err := NewWorld(0)
	assert.ErrorIs(t, err, comm.ErrInvalidRank)

	w, err := NewWorld(2)
	require.NoError(t, err)
	defer w.Close()

	_, err = w.Comm(2)
	assert.ErrorIs(t, err, comm.ErrInvalidRank)

	c, err := w.Comm(0)
	require.NoError(t, err)
	assert.Equal(t, 0, c.Rank())
	assert.Equal(t, 2, c.Size())
	assert.ErrorIs(t, c.Send(t.Context(), 5, comm.TagArray, nil), comm.ErrInvalidRank)
	_, err = c.Recv(t.Context(), -1, nil)
	assert.ErrorIs(t, err, comm.ErrInvalidRank)
}

func TestTag_String(t *testing.T) {
	assert.Equal(t, "ARRAY", comm.TagArray.String())
	assert.Equal(t, "LAST", comm.TagLast.String())
	assert.Equal(t, "Tag(7)", comm.Tag(7).String())
}

func TestWorld_LinksCreatedOnUse(t *testing.T) {
	const size = 100000

	allocs := testing.AllocsPerRun(5, func() {
		w, err := NewWorld(size)
		if err != nil {
			panic(err)
		}
		_ = w.Close()
	})
	assert.LessOrEqual(t, allocs, 10.0)

	w, err := NewWorld(size, func(o *Options) { o.ChannelBuffer = 1 })
	require.NoError(t, err)
	defer w.Close()
	assert.Empty(t, w.links)

	for _, src := range []int{1, size / 2, size - 1} {
		c, err := w.Comm(src)
		require.NoError(t, err)
		require.NoError(t, c.Send(t.Context(), comm.Coordinator, comm.TagLast, []byte{byte(src)}))
	}
	assert.Len(t, w.links, 3)

	coord, err := w.Comm(comm.Coordinator)
	require.NoError(t, err)
	last := size - 1
	buf := make([]byte, 1)
	env, err := coord.Recv(t.Context(), last, buf)
	require.NoError(t, err)
	assert.Equal(t, last, env.Source)
	assert.Equal(t, byte(last), buf[0])
	assert.Len(t, w.links, 3)
}

func TestWorld_BarrierReusableAfterCancel(t *testing.T) {
	w, err := NewWorld(2)
	require.NoError(t, err)
	defer w.Close()
	cs := comms(t, w)

	ctx, cancel := context.WithTimeout(t.Context(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, cs[0].Barrier(ctx), context.DeadlineExceeded)

	done := make(chan error, 1)
	go func() { done <- cs[0].Barrier(t.Context()) }()

	select {
	case err := <-done:
		t.Fatalf("barrier released with one party: %v", err)
	case <-time.After(30 * time.Millisecond):
	}

	require.NoError(t, cs[1].Barrier(t.Context()))
	assert.NoError(t, <-done)
}
