package framework

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type countPoller struct {
	lock  sync.Mutex
	count int
	err   error
}

func (p *countPoller) Poll() error {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.count++
	return p.err
}

func (p *countPoller) polls() int {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.count
}

type runnablePoller struct {
	countPoller
	started chan struct{}
}

func (p *runnablePoller) Run(ctx context.Context) error {
	close(p.started)
	<-ctx.Done()
	return ctx.Err()
}

func TestLoopPolls(t *testing.T) {
	p := &countPoller{}
	loop := NewLoop().AddPoller(p)
	loop.Interval = time.Millisecond
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- loop.Run(ctx) }()
	require.Eventually(t, func() bool { return p.polls() >= 3 }, time.Second, time.Millisecond)
	cancel()
	require.Equal(t, context.Canceled, <-errCh)
}

func TestLoopPostRunsInOrderBeforePoll(t *testing.T) {
	var order []string
	loop := NewLoop().AddPoller(PollFunc(func() error {
		order = append(order, "poll")
		return nil
	}))
	loop.Interval = time.Hour
	loop.Post(func() { order = append(order, "a") })
	loop.Post(func() { order = append(order, "b") })
	require.NoError(t, loop.runIteration())
	require.Equal(t, []string{"a", "b", "poll"}, order)

	order = nil
	require.NoError(t, loop.runIteration())
	require.Equal(t, []string{"poll"}, order)
}

func TestLoopDo(t *testing.T) {
	loop := NewLoop()
	loop.Interval = time.Hour
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loop.Run(ctx)

	expected := errors.New("send failed")
	require.Equal(t, expected, loop.Do(ctx, func() error { return expected }))
	require.NoError(t, loop.Do(ctx, func() error { return nil }))
}

func TestLoopDoCanceled(t *testing.T) {
	loop := NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.Equal(t, context.Canceled, loop.Do(ctx, func() error { return nil }))
}

func TestLoopStopsOnPollError(t *testing.T) {
	expected := errors.New("transport gone")
	rp := &runnablePoller{started: make(chan struct{})}
	rp.err = expected
	loop := NewLoop().AddPoller(rp)
	loop.Interval = time.Millisecond
	require.Equal(t, expected, loop.Run(context.Background()))
	<-rp.started
	require.Equal(t, 1, rp.polls())
}

type adder struct{ p Poller }

func (a *adder) AddToLoop(l *Loop) { l.AddPoller(a.p) }

func TestLoopAdd(t *testing.T) {
	p := &countPoller{}
	loop := NewLoop().Add(&adder{p: p})
	require.NoError(t, loop.runIteration())
	require.Equal(t, 1, p.polls())
}
