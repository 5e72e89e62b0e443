package framework

import (
	"context"
	"log"
	"sync"
	"time"
)

// DefaultPollInterval is the Loop interval when none is set.
const DefaultPollInterval = 10 * time.Millisecond

// Loop polls Pollers on a single goroutine.
// Other goroutines must not touch a polled link directly; they Post
// closures which the Loop runs before the next poll.
type Loop struct {
	Interval time.Duration

	pollers []Poller
	runners []Runnable

	tasks    taskList
	lock     sync.Mutex
	wakeUpCh chan struct{}
}

type taskList struct {
	head *taskItem
	tail *taskItem
}

type taskItem struct {
	fn   func()
	next *taskItem
}

func (l *taskList) append(item *taskItem) {
	if l.head == nil {
		l.head = item
	} else {
		l.tail.next = item
	}
	l.tail = item
}

func (l *taskList) splice(src *taskList) {
	l.head, l.tail, src.head, src.tail = src.head, src.tail, nil, nil
}

// NewLoop creates a Loop.
func NewLoop() *Loop {
	return &Loop{
		Interval: DefaultPollInterval,
		wakeUpCh: make(chan struct{}, 1),
	}
}

// Add adds LoopAdders.
func (l *Loop) Add(adders ...LoopAdder) *Loop {
	for _, adder := range adders {
		adder.AddToLoop(l)
	}
	return l
}

// AddPoller registers pollers, polled in order. Pollers which are also
// Runnable are started with the loop.
func (l *Loop) AddPoller(pollers ...Poller) *Loop {
	l.pollers = append(l.pollers, pollers...)
	for _, p := range pollers {
		if runner, ok := p.(Runnable); ok {
			l.runners = append(l.runners, runner)
		}
	}
	return l
}

// AddRunnable adds Runnables started with the loop.
func (l *Loop) AddRunnable(runnables ...Runnable) *Loop {
	l.runners = append(l.runners, runnables...)
	return l
}

// Post queues fn to run on the loop goroutine and wakes the loop.
func (l *Loop) Post(fn func()) {
	l.lock.Lock()
	l.tasks.append(&taskItem{fn: fn})
	l.lock.Unlock()
	l.TriggerNext()
}

// Do runs fn on the loop goroutine and waits for its result.
func (l *Loop) Do(ctx context.Context, fn func() error) error {
	errCh := make(chan error, 1)
	l.Post(func() { errCh <- fn() })
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TriggerNext makes the next iteration run immediately.
func (l *Loop) TriggerNext() {
	select {
	case l.wakeUpCh <- struct{}{}:
	default:
	}
}

// Run implements Runnable. It returns the first poll error.
func (l *Loop) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	runner := NewRunnerWith(runCtx)
	runner.Go(l.runners...)
	defer runner.Wait()
	defer cancel()

	interval := l.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		case <-l.wakeUpCh:
		}
		if err := l.runIteration(); err != nil {
			return err
		}
	}
}

// RunOrFail is intended to be used in main to simply run the loop.
func (l *Loop) RunOrFail() {
	r := NewRunner().HandleSignals()
	r.Go(l)
	if err := r.Wait(); err != nil {
		log.Fatalln(err)
	}
}

func (l *Loop) runIteration() error {
	var tasks taskList
	l.lock.Lock()
	tasks.splice(&l.tasks)
	l.lock.Unlock()
	for item := tasks.head; item != nil; item = item.next {
		item.fn()
	}
	for _, p := range l.pollers {
		if err := p.Poll(); err != nil {
			return err
		}
	}
	return nil
}
