package framework

import "context"

// Named is an abstraction for things with a name.
type Named interface {
	Name() string
}

// Runnable defines a generic interface for background runners.
type Runnable interface {
	Run(context.Context) error
}

// Poller is polled by the Loop on its goroutine. link.Link is a Poller.
type Poller interface {
	Poll() error
}

// PollFunc is the func form of Poller.
type PollFunc func() error

// Poll implements Poller.
func (f PollFunc) Poll() error {
	return f()
}

// LoopAdder provides specific logic to add components to loop.
type LoopAdder interface {
	AddToLoop(*Loop)
}
