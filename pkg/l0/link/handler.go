package link

import "github.com/robotalks/symmetry/pkg/l0/frame"

// MessageHandler is called when a data frame passes the checksum.
// The message is owned by the Link and valid until the next completed frame.
type MessageHandler interface {
	HandleMessage(*frame.Message)
}

// HandleMessageFunc is func type of MessageHandler.
type HandleMessageFunc func(*frame.Message)

// HandleMessage implements MessageHandler.
func (f HandleMessageFunc) HandleMessage(msg *frame.Message) {
	f(msg)
}

// StatusHandler is called for every received status frame, including the
// ones the Link answers itself.
type StatusHandler interface {
	HandleStatus(frame.Status)
}

// HandleStatusFunc is func type of StatusHandler.
type HandleStatusFunc func(frame.Status)

// HandleStatus implements StatusHandler.
func (f HandleStatusFunc) HandleStatus(s frame.Status) {
	f(s)
}
