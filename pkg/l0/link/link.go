package link

import (
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/symmetry/pkg/l0/frame"
)

// DefaultFrameTimeout aborts a frame when the sender stalls this long.
const DefaultFrameTimeout = 1000 * time.Millisecond

// Stats are the link counters. All counters wrap at 16 bits.
type Stats struct {
	// Succeeded counts delivered data frames.
	Succeeded uint16
	// Failed counts every discarded frame or stray byte.
	Failed uint16

	ChecksumErrors uint16
	FramingErrors  uint16
	Timeouts       uint16
	Overflows      uint16
}

// Link sends/receives frames over a Transport.
type Link struct {
	Transport    Transport
	BaudRate     int
	Clock        Clock
	Handler      MessageHandler
	Notifier     StatusHandler
	Heartbeat    time.Duration // 0 disables heartbeat
	FrameTimeout time.Duration

	configured  bool
	lastMessage uint32
	heartbeat   heartbeat
	stats       Stats

	parser   *frame.Parser
	received frame.Message
	outgoing frame.Message
}

// New creates a Link. It must be connected before use.
func New(t Transport, baudRate int) *Link {
	l := &Link{
		Transport:    t,
		BaudRate:     baudRate,
		Clock:        NewSystemClock(),
		FrameTimeout: DefaultFrameTimeout,
		parser:       frame.NewParser(),
	}
	l.received.Purge()
	l.outgoing.Purge()
	return l
}

// Connect starts the transport and resets the receive state and timers.
func (l *Link) Connect() error {
	if s, ok := l.Transport.(Starter); ok {
		if err := s.Begin(l.BaudRate); err != nil {
			return err
		}
	}
	l.parser.Reset()
	now := l.Clock.Millis()
	l.lastMessage = now
	l.heartbeat.reset(now)
	l.configured = true
	return nil
}

// Disconnect stops the transport. Sends are dropped until Connect.
func (l *Link) Disconnect() error {
	l.configured = false
	if s, ok := l.Transport.(Starter); ok {
		return s.End()
	}
	return nil
}

// Connected tells if the link is configured.
func (l *Link) Connected() bool {
	return l.configured
}

// Receiving tells if a frame is partially received.
func (l *Link) Receiving() bool {
	return l.parser.Receiving()
}

// Stats returns the counters.
func (l *Link) Stats() Stats {
	return l.stats
}

// Received returns the last delivered data frame.
func (l *Link) Received() *frame.Message {
	return &l.received
}

// Poll checks timers and consumes the bytes available on entry.
func (l *Link) Poll() error {
	if !l.configured {
		return nil
	}
	now := l.Clock.Millis()
	if err := l.checkHeartbeat(now); err != nil {
		return err
	}
	if l.parser.Receiving() && now-l.lastMessage > durationMillis(l.frameTimeout()) {
		if err := l.applyParseResult(l.parser.Timeout()); err != nil {
			return err
		}
	}
	for n := l.Transport.Available(); n > 0 && l.configured && l.Transport.Available() > 0; n-- {
		b, err := l.Transport.ReadByte()
		if err != nil {
			return err
		}
		l.dataReceived()
		if err = l.applyParseResult(l.parser.Parse(b)); err != nil {
			return err
		}
	}
	return nil
}

func (l *Link) frameTimeout() time.Duration {
	if l.FrameTimeout <= 0 {
		return DefaultFrameTimeout
	}
	return l.FrameTimeout
}

func (l *Link) dataReceived() {
	l.lastMessage = l.Clock.Millis()
	l.heartbeat.dead = false
}

func (l *Link) applyParseResult(pr frame.ParseResult) error {
	if pr.Err != nil {
		l.countFailure(pr.Err)
	}
	if pr.Reply != 0 {
		if err := l.SendStatus(pr.Reply); err != nil && err != ErrNotConfigured {
			return err
		}
	}
	if pr.Status != 0 {
		glog.V(3).Infof("RCV %s", pr.Status)
		if h := l.Notifier; h != nil {
			h.HandleStatus(pr.Status)
		}
	}
	if pr.Message != nil {
		l.stats.Succeeded++
		l.received = *pr.Message
		glog.V(3).Infof("RCV feature=0x%02x len=%d", l.received.Feature(), l.received.Len())
		if h := l.Handler; h != nil {
			h.HandleMessage(&l.received)
		}
	}
	return nil
}

func (l *Link) countFailure(err error) {
	l.stats.Failed++
	switch err {
	case frame.ErrChecksumMismatch:
		l.stats.ChecksumErrors++
	case frame.ErrFramingViolation:
		l.stats.FramingErrors++
	case frame.ErrFrameTimeout:
		l.stats.Timeouts++
	case frame.ErrBufferOverflow:
		l.stats.Overflows++
	}
	if err == frame.ErrFramingViolation {
		glog.V(4).Infof("discard: %v", err)
		return
	}
	glog.Warningf("frame discarded: %v", err)
}
