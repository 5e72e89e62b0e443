package link

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/symmetry/pkg/l0/frame"
)

type testTransport struct {
	in      []byte
	out     []byte
	readErr error

	baudRate int
	begun    bool
}

func (t *testTransport) Available() int {
	if t.readErr != nil {
		return 1
	}
	return len(t.in)
}

func (t *testTransport) ReadByte() (byte, error) {
	if t.readErr != nil {
		return 0, t.readErr
	}
	b := t.in[0]
	t.in = t.in[1:]
	return b, nil
}

func (t *testTransport) WriteByte(b byte) error {
	t.out = append(t.out, b)
	return nil
}

func (t *testTransport) Begin(baudRate int) error {
	t.baudRate, t.begun = baudRate, true
	return nil
}

func (t *testTransport) End() error {
	t.begun = false
	return nil
}

func (t *testTransport) inject(bs ...byte) {
	t.in = append(t.in, bs...)
}

func (t *testTransport) takeOutput() []byte {
	out := t.out
	t.out = nil
	return out
}

type testClock struct {
	now uint32
}

func (c *testClock) Millis() uint32 {
	return c.now
}

func (c *testClock) advance(ms uint32) {
	c.now += ms
}

type linkTestEnv struct {
	t         *testing.T
	transport *testTransport
	clock     *testClock
	link      *Link
	messages  []frame.Message
	statuses  []frame.Status
}

func newLinkTestEnv(t *testing.T) *linkTestEnv {
	env := &linkTestEnv{
		t:         t,
		transport: &testTransport{},
		clock:     &testClock{},
	}
	env.link = New(env.transport, 9600)
	env.link.Clock = env.clock
	env.link.Handler = HandleMessageFunc(func(msg *frame.Message) {
		env.messages = append(env.messages, *msg)
	})
	env.link.Notifier = HandleStatusFunc(func(s frame.Status) {
		env.statuses = append(env.statuses, s)
	})
	require.NoError(t, env.link.Connect())
	return env
}

func (e *linkTestEnv) poll(bs ...byte) {
	e.transport.inject(bs...)
	require.NoError(e.t, e.link.Poll())
}

func (e *linkTestEnv) expect(bs ...byte) {
	require.Equal(e.t, bs, e.transport.takeOutput())
}

func sealed(feature byte, payload ...byte) []byte {
	m := frame.NewMessage()
	m.SetFeature(feature)
	if err := m.SetPayload(payload); err != nil {
		panic(err)
	}
	m.Seal()
	return m.Bytes()
}

func TestLinkConnect(t *testing.T) {
	tr := &testTransport{}
	l := New(tr, 115200)
	require.False(t, l.Connected())
	require.NoError(t, l.Connect())
	require.True(t, tr.begun)
	require.Equal(t, 115200, tr.baudRate)
	require.True(t, l.Connected())
	require.NoError(t, l.Disconnect())
	require.False(t, tr.begun)
	require.False(t, l.Connected())
}

func TestLinkNotConfigured(t *testing.T) {
	tr := &testTransport{}
	l := New(tr, 9600)
	l.SetFeature(0x11)
	require.NoError(t, l.AppendByte(1))
	require.Equal(t, ErrNotConfigured, l.SendMessage())
	require.Equal(t, ErrNotConfigured, l.SendSingle(0x10, 1))
	require.Equal(t, ErrNotConfigured, l.SendHELO())
	require.Empty(t, tr.out)

	tr.inject(sealed(0x10)...)
	require.NoError(t, l.Poll())
	require.Len(t, tr.in, 4)
	require.Empty(t, tr.out)
}

func TestLinkSend(t *testing.T) {
	testCases := []struct {
		name   string
		send   func(*Link) error
		expect []byte
	}{
		{"single", func(l *Link) error { return l.SendSingle(0x21, 7) }, sealed(0x21, 7)},
		{"trigger", func(l *Link) error { return l.SendTrigger(0x30) }, sealed(0x30)},
		{"word", func(l *Link) error { return l.SendWord(0x22, 0xabcd) }, sealed(0x22, 0xab, 0xcd)},
		{"appends", func(l *Link) error {
			l.SetFeature(0x40)
			l.AppendByte(1)
			l.AppendWord(0x0203)
			l.AppendByte(4)
			return l.SendMessage()
		}, sealed(0x40, 1, 2, 3, 4)},
		{"auto length", func(l *Link) error {
			out := l.Outgoing()
			out.SetFeature(0x41)
			out.Set(0, 9)
			out.Set(1, 0xff)
			l.SetLengthAuto()
			return l.SendMessage()
		}, sealed(0x41, 9, 0xff)},
		{"explicit length", func(l *Link) error {
			l.SetFeature(0x42)
			l.Outgoing().Set(0, 5)
			if err := l.SetLength(2); err != nil {
				return err
			}
			return l.SendMessage()
		}, sealed(0x42, 5, frame.Blank)},
		{"status", func(l *Link) error { return l.SendStatus(frame.StatusPowerDown) }, []byte{0xff, 0xf3}},
		{"fail", func(l *Link) error { return l.SendFAIL() }, []byte{0xff, 0xfe}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			env := newLinkTestEnv(t)
			require.NoError(t, tc.send(env.link))
			env.expect(tc.expect...)
			require.Equal(t, *frame.NewMessage(), *env.link.Outgoing())
		})
	}
}

func TestLinkRoundTrip(t *testing.T) {
	sender, receiver := newLinkTestEnv(t), newLinkTestEnv(t)
	payloads := [][]byte{
		nil,
		{0},
		{0xff, 0xff, 0xff},
		{1, 2, 3, 4, 5, 6, 7, 8},
		make([]byte, frame.Capacity),
	}
	for n, payload := range payloads {
		feature := byte(0x10 + n)
		sender.link.SetFeature(feature)
		for _, b := range payload {
			require.NoError(t, sender.link.AppendByte(b))
		}
		require.NoError(t, sender.link.SendMessage())
		receiver.poll(sender.transport.takeOutput()...)
		receiver.expect(0xff, byte(frame.ACK))

		require.Len(t, receiver.messages, n+1)
		msg := receiver.messages[n]
		require.Equal(t, feature, msg.Feature())
		require.Equal(t, len(payload), msg.Len())
		if len(payload) > 0 {
			require.Equal(t, payload, msg.Payload())
		}
		require.True(t, msg.Valid())
	}
	require.Equal(t, Stats{Succeeded: uint16(len(payloads))}, receiver.link.Stats())
	require.Empty(t, receiver.statuses)
}

func TestLinkHandlerReadsMessage(t *testing.T) {
	env := newLinkTestEnv(t)
	var word uint16
	var value byte
	env.link.Handler = HandleMessageFunc(func(msg *frame.Message) {
		var err error
		word, err = msg.ReadWord()
		require.NoError(t, err)
		value, err = msg.ReadByte()
		require.NoError(t, err)
	})
	env.poll(sealed(0x5a, 0x12, 0x34, 0x56)...)
	require.Equal(t, uint16(0x1234), word)
	require.Equal(t, byte(0x56), value)
	require.Equal(t, byte(0x50), env.link.Received().FeatureSet())
}

func TestLinkChecksumMismatch(t *testing.T) {
	env := newLinkTestEnv(t)
	wire := sealed(0x21, 1, 2, 3)
	wire[5]++
	env.poll(wire...)
	env.expect(0xff, byte(frame.NACK))
	require.Empty(t, env.messages)
	require.Equal(t, Stats{Failed: 1, ChecksumErrors: 1}, env.link.Stats())
	require.False(t, env.link.Receiving())

	env.poll(sealed(0x21, 1, 2, 3)...)
	env.expect(0xff, byte(frame.ACK))
	require.Len(t, env.messages, 1)
}

func TestLinkFramingViolation(t *testing.T) {
	env := newLinkTestEnv(t)
	env.poll(0x01, 0x02, 0x03)
	env.expect()
	require.Equal(t, Stats{Failed: 3, FramingErrors: 3}, env.link.Stats())
	require.False(t, env.link.Receiving())
}

func TestLinkBufferOverflow(t *testing.T) {
	env := newLinkTestEnv(t)
	env.poll(0xff, frame.Capacity+1)
	env.expect(0xff, byte(frame.NACK))
	require.Equal(t, Stats{Failed: 1, Overflows: 1}, env.link.Stats())
	require.False(t, env.link.Receiving())

	payload := make([]byte, frame.Capacity)
	for i := range payload {
		payload[i] = byte(i * 3)
	}
	env.poll(sealed(0x60, payload...)...)
	env.expect(0xff, byte(frame.ACK))
	require.Len(t, env.messages, 1)
	require.Equal(t, payload, env.messages[0].Payload())
}

func TestLinkStatusInterception(t *testing.T) {
	env := newLinkTestEnv(t)
	env.poll(0xff, byte(frame.HELO))
	env.expect(0xff, byte(frame.ACK))
	require.Equal(t, []frame.Status{frame.HELO}, env.statuses)
	require.Empty(t, env.messages)

	env.poll(0xff, byte(frame.NACK), 0xff, byte(frame.StatusEEPROMErase), 0xff, byte(frame.FAIL))
	env.expect()
	require.Equal(t, []frame.Status{frame.HELO, frame.NACK, frame.StatusEEPROMErase, frame.FAIL}, env.statuses)
	require.Empty(t, env.messages)
	require.Equal(t, Stats{}, env.link.Stats())
}

func TestLinkTimeout(t *testing.T) {
	env := newLinkTestEnv(t)
	env.poll(0xff, 2, 0x21)
	require.True(t, env.link.Receiving())

	env.clock.advance(1000)
	env.poll()
	require.True(t, env.link.Receiving())
	env.expect()

	env.clock.advance(1)
	env.poll()
	require.False(t, env.link.Receiving())
	env.expect(0xff, byte(frame.NACK))
	require.Equal(t, Stats{Failed: 1, Timeouts: 1}, env.link.Stats())

	// the stalled frame is gone; a fresh frame parses cleanly.
	env.poll(sealed(0x21, 4, 5)...)
	env.expect(0xff, byte(frame.ACK))
	require.Len(t, env.messages, 1)
}

func TestLinkTimeoutAcrossClockWrap(t *testing.T) {
	env := newLinkTestEnv(t)
	env.clock.now = 0xffffff00
	env.poll(0xff)
	require.True(t, env.link.Receiving())
	env.clock.advance(0x100 + 500)
	env.poll()
	require.True(t, env.link.Receiving())
	env.clock.advance(501)
	env.poll()
	require.False(t, env.link.Receiving())
	env.expect(0xff, byte(frame.NACK))
}

func TestLinkCustomFrameTimeout(t *testing.T) {
	env := newLinkTestEnv(t)
	env.link.FrameTimeout = 50 * time.Millisecond
	env.poll(0xff)
	env.clock.advance(51)
	env.poll()
	require.False(t, env.link.Receiving())
	env.expect(0xff, byte(frame.NACK))
}

func TestLinkHeartbeat(t *testing.T) {
	env := newLinkTestEnv(t)
	env.link.Heartbeat = time.Second

	var helos []uint32
	for env.clock.now < 6000 {
		env.clock.advance(100)
		env.poll()
		if out := env.transport.takeOutput(); len(out) > 0 {
			require.Equal(t, frame.StatusFrame(frame.HELO), out)
			helos = append(helos, env.clock.now)
		}
	}
	require.Equal(t, []uint32{1100, 2200, 3300, 4400}, helos)
	require.True(t, env.link.HeartbeatDead())
	require.False(t, env.link.IsAlive())

	env.poll(0xff, byte(frame.ACK))
	require.False(t, env.link.HeartbeatDead())
	require.True(t, env.link.IsAlive())
	require.Equal(t, []frame.Status{frame.ACK}, env.statuses)

	env.clock.advance(1001)
	env.poll()
	require.False(t, env.link.IsAlive())
	env.expect(0xff, byte(frame.HELO))
}

func TestLinkHeartbeatDisabled(t *testing.T) {
	env := newLinkTestEnv(t)
	env.clock.advance(100000)
	env.poll()
	env.expect()
	require.False(t, env.link.HeartbeatDead())
}

func TestLinkHeartbeatTrafficSuppressesHELO(t *testing.T) {
	env := newLinkTestEnv(t)
	env.link.Heartbeat = time.Second
	for i := 0; i < 50; i++ {
		env.clock.advance(500)
		env.poll(0xff, byte(frame.ACK))
		require.True(t, env.link.IsAlive())
	}
	env.expect()
}

type endlessTransport struct {
	reads int
}

func (t *endlessTransport) Available() int        { return 4 }
func (t *endlessTransport) WriteByte(b byte) error { return nil }
func (t *endlessTransport) ReadByte() (byte, error) {
	t.reads++
	return 0x01, nil
}

func TestLinkPollBounded(t *testing.T) {
	tr := &endlessTransport{}
	l := New(tr, 9600)
	require.NoError(t, l.Connect())
	require.NoError(t, l.Poll())
	require.Equal(t, 4, tr.reads)
	require.Equal(t, uint16(4), l.Stats().FramingErrors)
}

func TestLinkTransportError(t *testing.T) {
	env := newLinkTestEnv(t)
	errBroken := errors.New("broken")
	env.transport.readErr = errBroken
	require.Equal(t, errBroken, env.link.Poll())
}

func TestLinkDisconnectInHandler(t *testing.T) {
	env := newLinkTestEnv(t)
	env.link.Notifier = HandleStatusFunc(func(frame.Status) {
		env.link.Disconnect()
	})
	env.poll(0xff, byte(frame.StatusPowerDown), 0xff, byte(frame.HELO))
	require.Len(t, env.transport.in, 2)
	env.expect()
}
