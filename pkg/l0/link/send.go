package link

import (
	"github.com/golang/glog"

	"github.com/robotalks/symmetry/pkg/l0/frame"
)

// Outgoing returns the message being assembled for SendMessage.
func (l *Link) Outgoing() *frame.Message {
	return &l.outgoing
}

// SetFeature sets the feature of the outgoing message.
func (l *Link) SetFeature(feature byte) {
	l.outgoing.SetFeature(feature)
}

// AppendByte appends a payload byte to the outgoing message.
func (l *Link) AppendByte(b byte) error {
	return l.outgoing.AppendByte(b)
}

// AppendWord appends a big-endian word to the outgoing message.
func (l *Link) AppendWord(w uint16) error {
	return l.outgoing.AppendWord(w)
}

// SetLength sets the payload length of the outgoing message.
func (l *Link) SetLength(n int) error {
	return l.outgoing.SetLen(n)
}

// SetLengthAuto sets the outgoing length to the first unwritten slot.
func (l *Link) SetLengthAuto() {
	l.outgoing.SetLenAuto()
}

// SendMessage seals and transmits the outgoing message, then purges it.
// When not connected nothing is sent and the message is left as-is.
func (l *Link) SendMessage() error {
	if !l.configured {
		return ErrNotConfigured
	}
	l.outgoing.Seal()
	glog.V(3).Infof("SND feature=0x%02x len=%d", l.outgoing.Feature(), l.outgoing.Len())
	_, err := l.outgoing.WriteTo(writerFor(l.Transport))
	l.outgoing.Purge()
	return err
}

// SendSingle sends feature with a single payload byte.
func (l *Link) SendSingle(feature, value byte) error {
	l.outgoing.Purge()
	l.outgoing.SetFeature(feature)
	l.outgoing.AppendByte(value)
	return l.SendMessage()
}

// SendTrigger sends feature without payload.
func (l *Link) SendTrigger(feature byte) error {
	l.outgoing.Purge()
	l.outgoing.SetFeature(feature)
	return l.SendMessage()
}

// SendWord sends feature with a single big-endian word.
func (l *Link) SendWord(feature byte, w uint16) error {
	l.outgoing.Purge()
	l.outgoing.SetFeature(feature)
	l.outgoing.AppendWord(w)
	return l.SendMessage()
}

// SendStatus sends a status frame.
func (l *Link) SendStatus(s frame.Status) error {
	if !l.configured {
		return ErrNotConfigured
	}
	glog.V(3).Infof("SND %s", s)
	_, err := writerFor(l.Transport).Write(frame.StatusFrame(s))
	return err
}

// SendHELO sends a HELO status frame.
func (l *Link) SendHELO() error { return l.SendStatus(frame.HELO) }

// SendACK sends an ACK status frame.
func (l *Link) SendACK() error { return l.SendStatus(frame.ACK) }

// SendNACK sends a NACK status frame.
func (l *Link) SendNACK() error { return l.SendStatus(frame.NACK) }

// SendFAIL sends a FAIL status frame.
func (l *Link) SendFAIL() error { return l.SendStatus(frame.FAIL) }
