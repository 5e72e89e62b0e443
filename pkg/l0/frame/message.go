package frame

import "io"

// Wire constants.
const (
	// Start marks the beginning of every frame.
	Start byte = 0xFF
	// Blank fills payload slots not written since the last purge.
	Blank byte = 0xFF
	// HeaderSize is the number of bytes between the start marker and payload.
	HeaderSize = 3
	// Capacity is the maximum payload length: a 64-byte UART buffer minus
	// the header and the start marker.
	Capacity = 64 - HeaderSize - 1
)

// Message is a fixed-capacity data frame used for both sending and receiving.
// The zero value is not purged; call Purge or use NewMessage.
type Message struct {
	length   byte
	feature  byte
	checksum byte
	data     [Capacity]byte

	// written marks payload slots explicitly set since the last purge.
	written uint64
	cursor  int
}

// NewMessage creates a purged Message.
func NewMessage() *Message {
	m := &Message{}
	m.Purge()
	return m
}

// Purge resets all fields and blanks the payload.
func (m *Message) Purge() {
	m.length, m.feature, m.checksum = 0, 0, 0
	for i := range m.data {
		m.data[i] = Blank
	}
	m.written, m.cursor = 0, 0
}

// Len returns the payload length.
func (m *Message) Len() int {
	return int(m.length)
}

// SetLen sets the payload length.
func (m *Message) SetLen(n int) error {
	if n < 0 || n > Capacity {
		return ErrBufferOverflow
	}
	m.length = byte(n)
	return nil
}

// SetLenAuto sets the length to the index of the first payload slot not
// written since the last purge.
//
// Legacy peers scan for the first Blank (0xFF) byte instead, which makes a
// genuine 0xFF payload byte end the message early. Slots are tracked
// explicitly here so 0xFF is an ordinary value.
func (m *Message) SetLenAuto() {
	n := 0
	for n < Capacity && m.written&(1<<uint(n)) != 0 {
		n++
	}
	m.length = byte(n)
}

// Feature returns the feature id.
func (m *Message) Feature() byte {
	return m.feature
}

// SetFeature sets the feature id.
func (m *Message) SetFeature(f byte) {
	m.feature = f
}

// FeatureSet returns the feature group, i.e. the feature with the low
// nibble cleared.
func (m *Message) FeatureSet() byte {
	return m.feature - m.feature%16
}

// Checksum returns the checksum byte as received or as last sealed.
func (m *Message) Checksum() byte {
	return m.checksum
}

// At returns the payload byte at position i, Blank if out of range.
func (m *Message) At(i int) byte {
	if i < 0 || i >= Capacity {
		return Blank
	}
	return m.data[i]
}

// Set writes the payload byte at position i without touching the length.
func (m *Message) Set(i int, v byte) error {
	if i < 0 || i >= Capacity {
		return ErrBufferOverflow
	}
	m.data[i] = v
	m.written |= 1 << uint(i)
	return nil
}

// Payload returns the payload up to Len. The slice aliases the message.
func (m *Message) Payload() []byte {
	return m.data[:m.length]
}

// SetPayload replaces the payload and length.
func (m *Message) SetPayload(p []byte) error {
	if len(p) > Capacity {
		return ErrBufferOverflow
	}
	for i, b := range p {
		m.Set(i, b)
	}
	m.length = byte(len(p))
	m.cursor = len(p)
	return nil
}

// AppendByte writes b at the cursor, advances it, and extends the length
// to cover it.
func (m *Message) AppendByte(b byte) error {
	if err := m.Set(m.cursor, b); err != nil {
		return err
	}
	m.cursor++
	if m.cursor > int(m.length) {
		m.length = byte(m.cursor)
	}
	return nil
}

// AppendWord writes w big-endian at the cursor.
func (m *Message) AppendWord(w uint16) error {
	if m.cursor+2 > Capacity {
		return ErrBufferOverflow
	}
	m.AppendByte(byte(w >> 8))
	return m.AppendByte(byte(w))
}

// ReadByte implements io.ByteReader over the payload, returning io.EOF
// past Len.
func (m *Message) ReadByte() (byte, error) {
	if m.cursor < 0 || m.cursor >= int(m.length) {
		return 0, io.EOF
	}
	b := m.data[m.cursor]
	m.cursor++
	return b, nil
}

// ReadWord reads a big-endian word at the cursor.
func (m *Message) ReadWord() (uint16, error) {
	if m.cursor < 0 || m.cursor+2 > int(m.length) {
		return 0, io.EOF
	}
	w := uint16(m.data[m.cursor])<<8 | uint16(m.data[m.cursor+1])
	m.cursor += 2
	return w, nil
}

// Cursor returns the payload cursor.
func (m *Message) Cursor() int {
	return m.cursor
}

// SetCursor moves the payload cursor.
func (m *Message) SetCursor(pos int) {
	m.cursor = pos
}

// ResetCursor moves the payload cursor to the beginning.
func (m *Message) ResetCursor() {
	m.cursor = 0
}

// Sum is length + feature + Σpayload (mod 256), excluding the checksum.
func (m *Message) Sum() byte {
	sum := m.length + m.feature
	for _, b := range m.data[:m.length] {
		sum += b
	}
	return sum
}

// Seal computes and stores the checksum.
func (m *Message) Seal() {
	m.checksum = -m.Sum()
}

// Valid tells if the stored checksum matches the content.
func (m *Message) Valid() bool {
	return m.Sum()+m.checksum == 0
}

// Bytes returns the encoded data frame. The checksum is used as-is.
func (m *Message) Bytes() []byte {
	b := make([]byte, HeaderSize+1+int(m.length))
	b[0], b[1], b[2], b[3] = Start, m.length, m.feature, m.checksum
	copy(b[HeaderSize+1:], m.data[:m.length])
	return b
}

// WriteTo writes the encoded data frame.
func (m *Message) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(m.Bytes())
	return int64(n), err
}
