package frame

// Parser parses received bytes into frames.
// It does no I/O: every step returns a ParseResult for the caller to apply.
type Parser struct {
	receiving bool
	count     int
	sum       byte
	msg       Message
	done      Message
}

// ParseResult indicates the result after one parsing step.
type ParseResult struct {
	// Reply is a status frame to transmit, 0 for none.
	Reply Status
	// Status is a received status code, 0 for none.
	Status Status
	// Message is a complete frame which passed the checksum. It stays valid
	// until the next completed frame.
	Message *Message
	// Err is the reason a frame was discarded.
	Err error
}

// NewParser creates a Parser in idle state.
func NewParser() *Parser {
	p := &Parser{}
	p.Reset()
	return p
}

// Receiving indicates a frame has started and is not yet complete.
func (p *Parser) Receiving() bool {
	return p.receiving
}

// Count returns the number of bytes consumed after the start marker.
func (p *Parser) Count() int {
	return p.count
}

// Reset purges the receive buffer and returns to idle.
func (p *Parser) Reset() {
	p.msg.Purge()
	p.receiving, p.count, p.sum = false, 0, 0
}

// Parse consumes one byte.
func (p *Parser) Parse(b byte) (pr ParseResult) {
	if !p.receiving {
		if b == Start {
			p.receiving, p.count = true, 0
			return
		}
		p.Reset()
		pr.Err = ErrFramingViolation
		return
	}

	p.sum += b
	switch p.count {
	case 0:
		if b >= StatusMin {
			return p.statusReceived(Status(b))
		}
		if int(b) > Capacity {
			return p.abort(ErrBufferOverflow)
		}
		p.msg.length = b
		p.msg.cursor = 0
	case 1:
		p.msg.feature = b
	case 2:
		p.msg.checksum = b
	default:
		p.msg.Set(p.count-HeaderSize, b)
	}
	p.count++

	if p.count == int(p.msg.length)+HeaderSize {
		if p.sum != 0 {
			return p.abort(ErrChecksumMismatch)
		}
		return p.messageReady()
	}
	return
}

// Timeout notifies the parser that the sender stalled.
func (p *Parser) Timeout() (pr ParseResult) {
	if p.receiving {
		return p.abort(ErrFrameTimeout)
	}
	return
}

func (p *Parser) statusReceived(s Status) (pr ParseResult) {
	p.Reset()
	pr.Status = s
	if s == HELO {
		pr.Reply = ACK
	}
	return
}

func (p *Parser) abort(err error) (pr ParseResult) {
	p.Reset()
	pr.Reply, pr.Err = NACK, err
	return
}

func (p *Parser) messageReady() (pr ParseResult) {
	p.done = p.msg
	p.done.cursor = 0
	p.Reset()
	pr.Reply, pr.Message = ACK, &p.done
	return
}
